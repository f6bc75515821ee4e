package sidestore

import (
	"context"
	"sync"

	"github.com/iota-uz/tgbridge/modules/bridge/domain/command"
)

// MemoryStore keeps everything in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	messages map[int]command.ChatID
	topics   map[string]Topic
	chats    map[command.ChatID]Chat
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		messages: map[int]command.ChatID{},
		topics:   map[string]Topic{},
		chats:    map[command.ChatID]Chat{},
	}
}

func (s *MemoryStore) MessageChat(_ context.Context, messageID int) (command.ChatID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.messages[messageID]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (s *MemoryStore) RememberMessages(_ context.Context, chatID command.ChatID, messageIDs []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range messageIDs {
		if _, ok := s.messages[id]; !ok {
			s.messages[id] = chatID
		}
	}
	return nil
}

func (s *MemoryStore) Topic(_ context.Context, chatID command.ChatID, topicID int) (Topic, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.topics[topicKey(chatID, topicID)]
	if !ok {
		return Topic{}, ErrNotFound
	}
	return t, nil
}

func (s *MemoryStore) SaveTopic(_ context.Context, chatID command.ChatID, topicID int, t Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.topics[topicKey(chatID, topicID)] = t
	return nil
}

func (s *MemoryStore) Chat(_ context.Context, chatID command.ChatID) (Chat, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.chats[chatID]
	if !ok {
		return Chat{}, ErrNotFound
	}
	return c, nil
}

func (s *MemoryStore) SaveChat(_ context.Context, c Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats[c.ChatID()] = c
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}
