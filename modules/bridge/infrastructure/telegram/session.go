package telegram

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/tgbridge/pkg/configuration"
)

// floodWaitSlack is added on top of the wait Telegram asks for during login.
const floodWaitSlack = 5 * time.Second

type SessionOptions struct {
	Telegram      configuration.TelegramOptions
	Storage       session.Storage
	UpdateHandler telegram.UpdateHandler
	// CodeInput is read for the login code when the session is not authorized yet.
	CodeInput io.Reader
	Logger    *logrus.Entry
}

// Session owns the single MTProto connection of the bridge.
type Session struct {
	client *telegram.Client
	opts   SessionOptions
}

func NewSession(opts SessionOptions) *Session {
	client := telegram.NewClient(opts.Telegram.APIID, opts.Telegram.APIHash, telegram.Options{
		SessionStorage: opts.Storage,
		UpdateHandler:  opts.UpdateHandler,
	})
	return &Session{client: client, opts: opts}
}

// API returns the raw client. Calls only succeed while Run is active.
func (s *Session) API() *tg.Client {
	return s.client.API()
}

// SessionStorage picks file or Redis storage per configuration. newRedis is only
// called for Redis storage.
func SessionStorage(opts configuration.TelegramOptions, newRedis func(key string) session.Storage) session.Storage {
	if opts.SessionStorage == "redis" {
		return newRedis(opts.SessionKey)
	}
	return &session.FileStorage{Path: opts.SessionPath}
}

// Run connects, logs in if needed and calls fn with the raw API until fn returns or
// ctx is done.
func (s *Session) Run(ctx context.Context, fn func(ctx context.Context, api *tg.Client) error) error {
	return s.client.Run(ctx, func(ctx context.Context) error {
		if err := s.authenticate(ctx); err != nil {
			return err
		}
		s.opts.Logger.Info("Telegram client has been connected")
		return fn(ctx, s.client.API())
	})
}

func (s *Session) authenticate(ctx context.Context) error {
	flow := auth.NewFlow(
		auth.Constant(s.opts.Telegram.Phone, s.opts.Telegram.Password, auth.CodeAuthenticatorFunc(s.readCode)),
		auth.SendCodeOptions{},
	)

	retries := s.opts.Telegram.InitRetries
	for {
		err := s.client.Auth().IfNecessary(ctx, flow)
		if err == nil {
			return nil
		}
		d, ok := tgerr.AsFloodWait(err)
		if !ok || retries <= 0 {
			return errors.Wrap(err, describeAuthError(err))
		}
		s.opts.Logger.WithField("wait", d.String()).WithField("retries", retries).
			Warn("Telegram login hit FLOOD_WAIT, retrying")
		retries--
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(d + floodWaitSlack):
		}
	}
}

func (s *Session) readCode(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
	if s.opts.CodeInput == nil {
		return "", errors.New("login code required but no code input is configured")
	}
	fmt.Print("Enter the Telegram login code: ")
	line, err := bufio.NewReader(s.opts.CodeInput).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func describeAuthError(err error) string {
	switch {
	case errors.Is(err, auth.ErrPasswordNotProvided), tgerr.Is(err, "SESSION_PASSWORD_NEEDED"):
		return "two-factor password required"
	case tgerr.Is(err, "PHONE_NUMBER_INVALID"):
		return "incorrect phone number"
	case tgerr.Is(err, "PHONE_CODE_INVALID", "PHONE_CODE_EXPIRED"):
		return "incorrect login code"
	case tgerr.Is(err, "API_ID_INVALID"):
		return "incorrect api id"
	case tgerr.Is(err, "AUTH_KEY_DUPLICATED"):
		return "session is used from several places at once"
	case tgerr.Is(err, "USER_DEACTIVATED_BAN"):
		return "account is banned"
	case tgerr.Is(err, "FLOOD_WAIT"):
		return "login flood wait, out of retries"
	default:
		return "telegram login failed"
	}
}
