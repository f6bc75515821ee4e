package configuration

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/iota-uz/tgbridge/pkg/logging"
)

const Production = "production"

var singleton = sync.OnceValue(func() *Configuration {
	c := &Configuration{}
	if err := c.load([]string{".env", ".env.local"}); err != nil {
		c.Unload()
		panic(err)
	}
	return c
})

// LoadEnv loads the given env files from the working directory. When none of them
// exist there, the directory holding the nearest go.mod is tried instead.
func LoadEnv(envFiles []string) (int, error) {
	existing := existingFiles("", envFiles)
	if len(existing) == 0 {
		if root, ok := moduleRoot(); ok {
			existing = existingFiles(root, envFiles)
		}
	}
	if len(existing) == 0 {
		return 0, nil
	}
	return len(existing), godotenv.Load(existing...)
}

func existingFiles(dir string, files []string) []string {
	out := make([]string, 0, len(files))
	for _, file := range files {
		path := file
		if dir != "" {
			path = filepath.Join(dir, file)
		}
		if st, err := os.Stat(path); err == nil && !st.IsDir() {
			out = append(out, path)
		}
	}
	return out
}

func moduleRoot() (string, bool) {
	dir, err := os.Getwd()
	if err != nil {
		return "", false
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

type TelegramOptions struct {
	APIID    int    `env:"TG_API_ID"`
	APIHash  string `env:"TG_API_HASH"`
	Phone    string `env:"TG_PHONE_NUMBER"`
	Password string `env:"TG_PASSWORD"`

	SessionStorage string `env:"TG_SESSION_STORAGE" envDefault:"file"` // file or redis
	SessionPath    string `env:"TG_SESSION_PATH" envDefault:"work-app.session"`
	SessionKey     string `env:"TG_SESSION_KEY" envDefault:"tg:session:work-app"`

	InitRetries  int           `env:"TG_INIT_RETRIES" envDefault:"3"`
	FloodWaitMax time.Duration `env:"TG_FLOOD_WAIT_MAX" envDefault:"60s"`

	WarmupDialogs int `env:"TG_WARMUP_DIALOGS" envDefault:"100"`
	WarmupHistory int `env:"TG_WARMUP_HISTORY" envDefault:"200"`
}

// Validate checks the options required to open a session.
func (t *TelegramOptions) Validate() error {
	if t.APIID <= 0 {
		return fmt.Errorf("TG_API_ID must be a positive integer, got %d", t.APIID)
	}
	if strings.TrimSpace(t.APIHash) == "" {
		return fmt.Errorf("TG_API_HASH is required")
	}
	switch t.SessionStorage {
	case "file":
		if strings.TrimSpace(t.SessionPath) == "" {
			return fmt.Errorf("TG_SESSION_PATH is required when TG_SESSION_STORAGE is 'file'")
		}
	case "redis":
		if strings.TrimSpace(t.SessionKey) == "" {
			return fmt.Errorf("TG_SESSION_KEY is required when TG_SESSION_STORAGE is 'redis'")
		}
	default:
		return fmt.Errorf("TG_SESSION_STORAGE must be 'file' or 'redis', got '%s'", t.SessionStorage)
	}
	return nil
}

type KafkaOptions struct {
	Brokers            []string      `env:"KAFKA_BOOTSTRAP" envSeparator:"," envDefault:"localhost:9092"`
	CommandsTopic      string        `env:"KAFKA_TOPIC_COMMANDS" envDefault:"tg-commands"`
	ResponsesTopic     string        `env:"KAFKA_TOPIC_RESPONSES" envDefault:"tg-responses"`
	GroupID            string        `env:"KAFKA_GROUP_ID" envDefault:"demo-group"`
	AutoCommitInterval time.Duration `env:"KAFKA_AUTOCOMMIT_INTERVAL" envDefault:"5s"`
	BatchMaxBytes      int32         `env:"KAFKA_PRODUCER_BATCH_MAX_BYTES" envDefault:"16384"`
	DialTimeout        time.Duration `env:"KAFKA_DIAL_TIMEOUT" envDefault:"10s"`
}

func (k *KafkaOptions) Validate() error {
	if len(k.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BOOTSTRAP must list at least one broker")
	}
	if strings.TrimSpace(k.CommandsTopic) == "" || strings.TrimSpace(k.ResponsesTopic) == "" {
		return fmt.Errorf("kafka topics must not be empty")
	}
	if k.BatchMaxBytes <= 0 {
		return fmt.Errorf("KAFKA_PRODUCER_BATCH_MAX_BYTES must be positive, got %d", k.BatchMaxBytes)
	}
	return nil
}

type RedisOptions struct {
	Addr                string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password            string        `env:"REDIS_PASSWORD"`
	DB                  int           `env:"REDIS_DB" envDefault:"0"`
	DialTimeout         time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	InitRetries         int           `env:"REDIS_INIT_RETRIES" envDefault:"3"`
	InitRetryDelay      time.Duration `env:"REDIS_INIT_RETRY_DELAY" envDefault:"10s"`
	MessageBatchSize    int           `env:"REDIS_MESSAGE_BATCH_SIZE" envDefault:"1000"`
	HealthCheckInterval time.Duration `env:"REDIS_HEALTH_CHECK_INTERVAL" envDefault:"15s"`
}

type DispatchOptions struct {
	MaxAttempts int           `env:"DISPATCH_MAX_ATTEMPTS" envDefault:"3"`
	Interval    time.Duration `env:"DISPATCH_INTERVAL" envDefault:"1s"`
	// MaxBackoff caps the exponential wait between attempts of one unit. 0 retries at once.
	MaxBackoff time.Duration `env:"DISPATCH_MAX_BACKOFF" envDefault:"2s"`
}

type RateLimitOptions struct {
	Enabled bool   `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	Rate    string `env:"RATE_LIMIT_RATE" envDefault:"30-M"`
	Storage string `env:"RATE_LIMIT_STORAGE" envDefault:"memory"` // memory or redis
	// HTTPRate limits requests per client IP on the HTTP surface.
	HTTPRate string `env:"RATE_LIMIT_HTTP_RATE" envDefault:"600-M"`
}

// Validate checks the rate limit configuration for errors
func (r *RateLimitOptions) Validate() error {
	if r.Storage != "memory" && r.Storage != "redis" {
		return fmt.Errorf("rate limit Storage must be 'memory' or 'redis', got '%s'", r.Storage)
	}
	if !r.Enabled {
		return nil
	}
	if _, err := limiter.NewRateFromFormatted(r.Rate); err != nil {
		return fmt.Errorf("invalid RATE_LIMIT_RATE=%q: %w", r.Rate, err)
	}
	if _, err := limiter.NewRateFromFormatted(r.HTTPRate); err != nil {
		return fmt.Errorf("invalid RATE_LIMIT_HTTP_RATE=%q: %w", r.HTTPRate, err)
	}
	return nil
}

type OpenTelemetryOptions struct {
	Enabled     bool   `env:"OTEL_ENABLED" envDefault:"false"`
	TempoURL    string `env:"OTEL_TEMPO_URL" envDefault:"localhost:4318"`
	ServiceName string `env:"OTEL_SERVICE_NAME" envDefault:"tgbridge"`
}

type PrometheusOptions struct {
	Enabled bool   `env:"PROMETHEUS_METRICS_ENABLED" envDefault:"false"`
	Path    string `env:"PROMETHEUS_METRICS_PATH" envDefault:"/debug/prometheus"`
}

type Configuration struct {
	Telegram      TelegramOptions
	Kafka         KafkaOptions
	Redis         RedisOptions
	Dispatch      DispatchOptions
	RateLimit     RateLimitOptions
	OpenTelemetry OpenTelemetryOptions
	Prometheus    PrometheusOptions

	ServerPort       int    `env:"PORT" envDefault:"8000"`
	ServerHost       string `env:"HOST" envDefault:"0.0.0.0"`
	GoAppEnvironment string `env:"GO_APP_ENV" envDefault:"development"`
	SocketAddress    string `env:"-"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogPath          string `env:"LOG_PATH" envDefault:"./logs/tgbridge.log"`
	LogMaxSizeMB     int    `env:"LOG_MAX_SIZE_MB" envDefault:"100"`
	LogMaxBackups    int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	StreamChunkSize  int    `env:"STREAM_CHUNK_SIZE" envDefault:"524288"`
	// Header carrying a caller correlation id for HTTP requests; a uuid is generated when absent.
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`

	logFile io.Closer
	logger  *logrus.Logger
}

func (c *Configuration) Logger() *logrus.Logger {
	return c.logger
}

func (c *Configuration) LogrusLogLevel() logrus.Level {
	switch c.LogLevel {
	case "silent":
		return logrus.PanicLevel
	case "error":
		return logrus.ErrorLevel
	case "warn":
		return logrus.WarnLevel
	case "info":
		return logrus.InfoLevel
	case "debug":
		return logrus.DebugLevel
	default:
		return logrus.ErrorLevel
	}
}

func Use() *Configuration {
	return singleton()
}

func (c *Configuration) load(envFiles []string) error {
	n, err := LoadEnv(envFiles)
	if err != nil {
		return err
	}
	if n == 0 {
		wd, _ := os.Getwd()
		log.Println("No .env files found. Tried:")
		for _, file := range envFiles {
			log.Println(filepath.Join(wd, file))
		}
	}
	if err := env.Parse(c); err != nil {
		return err
	}
	if err := c.validate(); err != nil {
		return err
	}

	f, logger, err := logging.FileLogger(c.LogrusLogLevel(), logging.FileOptions{
		Path:       c.LogPath,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
	})
	if err != nil {
		return err
	}
	c.logFile = f
	c.logger = logger

	c.SocketAddress = fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
	if c.GoAppEnvironment != Production && c.ServerHost == "0.0.0.0" {
		c.SocketAddress = fmt.Sprintf("localhost:%d", c.ServerPort)
	}
	return nil
}

func (c *Configuration) validate() error {
	if err := c.Kafka.Validate(); err != nil {
		return fmt.Errorf("kafka configuration error: %w", err)
	}
	if err := c.RateLimit.Validate(); err != nil {
		return fmt.Errorf("rate limit configuration error: %w", err)
	}
	if c.Dispatch.MaxAttempts <= 0 {
		return fmt.Errorf("DISPATCH_MAX_ATTEMPTS must be positive, got %d", c.Dispatch.MaxAttempts)
	}
	if c.Dispatch.Interval < 0 {
		return fmt.Errorf("DISPATCH_INTERVAL must not be negative, got %s", c.Dispatch.Interval)
	}
	if c.Dispatch.MaxBackoff < 0 {
		return fmt.Errorf("DISPATCH_MAX_BACKOFF must not be negative, got %s", c.Dispatch.MaxBackoff)
	}
	if c.StreamChunkSize <= 0 || c.StreamChunkSize%4096 != 0 {
		return fmt.Errorf("STREAM_CHUNK_SIZE must be a positive multiple of 4096, got %d", c.StreamChunkSize)
	}
	return nil
}

// Unload handles a graceful shutdown.
func (c *Configuration) Unload() {
	if c.logFile != nil {
		if err := c.logFile.Close(); err != nil {
			log.Printf("Failed to close log file: %v", err)
		}
	}
}
