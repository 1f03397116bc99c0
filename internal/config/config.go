package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

type AppConfig struct {
	ChesscomBaseURL   string
	ChesscomUserAgent string
	ChesscomTimeout   time.Duration
	ChesscomRetryMax  int

	RedisURL         string
	ChesscomRatePerS int

	DatabaseURL string

	HTTPAddr   string
	MessageDir string

	IrisBaseURL string
	IrisWSURL   string

	BotPrefix    string
	BotTransport string

	XUserID    string
	XUserEmail string
	XSessionID string

	AllowedRooms []string

	DefaultTimeClass string
}

const (
	DefaultChesscomBaseURL = "https://api.chess.com/pub"
	DefaultUserAgent       = "chess-archive-insight/1.0 (+https://github.com/park285/chess-archive-insight)"
)

// Load reads the environment (a .env file in the working directory is loaded
// first). Nothing here is mandatory; binaries check what they need.
func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ChesscomBaseURL:   DefaultChesscomBaseURL,
		ChesscomUserAgent: DefaultUserAgent,
		ChesscomTimeout:   10 * time.Second,
		ChesscomRetryMax:  3,
		ChesscomRatePerS:  3,
		HTTPAddr:          ":8080",
		BotTransport:      "auto",
		DefaultTimeClass:  "all",
	}

	if v := env("CHESSCOM_BASE_URL"); v != "" {
		cfg.ChesscomBaseURL = strings.TrimRight(v, "/")
	}
	if v := env("CHESSCOM_USER_AGENT"); v != "" {
		cfg.ChesscomUserAgent = v
	}
	if v := env("CHESSCOM_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChesscomTimeout = time.Duration(n) * time.Second
		}
	}
	if v := env("CHESSCOM_RETRY_MAX"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.ChesscomRetryMax = n
		}
	}
	if v := env("CHESSCOM_RATE_PER_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ChesscomRatePerS = n
		}
	}

	cfg.RedisURL = env("REDIS_URL")
	cfg.DatabaseURL = env("DATABASE_URL")
	if v := env("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	cfg.MessageDir = env("MESSAGE_DIR")

	cfg.IrisBaseURL = env("IRIS_BASE_URL")
	cfg.IrisWSURL = env("IRIS_WS_URL")
	cfg.BotPrefix = env("BOT_PREFIX")
	if v := strings.ToLower(env("BOT_TRANSPORT")); v != "" {
		cfg.BotTransport = v
	}

	cfg.XUserID = env("X_USER_ID")
	cfg.XUserEmail = env("X_USER_EMAIL")
	cfg.XSessionID = env("X_SESSION_ID")

	cfg.AllowedRooms = splitList(env("ALLOWED_ROOMS"))

	if v := strings.ToLower(env("DEFAULT_TIME_CLASS")); v != "" {
		cfg.DefaultTimeClass = v
	}

	switch cfg.BotTransport {
	case "http", "ws", "auto":
	default:
		return nil, errors.New("BOT_TRANSPORT must be http, ws or auto")
	}
	return cfg, nil
}

// ValidateBot checks the settings only the KakaoTalk bot needs.
func (c *AppConfig) ValidateBot() error {
	if c.IrisBaseURL == "" {
		return errors.New("IRIS_BASE_URL is required")
	}
	if c.IrisWSURL == "" {
		return errors.New("IRIS_WS_URL is required")
	}
	if c.BotPrefix == "" {
		return errors.New("BOT_PREFIX is required")
	}
	return nil
}

// RoomAllowed is true for every room when no allow list is configured.
func (c *AppConfig) RoomAllowed(room string) bool {
	if len(c.AllowedRooms) == 0 {
		return true
	}
	room = strings.TrimSpace(room)
	for _, r := range c.AllowedRooms {
		if r == room {
			return true
		}
	}
	return false
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
