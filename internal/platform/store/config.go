package store

import (
	"strings"
	"time"

	"outlier/internal/platform/config"
	perr "outlier/internal/platform/errors"
	"outlier/internal/platform/validate"
)

// Backend selects which document store implementation Open wires
type Backend string

// Supported backends
const (
	BackendOff  Backend = "off"
	BackendPG   Backend = "pg"
	BackendCH   Backend = "ch"
	BackendBolt Backend = "bolt"
)

// Config aggregates backend selection and per backend settings
type Config struct {
	AppName string  `json:"app_name"`
	Backend Backend `json:"backend" validate:"omitempty,oneof=off pg ch bolt"`

	PG   PGConfig   `json:"pg"`
	CH   CHConfig   `json:"ch"`
	Bolt BoltConfig `json:"bolt"`
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	URL         string `json:"url"`
	MaxConns    int32  `json:"max_conns" validate:"gte=0"`
	LogSQL      bool   `json:"log_sql"`
	SlowQueryMs int    `json:"slow_query_ms" validate:"gte=0"`

	// Guard/boot knobs:
	ConnectRetries int           `json:"connect_retries" validate:"gte=0"` // default 6 (63s(ish) max with exponential backoff)
	PingTimeout    time.Duration `json:"ping_timeout"`                     // default 5s
}

// CHConfig configures clickhouse connectivity
type CHConfig struct {
	Addr     string `json:"addr"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"-"`

	ConnectRetries int           `json:"connect_retries" validate:"gte=0"`
	PingTimeout    time.Duration `json:"ping_timeout"`
}

// BoltConfig configures the embedded bolt file store
type BoltConfig struct {
	Path    string        `json:"path"`
	Timeout time.Duration `json:"timeout"`
	NoSync  bool          `json:"no_sync"`
}

// FromEnv loads Config from DOCS_* keys on cfg
func FromEnv(cfg config.Conf) Config {
	docs := cfg.Prefix("DOCS_")
	pg := docs.Prefix("PG_")
	ch := docs.Prefix("CH_")
	bolt := docs.Prefix("BOLT_")

	return Config{
		AppName: cfg.MayString("APP_NAME", "outlier"),
		Backend: Backend(strings.ToLower(docs.MayEnum("BACKEND", "off", "off", "pg", "ch", "bolt"))),
		PG: PGConfig{
			URL:            pg.MayString("URL", ""),
			MaxConns:       int32(pg.MayInt("MAX_CONNS", 4)),
			LogSQL:         pg.MayBool("LOG_SQL", false),
			SlowQueryMs:    pg.MayInt("SLOW_MS", 500),
			ConnectRetries: pg.MayInt("CONNECT_RETRIES", 6),
			PingTimeout:    pg.MayDuration("PING_TIMEOUT", 5*time.Second),
		},
		CH: CHConfig{
			Addr:           ch.MayString("ADDR", ""),
			Database:       ch.MayString("DATABASE", "outlier"),
			Username:       ch.MayString("USERNAME", ""),
			Password:       ch.MayString("PASSWORD", ""),
			ConnectRetries: ch.MayInt("CONNECT_RETRIES", 6),
			PingTimeout:    ch.MayDuration("PING_TIMEOUT", 5*time.Second),
		},
		Bolt: BoltConfig{
			Path:    bolt.MayString("PATH", ""),
			Timeout: bolt.MayDuration("TIMEOUT", time.Second),
			NoSync:  bolt.MayBool("NOSYNC", true),
		},
	}
}

// Validate checks tag constraints plus the requireds of the chosen backend
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	switch c.Backend {
	case BackendPG:
		if strings.TrimSpace(c.PG.URL) == "" {
			return perr.InvalidArgf("pg backend requires a url")
		}
	case BackendCH:
		if strings.TrimSpace(c.CH.Addr) == "" {
			return perr.InvalidArgf("ch backend requires an addr")
		}
	case BackendBolt:
		if strings.TrimSpace(c.Bolt.Path) == "" {
			return perr.InvalidArgf("bolt backend requires a path")
		}
	}
	return nil
}
