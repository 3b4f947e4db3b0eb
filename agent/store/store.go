package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	contractx "github.com/tanpawarit/crew-assistants/agent/contract"
)

const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverUpstash  = "upstash"
)

var ErrUnknownDriver = errors.New("unknown store driver")

type Config struct {
	Driver      string        `envconfig:"DRIVER" default:"memory"`
	PostgresDSN string        `envconfig:"POSTGRES_DSN" split_words:"true"`
	UpstashURL  string        `envconfig:"UPSTASH_URL" split_words:"true"`
	UpstashKey  string        `envconfig:"UPSTASH_KEY" split_words:"true" default:"crew:appointments"`
	UpstashTok  string        `envconfig:"UPSTASH_TOKEN" split_words:"true"`
	Timeout     time.Duration `envconfig:"TIMEOUT" default:"10s"`
}

// Open builds the record store selected by cfg.Driver. Callers own the
// lifecycle: Init before use, Close when done.
func Open(cfg Config) (contractx.RecordStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverPostgres:
		return NewPostgresStore(cfg.PostgresDSN)
	case DriverUpstash:
		return NewUpstashStore(UpstashConfig{
			URL:     cfg.UpstashURL,
			Token:   cfg.UpstashTok,
			Timeout: cfg.Timeout,
		}, WithKey(cfg.UpstashKey))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}

// stamp fills the bookkeeping fields of a record about to be appended.
func stamp(rec contractx.Record, now time.Time) contractx.Record {
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now.UTC()
	}
	return rec
}
