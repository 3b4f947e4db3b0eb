package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	contractx "github.com/tanpawarit/crew-assistants/agent/contract"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

var _ contractx.RecordStore = (*PostgresStore)(nil)

type appointmentRow struct {
	bun.BaseModel `bun:"table:appointments,alias:a"`

	ID        string    `bun:"id,pk"`
	Name      string    `bun:"patient_name,notnull"`
	Timestamp string    `bun:"appointment_time,notnull"`
	Category  string    `bun:"specialty,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

// PostgresStore persists records in an appointments table through bun.
type PostgresStore struct {
	db  *bun.DB
	now func() time.Time
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return &PostgresStore{
		db:  bun.NewDB(sqldb, pgdialect.New()),
		now: time.Now,
	}, nil
}

func (s *PostgresStore) Init(ctx context.Context) error {
	if _, err := s.db.NewCreateTable().
		Model((*appointmentRow)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("create appointments table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Append(ctx context.Context, rec contractx.Record) error {
	rec = stamp(rec, s.now())
	row := &appointmentRow{
		ID:        rec.ID,
		Name:      rec.Name,
		Timestamp: rec.Timestamp,
		Category:  rec.Category,
		CreatedAt: rec.CreatedAt,
	}
	if _, err := s.db.NewInsert().Model(row).Exec(ctx); err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (s *PostgresStore) Exists(ctx context.Context, timestamp, category string) (bool, error) {
	ok, err := s.db.NewSelect().
		Model((*appointmentRow)(nil)).
		Where("appointment_time = ?", timestamp).
		Where("specialty = ?", category).
		Exists(ctx)
	if err != nil {
		return false, fmt.Errorf("query appointment: %w", err)
	}
	return ok, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]contractx.Record, error) {
	var rows []appointmentRow
	if err := s.db.NewSelect().
		Model(&rows).
		Order("created_at ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	out := make([]contractx.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, contractx.Record{
			ID:        r.ID,
			Name:      r.Name,
			Timestamp: r.Timestamp,
			Category:  r.Category,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}
