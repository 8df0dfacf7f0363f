package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var _ Store = (*Postgres)(nil)

// Row is one key of the store. The table name is chosen at runtime (see Postgres.Table).
type Row struct {
	Key       string          `gorm:"primaryKey;type:text"`
	Value     json.RawMessage `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time       `gorm:"not null;default:now()"`
}

// Postgres keeps every key as a jsonb row of a single table.
type Postgres struct {
	DB    *gorm.DB
	Table string
}

func NewPostgres(db *gorm.DB, table string) *Postgres {
	return &Postgres{DB: db, Table: table}
}

func (s *Postgres) tx(ctx context.Context) *gorm.DB {
	return s.DB.WithContext(ctx).Table(s.Table)
}

func (s *Postgres) Get(ctx context.Context, key string) (json.RawMessage, error) {
	var row Row
	if err := s.tx(ctx).Where("key = ?", key).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("kv: get %q: %w", key, err)
	}
	return row.Value, nil
}

func (s *Postgres) MGet(ctx context.Context, keys []string) (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	var rows []Row
	if err := s.tx(ctx).Where("key = any(?)", pq.Array(keys)).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("kv: mget: %w", err)
	}
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

func (s *Postgres) Set(ctx context.Context, key string, value json.RawMessage) error {
	if err := upsert(s.tx(ctx), key, value); err != nil {
		return fmt.Errorf("kv: set %q: %w", key, err)
	}
	return nil
}

func (s *Postgres) Delete(ctx context.Context, key string) error {
	if err := s.tx(ctx).Where("key = ?", key).Delete(&Row{}).Error; err != nil {
		return fmt.Errorf("kv: delete %q: %w", key, err)
	}
	return nil
}

func (s *Postgres) Scan(ctx context.Context, prefix string) ([]Entry, error) {
	var rows []Row
	if err := s.tx(ctx).
		Where("key LIKE ?", escapeLike(prefix)+"%").
		Order("key asc").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("kv: scan %q: %w", prefix, err)
	}

	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, Entry{Key: r.Key, Value: r.Value})
	}
	return out, nil
}

// Update locks the row FOR UPDATE for the length of the transaction.
// Two first-time writers of the same absent key can still race; the later insert wins.
func (s *Postgres) Update(ctx context.Context, key string, fn func(current json.RawMessage) (json.RawMessage, error)) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row Row
		var cur json.RawMessage

		err := tx.Table(s.Table).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("key = ?", key).
			Take(&row).Error
		switch {
		case err == nil:
			cur = row.Value
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return fmt.Errorf("kv: lock %q: %w", key, err)
		}

		next, err := fn(cur)
		if err != nil {
			return err
		}
		if next == nil {
			return nil
		}
		if err := upsert(tx.Table(s.Table), key, next); err != nil {
			return fmt.Errorf("kv: set %q: %w", key, err)
		}
		return nil
	})
}

func upsert(db *gorm.DB, key string, value json.RawMessage) error {
	row := Row{Key: key, Value: value, UpdatedAt: time.Now()}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes prefix literal inside a LIKE pattern; keys such as
// "daily_summary:" contain the "_" wildcard.
func escapeLike(prefix string) string {
	return likeEscaper.Replace(prefix)
}
