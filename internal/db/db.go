package db

import (
	"fmt"

	"kcal/internal/jobs"
	"kcal/internal/kv"

	"github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func Connect(dsn string) (*gorm.DB, error) {
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

// AutoMigrateAndIndexes creates the key-value table named kvTable and the
// job queue table, plus the indexes their queries rely on.
func AutoMigrateAndIndexes(gdb *gorm.DB, kvTable string) error {
	// Tables
	if err := gdb.Table(kvTable).AutoMigrate(&kv.Row{}); err != nil {
		return fmt.Errorf("migrate %s: %w", kvTable, err)
	}
	if err := gdb.AutoMigrate(&jobs.Job{}); err != nil {
		return fmt.Errorf("migrate jobs: %w", err)
	}

	// Prefix scans (key LIKE 'daily_summary:u1:2024-03%') need text_pattern_ops
	// unless the database collation is C.
	table := pq.QuoteIdentifier(kvTable)
	prefixIdx := pq.QuoteIdentifier("idx_" + kvTable + "_key_prefix")

	stmts := []string{
		fmt.Sprintf(`create index if not exists %s on %s (key text_pattern_ops);`, prefixIdx, table),
		`create index if not exists idx_jobs_due on jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on jobs(status, locked_at);`,
		`create index if not exists idx_jobs_user_type on jobs(user_id, type, status);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
