package database

import (
	"context"
	"fmt"
	"vocab-quiz/internal/logger"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type migration struct {
	name string
	stmt string
}

var migrations = []migration{
	{
		name: "create_question_bank",
		stmt: `CREATE TABLE IF NOT EXISTS question_bank (
	position   INTEGER PRIMARY KEY,
	prompt     TEXT NOT NULL,
	answer     TEXT NOT NULL,
	image_url  TEXT NOT NULL DEFAULT '',
	level      INTEGER NOT NULL DEFAULT 1 CHECK (level >= 1),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	},
	{
		name: "index_question_bank_level",
		stmt: `CREATE INDEX IF NOT EXISTS idx_question_bank_level ON question_bank (level)`,
	},
}

// RunMigrations applies the schema. Every statement is idempotent so it is
// safe to run on each start.
func RunMigrations(ctx context.Context, db *sqlx.DB) error {
	for _, m := range migrations {
		if _, err := db.ExecContext(ctx, m.stmt); err != nil {
			return fmt.Errorf("could not execute migration %s: %w", m.name, err)
		}
		logger.Get().Debug("Executed migration", zap.String("name", m.name))
	}
	logger.Get().Info("Migrations completed successfully", zap.Int("count", len(migrations)))
	return nil
}
