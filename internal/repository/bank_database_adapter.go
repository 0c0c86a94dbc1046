package repository

import (
	"context"
	"errors"
	"fmt"
	"time"
	"vocab-quiz/internal/domain"
	"vocab-quiz/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

const (
	selectBankQuery = `SELECT position, prompt, answer, image_url, level, created_at FROM question_bank ORDER BY position`
	deleteBankQuery = `DELETE FROM question_bank`
	insertBankQuery = `INSERT INTO question_bank (position, prompt, answer, image_url, level, created_at)
              VALUES (:position, :prompt, :answer, :image_url, :level, :created_at)`
)

// BankDatabaseAdapter stores the active bank in the question_bank table.
type BankDatabaseAdapter struct {
	db *sqlx.DB
	tm domain.TransactionManager
}

// NewBankDatabaseAdapter creates a new instance of BankDatabaseAdapter
func NewBankDatabaseAdapter(db *sqlx.DB, tm domain.TransactionManager) domain.BankRepository {
	return &BankDatabaseAdapter{db: db, tm: tm}
}

// Load returns the stored rows in insertion order. An empty table yields an
// empty slice.
func (r *BankDatabaseAdapter) Load(ctx context.Context) ([]domain.RawRecord, error) {
	var rows []models.QuestionBankRow
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, selectBankQuery); err != nil {
		return nil, fmt.Errorf("failed to load question bank: %w", err)
	}

	records := make([]domain.RawRecord, len(rows))
	for i, row := range rows {
		records[i] = convertToRawRecord(&row)
	}
	return records, nil
}

// Replace deletes every stored row and inserts records in one transaction.
// Nothing is written when a record is invalid.
func (r *BankDatabaseAdapter) Replace(ctx context.Context, records []domain.QuestionRecord) error {
	if err := validateRecords(records); err != nil {
		return err
	}
	now := time.Now()
	return r.tm.WithTransaction(ctx, func(txCtx context.Context) error {
		exec := GetExecutor(txCtx, r.db)
		if _, err := exec.ExecContext(txCtx, deleteBankQuery); err != nil {
			return fmt.Errorf("failed to clear question bank: %w", err)
		}
		for i, rec := range records {
			row := convertToBankRow(i, rec, now)
			if _, err := exec.NamedExecContext(txCtx, insertBankQuery, row); err != nil {
				return fmt.Errorf("failed to insert question %d: %w", i, err)
			}
		}
		return nil
	})
}

func validateRecords(records []domain.QuestionRecord) error {
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			var domainErr *domain.DomainError
			if errors.As(err, &domainErr) {
				return domainErr.WithContext("index", i)
			}
			return err
		}
	}
	return nil
}

func convertToRawRecord(row *models.QuestionBankRow) domain.RawRecord {
	return domain.RawRecord{
		Prompt:   row.Prompt,
		Answer:   row.Answer,
		ImageURL: row.ImageURL,
		Level:    row.Level,
	}
}

func convertToBankRow(position int, rec domain.QuestionRecord, now time.Time) *models.QuestionBankRow {
	return &models.QuestionBankRow{
		Position:  position,
		Prompt:    rec.Prompt,
		Answer:    rec.Answer,
		ImageURL:  rec.ImageURL,
		Level:     rec.Level,
		CreatedAt: now,
	}
}
