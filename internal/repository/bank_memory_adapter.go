package repository

import (
	"context"
	"sync"
	"vocab-quiz/internal/bank"
	"vocab-quiz/internal/domain"
)

// BankMemoryAdapter keeps the bank in process memory. It starts out holding
// the given seed, or nothing.
type BankMemoryAdapter struct {
	mu      sync.RWMutex
	records []domain.RawRecord
}

func NewBankMemoryAdapter(seed []domain.RawRecord) domain.BankRepository {
	out := make([]domain.RawRecord, len(seed))
	copy(out, seed)
	return &BankMemoryAdapter{records: out}
}

func (r *BankMemoryAdapter) Load(_ context.Context) ([]domain.RawRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RawRecord, len(r.records))
	copy(out, r.records)
	return out, nil
}

func (r *BankMemoryAdapter) Replace(_ context.Context, records []domain.QuestionRecord) error {
	if err := validateRecords(records); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = bank.ToRaw(records)
	return nil
}
