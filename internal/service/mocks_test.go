package service

import (
	"context"
	"sync"
	"vocab-quiz/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockKVStore ---
type MockKVStore struct {
	mock.Mock
}

func (m *MockKVStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockKVStore) Set(ctx context.Context, key string, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockKVStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockBankRepository ---
type MockBankRepository struct {
	mock.Mock
}

func (m *MockBankRepository) Load(ctx context.Context) ([]domain.RawRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RawRecord), args.Error(1)
}

func (m *MockBankRepository) Replace(ctx context.Context, records []domain.QuestionRecord) error {
	args := m.Called(ctx, records)
	return args.Error(0)
}

// memoryKV is an in-memory KVStore for tests that only care about the
// stored value.
type memoryKV struct {
	mu   sync.Mutex
	data map[string]string
	sets int
}

func newMemoryKV() *memoryKV {
	return &memoryKV{data: map[string]string{}}
}

func (m *memoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return "", domain.ErrKeyNotFound
	}
	return v, nil
}

func (m *memoryKV) Set(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.sets++
	return nil
}

func (m *memoryKV) Ping(context.Context) error {
	return nil
}

func (m *memoryKV) setCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets
}
