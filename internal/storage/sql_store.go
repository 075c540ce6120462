package storage

import (
	"context"

	"advisorbot/internal/repository"
)

// SQLStore keeps values in the kv_entries table of the configured database.
type SQLStore struct {
	repo *repository.KVRepository
}

func NewSQLStore(repo *repository.KVRepository) *SQLStore {
	return &SQLStore{repo: repo}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	entry, err := s.repo.Get(ctx, key)
	if err != nil {
		return "", false, err
	}
	if entry == nil {
		return "", false, nil
	}
	return entry.Value, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key, value string) error {
	return s.repo.Upsert(ctx, key, value)
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	return s.repo.Delete(ctx, key)
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}
