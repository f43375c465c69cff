package repository

import (
	"context"

	"plume/internal/domain/repository"
)

// StubTransactionManager runs the callback directly against a fixed factory.
// Tests use it to exercise service logic without a database.
type StubTransactionManager struct {
	Factory repository.RepositoryFactory
}

func (s *StubTransactionManager) Execute(ctx context.Context, fn func(repository.RepositoryFactory) error) error {
	return fn(s.Factory)
}

// StubRepositoryFactory hands out fixed repository instances.
type StubRepositoryFactory struct {
	EntryRepo        repository.EntryRepository
	TokenRepo        repository.TokenRepository
	MentionRepo      repository.MentionRepository
	SubscriptionRepo repository.SubscriptionRepository
}

func (f *StubRepositoryFactory) NewEntryRepository() repository.EntryRepository {
	return f.EntryRepo
}

func (f *StubRepositoryFactory) NewTokenRepository() repository.TokenRepository {
	return f.TokenRepo
}

func (f *StubRepositoryFactory) NewMentionRepository() repository.MentionRepository {
	return f.MentionRepo
}

func (f *StubRepositoryFactory) NewSubscriptionRepository() repository.SubscriptionRepository {
	return f.SubscriptionRepo
}
