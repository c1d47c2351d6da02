package account

import (
	"context"
	"strings"
)

const (
	DefaultSuggestLimit = 10
	MaxSuggestLimit     = 50
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=account
type Repository interface {
	Suggest(ctx context.Context, clientID int64, query string, limit int) ([]Suggestion, error)
	Lookup(ctx context.Context, clientID int64, accnum string) (LookupResult, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest returns up to limit accounts whose number or label contains query.
// A non-positive limit falls back to DefaultSuggestLimit; larger limits are
// capped at MaxSuggestLimit.
func (s *Service) Suggest(ctx context.Context, clientID int64, query string, limit int) ([]Suggestion, error) {
	switch {
	case limit <= 0:
		limit = DefaultSuggestLimit
	case limit > MaxSuggestLimit:
		limit = MaxSuggestLimit
	}

	return s.repo.Suggest(ctx, clientID, strings.TrimSpace(query), limit)
}

// Lookup resolves an exact account number. A blank number never exists.
func (s *Service) Lookup(ctx context.Context, clientID int64, accnum string) (LookupResult, error) {
	accnum = strings.TrimSpace(accnum)
	if accnum == "" {
		return LookupResult{}, nil
	}

	return s.repo.Lookup(ctx, clientID, accnum)
}
