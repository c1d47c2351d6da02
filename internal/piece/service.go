package piece

import (
	"context"
	"fmt"
	"time"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=piece
type Repository interface {
	GetPiece(ctx context.Context, key Key) ([]*Entry, error)
	Commit(ctx context.Context, req CommitRequest) (*CommitResult, error)
}

// CommitRequest is the payload of a piece commit.
type CommitRequest struct {
	Key
	Description string
	Changes     []Change
}

// CommitResult counts the operations applied by a commit.
type CommitResult struct {
	Added    int
	Modified int
	Deleted  int
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Fetch(ctx context.Context, key Key) ([]*Entry, error) {
	return s.repo.GetPiece(ctx, key)
}

// Open fetches the piece and starts an editing session on it. A piece with
// no lines yet opens empty.
func (s *Service) Open(ctx context.Context, key Key) (*Session, error) {
	entries, err := s.repo.GetPiece(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("fetch piece: %w", err)
	}

	return NewSession(key, entries), nil
}

// Apply commits a change list as received from a client. An empty list is a
// no-op. Changes whose values cannot be stored are rejected with
// ErrInvalidChange before the repository is called.
func (s *Service) Apply(ctx context.Context, req CommitRequest) (*CommitResult, error) {
	if len(req.Changes) == 0 {
		return &CommitResult{}, nil
	}

	if err := validateChanges(req.Changes); err != nil {
		return nil, err
	}

	return s.repo.Commit(ctx, req)
}

func validateChanges(changes []Change) error {
	for i, c := range changes {
		var v Values

		switch c := c.(type) {
		case AddChange:
			v = c.Values
		case ModifyChange:
			v = c.Values
		default:
			continue
		}

		if _, err := time.Parse(time.DateOnly, v.Date); err != nil {
			return fmt.Errorf("change %d (%s): date %q: %w", i, c.Op(), v.Date, ErrInvalidChange)
		}
	}

	return nil
}

// Commit applies req and fetches the piece again so the caller can rebase
// its session on what was stored.
func (s *Service) Commit(ctx context.Context, req CommitRequest) (*CommitResult, []*Entry, error) {
	res, err := s.Apply(ctx, req)
	if err != nil {
		return nil, nil, fmt.Errorf("commit piece: %w", err)
	}

	entries, err := s.repo.GetPiece(ctx, req.Key)
	if err != nil {
		return res, nil, fmt.Errorf("reload piece: %w", err)
	}

	return res, entries, nil
}

// Submit commits the session's pending changes and, on success, reloads the
// piece as the new baseline. On failure the session is left untouched so the
// user can retry.
func (s *Service) Submit(ctx context.Context, sess *Session, description string) (*CommitResult, error) {
	if !sess.CanSubmit() {
		return nil, ErrNotSubmittable
	}

	res, entries, err := s.Commit(ctx, sess.CommitRequest(description))
	if err != nil {
		return res, err
	}

	sess.Reset(entries)

	return res, nil
}
