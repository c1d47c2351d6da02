package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/MrJamesThe3rd/compta/internal/account"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Suggest(ctx context.Context, clientID int64, query string, limit int) ([]account.Suggestion, error) {
	q := `
		SELECT id, accnum, acclib
		FROM accounts
		WHERE client_id = $1
		  AND ($2 = '' OR accnum ILIKE '%' || $2 || '%' OR acclib ILIKE '%' || $2 || '%')
		ORDER BY accnum ASC
		LIMIT $3
	`

	rows, err := s.db.QueryContext(ctx, q, clientID, query, limit)
	if err != nil {
		return nil, fmt.Errorf("suggesting accounts: %w", err)
	}
	defer rows.Close()

	var items []account.Suggestion

	for rows.Next() {
		var it account.Suggestion
		if err := rows.Scan(&it.AccountID, &it.AccNum, &it.AccLib); err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}

		items = append(items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating accounts: %w", err)
	}

	return items, nil
}

func (s *Store) Lookup(ctx context.Context, clientID int64, accnum string) (account.LookupResult, error) {
	q := `
		SELECT id, acclib
		FROM accounts
		WHERE client_id = $1 AND accnum = $2
	`

	res := account.LookupResult{Exists: true}

	err := s.db.QueryRowContext(ctx, q, clientID, accnum).Scan(&res.AccountID, &res.AccLib)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return account.LookupResult{}, nil
		}

		return account.LookupResult{}, fmt.Errorf("looking up account: %w", err)
	}

	return res, nil
}
