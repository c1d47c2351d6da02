package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"time"

	"github.com/MrJamesThe3rd/compta/internal/piece"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetPiece(ctx context.Context, key piece.Key) ([]*piece.Entry, error) {
	query := `
		SELECT e.id, e.date, e.journal, e.piece_ref, a.accnum, a.acclib, e.lib, e.debit_cents, e.credit_cents
		FROM entries e
		JOIN accounts a ON a.id = e.account_id
		WHERE e.client_id = $1 AND e.exercice_id = $2 AND e.journal = $3 AND e.piece_ref = $4
		ORDER BY e.date ASC, e.id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, key.ClientID, key.ExerciceID, key.Journal, key.PieceRef)
	if err != nil {
		return nil, fmt.Errorf("querying piece: %w", err)
	}
	defer rows.Close()

	var entries []*piece.Entry

	for rows.Next() {
		var e piece.Entry
		if err := rows.Scan(
			&e.ID, &e.Date, &e.Journal, &e.PieceRef, &e.AccNum, &e.AccLib, &e.Lib, &e.DebitCents, &e.CreditCents,
		); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}

	return entries, nil
}

// Commit applies the change list in one database transaction. Concurrent
// commits on the same piece are serialized by an advisory lock.
func (s *Store) Commit(ctx context.Context, req piece.CommitRequest) (*piece.CommitResult, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning commit tx: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", pieceLockKey(req.Key)); err != nil {
		return nil, fmt.Errorf("acquiring piece lock: %w", err)
	}

	var res piece.CommitResult

	for i, ch := range req.Changes {
		switch c := ch.(type) {
		case piece.AddChange:
			err = addEntry(ctx, dbTx, req.Key, c.Values)
			res.Added++
		case piece.ModifyChange:
			err = modifyEntry(ctx, dbTx, req.Key, c.EntryID, c.Values)
			res.Modified++
		case piece.DeleteChange:
			err = deleteEntry(ctx, dbTx, req.Key, c.EntryID)
			res.Deleted++
		default:
			err = fmt.Errorf("unsupported change %T", ch)
		}

		if err != nil {
			return nil, fmt.Errorf("change %d (%s): %w", i, ch.Op(), err)
		}
	}

	if err := recordHistory(ctx, dbTx, req, res); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, fmt.Errorf("committing piece: %w", err)
	}

	return &res, nil
}

func pieceLockKey(key piece.Key) int64 {
	h := fnv.New64a()
	h.Write([]byte(strconv.FormatInt(key.ClientID, 10)))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatInt(key.ExerciceID, 10)))
	h.Write([]byte{0})
	h.Write([]byte(key.Journal))
	h.Write([]byte{0})
	h.Write([]byte(key.PieceRef))

	return int64(h.Sum64())
}

// ensureAccount returns the id of accnum for the client, creating the account
// when it does not exist yet.
func ensureAccount(ctx context.Context, tx *sql.Tx, clientID int64, v piece.Values) (int64, error) {
	acclib := v.AccLib
	if acclib == "" {
		acclib = v.AccNum
	}

	query := `
		INSERT INTO accounts (client_id, accnum, acclib)
		VALUES ($1, $2, $3)
		ON CONFLICT (client_id, accnum) DO UPDATE SET accnum = EXCLUDED.accnum
		RETURNING id
	`

	var id int64
	if err := tx.QueryRowContext(ctx, query, clientID, v.AccNum, acclib).Scan(&id); err != nil {
		return 0, fmt.Errorf("ensuring account %q: %w", v.AccNum, err)
	}

	return id, nil
}

func parseDate(v piece.Values) (time.Time, error) {
	d, err := time.Parse(time.DateOnly, v.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: %w", v.Date, piece.ErrInvalidChange)
	}

	return d, nil
}

func addEntry(ctx context.Context, tx *sql.Tx, key piece.Key, v piece.Values) error {
	date, err := parseDate(v)
	if err != nil {
		return err
	}

	accountID, err := ensureAccount(ctx, tx, key.ClientID, v)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO entries (client_id, exercice_id, journal, piece_ref, account_id, date, lib, debit_cents, credit_cents)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if _, err := tx.ExecContext(ctx, query,
		key.ClientID, key.ExerciceID, key.Journal, key.PieceRef,
		accountID, date, v.Lib, v.DebitCents, v.CreditCents,
	); err != nil {
		return fmt.Errorf("inserting entry: %w", err)
	}

	return nil
}

func modifyEntry(ctx context.Context, tx *sql.Tx, key piece.Key, id int64, v piece.Values) error {
	date, err := parseDate(v)
	if err != nil {
		return err
	}

	accountID, err := ensureAccount(ctx, tx, key.ClientID, v)
	if err != nil {
		return err
	}

	query := `
		UPDATE entries
		SET account_id = $1, date = $2, lib = $3, debit_cents = $4, credit_cents = $5, updated_at = NOW()
		WHERE id = $6 AND client_id = $7 AND exercice_id = $8 AND journal = $9 AND piece_ref = $10
	`

	result, err := tx.ExecContext(ctx, query,
		accountID, date, v.Lib, v.DebitCents, v.CreditCents,
		id, key.ClientID, key.ExerciceID, key.Journal, key.PieceRef,
	)
	if err != nil {
		return fmt.Errorf("updating entry %d: %w", id, err)
	}

	return expectOne(result, id)
}

func deleteEntry(ctx context.Context, tx *sql.Tx, key piece.Key, id int64) error {
	query := `
		DELETE FROM entries
		WHERE id = $1 AND client_id = $2 AND exercice_id = $3 AND journal = $4 AND piece_ref = $5
	`

	result, err := tx.ExecContext(ctx, query, id, key.ClientID, key.ExerciceID, key.Journal, key.PieceRef)
	if err != nil {
		return fmt.Errorf("deleting entry %d: %w", id, err)
	}

	return expectOne(result, id)
}

func expectOne(result sql.Result, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}

	if n == 0 {
		return fmt.Errorf("entry %d: %w", id, piece.ErrEntryNotFound)
	}

	return nil
}

type historyPayload struct {
	Journal  string `json:"journal"`
	PieceRef string `json:"piece_ref"`
	Added    int    `json:"added"`
	Modified int    `json:"modified"`
	Deleted  int    `json:"deleted"`
}

func recordHistory(ctx context.Context, tx *sql.Tx, req piece.CommitRequest, res piece.CommitResult) error {
	payload, err := json.Marshal(historyPayload{
		Journal:  req.Journal,
		PieceRef: req.PieceRef,
		Added:    res.Added,
		Modified: res.Modified,
		Deleted:  res.Deleted,
	})
	if err != nil {
		return fmt.Errorf("encoding history payload: %w", err)
	}

	query := `
		INSERT INTO history_events (client_id, exercice_id, kind, description, payload)
		VALUES ($1, $2, 'piece_commit', $3, $4)
	`

	if _, err := tx.ExecContext(ctx, query, req.ClientID, req.ExerciceID, req.Description, payload); err != nil {
		return fmt.Errorf("recording history: %w", err)
	}

	return nil
}
