package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/compta/internal/amount"
	"github.com/MrJamesThe3rd/compta/internal/piece"
)

// header is the native ledger layout, readable back by the importer.
var header = []string{"jnl", "accnum", "acclib", "date", "lib", "pieceRef", "debit", "credit"}

// Service writes the lines of a piece as a ledger CSV.
type Service struct {
	pieces *piece.Service
}

// NewService creates a new export Service.
func NewService(pieces *piece.Service) *Service {
	return &Service{pieces: pieces}
}

// WritePiece writes every line of the piece to w and returns how many lines
// were written.
func (s *Service) WritePiece(ctx context.Context, key piece.Key, w io.Writer) (int, error) {
	entries, err := s.pieces.Fetch(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("fetching piece: %w", err)
	}

	cw := csv.NewWriter(w)
	cw.Comma = ';'

	if err := cw.Write(header); err != nil {
		return 0, fmt.Errorf("writing header: %w", err)
	}

	for _, e := range entries {
		if err := cw.Write([]string{
			e.Journal,
			e.AccNum,
			e.AccLib,
			e.Date.Format("02/01/2006"),
			sanitize(e.Lib),
			e.PieceRef,
			frenchAmount(e.DebitCents),
			frenchAmount(e.CreditCents),
		}); err != nil {
			return 0, fmt.Errorf("writing entry %d: %w", e.ID, err)
		}
	}

	cw.Flush()

	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("flushing csv: %w", err)
	}

	return len(entries), nil
}

// ExportToDir writes the piece into outputDir, creating it if needed, and
// returns the path of the written file.
func (s *Service) ExportToDir(ctx context.Context, key piece.Key, outputDir string) (string, int, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(outputDir, Filename(key, time.Now()))

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	n, err := s.WritePiece(ctx, key, f)
	if err != nil {
		return "", 0, err
	}

	return path, n, nil
}

// Filename builds a file name from the piece identity, e.g.
// "20250314_AC_F-0012.csv".
func Filename(key piece.Key, at time.Time) string {
	safe := func(s string) string {
		return strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
				return r
			}

			return '_'
		}, s)
	}

	return fmt.Sprintf("%s_%s_%s.csv", at.Format("20060102"), safe(key.Journal), safe(key.PieceRef))
}

func frenchAmount(cents int64) string {
	return strings.Replace(amount.ToInput(cents), ".", ",", 1)
}

func sanitize(s string) string {
	return strings.TrimSpace(strings.NewReplacer("\u00a0", " ", "\r", " ", "\n", " ").Replace(s))
}
