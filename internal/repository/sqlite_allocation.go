package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/draftctl/draftctl/internal/db"
	"github.com/draftctl/draftctl/internal/domain"
)

// SQLiteAllocationRepo implements AllocationRepo over the append-only
// allocations table. The UNIQUE(change_type, seq) constraint is the
// commit-time check of the optimistic allocation scheme: a violation
// means another allocation claimed the candidate between read and
// commit.
type SQLiteAllocationRepo struct {
	db db.DBTX
}

// NewSQLiteAllocationRepo creates a new SQLiteAllocationRepo.
func NewSQLiteAllocationRepo(conn db.DBTX) *SQLiteAllocationRepo {
	return &SQLiteAllocationRepo{db: conn}
}

func (r *SQLiteAllocationRepo) IssuedSeqs(ctx context.Context, changeType domain.ChangeType) ([]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT seq FROM allocations WHERE change_type = ? ORDER BY seq`, string(changeType))
	if err != nil {
		return nil, fmt.Errorf("reading issued sequences for %s: %w", changeType, domain.ErrRegistryUnavailable)
	}
	defer rows.Close()

	var seqs []int
	for rows.Next() {
		var seq int
		if err := rows.Scan(&seq); err != nil {
			return nil, fmt.Errorf("scanning sequence: %w", domain.ErrRegistryUnavailable)
		}
		seqs = append(seqs, seq)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sequences: %w", domain.ErrRegistryUnavailable)
	}
	return seqs, nil
}

func (r *SQLiteAllocationRepo) Record(ctx context.Context, changeID string, changeType domain.ChangeType, seq int) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO allocations (change_id, change_type, seq, issued_at) VALUES (?, ?, ?, ?)`,
		changeID, string(changeType), seq, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("recording %s: %w", changeID, domain.ErrAllocationConflict)
		}
		return fmt.Errorf("recording allocation %s: %w", changeID, err)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint
// failure. modernc.org/sqlite surfaces these as string-typed errors.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
