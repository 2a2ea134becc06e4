package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/draftctl/draftctl/internal/db"
	"github.com/draftctl/draftctl/internal/domain"
)

// SQLiteExternalRefRepo implements ExternalRefRepo.
type SQLiteExternalRefRepo struct {
	db db.DBTX
}

// NewSQLiteExternalRefRepo creates a new SQLiteExternalRefRepo.
func NewSQLiteExternalRefRepo(conn db.DBTX) *SQLiteExternalRefRepo {
	return &SQLiteExternalRefRepo{db: conn}
}

const extrefColumns = `change_id, local_anchor, external_id, url, sync_state, last_posted_at, created_at, updated_at`

func (r *SQLiteExternalRefRepo) Create(ctx context.Context, ref *domain.ExternalReference) error {
	query := `INSERT INTO external_refs (` + extrefColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		ref.ChangeID,
		ref.LocalAnchor,
		ref.ExternalID,
		ref.URL,
		string(ref.SyncState),
		nullableTimeToString(ref.LastPostedAt, time.RFC3339),
		ref.CreatedAt.Format(time.RFC3339),
		ref.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting external ref %s/%s: %w", ref.ChangeID, ref.LocalAnchor, err)
	}
	return nil
}

func (r *SQLiteExternalRefRepo) Get(ctx context.Context, changeID, anchor string) (*domain.ExternalReference, error) {
	query := `SELECT ` + extrefColumns + ` FROM external_refs WHERE change_id = ? AND local_anchor = ?`
	row := r.db.QueryRowContext(ctx, query, changeID, anchor)

	ref, err := scanExternalRef(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("anchor %s of change %s: %w", anchor, changeID, domain.ErrReferenceNotFound)
		}
		return nil, fmt.Errorf("scanning external ref %s/%s: %w", changeID, anchor, err)
	}
	return ref, nil
}

func (r *SQLiteExternalRefRepo) List(ctx context.Context, changeID string) ([]*domain.ExternalReference, error) {
	query := `SELECT ` + extrefColumns + ` FROM external_refs WHERE change_id = ? ORDER BY local_anchor`
	rows, err := r.db.QueryContext(ctx, query, changeID)
	if err != nil {
		return nil, fmt.Errorf("listing external refs for %s: %w", changeID, err)
	}
	defer rows.Close()

	var refs []*domain.ExternalReference
	for rows.Next() {
		ref, err := scanExternalRef(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning external ref row: %w", err)
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating external refs: %w", err)
	}
	return refs, nil
}

func (r *SQLiteExternalRefRepo) SetState(ctx context.Context, changeID, anchor string, state domain.SyncState, postedAt *time.Time) error {
	query := `UPDATE external_refs SET sync_state = ?, last_posted_at = COALESCE(?, last_posted_at), updated_at = ?
		WHERE change_id = ? AND local_anchor = ?`
	res, err := r.db.ExecContext(ctx, query,
		string(state),
		nullableTimeToString(postedAt, time.RFC3339),
		nowUTC(),
		changeID,
		anchor,
	)
	if err != nil {
		return fmt.Errorf("updating external ref %s/%s: %w", changeID, anchor, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating external ref %s/%s: %w", changeID, anchor, err)
	}
	if n == 0 {
		return fmt.Errorf("anchor %s of change %s: %w", anchor, changeID, domain.ErrReferenceNotFound)
	}
	return nil
}

// MarkStaleIfPosted flips a posted reference to stale. References that
// are unposted or already stale are left alone, so this is safe to call
// on every local edit.
func (r *SQLiteExternalRefRepo) MarkStaleIfPosted(ctx context.Context, changeID, anchor string) error {
	query := `UPDATE external_refs SET sync_state = 'stale', updated_at = ?
		WHERE change_id = ? AND local_anchor = ? AND sync_state = 'posted'`
	if _, err := r.db.ExecContext(ctx, query, nowUTC(), changeID, anchor); err != nil {
		return fmt.Errorf("marking %s/%s stale: %w", changeID, anchor, err)
	}
	return nil
}

func scanExternalRef(scan func(dest ...any) error) (*domain.ExternalReference, error) {
	var ref domain.ExternalReference
	var stateStr, createdAtStr, updatedAtStr string
	var postedAtStr sql.NullString

	if err := scan(&ref.ChangeID, &ref.LocalAnchor, &ref.ExternalID, &ref.URL, &stateStr, &postedAtStr, &createdAtStr, &updatedAtStr); err != nil {
		return nil, err
	}

	ref.SyncState = domain.SyncState(stateStr)
	ref.LastPostedAt = parseNullableTime(postedAtStr, time.RFC3339)
	var err error
	if ref.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if ref.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &ref, nil
}
