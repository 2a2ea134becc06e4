package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/draftctl/draftctl/internal/db"
	"github.com/draftctl/draftctl/internal/domain"
)

// SQLiteConsiderationRepo implements ConsiderationRepo over the
// considerations table and its append-only event log.
type SQLiteConsiderationRepo struct {
	db db.DBTX
}

// NewSQLiteConsiderationRepo creates a new SQLiteConsiderationRepo.
func NewSQLiteConsiderationRepo(conn db.DBTX) *SQLiteConsiderationRepo {
	return &SQLiteConsiderationRepo{db: conn}
}

const considerationColumns = `change_id, seq, question, answer, status, created_at, updated_at`

// NextSeq returns the next sequential consideration number within a
// document. Single-writer-per-document, so max+1 is safe.
func (r *SQLiteConsiderationRepo) NextSeq(ctx context.Context, changeID string) (int, error) {
	var next int
	query := `SELECT COALESCE(MAX(seq), 0) + 1 FROM considerations WHERE change_id = ?`
	if err := r.db.QueryRowContext(ctx, query, changeID).Scan(&next); err != nil {
		return 0, fmt.Errorf("allocating consideration seq for %s: %w", changeID, err)
	}
	return next, nil
}

func (r *SQLiteConsiderationRepo) Create(ctx context.Context, c *domain.Consideration) error {
	query := `INSERT INTO considerations (` + considerationColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ChangeID,
		c.Seq,
		c.Question,
		c.Answer,
		string(c.Status),
		c.CreatedAt.Format(time.RFC3339),
		c.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting consideration %s/%d: %w", c.ChangeID, c.Seq, err)
	}
	return nil
}

func (r *SQLiteConsiderationRepo) Get(ctx context.Context, changeID string, seq int) (*domain.Consideration, error) {
	query := `SELECT ` + considerationColumns + ` FROM considerations WHERE change_id = ? AND seq = ?`
	row := r.db.QueryRowContext(ctx, query, changeID, seq)

	c, err := scanConsideration(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("consideration %d of change %s: %w", seq, changeID, domain.ErrConsiderationNotFound)
		}
		return nil, fmt.Errorf("scanning consideration %s/%d: %w", changeID, seq, err)
	}
	return c, nil
}

func (r *SQLiteConsiderationRepo) List(ctx context.Context, changeID string) ([]*domain.Consideration, error) {
	query := `SELECT ` + considerationColumns + ` FROM considerations WHERE change_id = ? ORDER BY seq`
	return r.list(ctx, query, changeID)
}

func (r *SQLiteConsiderationRepo) ListPending(ctx context.Context, changeID string) ([]*domain.Consideration, error) {
	query := `SELECT ` + considerationColumns + ` FROM considerations
		WHERE change_id = ? AND status = 'pending_review' ORDER BY seq`
	return r.list(ctx, query, changeID)
}

func (r *SQLiteConsiderationRepo) Update(ctx context.Context, c *domain.Consideration) error {
	query := `UPDATE considerations SET answer = ?, status = ?, updated_at = ?
		WHERE change_id = ? AND seq = ?`
	res, err := r.db.ExecContext(ctx, query,
		c.Answer,
		string(c.Status),
		c.UpdatedAt.Format(time.RFC3339),
		c.ChangeID,
		c.Seq,
	)
	if err != nil {
		return fmt.Errorf("updating consideration %s/%d: %w", c.ChangeID, c.Seq, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating consideration %s/%d: %w", c.ChangeID, c.Seq, err)
	}
	if n == 0 {
		return fmt.Errorf("consideration %d of change %s: %w", c.Seq, c.ChangeID, domain.ErrConsiderationNotFound)
	}
	return nil
}

func (r *SQLiteConsiderationRepo) AppendEvent(ctx context.Context, e *domain.ConsiderationEvent) error {
	query := `INSERT INTO consideration_events (id, change_id, seq, kind, detail, at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		e.ID, e.ChangeID, e.Seq, string(e.Kind), e.Detail, e.At.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("appending consideration event %s/%d: %w", e.ChangeID, e.Seq, err)
	}
	return nil
}

func (r *SQLiteConsiderationRepo) ListEvents(ctx context.Context, changeID string, seq int) ([]*domain.ConsiderationEvent, error) {
	// rowid preserves append order; the second-resolution timestamps
	// collapse for events logged within the same second.
	query := `SELECT id, change_id, seq, kind, detail, at FROM consideration_events
		WHERE change_id = ? AND seq = ? ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query, changeID, seq)
	if err != nil {
		return nil, fmt.Errorf("listing consideration events: %w", err)
	}
	defer rows.Close()

	var events []*domain.ConsiderationEvent
	for rows.Next() {
		var e domain.ConsiderationEvent
		var kindStr, atStr string
		if err := rows.Scan(&e.ID, &e.ChangeID, &e.Seq, &kindStr, &e.Detail, &atStr); err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		e.Kind = domain.ConsiderationEventKind(kindStr)
		at, err := time.Parse(time.RFC3339, atStr)
		if err != nil {
			return nil, fmt.Errorf("parsing event time: %w", err)
		}
		e.At = at
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating events: %w", err)
	}
	return events, nil
}

func (r *SQLiteConsiderationRepo) list(ctx context.Context, query string, args ...any) ([]*domain.Consideration, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing considerations: %w", err)
	}
	defer rows.Close()

	var out []*domain.Consideration
	for rows.Next() {
		c, err := scanConsideration(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning consideration row: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating considerations: %w", err)
	}
	return out, nil
}

func scanConsideration(scan func(dest ...any) error) (*domain.Consideration, error) {
	var c domain.Consideration
	var statusStr, createdAtStr, updatedAtStr string

	if err := scan(&c.ChangeID, &c.Seq, &c.Question, &c.Answer, &statusStr, &createdAtStr, &updatedAtStr); err != nil {
		return nil, err
	}

	c.Status = domain.ConsiderationStatus(statusStr)
	var err error
	if c.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if c.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &c, nil
}
