package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/draftctl/draftctl/internal/db"
	"github.com/draftctl/draftctl/internal/domain"
)

// SQLiteChangeRepo implements ChangeRepo over the changes registry table.
type SQLiteChangeRepo struct {
	db db.DBTX
}

// NewSQLiteChangeRepo creates a new SQLiteChangeRepo.
func NewSQLiteChangeRepo(conn db.DBTX) *SQLiteChangeRepo {
	return &SQLiteChangeRepo{db: conn}
}

func (r *SQLiteChangeRepo) Create(ctx context.Context, c *domain.Change) error {
	query := `INSERT INTO changes (id, change_type, title, target_milestone, status, created_at, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID,
		string(c.Type),
		c.Title,
		c.TargetMilestone,
		string(c.Status),
		c.CreatedAt.Format(time.RFC3339),
		nullableTimeToString(c.ClosedAt, time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting change %s: %w", c.ID, err)
	}
	return nil
}

func (r *SQLiteChangeRepo) GetByID(ctx context.Context, id string) (*domain.Change, error) {
	query := `SELECT id, change_type, title, target_milestone, status, created_at, closed_at
		FROM changes WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	c, err := scanChange(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("change %s: %w", id, domain.ErrChangeNotFound)
		}
		return nil, fmt.Errorf("scanning change %s: %w", id, err)
	}
	return c, nil
}

func (r *SQLiteChangeRepo) List(ctx context.Context, includeClosed bool) ([]RegistryRow, error) {
	query := `SELECT c.id, c.change_type, c.title, c.target_milestone, c.status, c.created_at, c.closed_at,
			COALESCE(d.current_phase, '')
		FROM changes c
		LEFT JOIN documents d ON d.change_id = c.id`
	if !includeClosed {
		query += ` WHERE c.closed_at IS NULL`
	}
	query += ` ORDER BY c.created_at, c.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing changes: %w", err)
	}
	defer rows.Close()

	var out []RegistryRow
	for rows.Next() {
		var row RegistryRow
		var createdAtStr, statusStr, typeStr, phaseStr string
		var closedAtStr sql.NullString
		if err := rows.Scan(
			&row.Change.ID, &typeStr, &row.Change.Title, &row.Change.TargetMilestone,
			&statusStr, &createdAtStr, &closedAtStr, &phaseStr,
		); err != nil {
			return nil, fmt.Errorf("scanning change row: %w", err)
		}
		row.Change.Type = domain.ChangeType(typeStr)
		row.Change.Status = domain.ChangeStatus(statusStr)
		row.CurrentPhase = domain.Phase(phaseStr)
		created, err := time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		row.Change.CreatedAt = created
		row.Change.ClosedAt = parseNullableTime(closedAtStr, time.RFC3339)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating changes: %w", err)
	}
	return out, nil
}

func (r *SQLiteChangeRepo) Update(ctx context.Context, c *domain.Change) error {
	query := `UPDATE changes SET title = ?, target_milestone = ?, status = ?, closed_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		c.Title,
		c.TargetMilestone,
		string(c.Status),
		nullableTimeToString(c.ClosedAt, time.RFC3339),
		c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating change %s: %w", c.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating change %s: %w", c.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("change %s: %w", c.ID, domain.ErrChangeNotFound)
	}
	return nil
}

// Delete removes a registry record. The allocations log is untouched, so
// the identifier is permanently retired.
func (r *SQLiteChangeRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM changes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting change %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting change %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("change %s: %w", id, domain.ErrChangeNotFound)
	}
	return nil
}

func scanChange(scan func(dest ...any) error) (*domain.Change, error) {
	var c domain.Change
	var typeStr, statusStr, createdAtStr string
	var closedAtStr sql.NullString

	if err := scan(&c.ID, &typeStr, &c.Title, &c.TargetMilestone, &statusStr, &createdAtStr, &closedAtStr); err != nil {
		return nil, err
	}

	c.Type = domain.ChangeType(typeStr)
	c.Status = domain.ChangeStatus(statusStr)

	created, err := time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	c.CreatedAt = created
	c.ClosedAt = parseNullableTime(closedAtStr, time.RFC3339)
	return &c, nil
}
