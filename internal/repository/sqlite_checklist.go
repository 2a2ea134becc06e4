package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/draftctl/draftctl/internal/db"
	"github.com/draftctl/draftctl/internal/domain"
)

// SQLiteChecklistRepo implements ChecklistRepo.
type SQLiteChecklistRepo struct {
	db db.DBTX
}

// NewSQLiteChecklistRepo creates a new SQLiteChecklistRepo.
func NewSQLiteChecklistRepo(conn db.DBTX) *SQLiteChecklistRepo {
	return &SQLiteChecklistRepo{db: conn}
}

const checklistColumns = `id, change_id, phase, description, done, parent_id, created_at, updated_at`

func (r *SQLiteChecklistRepo) Create(ctx context.Context, item *domain.ChecklistItem) error {
	query := `INSERT INTO checklist_items (` + checklistColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.ChangeID,
		string(item.Phase),
		item.Description,
		boolToInt(item.Done),
		nullableString(item.ParentID),
		item.CreatedAt.Format(time.RFC3339),
		item.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting checklist item for %s: %w", item.ChangeID, err)
	}
	return nil
}

func (r *SQLiteChecklistRepo) GetByID(ctx context.Context, changeID, id string) (*domain.ChecklistItem, error) {
	query := `SELECT ` + checklistColumns + ` FROM checklist_items WHERE change_id = ? AND id = ?`
	row := r.db.QueryRowContext(ctx, query, changeID, id)

	item, err := scanChecklistItem(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("item %s of change %s: %w", id, changeID, domain.ErrChecklistItemNotFound)
		}
		return nil, fmt.Errorf("scanning checklist item %s: %w", id, err)
	}
	return item, nil
}

// Find looks up an item by its logical identity (phase, description,
// parent). Used to make repeated phase invocations idempotent.
func (r *SQLiteChecklistRepo) Find(ctx context.Context, changeID string, phase domain.Phase, description string, parentID *string) (*domain.ChecklistItem, error) {
	query := `SELECT ` + checklistColumns + ` FROM checklist_items
		WHERE change_id = ? AND phase = ? AND description = ?`
	args := []any{changeID, string(phase), description}
	if parentID == nil {
		query += ` AND parent_id IS NULL`
	} else {
		query += ` AND parent_id = ?`
		args = append(args, *parentID)
	}
	row := r.db.QueryRowContext(ctx, query, args...)

	item, err := scanChecklistItem(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("item %q of change %s: %w", description, changeID, domain.ErrChecklistItemNotFound)
		}
		return nil, fmt.Errorf("finding checklist item %q: %w", description, err)
	}
	return item, nil
}

func (r *SQLiteChecklistRepo) ListByPhase(ctx context.Context, changeID string, phase domain.Phase) ([]*domain.ChecklistItem, error) {
	query := `SELECT ` + checklistColumns + ` FROM checklist_items
		WHERE change_id = ? AND phase = ? ORDER BY created_at, id`
	return r.list(ctx, query, changeID, string(phase))
}

func (r *SQLiteChecklistRepo) ListByChange(ctx context.Context, changeID string) ([]*domain.ChecklistItem, error) {
	query := `SELECT ` + checklistColumns + ` FROM checklist_items
		WHERE change_id = ? ORDER BY created_at, id`
	return r.list(ctx, query, changeID)
}

func (r *SQLiteChecklistRepo) ListChildren(ctx context.Context, id string) ([]*domain.ChecklistItem, error) {
	query := `SELECT ` + checklistColumns + ` FROM checklist_items
		WHERE parent_id = ? ORDER BY created_at, id`
	return r.list(ctx, query, id)
}

func (r *SQLiteChecklistRepo) SetDone(ctx context.Context, changeID, id string, done bool) error {
	query := `UPDATE checklist_items SET done = ?, updated_at = ? WHERE change_id = ? AND id = ?`
	res, err := r.db.ExecContext(ctx, query, boolToInt(done), nowUTC(), changeID, id)
	if err != nil {
		return fmt.Errorf("updating checklist item %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating checklist item %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("item %s of change %s: %w", id, changeID, domain.ErrChecklistItemNotFound)
	}
	return nil
}

func (r *SQLiteChecklistRepo) list(ctx context.Context, query string, args ...any) ([]*domain.ChecklistItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing checklist items: %w", err)
	}
	defer rows.Close()

	var items []*domain.ChecklistItem
	for rows.Next() {
		item, err := scanChecklistItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning checklist row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating checklist items: %w", err)
	}
	return items, nil
}

func scanChecklistItem(scan func(dest ...any) error) (*domain.ChecklistItem, error) {
	var item domain.ChecklistItem
	var done int
	var phaseStr, createdAtStr, updatedAtStr string
	var parentStr sql.NullString

	if err := scan(&item.ID, &item.ChangeID, &phaseStr, &item.Description, &done, &parentStr, &createdAtStr, &updatedAtStr); err != nil {
		return nil, err
	}

	item.Phase = domain.Phase(phaseStr)
	item.Done = done != 0
	if parentStr.Valid {
		parent := parentStr.String
		item.ParentID = &parent
	}

	var err error
	if item.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if item.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &item, nil
}
