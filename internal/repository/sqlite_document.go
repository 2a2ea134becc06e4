package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/draftctl/draftctl/internal/db"
	"github.com/draftctl/draftctl/internal/domain"
)

// SQLiteDocumentRepo implements DocumentRepo over the documents and
// sections tables.
type SQLiteDocumentRepo struct {
	db db.DBTX
}

// NewSQLiteDocumentRepo creates a new SQLiteDocumentRepo.
func NewSQLiteDocumentRepo(conn db.DBTX) *SQLiteDocumentRepo {
	return &SQLiteDocumentRepo{db: conn}
}

func (r *SQLiteDocumentRepo) Create(ctx context.Context, d *domain.PlanDocument) error {
	query := `INSERT INTO documents (change_id, current_phase, archived_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		d.ChangeID,
		string(d.CurrentPhase),
		nullableTimeToString(d.ArchivedAt, time.RFC3339),
		d.CreatedAt.Format(time.RFC3339),
		d.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting document for %s: %w", d.ChangeID, err)
	}
	return nil
}

func (r *SQLiteDocumentRepo) Get(ctx context.Context, changeID string) (*domain.PlanDocument, error) {
	query := `SELECT change_id, current_phase, archived_at, created_at, updated_at
		FROM documents WHERE change_id = ?`
	row := r.db.QueryRowContext(ctx, query, changeID)

	var d domain.PlanDocument
	var phaseStr, createdAtStr, updatedAtStr string
	var archivedAtStr sql.NullString
	err := row.Scan(&d.ChangeID, &phaseStr, &archivedAtStr, &createdAtStr, &updatedAtStr)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("change %s: %w", changeID, domain.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("scanning document %s: %w", changeID, err)
	}

	d.CurrentPhase = domain.Phase(phaseStr)
	d.ArchivedAt = parseNullableTime(archivedAtStr, time.RFC3339)
	if d.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if d.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &d, nil
}

func (r *SQLiteDocumentRepo) SetPhase(ctx context.Context, changeID string, phase domain.Phase) error {
	query := `UPDATE documents SET current_phase = ?, updated_at = ? WHERE change_id = ?`
	res, err := r.db.ExecContext(ctx, query, string(phase), nowUTC(), changeID)
	if err != nil {
		return fmt.Errorf("setting phase for %s: %w", changeID, err)
	}
	return requireDocumentRow(res, changeID)
}

func (r *SQLiteDocumentRepo) Archive(ctx context.Context, changeID string) error {
	now := nowUTC()
	query := `UPDATE documents SET archived_at = ?, updated_at = ? WHERE change_id = ? AND archived_at IS NULL`
	if _, err := r.db.ExecContext(ctx, query, now, now, changeID); err != nil {
		return fmt.Errorf("archiving document %s: %w", changeID, err)
	}
	return nil
}

func (r *SQLiteDocumentRepo) CreateSection(ctx context.Context, s *domain.SectionContent, orderIndex int) error {
	query := `INSERT INTO sections (change_id, name, body, is_placeholder, last_modified_phase, order_index, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ChangeID,
		s.Name,
		s.Body,
		boolToInt(s.IsPlaceholder),
		string(s.LastModifiedPhase),
		orderIndex,
		s.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting section %s/%s: %w", s.ChangeID, s.Name, err)
	}
	return nil
}

func (r *SQLiteDocumentRepo) GetSection(ctx context.Context, changeID, name string) (*domain.SectionContent, error) {
	query := `SELECT change_id, name, body, is_placeholder, last_modified_phase, updated_at
		FROM sections WHERE change_id = ? AND name = ?`
	row := r.db.QueryRowContext(ctx, query, changeID, name)

	s, err := scanSection(row.Scan)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("section %s of change %s: %w", name, changeID, domain.ErrUnknownSection)
		}
		return nil, fmt.Errorf("scanning section %s/%s: %w", changeID, name, err)
	}
	return s, nil
}

func (r *SQLiteDocumentRepo) ListSections(ctx context.Context, changeID string) ([]*domain.SectionContent, error) {
	query := `SELECT change_id, name, body, is_placeholder, last_modified_phase, updated_at
		FROM sections WHERE change_id = ? ORDER BY order_index`
	rows, err := r.db.QueryContext(ctx, query, changeID)
	if err != nil {
		return nil, fmt.Errorf("listing sections for %s: %w", changeID, err)
	}
	defer rows.Close()

	var sections []*domain.SectionContent
	for rows.Next() {
		s, err := scanSection(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning section row: %w", err)
		}
		sections = append(sections, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sections: %w", err)
	}
	return sections, nil
}

func (r *SQLiteDocumentRepo) UpdateSection(ctx context.Context, s *domain.SectionContent) error {
	query := `UPDATE sections SET body = ?, is_placeholder = ?, last_modified_phase = ?, updated_at = ?
		WHERE change_id = ? AND name = ?`
	res, err := r.db.ExecContext(ctx, query,
		s.Body,
		boolToInt(s.IsPlaceholder),
		string(s.LastModifiedPhase),
		s.UpdatedAt.Format(time.RFC3339),
		s.ChangeID,
		s.Name,
	)
	if err != nil {
		return fmt.Errorf("updating section %s/%s: %w", s.ChangeID, s.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating section %s/%s: %w", s.ChangeID, s.Name, err)
	}
	if n == 0 {
		return fmt.Errorf("section %s of change %s: %w", s.Name, s.ChangeID, domain.ErrUnknownSection)
	}
	return nil
}

func scanSection(scan func(dest ...any) error) (*domain.SectionContent, error) {
	var s domain.SectionContent
	var placeholder int
	var phaseStr, updatedAtStr string

	if err := scan(&s.ChangeID, &s.Name, &s.Body, &placeholder, &phaseStr, &updatedAtStr); err != nil {
		return nil, err
	}

	s.IsPlaceholder = placeholder != 0
	s.LastModifiedPhase = domain.Phase(phaseStr)
	updated, err := time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	s.UpdatedAt = updated
	return &s, nil
}

func requireDocumentRow(res sql.Result, changeID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("document %s: %w", changeID, err)
	}
	if n == 0 {
		return fmt.Errorf("change %s: %w", changeID, domain.ErrDocumentNotFound)
	}
	return nil
}
