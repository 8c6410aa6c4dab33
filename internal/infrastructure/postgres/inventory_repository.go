package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/alcafoods/magazzino-api/internal/domain/entity"
	"github.com/alcafoods/magazzino-api/internal/domain/repository"
)

var _ repository.InventoryRepository = (*InventoryRepo)(nil)

// InventoryRepo implementación del puerto InventoryRepository sobre PostgreSQL (usable con pool o tx).
type InventoryRepo struct {
	q Querier
}

// NewInventoryRepository construye el adaptador de sesiones de inventario. Pasar pool o tx (Querier).
func NewInventoryRepository(q Querier) *InventoryRepo {
	return &InventoryRepo{q: q}
}

// CreateSession persiste la sesión y asigna el ID generado.
func (r *InventoryRepo) CreateSession(ctx context.Context, s *entity.InventorySession) error {
	query := `
		INSERT INTO inventory_sessions (site, area, note, created_by, created_at, submitted_at)
		VALUES ($1, $2, $3, $4, $5, NULL)
		RETURNING id`
	err := r.q.QueryRow(ctx, query, s.Site, s.Area, s.Note, s.CreatedBy, s.CreatedAt).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("create inventory session: %w", err)
	}
	return nil
}

// CreateLine persiste una riga y asigna el ID generado.
func (r *InventoryRepo) CreateLine(ctx context.Context, l *entity.InventoryLine) error {
	query := `
		INSERT INTO inventory_lines (session_id, article, lot_id, unit_measure, theoretical, counted)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		l.SessionID, l.Article, l.LotID, l.UnitMeasure, l.Theoretical, l.Counted,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("create inventory line: %w", err)
	}
	return nil
}

// GetSession obtiene una sesión por ID. Devuelve nil si no existe.
func (r *InventoryRepo) GetSession(ctx context.Context, id int64) (*entity.InventorySession, error) {
	query := `
		SELECT id, site, area, note, created_by, created_at, submitted_at
		FROM inventory_sessions WHERE id = $1`
	var s entity.InventorySession
	err := r.q.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.Site, &s.Area, &s.Note, &s.CreatedBy, &s.CreatedAt, &s.SubmittedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory session: %w", err)
	}
	return &s, nil
}

// ListSessions lista sesiones, opcionalmente filtradas por ubicación y estado abierto.
func (r *InventoryRepo) ListSessions(ctx context.Context, site, area string, onlyOpen bool) ([]*entity.InventorySession, error) {
	query := `
		SELECT id, site, area, note, created_by, created_at, submitted_at
		FROM inventory_sessions WHERE 1=1`
	args := []any{}
	pos := 1
	if site != "" {
		query += fmt.Sprintf(" AND site = $%d", pos)
		args = append(args, site)
		pos++
	}
	if area != "" {
		query += fmt.Sprintf(" AND area = $%d", pos)
		args = append(args, area)
		pos++
	}
	if onlyOpen {
		query += " AND submitted_at IS NULL"
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventory sessions: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventorySession
	for rows.Next() {
		var s entity.InventorySession
		if err := rows.Scan(&s.ID, &s.Site, &s.Area, &s.Note, &s.CreatedBy, &s.CreatedAt, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan inventory session: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

const inventoryLineColumns = `id, session_id, article, lot_id, unit_measure, theoretical, counted`

// ListLines lista las righe de una sesión.
func (r *InventoryRepo) ListLines(ctx context.Context, sessionID int64) ([]*entity.InventoryLine, error) {
	query := `SELECT ` + inventoryLineColumns + ` FROM inventory_lines WHERE session_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list inventory lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryLine
	for rows.Next() {
		var l entity.InventoryLine
		if err := rows.Scan(&l.ID, &l.SessionID, &l.Article, &l.LotID, &l.UnitMeasure, &l.Theoretical, &l.Counted); err != nil {
			return nil, fmt.Errorf("scan inventory line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

// GetLine obtiene una riga de la sesión indicada. Devuelve nil si no existe.
func (r *InventoryRepo) GetLine(ctx context.Context, sessionID, lineID int64) (*entity.InventoryLine, error) {
	query := `SELECT ` + inventoryLineColumns + ` FROM inventory_lines WHERE id = $1 AND session_id = $2`
	var l entity.InventoryLine
	err := r.q.QueryRow(ctx, query, lineID, sessionID).Scan(
		&l.ID, &l.SessionID, &l.Article, &l.LotID, &l.UnitMeasure, &l.Theoretical, &l.Counted,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get inventory line: %w", err)
	}
	return &l, nil
}

// UpdateCount registra el conteo físico de una riga.
func (r *InventoryRepo) UpdateCount(ctx context.Context, lineID int64, counted decimal.Decimal) error {
	cmd, err := r.q.Exec(ctx, `UPDATE inventory_lines SET counted = $2 WHERE id = $1`, lineID, counted)
	if err != nil {
		return fmt.Errorf("update count: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("update count: riga %d no encontrada", lineID)
	}
	return nil
}

// ClaimSubmission marca la sesión como enviada solo si sigue abierta.
// El UPDATE condicional es la guardia at-most-once: bajo dos submit
// concurrentes exactamente uno ve RowsAffected == 1.
func (r *InventoryRepo) ClaimSubmission(ctx context.Context, sessionID int64, at time.Time) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE inventory_sessions SET submitted_at = $2 WHERE id = $1 AND submitted_at IS NULL`,
		sessionID, at,
	)
	if err != nil {
		return false, fmt.Errorf("claim submission: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}
