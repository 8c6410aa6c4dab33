package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/alcafoods/magazzino-api/internal/domain/entity"
	"github.com/alcafoods/magazzino-api/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo implementación del puerto TransferRepository sobre PostgreSQL (usable con pool o tx).
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador de trasferimenti. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

const transferColumns = `id, article, lot_id, from_site, from_area, to_site, to_area,
	quantity, effective_date, effective_time, note, created_by, created_at`

// Create persiste un trasferimento.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.Article, t.LotID, t.FromSite, t.FromArea, t.ToSite, t.ToArea,
		t.Quantity, t.EffectiveDate, t.EffectiveTime, t.Note, t.CreatedBy, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create transfer: %w", err)
	}
	return nil
}

// GetByID obtiene un trasferimento por ID. Devuelve nil si no existe.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`
	var t entity.Transfer
	err := r.q.QueryRow(ctx, query, id).Scan(
		&t.ID, &t.Article, &t.LotID, &t.FromSite, &t.FromArea, &t.ToSite, &t.ToArea,
		&t.Quantity, &t.EffectiveDate, &t.EffectiveTime, &t.Note, &t.CreatedBy, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transfer: %w", err)
	}
	return &t, nil
}

// List devuelve trasferimenti filtrados, descendente por (data, ora).
func (r *TransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE 1=1`
	args := []any{}
	pos := 1
	if f.Article != "" {
		query += fmt.Sprintf(" AND article = $%d", pos)
		args = append(args, f.Article)
		pos++
	}
	if f.FromSite != "" {
		query += fmt.Sprintf(" AND from_site = $%d", pos)
		args = append(args, f.FromSite)
		pos++
	}
	if f.ToSite != "" {
		query += fmt.Sprintf(" AND to_site = $%d", pos)
		args = append(args, f.ToSite)
		pos++
	}
	if f.From != nil {
		query += fmt.Sprintf(" AND effective_date >= $%d", pos)
		args = append(args, *f.From)
		pos++
	}
	if f.To != nil {
		query += fmt.Sprintf(" AND effective_date <= $%d", pos)
		args = append(args, *f.To)
		pos++
	}
	query += ` ORDER BY effective_date DESC, effective_time DESC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()
	var list []*entity.Transfer
	for rows.Next() {
		var t entity.Transfer
		if err := rows.Scan(&t.ID, &t.Article, &t.LotID, &t.FromSite, &t.FromArea, &t.ToSite, &t.ToArea,
			&t.Quantity, &t.EffectiveDate, &t.EffectiveTime, &t.Note, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}
