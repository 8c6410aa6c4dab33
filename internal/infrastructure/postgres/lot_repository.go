package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/alcafoods/magazzino-api/internal/domain"
	"github.com/alcafoods/magazzino-api/internal/domain/entity"
	"github.com/alcafoods/magazzino-api/internal/domain/repository"
)

var _ repository.LotRepository = (*LotRepo)(nil)

// LotRepo implementación del puerto LotRepository sobre PostgreSQL (usable con pool o tx).
type LotRepo struct {
	q Querier
}

// NewLotRepository construye el adaptador de lotes. Pasar pool o tx (Querier).
func NewLotRepository(q Querier) *LotRepo {
	return &LotRepo{q: q}
}

// NextSeq reserva el siguiente número de la secuencia de lotes. La secuencia
// de PostgreSQL garantiza números distintos y crecientes bajo concurrencia;
// los huecos por rollback son aceptables.
func (r *LotRepo) NextSeq(ctx context.Context) (int64, error) {
	var seq int64
	if err := r.q.QueryRow(ctx, `SELECT nextval('lot_internal_seq')`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next lot seq: %w", err)
	}
	return seq, nil
}

// Create persiste un lote nuevo. La tripla (article, supplier_lot, expiry)
// duplicada se absorbe con ON CONFLICT DO NOTHING y se mapea a
// domain.ErrDuplicateLot: un 23505 abortaría la transacción en curso y el
// caller (find-or-create del ricevimento) ya no podría releer el lote ganador.
// La colisión de BATCH_ID (no cubierta por el conflict target) se mapea a
// domain.ErrConflict.
func (r *LotRepo) Create(ctx context.Context, lot *entity.Lot) error {
	query := `
		INSERT INTO lots (id, internal_seq, article, supplier_lot, expiry, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (article, supplier_lot, expiry) DO NOTHING`
	tag, err := r.q.Exec(ctx, query,
		lot.ID, lot.InternalSeq, lot.Article, lot.SupplierLot, lot.Expiry, lot.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("create lot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateLot
	}
	return nil
}

// GetByID obtiene un lote por BATCH_ID. Devuelve nil si no existe.
func (r *LotRepo) GetByID(ctx context.Context, id string) (*entity.Lot, error) {
	query := `
		SELECT id, internal_seq, article, supplier_lot, expiry, created_at
		FROM lots WHERE id = $1`
	var l entity.Lot
	err := r.q.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.InternalSeq, &l.Article, &l.SupplierLot, &l.Expiry, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot: %w", err)
	}
	return &l, nil
}

// GetForUpdate obtiene el lote bloqueando su fila hasta el commit/rollback de
// la transacción en curso. Devuelve nil si no existe.
func (r *LotRepo) GetForUpdate(ctx context.Context, id string) (*entity.Lot, error) {
	query := `
		SELECT id, internal_seq, article, supplier_lot, expiry, created_at
		FROM lots WHERE id = $1
		FOR UPDATE`
	var l entity.Lot
	err := r.q.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.InternalSeq, &l.Article, &l.SupplierLot, &l.Expiry, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get lot for update: %w", err)
	}
	return &l, nil
}

// FindByTriple busca un lote por (artículo, lote fornitore, scadenza). Devuelve nil si no existe.
func (r *LotRepo) FindByTriple(ctx context.Context, article, supplierLot string, expiry time.Time) (*entity.Lot, error) {
	query := `
		SELECT id, internal_seq, article, supplier_lot, expiry, created_at
		FROM lots WHERE article = $1 AND supplier_lot = $2 AND expiry = $3`
	var l entity.Lot
	err := r.q.QueryRow(ctx, query, article, supplierLot, expiry).Scan(
		&l.ID, &l.InternalSeq, &l.Article, &l.SupplierLot, &l.Expiry, &l.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find lot by triple: %w", err)
	}
	return &l, nil
}

// ListByArticle lista los lotes de un artículo, más recientes primero.
func (r *LotRepo) ListByArticle(ctx context.Context, article string) ([]*entity.Lot, error) {
	query := `
		SELECT id, internal_seq, article, supplier_lot, expiry, created_at
		FROM lots WHERE article = $1 ORDER BY internal_seq DESC`
	rows, err := r.q.Query(ctx, query, article)
	if err != nil {
		return nil, fmt.Errorf("list lots: %w", err)
	}
	defer rows.Close()
	var list []*entity.Lot
	for rows.Next() {
		var l entity.Lot
		if err := rows.Scan(&l.ID, &l.InternalSeq, &l.Article, &l.SupplierLot, &l.Expiry, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan lot: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
