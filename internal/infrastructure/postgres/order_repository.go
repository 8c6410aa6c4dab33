package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/alcafoods/magazzino-api/internal/domain/entity"
	"github.com/alcafoods/magazzino-api/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación del puerto OrderRepository sobre PostgreSQL (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador de ordini. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

// CreateHeader persiste la testata y asigna el ID generado.
func (r *OrderRepo) CreateHeader(ctx context.Context, o *entity.Order) error {
	query := `
		INSERT INTO orders (order_date, number, supplier, notes, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		o.OrderDate, o.Number, o.Supplier, o.Notes, o.CreatedBy, o.CreatedAt,
	).Scan(&o.ID)
	if err != nil {
		return fmt.Errorf("create order header: %w", err)
	}
	return nil
}

// CreateLine persiste una riga y asigna el ID generado.
func (r *OrderRepo) CreateLine(ctx context.Context, l *entity.OrderLine) error {
	query := `
		INSERT INTO order_lines (order_id, article, description, unit_measure,
			ordered_qty, expected_arrival, last_price, price_snapshot)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		l.OrderID, l.Article, l.Description, l.UnitMeasure,
		l.OrderedQty, l.ExpectedArrival, l.LastPrice, l.PriceSnapshot,
	).Scan(&l.ID)
	if err != nil {
		return fmt.Errorf("create order line: %w", err)
	}
	return nil
}

// GetByID obtiene una testata por ID. Devuelve nil si no existe.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*entity.Order, error) {
	query := `
		SELECT id, order_date, number, supplier, notes, created_by, created_at
		FROM orders WHERE id = $1`
	var o entity.Order
	err := r.q.QueryRow(ctx, query, id).Scan(
		&o.ID, &o.OrderDate, &o.Number, &o.Supplier, &o.Notes, &o.CreatedBy, &o.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

const orderLineColumns = `id, order_id, article, description, unit_measure,
	ordered_qty, expected_arrival, last_price, price_snapshot`

// GetLine obtiene una riga por ID. Devuelve nil si no existe.
func (r *OrderRepo) GetLine(ctx context.Context, lineID int64) (*entity.OrderLine, error) {
	query := `SELECT ` + orderLineColumns + ` FROM order_lines WHERE id = $1`
	var l entity.OrderLine
	err := r.q.QueryRow(ctx, query, lineID).Scan(
		&l.ID, &l.OrderID, &l.Article, &l.Description, &l.UnitMeasure,
		&l.OrderedQty, &l.ExpectedArrival, &l.LastPrice, &l.PriceSnapshot,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order line: %w", err)
	}
	return &l, nil
}

// ListLines lista las righe de un ordine.
func (r *OrderRepo) ListLines(ctx context.Context, orderID int64) ([]*entity.OrderLine, error) {
	query := `SELECT ` + orderLineColumns + ` FROM order_lines WHERE order_id = $1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order lines: %w", err)
	}
	defer rows.Close()
	var list []*entity.OrderLine
	for rows.Next() {
		var l entity.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.Article, &l.Description, &l.UnitMeasure,
			&l.OrderedQty, &l.ExpectedArrival, &l.LastPrice, &l.PriceSnapshot); err != nil {
			return nil, fmt.Errorf("scan order line: %w", err)
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}
