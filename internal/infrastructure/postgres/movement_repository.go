package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/alcafoods/magazzino-api/internal/domain/entity"
	"github.com/alcafoods/magazzino-api/internal/domain/repository"
	"github.com/alcafoods/magazzino-api/internal/domain/stock"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// defaultListLimit límite por defecto al listar movimientos.
const defaultListLimit = 1000

// MovementRepo implementación del ledger sobre PostgreSQL (usable con pool o tx).
// Solo INSERT y SELECT: el ledger es append-only por diseño del dominio.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

const movementColumns = `id, kind, article, lot_id, site, area, quantity, unit_price,
	effective_date, effective_time, note, order_line_id, transfer_id, created_by, created_at`

// Create persiste un movimiento.
func (r *MovementRepo) Create(ctx context.Context, m *entity.Movement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	_, err := r.q.Exec(ctx, query,
		m.ID, m.Kind, m.Article, m.LotID, m.Site, m.Area, m.Quantity, m.UnitPrice,
		m.EffectiveDate, m.EffectiveTime, m.Note, m.OrderLineID, m.TransferID,
		m.CreatedBy, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create movement: %w", err)
	}
	return nil
}

func scanMovement(row pgx.CollectableRow) (*entity.Movement, error) {
	var m entity.Movement
	err := row.Scan(&m.ID, &m.Kind, &m.Article, &m.LotID, &m.Site, &m.Area,
		&m.Quantity, &m.UnitPrice, &m.EffectiveDate, &m.EffectiveTime, &m.Note,
		&m.OrderLineID, &m.TransferID, &m.CreatedBy, &m.CreatedAt)
	return &m, err
}

// List devuelve movimientos filtrados, descendente por (data, ora) para visualización.
func (r *MovementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE 1=1`
	args := []any{}
	pos := 1
	add := func(cond string, val any) {
		query += fmt.Sprintf(" AND "+cond, pos)
		args = append(args, val)
		pos++
	}
	if f.Article != "" {
		add("article = $%d", f.Article)
	}
	if f.Site != "" {
		add("site = $%d", f.Site)
	}
	if f.Area != "" {
		add("area = $%d", f.Area)
	}
	if f.LotID != "" {
		add("lot_id = $%d", f.LotID)
	}
	if f.Kind != "" {
		add("kind = $%d", f.Kind)
	}
	if f.From != nil {
		add("effective_date >= $%d", *f.From)
	}
	if f.To != nil {
		add("effective_date <= $%d", *f.To)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	query += fmt.Sprintf(" ORDER BY effective_date DESC, effective_time DESC LIMIT $%d", pos)
	args = append(args, limit)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	return pgx.CollectRows(rows, scanMovement)
}

// BalanceOf suma con signo los movimientos de (artículo, sede, sezione).
func (r *MovementRepo) BalanceOf(ctx context.Context, article, site, area string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM movements WHERE article = $1 AND site = $2 AND area = $3`
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, article, site, area).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("balance of: %w", err)
	}
	return sum, nil
}

// LotBalanceOf suma con signo los movimientos de (artículo, lote, sede, sezione).
func (r *MovementRepo) LotBalanceOf(ctx context.Context, article, lotID, site, area string) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(quantity), 0)
		FROM movements WHERE article = $1 AND lot_id = $2 AND site = $3 AND area = $4`
	var sum decimal.Decimal
	if err := r.q.QueryRow(ctx, query, article, lotID, site, area).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("lot balance of: %w", err)
	}
	return sum, nil
}

// BalancesFor desglosa la giacenza de un artículo por ubicación.
func (r *MovementRepo) BalancesFor(ctx context.Context, article string) ([]repository.LocationBalance, error) {
	return r.Balances(ctx, article, "", "")
}

// Balances devuelve la giacenza por (artículo, ubicación) con filtros opcionales.
// Proyección derivada: se recalcula en cada consulta sumando el ledger.
func (r *MovementRepo) Balances(ctx context.Context, article, site, area string) ([]repository.LocationBalance, error) {
	query := `
		SELECT article, site, area, SUM(quantity) AS on_hand
		FROM movements WHERE 1=1`
	args := []any{}
	pos := 1
	if article != "" {
		query += fmt.Sprintf(" AND article = $%d", pos)
		args = append(args, article)
		pos++
	}
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
	query += ` GROUP BY article, site, area ORDER BY article, site, area`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("balances: %w", err)
	}
	defer rows.Close()
	var list []repository.LocationBalance
	for rows.Next() {
		var b repository.LocationBalance
		if err := rows.Scan(&b.Article, &b.Site, &b.Area, &b.OnHand); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// LotBalancesAt desglosa por (artículo, lote) la giacenza distinta de cero de
// una ubicación. Es el snapshot con el que se abre una sesión de inventario.
func (r *MovementRepo) LotBalancesAt(ctx context.Context, site, area string) ([]repository.LotBalance, error) {
	query := `
		SELECT m.article, m.lot_id, COALESCE(a.unit_measure, ''), SUM(m.quantity) AS on_hand
		FROM movements m
		LEFT JOIN articles a ON a.code = m.article
		WHERE m.site = $1 AND m.area = $2
		GROUP BY m.article, m.lot_id, a.unit_measure
		HAVING SUM(m.quantity) <> 0
		ORDER BY m.article, m.lot_id`
	rows, err := r.q.Query(ctx, query, site, area)
	if err != nil {
		return nil, fmt.Errorf("lot balances at: %w", err)
	}
	defer rows.Close()
	var list []repository.LotBalance
	for rows.Next() {
		var b repository.LotBalance
		if err := rows.Scan(&b.Article, &b.LotID, &b.UnitMeasure, &b.OnHand); err != nil {
			return nil, fmt.Errorf("scan lot balance: %w", err)
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// PricedLoads devuelve los LOAD con precio de un artículo, todas las ubicaciones,
// orden ascendente. Los TRANSFER_* quedan fuera: mover stock no cambia su costo.
func (r *MovementRepo) PricedLoads(ctx context.Context, article string) ([]stock.PricedLoad, error) {
	query := `
		SELECT quantity, unit_price
		FROM movements
		WHERE article = $1 AND kind = $2 AND unit_price IS NOT NULL
		ORDER BY effective_date, effective_time`
	rows, err := r.q.Query(ctx, query, article, entity.MovementLoad)
	if err != nil {
		return nil, fmt.Errorf("priced loads: %w", err)
	}
	defer rows.Close()
	var list []stock.PricedLoad
	for rows.Next() {
		var l stock.PricedLoad
		if err := rows.Scan(&l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("scan priced load: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// UnloadsSince devuelve los UNLOAD de un artículo desde from.
func (r *MovementRepo) UnloadsSince(ctx context.Context, article string, from time.Time) ([]stock.Unload, error) {
	query := `
		SELECT effective_date, quantity
		FROM movements
		WHERE article = $1 AND kind = $2 AND effective_date >= $3`
	rows, err := r.q.Query(ctx, query, article, entity.MovementUnload, from)
	if err != nil {
		return nil, fmt.Errorf("unloads since: %w", err)
	}
	defer rows.Close()
	var list []stock.Unload
	for rows.Next() {
		var u stock.Unload
		if err := rows.Scan(&u.Date, &u.Quantity); err != nil {
			return nil, fmt.Errorf("scan unload: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

// LatestMovementID devuelve el id del movimiento más reciente del artículo
// (clave de versión del cache de valoración); "" sin movimientos.
func (r *MovementRepo) LatestMovementID(ctx context.Context, article string) (string, error) {
	query := `
		SELECT id FROM movements WHERE article = $1
		ORDER BY created_at DESC LIMIT 1`
	var id string
	err := r.q.QueryRow(ctx, query, article).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("latest movement id: %w", err)
	}
	return id, nil
}

// ReceivedByOrderLines suma las cantidades LOAD enlazadas a cada riga d'ordine.
// Las righe sin carichi no aparecen en el mapa.
func (r *MovementRepo) ReceivedByOrderLines(ctx context.Context, lineIDs []int64) (map[int64]decimal.Decimal, error) {
	if len(lineIDs) == 0 {
		return map[int64]decimal.Decimal{}, nil
	}
	query := `
		SELECT order_line_id, SUM(quantity)
		FROM movements
		WHERE kind = $1 AND order_line_id = ANY($2)
		GROUP BY order_line_id`
	rows, err := r.q.Query(ctx, query, entity.MovementLoad, lineIDs)
	if err != nil {
		return nil, fmt.Errorf("received by order lines: %w", err)
	}
	defer rows.Close()
	result := make(map[int64]decimal.Decimal, len(lineIDs))
	for rows.Next() {
		var lineID int64
		var qty decimal.Decimal
		if err := rows.Scan(&lineID, &qty); err != nil {
			return nil, fmt.Errorf("scan received: %w", err)
		}
		result[lineID] = qty
	}
	return result, rows.Err()
}
