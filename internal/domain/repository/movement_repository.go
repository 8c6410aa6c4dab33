package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/alcafoods/magazzino-api/internal/domain/entity"
	"github.com/alcafoods/magazzino-api/internal/domain/stock"
)

// MovementFilter filtros para listar movimientos del ledger.
type MovementFilter struct {
	Article string
	Site    string
	Area    string
	LotID   string
	Kind    string
	From    *time.Time
	To      *time.Time
	Limit   int // 0 = límite por defecto del adaptador
}

// LocationBalance giacenza de un artículo en una ubicación (proyección derivada).
type LocationBalance struct {
	Article string
	Site    string
	Area    string
	OnHand  decimal.Decimal
}

// LotBalance giacenza de un (artículo, lote) en una ubicación.
type LotBalance struct {
	Article     string
	LotID       string
	UnitMeasure string
	OnHand      decimal.Decimal
}

// MovementRepository define el puerto del ledger de movimientos.
// Append-only: no hay Update ni Delete; todas las proyecciones (giacenze,
// costo medio, consumo) se derivan en lectura.
type MovementRepository interface {
	Create(ctx context.Context, movement *entity.Movement) error
	// List devuelve movimientos ordenados por (data_effettiva, ora_effettiva)
	// descendente, para visualización.
	List(ctx context.Context, filter MovementFilter) ([]*entity.Movement, error)

	// BalanceOf suma con signo los movimientos de (artículo, sede, sezione).
	BalanceOf(ctx context.Context, article, site, area string) (decimal.Decimal, error)
	// LotBalanceOf suma con signo los movimientos de (artículo, lote, sede, sezione).
	LotBalanceOf(ctx context.Context, article, lotID, site, area string) (decimal.Decimal, error)
	// BalancesFor desglosa la giacenza de un artículo por ubicación.
	BalancesFor(ctx context.Context, article string) ([]LocationBalance, error)
	// Balances devuelve la giacenza por (artículo, ubicación), con filtros opcionales.
	Balances(ctx context.Context, article, site, area string) ([]LocationBalance, error)
	// LotBalancesAt desglosa por (artículo, lote) la giacenza de una ubicación
	// (snapshot para abrir una sesión de inventario). Solo entradas con giacenza distinta de cero.
	LotBalancesAt(ctx context.Context, site, area string) ([]LotBalance, error)

	// PricedLoads devuelve los LOAD con precio de un artículo, todas las
	// ubicaciones, orden ascendente (entrada del motor de valoración).
	PricedLoads(ctx context.Context, article string) ([]stock.PricedLoad, error)
	// UnloadsSince devuelve los UNLOAD de un artículo desde from (estimador de consumo).
	UnloadsSince(ctx context.Context, article string, from time.Time) ([]stock.Unload, error)
	// LatestMovementID devuelve el id del último movimiento del artículo
	// (clave de versión del cache de valoración); "" si no hay movimientos.
	LatestMovementID(ctx context.Context, article string) (string, error)

	// ReceivedByOrderLines suma las cantidades LOAD enlazadas a cada riga d'ordine.
	ReceivedByOrderLines(ctx context.Context, lineIDs []int64) (map[int64]decimal.Decimal, error)
}
