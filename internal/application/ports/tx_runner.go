package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/alcafoods/magazzino-api/internal/domain/repository"
)

// TxRepos agrupa los repositorios atados a una misma transacción de BD.
type TxRepos struct {
	Movements   repository.MovementRepository
	Lots        repository.LotRepository
	Transfers   repository.TransferRepository
	Orders      repository.OrderRepository
	Inventories repository.InventoryRepository
}

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios
// atados a esa tx. Es la unidad all-or-nothing de todas las escrituras
// multi-paso del core (lote+primer carico, pareja de trasferimento, envío de
// inventario, testata+righe d'ordine): o se persiste todo o no se persiste nada.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos TxRepos) error) error
}

// ValuationCache memoriza el costo medio por artículo, versionado por el id
// del último movimiento del artículo (cualquier movimiento nuevo invalida la
// clave). Implementación opcional: si no hay Redis configurado se usa un no-op.
type ValuationCache interface {
	// Get devuelve (precio, true) en hit; el precio puede ser nil (artículo
	// sin carichi con precio, también cacheable).
	Get(ctx context.Context, article, version string) (price *decimal.Decimal, ok bool)
	Set(ctx context.Context, article, version string, price *decimal.Decimal)
}
