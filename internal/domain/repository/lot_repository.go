package repository

import (
	"context"
	"time"

	"github.com/alcafoods/magazzino-api/internal/domain/entity"
)

// LotRepository define el puerto de persistencia de lotes.
// NextSeq usa la secuencia de base de datos: nunca read-then-increment, la
// emisión concurrente debe producir números distintos y crecientes.
type LotRepository interface {
	// NextSeq reserva y devuelve el siguiente número de la secuencia de lotes.
	NextSeq(ctx context.Context) (int64, error)
	// Create persiste un lote nuevo. La tripla (article, supplier_lot, expiry)
	// duplicada devuelve domain.ErrDuplicateLot SIN invalidar la transacción
	// en curso: el caller debe poder releer el lote ganador dentro de la misma
	// tx (find-or-create del ricevimento). La colisión de BATCH_ID devuelve
	// domain.ErrConflict.
	Create(ctx context.Context, lot *entity.Lot) error
	GetByID(ctx context.Context, id string) (*entity.Lot, error)
	// GetForUpdate obtiene el lote bloqueando su fila hasta el fin de la
	// transacción (SELECT ... FOR UPDATE). Es el punto de serialización por
	// lote de los writers que exigen giacenza suficiente: el recálculo del
	// saldo posterior al lock no puede ser carrera con otro trasferimento.
	// Solo tiene sentido sobre repos.Lots dentro de TxRunner.Run.
	GetForUpdate(ctx context.Context, id string) (*entity.Lot, error)
	FindByTriple(ctx context.Context, article, supplierLot string, expiry time.Time) (*entity.Lot, error)
	ListByArticle(ctx context.Context, article string) ([]*entity.Lot, error)
}
