package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer agrupa exactamente dos movimientos (TRANSFER_OUT en origen,
// TRANSFER_IN en destino) con el mismo artículo, lote y magnitud de cantidad.
// Invariante: las cantidades de los dos movimientos son inversas aditivas;
// la giacenza total del artículo no cambia.
type Transfer struct {
	ID            string
	Article       string
	LotID         string
	FromSite      string
	FromArea      string
	ToSite        string
	ToArea        string
	Quantity      decimal.Decimal // magnitud, siempre > 0
	EffectiveDate time.Time
	EffectiveTime string
	Note          string
	CreatedBy     string
	CreatedAt     time.Time
}
