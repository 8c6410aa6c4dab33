package dto

import (
	"github.com/shopspring/decimal"
)

// ── Requests ──────────────────────────────────────────────────────────────────

// NewLotRequest datos de un lote a crear junto con el carico.
type NewLotRequest struct {
	SupplierLot string `json:"lotto_fornitore" validate:"required"`
	Expiry      string `json:"scadenza" validate:"required"` // YYYY-MM-DD
}

// CreateMovementRequest body para POST /api/movements. Quantity es la
// magnitud; el signo lo asigna el servidor según kind. lot_id y new_lot son
// mutuamente excluyentes.
type CreateMovementRequest struct {
	Kind          string           `json:"kind" validate:"required,oneof=LOAD UNLOAD"`
	Article       string           `json:"article" validate:"required"`
	LotID         string           `json:"lot_id,omitempty"`
	NewLot        *NewLotRequest   `json:"new_lot,omitempty"`
	Site          string           `json:"site" validate:"required"`
	Area          string           `json:"area" validate:"required"`
	Quantity      decimal.Decimal  `json:"quantity" validate:"required"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	EffectiveDate string           `json:"effective_date,omitempty"` // YYYY-MM-DD; default hoy
	EffectiveTime string           `json:"effective_time,omitempty"` // HH:MM:SS; default ahora
	Note          string           `json:"note,omitempty"`
}

// WithdrawRequest body para POST /api/withdrawals: prelievo por BATCH_ID escaneado.
type WithdrawRequest struct {
	LotID    string          `json:"lot_id" validate:"required"`
	Site     string          `json:"site" validate:"required"`
	Area     string          `json:"area" validate:"required"`
	Quantity decimal.Decimal `json:"quantity" validate:"required"`
	Note     string          `json:"note,omitempty"`
}

// ListMovementsRequest query para GET /api/movements.
type ListMovementsRequest struct {
	Article string `query:"article"`
	Site    string `query:"site"`
	Area    string `query:"area"`
	LotID   string `query:"lot_id"`
	Kind    string `query:"kind"`
	From    string `query:"from"` // YYYY-MM-DD
	To      string `query:"to"`   // YYYY-MM-DD
	Limit   int    `query:"limit" validate:"min=0,max=5000"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// MovementResponse movimiento en respuestas.
type MovementResponse struct {
	ID            string           `json:"id"`
	Kind          string           `json:"kind"`
	Article       string           `json:"article"`
	LotID         string           `json:"lot_id"`
	Site          string           `json:"site"`
	Area          string           `json:"area"`
	Quantity      decimal.Decimal  `json:"quantity"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	EffectiveDate string           `json:"effective_date"`
	EffectiveTime string           `json:"effective_time"`
	Note          string           `json:"note,omitempty"`
	OrderLineID   *int64           `json:"order_line_id,omitempty"`
	TransferID    *string          `json:"transfer_id,omitempty"`
	CreatedBy     string           `json:"created_by"`
	CreatedAt     string           `json:"created_at"`
}
