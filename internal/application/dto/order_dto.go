package dto

import "github.com/shopspring/decimal"

// ── Creación de ordini ────────────────────────────────────────────────────────

// OrderLineRequest riga de un ordine a crear.
type OrderLineRequest struct {
	Article         string           `json:"article" validate:"required"`
	OrderedQty      decimal.Decimal  `json:"ordered_qty" validate:"required"`
	ExpectedArrival string           `json:"expected_arrival,omitempty"` // YYYY-MM-DD
	LastPrice       *decimal.Decimal `json:"last_price,omitempty"`
}

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	OrderDate string             `json:"order_date,omitempty"` // YYYY-MM-DD; default hoy
	Number    string             `json:"number" validate:"required"`
	Supplier  string             `json:"supplier" validate:"required"`
	Notes     string             `json:"notes,omitempty"`
	Lines     []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// OrderLineResponse riga d'ordine en respuestas. PriceSnapshot es el costo
// medio congelado al crear el ordine; nil si el artículo no tenía carichi.
type OrderLineResponse struct {
	ID              int64            `json:"id"`
	Article         string           `json:"article"`
	Description     string           `json:"description,omitempty"`
	UnitMeasure     string           `json:"unit_measure,omitempty"`
	OrderedQty      decimal.Decimal  `json:"ordered_qty"`
	ExpectedArrival string           `json:"expected_arrival,omitempty"`
	LastPrice       *decimal.Decimal `json:"last_price,omitempty"`
	PriceSnapshot   *decimal.Decimal `json:"price_snapshot,omitempty"`
}

// OrderResponse testata con righe.
type OrderResponse struct {
	ID        int64               `json:"id"`
	OrderDate string              `json:"order_date"`
	Number    string              `json:"number"`
	Supplier  string              `json:"supplier"`
	Notes     string              `json:"notes,omitempty"`
	CreatedBy string              `json:"created_by"`
	CreatedAt string              `json:"created_at"`
	Lines     []OrderLineResponse `json:"lines,omitempty"`
}

// ── Evasione ──────────────────────────────────────────────────────────────────

// LineResidualResponse residuo de evasione de una riga. Residual <= 0
// significa riga evasa; el estado es derivado del ledger, no almacenado.
type LineResidualResponse struct {
	LineID     int64           `json:"line_id"`
	Article    string          `json:"article"`
	OrderedQty decimal.Decimal `json:"ordered_qty"`
	Received   decimal.Decimal `json:"received"`
	Residual   decimal.Decimal `json:"residual"`
	Fulfilled  bool            `json:"fulfilled"`
}

// ReceiptLineRequest riga de un ricevimento: cantidad llegada más los datos
// del lote físico. unit_price nil = prezzo da definire.
type ReceiptLineRequest struct {
	OrderLineID int64            `json:"order_line_id" validate:"required"`
	Quantity    decimal.Decimal  `json:"quantity"`
	SupplierLot string           `json:"lotto_fornitore"`
	Expiry      string           `json:"scadenza"` // YYYY-MM-DD
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
}

// FulfillReceiptRequest body para POST /api/orders/:id/receipts.
type FulfillReceiptRequest struct {
	Site  string               `json:"site" validate:"required"`
	Area  string               `json:"area" validate:"required"`
	Lines []ReceiptLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// ReceiptResultResponse resumen de la evasione de un ricevimento.
type ReceiptResultResponse struct {
	MovementsCreated int `json:"movements_created"`
	LotsCreated      int `json:"lots_created"`
}
