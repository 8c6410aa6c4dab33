package dto

import "github.com/shopspring/decimal"

// OpenInventoryRequest body para POST /api/inventories.
type OpenInventoryRequest struct {
	Site string `json:"site" validate:"required"`
	Area string `json:"area" validate:"required"`
	Note string `json:"note,omitempty"`
}

// RecordCountRequest body para PUT /api/inventories/:id/lines/:lineId.
type RecordCountRequest struct {
	Counted decimal.Decimal `json:"counted"`
}

// InventoryLineResponse riga de sesión: teórico fotografiado al abrir más el
// conteo físico. counted null = no contada (distinto de contada a cero).
type InventoryLineResponse struct {
	ID          int64            `json:"id"`
	Article     string           `json:"article"`
	LotID       string           `json:"lot_id"`
	UnitMeasure string           `json:"unit_measure,omitempty"`
	Theoretical decimal.Decimal  `json:"theoretical"`
	Counted     *decimal.Decimal `json:"counted,omitempty"`
}

// InventorySessionResponse sesión con righe opcionales.
type InventorySessionResponse struct {
	ID          int64                   `json:"id"`
	Site        string                  `json:"site"`
	Area        string                  `json:"area"`
	Note        string                  `json:"note,omitempty"`
	CreatedBy   string                  `json:"created_by"`
	CreatedAt   string                  `json:"created_at"`
	SubmittedAt *string                 `json:"submitted_at,omitempty"`
	Lines       []InventoryLineResponse `json:"lines,omitempty"`
}

// CorrectiveResponse movimiento correctivo emitido en el envío.
type CorrectiveResponse struct {
	Article    string          `json:"article"`
	LotID      string          `json:"lot_id"`
	Difference decimal.Decimal `json:"difference"` // counted - theoretical
}

// SubmitInventoryResponse resultado del envío de una sesión.
type SubmitInventoryResponse struct {
	SubmittedAt string               `json:"submitted_at"`
	Correctives []CorrectiveResponse `json:"correctives"`
}
