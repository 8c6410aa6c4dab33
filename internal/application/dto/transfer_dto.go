package dto

import "github.com/shopspring/decimal"

// CreateTransferRequest body para POST /api/transfers.
type CreateTransferRequest struct {
	Article       string          `json:"article" validate:"required"`
	LotID         string          `json:"lot_id" validate:"required"`
	FromSite      string          `json:"from_site" validate:"required"`
	FromArea      string          `json:"from_area" validate:"required"`
	ToSite        string          `json:"to_site" validate:"required"`
	ToArea        string          `json:"to_area" validate:"required"`
	Quantity      decimal.Decimal `json:"quantity" validate:"required"`
	EffectiveDate string          `json:"effective_date,omitempty"` // YYYY-MM-DD; default hoy
	Note          string          `json:"note,omitempty"`
}

// ListTransfersRequest query para GET /api/transfers.
type ListTransfersRequest struct {
	Article  string `query:"article"`
	FromSite string `query:"from_site"`
	ToSite   string `query:"to_site"`
	From     string `query:"from"` // YYYY-MM-DD
	To       string `query:"to"`   // YYYY-MM-DD
}

// TransferResponse trasferimento en respuestas.
type TransferResponse struct {
	ID            string          `json:"id"`
	Article       string          `json:"article"`
	LotID         string          `json:"lot_id"`
	FromSite      string          `json:"from_site"`
	FromArea      string          `json:"from_area"`
	ToSite        string          `json:"to_site"`
	ToArea        string          `json:"to_area"`
	Quantity      decimal.Decimal `json:"quantity"`
	EffectiveDate string          `json:"effective_date"`
	Note          string          `json:"note,omitempty"`
	CreatedBy     string          `json:"created_by"`
	CreatedAt     string          `json:"created_at"`
}
