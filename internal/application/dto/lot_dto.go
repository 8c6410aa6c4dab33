package dto

// CreateLotRequest body para POST /api/lots.
type CreateLotRequest struct {
	Article     string `json:"article" validate:"required"`
	SupplierLot string `json:"lotto_fornitore" validate:"required"`
	Expiry      string `json:"scadenza" validate:"required"` // YYYY-MM-DD
}

// LotResponse lote en respuestas.
type LotResponse struct {
	ID          string `json:"id"` // BATCH_ID (ALCA______)
	Article     string `json:"article"`
	SupplierLot string `json:"lotto_fornitore"`
	Expiry      string `json:"scadenza"`
	CreatedAt   string `json:"created_at"`
}

// ResolvedLotResponse payload de trazabilidad de GET /api/lots/:id: el
// contenido que codifica la etiqueta QR.
type ResolvedLotResponse struct {
	Lot                LotResponse `json:"lot"`
	ArticleDescription string      `json:"article_description,omitempty"`
	UnitMeasure        string      `json:"unit_measure,omitempty"`
}
