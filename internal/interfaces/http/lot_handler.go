package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alcafoods/magazzino-api/internal/application/dto"
	"github.com/alcafoods/magazzino-api/internal/application/lots"
	"github.com/alcafoods/magazzino-api/internal/domain/entity"
)

// LotHandler maneja las peticiones HTTP de lotes e identidad BATCH_ID (protegido).
type LotHandler struct {
	uc *lots.UseCase
}

// NewLotHandler construye el handler.
func NewLotHandler(uc *lots.UseCase) *LotHandler {
	return &LotHandler{uc: uc}
}

// Create godoc
// @Summary      Crear un lote con identidad BATCH_ID recién emitida
// @Tags         lots
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateLotRequest  true  "article, lotto_fornitore, scadenza"
// @Success      201   {object}  dto.LotResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/lots [post]
func (h *LotHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateLotRequest
	if !validateBody(c, &in) {
		return nil
	}
	expiry, err := parseDate(in.Expiry)
	if err != nil || expiry == nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "scadenza: formato YYYY-MM-DD"})
	}
	lot, err := h.uc.Create(c.Context(), lots.CreateInput{
		Article:     in.Article,
		SupplierLot: in.SupplierLot,
		Expiry:      *expiry,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toLotResponse(lot))
}

// Resolve godoc
// @Summary      Decodificar un BATCH_ID (payload de la etiqueta QR)
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "BATCH_ID"
// @Success      200  {object}  dto.ResolvedLotResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots/{id} [get]
func (h *LotHandler) Resolve(c *fiber.Ctx) error {
	resolved, err := h.uc.Resolve(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := dto.ResolvedLotResponse{Lot: toLotResponse(resolved.Lot)}
	if resolved.Article != nil {
		out.ArticleDescription = resolved.Article.Description
		out.UnitMeasure = resolved.Article.UnitMeasure
	}
	return c.JSON(out)
}

// ListByArticle godoc
// @Summary      Listar los lotes de un artículo
// @Tags         lots
// @Security     Bearer
// @Produce      json
// @Param        article  query  string  true  "Código de artículo"
// @Success      200  {array}   dto.LotResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/lots [get]
func (h *LotHandler) ListByArticle(c *fiber.Ctx) error {
	article := c.Query("article")
	if article == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "article requerido"})
	}
	list, err := h.uc.ListByArticle(c.Context(), article)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.LotResponse, len(list))
	for i, lot := range list {
		out[i] = toLotResponse(lot)
	}
	return c.JSON(out)
}

func toLotResponse(lot *entity.Lot) dto.LotResponse {
	return dto.LotResponse{
		ID:          lot.ID,
		Article:     lot.Article,
		SupplierLot: lot.SupplierLot,
		Expiry:      formatDate(lot.Expiry),
		CreatedAt:   lot.CreatedAt.Format(timeLayout),
	}
}
