package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alcafoods/magazzino-api/internal/application/dto"
	"github.com/alcafoods/magazzino-api/internal/application/transfer"
	"github.com/alcafoods/magazzino-api/internal/domain/entity"
	"github.com/alcafoods/magazzino-api/internal/domain/repository"
)

// TransferHandler maneja las peticiones HTTP de trasferimenti (protegido).
type TransferHandler struct {
	uc *transfer.UseCase
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *transfer.UseCase) *TransferHandler {
	return &TransferHandler{uc: uc}
}

// Create godoc
// @Summary      Ejecutar un trasferimento entre ubicaciones
// @Description  Emite el par TRANSFER_OUT/TRANSFER_IN en una transacción.
//
//	Requiere giacenza suficiente del lote en origen.
//
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "article, lot_id, from/to, quantity"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTransferRequest
	if !validateBody(c, &in) {
		return nil
	}
	date, err := parseDate(in.EffectiveDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "effective_date: formato YYYY-MM-DD"})
	}
	created, err := h.uc.Create(c.Context(), transfer.CreateInput{
		Article:       in.Article,
		LotID:         in.LotID,
		FromSite:      in.FromSite,
		FromArea:      in.FromArea,
		ToSite:        in.ToSite,
		ToArea:        in.ToArea,
		Quantity:      in.Quantity,
		EffectiveDate: date,
		Note:          in.Note,
		CreatedBy:     GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferResponse(created))
}

// Get godoc
// @Summary      Obtener un trasferimento
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del trasferimento"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/transfers/{id} [get]
func (h *TransferHandler) Get(c *fiber.Ctx) error {
	t, err := h.uc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toTransferResponse(t))
}

// List godoc
// @Summary      Listar trasferimenti
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        article    query  string  false  "Código de artículo"
// @Param        from_site  query  string  false  "Sede origen"
// @Param        to_site    query  string  false  "Sede destino"
// @Param        from       query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to         query  string  false  "Hasta (YYYY-MM-DD)"
// @Success      200  {array}   dto.TransferResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	var in dto.ListTransfersRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	from, err := parseDate(in.From)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "from: formato YYYY-MM-DD"})
	}
	to, err := parseDate(in.To)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "to: formato YYYY-MM-DD"})
	}
	list, err := h.uc.List(c.Context(), repository.TransferFilter{
		Article:  in.Article,
		FromSite: in.FromSite,
		ToSite:   in.ToSite,
		From:     from,
		To:       to,
	})
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.TransferResponse, len(list))
	for i, t := range list {
		out[i] = toTransferResponse(t)
	}
	return c.JSON(out)
}

func toTransferResponse(t *entity.Transfer) dto.TransferResponse {
	return dto.TransferResponse{
		ID:            t.ID,
		Article:       t.Article,
		LotID:         t.LotID,
		FromSite:      t.FromSite,
		FromArea:      t.FromArea,
		ToSite:        t.ToSite,
		ToArea:        t.ToArea,
		Quantity:      t.Quantity,
		EffectiveDate: formatDate(t.EffectiveDate),
		Note:          t.Note,
		CreatedBy:     t.CreatedBy,
		CreatedAt:     t.CreatedAt.Format(timeLayout),
	}
}
