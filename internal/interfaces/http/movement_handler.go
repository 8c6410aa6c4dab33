package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alcafoods/magazzino-api/internal/application/dto"
	"github.com/alcafoods/magazzino-api/internal/application/ledger"
	"github.com/alcafoods/magazzino-api/internal/domain/entity"
	"github.com/alcafoods/magazzino-api/internal/domain/repository"
)

// MovementHandler maneja las peticiones HTTP del ledger de movimientos (protegido).
type MovementHandler struct {
	uc *ledger.UseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *ledger.UseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar un movimiento manual (carico o scarico)
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementRequest  true  "kind, article, lot_id o new_lot, site, area, quantity, unit_price (LOAD)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementRequest
	if !validateBody(c, &in) {
		return nil
	}
	date, err := parseDate(in.EffectiveDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "effective_date: formato YYYY-MM-DD"})
	}
	input := ledger.RecordInput{
		Kind:          in.Kind,
		Article:       in.Article,
		LotID:         in.LotID,
		Site:          in.Site,
		Area:          in.Area,
		Quantity:      in.Quantity,
		UnitPrice:     in.UnitPrice,
		EffectiveDate: date,
		EffectiveTime: in.EffectiveTime,
		Note:          in.Note,
		CreatedBy:     GetUserID(c),
	}
	if in.NewLot != nil {
		expiry, err := parseDate(in.NewLot.Expiry)
		if err != nil || expiry == nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "scadenza: formato YYYY-MM-DD"})
		}
		input.NewLot = &ledger.NewLotSpec{SupplierLot: in.NewLot.SupplierLot, Expiry: *expiry}
	}

	movement, err := h.uc.Record(c.Context(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(movement))
}

// Withdraw godoc
// @Summary      Registrar un prelievo por BATCH_ID escaneado
// @Description  La giacenza puede quedar negativa: el prelievo no se bloquea,
//
//	la divergencia se notifica y la reconciliación la corrige.
//
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.WithdrawRequest  true  "lot_id, site, area, quantity"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/withdrawals [post]
func (h *MovementHandler) Withdraw(c *fiber.Ctx) error {
	var in dto.WithdrawRequest
	if !validateBody(c, &in) {
		return nil
	}
	movement, err := h.uc.Withdraw(c.Context(), ledger.WithdrawInput{
		LotID:     in.LotID,
		Site:      in.Site,
		Area:      in.Area,
		Quantity:  in.Quantity,
		Note:      in.Note,
		CreatedBy: GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(movement))
}

// List godoc
// @Summary      Listar movimientos del ledger
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        article  query  string  false  "Código de artículo"
// @Param        site     query  string  false  "Sede"
// @Param        area     query  string  false  "Sezione"
// @Param        lot_id   query  string  false  "BATCH_ID"
// @Param        kind     query  string  false  "LOAD|UNLOAD|TRANSFER_OUT|TRANSFER_IN"
// @Param        from     query  string  false  "Desde (YYYY-MM-DD)"
// @Param        to       query  string  false  "Hasta (YYYY-MM-DD)"
// @Success      200  {array}   dto.MovementResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var in dto.ListMovementsRequest
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
	movements, err := h.uc.List(c.Context(), repository.MovementFilter{
		Article: in.Article,
		Site:    in.Site,
		Area:    in.Area,
		LotID:   in.LotID,
		Kind:    in.Kind,
		From:    from,
		To:      to,
		Limit:   in.Limit,
	})
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.MovementResponse, len(movements))
	for i, m := range movements {
		out[i] = toMovementResponse(m)
	}
	return c.JSON(out)
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		Kind:          m.Kind,
		Article:       m.Article,
		LotID:         m.LotID,
		Site:          m.Site,
		Area:          m.Area,
		Quantity:      m.Quantity,
		UnitPrice:     m.UnitPrice,
		EffectiveDate: formatDate(m.EffectiveDate),
		EffectiveTime: m.EffectiveTime,
		Note:          m.Note,
		OrderLineID:   m.OrderLineID,
		TransferID:    m.TransferID,
		CreatedBy:     m.CreatedBy,
		CreatedAt:     m.CreatedAt.Format(timeLayout),
	}
}
