package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/alcafoods/magazzino-api/internal/application/dto"
	"github.com/alcafoods/magazzino-api/internal/application/stock"
)

// BalanceHandler maneja las proyecciones de lectura: giacenze y estado de artículo (protegido).
type BalanceHandler struct {
	uc *stock.UseCase
}

// NewBalanceHandler construye el handler.
func NewBalanceHandler(uc *stock.UseCase) *BalanceHandler {
	return &BalanceHandler{uc: uc}
}

// List godoc
// @Summary      Vista de giacenze por (artículo, ubicación)
// @Description  Derivada del ledger en cada consulta, enriquecida con costo
//
//	medio, consumo medio mensual, target y señal de bilancio.
//
// @Tags         balances
// @Security     Bearer
// @Produce      json
// @Param        article  query  string  false  "Código de artículo"
// @Param        site     query  string  false  "Sede"
// @Param        area     query  string  false  "Sezione"
// @Success      200  {array}   dto.BalanceRowResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/balances [get]
func (h *BalanceHandler) List(c *fiber.Ctx) error {
	var in dto.ListBalancesRequest
	if err := c.QueryParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query inválida"})
	}
	rows, err := h.uc.Balances(c.Context(), in.Article, in.Site, in.Area)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.BalanceRowResponse, len(rows))
	for i, r := range rows {
		out[i] = dto.BalanceRowResponse{
			Article:     r.Article,
			Description: r.Description,
			UnitMeasure: r.UnitMeasure,
			Site:        r.Site,
			Area:        r.Area,
			OnHand:      r.OnHand,
			AverageCost: r.AverageCost,
			AvgMonthly:  r.AvgMonthly,
			Target:      r.Target,
			Deficit:     r.Signal.Deficit,
			Surplus:     r.Signal.Surplus,
			Balanced:    r.Signal.Balanced,
		}
	}
	return c.JSON(out)
}

// Status godoc
// @Summary      Vista de planificación de un artículo
// @Tags         balances
// @Security     Bearer
// @Produce      json
// @Param        article  path  string  true  "Código de artículo"
// @Success      200  {object}  dto.ArticleStatusResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/articles/{article}/status [get]
func (h *BalanceHandler) Status(c *fiber.Ctx) error {
	status, err := h.uc.Status(c.Context(), c.Params("article"))
	if err != nil {
		return respondError(c, err)
	}
	out := dto.ArticleStatusResponse{
		Article:     status.Article,
		Description: status.Description,
		UnitMeasure: status.UnitMeasure,
		OnHand:      status.OnHand,
		AverageCost: status.AverageCost,
		AvgMonthly:  status.AvgMonthly,
		Target:      status.Target,
		Deficit:     status.Signal.Deficit,
		Surplus:     status.Signal.Surplus,
		Balanced:    status.Signal.Balanced,
	}
	for _, b := range status.ByLocation {
		out.ByLocation = append(out.ByLocation, dto.LocationBalanceResponse{
			Site:   b.Site,
			Area:   b.Area,
			OnHand: b.OnHand,
		})
	}
	return c.JSON(out)
}
