package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/alcafoods/magazzino-api/internal/application/dto"
	"github.com/alcafoods/magazzino-api/internal/application/orders"
	"github.com/alcafoods/magazzino-api/internal/domain/entity"
)

// OrderHandler maneja las peticiones HTTP de ordini a fornitore y ricevimenti (protegido).
type OrderHandler struct {
	uc *orders.UseCase
}

// NewOrderHandler construye el handler.
func NewOrderHandler(uc *orders.UseCase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Create godoc
// @Summary      Crear un ordine a fornitore
// @Description  Cada riga congela el costo medio del artículo (snapshot);
//
//	los carichi posteriores no lo recalculan.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "number, supplier, lines"
// @Success      201   {object}  dto.OrderResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if !validateBody(c, &in) {
		return nil
	}
	orderDate, err := parseDate(in.OrderDate)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "order_date: formato YYYY-MM-DD"})
	}
	lines := make([]orders.LineInput, len(in.Lines))
	for i, l := range in.Lines {
		arrival, err := parseDate(l.ExpectedArrival)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "expected_arrival: formato YYYY-MM-DD"})
		}
		lines[i] = orders.LineInput{
			Article:         l.Article,
			OrderedQty:      l.OrderedQty,
			ExpectedArrival: arrival,
			LastPrice:       l.LastPrice,
		}
	}
	created, err := h.uc.Create(c.Context(), orders.CreateInput{
		OrderDate: orderDate,
		Number:    in.Number,
		Supplier:  in.Supplier,
		Notes:     in.Notes,
		Lines:     lines,
		CreatedBy: GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderResponse(created))
}

// Get godoc
// @Summary      Obtener un ordine con sus righe
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del ordine"
// @Success      200  {object}  dto.OrderResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	orderID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id numérico requerido"})
	}
	view, err := h.uc.Get(c.Context(), orderID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toOrderResponse(view))
}

// Residuals godoc
// @Summary      Residuo de evasione por riga
// @Description  OrderedQty - carichi enlazados; residual <= 0 significa riga evasa.
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID del ordine"
// @Success      200  {array}   dto.LineResidualResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/residuals [get]
func (h *OrderHandler) Residuals(c *fiber.Ctx) error {
	orderID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id numérico requerido"})
	}
	residuals, err := h.uc.Residuals(c.Context(), orderID)
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.LineResidualResponse, len(residuals))
	for i, r := range residuals {
		out[i] = dto.LineResidualResponse{
			LineID:     r.LineID,
			Article:    r.Article,
			OrderedQty: r.OrderedQty,
			Received:   r.Received,
			Residual:   r.Residual,
			Fulfilled:  !r.Residual.IsPositive(),
		}
	}
	return c.JSON(out)
}

// FulfillReceipt godoc
// @Summary      Evadir un ricevimento contra el ordine
// @Description  Por cada riga recibida resuelve o crea el lote y emite el
//
//	carico enlazado, todo en una transacción. Las righe sin precio se cargan
//	igualmente y levantan la notificación de prezzo da definire.
//
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  int  true  "ID del ordine"
// @Param        body  body  dto.FulfillReceiptRequest  true  "site, area, lines"
// @Success      201   {object}  dto.ReceiptResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/receipts [post]
func (h *OrderHandler) FulfillReceipt(c *fiber.Ctx) error {
	orderID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id numérico requerido"})
	}
	var in dto.FulfillReceiptRequest
	if !validateBody(c, &in) {
		return nil
	}
	lines := make([]orders.ReceiptLine, len(in.Lines))
	for i, l := range in.Lines {
		var expiry time.Time
		if l.Expiry != "" {
			parsed, err := parseDate(l.Expiry)
			if err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "scadenza: formato YYYY-MM-DD"})
			}
			expiry = *parsed
		}
		lines[i] = orders.ReceiptLine{
			OrderLineID: l.OrderLineID,
			Quantity:    l.Quantity,
			SupplierLot: l.SupplierLot,
			Expiry:      expiry,
			UnitPrice:   l.UnitPrice,
		}
	}
	result, err := h.uc.FulfillReceipt(c.Context(), orders.ReceiptInput{
		OrderID:   orderID,
		Site:      in.Site,
		Area:      in.Area,
		Lines:     lines,
		CreatedBy: GetUserID(c),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ReceiptResultResponse{
		MovementsCreated: result.MovementsCreated,
		LotsCreated:      result.LotsCreated,
	})
}

func toOrderResponse(view *orders.CreatedOrder) dto.OrderResponse {
	out := dto.OrderResponse{
		ID:        view.Order.ID,
		OrderDate: formatDate(view.Order.OrderDate),
		Number:    view.Order.Number,
		Supplier:  view.Order.Supplier,
		Notes:     view.Order.Notes,
		CreatedBy: view.Order.CreatedBy,
		CreatedAt: view.Order.CreatedAt.Format(timeLayout),
	}
	for _, l := range view.Lines {
		out.Lines = append(out.Lines, toOrderLineResponse(l))
	}
	return out
}

func toOrderLineResponse(l *entity.OrderLine) dto.OrderLineResponse {
	resp := dto.OrderLineResponse{
		ID:            l.ID,
		Article:       l.Article,
		Description:   l.Description,
		UnitMeasure:   l.UnitMeasure,
		OrderedQty:    l.OrderedQty,
		LastPrice:     l.LastPrice,
		PriceSnapshot: l.PriceSnapshot,
	}
	if l.ExpectedArrival != nil {
		resp.ExpectedArrival = formatDate(*l.ExpectedArrival)
	}
	return resp
}
