package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/alcafoods/magazzino-api/internal/application/dto"
	"github.com/alcafoods/magazzino-api/internal/application/reconcile"
	"github.com/alcafoods/magazzino-api/internal/domain/entity"
)

// InventoryHandler maneja las peticiones HTTP de sesiones de inventario (protegido).
type InventoryHandler struct {
	uc *reconcile.UseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *reconcile.UseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// Open godoc
// @Summary      Abrir una sesión de inventario
// @Description  Fotografía la giacenza teórica por (artículo, lote) de la
//
//	ubicación en la misma transacción que crea la sesión.
//
// @Tags         inventories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenInventoryRequest  true  "site, area"
// @Success      201   {object}  dto.InventorySessionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventories [post]
func (h *InventoryHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenInventoryRequest
	if !validateBody(c, &in) {
		return nil
	}
	view, err := h.uc.Open(c.Context(), in.Site, in.Area, in.Note, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toSessionResponse(view))
}

// Get godoc
// @Summary      Obtener una sesión con sus righe
// @Tags         inventories
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la sesión"
// @Success      200  {object}  dto.InventorySessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventories/{id} [get]
func (h *InventoryHandler) Get(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id numérico requerido"})
	}
	view, err := h.uc.Get(c.Context(), sessionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toSessionResponse(view))
}

// List godoc
// @Summary      Listar sesiones de inventario
// @Tags         inventories
// @Security     Bearer
// @Produce      json
// @Param        site  query  string  false  "Sede"
// @Param        area  query  string  false  "Sezione"
// @Param        open  query  bool    false  "Solo sesiones abiertas"
// @Success      200  {array}  dto.InventorySessionResponse
// @Router       /api/inventories [get]
func (h *InventoryHandler) List(c *fiber.Ctx) error {
	sessions, err := h.uc.ListSessions(c.Context(), c.Query("site"), c.Query("area"), c.QueryBool("open"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.InventorySessionResponse, len(sessions))
	for i, s := range sessions {
		out[i] = toSessionResponse(&reconcile.SessionView{Session: s})
	}
	return c.JSON(out)
}

// RecordCount godoc
// @Summary      Registrar el conteo físico de una riga
// @Description  Solo con la sesión abierta. Contar cero es válido y distinto de no contar.
// @Tags         inventories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  int  true  "ID de la sesión"
// @Param        lineId  path  int  true  "ID de la riga"
// @Param        body    body  dto.RecordCountRequest  true  "counted"
// @Success      200   {object}  dto.StatusResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventories/{id}/lines/{lineId} [put]
func (h *InventoryHandler) RecordCount(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id numérico requerido"})
	}
	lineID, err := strconv.ParseInt(c.Params("lineId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "lineId numérico requerido"})
	}
	var in dto.RecordCountRequest
	if !validateBody(c, &in) {
		return nil
	}
	if err := h.uc.RecordCount(c.Context(), sessionID, lineID, in.Counted); err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.StatusResponse{Status: "contato"})
}

// Submit godoc
// @Summary      Enviar una sesión de inventario
// @Description  Cierra la sesión y emite los movimientos correctivos en una
//
//	transacción. At-most-once: el segundo envío concurrente recibe 409.
//
// @Tags         inventories
// @Security     Bearer
// @Produce      json
// @Param        id   path  int  true  "ID de la sesión"
// @Success      200  {object}  dto.SubmitInventoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventories/{id}/submit [post]
func (h *InventoryHandler) Submit(c *fiber.Ctx) error {
	sessionID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id numérico requerido"})
	}
	result, err := h.uc.Submit(c.Context(), sessionID, GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	out := dto.SubmitInventoryResponse{
		SubmittedAt: result.SubmittedAt.Format(timeLayout),
		Correctives: make([]dto.CorrectiveResponse, len(result.Correctives)),
	}
	for i, corr := range result.Correctives {
		out.Correctives[i] = dto.CorrectiveResponse{
			Article:    corr.Article,
			LotID:      corr.LotID,
			Difference: corr.Difference,
		}
	}
	return c.JSON(out)
}

func toSessionResponse(view *reconcile.SessionView) dto.InventorySessionResponse {
	s := view.Session
	out := dto.InventorySessionResponse{
		ID:        s.ID,
		Site:      s.Site,
		Area:      s.Area,
		Note:      s.Note,
		CreatedBy: s.CreatedBy,
		CreatedAt: s.CreatedAt.Format(timeLayout),
	}
	if s.SubmittedAt != nil {
		submitted := s.SubmittedAt.Format(timeLayout)
		out.SubmittedAt = &submitted
	}
	for _, l := range view.Lines {
		out.Lines = append(out.Lines, toInventoryLineResponse(l))
	}
	return out
}

func toInventoryLineResponse(l *entity.InventoryLine) dto.InventoryLineResponse {
	return dto.InventoryLineResponse{
		ID:          l.ID,
		Article:     l.Article,
		LotID:       l.LotID,
		UnitMeasure: l.UnitMeasure,
		Theoretical: l.Theoretical,
		Counted:     l.Counted,
	}
}
