package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/application/inventory"
	"github.com/jhoicas/lotes-api/pkg/validator"
)

// InventoryHandler maneja salidas de inventario por lote y consultas del libro (protegido).
type InventoryHandler struct {
	issue   *inventory.IssueInventoryUseCase
	ledger  *inventory.LedgerUseCase
	timeout time.Duration
}

// NewInventoryHandler construye el handler. timeout acota cada salida; al vencer se revierte.
func NewInventoryHandler(issue *inventory.IssueInventoryUseCase, ledger *inventory.LedgerUseCase, timeout time.Duration) *InventoryHandler {
	return &InventoryHandler{issue: issue, ledger: ledger, timeout: timeout}
}

// Issue godoc
// @Summary      Registrar salida de inventario por lotes
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.IssueInventoryRequest  true  "item_id, quantity, movement_type, allocation_method o explicit_allocations"
// @Success      201   {object}  dto.IssueInventoryResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/inventory/issues [post]
func (h *InventoryHandler) Issue(c *fiber.Ctx) error {
	companyID := GetCompanyID(c)
	userID := GetUserID(c)
	if companyID == "" || userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.IssueInventoryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if errs := validator.ValidateStruct(in); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Code:    "VALIDATION",
			Message: validator.Summary(errs),
			Stage:   inventory.StageValidating,
			Fields:  errs,
		})
	}

	ctx := c.UserContext()
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	res, err := h.issue.IssueFromRequest(ctx, companyID, userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.IssueInventoryResponse{
		TransactionID:      res.TransactionID,
		ItemID:             res.ItemID,
		MovementType:       string(res.MovementType),
		AllocationsApplied: dto.NewAllocationDTOs(res.AllocationsApplied),
		MovementsCreated:   res.MovementsCreated,
		CreatedLotIDs:      res.CreatedLotIDs,
	})
}

// ListLots godoc
// @Summary      Lotes de un ítem (activos e inactivos)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {array}   dto.LotDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/lots [get]
func (h *InventoryHandler) ListLots(c *fiber.Ctx) error {
	lots, err := h.ledger.ListLots(c.UserContext(), GetCompanyID(c), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.LotDTO, 0, len(lots))
	for _, l := range lots {
		out = append(out, dto.NewLotDTO(l))
	}
	return c.JSON(out)
}

// ListMovements godoc
// @Summary      Libro de movimientos del ítem, más recientes primero
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del ítem"
// @Param        limit   query  int     false  "máximo 200, por defecto 50"
// @Param        offset  query  int     false  "desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "limit/offset inválidos"})
	}
	if errs := validator.ValidateStruct(page); len(errs) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: validator.Summary(errs), Fields: errs})
	}
	page.DefaultPage()

	movs, err := h.ledger.ListMovements(c.UserContext(), GetCompanyID(c), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.MovementDTO, 0, len(movs))
	for _, m := range movs {
		items = append(items, dto.NewMovementDTO(m))
	}
	return c.JSON(fiber.Map{
		"items": items,
		"page":  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// Balance godoc
// @Summary      Verificación de conservación por lote
// @Description  recibido - restante debe igualar la salida neta registrada en el libro.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del ítem"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/items/{id}/balance [get]
func (h *InventoryHandler) Balance(c *fiber.Ctx) error {
	itemID := c.Params("id")
	balances, err := h.ledger.VerifyItem(c.UserContext(), GetCompanyID(c), itemID)
	if err != nil {
		return writeError(c, err)
	}
	balanced := true
	lots := make([]dto.LotBalanceDTO, 0, len(balances))
	for _, b := range balances {
		d := dto.NewLotBalanceDTO(b)
		balanced = balanced && d.Balanced
		lots = append(lots, d)
	}
	return c.JSON(fiber.Map{"item_id": itemID, "balanced": balanced, "lots": lots})
}
