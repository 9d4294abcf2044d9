package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/lotes-api/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	IssueUC      *inventory.IssueInventoryUseCase
	LedgerUC     *inventory.LedgerUseCase
	JWTSecret    string
	IssueTimeout time.Duration
	ServiceName  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	invGroup := protected.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.IssueUC, deps.LedgerUC, deps.IssueTimeout)
	invGroup.Post("/issues", RequireRole(RoleAdmin, RoleBodeguero), inventoryHandler.Issue)

	reader := RequireRole(RoleAdmin, RoleBodeguero, RoleAuditor)
	invGroup.Get("/items/:id/lots", reader, inventoryHandler.ListLots)
	invGroup.Get("/items/:id/movements", reader, inventoryHandler.ListMovements)
	invGroup.Get("/items/:id/balance", reader, inventoryHandler.Balance)
}
