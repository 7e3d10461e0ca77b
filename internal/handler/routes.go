package handler

import (
	"net/http"
	"path/filepath"

	"go-inventory-ledger/internal/ws"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

// Routes wires every endpoint onto an app. Optional parts stay off when
// their field is nil or empty.
type Routes struct {
	Inventory   *InventoryHandler
	Auth        *AuthHandler
	Dashboard   *DashboardHandler
	RequireAuth fiber.Handler

	Metrics   http.Handler
	Hub       *ws.Hub
	StaticDir string
}

func (r Routes) Register(app *fiber.App) {
	// ============ PUBLIC ROUTES ============
	app.Get("/health", r.Dashboard.Health)
	app.Post("/signup", r.Auth.Signup)
	app.Post("/login", r.Auth.Login)
	app.Post("/logout", r.Auth.Logout)
	if r.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(r.Metrics))
	}

	// ============ PROTECTED ROUTES ============
	api := app.Group("/api", r.RequireAuth)

	api.Post("/add_item", r.Inventory.CreateItem)
	api.Post("/transaction/:kind", r.Inventory.RecordTransaction)
	api.Post("/add_item_loan", r.Inventory.BorrowItem)
	api.Post("/end_item_loan", r.Inventory.ReturnItem)

	api.Get("/get_inventory", r.Inventory.GetInventory)
	api.Get("/item/:description", r.Inventory.GetItemHistory)
	api.Get("/transactions", r.Inventory.GetTransactions)
	api.Get("/export/inventory.xlsx", r.Inventory.ExportInventory)
	api.Get("/stats/movement", r.Dashboard.GetStockMovement)

	if r.Hub != nil {
		app.Use("/ws", r.RequireAuth, ws.Upgrade)
		app.Get("/ws", r.Hub.Handler())
	}

	if r.StaticDir != "" {
		app.Static("/", r.StaticDir)
		// client-side routes fall back to the SPA entry point
		index := filepath.Join(r.StaticDir, "index.html")
		app.Get("/*", func(c *fiber.Ctx) error {
			return c.SendFile(index)
		})
	}
}
