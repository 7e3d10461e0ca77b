package handler

import (
	"bytes"
	"net/url"

	"go-inventory-ledger/internal/apperror"
	"go-inventory-ledger/internal/export"
	"go-inventory-ledger/internal/model"
	"go-inventory-ledger/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type InventoryHandler struct {
	catalog      service.CatalogService
	transactions service.TransactionService
	inventory    service.InventoryService
	log          *zap.Logger
}

func NewInventoryHandler(catalog service.CatalogService, transactions service.TransactionService,
	inventory service.InventoryService, log *zap.Logger) *InventoryHandler {
	return &InventoryHandler{
		catalog:      catalog,
		transactions: transactions,
		inventory:    inventory,
		log:          log.Named("http"),
	}
}

// CreateItem handles POST /api/add_item
func (h *InventoryHandler) CreateItem(c *fiber.Ctx) error {
	actor, err := actorID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req CreateItemRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	initial := 0
	if req.Quantity != nil {
		initial = int(*req.Quantity)
	}

	item, err := h.catalog.CreateItem(c.UserContext(), actor, req.Description, initial)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Item added successfully", "item": item})
}

// RecordTransaction handles POST /api/transaction/:kind
func (h *InventoryHandler) RecordTransaction(c *fiber.Ctx) error {
	return h.record(c, c.Params("kind"))
}

// BorrowItem handles POST /api/add_item_loan
func (h *InventoryHandler) BorrowItem(c *fiber.Ctx) error {
	return h.record(c, string(model.TxBorrow))
}

// ReturnItem handles POST /api/end_item_loan
func (h *InventoryHandler) ReturnItem(c *fiber.Ctx) error {
	return h.record(c, string(model.TxReturn))
}

func (h *InventoryHandler) record(c *fiber.Ctx, kind string) error {
	actor, err := actorID(c)
	if err != nil {
		return respondError(c, h.log, err)
	}

	var req TransactionRequest
	if err := parseBody(c, &req); err != nil {
		return respondError(c, h.log, err)
	}
	// a missing quantity reaches the service as zero and is rejected there,
	// after the item and kind checks
	quantity := 0
	if req.Quantity != nil {
		quantity = int(*req.Quantity)
	}

	tx, err := h.transactions.RecordTransaction(c.UserContext(), service.RecordTransactionInput{
		ActorID:        actor,
		Description:    req.item(),
		Kind:           kind,
		Quantity:       quantity,
		IdempotencyKey: c.Get("Idempotency-Key"),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction added successfully", "data": tx})
}

// GetInventory handles GET /api/get_inventory?page=&limit=
func (h *InventoryHandler) GetInventory(c *fiber.Ctx) error {
	page := service.Page{Page: c.QueryInt("page", 0), Limit: c.QueryInt("limit", 0)}

	entries, count, err := h.inventory.GetInventory(c.UserContext(), page)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"inventory": entries, "count": count})
}

// GetItemHistory handles GET /api/item/:description
func (h *InventoryHandler) GetItemHistory(c *fiber.Ctx) error {
	description, err := url.PathUnescape(c.Params("description"))
	if err != nil {
		return respondError(c, h.log, apperror.Wrap(apperror.ErrInvalidInput, err, "Invalid item description"))
	}

	txs, err := h.inventory.GetItemHistory(c.UserContext(), description)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"transaction_list": txs})
}

// GetTransactions handles GET /api/transactions
func (h *InventoryHandler) GetTransactions(c *fiber.Ctx) error {
	txs, err := h.inventory.ListLedger(c.UserContext())
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"transaction_list": txs, "count": len(txs)})
}

// ExportInventory handles GET /api/export/inventory.xlsx
func (h *InventoryHandler) ExportInventory(c *fiber.Ctx) error {
	entries, _, err := h.inventory.GetInventory(c.UserContext(), service.Page{})
	if err != nil {
		return respondError(c, h.log, err)
	}

	var buf bytes.Buffer
	if err := export.WriteInventory(&buf, entries); err != nil {
		return respondError(c, h.log, err)
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="inventory.xlsx"`)
	return c.Send(buf.Bytes())
}
