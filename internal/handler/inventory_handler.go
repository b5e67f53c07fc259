package handler

import (
	"strconv"
	"time"

	"go-leather-stock/internal/model"
	"go-leather-stock/internal/repository"
	"go-leather-stock/internal/service"
	"go-leather-stock/pkg/apperror"
	"go-leather-stock/pkg/validator"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

type AdjustRequest struct {
	Amount decimal.Decimal `json:"amount" validate:"decimal_ne0"`
	Reason string          `json:"reason" validate:"required,reason"`
	Notes  string          `json:"notes"`
}

type CountRequest struct {
	Actual decimal.Decimal `json:"actual"`
	Notes  string          `json:"notes"`
}

type TransferRequest struct {
	TargetLocation string          `json:"target_location" validate:"required,max=100"`
	Quantity       decimal.Decimal `json:"quantity" validate:"decimal_gt0"`
	Notes          string          `json:"notes"`
}

type ThresholdsRequest struct {
	MinQuantity decimal.Decimal     `json:"min_quantity"`
	MaxQuantity decimal.NullDecimal `json:"max_quantity"`
}

// GetRecords lists inventory records.
// Query params: item_id, status, location, active
func (h *InventoryHandler) GetRecords(c *fiber.Ctx) error {
	filter := repository.InventoryFilter{
		Status:   model.StockStatus(c.Query("status")),
		Location: c.Query("location"),
	}
	if raw := c.Query("item_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fail(c, apperror.Validation("handler.records", "invalid item_id %q", raw))
		}
		filter.ItemID = id
	}
	if raw := c.Query("active"); raw != "" {
		active, err := strconv.ParseBool(raw)
		if err != nil {
			return fail(c, apperror.Validation("handler.records", "invalid active flag %q", raw))
		}
		filter.ActiveOnly = active
	}

	records, err := h.service.ListRecords(c.UserContext(), filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(records)
}

func (h *InventoryHandler) CreateRecord(c *fiber.Ctx) error {
	var req service.CreateRecordInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	record, err := h.service.CreateRecord(c.UserContext(), req, getUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Inventory record created", "data": record})
}

func (h *InventoryHandler) GetRecord(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	record, err := h.service.GetRecord(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(record)
}

// GetTransactions returns a record's audit trail, newest first.
// Query params: limit (default 100)
func (h *InventoryHandler) GetTransactions(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	entries, err := h.service.ListTransactions(c.UserContext(), id, queryInt(c, "limit", 100))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(entries)
}

// GetAllTransactions searches the audit trail across records.
// Query params: item_id, type, from, to (YYYY-MM-DD, to inclusive), limit (default 100)
func (h *InventoryHandler) GetAllTransactions(c *fiber.Ctx) error {
	const op = "handler.transactions"

	filter := repository.TransactionFilter{
		Type:  model.TransactionType(c.Query("type")),
		Limit: queryInt(c, "limit", 100),
	}
	if raw := c.Query("item_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fail(c, apperror.Validation(op, "invalid item_id %q", raw))
		}
		filter.ItemID = id
	}
	if raw := c.Query("from"); raw != "" {
		from, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return fail(c, apperror.Validation(op, "invalid from date %q, use YYYY-MM-DD", raw))
		}
		filter.From = from
	}
	if raw := c.Query("to"); raw != "" {
		to, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			return fail(c, apperror.Validation(op, "invalid to date %q, use YYYY-MM-DD", raw))
		}
		filter.To = to.AddDate(0, 0, 1)
	}

	entries, err := h.service.ListAllTransactions(c.UserContext(), filter)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(entries)
}

func (h *InventoryHandler) GetTransaction(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	entry, err := h.service.GetTransaction(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(entry)
}

func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req AdjustRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	if err := validator.Check("handler.adjust", req); err != nil {
		return fail(c, err)
	}
	reason, err := model.ParseReason(req.Reason)
	if err != nil {
		return fail(c, err)
	}

	entry, err := h.service.Adjust(c.UserContext(), id, req.Amount, reason, req.Notes, getUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock adjusted", "data": entry})
}

func (h *InventoryHandler) Count(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req CountRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	entry, err := h.service.Reconcile(c.UserContext(), id, req.Actual, req.Notes, getUserID(c))
	if err != nil {
		return fail(c, err)
	}
	if entry == nil {
		return c.JSON(fiber.Map{"message": "Count matches, no adjustment needed", "data": nil})
	}
	return c.JSON(fiber.Map{"message": "Count recorded", "data": entry})
}

func (h *InventoryHandler) Transfer(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	if err := validator.Check("handler.transfer", req); err != nil {
		return fail(c, err)
	}

	destination, err := h.service.Transfer(c.UserContext(), id, req.TargetLocation, req.Quantity, req.Notes, getUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock transferred", "data": destination})
}

func (h *InventoryHandler) UpdateThresholds(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req ThresholdsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}

	record, err := h.service.UpdateThresholds(c.UserContext(), id, req.MinQuantity, req.MaxQuantity, getUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Thresholds updated", "data": record})
}

func (h *InventoryHandler) Deactivate(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	record, err := h.service.Deactivate(c.UserContext(), id, getUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Inventory record deactivated", "data": record})
}

func (h *InventoryHandler) Delete(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return fail(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
