package handler

import (
	"context"

	"go-leather-stock/internal/model"
	"go-leather-stock/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type PurchaseHandler struct {
	service service.PurchaseService
}

func NewPurchaseHandler(s service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{service: s}
}

// GetPurchases lists purchases. Query params: status
func (h *PurchaseHandler) GetPurchases(c *fiber.Ctx) error {
	purchases, err := h.service.List(c.UserContext(), model.PurchaseStatus(c.Query("status")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(purchases)
}

func (h *PurchaseHandler) GetPurchase(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	purchase, err := h.service.Get(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"data": purchase, "total": purchase.Total()})
}

func (h *PurchaseHandler) CreatePurchase(c *fiber.Ctx) error {
	var req service.CreatePurchaseInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	purchase, err := h.service.Create(c.UserContext(), req, getUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Purchase created", "data": purchase})
}

func (h *PurchaseHandler) MarkOrdered(c *fiber.Ctx) error {
	return h.transition(c, "Purchase ordered", h.service.MarkOrdered)
}

// MarkDelivered receives the purchase into stock.
func (h *PurchaseHandler) MarkDelivered(c *fiber.Ctx) error {
	return h.transition(c, "Purchase delivered", h.service.MarkDelivered)
}

func (h *PurchaseHandler) Cancel(c *fiber.Ctx) error {
	return h.transition(c, "Purchase cancelled", h.service.Cancel)
}

type purchaseTransition func(ctx context.Context, id uuid.UUID, actor string) (*model.Purchase, error)

func (h *PurchaseHandler) transition(c *fiber.Ctx, message string, apply purchaseTransition) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	purchase, err := apply(c.UserContext(), id, getUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": message, "data": purchase})
}
