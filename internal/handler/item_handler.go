package handler

import (
	"go-leather-stock/internal/model"
	"go-leather-stock/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ItemHandler struct {
	service service.ItemService
}

func NewItemHandler(s service.ItemService) *ItemHandler {
	return &ItemHandler{service: s}
}

// GetItems lists items. Query params: kind
func (h *ItemHandler) GetItems(c *fiber.Ctx) error {
	items, err := h.service.ListItems(c.UserContext(), model.ItemKind(c.Query("kind")))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(items)
}

func (h *ItemHandler) GetItem(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	item, err := h.service.GetItem(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(item)
}

func (h *ItemHandler) CreateItem(c *fiber.Ctx) error {
	var req service.ItemInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	item, err := h.service.CreateItem(c.UserContext(), req, getUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Item created", "data": item})
}

func (h *ItemHandler) UpdateItem(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return fail(c, err)
	}
	var req service.ItemInput
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	item, err := h.service.UpdateItem(c.UserContext(), id, req, getUserID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Item updated", "data": item})
}
