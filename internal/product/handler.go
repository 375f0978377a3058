package product

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/ichiba-dev/ichiba-backend/internal/user"
)

// Handler exposes catalog endpoints. Listing and detail are public; create,
// update and deactivate require an admin user.
type Handler struct {
	service     ServiceInterface
	userService user.ServiceInterface
}

func NewHandler(service ServiceInterface, userService user.ServiceInterface) *Handler {
	return &Handler{service: service, userService: userService}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/products", h.listProducts)
	app.Get("/api/v1/products/:id<[0-9]+>", h.getProduct)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/admin/products", h.createProduct)
	app.Put("/api/v1/admin/products/:id<[0-9]+>", h.updateProduct)
	app.Delete("/api/v1/admin/products/:id<[0-9]+>", h.deactivateProduct)
}

type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       int     `json:"price"`
	Stock       int     `json:"stock"`
	CategoryID  *int    `json:"categoryId"`
	ImageURL    *string `json:"imageUrl"`
	IsActive    *bool   `json:"isActive"`
}

func (h *Handler) listProducts(c *fiber.Ctx) error {
	f := Filters{ActiveOnly: true}
	if v := c.QueryInt("categoryId"); v > 0 {
		f.CategoryID = &v
	}
	if v := c.QueryInt("minPrice", -1); v >= 0 {
		f.MinPrice = &v
	}
	if v := c.QueryInt("maxPrice", -1); v >= 0 {
		f.MaxPrice = &v
	}
	f.Search = c.Query("search")
	f.Page = c.QueryInt("page", 1)
	f.Limit = c.QueryInt("limit", 20)

	products, err := h.service.List(f)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(fiber.Map{"products": products})
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	p, err := h.service.GetByID(id)
	if err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.JSON(p)
}

func (h *Handler) requireAdmin(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return fiber.ErrUnauthorized
	}
	u, err := h.userService.GetByID(userID)
	if err != nil || !u.IsAdmin {
		return fiber.ErrForbidden
	}
	return nil
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	if err := h.requireAdmin(c); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin only"})
	}

	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Name == "" || payload.Price < 0 || payload.Stock < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "name, non-negative price and stock are required"})
	}

	created, err := h.service.Create(Product{
		Name:        payload.Name,
		Description: payload.Description,
		Price:       payload.Price,
		Stock:       payload.Stock,
		CategoryID:  payload.CategoryID,
		ImageURL:    payload.ImageURL,
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	if err := h.requireAdmin(c); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin only"})
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	existing, err := h.service.GetByID(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	}

	payload := new(productRequest)
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.Name != "" {
		existing.Name = payload.Name
	}
	if payload.Description != "" {
		existing.Description = payload.Description
	}
	if payload.Price >= 0 {
		existing.Price = payload.Price
	}
	if payload.Stock >= 0 {
		existing.Stock = payload.Stock
	}
	if payload.CategoryID != nil {
		existing.CategoryID = payload.CategoryID
	}
	if payload.ImageURL != nil {
		existing.ImageURL = payload.ImageURL
	}
	if payload.IsActive != nil {
		existing.IsActive = *payload.IsActive
	}

	updated, err := h.service.Update(id, existing)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}
	return c.JSON(updated)
}

func (h *Handler) deactivateProduct(c *fiber.Ctx) error {
	if err := h.requireAdmin(c); err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "admin only"})
	}

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "invalid product id"})
	}

	if err := h.service.Deactivate(id); err != nil {
		switch err {
		case ErrNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.JSON(fiber.Map{"message": "product deactivated"})
}
