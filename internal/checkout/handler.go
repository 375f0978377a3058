package checkout

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/ichiba-dev/ichiba-backend/internal/payment"
	"github.com/ichiba-dev/ichiba-backend/internal/user"
)

type Handler struct {
	service       *Service
	webhookSecret string
}

func NewHandler(s *Service, webhookSecret string) *Handler {
	return &Handler{service: s, webhookSecret: webhookSecret}
}

// RegisterPublicRoutes wires the webhook endpoint. It MUST be registered
// before the JWT middleware: the gateway authenticates with its signature,
// not a bearer token.
func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/v1/payments/webhook", h.handleWebhook)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Post("/api/v1/checkout/session", h.createSession)
	app.Post("/api/v1/payments/confirm", h.confirmPayment)
}

func (h *Handler) createSession(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(struct {
		AddressID int `json:"addressId"`
	})
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.AddressID <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "addressId is required"})
	}

	session, err := h.service.CreateSession(c.Context(), userID, payload.AddressID)
	if err != nil {
		var lineErr *LineValidationError
		switch {
		case errors.Is(err, ErrAddressNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "shipping address not found"})
		case errors.Is(err, ErrEmptyCart):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "cart is empty"})
		case errors.As(err, &lineErr):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message":     lineErr.Error(),
				"productName": lineErr.ProductName,
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.Status(fiber.StatusCreated).JSON(session)
}

func (h *Handler) confirmPayment(c *fiber.Ctx) error {
	userID, err := user.GetUserIDFromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(struct {
		SessionID string `json:"sessionId"`
	})
	if err := c.BodyParser(payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}
	if payload.SessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "sessionId is required"})
	}

	ord, err := h.service.ConfirmBySessionID(c.Context(), userID, payload.SessionID)
	if err != nil {
		var lineErr *LineValidationError
		switch {
		case errors.Is(err, ErrSessionNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "checkout session not found"})
		case errors.Is(err, ErrPaymentNotCompleted):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "payment has not completed"})
		case errors.Is(err, ErrNothingToMaterialize):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "no cart lines to materialize"})
		case errors.As(err, &lineErr):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message":     lineErr.Error(),
				"productName": lineErr.ProductName,
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
		}
	}
	return c.JSON(ord)
}

// handleWebhook verifies the signature over the raw body bytes. BodyParser is
// never involved here; any re-serialization would break verification.
func (h *Handler) handleWebhook(c *fiber.Ctx) error {
	err := h.service.HandleWebhook(c.Context(), c.Body(), c.Get(payment.SignatureHeader), h.webhookSecret)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrBadSignature),
			errors.Is(err, payment.ErrInvalidSignature),
			errors.Is(err, payment.ErrStaleTimestamp):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "signature verification failed"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "temporary failure"})
		}
	}
	return c.JSON(fiber.Map{"received": true})
}
