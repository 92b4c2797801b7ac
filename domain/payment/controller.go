package payment

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
)

type Controller struct {
	orchestrator *Orchestrator
	repository   IRepository
	analytics    *AnalyticsSink
}

func NewController(orchestrator *Orchestrator, repository IRepository, analytics *AnalyticsSink) *Controller {
	return &Controller{orchestrator, repository, analytics}
}

func (c *Controller) InitRoutes(app *fiber.App) {
	app.Post("/payments", c.postPayment)
	app.Get("/payments/:id", c.getPayment)
	app.Get("/payments-summary", c.getSummary)
	app.Get("/health", c.health)
}

func (c *Controller) postPayment(ctx *fiber.Ctx) error {
	var req PaymentRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(PaymentResponse{
			Success: false,
			Status:  StatusFailed,
			Error:   &ErrorDetail{Code: CodeValidationError, Message: "malformed request body"},
		})
	}

	resp := c.orchestrator.ProcessPayment(ctx.Context(), req)
	if resp.Success || resp.Error == nil {
		// Replays of an in-flight transaction report current state with 200.
		return ctx.Status(fiber.StatusOK).JSON(resp)
	}
	return ctx.Status(HTTPStatus(resp.Error.Code)).JSON(resp)
}

func (c *Controller) getPayment(ctx *fiber.Ctx) error {
	tx, err := c.repository.FindByID(ctx.Context(), ctx.Params("id"))
	if err != nil {
		if errors.Is(err, ErrTransactionNotFound) {
			return ctx.SendStatus(fiber.StatusNotFound)
		}
		return ctx.SendStatus(fiber.StatusInternalServerError)
	}
	return ctx.Status(fiber.StatusOK).JSON(tx)
}

func (c *Controller) getSummary(ctx *fiber.Ctx) error {
	merchantID := ctx.Query("merchantId")
	if merchantID == "" {
		return ctx.SendStatus(fiber.StatusBadRequest)
	}

	var from, to *time.Time
	if raw := ctx.Query("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return ctx.SendStatus(fiber.StatusBadRequest)
		}
		from = &parsed
	}
	if raw := ctx.Query("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return ctx.SendStatus(fiber.StatusBadRequest)
		}
		to = &parsed
	}

	summary, err := c.analytics.MerchantSummary(ctx.Context(), merchantID, from, to)
	if err != nil {
		return ctx.SendStatus(fiber.StatusInternalServerError)
	}
	return ctx.Status(fiber.StatusOK).JSON(summary)
}

func (c *Controller) health(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}
