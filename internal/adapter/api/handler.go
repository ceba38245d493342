package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"neuropilot/internal/domain/entity"
	"neuropilot/internal/domain/repository"
	"neuropilot/internal/usecase"
)

type Handler struct {
	classifier *usecase.Classifier
	scheduler  *usecase.Scheduler
	pricing    *usecase.PricingAdvisor
	store      repository.Store
}

func NewHandler(classifier *usecase.Classifier, scheduler *usecase.Scheduler, pricing *usecase.PricingAdvisor, store repository.Store) *Handler {
	return &Handler{classifier: classifier, scheduler: scheduler, pricing: pricing, store: store}
}

type analyzeRequest struct {
	UserID  string   `json:"userId"`
	OrgID   string   `json:"orgId"`
	Message string   `json:"message"`
	History []string `json:"history"`
}

// HandleAnalyze runs the psychological classifier on one customer message.
// Business errors map to HTTP status codes here, in the delivery layer.
func (h *Handler) HandleAnalyze(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.UserID == "" || req.OrgID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "userId and orgId are required"})
	}

	actor := entity.Actor{UserID: req.UserID, OrgID: req.OrgID}
	convo := entity.ConversationContext{Message: req.Message, History: req.History}

	result, err := h.classifier.Classify(c.Context(), actor, convo)
	if err != nil {
		var vErr *entity.ValidationError
		var rlErr *entity.RateLimitError
		switch {
		case errors.As(err, &vErr):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": vErr.Error()})
		case errors.As(err, &rlErr):
			c.Set("Retry-After", rlErr.ResetAt.UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT"))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": err.Error()})
		case errors.Is(err, entity.ErrQuotaExceeded):
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

type dynamicPriceRequest struct {
	Profile         string  `json:"profile"`
	Price           float64 `json:"price"`
	Cost            float64 `json:"cost"`
	CompetitorPrice float64 `json:"competitorPrice"`
}

// HandleDynamicPrice computes a profile-aware sell price plus the per-profile
// discount against the list price.
func (h *Handler) HandleDynamicPrice(c *fiber.Ctx) error {
	var req dynamicPriceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	profile := entity.Profile(req.Profile)
	if !profile.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown profile"})
	}
	if req.Cost <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cost must be positive"})
	}

	final, floor, note := h.pricing.DynamicPrice(req.Cost, req.CompetitorPrice, profile)

	listPrice := req.Price
	if listPrice <= 0 {
		listPrice = final
	}
	discount := usecase.DiscountForProfile(profile, listPrice, req.Cost)

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"finalPrice":      final,
		"floorPrice":      floor,
		"note":            note,
		"discountPct":     discount.DiscountPct,
		"discountedPrice": discount.FinalPrice,
		"conversionBoost": discount.ConversionBoost,
	})
}

// HandleRunCycle triggers one synchronous autopilot pass and reports what it did.
func (h *Handler) HandleRunCycle(c *fiber.Ctx) error {
	report := h.scheduler.RunOnce(c.Context())
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"campaignsEvaluated":   report.Campaigns,
		"competitorsEvaluated": report.Competitors,
		"actionsTaken":         report.Actions,
		"failures":             report.Failures,
	})
}

func (h *Handler) HandleCampaigns(c *fiber.Ctx) error {
	campaigns, err := h.store.Campaigns(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	return c.Status(fiber.StatusOK).JSON(campaigns)
}

func (h *Handler) HandleCompetitors(c *fiber.Ctx) error {
	competitors, err := h.store.Competitors(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
	return c.Status(fiber.StatusOK).JSON(competitors)
}
