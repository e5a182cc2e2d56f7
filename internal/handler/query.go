package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/acadvisor/acadvisor/internal/domain"
	"github.com/acadvisor/acadvisor/internal/dto"
)

// Advisor answers one free-text question
type Advisor interface {
	Query(ctx context.Context, text string, rc *domain.RequestContext) (*domain.Response, error)
}

// QueryHandler handles the advising endpoint
type QueryHandler struct {
	advisor Advisor
	logger  *zap.Logger
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(advisor Advisor, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		advisor: advisor,
		logger:  logger,
	}
}

// Query handles POST /query
func (h *QueryHandler) Query(c *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := dto.ParseAndValidate(c, &req); err != nil {
		return errorResponse(c, err)
	}

	resp, err := h.advisor.Query(c.UserContext(), req.Text, req.Context)
	if err != nil {
		h.logger.Debug("query failed", zap.String("text", req.Text), zap.Error(err))
		return errorResponse(c, err)
	}

	return c.JSON(resp)
}

// RegisterRoutes registers the advising routes
func (h *QueryHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/query", h.Query)
}
