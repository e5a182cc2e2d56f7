package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/acadvisor/acadvisor/internal/service"
)

// SubjectLister lists the subject families known to the advisor
type SubjectLister interface {
	Subjects(ctx context.Context) ([]service.SubjectSummary, error)
}

// SubjectsHandler handles the subject listing endpoint
type SubjectsHandler struct {
	subjects SubjectLister
}

// NewSubjectsHandler creates a new subjects handler
func NewSubjectsHandler(subjects SubjectLister) *SubjectsHandler {
	return &SubjectsHandler{subjects: subjects}
}

// List handles GET /subjects
func (h *SubjectsHandler) List(c *fiber.Ctx) error {
	subjects, err := h.subjects.Subjects(c.UserContext())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"subjects": subjects})
}

// RegisterRoutes registers the subject routes
func (h *SubjectsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/subjects", h.List)
}
