package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/edugrade/edugrade-api/internal/dto"
	"github.com/edugrade/edugrade-api/internal/service"
	"github.com/edugrade/edugrade-api/internal/utils"
)

// EvaluationHandler manages the answer evaluation endpoint.
type EvaluationHandler struct {
	service   service.EvaluationService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewEvaluationHandler builds an evaluation handler instance.
func NewEvaluationHandler(service service.EvaluationService, validator *validator.Validate, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		service:   service,
		validator: validator,
		logger:    logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

// Register attaches the routes to the provided router group.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Post("", h.evaluate)
}

// evaluate decodes the request, rejects malformed payloads, and hands the
// rest to the evaluation service. An empty student answer is not a transport
// error: the service answers it with a review-flagged result.
func (h *EvaluationHandler) evaluate(c *fiber.Ctx) error {
	var payload dto.EvaluationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	if err := h.validator.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return utils.SendError(c, fiber.StatusBadRequest, validationErrors.Error())
		}

		h.logger.Error().Err(err).Msg("payload validation failed")
		return utils.SendError(c, fiber.StatusInternalServerError, "internal server error")
	}

	result := h.service.Evaluate(c.Context(), payload)

	return utils.SendSuccess(c, "evaluation completed", result)
}
