package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/lotes-api/internal/application/dto"
	"github.com/jhoicas/lotes-api/internal/domain"
)

var statusByKind = map[domain.ErrorKind]int{
	domain.KindValidation:              fiber.StatusBadRequest,
	domain.KindItemNotFound:            fiber.StatusNotFound,
	domain.KindLotNotFound:             fiber.StatusNotFound,
	domain.KindInsufficientStock:       fiber.StatusConflict,
	domain.KindInsufficientLotQuantity: fiber.StatusConflict,
	domain.KindConcurrencyConflict:     fiber.StatusConflict,
	domain.KindPersistence:             fiber.StatusServiceUnavailable,
}

// writeError traduce errores del motor a respuesta HTTP con código, etapa y faltante.
func writeError(c *fiber.Ctx, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return c.Status(fiber.StatusGatewayTimeout).JSON(dto.ErrorResponse{
			Code: "TIMEOUT", Message: "la operación excedió el tiempo límite", Retryable: true,
		})
	}
	ie, ok := domain.AsIssueError(err)
	if !ok {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"})
	}
	status, ok := statusByKind[ie.Kind]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	resp := dto.ErrorResponse{
		Code:      string(ie.Kind),
		Message:   ie.Error(),
		Stage:     ie.Stage,
		LotID:     ie.LotID,
		Retryable: ie.Retryable(),
	}
	if ie.Kind == domain.KindPersistence {
		resp.Message = "error de persistencia, intente más tarde"
	}
	if ie.Kind == domain.KindInsufficientStock || ie.Kind == domain.KindInsufficientLotQuantity {
		s := ie.Shortfall
		resp.Shortfall = &s
	}
	return c.Status(status).JSON(resp)
}
