package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/promosign/spin-api/internal/api/handler/v1/response"
	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/service"
)

type AnalyticsService interface {
	DuplicateAttempts(ctx context.Context, displayID string, days int) (domain.DuplicateAttemptReport, error)
	ValidationReport(ctx context.Context, displayID string) (domain.ValidationReport, error)
}

type AnalyticsHandler struct {
	svc AnalyticsService
}

func NewAnalyticsHandler(svc AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		svc: svc,
	}
}

// HandleDuplicateAttempts godoc
// @Summary      Report daily traffic and repeat-identity attempts
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        display_id   query     string true  "display ID"
// @Param        days         query     int    false "trailing period in days, default 30"
// @Success      200      {object}   domain.DuplicateAttemptReport
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/analytics/duplicates [get]
func (h *AnalyticsHandler) HandleDuplicateAttempts(ctx *gin.Context) {
	displayID := ctx.Query("display_id")
	if displayID == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("display_id is required")))

		return
	}

	days := 0
	if raw := ctx.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(errors.New("days must be an integer")))

			return
		}
		days = parsed
	}

	report, err := h.svc.DuplicateAttempts(ctx.Request.Context(), displayID, days)
	if err != nil {
		if errors.Is(err, service.ErrInvalidPeriod) {
			response.RenderErr(ctx, response.ErrBadRequest(err))

			return
		}
		if errors.Is(err, service.ErrDisplayNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("display", "id", displayID))

			return
		}

		err = fmt.Errorf("v1.HandleDuplicateAttempts -> h.svc.DuplicateAttempts -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, report)
}

// HandleValidationReport godoc
// @Summary      Report the display's anti-abuse policy with play totals
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        display_id   query     string true "display ID"
// @Success      200      {object}   domain.ValidationReport
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/analytics/validation [get]
func (h *AnalyticsHandler) HandleValidationReport(ctx *gin.Context) {
	displayID := ctx.Query("display_id")
	if displayID == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("display_id is required")))

		return
	}

	report, err := h.svc.ValidationReport(ctx.Request.Context(), displayID)
	if err != nil {
		if errors.Is(err, service.ErrDisplayNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("display", "id", displayID))

			return
		}

		err = fmt.Errorf("v1.HandleValidationReport -> h.svc.ValidationReport -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, report)
}
