package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/promosign/spin-api/internal/api/handler/v1/request"
	"github.com/promosign/spin-api/internal/api/handler/v1/response"
	"github.com/promosign/spin-api/internal/domain"
	"github.com/promosign/spin-api/internal/service"
)

type OutcomeService interface {
	Create(ctx context.Context, input service.CreateOutcomeInput) (domain.Outcome, error)
	ListByDisplay(ctx context.Context, displayID string) ([]domain.Outcome, error)
	Update(ctx context.Context, id string, input service.UpdateOutcomeInput) (domain.Outcome, error)
	BulkUpdateWeights(ctx context.Context, updates []domain.OutcomeWeightUpdate) ([]domain.Outcome, error)
	WeightStats(ctx context.Context, displayID string) (domain.WeightStatsReport, error)
	Delete(ctx context.Context, id string) error
}

type OutcomeHandler struct {
	svc OutcomeService
}

func NewOutcomeHandler(svc OutcomeService) *OutcomeHandler {
	return &OutcomeHandler{
		svc: svc,
	}
}

// HandleCreateOutcome godoc
// @Summary      Create a wheel outcome
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        request   body      request.CreateOutcomeRequest true "request body"
// @Success      201      {object}   domain.Outcome
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/outcomes [post]
func (h *OutcomeHandler) HandleCreateOutcome(ctx *gin.Context) {
	req := request.CreateOutcomeRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	outcome, err := h.svc.Create(ctx.Request.Context(), service.CreateOutcomeInput{
		DisplayID:         req.DisplayID,
		Label:             req.Label,
		ProbabilityWeight: req.ProbabilityWeight,
		IsNegative:        req.IsNegative,
	})
	if err != nil {
		if errors.Is(err, service.ErrDisplayNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("display", "id", req.DisplayID))

			return
		}

		err = fmt.Errorf("v1.HandleCreateOutcome -> h.svc.Create -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusCreated, outcome)
}

// HandleListOutcomes godoc
// @Summary      List the outcomes of a display
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        display_id   query     string true "display ID"
// @Success      200      {array}    domain.Outcome
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/outcomes [get]
func (h *OutcomeHandler) HandleListOutcomes(ctx *gin.Context) {
	displayID := ctx.Query("display_id")
	if displayID == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("display_id is required")))

		return
	}

	outcomes, err := h.svc.ListByDisplay(ctx.Request.Context(), displayID)
	if err != nil {
		err = fmt.Errorf("v1.HandleListOutcomes -> h.svc.ListByDisplay -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, outcomes)
}

// HandleUpdateOutcome godoc
// @Summary      Update a wheel outcome
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        outcomeID   path      string true "outcome ID"
// @Param        request     body      request.UpdateOutcomeRequest true "request body"
// @Success      200      {object}   domain.Outcome
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/outcomes/{outcomeID} [put]
func (h *OutcomeHandler) HandleUpdateOutcome(ctx *gin.Context) {
	outcomeID := ctx.Param("outcomeID")

	req := request.UpdateOutcomeRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	outcome, err := h.svc.Update(ctx.Request.Context(), outcomeID, service.UpdateOutcomeInput{
		Label:             req.Label,
		ProbabilityWeight: req.ProbabilityWeight,
		IsActive:          req.IsActive,
		IsNegative:        req.IsNegative,
	})
	if err != nil {
		if errors.Is(err, service.ErrOutcomeNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("outcome", "id", outcomeID))

			return
		}

		err = fmt.Errorf("v1.HandleUpdateOutcome -> h.svc.Update -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, outcome)
}

// HandleBulkUpdateWeights godoc
// @Summary      Update the weights of several outcomes atomically
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        request   body      request.BulkUpdateWeightsRequest true "request body"
// @Success      200      {array}    domain.Outcome
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/outcomes/weights [put]
func (h *OutcomeHandler) HandleBulkUpdateWeights(ctx *gin.Context) {
	req := request.BulkUpdateWeightsRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	updates := make([]domain.OutcomeWeightUpdate, 0, len(req.Outcomes))
	for _, o := range req.Outcomes {
		updates = append(updates, domain.OutcomeWeightUpdate{
			OutcomeID: o.ID,
			Weight:    *o.ProbabilityWeight,
		})
	}

	outcomes, err := h.svc.BulkUpdateWeights(ctx.Request.Context(), updates)
	if err != nil {
		if errors.Is(err, service.ErrInvalidWeightUpdate) {
			response.RenderErr(ctx, response.ErrBadRequest(err))

			return
		}
		if errors.Is(err, service.ErrOutcomeNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("outcome", "id", ""))

			return
		}

		err = fmt.Errorf("v1.HandleBulkUpdateWeights -> h.svc.BulkUpdateWeights -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, outcomes)
}

// HandleWeightStats godoc
// @Summary      Report each active outcome's share of the wheel
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        display_id   query     string true "display ID"
// @Success      200      {object}   domain.WeightStatsReport
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/outcomes/stats [get]
func (h *OutcomeHandler) HandleWeightStats(ctx *gin.Context) {
	displayID := ctx.Query("display_id")
	if displayID == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("display_id is required")))

		return
	}

	stats, err := h.svc.WeightStats(ctx.Request.Context(), displayID)
	if err != nil {
		if errors.Is(err, service.ErrDisplayNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("display", "id", displayID))

			return
		}

		err = fmt.Errorf("v1.HandleWeightStats -> h.svc.WeightStats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, stats)
}

// HandleDeleteOutcome godoc
// @Summary      Delete a wheel outcome
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        outcomeID   path      string true "outcome ID"
// @Success      204      "no content"
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/outcomes/{outcomeID} [delete]
func (h *OutcomeHandler) HandleDeleteOutcome(ctx *gin.Context) {
	outcomeID := ctx.Param("outcomeID")

	if err := h.svc.Delete(ctx.Request.Context(), outcomeID); err != nil {
		if errors.Is(err, service.ErrOutcomeNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("outcome", "id", outcomeID))

			return
		}

		err = fmt.Errorf("v1.HandleDeleteOutcome -> h.svc.Delete -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Status(http.StatusNoContent)
}
