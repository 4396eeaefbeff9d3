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

type PolicyService interface {
	Get(ctx context.Context, displayID string) (domain.ValidationPolicy, error)
	Update(ctx context.Context, displayID string, input service.UpdatePolicyInput) (domain.ValidationPolicy, error)
}

type PolicyHandler struct {
	svc PolicyService
}

func NewPolicyHandler(svc PolicyService) *PolicyHandler {
	return &PolicyHandler{
		svc: svc,
	}
}

// HandleGetPolicy godoc
// @Summary      Get the anti-abuse policy of a display
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        displayID   path      string true "display ID"
// @Success      200      {object}   domain.ValidationPolicy
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/displays/{displayID}/policy [get]
func (h *PolicyHandler) HandleGetPolicy(ctx *gin.Context) {
	displayID := ctx.Param("displayID")

	policy, err := h.svc.Get(ctx.Request.Context(), displayID)
	if err != nil {
		if errors.Is(err, service.ErrDisplayNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("display", "id", displayID))

			return
		}

		err = fmt.Errorf("v1.HandleGetPolicy -> h.svc.Get -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, policy)
}

// HandleUpdatePolicy godoc
// @Summary      Replace the anti-abuse policy of a display
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        displayID   path      string true "display ID"
// @Param        request     body      request.UpdatePolicyRequest true "request body"
// @Success      200      {object}   domain.ValidationPolicy
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/displays/{displayID}/policy [put]
func (h *PolicyHandler) HandleUpdatePolicy(ctx *gin.Context) {
	displayID := ctx.Param("displayID")

	req := request.UpdatePolicyRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	policy, err := h.svc.Update(ctx.Request.Context(), displayID, service.UpdatePolicyInput{
		AllowMultiplePlays:   req.AllowMultiplePlays,
		MaxPlaysPerEmail:     req.MaxPlaysPerEmail,
		MaxPlaysPerPhone:     req.MaxPlaysPerPhone,
		TimeWindowHours:      req.TimeWindowHours,
		AllowRetryOnNegative: req.AllowRetryOnNegative,
		CheckAcrossDisplays:  req.CheckAcrossDisplays,
		CheckDisplayIDs:      req.CheckDisplayIDs,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDisplayNotFound):
			response.RenderErr(ctx, response.ErrNotFound("display", "id", displayID))
		case errors.Is(err, service.ErrInvalidPolicy):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleUpdatePolicy -> h.svc.Update -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, policy)
}
