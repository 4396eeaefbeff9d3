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

type RedemptionService interface {
	Verify(ctx context.Context, email, phone, code string) (domain.Redemption, error)
	MarkRedeemed(ctx context.Context, id, redeemedBy, notes string) (domain.Redemption, bool, error)
	List(ctx context.Context, displayID, status string, limit, offset int) ([]domain.Redemption, error)
	Stats(ctx context.Context, displayID string) (domain.RedemptionStats, error)
}

type RedemptionHandler struct {
	svc RedemptionService
}

func NewRedemptionHandler(svc RedemptionService) *RedemptionHandler {
	return &RedemptionHandler{
		svc: svc,
	}
}

// HandleVerifyRedemption godoc
// @Summary      Verify a redemption code against the claimant's identity
// @Tags         redemption
// @Produce      json
// @Param        request   body      request.VerifyRedemptionRequest true "request body"
// @Success      200      {object}   response.RedemptionResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /redemptions/verify [post]
func (h *RedemptionHandler) HandleVerifyRedemption(ctx *gin.Context) {
	req := request.VerifyRedemptionRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	redemption, err := h.svc.Verify(ctx.Request.Context(), req.Email, req.Phone, req.Code)
	if err != nil {
		if errors.Is(err, service.ErrRedemptionInvalid) {
			response.RenderErr(ctx, response.ErrNotFound("redemption", "code", req.Code))

			return
		}

		err = fmt.Errorf("v1.HandleVerifyRedemption -> h.svc.Verify -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.NewRedemptionResponse(redemption))
}

// HandleListRedemptions godoc
// @Summary      List redemptions for a display
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        display_id   query     string true  "display ID"
// @Param        status       query     string false "filter: redeemed or pending"
// @Param        limit        query     int    false "page size"
// @Param        offset       query     int    false "page offset"
// @Success      200      {array}    response.RedemptionResponse
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/redemptions [get]
func (h *RedemptionHandler) HandleListRedemptions(ctx *gin.Context) {
	displayID := ctx.Query("display_id")
	if displayID == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("display_id is required")))

		return
	}

	status := ctx.Query("status")
	if status != "" && status != "redeemed" && status != "pending" {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("status must be redeemed or pending")))

		return
	}

	limit, offset := parsePagination(ctx)

	redemptions, err := h.svc.List(ctx.Request.Context(), displayID, status, limit, offset)
	if err != nil {
		err = fmt.Errorf("v1.HandleListRedemptions -> h.svc.List -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	resp := make([]response.RedemptionResponse, 0, len(redemptions))
	for _, redemption := range redemptions {
		resp = append(resp, response.NewRedemptionResponse(redemption))
	}

	ctx.JSON(http.StatusOK, resp)
}

// HandleRedeem godoc
// @Summary      Mark a redemption as used
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        redemptionID   path      string true "redemption ID"
// @Param        request        body      request.RedeemRequest false "request body"
// @Success      200      {object}   response.RedeemResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/redemptions/{redemptionID}/redeem [post]
func (h *RedemptionHandler) HandleRedeem(ctx *gin.Context) {
	redemptionID := ctx.Param("redemptionID")

	req := request.RedeemRequest{}
	if ctx.Request.ContentLength > 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))

			return
		}

		if err := req.Validate(); err != nil {
			response.RenderErr(ctx, response.ErrBadRequest(err))

			return
		}
	}

	redemption, flipped, err := h.svc.MarkRedeemed(ctx.Request.Context(), redemptionID, req.RedeemedBy, req.Notes)
	if err != nil {
		if errors.Is(err, service.ErrRedemptionNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("redemption", "id", redemptionID))

			return
		}

		err = fmt.Errorf("v1.HandleRedeem -> h.svc.MarkRedeemed -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.RedeemResponse{
		Redemption:      response.NewRedemptionResponse(redemption),
		AlreadyRedeemed: !flipped,
	})
}

// HandleRedemptionStats godoc
// @Summary      Redemption statistics for a display
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        display_id   query     string true "display ID"
// @Success      200      {object}   domain.RedemptionStats
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/redemptions/stats [get]
func (h *RedemptionHandler) HandleRedemptionStats(ctx *gin.Context) {
	displayID := ctx.Query("display_id")
	if displayID == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("display_id is required")))

		return
	}

	stats, err := h.svc.Stats(ctx.Request.Context(), displayID)
	if err != nil {
		err = fmt.Errorf("v1.HandleRedemptionStats -> h.svc.Stats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, stats)
}
