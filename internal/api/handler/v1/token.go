package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/promosign/spin-api/internal/api/handler/v1/response"
	"github.com/promosign/spin-api/internal/service"
)

type TokenService interface {
	Issue(ctx context.Context, displayID string) (token string, ttl time.Duration, err error)
	Validate(ctx context.Context, token string) (displayID string, err error)
}

type TokenHandler struct {
	svc TokenService
}

func NewTokenHandler(svc TokenService) *TokenHandler {
	return &TokenHandler{
		svc: svc,
	}
}

// HandleGenerateToken godoc
// @Summary      Issue a short-lived access token for a display
// @Tags         token
// @Produce      json
// @Param        display_id   query     string true "display ID"
// @Success      200      {object}   response.TokenResponse
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tokens/generate [get]
func (h *TokenHandler) HandleGenerateToken(ctx *gin.Context) {
	displayID := ctx.Query("display_id")
	if displayID == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("display_id is required")))

		return
	}

	token, ttl, err := h.svc.Issue(ctx.Request.Context(), displayID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDisplayNotFound):
			response.RenderErr(ctx, response.ErrNotFound("display", "id", displayID))
		case errors.Is(err, service.ErrDisplayInactive):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("v1.HandleGenerateToken -> h.svc.Issue -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, response.TokenResponse{
		Token:     token,
		ExpiresIn: int(ttl.Seconds()),
	})
}

// HandleValidateToken godoc
// @Summary      Validate an access token
// @Tags         token
// @Produce      json
// @Param        token   query     string true "access token"
// @Success      200      {object}   response.TokenValidationResponse
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /tokens/validate [get]
func (h *TokenHandler) HandleValidateToken(ctx *gin.Context) {
	token := ctx.Query("token")
	if token == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("token is required")))

		return
	}

	displayID, err := h.svc.Validate(ctx.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			ctx.JSON(http.StatusOK, response.TokenValidationResponse{
				Valid: false,
			})

			return
		}

		err = fmt.Errorf("v1.HandleValidateToken -> h.svc.Validate -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.TokenValidationResponse{
		Valid:     true,
		DisplayID: displayID,
	})
}
