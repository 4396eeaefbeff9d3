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

type DisplayService interface {
	Create(ctx context.Context, input service.CreateDisplayInput) (domain.DisplayInstance, error)
	Get(ctx context.Context, id string) (domain.DisplayInstance, error)
	List(ctx context.Context) ([]domain.DisplayInstance, error)
	Update(ctx context.Context, id string, input service.UpdateDisplayInput) (domain.DisplayInstance, error)
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, id string) (domain.DisplayStats, error)
}

type DisplayHandler struct {
	svc DisplayService
}

func NewDisplayHandler(svc DisplayService) *DisplayHandler {
	return &DisplayHandler{
		svc: svc,
	}
}

// HandleCreateDisplay godoc
// @Summary      Create a display instance
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        request   body      request.CreateDisplayRequest true "request body"
// @Success      201      {object}   domain.DisplayInstance
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/displays [post]
func (h *DisplayHandler) HandleCreateDisplay(ctx *gin.Context) {
	req := request.CreateDisplayRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	display, err := h.svc.Create(ctx.Request.Context(), service.CreateDisplayInput{
		ID:               req.ID,
		LocationName:     req.LocationName,
		QRCodeURL:        req.QRCodeURL,
		Timezone:         req.Timezone,
		LogoURL:          req.LogoURL,
		BackgroundConfig: req.BackgroundConfig,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDisplayExists):
			response.RenderErr(ctx, response.ErrConflict(err))
		case errors.Is(err, service.ErrInvalidDisplayID), errors.Is(err, service.ErrInvalidTimezone):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleCreateDisplay -> h.svc.Create -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, display)
}

// HandleGetDisplay godoc
// @Summary      Get a display instance
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        displayID   path      string true "display ID"
// @Success      200      {object}   domain.DisplayInstance
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/displays/{displayID} [get]
func (h *DisplayHandler) HandleGetDisplay(ctx *gin.Context) {
	displayID := ctx.Param("displayID")

	display, err := h.svc.Get(ctx.Request.Context(), displayID)
	if err != nil {
		if errors.Is(err, service.ErrDisplayNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("display", "id", displayID))

			return
		}

		err = fmt.Errorf("v1.HandleGetDisplay -> h.svc.Get -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, display)
}

// HandleListDisplays godoc
// @Summary      List all display instances
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Success      200      {array}    domain.DisplayInstance
// @Failure      500      {object}   response.Err
// @Router       /admin/displays [get]
func (h *DisplayHandler) HandleListDisplays(ctx *gin.Context) {
	displays, err := h.svc.List(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListDisplays -> h.svc.List -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, displays)
}

// HandleUpdateDisplay godoc
// @Summary      Update a display instance
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        displayID   path      string true "display ID"
// @Param        request     body      request.UpdateDisplayRequest true "request body"
// @Success      200      {object}   domain.DisplayInstance
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/displays/{displayID} [put]
func (h *DisplayHandler) HandleUpdateDisplay(ctx *gin.Context) {
	displayID := ctx.Param("displayID")

	req := request.UpdateDisplayRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	display, err := h.svc.Update(ctx.Request.Context(), displayID, service.UpdateDisplayInput{
		LocationName:     req.LocationName,
		QRCodeURL:        req.QRCodeURL,
		IsActive:         req.IsActive,
		Timezone:         req.Timezone,
		LogoURL:          req.LogoURL,
		BackgroundConfig: req.BackgroundConfig,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDisplayNotFound):
			response.RenderErr(ctx, response.ErrNotFound("display", "id", displayID))
		case errors.Is(err, service.ErrInvalidTimezone):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		default:
			err = fmt.Errorf("v1.HandleUpdateDisplay -> h.svc.Update -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, display)
}

// HandleDeleteDisplay godoc
// @Summary      Delete a display instance and all its data
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        displayID   path      string true "display ID"
// @Success      204      "no content"
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/displays/{displayID} [delete]
func (h *DisplayHandler) HandleDeleteDisplay(ctx *gin.Context) {
	displayID := ctx.Param("displayID")

	if err := h.svc.Delete(ctx.Request.Context(), displayID); err != nil {
		if errors.Is(err, service.ErrDisplayNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("display", "id", displayID))

			return
		}

		err = fmt.Errorf("v1.HandleDeleteDisplay -> h.svc.Delete -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleDisplayStats godoc
// @Summary      Aggregate statistics for a display
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        displayID   path      string true "display ID"
// @Success      200      {object}   domain.DisplayStats
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/displays/{displayID}/stats [get]
func (h *DisplayHandler) HandleDisplayStats(ctx *gin.Context) {
	displayID := ctx.Param("displayID")

	stats, err := h.svc.Stats(ctx.Request.Context(), displayID)
	if err != nil {
		if errors.Is(err, service.ErrDisplayNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("display", "id", displayID))

			return
		}

		err = fmt.Errorf("v1.HandleDisplayStats -> h.svc.Stats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, stats)
}
