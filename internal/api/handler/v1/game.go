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

type GameService interface {
	Submit(ctx context.Context, input service.SubmitInput) (domain.Session, error)
	Start(ctx context.Context, sessionID string) (domain.Session, error)
	Complete(ctx context.Context, sessionID string) error
	Get(ctx context.Context, sessionID string) (domain.Session, error)
	ListByDisplay(ctx context.Context, displayID string, limit, offset int) ([]domain.Session, error)
	ListPlayers(ctx context.Context, displayID string, limit, offset int) ([]domain.Player, error)
}

type EligibilityChecker interface {
	Check(ctx context.Context, displayID, email, phone string) (service.Eligibility, error)
}

type RedemptionLookup interface {
	FindBySessionID(ctx context.Context, sessionID string) (domain.Redemption, error)
}

type GameHandler struct {
	svc         GameService
	rules       EligibilityChecker
	redemptions RedemptionLookup
}

func NewGameHandler(svc GameService, rules EligibilityChecker, redemptions RedemptionLookup) *GameHandler {
	return &GameHandler{
		svc:         svc,
		rules:       rules,
		redemptions: redemptions,
	}
}

// sessionResponse attaches the redemption code once the session has
// completed with a winning outcome.
func (h *GameHandler) sessionResponse(ctx context.Context, session domain.Session) response.SessionResponse {
	resp := response.NewSessionResponse(session)
	if session.Status != domain.SessionCompleted {
		return resp
	}
	if session.Outcome == nil || session.Outcome.IsNegative {
		return resp
	}

	redemption, err := h.redemptions.FindBySessionID(ctx, session.ID)
	if err != nil {
		return resp
	}
	resp.RedemptionCode = redemption.Code

	return resp
}

// HandleSubmit godoc
// @Summary      Submit the play form and create a game session
// @Tags         game
// @Produce      json
// @Param        request   body      request.SubmitRequest true "request body"
// @Success      201      {object}   response.SubmitResponse
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /submit [post]
func (h *GameHandler) HandleSubmit(ctx *gin.Context) {
	req := request.SubmitRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))

		return
	}

	session, err := h.svc.Submit(ctx.Request.Context(), service.SubmitInput{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		DisplayID: req.DisplayID,
		Token:     req.Token,
	})
	if err != nil {
		var ineligible *service.IneligibleError
		switch {
		case errors.As(err, &ineligible):
			response.RenderErr(ctx, response.ErrPermissionDenied(ineligible))
		case errors.Is(err, service.ErrDisplayNotFound):
			response.RenderErr(ctx, response.ErrNotFound("display", "id", req.DisplayID))
		case errors.Is(err, service.ErrDisplayInactive):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		case errors.Is(err, service.ErrTokenInvalid):
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
		default:
			err = fmt.Errorf("v1.HandleSubmit -> h.svc.Submit -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusCreated, response.SubmitResponse{
		SessionID: session.ID,
	})
}

// HandleStartSession godoc
// @Summary      Start the game (buzzer press)
// @Tags         game
// @Produce      json
// @Param        sessionID   path      string true "session ID"
// @Success      200      {object}   response.SessionResponse
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /sessions/{sessionID}/start [post]
func (h *GameHandler) HandleStartSession(ctx *gin.Context) {
	sessionID := ctx.Param("sessionID")

	session, err := h.svc.Start(ctx.Request.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.RenderErr(ctx, response.ErrNotFound("session", "id", sessionID))
		case errors.Is(err, service.ErrInvalidState):
			response.RenderErr(ctx, response.ErrConflict(err))
		default:
			err = fmt.Errorf("v1.HandleStartSession -> h.svc.Start -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}

		return
	}

	ctx.JSON(http.StatusOK, response.NewSessionResponse(session))
}

// HandleGetSession godoc
// @Summary      Get a game session
// @Tags         game
// @Produce      json
// @Param        sessionID   path      string true "session ID"
// @Success      200      {object}   response.SessionResponse
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /sessions/{sessionID} [get]
func (h *GameHandler) HandleGetSession(ctx *gin.Context) {
	sessionID := ctx.Param("sessionID")

	session, err := h.svc.Get(ctx.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("session", "id", sessionID))

			return
		}

		err = fmt.Errorf("v1.HandleGetSession -> h.svc.Get -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, h.sessionResponse(ctx.Request.Context(), session))
}

// HandleCompleteSession godoc
// @Summary      Complete a game session (HTTP fallback)
// @Tags         game
// @Produce      json
// @Param        sessionID   path      string true "session ID"
// @Success      200      {object}   response.SessionResponse
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /sessions/{sessionID}/complete [post]
func (h *GameHandler) HandleCompleteSession(ctx *gin.Context) {
	sessionID := ctx.Param("sessionID")

	if err := h.svc.Complete(ctx.Request.Context(), sessionID); err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("session", "id", sessionID))

			return
		}

		err = fmt.Errorf("v1.HandleCompleteSession -> h.svc.Complete -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	session, err := h.svc.Get(ctx.Request.Context(), sessionID)
	if err != nil {
		err = fmt.Errorf("v1.HandleCompleteSession -> h.svc.Get -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, h.sessionResponse(ctx.Request.Context(), session))
}

// HandleCheckEligibility godoc
// @Summary      Check whether an identity may play on a display
// @Tags         game
// @Produce      json
// @Param        display_id   query     string true  "display ID"
// @Param        email        query     string true  "email"
// @Param        phone        query     string true  "phone"
// @Success      200      {object}   response.EligibilityResponse
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /eligibility [get]
func (h *GameHandler) HandleCheckEligibility(ctx *gin.Context) {
	displayID := ctx.Query("display_id")
	if displayID == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("display_id is required")))

		return
	}

	email, ok := service.NormalizeEmail(ctx.Query("email"))
	if !ok {
		ctx.JSON(http.StatusOK, response.EligibilityResponse{
			Eligible: false,
			Reason:   "Please provide a valid email address.",
		})

		return
	}

	phone, ok := service.NormalizePhone(ctx.Query("phone"))
	if !ok {
		ctx.JSON(http.StatusOK, response.EligibilityResponse{
			Eligible: false,
			Reason:   "Please provide a valid 10-digit phone number.",
		})

		return
	}

	eligibility, err := h.rules.Check(ctx.Request.Context(), displayID, email, phone)
	if err != nil {
		err = fmt.Errorf("v1.HandleCheckEligibility -> h.rules.Check -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, response.EligibilityResponse{
		Eligible: eligibility.Eligible,
		Reason:   eligibility.Reason,
	})
}

// HandleListSessions godoc
// @Summary      List sessions for a display
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        display_id   query     string true  "display ID"
// @Param        limit        query     int    false "page size"
// @Param        offset       query     int    false "page offset"
// @Success      200      {array}    response.SessionResponse
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/sessions [get]
func (h *GameHandler) HandleListSessions(ctx *gin.Context) {
	displayID := ctx.Query("display_id")
	if displayID == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("display_id is required")))

		return
	}

	limit, offset := parsePagination(ctx)

	sessions, err := h.svc.ListByDisplay(ctx.Request.Context(), displayID, limit, offset)
	if err != nil {
		err = fmt.Errorf("v1.HandleListSessions -> h.svc.ListByDisplay -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	resp := make([]response.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		resp = append(resp, response.NewSessionResponse(session))
	}

	ctx.JSON(http.StatusOK, resp)
}

// HandleListPlayers godoc
// @Summary      List captured players for a display
// @Tags         admin
// @Security     Bearer
// @Produce      json
// @Param        display_id   query     string true  "display ID"
// @Param        limit        query     int    false "page size"
// @Param        offset       query     int    false "page offset"
// @Success      200      {array}    domain.Player
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/players [get]
func (h *GameHandler) HandleListPlayers(ctx *gin.Context) {
	displayID := ctx.Query("display_id")
	if displayID == "" {
		response.RenderErr(ctx, response.ErrBadRequest(errors.New("display_id is required")))

		return
	}

	limit, offset := parsePagination(ctx)

	players, err := h.svc.ListPlayers(ctx.Request.Context(), displayID, limit, offset)
	if err != nil {
		err = fmt.Errorf("v1.HandleListPlayers -> h.svc.ListPlayers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))

		return
	}

	ctx.JSON(http.StatusOK, players)
}
