package v1

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lumina-events/invitation-api/internal/api/handler/v1/request"
	"github.com/lumina-events/invitation-api/internal/api/handler/v1/response"
	"github.com/lumina-events/invitation-api/internal/api/middleware"
	"github.com/lumina-events/invitation-api/internal/config"
	"github.com/lumina-events/invitation-api/internal/pkg/jwthelper"
	"github.com/lumina-events/invitation-api/internal/service"
)

type AdmissionService interface {
	StartSession(ctx context.Context) (service.AdmissionView, error)
	Session(ctx context.Context, sessionID string) (service.AdmissionView, error)
	Verify(ctx context.Context, sessionID, phone string) (service.AdmissionView, error)
	Vote(ctx context.Context, sessionID string, in service.VoteInput) (service.AdmissionView, error)
	SelectTier(ctx context.Context, sessionID, tierID string) (service.AdmissionView, error)
	AbandonGame(ctx context.Context, sessionID string) (service.AdmissionView, error)
	CompleteGame(ctx context.Context, sessionID, challengeID string, hits int) (service.AdmissionView, error)
	Claim(ctx context.Context, sessionID, token string) (service.AdmissionView, error)
	Issue(ctx context.Context, sessionID string, in service.IssueInput) (service.AdmissionView, error)
}

type GuestHandler struct {
	conf       *config.APIConfig
	sessionTTL time.Duration
	svc        AdmissionService
}

func NewGuestHandler(conf *config.APIConfig, sessionTTL time.Duration, svc AdmissionService) *GuestHandler {
	return &GuestHandler{
		conf:       conf,
		sessionTTL: sessionTTL,
		svc:        svc,
	}
}

// HandleStartSession godoc
// @Summary      Open an admission session
// @Description  Returns the guest token and the event data shown on the locked screen.
// @Tags         guest
// @Produce      json
// @Success      201      {object}   response.SessionResponse
// @Failure      500      {object}   response.Err
// @Router       /guest/sessions [post]
func (h *GuestHandler) HandleStartSession(ctx *gin.Context) {
	view, err := h.svc.StartSession(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleStartSession -> h.svc.StartSession -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	token, err := jwthelper.GenerateToken([]byte(h.conf.JWTSigningKey), view.Session.ID, jwthelper.RoleGuest, ctx.Request.UserAgent(), h.sessionTTL)
	if err != nil {
		err = fmt.Errorf("v1.HandleStartSession -> jwthelper.GenerateToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, response.SessionResponse{
		Token:         token,
		AdmissionView: view,
	})
}

// HandleGetSession godoc
// @Summary      Current admission state
// @Tags         guest
// @Produce      json
// @Success      200      {object}   service.AdmissionView
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /guest/session [get]
// @Security BearerAuth
func (h *GuestHandler) HandleGetSession(ctx *gin.Context) {
	view, err := h.svc.Session(ctx.Request.Context(), sessionID(ctx))
	if err != nil {
		renderAdmissionErr(ctx, "HandleGetSession", view, err)
		return
	}

	ctx.JSON(http.StatusOK, view)
}

// HandleVerify godoc
// @Summary      Verify the guest's phone number
// @Description  Five unknown numbers in a row lock the session for five minutes.
// @Tags         guest
// @Produce      json
// @Param        request   body      request.VerifyRequest true "request body"
// @Success      200      {object}   service.AdmissionView
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      429      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /guest/session/verify [post]
// @Security BearerAuth
func (h *GuestHandler) HandleVerify(ctx *gin.Context) {
	var req request.VerifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	view, err := h.svc.Verify(ctx.Request.Context(), sessionID(ctx), req.Phone)
	if err != nil {
		renderAdmissionErr(ctx, "HandleVerify", view, err)
		return
	}

	ctx.JSON(http.StatusOK, view)
}

// HandleVote godoc
// @Summary      Vote for a venue
// @Tags         guest
// @Produce      json
// @Param        request   body      request.VoteRequest true "request body"
// @Success      201      {object}   service.AdmissionView
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /guest/session/vote [post]
// @Security BearerAuth
func (h *GuestHandler) HandleVote(ctx *gin.Context) {
	var req request.VoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	view, err := h.svc.Vote(ctx.Request.Context(), sessionID(ctx), service.VoteInput{
		VenueID:   req.VenueID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
	})
	if err != nil {
		renderAdmissionErr(ctx, "HandleVote", view, err)
		return
	}

	ctx.JSON(http.StatusCreated, view)
}

// HandleSelectTier godoc
// @Summary      Pick a ticket tier and start its mini game
// @Tags         guest
// @Produce      json
// @Param        request   body      request.SelectTierRequest true "request body"
// @Success      200      {object}   service.AdmissionView
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /guest/session/tier [post]
// @Security BearerAuth
func (h *GuestHandler) HandleSelectTier(ctx *gin.Context) {
	var req request.SelectTierRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	view, err := h.svc.SelectTier(ctx.Request.Context(), sessionID(ctx), req.TierID)
	if err != nil {
		renderAdmissionErr(ctx, "HandleSelectTier", view, err)
		return
	}

	ctx.JSON(http.StatusOK, view)
}

// HandleAbandonGame godoc
// @Summary      Leave the mini game and go back to tier selection
// @Tags         guest
// @Produce      json
// @Success      200      {object}   service.AdmissionView
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /guest/session/game/abandon [post]
// @Security BearerAuth
func (h *GuestHandler) HandleAbandonGame(ctx *gin.Context) {
	view, err := h.svc.AbandonGame(ctx.Request.Context(), sessionID(ctx))
	if err != nil {
		renderAdmissionErr(ctx, "HandleAbandonGame", view, err)
		return
	}

	ctx.JSON(http.StatusOK, view)
}

// HandleCompleteGame godoc
// @Summary      Report the mini game result
// @Description  A pass returns the claim_token needed by the claim call.
// @Tags         guest
// @Produce      json
// @Param        request   body      request.CompleteGameRequest true "request body"
// @Success      200      {object}   service.AdmissionView
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /guest/session/game/complete [post]
// @Security BearerAuth
func (h *GuestHandler) HandleCompleteGame(ctx *gin.Context) {
	var req request.CompleteGameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	view, err := h.svc.CompleteGame(ctx.Request.Context(), sessionID(ctx), req.ChallengeID, req.Hits)
	if err != nil {
		renderAdmissionErr(ctx, "HandleCompleteGame", view, err)
		return
	}

	ctx.JSON(http.StatusOK, view)
}

// HandleClaim godoc
// @Summary      Claim one unit of the selected tier
// @Description  On stock_exhausted the error details carry the refreshed tiers.
// @Tags         guest
// @Produce      json
// @Param        request   body      request.ClaimRequest true "request body"
// @Success      200      {object}   service.AdmissionView
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /guest/session/claim [post]
// @Security BearerAuth
func (h *GuestHandler) HandleClaim(ctx *gin.Context) {
	var req request.ClaimRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	view, err := h.svc.Claim(ctx.Request.Context(), sessionID(ctx), req.ClaimToken)
	if err != nil {
		renderAdmissionErr(ctx, "HandleClaim", view, err)
		return
	}

	ctx.JSON(http.StatusOK, view)
}

// HandleIssue godoc
// @Summary      Issue tickets for the guest and companions
// @Tags         guest
// @Produce      json
// @Param        request   body      request.IssueRequest true "request body"
// @Success      201      {object}   service.AdmissionView
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /guest/session/tickets [post]
// @Security BearerAuth
func (h *GuestHandler) HandleIssue(ctx *gin.Context) {
	var req request.IssueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	view, err := h.svc.Issue(ctx.Request.Context(), sessionID(ctx), service.IssueInput{
		GuestCount: req.GuestCount,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
	})
	if err != nil {
		renderAdmissionErr(ctx, "HandleIssue", view, err)
		return
	}

	ctx.JSON(http.StatusCreated, view)
}

func sessionID(ctx *gin.Context) string {
	claims, ok := middleware.Claims(ctx)
	if !ok {
		return ""
	}

	return claims.Subject
}

func renderAdmissionErr(ctx *gin.Context, op string, view service.AdmissionView, err error) {
	var limited *service.RateLimitError
	switch {
	case errors.As(err, &limited):
		response.RenderErr(ctx, response.ErrTooManyRequests(err, limited.RetryAfter))
	case errors.Is(err, service.ErrSessionNotFound):
		response.RenderErr(ctx, response.ErrUnauthorized(err))
	case errors.Is(err, service.ErrInvalidPhone),
		errors.Is(err, service.ErrIdentityRequired),
		errors.Is(err, service.ErrInvalidGuestCount),
		errors.Is(err, service.ErrGameFailed),
		errors.Is(err, service.ErrChallengeMismatch):
		response.RenderErr(ctx, response.ErrBadRequest(err))
	case errors.Is(err, service.ErrGuestNotFound),
		errors.Is(err, service.ErrVenueNotFound),
		errors.Is(err, service.ErrTierNotFound):
		response.RenderErr(ctx, response.ErrResourceNotFound(err))
	case errors.Is(err, service.ErrInvalidClaimToken):
		response.RenderErr(ctx, response.ErrPermissionDenied(err))
	case errors.Is(err, service.ErrStockExhausted):
		response.RenderErr(ctx, response.ErrStockExhausted(err).WithDetails(view))
	case errors.Is(err, service.ErrTicketsAlreadyIssued):
		e := response.ErrConflict(err)
		if view.Session.ID != "" {
			e = e.WithDetails(view)
		}
		response.RenderErr(ctx, e)
	case errors.Is(err, service.ErrAlreadyVoted),
		errors.Is(err, service.ErrVotingClosed),
		errors.Is(err, service.ErrTierSoldOut):
		response.RenderErr(ctx, response.ErrConflict(err))
	case errors.Is(err, service.ErrInvalidTransition):
		response.RenderErr(ctx, response.ErrInvalidTransition(err))
	default:
		err = fmt.Errorf("v1.%s -> %w", op, err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
	}
}
