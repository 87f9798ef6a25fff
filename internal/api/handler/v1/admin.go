package v1

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lumina-events/invitation-api/internal/api/handler/v1/request"
	"github.com/lumina-events/invitation-api/internal/api/handler/v1/response"
	"github.com/lumina-events/invitation-api/internal/config"
	"github.com/lumina-events/invitation-api/internal/domain"
	"github.com/lumina-events/invitation-api/internal/pkg/jwthelper"
	"github.com/lumina-events/invitation-api/internal/service"
)

const (
	adminTokenTTL  = 12 * time.Hour
	maxUploadBytes = 8 << 20
)

type AdminService interface {
	Login(username, password string) error
	Stats(ctx context.Context) (service.Stats, error)
	Rsvps(ctx context.Context) ([]domain.Rsvp, error)
	RequestReset() (string, time.Time)
	ConfirmReset(ctx context.Context, code string) error
}

type GuestDirectoryService interface {
	List(ctx context.Context) ([]domain.Guest, error)
	Create(ctx context.Context, name, phone string) (domain.Guest, error)
	Delete(ctx context.Context, id string) error
	Reset(ctx context.Context, id string) error
}

type EventConfigService interface {
	Config(ctx context.Context) (domain.EventConfig, error)
	UpdateConfig(ctx context.Context, conf domain.EventConfig) (domain.EventConfig, error)
	Venues(ctx context.Context) ([]domain.Venue, error)
	CreateVenue(ctx context.Context, venue domain.Venue) (domain.Venue, error)
	UpdateVenue(ctx context.Context, venue domain.Venue) (domain.Venue, error)
	DeleteVenue(ctx context.Context, id string) error
	Tiers(ctx context.Context) ([]domain.TicketTier, error)
}

type ScanService interface {
	Scan(ctx context.Context, ticketID string) (domain.ScanResult, error)
	ScanImage(ctx context.Context, r io.Reader) (domain.ScanResult, error)
	List(ctx context.Context) ([]domain.TicketScan, error)
}

type AdminHandler struct {
	conf   *config.APIConfig
	svc    AdminService
	guests GuestDirectoryService
	event  EventConfigService
	scans  ScanService
}

func NewAdminHandler(conf *config.APIConfig, svc AdminService, guests GuestDirectoryService, event EventConfigService, scans ScanService) *AdminHandler {
	return &AdminHandler{
		conf:   conf,
		svc:    svc,
		guests: guests,
		event:  event,
		scans:  scans,
	}
}

// HandleLogin godoc
// @Summary      Admin login
// @Tags         admin
// @Produce      json
// @Param        request   body      request.LoginRequest true "request body"
// @Success      200      {object}   response.LoginResponse
// @Failure      400      {object}   response.Err
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/login [post]
func (h *AdminHandler) HandleLogin(ctx *gin.Context) {
	req := request.LoginRequest{}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.Login(req.Username, req.Password); err != nil {
		response.RenderErr(ctx, response.ErrWrongCredentials(err))
		return
	}

	token, err := jwthelper.GenerateToken([]byte(h.conf.JWTSigningKey), req.Username, jwthelper.RoleAdmin, ctx.Request.UserAgent(), adminTokenTTL)
	if err != nil {
		err = fmt.Errorf("v1.HandleLogin -> jwthelper.GenerateToken -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, response.LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(adminTokenTTL),
	})
}

// HandleStats godoc
// @Summary      Dashboard figures
// @Tags         admin
// @Produce      json
// @Success      200      {object}   service.Stats
// @Failure      401      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/stats [get]
// @Security BearerAuth
func (h *AdminHandler) HandleStats(ctx *gin.Context) {
	stats, err := h.svc.Stats(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleStats -> h.svc.Stats -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, stats)
}

// HandleListRsvps godoc
// @Summary      All submissions
// @Tags         admin
// @Produce      json
// @Success      200      {array}    domain.Rsvp
// @Failure      500      {object}   response.Err
// @Router       /admin/rsvps [get]
// @Security BearerAuth
func (h *AdminHandler) HandleListRsvps(ctx *gin.Context) {
	rsvps, err := h.svc.Rsvps(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListRsvps -> h.svc.Rsvps -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, rsvps)
}

// HandleListGuests godoc
// @Summary      Guest directory
// @Tags         admin
// @Produce      json
// @Success      200      {array}    domain.Guest
// @Failure      500      {object}   response.Err
// @Router       /admin/guests [get]
// @Security BearerAuth
func (h *AdminHandler) HandleListGuests(ctx *gin.Context) {
	guests, err := h.guests.List(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListGuests -> h.guests.List -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, guests)
}

// HandleCreateGuest godoc
// @Summary      Add a guest to the directory
// @Tags         admin
// @Produce      json
// @Param        request   body      request.CreateGuestRequest true "request body"
// @Success      201      {object}   domain.Guest
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/guests [post]
// @Security BearerAuth
func (h *AdminHandler) HandleCreateGuest(ctx *gin.Context) {
	var req request.CreateGuestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	guest, err := h.guests.Create(ctx.Request.Context(), req.Name, req.Phone)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPhone), errors.Is(err, service.ErrEmptyName):
			response.RenderErr(ctx, response.ErrBadRequest(err))
		case errors.Is(err, service.ErrGuestPhoneExists):
			response.RenderErr(ctx, response.ErrConflict(service.ErrGuestPhoneExists))
		default:
			err = fmt.Errorf("v1.HandleCreateGuest -> h.guests.Create -> %w", err)
			response.RenderErr(ctx, response.ErrInternalServerError(err))
		}
		return
	}

	ctx.JSON(http.StatusCreated, guest)
}

// HandleDeleteGuest godoc
// @Summary      Remove a guest from the directory
// @Tags         admin
// @Param        guestID   path      string  true  "guest ID"
// @Success      204
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/guests/{guestID} [delete]
// @Security BearerAuth
func (h *AdminHandler) HandleDeleteGuest(ctx *gin.Context) {
	guestID := ctx.Param("guestID")
	if err := h.guests.Delete(ctx.Request.Context(), guestID); err != nil {
		if errors.Is(err, service.ErrGuestNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("guest", "id", guestID))
			return
		}
		err = fmt.Errorf("v1.HandleDeleteGuest -> h.guests.Delete -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleResetGuest godoc
// @Summary      Clear a guest's arrival flag
// @Tags         admin
// @Param        guestID   path      string  true  "guest ID"
// @Success      204
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/guests/{guestID}/reset [post]
// @Security BearerAuth
func (h *AdminHandler) HandleResetGuest(ctx *gin.Context) {
	guestID := ctx.Param("guestID")
	if err := h.guests.Reset(ctx.Request.Context(), guestID); err != nil {
		if errors.Is(err, service.ErrGuestNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("guest", "id", guestID))
			return
		}
		err = fmt.Errorf("v1.HandleResetGuest -> h.guests.Reset -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleGetConfig godoc
// @Summary      Event configuration including the guest passcode
// @Tags         admin
// @Produce      json
// @Success      200      {object}   domain.EventConfig
// @Failure      500      {object}   response.Err
// @Router       /admin/config [get]
// @Security BearerAuth
func (h *AdminHandler) HandleGetConfig(ctx *gin.Context) {
	conf, err := h.event.Config(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleGetConfig -> h.event.Config -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, conf)
}

// HandleUpdateConfig godoc
// @Summary      Replace the event configuration
// @Description  Tier stock is recomputed from max_capacity and every client is notified.
// @Tags         admin
// @Produce      json
// @Param        request   body      request.ConfigRequest true "request body"
// @Success      200      {object}   domain.EventConfig
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/config [put]
// @Security BearerAuth
func (h *AdminHandler) HandleUpdateConfig(ctx *gin.Context) {
	var req request.ConfigRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	conf, err := h.event.UpdateConfig(ctx.Request.Context(), req.EventConfig())
	if err != nil {
		if errors.Is(err, service.ErrInvalidCapacity) || errors.Is(err, service.ErrUnknownWinner) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
		err = fmt.Errorf("v1.HandleUpdateConfig -> h.event.UpdateConfig -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, conf)
}

// HandleListVenues godoc
// @Summary      Venues in creation order
// @Tags         admin
// @Produce      json
// @Success      200      {array}    domain.Venue
// @Failure      500      {object}   response.Err
// @Router       /admin/venues [get]
// @Security BearerAuth
func (h *AdminHandler) HandleListVenues(ctx *gin.Context) {
	venues, err := h.event.Venues(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListVenues -> h.event.Venues -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, venues)
}

// HandleCreateVenue godoc
// @Summary      Add a venue option
// @Tags         admin
// @Produce      json
// @Param        request   body      request.VenueRequest true "request body"
// @Success      201      {object}   domain.Venue
// @Failure      400      {object}   response.Err
// @Failure      409      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/venues [post]
// @Security BearerAuth
func (h *AdminHandler) HandleCreateVenue(ctx *gin.Context) {
	var req request.VenueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	venue, err := h.event.CreateVenue(ctx.Request.Context(), req.Venue())
	if err != nil {
		if errors.Is(err, service.ErrVenueExists) {
			response.RenderErr(ctx, response.ErrConflict(service.ErrVenueExists))
			return
		}
		err = fmt.Errorf("v1.HandleCreateVenue -> h.event.CreateVenue -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusCreated, venue)
}

// HandleUpdateVenue godoc
// @Summary      Edit a venue option
// @Tags         admin
// @Produce      json
// @Param        venueID   path      string  true  "venue ID"
// @Param        request   body      request.VenueRequest true "request body"
// @Success      200      {object}   domain.Venue
// @Failure      400      {object}   response.Err
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/venues/{venueID} [put]
// @Security BearerAuth
func (h *AdminHandler) HandleUpdateVenue(ctx *gin.Context) {
	var req request.VenueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	req.ID = ctx.Param("venueID")
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	venue, err := h.event.UpdateVenue(ctx.Request.Context(), req.Venue())
	if err != nil {
		if errors.Is(err, service.ErrVenueNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("venue", "id", req.ID))
			return
		}
		err = fmt.Errorf("v1.HandleUpdateVenue -> h.event.UpdateVenue -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, venue)
}

// HandleDeleteVenue godoc
// @Summary      Remove a venue option
// @Tags         admin
// @Param        venueID   path      string  true  "venue ID"
// @Success      204
// @Failure      404      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/venues/{venueID} [delete]
// @Security BearerAuth
func (h *AdminHandler) HandleDeleteVenue(ctx *gin.Context) {
	venueID := ctx.Param("venueID")
	if err := h.event.DeleteVenue(ctx.Request.Context(), venueID); err != nil {
		if errors.Is(err, service.ErrVenueNotFound) {
			response.RenderErr(ctx, response.ErrNotFound("venue", "id", venueID))
			return
		}
		err = fmt.Errorf("v1.HandleDeleteVenue -> h.event.DeleteVenue -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}

// HandleListTiers godoc
// @Summary      Ticket tiers with live stock
// @Tags         admin
// @Produce      json
// @Success      200      {array}    domain.TicketTier
// @Failure      500      {object}   response.Err
// @Router       /admin/tiers [get]
// @Security BearerAuth
func (h *AdminHandler) HandleListTiers(ctx *gin.Context) {
	tiers, err := h.event.Tiers(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListTiers -> h.event.Tiers -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, tiers)
}

// HandleScan godoc
// @Summary      Admit a ticket by ID
// @Tags         admin
// @Produce      json
// @Param        request   body      request.ScanRequest true "request body"
// @Success      200      {object}   domain.ScanResult
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/scan [post]
// @Security BearerAuth
func (h *AdminHandler) HandleScan(ctx *gin.Context) {
	var req request.ScanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	result, err := h.scans.Scan(ctx.Request.Context(), req.TicketID)
	if err != nil {
		err = fmt.Errorf("v1.HandleScan -> h.scans.Scan -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleScanImage godoc
// @Summary      Admit a ticket from a photo of its QR code
// @Tags         admin
// @Accept       multipart/form-data
// @Produce      json
// @Param        image     formData  file    true  "PNG or JPEG photo"
// @Success      200      {object}   domain.ScanResult
// @Failure      400      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/scan/image [post]
// @Security BearerAuth
func (h *AdminHandler) HandleScanImage(ctx *gin.Context) {
	header, err := ctx.FormFile("image")
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if header.Size > maxUploadBytes {
		response.RenderErr(ctx, response.ErrBadRequest(fmt.Errorf("image larger than %d bytes", maxUploadBytes)))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	defer file.Close()

	result, err := h.scans.ScanImage(ctx.Request.Context(), file)
	if err != nil {
		if errors.Is(err, service.ErrNoQRCode) {
			response.RenderErr(ctx, response.ErrBadRequest(err))
			return
		}
		err = fmt.Errorf("v1.HandleScanImage -> h.scans.ScanImage -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, result)
}

// HandleListScans godoc
// @Summary      Scan log, newest first
// @Tags         admin
// @Produce      json
// @Success      200      {array}    domain.TicketScan
// @Failure      500      {object}   response.Err
// @Router       /admin/scans [get]
// @Security BearerAuth
func (h *AdminHandler) HandleListScans(ctx *gin.Context) {
	scans, err := h.scans.List(ctx.Request.Context())
	if err != nil {
		err = fmt.Errorf("v1.HandleListScans -> h.scans.List -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.JSON(http.StatusOK, scans)
}

// HandleRequestReset godoc
// @Summary      First step of the factory reset
// @Description  Returns a code valid for two minutes that must be sent to /admin/reset/confirm.
// @Tags         admin
// @Produce      json
// @Success      200      {object}   response.ResetResponse
// @Router       /admin/reset [post]
// @Security BearerAuth
func (h *AdminHandler) HandleRequestReset(ctx *gin.Context) {
	code, expiresAt := h.svc.RequestReset()

	ctx.JSON(http.StatusOK, response.ResetResponse{
		Code:      code,
		ExpiresAt: expiresAt,
	})
}

// HandleConfirmReset godoc
// @Summary      Wipe submissions, tickets and scans
// @Tags         admin
// @Param        request   body      request.ConfirmResetRequest true "request body"
// @Success      204
// @Failure      400      {object}   response.Err
// @Failure      403      {object}   response.Err
// @Failure      500      {object}   response.Err
// @Router       /admin/reset/confirm [post]
// @Security BearerAuth
func (h *AdminHandler) HandleConfirmReset(ctx *gin.Context) {
	var req request.ConfirmResetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		response.RenderErr(ctx, response.ErrBadRequest(err))
		return
	}

	if err := h.svc.ConfirmReset(ctx.Request.Context(), req.Code); err != nil {
		if errors.Is(err, service.ErrInvalidResetCode) {
			response.RenderErr(ctx, response.ErrPermissionDenied(err))
			return
		}
		err = fmt.Errorf("v1.HandleConfirmReset -> h.svc.ConfirmReset -> %w", err)
		response.RenderErr(ctx, response.ErrInternalServerError(err))
		return
	}

	ctx.Status(http.StatusNoContent)
}
