package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumina-events/invitation-api/internal/api/handler/v1/response"
	"github.com/lumina-events/invitation-api/internal/config"
	"github.com/lumina-events/invitation-api/internal/db"
	"github.com/lumina-events/invitation-api/internal/domain"
	"github.com/lumina-events/invitation-api/internal/notify"
	"github.com/lumina-events/invitation-api/internal/pkg/qr"
	"github.com/lumina-events/invitation-api/internal/repository/dao"
	"github.com/lumina-events/invitation-api/internal/service"
)

const adminPassword = "fiesta2026"

type sessionBody struct {
	Token string `json:"token"`
	service.AdmissionView
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	conf := &config.AppConfig{
		API: &config.APIConfig{
			Port:          "0",
			JWTSigningKey: "test-signing-key",
		},
		Gin:      &config.GinConfig{Mode: gin.TestMode},
		Logger:   &config.LoggerConfig{Level: "error"},
		Database: &config.DatabaseConfig{Driver: db.DriverSQLite},
		Admin:    &config.AdminConfig{Username: "admin", PasswordHash: string(hash)},
		Session:  &config.SessionConfig{TTL: time.Hour},
		Telegram: &config.TelegramConfig{},
	}

	gdb, err := db.OpenSQLite(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	require.NoError(t, dao.InitTables(gdb))
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	s := NewServer(conf, gdb, notify.Nop{})
	require.NoError(t, s.Seed(context.Background()))

	return s
}

func (s *Server) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())

	return v
}

func (s *Server) adminToken(t *testing.T) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/admin/login", "", map[string]string{
		"username": "admin",
		"password": adminPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	return decode[response.LoginResponse](t, rec).Token
}

func (s *Server) guestToken(t *testing.T) string {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/guest/sessions", "", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	body := decode[sessionBody](t, rec)
	require.NotEmpty(t, body.Token)
	assert.Equal(t, domain.StateUnverified, body.Session.State)
	assert.Empty(t, body.Config.GuestPasscode)

	return body.Token
}

// closeVoting forces a winner through the admin API so tiers open immediately.
func (s *Server) closeVoting(t *testing.T, adminToken, winner string) {
	t.Helper()

	rec := s.do(t, http.MethodGet, "/admin/config", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	conf := decode[domain.EventConfig](t, rec)

	conf.WinningVenueID = &winner
	rec = s.do(t, http.MethodPut, "/admin/config", adminToken, conf)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestHealthcheck(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[response.HealthResponse](t, rec).Status)
}

func TestGuestRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/guest/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, response.CodeUnauthorized, decode[response.Err](t, rec).Code)

	rec = s.do(t, http.MethodGet, "/guest/session", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	adminToken := s.adminToken(t)
	rec = s.do(t, http.MethodGet, "/guest/session", adminToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/admin/login", "", map[string]string{"username": "admin", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, response.CodeWrongCredentials, decode[response.Err](t, rec).Code)

	rec = s.do(t, http.MethodPost, "/admin/login", "", map[string]string{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	guestToken := s.guestToken(t)
	rec = s.do(t, http.MethodGet, "/admin/stats", guestToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, response.CodePermissionDenied, decode[response.Err](t, rec).Code)

	rec = s.do(t, http.MethodGet, "/admin/stats", s.adminToken(t), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVerifyAndVote(t *testing.T) {
	s := newTestServer(t)
	token := s.guestToken(t)

	rec := s.do(t, http.MethodPost, "/guest/session/verify", token, map[string]string{"phone": "12"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/guest/session/verify", token, map[string]string{"phone": "900000000"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, response.CodeNotFound, decode[response.Err](t, rec).Code)

	rec = s.do(t, http.MethodPost, "/guest/session/verify", token, map[string]string{"phone": "987654321"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[service.AdmissionView](t, rec)
	assert.Equal(t, domain.StateVoting, view.Session.State)
	assert.Equal(t, "Carlos", view.Session.GuestName)

	rec = s.do(t, http.MethodPost, "/guest/session/vote", token, map[string]string{
		"venue_id":   "lounge",
		"first_name": "Carlos",
		"email":      "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	vote := map[string]string{
		"venue_id":   "lounge",
		"first_name": "Carlos",
		"last_name":  "Ruiz",
		"email":      "carlos@example.com",
	}
	rec = s.do(t, http.MethodPost, "/guest/session/vote", token, vote)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view = decode[service.AdmissionView](t, rec)
	assert.Equal(t, domain.StateAwaitingClose, view.Session.State)
	require.NotNil(t, view.Rsvp)
	assert.Equal(t, "lounge", *view.Rsvp.SelectedVenueID)

	rec = s.do(t, http.MethodPost, "/guest/session/vote", token, vote)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, response.CodeConflict, decode[response.Err](t, rec).Code)

	rec = s.do(t, http.MethodGet, "/admin/stats", s.adminToken(t), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decode[service.Stats](t, rec)
	assert.Equal(t, 1, stats.TotalRsvps)
	assert.Equal(t, 1, stats.GuestsUsed)
}

func TestVerifyRateLimit(t *testing.T) {
	s := newTestServer(t)
	token := s.guestToken(t)

	for i := 0; i < domain.MaxFailedVerifications; i++ {
		rec := s.do(t, http.MethodPost, "/guest/session/verify", token, map[string]string{"phone": "900000000"})
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	rec := s.do(t, http.MethodPost, "/guest/session/verify", token, map[string]string{"phone": "987654321"})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	body := decode[response.Err](t, rec)
	assert.Equal(t, response.CodeRateLimited, body.Code)
	assert.Equal(t, int(domain.VerificationCooldown.Seconds()), body.RetryAfterSeconds)

	retryAfter, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Equal(t, body.RetryAfterSeconds, retryAfter)
}

func TestVerifyRateLimit_EmptyPhone(t *testing.T) {
	s := newTestServer(t)
	token := s.guestToken(t)

	rec := s.do(t, http.MethodPost, "/guest/session/verify", token, map[string]string{"phone": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	for i := 0; i < domain.MaxFailedVerifications; i++ {
		rec = s.do(t, http.MethodPost, "/guest/session/verify", token, map[string]string{"phone": "900000000"})
		require.Equal(t, http.StatusNotFound, rec.Code)
	}

	rec = s.do(t, http.MethodPost, "/guest/session/verify", token, map[string]string{"phone": ""})
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, response.CodeRateLimited, decode[response.Err](t, rec).Code)
}

func TestTicketFlowAndScan(t *testing.T) {
	s := newTestServer(t)
	adminToken := s.adminToken(t)
	s.closeVoting(t, adminToken, "club")

	token := s.guestToken(t)
	rec := s.do(t, http.MethodPost, "/guest/session/verify", token, map[string]string{"phone": "912345678"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view := decode[service.AdmissionView](t, rec)
	assert.Equal(t, domain.StateTierSelecting, view.Session.State)
	require.NotNil(t, view.ConfirmedVenue)
	assert.Equal(t, "club", view.ConfirmedVenue.ID)

	rec = s.do(t, http.MethodPost, "/guest/session/tickets", token, map[string]any{"guest_count": 1})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, response.CodeInvalidTransition, decode[response.Err](t, rec).Code)

	rec = s.do(t, http.MethodPost, "/guest/session/tier", token, map[string]string{"tier_id": domain.TierEmerald})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view = decode[service.AdmissionView](t, rec)
	require.NotNil(t, view.Session.Challenge)
	challenge := view.Session.Challenge

	rec = s.do(t, http.MethodPost, "/guest/session/game/complete", token, map[string]any{
		"challenge_id": challenge.ID,
		"hits":         challenge.Targets - 1,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/guest/session/game/complete", token, map[string]any{
		"challenge_id": challenge.ID,
		"hits":         challenge.Targets,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	view = decode[service.AdmissionView](t, rec)
	require.NotEmpty(t, view.ClaimToken)

	rec = s.do(t, http.MethodPost, "/guest/session/claim", token, map[string]string{"claim_token": "forged"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/guest/session/claim", token, map[string]string{"claim_token": view.ClaimToken})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.StateIssuing, decode[service.AdmissionView](t, rec).Session.State)

	rec = s.do(t, http.MethodPost, "/guest/session/tickets", token, map[string]any{
		"guest_count": 1,
		"first_name":  "María",
		"last_name":   "Torres",
		"email":       "maria@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view = decode[service.AdmissionView](t, rec)
	assert.Equal(t, domain.StateIssued, view.Session.State)
	require.NotNil(t, view.Rsvp)
	require.Len(t, view.Rsvp.TicketIDs, 2)
	ticket := view.Rsvp.TicketIDs[0]

	qrReq := httptest.NewRequest(http.MethodGet, "/api/v1/tickets/"+ticket+"/qr.png", nil)
	qrRec := httptest.NewRecorder()
	s.Router.ServeHTTP(qrRec, qrReq)
	require.Equal(t, http.StatusOK, qrRec.Code)
	assert.Equal(t, "image/png", qrRec.Header().Get("Content-Type"))
	decoded, err := qr.Decode(bytes.NewReader(qrRec.Body.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, ticket, decoded)

	rec = s.do(t, http.MethodGet, "/tickets/garbage/qr.png", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/admin/scan", adminToken, map[string]string{"ticket_id": ticket})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ScanAdmitted, decode[domain.ScanResult](t, rec).Status)

	rec = s.do(t, http.MethodPost, "/admin/scan", adminToken, map[string]string{"ticket_id": ticket})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ScanAlreadyUsed, decode[domain.ScanResult](t, rec).Status)

	rec = s.do(t, http.MethodPost, "/admin/scan", adminToken, map[string]string{"ticket_id": "LUM-NOPE-0000000000-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ScanNotFound, decode[domain.ScanResult](t, rec).Status)

	png, err := qr.Encode(view.Rsvp.TicketIDs[1], 300)
	require.NoError(t, err)
	rec = s.scanImage(t, adminToken, png)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, domain.ScanAdmitted, decode[domain.ScanResult](t, rec).Status)

	rec = s.do(t, http.MethodGet, "/admin/scans", adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.TicketScan](t, rec), 2)
}

func (s *Server) scanImage(t *testing.T, token string, image []byte) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", "ticket.png")
	require.NoError(t, err)
	_, err = part.Write(image)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/scan/image", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	return rec
}

func TestAdminGuestsAndVenues(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	rec := s.do(t, http.MethodPost, "/admin/guests", token, map[string]string{"name": "Lucía", "phone": "944-555-666"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	guest := decode[domain.Guest](t, rec)
	assert.Equal(t, "944555666", guest.Phone)

	rec = s.do(t, http.MethodPost, "/admin/guests", token, map[string]string{"name": "Other", "phone": "944555666"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/guests", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]domain.Guest](t, rec), len(domain.DefaultGuests())+1)

	rec = s.do(t, http.MethodPost, "/admin/guests/"+guest.ID+"/reset", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, "/admin/guests/"+guest.ID, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = s.do(t, http.MethodDelete, "/admin/guests/"+guest.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/admin/venues", token, map[string]any{
		"id":    "rooftop",
		"name":  "Rooftop",
		"perks": []string{"Open bar"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/admin/venues", token, map[string]any{"id": "rooftop", "name": "Again"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodPut, "/admin/venues/rooftop", token, map[string]any{"name": "Sky Rooftop"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Sky Rooftop", decode[domain.Venue](t, rec).Name)

	rec = s.do(t, http.MethodPut, "/admin/venues/missing", token, map[string]any{"name": "Ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/venues", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	venues := decode[[]domain.Venue](t, rec)
	assert.Equal(t, "rooftop", venues[len(venues)-1].ID)

	rec = s.do(t, http.MethodDelete, "/admin/venues/rooftop", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAdminConfigAndReset(t *testing.T) {
	s := newTestServer(t)
	token := s.adminToken(t)

	rec := s.do(t, http.MethodGet, "/admin/config", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	conf := decode[domain.EventConfig](t, rec)

	conf.MaxCapacity = 0
	rec = s.do(t, http.MethodPut, "/admin/config", token, conf)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	unknown := "atlantis"
	conf.MaxCapacity = 20
	conf.WinningVenueID = &unknown
	rec = s.do(t, http.MethodPut, "/admin/config", token, conf)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	conf.WinningVenueID = nil
	rec = s.do(t, http.MethodPut, "/admin/config", token, conf)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/admin/tiers", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	stocks := map[string]int{}
	for _, tier := range decode[[]domain.TicketTier](t, rec) {
		stocks[tier.ID] = tier.Stock
	}
	assert.Equal(t, domain.StockPlan(20), stocks)

	rec = s.do(t, http.MethodPost, "/admin/reset/confirm", token, map[string]string{"code": "ABCDEF12"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, http.MethodPost, "/admin/reset", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	reset := decode[response.ResetResponse](t, rec)
	assert.Len(t, reset.Code, 8)

	rec = s.do(t, http.MethodPost, "/admin/reset/confirm", token, map[string]string{"code": reset.Code})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/rsvps", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]domain.Rsvp](t, rec))
}
