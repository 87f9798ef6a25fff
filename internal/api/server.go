package api

import (
	"context"
	"fmt"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/lumina-events/invitation-api/docs"
	v1 "github.com/lumina-events/invitation-api/internal/api/handler/v1"
	"github.com/lumina-events/invitation-api/internal/api/middleware"
	"github.com/lumina-events/invitation-api/internal/config"
	"github.com/lumina-events/invitation-api/internal/pkg/jwthelper"
	"github.com/lumina-events/invitation-api/internal/realtime"
	"github.com/lumina-events/invitation-api/internal/repository"
	"github.com/lumina-events/invitation-api/internal/repository/dao"
	"github.com/lumina-events/invitation-api/internal/service"
	"github.com/lumina-events/invitation-api/internal/session"
)

type Server struct {
	Config *config.AppConfig
	Router *gin.Engine

	// Hub and Sessions own background loops the caller must run.
	Hub      *realtime.Hub
	Sessions *session.Store

	event  *service.ConfigService
	guests *service.GuestService
}

type repositories struct {
	events *repository.EventRepository
	guests *repository.GuestRepository
	rsvps  *repository.RsvpRepository
	scans  *repository.ScanRepository
}

func NewServer(conf *config.AppConfig, db *gorm.DB, notifier service.Notifier) *Server {
	gin.SetMode(conf.Gin.Mode)
	engine := gin.New()

	s := &Server{
		Config:   conf,
		Router:   engine,
		Hub:      realtime.NewHub(conf.API.AllowedCORSDomains),
		Sessions: session.NewStore(conf.Session.TTL),
	}

	s.MountMiddlewares()

	repos := initRepositories(db)
	s.event = service.NewConfigService(repos.events, repos.rsvps, s.Hub)
	s.guests = service.NewGuestService(repos.guests)

	guestHandler := s.initGuestHandler(repos, notifier)
	adminHandler := s.initAdminHandler(repos, notifier)
	feedHandler := v1.NewFeedHandler(s.Hub)
	s.MountHandlers(guestHandler, adminHandler, feedHandler)

	return s
}

func initRepositories(db *gorm.DB) repositories {
	return repositories{
		events: repository.NewEventRepository(dao.NewConfigDAO(db), dao.NewVenueDAO(db), dao.NewTierDAO(db), dao.NewResetDAO(db)),
		guests: repository.NewGuestRepository(dao.NewGuestDAO(db)),
		rsvps:  repository.NewRsvpRepository(dao.NewRsvpDAO(db)),
		scans:  repository.NewScanRepository(dao.NewScanDAO(db)),
	}
}

func (s *Server) initGuestHandler(repos repositories, notifier service.Notifier) *v1.GuestHandler {
	svc := service.NewAdmissionService(s.Sessions, repos.guests, repos.rsvps, s.event, notifier)
	handler := v1.NewGuestHandler(s.Config.API, s.Config.Session.TTL, svc)

	return handler
}

func (s *Server) initAdminHandler(repos repositories, notifier service.Notifier) *v1.AdminHandler {
	creds := service.AdminCredentials{
		Username:     s.Config.Admin.Username,
		PasswordHash: s.Config.Admin.PasswordHash,
	}
	adminSvc := service.NewAdminService(creds, repos.events, s.event, repos.guests, repos.rsvps, repos.scans, s.Sessions)
	scanSvc := service.NewScanService(repos.scans, repos.rsvps, s.event, notifier)
	handler := v1.NewAdminHandler(s.Config.API, adminSvc, s.guests, s.event, scanSvc)

	return handler
}

// Seed fills empty tables with the default event, venues, tiers and guest list.
func (s *Server) Seed(ctx context.Context) error {
	if err := s.event.Seed(ctx); err != nil {
		return fmt.Errorf("s.event.Seed -> %w", err)
	}
	if err := s.guests.Seed(ctx); err != nil {
		return fmt.Errorf("s.guests.Seed -> %w", err)
	}

	return nil
}

func (s *Server) MountMiddlewares() {
	s.Router.Use(gin.Recovery())
	s.Router.Use(requestid.New())
	s.Router.Use(middleware.Logger())
	s.Router.Use(middleware.ConfigCORS(s.Config.API.AllowedCORSDomains))
}

func (s *Server) MountHandlers(guestHandler *v1.GuestHandler, adminHandler *v1.AdminHandler, feedHandler *v1.FeedHandler) {
	const basePath = "/api/v1"
	auth := middleware.NewAuthenticator(s.Config.API.JWTSigningKey)

	public := s.Router.Group(basePath)
	{
		public.POST("/guest/sessions", guestHandler.HandleStartSession)
		public.POST("/admin/login", adminHandler.HandleLogin)
		public.GET("/tickets/:ticketID/qr.png", v1.HandleTicketQR)
		public.GET("/feed", feedHandler.HandleFeed)
		public.GET("/health", v1.HandleHealthcheck)
	}

	guest := s.Router.Group(basePath+"/guest/session", auth.VerifyJWT(), middleware.RequireRole(jwthelper.RoleGuest))
	{
		guest.GET("", guestHandler.HandleGetSession)
		guest.POST("/verify", guestHandler.HandleVerify)
		guest.POST("/vote", guestHandler.HandleVote)
		guest.POST("/tier", guestHandler.HandleSelectTier)
		guest.POST("/game/abandon", guestHandler.HandleAbandonGame)
		guest.POST("/game/complete", guestHandler.HandleCompleteGame)
		guest.POST("/claim", guestHandler.HandleClaim)
		guest.POST("/tickets", guestHandler.HandleIssue)
	}

	admin := s.Router.Group(basePath+"/admin", auth.VerifyJWT(), middleware.RequireRole(jwthelper.RoleAdmin))
	{
		admin.GET("/stats", adminHandler.HandleStats)
		admin.GET("/rsvps", adminHandler.HandleListRsvps)

		admin.GET("/guests", adminHandler.HandleListGuests)
		admin.POST("/guests", adminHandler.HandleCreateGuest)
		admin.DELETE("/guests/:guestID", adminHandler.HandleDeleteGuest)
		admin.POST("/guests/:guestID/reset", adminHandler.HandleResetGuest)

		admin.GET("/config", adminHandler.HandleGetConfig)
		admin.PUT("/config", adminHandler.HandleUpdateConfig)

		admin.GET("/venues", adminHandler.HandleListVenues)
		admin.POST("/venues", adminHandler.HandleCreateVenue)
		admin.PUT("/venues/:venueID", adminHandler.HandleUpdateVenue)
		admin.DELETE("/venues/:venueID", adminHandler.HandleDeleteVenue)

		admin.GET("/tiers", adminHandler.HandleListTiers)

		admin.POST("/scan", adminHandler.HandleScan)
		admin.POST("/scan/image", adminHandler.HandleScanImage)
		admin.GET("/scans", adminHandler.HandleListScans)

		admin.POST("/reset", adminHandler.HandleRequestReset)
		admin.POST("/reset/confirm", adminHandler.HandleConfirmReset)
	}

	s.Router.GET("/", v1.HandleHealthcheck)

	// Setup Swagger UI.
	docs.SwaggerInfo.Host = s.Config.API.BaseURL
	docs.SwaggerInfo.BasePath = basePath
	s.Router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))
}
