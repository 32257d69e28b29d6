package server

import (
	"log/slog"
	"net/http"

	"ferretcontrol/internal/auth"
	"ferretcontrol/internal/config"
	"ferretcontrol/internal/database"
	"ferretcontrol/internal/handlers"
	"ferretcontrol/internal/middleware"
	"ferretcontrol/internal/security"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Deps are the long-lived collaborators built by the binary.
type Deps struct {
	DB      *gorm.DB
	Tokens  *auth.Manager
	Lockout security.Lockout
	Mailer  security.Mailer
	Logger  *slog.Logger
}

func NewRouter(cfg *config.Config, d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Metrics())

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: int(cfg.RefreshTTL.Seconds()), HttpOnly: true, SameSite: http.SameSiteLaxMode})
	r.Use(sessions.Sessions("ferret_session", store))

	// audit wraps auth so rejected requests are recorded too
	r.Use(middleware.Audit(database.NewAuditRepository(d.DB)))

	users := database.NewUserRepository(d.DB)
	guard := security.NewGuard(database.NewSessionRepository(d.DB))
	resets := security.NewPasswordResets(database.NewResetRepository(d.DB), d.Mailer)

	authH := handlers.NewAuthHandler(users, d.Tokens, guard, d.Lockout)
	resetH := handlers.NewPasswordResetHandler(resets)
	assetH := handlers.NewAssetHandler(d.DB)
	riskH := handlers.NewRiskHandler(d.DB)
	controlH := handlers.NewControlHandler(d.DB)
	linkH := handlers.NewRiskControlHandler(d.DB)
	auditH := handlers.NewAuditHandler(d.DB)
	userH := handlers.NewUserHandler(d.DB)
	notifH := handlers.NewNotificationHandler(database.NewNotificationRepository(d.DB))
	forumH := handlers.NewForumHandler(d.DB)
	settingH := handlers.NewSettingHandler(d.DB)
	statsH := handlers.NewStatsHandler(d.DB)

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// AUTH
	api.POST("/auth/token", authH.Token)
	api.POST("/auth/refresh", authH.Refresh)
	api.POST("/auth/password_reset/request", resetH.Request)
	api.POST("/auth/password_reset/confirm", resetH.Confirm)

	authed := api.Group("")
	authed.Use(middleware.RequireAuth(d.Tokens, users))
	staff := middleware.RequireStaff()

	authed.POST("/auth/logout", authH.Logout)

	// ACCOUNTS
	authed.GET("/users", userH.List)
	authed.POST("/users", staff, userH.Create)
	authed.GET("/users/:id", userH.Get)
	authed.PUT("/users/:id", userH.Update)
	authed.PATCH("/users/:id", userH.Update)
	authed.GET("/access-control/stats", statsH.AccessControl)

	// ASSETS
	authed.GET("/assets", assetH.List)
	authed.POST("/assets", assetH.Create)
	authed.GET("/assets/:id", assetH.Get)
	authed.PUT("/assets/:id", assetH.Update)
	authed.PATCH("/assets/:id", assetH.Update)
	authed.GET("/assets/:id/download_authorship", assetH.DownloadAuthorship)

	// RISKS
	authed.GET("/risks", riskH.List)
	authed.POST("/risks", riskH.Create)
	authed.GET("/risks/:id", riskH.Get)
	authed.PUT("/risks/:id", riskH.Update)
	authed.PATCH("/risks/:id", riskH.Update)

	// CONTROLS
	authed.GET("/controls", controlH.List)
	authed.POST("/controls", controlH.Create)
	authed.GET("/controls/:id", controlH.Get)
	authed.PUT("/controls/:id", controlH.Update)
	authed.PATCH("/controls/:id", controlH.Update)
	authed.DELETE("/controls/:id", controlH.Delete)

	authed.GET("/risk-controls", linkH.List)
	authed.POST("/risk-controls", linkH.Create)
	authed.GET("/risk-controls/:id", linkH.Get)
	authed.PUT("/risk-controls/:id", linkH.Update)
	authed.PATCH("/risk-controls/:id", linkH.Update)
	authed.DELETE("/risk-controls/:id", linkH.Delete)

	// AUDIT (staff only)
	authed.GET("/audit", staff, auditH.List)
	authed.GET("/audit/:id", staff, auditH.Get)

	// NOTIFICATIONS
	authed.GET("/notifications", notifH.List)
	authed.GET("/notifications/unread_count", notifH.UnreadCount)
	authed.POST("/notifications/mark_all_read", notifH.MarkAllRead)
	authed.GET("/notifications/:id", notifH.Get)
	authed.POST("/notifications/:id/mark_read", notifH.MarkRead)

	// FORUM
	authed.GET("/forum", forumH.List)
	authed.POST("/forum", forumH.Create)
	authed.GET("/forum/:id", forumH.Get)
	authed.DELETE("/forum/:id", forumH.Delete)

	// SETTINGS (staff only)
	settings := authed.Group("/settings", staff)
	settings.GET("", settingH.List)
	settings.POST("", settingH.Create)
	settings.GET("/:id", settingH.Get)
	settings.PUT("/:id", settingH.Update)
	settings.PATCH("/:id", settingH.Update)
	settings.DELETE("/:id", settingH.Delete)

	return r
}
