package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"ink2deck/internal/bootstrap"
	"ink2deck/internal/transport/http/handler"
	"ink2deck/internal/transport/http/middleware"
	"ink2deck/web"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(middleware.RequestLogger(app.Log), gin.Recovery())
	router.SetHTMLTemplate(web.Templates())
	router.StaticFS("/static", web.Static())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	webHandler := handler.NewWebHandler(app.Auth, app.Converter, app.Sessions, app.Artifacts, app.Log)
	sessionTTL := time.Duration(app.Config.Session.TTLMinutes) * time.Minute

	pages := router.Group("/")
	pages.Use(middleware.Session(app.Sessions, app.Config.Session.CookieName, sessionTTL, app.Log))
	pages.GET("/", webHandler.Index)
	pages.POST("/start", webHandler.Start)
	pages.POST("/back", webHandler.Back)
	pages.POST("/logout", webHandler.Logout)
	pages.POST("/login", webHandler.Login)
	pages.POST("/signup", webHandler.Signup)
	pages.POST("/upload", webHandler.Upload)
	pages.GET("/download/deck", webHandler.DownloadDeck)
	pages.GET("/download/document", webHandler.DownloadDocument)
	pages.GET("/download/image", webHandler.Preview)

	authHandler := handler.NewAuthHandler(app.Auth)
	extractHandler := handler.NewExtractHandler(app.Converter)
	historyHandler := handler.NewHistoryHandler(app.History)
	requireJWT := middleware.AuthJWT(app.Config.Auth.JWTSecret)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", requireJWT, authHandler.Me)

	v1.POST("/extract", requireJWT, extractHandler.Extract)
	v1.GET("/conversions", requireJWT, historyHandler.List)

	return router
}
