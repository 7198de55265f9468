package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tradeline-server/internal/auth"
	"tradeline-server/internal/static"
	voiceHandler "tradeline-server/internal/voice/handler"
)

type API struct {
	router       *gin.RouterGroup
	voiceHandler voiceHandler.Handler
	guard        auth.Guard
	site         static.Server
}

func New(router *gin.RouterGroup, voiceHandler voiceHandler.Handler, guard auth.Guard, site static.Server) API {
	return API{
		router:       router,
		voiceHandler: voiceHandler,
		guard:        guard,
		site:         site,
	}
}

func (a *API) RegisterRoutes() {
	a.Health()
	a.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	voiceGroup := a.router.Group("/voice")
	{
		// Call-control endpoints carry provider signatures; status callbacks
		// are answered without a body so they skip validation.
		signed := voiceGroup.Group("", a.voiceHandler.ValidateSignature())
		signed.POST("/answer", a.voiceHandler.HandleInboundCall)
		signed.POST("/inbound", a.voiceHandler.HandleInboundCall)

		voiceGroup.POST("/after-dial", a.voiceHandler.HandleDialOutcome)
		voiceGroup.POST("/recording-status", a.voiceHandler.HandleRecordingStatus)
		voiceGroup.POST("/recording", a.voiceHandler.HandleRecordingStatus)
	}

	diagGroup := a.router.Group("/twilioz", a.guard.Middleware)
	{
		diagGroup.GET("", a.voiceHandler.HandleDiagnostics)
		diagGroup.GET("/stream", a.voiceHandler.HandleDiagnosticsStream)
	}
}

func (a *API) Health() {
	a.router.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	a.router.GET("/readyz", func(c *gin.Context) {
		if !a.site.Ready() {
			c.String(http.StatusServiceUnavailable, "not-ready")
			return
		}
		c.String(http.StatusOK, "ready")
	})
}
