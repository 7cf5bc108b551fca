package routes

import (
	"erfworld/auth"
	"erfworld/events"
	"erfworld/instagram"
	"erfworld/middleware"
	"erfworld/qr"
	"erfworld/ratelim"

	"github.com/julienschmidt/httprouter"
)

func AddInstagramRoutes(router *httprouter.Router, h *instagram.Handler, authmw *middleware.Auth) {
	router.GET("/api/instagram/webhook", h.Verify)
	router.POST("/api/instagram/webhook", h.Receive)
	router.POST("/api/instagram/import/:mediaid", authmw.Authenticate(h.Import))
}

func AddEventsRoutes(router *httprouter.Router, h *events.Handler, authmw *middleware.Auth, rl *ratelim.RateLimiter) {
	router.GET("/api/events/events", rl.Limit(h.GetEvents))
	router.GET("/api/events/event/:slug", rl.Limit(h.GetEvent))
	router.DELETE("/api/events/event/:slug", authmw.Authenticate(authmw.RequireRole("admin", h.DeleteEvent)))
}

func AddQRRoutes(router *httprouter.Router, h *qr.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/qr/token", rl.Limit(h.GenerateToken))
	router.POST("/api/qr/verify", rl.Limit(h.VerifyToken))
	router.GET("/api/qr/image", rl.Limit(h.QRImage))
	router.POST("/api/qr/card", rl.Limit(h.MembershipCard))
}

func AddAuthRoutes(router *httprouter.Router, h *auth.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/login", rl.Limit(h.Login))
}
