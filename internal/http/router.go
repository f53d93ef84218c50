// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/easonlin404/limit"
	"github.com/gin-gonic/gin"

	"ridepass/internal/http/handlers"
	"ridepass/internal/http/middleware"
	"ridepass/internal/infra"
)

// Deps carries the handlers and cross-cutting settings the router needs.
type Deps struct {
	Verifier    infra.TokenVerifier
	CORSOrigins []string
	MaxInflight int

	Tickets   *handlers.TicketHandler
	Schedules *handlers.ScheduleHandler
	Locations *handlers.LocationHandler
	Children  *handlers.ChildHandler
	Assistant *handlers.AssistantHandler
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logging(), middleware.Recovery())
	if len(d.CORSOrigins) > 0 {
		r.Use(middleware.CORS(d.CORSOrigins))
	}
	if d.MaxInflight > 0 {
		r.Use(limit.Limit(d.MaxInflight))
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	// Prices are public so the landing page can show them before sign-in.
	r.GET("/api/tickets/catalog", d.Tickets.Catalog)
	r.POST("/api/tickets/quote", d.Tickets.Quote)

	api := r.Group("/api", middleware.Auth(d.Verifier))

	tickets := api.Group("/tickets")
	tickets.POST("/checkout", d.Tickets.Checkout)
	tickets.GET("/balance", d.Tickets.Balance)
	tickets.GET("/purchases", d.Tickets.List)
	tickets.GET("/purchases/:order_id", d.Tickets.Get)
	tickets.POST("/purchases/:order_id/confirm", d.Tickets.Confirm)
	tickets.GET("/purchases/:order_id/receipt", d.Tickets.Receipt)

	schedules := api.Group("/schedules")
	schedules.GET("/time-options", d.Schedules.TimeOptions)
	schedules.POST("/validate-window", d.Schedules.ValidateWindow)
	schedules.POST("/derive-dropoff", d.Schedules.DeriveDropoff)
	schedules.GET("/draft", d.Schedules.LoadDraft)
	schedules.PUT("/draft", d.Schedules.SaveDraft)
	schedules.DELETE("/draft", d.Schedules.ClearDraft)
	schedules.POST("", d.Schedules.Create)
	schedules.GET("", d.Schedules.List)
	schedules.GET("/:id", d.Schedules.Get)
	schedules.POST("/:id/cancel", d.Schedules.Cancel)

	locations := api.Group("/locations")
	locations.GET("/search", d.Locations.Search)
	locations.POST("/estimate", d.Locations.Estimate)
	locations.GET("", d.Locations.List)
	locations.POST("", d.Locations.Create)
	locations.PATCH("/:id", d.Locations.Update)
	locations.DELETE("/:id", d.Locations.Delete)

	children := api.Group("/children")
	children.GET("", d.Children.List)
	children.POST("", d.Children.Create)
	children.PATCH("/:id", d.Children.Update)
	children.DELETE("/:id", d.Children.Delete)

	if d.Assistant != nil {
		api.POST("/assistant/parse", d.Assistant.Parse)
		api.GET("/assistant/usage", d.Assistant.Usage)
	}
	return r
}
