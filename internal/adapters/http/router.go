package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/crewmap/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Use(recover.New())

	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// The browser map and list views are served from another origin.
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		Next: func(c *fiber.Ctx) bool {
			// A map socket is one long-lived request.
			return websocket.IsWebSocketUpgrade(c)
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	auth := AuthMiddleware(deps.Auth)
	with := func(h fiber.Handler) fiber.Handler { return timeout.NewWithContext(h, requestTimeout) }

	v1 := app.Group("/v1")

	v1.Get("/jobs", with(ListJobsHandler(deps)))
	v1.Get("/jobs/:id", with(GetJobHandler(deps)))
	v1.Post("/jobs", auth, with(CreateJobHandler(deps)))
	v1.Put("/jobs/:id", auth, with(UpdateJobHandler(deps)))
	v1.Delete("/jobs/:id", auth, with(DeleteJobHandler(deps)))

	v1.Get("/events", with(ListEventsHandler(deps)))
	v1.Get("/events/:id", with(GetEventHandler(deps)))
	v1.Post("/events", auth, with(CreateEventHandler(deps)))
	v1.Put("/events/:id", auth, with(UpdateEventHandler(deps)))
	v1.Delete("/events/:id", auth, with(DeleteEventHandler(deps)))

	v1.Get("/posts", with(FeedHandler(deps)))
	v1.Post("/posts", auth, with(CreatePostHandler(deps)))
	v1.Delete("/posts/:id", auth, with(DeletePostHandler(deps)))

	v1.Get("/locations/search", with(SearchLocationsHandler(deps)))
	v1.Post("/locations", auth, with(CreateLocationHandler(deps)))

	// Map. Session routes are registered first so "sessions" is never read as a kind.
	v1.Get("/map/sessions/:id", MapSessionHandler(deps))
	v1.Put("/map/sessions/:id/hover", HoverHandler(deps))
	v1.Put("/map/sessions/:id/selection", SelectHandler(deps))
	v1.Delete("/map/sessions/:id/selection", ClearSelectionHandler(deps))
	v1.Get("/map/:kind/features", with(MapFeaturesHandler(deps)))
	v1.Get("/map/:kind/area", with(MapAreaHandler(deps)))

	// GraphQL
	app.Post("/graphql", with(GraphQLHandler(deps)))

	// API documentation (Swagger UI)
	SetupDocs(app)

	// Map WebSocket
	app.Get("/ws/map", MapSocketGuard(deps), websocket.New(MapSocketHandler(deps)))
}
