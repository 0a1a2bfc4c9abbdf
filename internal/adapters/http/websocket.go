package http

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/crewmap/internal/adapters/mapws"
	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/pkg/metrics"
)

const kindKey = "map_kind"

// MapSocketGuard rejects map socket requests that cannot be served: the map
// is not configured, the request is not an upgrade, or ?kind= is unknown.
func MapSocketGuard(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !deps.Map.Available() {
			slog.Warn("map socket requested but map is not configured", "enabled", deps.Map.Enabled)
			return errUnavailable(c, "interactive map is not configured")
		}
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		kind, ok := domain.ParseFeatureKind(c.Query("kind", string(domain.FeatureKindJob)))
		if !ok {
			return errBadRequest(c, "kind must be job or event")
		}
		c.Locals(kindKey, kind)
		return c.Next()
	}
}

// MapSocketHandler binds one browser map to a new map session. The first
// message sent is the session hello carrying the session id and style URL;
// the session lives until the socket closes or stops answering pings.
func MapSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		defer conn.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		kind, _ := conn.Locals(kindKey).(domain.FeatureKind)
		remote := conn.RemoteAddr().String()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		mapc := mapws.New(conn)
		defer func() {
			if err := mapc.Close(); err != nil {
				slog.Debug("map socket writer stopped", "remote", remote, "error", err)
			}
		}()

		sess, err := deps.Sessions.Open(ctx, kind, mapc)
		if err != nil {
			slog.Error("open map session failed", "remote", remote, "kind", kind, "error", err)
			_ = mapc.Fail("could not load map features")
			return
		}
		defer func() { _ = deps.Sessions.Close(sess.ID()) }()

		if err := mapc.Hello(sess.ID(), deps.Map.StyleURL); err != nil {
			slog.Warn("map socket hello failed", "map_session", sess.ID(), "error", err)
			return
		}
		if err := mapc.Serve(ctx, sess); err != nil {
			slog.Debug("map socket closed", "map_session", sess.ID(), "remote", remote, "error", err)
		}
	}
}
