package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/core/mapsync"
)

type featureRef struct {
	FeatureID string `json:"feature_id"`
}

func pathKind(c *fiber.Ctx) (domain.FeatureKind, bool) {
	return domain.ParseFeatureKind(c.Params("kind"))
}

// MapFeaturesHandler returns every placeable job or event as GeoJSON.
func MapFeaturesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, ok := pathKind(c)
		if !ok {
			return errNotFound(c, "unknown feature kind")
		}
		fc, err := deps.Listing.Features(c.UserContext(), kind)
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(mapsync.ToGeoJSON(fc), "application/geo+json")
	}
}

// MapAreaHandler answers "N items in map area" for the box given by
// ne_lat, ne_lon, sw_lat and sw_lon.
func MapAreaHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		kind, ok := pathKind(c)
		if !ok {
			return errNotFound(c, "unknown feature kind")
		}

		var coords [4]float64
		for i, name := range []string{"ne_lat", "ne_lon", "sw_lat", "sw_lon"} {
			v, err := strconv.ParseFloat(c.Query(name), 64)
			if err != nil {
				return errBadRequest(c, name+" is required and must be a number")
			}
			coords[i] = v
		}
		box := domain.BoundingBox{
			NorthEast: domain.GeoPoint{Lat: coords[0], Lon: coords[1]},
			SouthWest: domain.GeoPoint{Lat: coords[2], Lon: coords[3]},
		}
		if !box.Valid() {
			return errBadRequest(c, "bounding box is out of range or inverted")
		}

		res, err := deps.Listing.InArea(c.UserContext(), kind, box)
		if err != nil {
			return handleError(c, err)
		}
		if res.Features == nil {
			res.Features = domain.FeatureCollection{}
		}
		return c.JSON(res)
	}
}

// MapSessionHandler returns the current view of an open map session.
func MapSessionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Sessions.View(c.Params("id"))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(view)
	}
}

// HoverHandler sets or clears the hovered feature from a list view.
func HoverHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var ref featureRef
		if err := c.BodyParser(&ref); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		view, err := deps.Sessions.Dispatch(c.UserContext(), c.Params("id"), mapsync.Hovered{FeatureID: ref.FeatureID})
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(view)
	}
}

// SelectHandler selects a feature from a list view; the map flies to it.
func SelectHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var ref featureRef
		if err := c.BodyParser(&ref); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if ref.FeatureID == "" {
			return errBadRequest(c, "feature_id is required")
		}
		view, err := deps.Sessions.Dispatch(c.UserContext(), c.Params("id"), mapsync.Selected{FeatureID: ref.FeatureID})
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(view)
	}
}

// ClearSelectionHandler drops the session's selection.
func ClearSelectionHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		view, err := deps.Sessions.Dispatch(c.UserContext(), c.Params("id"), mapsync.Selected{})
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(view)
	}
}
