package http

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/crewmap/internal/core/domain"
)

// includes parses ?include=location,... into relation names.
func includes(c *fiber.Ctx) []string {
	raw := c.Query("include")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ---- Jobs ----

// ListJobsHandler returns a page of jobs.
func ListJobsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c, 50, 200)
		jobs, err := deps.Jobs.List(c.UserContext(), domain.JobFilter{
			Category: c.Query("category"),
			PostedBy: c.Query("posted_by"),
			Include:  includes(c),
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			return handleError(c, err)
		}
		return respondPage(c, jobs, offset, limit)
	}
}

// GetJobHandler returns a job with its location.
func GetJobHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		job, err := deps.Jobs.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(job)
	}
}

// CreateJobHandler posts a new job as the authenticated user.
func CreateJobHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var job domain.Job
		if err := c.BodyParser(&job); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Jobs.Create(c.UserContext(), actor(c), &job); err != nil {
			return handleError(c, err)
		}
		c.Location("/v1/jobs/" + job.ID)
		return c.Status(fiber.StatusCreated).JSON(job)
	}
}

// UpdateJobHandler replaces a job owned by the authenticated user.
func UpdateJobHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var job domain.Job
		if err := c.BodyParser(&job); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		job.ID = c.Params("id")
		if err := deps.Jobs.Update(c.UserContext(), actor(c), &job); err != nil {
			return handleError(c, err)
		}
		return c.JSON(job)
	}
}

// DeleteJobHandler removes a job owned by the authenticated user.
func DeleteJobHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Jobs.Delete(c.UserContext(), actor(c), c.Params("id")); err != nil {
			return handleError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ---- Events ----

// ListEventsHandler returns a page of events, optionally only those still
// running after ?after=<RFC 3339>.
func ListEventsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c, 50, 200)
		filter := domain.EventFilter{
			Category: c.Query("category"),
			HostID:   c.Query("host_id"),
			Include:  includes(c),
			Limit:    limit,
			Offset:   offset,
		}
		if raw := c.Query("after"); raw != "" {
			after, err := time.Parse(time.RFC3339, raw)
			if err != nil {
				return errBadRequest(c, "after must be an RFC 3339 timestamp")
			}
			filter.After = &after
		}

		events, err := deps.Events.List(c.UserContext(), filter)
		if err != nil {
			return handleError(c, err)
		}
		return respondPage(c, events, offset, limit)
	}
}

// GetEventHandler returns an event with its location.
func GetEventHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		event, err := deps.Events.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return handleError(c, err)
		}
		return c.JSON(event)
	}
}

// CreateEventHandler hosts a new event as the authenticated user.
func CreateEventHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var event domain.Event
		if err := c.BodyParser(&event); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Events.Create(c.UserContext(), actor(c), &event); err != nil {
			return handleError(c, err)
		}
		c.Location("/v1/events/" + event.ID)
		return c.Status(fiber.StatusCreated).JSON(event)
	}
}

// UpdateEventHandler replaces an event hosted by the authenticated user.
func UpdateEventHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var event domain.Event
		if err := c.BodyParser(&event); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		event.ID = c.Params("id")
		if err := deps.Events.Update(c.UserContext(), actor(c), &event); err != nil {
			return handleError(c, err)
		}
		return c.JSON(event)
	}
}

// DeleteEventHandler removes an event hosted by the authenticated user.
func DeleteEventHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Events.Delete(c.UserContext(), actor(c), c.Params("id")); err != nil {
			return handleError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ---- Posts ----

// FeedHandler returns the newest posts.
func FeedHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset, limit := pageParams(c, 20, 100)
		posts, err := deps.Posts.Feed(c.UserContext(), limit, offset)
		if err != nil {
			return handleError(c, err)
		}
		return respondPage(c, posts, offset, limit)
	}
}

// CreatePostHandler publishes a post as the authenticated user.
func CreatePostHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var post domain.Post
		if err := c.BodyParser(&post); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		if err := deps.Posts.Create(c.UserContext(), actor(c), &post); err != nil {
			return handleError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(post)
	}
}

// DeletePostHandler removes a post written by the authenticated user.
func DeletePostHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Posts.Delete(c.UserContext(), actor(c), c.Params("id")); err != nil {
			return handleError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ---- Locations ----

// SearchLocationsHandler finds locations by fuzzy name match.
func SearchLocationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		q := strings.TrimSpace(c.Query("q"))
		if q == "" {
			return errBadRequest(c, "q parameter is required")
		}
		limit := c.QueryInt("limit", 20)
		if limit <= 0 || limit > 100 {
			limit = 20
		}

		locs, err := deps.Locations.Search(c.UserContext(), q, limit)
		if err != nil {
			return handleError(c, err)
		}
		if locs == nil {
			locs = []domain.Location{}
		}
		return c.JSON(locs)
	}
}

// CreateLocationHandler stores a location jobs and events can point at.
func CreateLocationHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var loc domain.Location
		if err := c.BodyParser(&loc); err != nil {
			return errBadRequest(c, "invalid request body")
		}
		loc.ID = ""
		if err := deps.Locations.Save(c.UserContext(), &loc); err != nil {
			return handleError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(loc)
	}
}
