package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// PaginatedResponse wraps list results with pagination metadata.
type PaginatedResponse struct {
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// Pagination contains offset-based pagination info. Listings are not
// counted, so HasMore is inferred from a full page.
type Pagination struct {
	Offset  int  `json:"offset"`
	Limit   int  `json:"limit"`
	Count   int  `json:"count"`
	HasMore bool `json:"has_more"`
}

// pageParams reads offset and limit from the query, falling back to def and
// capping at max.
func pageParams(c *fiber.Ctx, def, max int) (offset, limit int) {
	offset = c.QueryInt("offset", 0)
	limit = c.QueryInt("limit", def)
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 || limit > max {
		limit = def
	}
	return offset, limit
}

func newPagination(offset, limit, count int) Pagination {
	return Pagination{Offset: offset, Limit: limit, Count: count, HasMore: count >= limit}
}

// SetLinkHeaders adds RFC 8288 Link headers for paginated responses.
// It uses the current request path; filters are not repeated.
func SetLinkHeaders(c *fiber.Ctx, p Pagination) {
	base := c.Path()
	links := []string{fmt.Sprintf(`<%s?offset=0&limit=%d>; rel="first"`, base, p.Limit)}

	if p.Offset > 0 {
		prev := p.Offset - p.Limit
		if prev < 0 {
			prev = 0
		}
		links = append(links, fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="prev"`, base, prev, p.Limit))
	}
	if p.HasMore {
		links = append(links, fmt.Sprintf(`<%s?offset=%d&limit=%d>; rel="next"`, base, p.Offset+p.Limit, p.Limit))
	}

	c.Set("Link", strings.Join(links, ", "))
}

// respondPage writes one page of a listing.
func respondPage[T any](c *fiber.Ctx, items []T, offset, limit int) error {
	if items == nil {
		items = []T{}
	}
	pg := newPagination(offset, limit, len(items))
	SetLinkHeaders(c, pg)
	return c.JSON(PaginatedResponse{Data: items, Pagination: pg})
}
