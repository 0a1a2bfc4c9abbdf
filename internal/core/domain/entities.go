package domain

import (
	"time"
)

// Location is a named place a job or event can point at.
// Coordinates are nullable: records created from partial forms often lack them.
type Location struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country,omitempty"`
	Longitude *float64  `json:"longitude,omitempty"`
	Latitude  *float64  `json:"latitude,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Point returns the location's coordinate and whether it is usable on a map.
func (l *Location) Point() (GeoPoint, bool) {
	if l == nil || l.Longitude == nil || l.Latitude == nil {
		return GeoPoint{}, false
	}
	p := GeoPoint{Lon: *l.Longitude, Lat: *l.Latitude}
	return p, p.Valid()
}

// Job is a crew position offered on a vessel.
type Job struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"` // deckhand, engineer, chef, ...
	VesselName  string     `json:"vessel_name,omitempty"`
	Rate        float64    `json:"rate"`
	Currency    string     `json:"currency,omitempty"`
	LocationID  string     `json:"location_id,omitempty"`
	Location    *Location  `json:"location,omitempty"` // set when the location is included
	PostedBy    string     `json:"posted_by"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	ClosesAt    *time.Time `json:"closes_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Placement implements Placeable.
func (j *Job) Placement() Placement {
	return Placement{
		ID:          j.ID,
		Kind:        FeatureKindJob,
		Title:       j.Title,
		Category:    j.Category,
		Location:    j.Location,
		LocationRef: j.LocationID,
	}
}

// Event is a social gathering shown next to jobs on the map.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	LocationID  string     `json:"location_id,omitempty"`
	Location    *Location  `json:"location,omitempty"`
	HostID      string     `json:"host_id"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Placement implements Placeable.
func (e *Event) Placement() Placement {
	return Placement{
		ID:          e.ID,
		Kind:        FeatureKindEvent,
		Title:       e.Title,
		Category:    e.Category,
		Location:    e.Location,
		LocationRef: e.LocationID,
	}
}

// Post is an entry in the social feed.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	ImageURL  string    `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ChangeOp is the kind of mutation a RecordChange describes.
type ChangeOp string

const (
	ChangeSaved     ChangeOp = "saved"
	ChangeDestroyed ChangeOp = "destroyed"
)

// RecordChange is broadcast after a job or event is saved or destroyed.
type RecordChange struct {
	Kind FeatureKind `json:"kind"`
	ID   string      `json:"id"`
	Op   ChangeOp    `json:"op"`
	At   time.Time   `json:"at"`
}

// JobFilter narrows a job listing.
type JobFilter struct {
	Category string
	PostedBy string
	Include  []string // "location"
	Limit    int
	Offset   int
}

// EventFilter narrows an event listing.
type EventFilter struct {
	Category string
	HostID   string
	After    *time.Time
	Include  []string
	Limit    int
	Offset   int
}

// Includes reports whether name is among the requested relation joins.
func Includes(include []string, name string) bool {
	for _, in := range include {
		if in == name {
			return true
		}
	}
	return false
}
