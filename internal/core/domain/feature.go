package domain

// FeatureKind tags which domain record a Feature was projected from.
type FeatureKind string

const (
	FeatureKindJob   FeatureKind = "job"
	FeatureKindEvent FeatureKind = "event"
)

// ParseFeatureKind maps the path/query spelling of a kind to a FeatureKind.
func ParseFeatureKind(s string) (FeatureKind, bool) {
	switch s {
	case "job", "jobs":
		return FeatureKindJob, true
	case "event", "events":
		return FeatureKindEvent, true
	}
	return "", false
}

// Feature is a point-located, renderable unit derived from a job or event.
type Feature struct {
	ID       string      `json:"id"`
	Kind     FeatureKind `json:"kind"`
	Title    string      `json:"title"`
	Category string      `json:"category,omitempty"`
	Point    GeoPoint    `json:"point"`
}

// FeatureCollection is ordered like the records it was projected from.
type FeatureCollection []Feature

// Find returns the feature with the given id.
func (fc FeatureCollection) Find(id string) (Feature, bool) {
	for _, f := range fc {
		if f.ID == id {
			return f, true
		}
	}
	return Feature{}, false
}

// Placement is what a record exposes to the projector. Location is the included
// relation when the record was loaded with it; LocationRef is the bare pointer otherwise.
type Placement struct {
	ID          string
	Kind        FeatureKind
	Title       string
	Category    string
	Location    *Location
	LocationRef string
}

// Placeable is a record that can be placed on the map.
type Placeable interface {
	Placement() Placement
}

// SelectionState is the shared hover/selection state of one map session.
type SelectionState struct {
	HoveredID string   `json:"hovered_id,omitempty"`
	Selected  *Feature `json:"selected,omitempty"`
}
