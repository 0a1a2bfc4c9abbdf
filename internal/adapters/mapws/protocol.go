package mapws

import (
	"fmt"

	"github.com/samirrijal/crewmap/internal/core/domain"
	"github.com/samirrijal/crewmap/internal/core/mapsync"
	"github.com/samirrijal/crewmap/internal/core/ports"
)

// Outbound command ops.
const (
	OpSession       = "session"
	OpCreateMarker  = "create_marker"
	OpDestroyMarker = "destroy_marker"
	OpSetPopup      = "set_popup"
	OpFlyTo         = "fly_to"
	OpError         = "error"
)

// Inbound event ops.
const (
	OpLoad    = "load"
	OpMoveEnd = "moveend"
	OpZoomEnd = "zoomend"
	OpClick   = "click"
	OpHover   = "hover"
	OpSelect  = "select"
)

// Command is a message sent to the browser map.
type Command struct {
	Op         string               `json:"op"`
	ID         string               `json:"id,omitempty"`
	StyleURL   string               `json:"style_url,omitempty"`
	Handle     string               `json:"handle,omitempty"`
	Point      *domain.GeoPoint     `json:"point,omitempty"`
	Content    *ports.MarkerContent `json:"content,omitempty"`
	Zoom       float64              `json:"zoom,omitempty"`
	DurationMS int64                `json:"duration_ms,omitempty"`
	Message    string               `json:"message,omitempty"`
}

// Message is an event reported by the browser map or its sidebar.
type Message struct {
	Op        string              `json:"op"`
	Bounds    *domain.BoundingBox `json:"bounds,omitempty"`
	Target    string              `json:"target,omitempty"`
	FeatureID string              `json:"feature_id,omitempty"`
}

// Decode turns a message into a session event.
func Decode(msg Message) (mapsync.Event, error) {
	switch msg.Op {
	case OpLoad, OpMoveEnd, OpZoomEnd:
		if msg.Bounds == nil || !msg.Bounds.Valid() {
			return nil, fmt.Errorf("%s: missing or invalid bounds", msg.Op)
		}
		switch msg.Op {
		case OpLoad:
			return mapsync.Loaded{Bounds: *msg.Bounds}, nil
		case OpMoveEnd:
			return mapsync.MoveEnded{Bounds: *msg.Bounds}, nil
		default:
			return mapsync.ZoomEnded{Bounds: *msg.Bounds}, nil
		}
	case OpClick:
		target := mapsync.ClickTarget(msg.Target)
		switch target {
		case mapsync.TargetMarker:
			if msg.FeatureID == "" {
				return nil, fmt.Errorf("click: marker target without feature_id")
			}
		case mapsync.TargetPopup, mapsync.TargetBackground:
		default:
			return nil, fmt.Errorf("click: unknown target %q", msg.Target)
		}
		return mapsync.Clicked{Target: target, FeatureID: msg.FeatureID}, nil
	case OpHover:
		return mapsync.Hovered{FeatureID: msg.FeatureID}, nil
	case OpSelect:
		return mapsync.Selected{FeatureID: msg.FeatureID}, nil
	}
	return nil, fmt.Errorf("unknown op %q", msg.Op)
}
