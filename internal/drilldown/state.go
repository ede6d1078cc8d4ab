// Package drilldown models the map's three-level navigation: an overview of
// regions, one region opened to its provinces, and one province opened to its
// sites. Transitions are precomputed into a plan the rendered page replays,
// so the page itself carries no navigation logic.
package drilldown

// Level is the depth of the drill-down view.
type Level int

const (
	LevelRoot Level = iota
	LevelRegion
	LevelProvince
)

func (l Level) String() string {
	switch l {
	case LevelRegion:
		return "region"
	case LevelProvince:
		return "province"
	default:
		return "root"
	}
}

// State is one navigation position. Region is set at region depth and below,
// Province only at province depth.
type State struct {
	Level    Level
	Region   string
	Province string
}

// EventKind enumerates what a viewer can click.
type EventKind int

const (
	ClickBack EventKind = iota
	ClickRegion
	ClickProvince
)

// Event is one viewer interaction. Region accompanies province clicks as
// well, because selecting a province also selects its region.
type Event struct {
	Kind     EventKind
	Region   string
	Province string
}

// Key returns the stable identifier the rendered page uses to look up this
// event's effects.
func (e Event) Key() string {
	switch e.Kind {
	case ClickRegion:
		return "region:" + e.Region
	case ClickProvince:
		return "province:" + e.Province
	default:
		return "back"
	}
}

// Next returns the state an event lands in. The destination depends only on
// the event itself: clicking a province always selects that province and its
// region regardless of where the viewer was, and back always returns to the
// overview.
func Next(e Event) State {
	switch e.Kind {
	case ClickRegion:
		return State{Level: LevelRegion, Region: e.Region}
	case ClickProvince:
		return State{Level: LevelProvince, Region: e.Region, Province: e.Province}
	default:
		return State{Level: LevelRoot}
	}
}
