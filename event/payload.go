package event

import "github.com/lixenwraith/gridscout/grid"

// ClickPayload is a grid cell picked by the user
type ClickPayload struct {
	At grid.Coord
}

// PositionUpdatePayload is an agent notification stamped with the run generation it belongs to
type PositionUpdatePayload struct {
	Generation    uint64
	Old, Current  grid.Coord
	TargetReached bool
	Energy        int
}
