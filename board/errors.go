package board

import "errors"

// Placement rejections are recoverable and leave the board untouched
var (
	ErrObstacleClick       = errors.New("obstacle cell: cannot place the agent or target here")
	ErrDuplicatePosition   = errors.New("the target position cannot be the same as the start position")
	ErrClickOutsideGrid    = errors.New("click outside the grid")
	ErrPlacementIncomplete = errors.New("place the start and target positions before starting the search")
)

// ErrOutOfBounds marks an agent update outside the grid, a collaborator contract violation
var ErrOutOfBounds = errors.New("position update outside grid bounds")
