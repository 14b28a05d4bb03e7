package board

import (
	"fmt"

	"github.com/playperu/quizboard/internal/quizboard"
)

// Walk is the result of resolving a move. Previous is the tile walked
// through just before Destination, or -1 when no step was taken. Path holds
// every tile entered, in order, ending with Destination.
type Walk struct {
	Destination int
	Previous    int
	Path        []int
}

// Resolve walks steps tiles from from, leaving through neighbor edge
// direction first.
//
// Junction policy: after the first step the walker always takes the first
// neighbor, in neighbor-list order, that is not the tile it just left.
// Neighbor lists put ring edges before the branch entry, so a walk that
// reaches a key tile along the ring stays on the ring; a walk that leaves a
// branch onto its key tile turns to the lower-numbered ring tile; a walk that
// crosses the hub leaves by the lowest-numbered branch it did not arrive by.
// Branches are entered only by choosing the branch-entry direction.
//
// Zero steps is the identity whatever the direction. An unknown direction
// returns from and ErrInvalidDirection. A tile with no way forward stops the
// walk early.
func (b *Board) Resolve(from, steps, direction int) (Walk, error) {
	start, err := b.Tile(from)
	if err != nil {
		return Walk{Destination: from, Previous: -1}, err
	}
	if steps <= 0 {
		return Walk{Destination: from, Previous: -1}, nil
	}
	if direction < 0 || direction >= len(start.Neighbors) {
		return Walk{Destination: from, Previous: -1},
			fmt.Errorf("tile %d has no direction %d: %w", from, direction, quizboard.ErrInvalidDirection)
	}

	w := Walk{Previous: from, Destination: start.Neighbors[direction]}
	w.Path = append(w.Path, w.Destination)
	for range steps - 1 {
		next, ok := b.Step(w.Previous, w.Destination)
		if !ok {
			break
		}
		w.Previous, w.Destination = w.Destination, next
		w.Path = append(w.Path, next)
	}
	return w, nil
}

// Step returns the tile after current when arriving from previous, following
// the junction policy documented on Resolve.
func (b *Board) Step(previous, current int) (int, bool) {
	t, err := b.Tile(current)
	if err != nil {
		return current, false
	}
	for _, n := range t.Neighbors {
		if n != previous {
			return n, true
		}
	}
	return current, false
}

// Directions lists the first-step choices from tile with labels for players.
func (b *Board) Directions(tile int) ([]quizboard.Direction, error) {
	t, err := b.Tile(tile)
	if err != nil {
		return nil, err
	}
	dirs := make([]quizboard.Direction, len(t.Neighbors))
	for i, n := range t.Neighbors {
		dirs[i] = quizboard.Direction{Index: i, Label: b.label(t, i, n), To: n}
	}
	return dirs, nil
}

func (b *Board) label(t Tile, index, to int) string {
	switch t.Zone {
	case ZoneRing:
		switch index {
		case 0:
			return "left"
		case 1:
			return "right"
		default:
			return "branch entry"
		}
	case ZoneBranch:
		if index == 0 {
			return "back"
		}
		return "forward"
	default:
		dest := b.tiles[to]
		return "toward " + string(quizboard.Categories[dest.Sector])
	}
}
