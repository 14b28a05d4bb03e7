// Package board builds the fixed tile graph and walks it.
//
// The ring is a 42-tile cycle of six sectors. Each sector starts with a key
// tile that also opens a five-tile branch leading to the hub:
//
//	sector s: [Key, Category, Event, Category, Category, Minigame, Category]
//	branch s: key(s) -> b0 -> b1 -> b2 -> b3 -> b4 -> hub
//
// Tile ids are stable: ring 0..41, branch tiles 42..71 (five per sector, in
// sector order), hub 72.
package board

import (
	"fmt"

	"github.com/playperu/quizboard/internal/quizboard"
)

type Kind string

const (
	KindCategory Kind = "category"
	KindKey      Kind = "key"
	KindEvent    Kind = "event"
	KindMinigame Kind = "minigame"
	KindHub      Kind = "hub"
)

type Zone string

const (
	ZoneRing   Zone = "ring"
	ZoneBranch Zone = "branch"
	ZoneCenter Zone = "center"
)

const (
	Sectors      = len(quizboard.Categories)
	SectorLength = 7
	BranchLength = 5
	RingSize     = Sectors * SectorLength
	HubID        = RingSize + Sectors*BranchLength
	TileCount    = HubID + 1

	// StartTile is where every player is placed when a game starts.
	StartTile = 0
)

// Tile is immutable once built. Category is empty for event, minigame and
// hub tiles. Sector is -1 for the hub.
type Tile struct {
	ID        int                `json:"id"`
	Kind      Kind               `json:"kind"`
	Category  quizboard.Category `json:"category,omitempty"`
	Zone      Zone               `json:"zone"`
	Sector    int                `json:"sector"`
	Neighbors []int              `json:"neighbors"`
}

// Asks reports whether landing on t opens a question.
func (t Tile) Asks() bool {
	return (t.Kind == KindCategory || t.Kind == KindKey) && t.Category != ""
}

var sectorPattern = [SectorLength]Kind{
	KindKey, KindCategory, KindEvent, KindCategory, KindCategory, KindMinigame, KindCategory,
}

// OtherCategories returns the five categories that are not keyed to sector,
// in the order the sector uses them: ring category tiles take the first
// four, the branch takes all five.
func OtherCategories(sector int) [Sectors - 1]quizboard.Category {
	var out [Sectors - 1]quizboard.Category
	for i := range out {
		out[i] = quizboard.Categories[(sector+1+i)%Sectors]
	}
	return out
}

// Build returns the full tile set. It is pure and returns an equal result
// on every call.
func Build() []Tile {
	tiles := make([]Tile, 0, TileCount)

	for s := range Sectors {
		others := OtherCategories(s)
		next := 0
		for i, kind := range sectorPattern {
			id := s*SectorLength + i
			t := Tile{
				ID:     id,
				Kind:   kind,
				Zone:   ZoneRing,
				Sector: s,
				Neighbors: []int{
					(id + RingSize - 1) % RingSize,
					(id + 1) % RingSize,
				},
			}
			switch kind {
			case KindKey:
				t.Category = quizboard.Categories[s]
				t.Neighbors = append(t.Neighbors, branchTileID(s, 0))
			case KindCategory:
				t.Category = others[next]
				next++
			}
			tiles = append(tiles, t)
		}
	}

	for s := range Sectors {
		others := OtherCategories(s)
		for j := range BranchLength {
			back := branchTileID(s, j-1)
			if j == 0 {
				back = s * SectorLength
			}
			forward := branchTileID(s, j+1)
			if j == BranchLength-1 {
				forward = HubID
			}
			tiles = append(tiles, Tile{
				ID:        branchTileID(s, j),
				Kind:      KindCategory,
				Category:  others[j],
				Zone:      ZoneBranch,
				Sector:    s,
				Neighbors: []int{back, forward},
			})
		}
	}

	hub := Tile{ID: HubID, Kind: KindHub, Zone: ZoneCenter, Sector: -1}
	for s := range Sectors {
		hub.Neighbors = append(hub.Neighbors, branchTileID(s, BranchLength-1))
	}
	tiles = append(tiles, hub)

	return tiles
}

func branchTileID(sector, step int) int {
	return RingSize + sector*BranchLength + step
}

// Board is a read-only view over the built tiles, safe for concurrent use.
type Board struct {
	tiles []Tile
}

func New() *Board {
	return &Board{tiles: Build()}
}

// Tile returns the tile with id.
func (b *Board) Tile(id int) (Tile, error) {
	if id < 0 || id >= len(b.tiles) {
		return Tile{}, fmt.Errorf("tile %d: %w", id, quizboard.ErrNotFound)
	}
	return b.tiles[id], nil
}

// Tiles returns a copy of the tile list.
func (b *Board) Tiles() []Tile {
	out := make([]Tile, len(b.tiles))
	copy(out, b.tiles)
	return out
}

// FirstRingTile returns the first ring tile at or after from (wrapping) that
// asks a question of category. Branch and hub positions scan from tile 0.
func (b *Board) FirstRingTile(from int, category quizboard.Category) (Tile, bool) {
	if from < 0 || from >= RingSize {
		from = 0
	}
	for i := range RingSize {
		t := b.tiles[(from+i)%RingSize]
		if t.Kind == KindCategory && t.Category == category {
			return t, true
		}
	}
	return Tile{}, false
}
