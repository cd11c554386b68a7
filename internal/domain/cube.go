package domain

import "fmt"

// Size is the edge length of the cube.
const Size = 4

// Cells is the number of positions in the cube.
const Cells = Size * Size * Size

// Cell represents a board cell state.
type Cell uint8

const (
	Empty Cell = iota
	X
	O
)

// Opponent returns the other side. Empty has no opponent.
func (c Cell) Opponent() Cell {
	switch c {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

func (c Cell) String() string {
	switch c {
	case X:
		return "X"
	case O:
		return "O"
	default:
		return ""
	}
}

func (c Cell) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *Cell) UnmarshalText(b []byte) error {
	switch string(b) {
	case "X":
		*c = X
	case "O":
		*c = O
	case "":
		*c = Empty
	default:
		return fmt.Errorf("unknown cell %q", b)
	}
	return nil
}

// Pos is a cell coordinate: X is the column, Y the row, Z the plane.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// InBounds reports whether every component lies in [0, Size).
func (p Pos) InBounds() bool {
	return p.X >= 0 && p.X < Size &&
		p.Y >= 0 && p.Y < Size &&
		p.Z >= 0 && p.Z < Size
}

// Index returns the flat board index. Only meaningful for in-bounds positions.
func (p Pos) Index() int {
	return p.X + Size*p.Y + Size*Size*p.Z
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z)
}

// PosFromIndex is the inverse of Pos.Index.
func PosFromIndex(i int) Pos {
	return Pos{X: i % Size, Y: (i / Size) % Size, Z: i / (Size * Size)}
}

// Board is the fixed 4x4x4 cube stored flat, x fastest then y then z.
type Board [Cells]Cell

// At returns the occupancy at p. Out-of-bounds positions read as Empty.
func (b *Board) At(p Pos) Cell {
	if !p.InBounds() {
		return Empty
	}
	return b[p.Index()]
}
