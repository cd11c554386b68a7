package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Status is the lifecycle state of a game.
type Status uint8

const (
	InProgress Status = iota
	Won
	Drawn
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Won:
		return "won"
	case Drawn:
		return "drawn"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// MarshalText lets Status serialize as its name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Move is one entry of the play history.
type Move struct {
	Pos    Pos  `json:"pos"`
	Player Cell `json:"player"`
}

// Game holds the current state of a 4x4x4 match. The zero value is not
// ready for use; call New.
type Game struct {
	board   Board
	turn    Cell
	status  Status
	winner  Cell
	winLine Line
	history []Move
	moves   int
}

// Errors returned by domain operations. Every invalid move wraps ErrInvalidMove.
var (
	ErrInvalidMove = errors.New("invalid move")
	ErrOutOfBounds = fmt.Errorf("%w: out of bounds", ErrInvalidMove)
	ErrOccupied    = fmt.Errorf("%w: cell occupied", ErrInvalidMove)
	ErrGameOver    = fmt.Errorf("%w: game over", ErrInvalidMove)
)

// New returns a new game with X to move.
func New() *Game {
	g := &Game{}
	g.Reset()
	return g
}

// Reset discards all state and starts a fresh game with X to move.
func (g *Game) Reset() {
	*g = Game{turn: X}
}

// IsValidMove reports whether the side to move may play at (x, y, z).
func (g *Game) IsValidMove(x, y, z int) bool {
	return g.check(Pos{x, y, z}) == nil
}

func (g *Game) check(p Pos) error {
	if !p.InBounds() {
		return ErrOutOfBounds
	}
	if g.status != InProgress {
		return ErrGameOver
	}
	if g.board[p.Index()] != Empty {
		return ErrOccupied
	}
	return nil
}

// Play places the current side's mark at (x, y, z). An invalid move leaves
// the game untouched. A legal move returns nil even if it ends the game.
func (g *Game) Play(x, y, z int) error {
	p := Pos{x, y, z}
	if err := g.check(p); err != nil {
		return err
	}

	g.board[p.Index()] = g.turn
	g.history = append(g.history, Move{Pos: p, Player: g.turn})
	g.moves++

	if line, ok := g.completedLine(p, g.turn); ok {
		g.status = Won
		g.winner = g.turn
		g.winLine = line
		return nil
	}
	if g.moves == Cells {
		g.status = Drawn
		return nil
	}

	g.turn = g.turn.Opponent()
	return nil
}

// completedLine checks only the lines through p. Any earlier complete line
// would already have ended the game, so these are the only candidates.
// Ties go to the first line in catalog order.
func (g *Game) completedLine(p Pos, side Cell) (Line, bool) {
	for _, li := range catalog.byCell[p.Index()] {
		l := catalog.lines[li]
		if g.CountInLine(l, side) == Size {
			return l, true
		}
	}
	return Line{}, false
}

// At returns the occupancy at p.
func (g *Game) At(p Pos) Cell { return g.board.At(p) }

// Board returns a copy of the occupancy grid.
func (g *Game) Board() Board { return g.board }

// Turn is the side to move, or the side that made the final move once the game is over.
func (g *Game) Turn() Cell { return g.turn }

func (g *Game) Status() Status { return g.status }

// Over reports whether the game has reached a terminal status.
func (g *Game) Over() bool { return g.status != InProgress }

// Winner is set only when the status is Won.
func (g *Game) Winner() Cell { return g.winner }

// WinningLine returns the completed line when the status is Won.
func (g *Game) WinningLine() (Line, bool) {
	if g.status != Won {
		return Line{}, false
	}
	return g.winLine, true
}

// Moves is the number of successful moves.
func (g *Game) Moves() int { return g.moves }

// History returns a copy of the moves in play order.
func (g *Game) History() []Move {
	if len(g.history) == 0 {
		return nil
	}
	return append([]Move(nil), g.history...)
}

// Clone returns an independent copy of the game.
func (g *Game) Clone() *Game {
	cp := *g
	cp.history = g.History()
	return &cp
}

// State is a detached, serializable view of a game.
type State struct {
	Board       Board  `json:"board"`
	Turn        Cell   `json:"turn"`
	Status      Status `json:"status"`
	Winner      Cell   `json:"winner,omitempty"`
	WinningLine *Line  `json:"winning_line,omitempty"`
	History     []Move `json:"history"`
	Moves       int    `json:"moves"`
}

// Snapshot copies the full game state.
func (g *Game) Snapshot() State {
	st := State{
		Board:   g.board,
		Turn:    g.turn,
		Status:  g.status,
		Winner:  g.winner,
		History: g.History(),
		Moves:   g.moves,
	}
	if l, ok := g.WinningLine(); ok {
		st.WinningLine = &l
	}
	return st
}

// String renders the cube plane by plane, top plane first.
func (g *Game) String() string {
	var sb strings.Builder
	for z := Size - 1; z >= 0; z-- {
		fmt.Fprintf(&sb, "=== Plane %d ===\n", z)
		for y := 0; y < Size; y++ {
			for x := 0; x < Size; x++ {
				if x > 0 {
					sb.WriteByte(' ')
				}
				switch g.board[Pos{x, y, z}.Index()] {
				case X:
					sb.WriteByte('X')
				case O:
					sb.WriteByte('O')
				default:
					sb.WriteByte('.')
				}
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
