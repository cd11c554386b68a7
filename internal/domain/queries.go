package domain

// DefaultThreatLevel is the piece count Threats looks for when callers have no preference.
const DefaultThreatLevel = 2

// CountInLine returns how many of the line's cells side holds.
func (g *Game) CountInLine(l Line, side Cell) int {
	n := 0
	for _, p := range l {
		if g.board.At(p) == side {
			n++
		}
	}
	return n
}

// IsLineBlocked reports whether the opponent of side holds any cell of l.
func (g *Game) IsLineBlocked(l Line, side Cell) bool {
	opp := side.Opponent()
	for _, p := range l {
		if g.board.At(p) == opp {
			return true
		}
	}
	return false
}

// WinningMoves returns the empty cells that would complete a line for side
// if played now.
func (g *Game) WinningMoves(side Cell) []Pos {
	return g.Threats(side, Size-1)
}

// Threats returns the empty cells of every unblocked line in which side holds
// exactly level cells. Results are deduplicated and follow catalog order.
func (g *Game) Threats(side Cell, level int) []Pos {
	if side == Empty || level < 0 || level > Size {
		return nil
	}
	var (
		seen [Cells]bool
		out  []Pos
	)
	for _, l := range catalog.lines {
		if g.CountInLine(l, side) != level || g.IsLineBlocked(l, side) {
			continue
		}
		for _, p := range l {
			i := p.Index()
			if g.board[i] == Empty && !seen[i] {
				seen[i] = true
				out = append(out, p)
			}
		}
	}
	return out
}

// EmptyPositions lists the empty cells by increasing z, then y, then x.
func (g *Game) EmptyPositions() []Pos {
	out := make([]Pos, 0, Cells-g.moves)
	for i, c := range g.board {
		if c == Empty {
			out = append(out, PosFromIndex(i))
		}
	}
	return out
}
