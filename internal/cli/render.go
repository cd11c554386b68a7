// Package cli is the terminal hot-seat front end: it parses typed moves,
// renders the cube and drives a domain.Game from a line-oriented reader.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jaminalder/logiqube/internal/domain"
)

var (
	colorX   = lipgloss.Color("#FF6464")
	colorO   = lipgloss.Color("#6496FF")
	colorWin = lipgloss.Color("#FFD700")
	colorDim = lipgloss.Color("#646478")

	planeStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
	titleStyle  = lipgloss.NewStyle().Bold(true)
	xStyle      = lipgloss.NewStyle().Foreground(colorX).Bold(true)
	oStyle      = lipgloss.NewStyle().Foreground(colorO).Bold(true)
	winStyle    = lipgloss.NewStyle().Foreground(colorWin).Bold(true).Underline(true)
	emptyStyle  = lipgloss.NewStyle().Foreground(colorDim)
	statusStyle = lipgloss.NewStyle().Bold(true)
)

// Render draws the four planes side by side, top plane on the left, followed
// by a status line. Cells of a winning line are highlighted.
func Render(g *domain.Game) string {
	line, won := g.WinningLine()
	planes := make([]string, 0, domain.Size)
	for z := domain.Size - 1; z >= 0; z-- {
		var rows []string
		rows = append(rows, titleStyle.Render(fmt.Sprintf("Plane %d", z)))
		rows = append(rows, emptyStyle.Render("  0 1 2 3"))
		for y := 0; y < domain.Size; y++ {
			cells := make([]string, 0, domain.Size)
			for x := 0; x < domain.Size; x++ {
				p := domain.Pos{X: x, Y: y, Z: z}
				cells = append(cells, renderCell(g.At(p), won && line.Contains(p)))
			}
			rows = append(rows, fmt.Sprintf("%d %s", y, strings.Join(cells, " ")))
		}
		planes = append(planes, planeStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)))
	}
	board := lipgloss.JoinHorizontal(lipgloss.Top, planes...)
	return board + "\n" + statusStyle.Render(Status(g)) + "\n"
}

func renderCell(c domain.Cell, win bool) string {
	switch {
	case win:
		return winStyle.Render(c.String())
	case c == domain.X:
		return xStyle.Render("X")
	case c == domain.O:
		return oStyle.Render("O")
	default:
		return emptyStyle.Render(".")
	}
}

// Status describes whose turn it is or how the game ended.
func Status(g *domain.Game) string {
	switch g.Status() {
	case domain.Won:
		l, _ := g.WinningLine()
		return fmt.Sprintf("Player %s wins with %v %v %v %v", g.Winner(), l[0], l[1], l[2], l[3])
	case domain.Drawn:
		return "Game is a draw!"
	default:
		return fmt.Sprintf("Player %s to move (move %d)", g.Turn(), g.Moves()+1)
	}
}

// FormatPositions renders cells as a compact list, or "none".
func FormatPositions(ps []domain.Pos) string {
	if len(ps) == 0 {
		return "none"
	}
	parts := make([]string, len(ps))
	for i, p := range ps {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}
