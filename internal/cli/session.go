package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/jaminalder/logiqube/internal/domain"
)

// ErrBadInput is returned by ParseMove for anything that is not three integers.
var ErrBadInput = errors.New("expected three coordinates: x y z")

// ParseMove reads "x y z" (spaces and/or commas) into a position. Bounds are
// left to the game so that the usual move error is reported.
func ParseMove(s string) (domain.Pos, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
	if len(fields) != 3 {
		return domain.Pos{}, ErrBadInput
	}
	var v [3]int
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return domain.Pos{}, fmt.Errorf("%w: %q is not a number", ErrBadInput, f)
		}
		v[i] = n
	}
	return domain.Pos{X: v[0], Y: v[1], Z: v[2]}, nil
}

const helpText = `Commands:
  x y z   place your mark (each 0-3; z is the plane)
  hint    show winning moves, blocks and threats
  reset   start a new game
  help    show this help
  quit    leave
`

// Session is a hot-seat game between two people sharing one terminal.
type Session struct {
	game        *domain.Game
	in          *bufio.Scanner
	out         io.Writer
	log         *slog.Logger
	threatLevel int
}

// NewSession wires a fresh game to the given input and output.
func NewSession(in io.Reader, out io.Writer, log *slog.Logger, threatLevel int) *Session {
	return &Session{
		game:        domain.New(),
		in:          bufio.NewScanner(in),
		out:         out,
		log:         log,
		threatLevel: threatLevel,
	}
}

// Game exposes the session's game for inspection.
func (s *Session) Game() *domain.Game { return s.game }

// Run reads commands until quit, end of input or cancellation.
func (s *Session) Run(ctx context.Context) error {
	fmt.Fprint(s.out, "LogiQube - 4x4x4 tic-tac-toe\n\n", helpText, "\n")
	fmt.Fprint(s.out, Render(s.game))
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, "> ")
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		if quit := s.handle(strings.TrimSpace(s.in.Text())); quit {
			return nil
		}
	}
}

// handle executes one command line and reports whether the session should end.
func (s *Session) handle(line string) bool {
	switch strings.ToLower(line) {
	case "":
		return false
	case "q", "quit", "exit":
		fmt.Fprintln(s.out, "Goodbye!")
		return true
	case "h", "help", "?":
		fmt.Fprint(s.out, helpText)
		return false
	case "r", "reset":
		s.game.Reset()
		s.log.Info("game reset")
		fmt.Fprint(s.out, "Game reset!\n", Render(s.game))
		return false
	case "hint", "hints":
		s.hint()
		return false
	}

	p, err := ParseMove(line)
	if err != nil {
		fmt.Fprintf(s.out, "Invalid input: %v\n", err)
		return false
	}
	if err := s.game.Play(p.X, p.Y, p.Z); err != nil {
		s.log.Debug("move rejected", "pos", p, "error", err)
		fmt.Fprintf(s.out, "Rejected %v: %v\n", p, err)
		return false
	}
	s.log.Debug("move applied", "pos", p, "moves", s.game.Moves())
	fmt.Fprint(s.out, Render(s.game))
	if s.game.Over() {
		s.log.Info("game finished", "status", s.game.Status().String(), "winner", s.game.Winner().String(), "moves", s.game.Moves())
		fmt.Fprintln(s.out, "Type reset to play again or quit to leave.")
	}
	return false
}

func (s *Session) hint() {
	if s.game.Over() {
		fmt.Fprintln(s.out, "The game is over.")
		return
	}
	side := s.game.Turn()
	fmt.Fprintf(s.out, "Winning moves for %s: %s\n", side, FormatPositions(s.game.WinningMoves(side)))
	fmt.Fprintf(s.out, "Blocks needed against %s: %s\n", side.Opponent(), FormatPositions(s.game.WinningMoves(side.Opponent())))
	fmt.Fprintf(s.out, "Open lines with %d %s: %s\n", s.threatLevel, side, FormatPositions(s.game.Threats(side, s.threatLevel)))
}
