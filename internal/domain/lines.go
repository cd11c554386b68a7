package domain

import (
	"errors"
	"fmt"
	"sort"
)

// LineCount is the number of winning lines in the cube.
const LineCount = 76

// Line is four collinear cells, listed in the direction they were generated.
type Line [Size]Pos

// Contains reports whether p is one of the line's cells.
func (l Line) Contains(p Pos) bool {
	for _, q := range l {
		if q == p {
			return true
		}
	}
	return false
}

// key identifies a line by its cell set regardless of direction.
func (l Line) key() [Size]int {
	var k [Size]int
	for i, p := range l {
		k[i] = p.Index()
	}
	sort.Ints(k[:])
	return k
}

// Family groups lines by geometry.
type Family uint8

const (
	FamilyRow Family = iota
	FamilyColumn
	FamilyLayerDiagonal
	FamilyPillar
	FamilyXTilted
	FamilyYTilted
	FamilySpaceDiagonal
)

func (f Family) String() string {
	switch f {
	case FamilyRow:
		return "row"
	case FamilyColumn:
		return "column"
	case FamilyLayerDiagonal:
		return "layer diagonal"
	case FamilyPillar:
		return "pillar"
	case FamilyXTilted:
		return "x-tilted diagonal"
	case FamilyYTilted:
		return "y-tilted diagonal"
	case FamilySpaceDiagonal:
		return "space diagonal"
	default:
		return fmt.Sprintf("family(%d)", uint8(f))
	}
}

// familySizes is the number of lines each family contributes, in generation order.
var familySizes = [...]int{16, 16, 8, 16, 8, 8, 4}

// ErrCatalogIntegrity is returned by ValidateLines when the line set is malformed.
var ErrCatalogIntegrity = errors.New("line catalog integrity failure")

// GenerateLines returns all 76 winning lines in a fixed order. Each family
// emits every line in a single canonical direction.
func GenerateLines() []Line {
	lines := make([]Line, 0, LineCount)
	const last = Size - 1

	// rows
	for z := 0; z < Size; z++ {
		for y := 0; y < Size; y++ {
			var l Line
			for i := 0; i < Size; i++ {
				l[i] = Pos{i, y, z}
			}
			lines = append(lines, l)
		}
	}
	// columns
	for z := 0; z < Size; z++ {
		for x := 0; x < Size; x++ {
			var l Line
			for i := 0; i < Size; i++ {
				l[i] = Pos{x, i, z}
			}
			lines = append(lines, l)
		}
	}
	// layer diagonals
	for z := 0; z < Size; z++ {
		var main, anti Line
		for i := 0; i < Size; i++ {
			main[i] = Pos{i, i, z}
			anti[i] = Pos{i, last - i, z}
		}
		lines = append(lines, main, anti)
	}
	// pillars
	for x := 0; x < Size; x++ {
		for y := 0; y < Size; y++ {
			var l Line
			for i := 0; i < Size; i++ {
				l[i] = Pos{x, y, i}
			}
			lines = append(lines, l)
		}
	}
	// x and z vary together
	for y := 0; y < Size; y++ {
		var l Line
		for i := 0; i < Size; i++ {
			l[i] = Pos{i, y, i}
		}
		lines = append(lines, l)
	}
	for y := 0; y < Size; y++ {
		var l Line
		for i := 0; i < Size; i++ {
			l[i] = Pos{last - i, y, i}
		}
		lines = append(lines, l)
	}
	// y and z vary together
	for x := 0; x < Size; x++ {
		var l Line
		for i := 0; i < Size; i++ {
			l[i] = Pos{x, i, i}
		}
		lines = append(lines, l)
	}
	for x := 0; x < Size; x++ {
		var l Line
		for i := 0; i < Size; i++ {
			l[i] = Pos{x, last - i, i}
		}
		lines = append(lines, l)
	}
	// space diagonals, always rising in z
	var d1, d2, d3, d4 Line
	for i := 0; i < Size; i++ {
		d1[i] = Pos{i, i, i}
		d2[i] = Pos{last - i, i, i}
		d3[i] = Pos{i, last - i, i}
		d4[i] = Pos{last - i, last - i, i}
	}
	lines = append(lines, d1, d2, d3, d4)

	return lines
}

// ValidateLines checks count, shape, bounds and uniqueness of a line set.
// Uniqueness compares unordered cell sets, so a line and its reverse collide.
func ValidateLines(lines []Line) error {
	if len(lines) != LineCount {
		return fmt.Errorf("%w: expected %d lines, got %d", ErrCatalogIntegrity, LineCount, len(lines))
	}
	seen := make(map[[Size]int]int, len(lines))
	for i, l := range lines {
		var cells [Cells]bool
		for _, p := range l {
			if !p.InBounds() {
				return fmt.Errorf("%w: invalid coordinate %v in line %d", ErrCatalogIntegrity, p, i)
			}
			if cells[p.Index()] {
				return fmt.Errorf("%w: line %d repeats cell %v", ErrCatalogIntegrity, i, p)
			}
			cells[p.Index()] = true
		}
		k := l.key()
		if j, dup := seen[k]; dup {
			return fmt.Errorf("%w: line %d duplicates line %d", ErrCatalogIntegrity, i, j)
		}
		seen[k] = i
	}
	return nil
}

type lineCatalog struct {
	lines []Line
	// byCell holds, per flat index, the catalog positions of the lines through it.
	byCell [Cells][]int
}

var catalog = mustBuildCatalog()

func mustBuildCatalog() *lineCatalog {
	lines := GenerateLines()
	if err := ValidateLines(lines); err != nil {
		panic(err)
	}
	c := &lineCatalog{lines: lines}
	for i, l := range lines {
		for _, p := range l {
			c.byCell[p.Index()] = append(c.byCell[p.Index()], i)
		}
	}
	return c
}

// Lines returns the shared catalog. Callers must not modify it.
func Lines() []Line {
	return catalog.lines
}

// LinesThrough returns the catalog lines containing p, in catalog order.
// Out-of-bounds positions have no lines.
func LinesThrough(p Pos) []Line {
	if !p.InBounds() {
		return nil
	}
	idx := catalog.byCell[p.Index()]
	out := make([]Line, len(idx))
	for i, li := range idx {
		out[i] = catalog.lines[li]
	}
	return out
}

// FamilyOf returns the family of the i-th catalog line.
func FamilyOf(i int) (Family, bool) {
	if i < 0 || i >= LineCount {
		return 0, false
	}
	for f, n := range familySizes {
		if i < n {
			return Family(f), true
		}
		i -= n
	}
	return 0, false
}

// FamilyCounts returns how many catalog lines belong to each family.
func FamilyCounts() map[Family]int {
	counts := make(map[Family]int, len(familySizes))
	for i := range catalog.lines {
		f, _ := FamilyOf(i)
		counts[f]++
	}
	return counts
}
