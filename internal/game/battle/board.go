package battle

// Board dimensions. Cells are indexed row by row; odd rows are shifted half a
// cell to the left of even rows.
const (
	BoardWidth  = 11
	BoardHeight = 9
	BoardSize   = BoardWidth * BoardHeight
)

// Direction is one of the six hex neighbours.
type Direction int

// Hex directions.
const (
	TopLeft Direction = iota
	TopRight
	Right
	BottomRight
	BottomLeft
	Left
)

var allDirections = [...]Direction{TopLeft, TopRight, Right, BottomRight, BottomLeft, Left}

// castleWallColumn is the wall column of each row when a castle is present.
// The wall bulges toward the attacker in the middle rows.
var castleWallColumn = [BoardHeight]int{8, 8, 7, 7, 7, 7, 7, 8, 8}

// IsValidIndex reports whether i is on the board.
func IsValidIndex(i int) bool { return i >= 0 && i < BoardSize }

func coords(i int) (x, y int) { return i % BoardWidth, i / BoardWidth }

// IsValidDirection reports whether the neighbour of i in direction d exists.
func IsValidDirection(i int, d Direction) bool {
	if !IsValidIndex(i) {
		return false
	}
	x, y := coords(i)
	odd := y%2 == 1
	switch d {
	case Left:
		return x > 0
	case Right:
		return x < BoardWidth-1
	case TopLeft:
		return y > 0 && !(x == 0 && odd)
	case TopRight:
		return y > 0 && !(x == BoardWidth-1 && !odd)
	case BottomLeft:
		return y < BoardHeight-1 && !(x == 0 && odd)
	case BottomRight:
		return y < BoardHeight-1 && !(x == BoardWidth-1 && !odd)
	}
	return false
}

// IndexDirection returns the neighbour of i in direction d, or -1.
func IndexDirection(i int, d Direction) int {
	if !IsValidDirection(i, d) {
		return -1
	}
	odd := (i/BoardWidth)%2 == 1
	switch d {
	case Left:
		return i - 1
	case Right:
		return i + 1
	case TopLeft:
		if odd {
			return i - BoardWidth - 1
		}
		return i - BoardWidth
	case TopRight:
		if odd {
			return i - BoardWidth
		}
		return i - BoardWidth + 1
	case BottomLeft:
		if odd {
			return i + BoardWidth - 1
		}
		return i + BoardWidth
	case BottomRight:
		if odd {
			return i + BoardWidth
		}
		return i + BoardWidth + 1
	}
	return -1
}

// AroundIndexes returns the valid neighbours of i.
func AroundIndexes(i int) []int {
	out := make([]int, 0, len(allDirections))
	for _, d := range allDirections {
		if n := IndexDirection(i, d); n >= 0 {
			out = append(out, n)
		}
	}
	return out
}

// Distance returns the hex distance between two cells.
//
// Precondition: both indexes are valid.
func Distance(a, b int) int {
	x1, y1 := coords(a)
	x2, y2 := coords(b)
	du := y2 - y1
	dv := (x2 + y2/2) - (x1 + y1/2)
	if (du >= 0 && dv >= 0) || (du < 0 && dv < 0) {
		return max(abs(du), abs(dv))
	}
	return abs(du) + abs(dv)
}

// IsNearIndexes reports whether a and b are distinct neighbours.
func IsNearIndexes(a, b int) bool {
	return a != b && IsValidIndex(a) && IsValidIndex(b) && Distance(a, b) == 1
}

// IsNegativeDistance reports whether b lies to the right of a.
func IsNegativeDistance(a, b int) bool {
	return a%BoardWidth-b%BoardWidth < 0
}

// IsWallIndex reports whether i is a castle wall cell.
func IsWallIndex(i int) bool {
	if !IsValidIndex(i) {
		return false
	}
	x, y := coords(i)
	return x == castleWallColumn[y]
}

// IsMoatIndex reports whether i is a moat cell in front of the wall.
func IsMoatIndex(i int) bool {
	if !IsValidIndex(i) {
		return false
	}
	x, y := coords(i)
	return x == castleWallColumn[y]-1
}

// IsCastleIndex reports whether i lies behind the castle wall.
func IsCastleIndex(i int) bool {
	if !IsValidIndex(i) {
		return false
	}
	x, y := coords(i)
	return x > castleWallColumn[y]
}

// IsOutOfWallsIndex reports whether i lies in front of the castle wall.
func IsOutOfWallsIndex(i int) bool {
	if !IsValidIndex(i) {
		return false
	}
	x, y := coords(i)
	return x < castleWallColumn[y]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Cell is one board hex. Its unit reference is weak: units claim and release
// cells as they move and die.
type Cell struct {
	index int
	unit  *Unit
}

// Index returns the cell index.
func (c *Cell) Index() int { return c.index }

// Unit returns the occupying unit, or nil.
func (c *Cell) Unit() *Unit { return c.unit }

// Board is the battlefield grid.
type Board struct {
	cells [BoardSize]Cell
}

func newBoard() *Board {
	b := &Board{}
	for i := range b.cells {
		b.cells[i].index = i
	}
	return b
}

// Cell returns cell i, or nil for an invalid index.
func (b *Board) Cell(i int) *Cell {
	if !IsValidIndex(i) {
		return nil
	}
	return &b.cells[i]
}

// UnitAt returns the unit occupying cell i, or nil.
func (b *Board) UnitAt(i int) *Unit {
	if c := b.Cell(i); c != nil {
		return c.unit
	}
	return nil
}

// PositionFor returns the cells a unit would occupy with its head on cell
// head. A wide unit's tail trails behind the head: to the right when
// reflected, to the left otherwise. The result is empty when a cell is off
// the board or the tail would wrap to another row.
func (b *Board) PositionFor(head int, wide, reflect bool) Position {
	h := b.Cell(head)
	if h == nil {
		return Position{}
	}
	if !wide {
		return Position{head: h}
	}
	tailIndex := head - 1
	if reflect {
		tailIndex = head + 1
	}
	t := b.Cell(tailIndex)
	if t == nil || tailIndex/BoardWidth != head/BoardWidth {
		return Position{}
	}
	return Position{head: h, tail: t}
}

// AroundUnitIndexes returns the cells adjacent to u, excluding its own.
func (b *Board) AroundUnitIndexes(u *Unit) []int {
	own := u.position
	seen := map[int]bool{}
	var out []int
	for _, c := range own.cells() {
		for _, n := range AroundIndexes(c.index) {
			if own.Contains(n) || seen[n] {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}

// Position is the one or two cells a unit occupies.
type Position struct {
	head *Cell
	tail *Cell
}

// Head returns the head cell, or nil.
func (p Position) Head() *Cell { return p.head }

// Tail returns the tail cell of a wide unit, or nil.
func (p Position) Tail() *Cell { return p.tail }

// HeadIndex returns the head cell index, or -1.
func (p Position) HeadIndex() int {
	if p.head == nil {
		return -1
	}
	return p.head.index
}

// TailIndex returns the tail cell index, or -1.
func (p Position) TailIndex() int {
	if p.tail == nil {
		return -1
	}
	return p.tail.index
}

// IsValid reports whether the position holds a head, and a tail for wide units.
func (p Position) IsValid(wide bool) bool {
	return p.head != nil && (!wide || p.tail != nil)
}

// Contains reports whether cell i belongs to the position.
func (p Position) Contains(i int) bool {
	return (p.head != nil && p.head.index == i) || (p.tail != nil && p.tail.index == i)
}

// Indexes returns the occupied cell indexes, head first.
func (p Position) Indexes() []int {
	var out []int
	for _, c := range p.cells() {
		out = append(out, c.index)
	}
	return out
}

func (p Position) cells() []*Cell {
	var out []*Cell
	if p.head != nil {
		out = append(out, p.head)
	}
	if p.tail != nil {
		out = append(out, p.tail)
	}
	return out
}
