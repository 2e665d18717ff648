package model

// Mark is the content of a board cell and also names a role
type Mark string

const (
	MarkEmpty Mark = ""
	MarkX     Mark = "X"
	MarkO     Mark = "O"
)

// Opponent returns the other role
func (m Mark) Opponent() Mark {
	switch m {
	case MarkX:
		return MarkO
	case MarkO:
		return MarkX
	default:
		return MarkEmpty
	}
}

// BoardSize is the number of cells on the board
const BoardSize = 9

// Board is a 3x3 grid in row-major order, cells 0..8
type Board [BoardSize]Mark

// winningLines are the three rows, three columns and two diagonals
var winningLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// IsValidCell returns true if the index is on the board
func IsValidCell(cell int) bool {
	return cell >= 0 && cell < BoardSize
}

// IsEmpty returns true if the cell holds no mark
func (b *Board) IsEmpty(cell int) bool {
	return IsValidCell(cell) && b[cell] == MarkEmpty
}

// IsFull returns true if all cells are filled
func (b *Board) IsFull() bool {
	for _, m := range b {
		if m == MarkEmpty {
			return false
		}
	}
	return true
}

// EmptyCells returns the indexes of all empty cells in ascending order
func (b *Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, m := range b {
		if m == MarkEmpty {
			cells = append(cells, i)
		}
	}
	return cells
}

// Winner returns the mark holding a complete line, or MarkEmpty if none
func (b *Board) Winner() Mark {
	for _, line := range winningLines {
		m := b[line[0]]
		if m != MarkEmpty && m == b[line[1]] && m == b[line[2]] {
			return m
		}
	}
	return MarkEmpty
}
