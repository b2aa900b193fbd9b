package entity

import "fmt"

type Cell string

const (
	Empty Cell = ""
	MarkX Cell = "X"
	MarkO Cell = "O"
)

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusDrawn      Status = "drawn"
)

type EventType string

const (
	EventIgnored EventType = "ignored"
	EventPlaced  EventType = "placed"
	EventWon     EventType = "won"
	EventDrawn   EventType = "drawn"
)

const BoardSize = 9

// WinCombos lists the winning triples in evaluation order.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

type Board [BoardSize]Cell

// Event describes the transition produced by a single PlaceMark call.
type Event struct {
	Type EventType `json:"type"`
	Mark Cell      `json:"mark,omitempty"`
	Cell int       `json:"cell"`
}

type Game struct {
	Board  Board  `json:"board"`
	Turn   Cell   `json:"turn"`
	Winner Cell   `json:"winner"`
	Status Status `json:"status"`
}

func NewGame() *Game {
	return &Game{
		Turn:   MarkX,
		Status: StatusInProgress,
	}
}

// Evaluate returns the mark holding the first complete triple, or Empty.
func Evaluate(board Board) Cell {
	for _, combo := range WinCombos {
		a, b, c := board[combo[0]], board[combo[1]], board[combo[2]]
		if a != Empty && a == b && b == c {
			return a
		}
	}

	return Empty
}

func (that Board) IsFull() bool {
	for _, cell := range that {
		if cell == Empty {
			return false
		}
	}

	return true
}

// PlaceMark puts the mark of the player to move on the cell. Invalid placements are
// ignored and leave the game untouched.
func (that *Game) PlaceMark(cell int) Event {
	if !that.IsInProgress() || cell < 0 || cell >= BoardSize || that.Board[cell] != Empty {
		return Event{Type: EventIgnored, Cell: cell}
	}

	mark := that.Turn
	that.Board[cell] = mark
	that.Turn = Opponent(mark)

	if winner := Evaluate(that.Board); winner != Empty {
		that.Winner = winner
		that.Status = StatusWon

		return Event{Type: EventWon, Mark: winner, Cell: cell}
	}

	if that.Board.IsFull() {
		that.Status = StatusDrawn

		return Event{Type: EventDrawn, Mark: mark, Cell: cell}
	}

	return Event{Type: EventPlaced, Mark: mark, Cell: cell}
}

func (that *Game) Reset() {
	*that = *NewGame()
}

func (that *Game) IsInProgress() bool {
	return that.Status == StatusInProgress
}

func (that *Game) IsWon() bool {
	return that.Status == StatusWon
}

func (that *Game) IsDrawn() bool {
	return that.Status == StatusDrawn
}

// StatusLine is the headline shown above the board.
func (that *Game) StatusLine() string {
	switch that.Status {
	case StatusWon:
		return fmt.Sprintf("Winner: %s", that.Winner)
	case StatusDrawn:
		return "It's a draw!"
	default:
		return fmt.Sprintf("Next player: %s", that.Turn)
	}
}

func Opponent(mark Cell) Cell {
	if mark == MarkX {
		return MarkO
	}
	return MarkX
}

func (that Cell) IsMark() bool {
	return that == MarkX || that == MarkO
}
