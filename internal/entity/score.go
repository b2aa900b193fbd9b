package entity

const (
	XWinsKey = "xWins"
	OWinsKey = "oWins"
)

type ScoreTally struct {
	XWins int `json:"x_wins"`
	OWins int `json:"o_wins"`
}

// ScoreKey returns the storage key holding the win counter of the mark.
func ScoreKey(mark Cell) string {
	if mark == MarkO {
		return OWinsKey
	}
	return XWinsKey
}

func (that *ScoreTally) Increment(mark Cell) int {
	switch mark {
	case MarkX:
		that.XWins++
		return that.XWins
	case MarkO:
		that.OWins++
		return that.OWins
	default:
		return 0
	}
}

func (that ScoreTally) WinsOf(mark Cell) int {
	if mark == MarkO {
		return that.OWins
	}
	return that.XWins
}
