package usecase

import "github.com/rocketscienceinc/tictactoe-web/internal/entity"

// View is everything a client needs to draw the screen.
// Notifications are set only on the view produced by the action that raised them.
type View struct {
	Board         entity.Board          `json:"board"`
	Status        entity.Status         `json:"status"`
	StatusLine    string                `json:"status_line"`
	NextPlayer    entity.Cell           `json:"next_player"`
	Winner        entity.Cell           `json:"winner"`
	Scores        entity.ScoreTally     `json:"scores"`
	Celebrating   bool                  `json:"celebrating"`
	Notifications []entity.Notification `json:"notifications"`
}
