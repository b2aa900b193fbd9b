package rest

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/msgcat"
	"github.com/rocketscienceinc/tictactoe-web/internal/usecase"
)

//go:embed templates/index.html
var templates embed.FS

type texts interface {
	Text(key string, data any, fallback string) string
}

type markText struct {
	Mark entity.Cell
}

type labels struct {
	Title       string
	ResetGame   string
	ResetScores string
	XWins       string
	OWins       string
}

type pageData struct {
	Labels labels
	View   usecase.View
}

// Page renders the single game screen. Later updates arrive over the websocket.
type Page struct {
	tpl   *template.Template
	texts texts
}

func NewPage(texts texts) (*Page, error) {
	tpl, err := template.ParseFS(templates, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	return &Page{tpl: tpl, texts: texts}, nil
}

func (that *Page) Render(w io.Writer, view usecase.View) error {
	data := pageData{
		Labels: labels{
			Title:       that.texts.Text(msgcat.KeyTitle, nil, "Tic-Tac-Toe"),
			ResetGame:   that.texts.Text(msgcat.KeyResetGame, nil, "Reset Game"),
			ResetScores: that.texts.Text(msgcat.KeyResetScores, nil, "Reset Scores"),
			XWins:       that.scoreLabel(entity.MarkX),
			OWins:       that.scoreLabel(entity.MarkO),
		},
		View: view,
	}

	if err := that.tpl.Execute(w, data); err != nil {
		return fmt.Errorf("failed to execute page template: %w", err)
	}

	return nil
}

func (that *Page) scoreLabel(mark entity.Cell) string {
	return that.texts.Text(msgcat.KeyScore, markText{Mark: mark}, fmt.Sprintf("%s Wins", mark))
}
