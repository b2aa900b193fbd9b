package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/muesli/termenv"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/usecase"
)

const help = "cells 1-9 · r reset game · s reset scores · q quit"

type Console struct {
	session *usecase.Session
	in      io.Reader
	output  *termenv.Output

	mu sync.Mutex
}

func New(session *usecase.Session, in io.Reader, out io.Writer, opts ...termenv.OutputOption) *Console {
	return &Console{
		session: session,
		in:      in,
		output:  termenv.NewOutput(out, opts...),
	}
}

// Run plays in the terminal until the input ends, "q" is entered or ctx is done.
func (that *Console) Run(ctx context.Context) error {
	// Own actions are rendered inline; only the end of a celebration arrives unprompted.
	unsubscribe := that.session.Subscribe(func(view usecase.View) {
		if !view.Celebrating && view.Status == entity.StatusWon && len(view.Notifications) == 0 {
			that.Render(view)
		}
	})
	defer unsubscribe()

	done := make(chan struct{})
	defer close(done)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)

		scanner := bufio.NewScanner(that.in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-done:
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	that.Render(that.session.View())

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				if err := <-scanErr; err != nil {
					return fmt.Errorf("failed to read input: %w", err)
				}
				return nil
			}

			if line == "q" {
				return nil
			}

			that.handle(ctx, line)
		}
	}
}

func (that *Console) handle(ctx context.Context, line string) {
	switch line {
	case "":
		return
	case "r":
		that.Render(that.session.ResetGame(ctx))
	case "s":
		that.Render(that.session.ResetScores(ctx))
	default:
		position, err := strconv.Atoi(line)
		if err != nil || position < 1 || position > entity.BoardSize {
			that.println(that.output.String(help).Faint().String())
			return
		}

		that.Render(that.session.SelectCell(ctx, position-1))
	}
}

// Render draws the board, status, scores and any notifications.
func (that *Console) Render(view usecase.View) {
	var builder strings.Builder

	builder.WriteString("\n")
	for row := range 3 {
		cells := make([]string, 0, 3)
		for col := range 3 {
			index := row*3 + col
			cells = append(cells, " "+that.cell(view.Board[index], index)+" ")
		}
		builder.WriteString(strings.Join(cells, "|") + "\n")
		if row < 2 {
			builder.WriteString("---+---+---\n")
		}
	}

	builder.WriteString("\n" + that.output.String(view.StatusLine).Bold().String() + "\n")
	builder.WriteString(fmt.Sprintf("X Wins: %d   O Wins: %d\n", view.Scores.XWins, view.Scores.OWins))

	if view.Celebrating {
		builder.WriteString(that.output.String("*** congratulations ***").Foreground(that.output.Color("#f472b6")).Bold().String() + "\n")
	}

	for _, notification := range view.Notifications {
		color := "#2563eb"
		if notification.Level == entity.LevelSuccess {
			color = "#16a34a"
		}
		builder.WriteString(that.output.String(notification.Message).Foreground(that.output.Color(color)).String() + "\n")
	}

	that.println(builder.String())
}

func (that *Console) cell(mark entity.Cell, index int) string {
	switch mark {
	case entity.MarkX:
		return that.output.String("X").Foreground(that.output.Color("#818cf8")).Bold().String()
	case entity.MarkO:
		return that.output.String("O").Foreground(that.output.Color("#fb7185")).Bold().String()
	default:
		return that.output.String(strconv.Itoa(index + 1)).Faint().String()
	}
}

func (that *Console) println(text string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	_, _ = fmt.Fprintln(that.output, text)
}
