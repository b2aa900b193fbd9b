package websocket

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-web/internal/apperror"
)

func errUnknownAction(action string) error {
	return fmt.Errorf("%w: %q", apperror.ErrUnknownAction, action)
}

// handleConnect replies with the current view so a fresh tab can draw itself.
func (that *Server) handleConnect(_ context.Context, client *client, _ *Message) error {
	client.pushView(client.session.View())
	return nil
}

// handleCellSelect answers through the session subscription, like every other change.
func (that *Server) handleCellSelect(ctx context.Context, client *client, msg *Message) error {
	var payload CellPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.Cell == nil {
		return fmt.Errorf("%w: cell is required", apperror.ErrInvalidCell)
	}

	client.session.SelectCell(ctx, *payload.Cell)

	return nil
}

func (that *Server) handleGameReset(ctx context.Context, client *client, _ *Message) error {
	client.session.ResetGame(ctx)
	return nil
}

func (that *Server) handleScoresReset(ctx context.Context, client *client, _ *Message) error {
	client.session.ResetScores(ctx)
	return nil
}
