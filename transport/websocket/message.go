package websocket

import "encoding/json"

const (
	actionConnect     = "connect"
	actionCellSelect  = "cell:select"
	actionGameReset   = "game:reset"
	actionScoresReset = "scores:reset"

	actionState = "state"
	actionError = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type CellPayload struct {
	Cell *int `json:"cell"`
}

type ErrorPayload struct {
	Action string `json:"action,omitempty"`
	Error  string `json:"error"`
}

func newMessage(action string, payload any) (Message, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{Action: action, Payload: raw}, nil
}
