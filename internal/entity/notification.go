package entity

type NotificationLevel string

const (
	LevelSuccess NotificationLevel = "success"
	LevelInfo    NotificationLevel = "info"
)

// Notification is a fire-and-forget message for the player, rendered as a toast.
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}
