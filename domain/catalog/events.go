package catalog

import "time"

// Source is the event source name for catalog changes.
const Source = "retrogames.catalog"

const (
	EventRetroGameAdded   = "RetroGameAdded"
	EventRetroGameUpdated = "RetroGameUpdated"
)

// ChangeEvent records a mutation of the catalog table.
type ChangeEvent struct {
	Type       string    `json:"type"`
	ID         int       `json:"id"`
	Platform   string    `json:"platform"`
	Title      string    `json:"title"`
	UserID     string    `json:"userId"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewChangeEvent builds an event of the given type for game.
func NewChangeEvent(eventType string, game RetroGame) ChangeEvent {
	return ChangeEvent{
		Type:       eventType,
		ID:         game.ID,
		Platform:   game.Platform,
		Title:      game.Title,
		UserID:     game.UserID,
		OccurredAt: time.Now().UTC(),
	}
}
