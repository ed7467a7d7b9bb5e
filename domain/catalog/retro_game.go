// Package catalog holds the retro games catalog model: the stored game record,
// its per-language translation and the keys both are addressed by.
package catalog

import (
	"errors"
	"sort"
)

var (
	// ErrNotFound is returned when no record matches a key or query.
	ErrNotFound = errors.New("retro game not found")
	// ErrNotOwner is returned when a subject mutates a record it did not add.
	ErrNotOwner = errors.New("retro game is owned by another user")
)

// RetroGame is a catalog record. The catalog table is keyed by (platform, title).
type RetroGame struct {
	ID           int      `json:"id" dynamodbav:"id"`
	Title        string   `json:"title" dynamodbav:"title"`
	Genre        []string `json:"genre" dynamodbav:"genre"`
	Platform     string   `json:"platform" dynamodbav:"platform"`
	ReleaseDate  string   `json:"release_date" dynamodbav:"release_date"`
	Developer    string   `json:"developer" dynamodbav:"developer"`
	Publisher    string   `json:"publisher" dynamodbav:"publisher"`
	Description  string   `json:"description" dynamodbav:"description"`
	CoverArtPath string   `json:"cover_art_path" dynamodbav:"cover_art_path"`
	Screenshots  []string `json:"screenshots" dynamodbav:"screenshots"`
	Rating       float64  `json:"rating" dynamodbav:"rating"`
	Popularity   float64  `json:"popularity" dynamodbav:"popularity"`
	Multiplayer  bool     `json:"multiplayer" dynamodbav:"multiplayer"`
	AverageScore float64  `json:"average_score" dynamodbav:"average_score"`
	ReviewCount  int      `json:"review_count" dynamodbav:"review_count"`

	// UserID is the subject that added the record. Set server side only.
	UserID string `json:"userId,omitempty" dynamodbav:"userId,omitempty"`
}

// Key identifies a record in the catalog table.
type Key struct {
	Platform string
	Title    string
}

// Key returns the catalog key of the game.
func (g RetroGame) Key() Key {
	return Key{Platform: g.Platform, Title: g.Title}
}

// OwnedBy reports whether subject added the record.
func (g RetroGame) OwnedBy(subject string) bool {
	return subject != "" && g.UserID == subject
}

// textFields maps the stored name of every string-typed attribute to its field.
// Numeric, boolean and list attributes are deliberately absent.
var textFields = map[string]func(*RetroGame) *string{
	"title":          func(g *RetroGame) *string { return &g.Title },
	"platform":       func(g *RetroGame) *string { return &g.Platform },
	"release_date":   func(g *RetroGame) *string { return &g.ReleaseDate },
	"developer":      func(g *RetroGame) *string { return &g.Developer },
	"publisher":      func(g *RetroGame) *string { return &g.Publisher },
	"description":    func(g *RetroGame) *string { return &g.Description },
	"cover_art_path": func(g *RetroGame) *string { return &g.CoverArtPath },
	"userId":         func(g *RetroGame) *string { return &g.UserID },
}

// TextAttributeNames returns the stored names of all string attributes, sorted.
func TextAttributeNames() []string {
	names := make([]string, 0, len(textFields))
	for name := range textFields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TextAttribute returns the value of a string attribute by stored name.
func (g RetroGame) TextAttribute(name string) (string, bool) {
	field, ok := textFields[name]
	if !ok {
		return "", false
	}
	return *field(&g), true
}

// SetTextAttribute replaces a string attribute by stored name. It reports
// false when name is not a string attribute.
func (g *RetroGame) SetTextAttribute(name, value string) bool {
	field, ok := textFields[name]
	if !ok {
		return false
	}
	*field(g) = value
	return true
}

// Clone returns a deep copy so list attributes are not shared.
func (g RetroGame) Clone() RetroGame {
	c := g
	if g.Genre != nil {
		c.Genre = append([]string(nil), g.Genre...)
	}
	if g.Screenshots != nil {
		c.Screenshots = append([]string(nil), g.Screenshots...)
	}
	return c
}
