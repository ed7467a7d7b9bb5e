package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleGame() RetroGame {
	return RetroGame{
		ID:           1,
		Title:        "Super Mario Bros.",
		Genre:        []string{"Platformer"},
		Platform:     "NES",
		ReleaseDate:  "1985-09-13",
		Developer:    "Nintendo",
		Publisher:    "Nintendo",
		Description:  "Save the princess.",
		CoverArtPath: "/covers/smb.png",
		Screenshots:  []string{"/shots/smb-1.png"},
		Rating:       9.5,
		Popularity:   98,
		Multiplayer:  true,
		AverageScore: 9.1,
		ReviewCount:  1200,
		UserID:       "user-1",
	}
}

func TestRetroGame_TextAttributes(t *testing.T) {
	t.Run("Should read and write string attributes by stored name", func(t *testing.T) {
		g := sampleGame()

		v, ok := g.TextAttribute("title")
		assert.True(t, ok)
		assert.Equal(t, "Super Mario Bros.", v)

		assert.True(t, g.SetTextAttribute("platform", "Famicom"))
		assert.Equal(t, "Famicom", g.Platform)
	})

	t.Run("Should reject non-string attributes", func(t *testing.T) {
		g := sampleGame()

		for _, name := range []string{"id", "genre", "screenshots", "rating", "multiplayer", "review_count"} {
			_, ok := g.TextAttribute(name)
			assert.False(t, ok, name)
			assert.False(t, g.SetTextAttribute(name, "x"), name)
		}
	})

	t.Run("Should list names in a stable order", func(t *testing.T) {
		names := TextAttributeNames()
		assert.Len(t, names, 8)
		assert.Equal(t, "cover_art_path", names[0])
		assert.Contains(t, names, "title")
		assert.Contains(t, names, "platform")
	})
}

func TestRetroGame_Clone(t *testing.T) {
	g := sampleGame()
	c := g.Clone()
	c.Genre[0] = "Action"
	c.Screenshots[0] = "other.png"

	assert.Equal(t, "Platformer", g.Genre[0])
	assert.Equal(t, "/shots/smb-1.png", g.Screenshots[0])
}

func TestRetroGame_OwnedBy(t *testing.T) {
	g := sampleGame()

	assert.True(t, g.OwnedBy("user-1"))
	assert.False(t, g.OwnedBy("user-2"))
	assert.False(t, RetroGame{}.OwnedBy(""))
}

func TestAllHits(t *testing.T) {
	hit := Localized{Status: CacheHit}
	miss := Localized{Status: CacheMiss}

	assert.True(t, AllHits([]Localized{hit, hit}))
	assert.False(t, AllHits([]Localized{hit, miss}))
	assert.False(t, AllHits(nil))
}
