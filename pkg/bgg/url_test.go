package bgg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseURL(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		expectedID int
		expectedOK bool
	}{
		{
			name:       "full url with slug",
			url:        "https://boardgamegeek.com/boardgame/342942/ark-nova",
			expectedID: 342942,
			expectedOK: true,
		},
		{
			name:       "no slug",
			url:        "https://boardgamegeek.com/boardgame/13",
			expectedID: 13,
			expectedOK: true,
		},
		{
			name:       "scheme optional",
			url:        "boardgamegeek.com/boardgame/13/catan",
			expectedID: 13,
			expectedOK: true,
		},
		{
			name:       "query string allowed",
			url:        "https://boardgamegeek.com/boardgame/13/catan?lang=en",
			expectedID: 13,
			expectedOK: true,
		},
		{
			name:       "surrounding whitespace",
			url:        "  https://boardgamegeek.com/boardgame/13  ",
			expectedID: 13,
			expectedOK: true,
		},
		{
			name:       "wrong item type",
			url:        "https://boardgamegeek.com/boardgameexpansion/123",
			expectedOK: false,
		},
		{
			name:       "wrong host",
			url:        "https://example.com/boardgame/13",
			expectedOK: false,
		},
		{
			name:       "empty",
			url:        "",
			expectedOK: false,
		},
		{
			name:       "not a url",
			url:        "catan",
			expectedOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ParseURL(tt.url)
			assert.Equal(t, tt.expectedOK, ok)
			if tt.expectedOK {
				assert.Equal(t, tt.expectedID, id)
			}
			assert.Equal(t, tt.expectedOK, IsValidURL(tt.url))
		})
	}
}
