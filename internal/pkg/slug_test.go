package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugifyChannelName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"My Cool Channel!", "my-cool-channel"},
		{"general", "general"},
		{"  Gaming & Fun  ", "gaming-fun"},
		{"already-slugged", "already-slugged"},
		{"UPPER_case 123", "upper-case-123"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SlugifyChannelName(tc.in), "input %q", tc.in)
	}
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "my-photo.jpg", SanitizeFileName("My Photo.JPG"))
	assert.Equal(t, "img_01.png", SanitizeFileName("img_01.png"))
	assert.Equal(t, "a-b.webp", SanitizeFileName("a  /  b.webp"))
}
