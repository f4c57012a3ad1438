package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"scifi", "#scifi"},
		{"#scifi", "#scifi"},
		{"  #scifi  ", "#scifi"},
		{"##scifi", "#scifi"},
		{"# space opera", "#space opera"},
		{"#", ""},
		{"   ", ""},
		{"SciFi", "#SciFi"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, TagName(tt.in))
		})
	}
}

func TestTagNames_DropsBlanksAndRepeats(t *testing.T) {
	got := TagNames([]string{"scifi", "#scifi", "", "#", "classic", " classic "})
	assert.Equal(t, []string{"#scifi", "#classic"}, got)
}

func TestTagNames_EmptyInputGivesEmptySlice(t *testing.T) {
	got := TagNames(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestText(t *testing.T) {
	assert.Equal(t, "the lord of the rings", Text("The  Lord of the Rings!"))
	assert.Equal(t, "jrr tolkien", Text("J.R.R. Tolkien"))
	assert.Equal(t, "dune", Text("  Dune\t"))
	assert.Equal(t, "", Text("?!"))
}

func TestReviewKey(t *testing.T) {
	assert.Equal(t, ReviewKey("Dune", "Frank Herbert"), ReviewKey("dune.", "  frank   HERBERT"))
	assert.NotEqual(t, ReviewKey("Dune", "Frank Herbert"), ReviewKey("Dune Messiah", "Frank Herbert"))
}
