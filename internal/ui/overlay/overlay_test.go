package overlay

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlace(t *testing.T) {
	tests := []struct {
		name   string
		w, h   int
		fg, bg string
		want   []string
	}{
		{
			name: "centered",
			w:    5, h: 3,
			fg:   "X",
			bg:   "AAAAA\nAAAAA\nAAAAA",
			want: []string{"AAAAA", "AAXAA", "AAAAA"},
		},
		{
			name: "pads short background",
			w:    4, h: 3,
			fg:   "XX",
			bg:   "AAAA",
			want: []string{"AAAA", " XX ", "    "},
		},
		{
			name: "larger than background starts at origin",
			w:    3, h: 2,
			fg:   "XXXXX",
			bg:   "AAA\nAAA",
			want: []string{"XXXXX", "AAA"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := strings.Split(Place(tt.w, tt.h, tt.fg, tt.bg), "\n")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlace_KeepsStyledBackground(t *testing.T) {
	bg := "\x1b[31mRRRRRR\x1b[0m"
	got := Place(6, 1, "XX", bg)
	assert.Contains(t, got, "XX")
	assert.Contains(t, got, "\x1b[31m")
}

func TestPlaceBottom(t *testing.T) {
	got := strings.Split(PlaceBottom(5, 4, 1, "X", "AAAAA\nAAAAA\nAAAAA\nAAAAA"), "\n")
	assert.Equal(t, []string{"AAAAA", "AAAAA", "AAXAA", "AAAAA"}, got)
}
