package markdown

import (
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_NoTTY(t *testing.T) {
	r, err := New(40, "notty")
	require.NoError(t, err)
	assert.Equal(t, 40, r.Width())

	out, err := r.Render("# Keys\n\n| Key | Action |\n|---|---|\n| q | quit |\n")
	require.NoError(t, err)
	plain := ansi.Strip(out)
	assert.Contains(t, plain, "Keys")
	assert.Contains(t, plain, "quit")
}
