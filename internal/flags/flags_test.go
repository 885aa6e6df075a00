package flags

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnabled(t *testing.T) {
	var unset *Registry
	tests := []struct {
		name string
		r    *Registry
		flag string
		want bool
	}{
		{"switched on", New(map[string]bool{FlagNoMouse: true}), FlagNoMouse, true},
		{"switched off", New(map[string]bool{FlagNoMouse: false}), FlagNoMouse, false},
		{"absent", New(map[string]bool{FlagNoMouse: true}), FlagSkipRemoveConfirm, false},
		{"nil map", New(nil), FlagNoMouse, false},
		{"nil registry", unset, FlagNoMouse, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.r.Enabled(tt.flag))
		})
	}
}

func TestNew_CopiesInput(t *testing.T) {
	in := map[string]bool{FlagNoMouse: true}
	r := New(in)
	in[FlagNoMouse] = false

	require.True(t, r.Enabled(FlagNoMouse))
}

func TestAll_IsACopy(t *testing.T) {
	r := New(map[string]bool{FlagSkipRemoveConfirm: true})

	got := r.All()
	got[FlagSkipRemoveConfirm] = false
	got[FlagNoMouse] = true

	require.True(t, r.Enabled(FlagSkipRemoveConfirm))
	require.False(t, r.Enabled(FlagNoMouse))
	require.Equal(t, map[string]bool{FlagSkipRemoveConfirm: true}, r.All())

	var unset *Registry
	require.Empty(t, unset.All())
}

func TestUnknown(t *testing.T) {
	r := New(map[string]bool{
		FlagSkipRemoveConfirm: true,
		"zeta":                true,
		"alpha":               false,
	})
	require.Equal(t, []string{"alpha", "zeta"}, r.Unknown())

	var unset *Registry
	require.Empty(t, unset.Unknown())
	require.Empty(t, New(nil).Unknown())
}
