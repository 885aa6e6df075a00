// Package styles contains Lip Gloss style definitions.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/zjrosen/lineage/internal/config"
	"github.com/zjrosen/lineage/internal/diffview"
	"github.com/zjrosen/lineage/internal/git"
)

var (
	// Text hierarchy
	TextPrimaryColor   = lipgloss.AdaptiveColor{Light: "#24292F", Dark: "#CCCCCC"}
	TextSecondaryColor = lipgloss.AdaptiveColor{Light: "#57606A", Dark: "#BBBBBB"}
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#8C959F", Dark: "#696969"} // hints, help, footers

	BorderDefaultColor = lipgloss.AdaptiveColor{Light: "#D0D7DE", Dark: "#696969"}
	BorderFocusColor   = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#54A0FF"}

	StatusSuccessColor = lipgloss.AdaptiveColor{Light: "#1A7F37", Dark: "#73F59F"}
	StatusWarningColor = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#FECA57"}
	StatusErrorColor   = lipgloss.AdaptiveColor{Light: "#CF222E", Dark: "#FF8787"}

	SelectionIndicatorColor = lipgloss.AdaptiveColor{Light: "#0969DA", Dark: "#FFFFFF"}
	SelectionBgColor        = lipgloss.AdaptiveColor{Light: "#DDF4FF", Dark: "#2D3436"}

	CommitIDColor = lipgloss.AdaptiveColor{Light: "#9A6700", Dark: "#FECA57"}
	SpinnerColor  = lipgloss.AdaptiveColor{Light: "#8250DF", Dark: "#FFFFFF"}
)

// Styles built from the colors above. Rebuilt by Apply.
var (
	SelectionIndicatorStyle lipgloss.Style
	SelectedRowStyle        lipgloss.Style
	MarkedRowStyle          lipgloss.Style
	MutedStyle              lipgloss.Style
	SecondaryStyle          lipgloss.Style
	CommitIDStyle           lipgloss.Style
	ErrorStyle              lipgloss.Style
	StatusBarStyle          lipgloss.Style
	SpinnerStyle            lipgloss.Style
	FileStatusStyles        map[git.FileStatus]lipgloss.Style
)

func init() {
	rebuildStyles()
}

// Apply configures light/dark detection and color overrides from the theme
// config. An empty mode asks the terminal for its background.
func Apply(theme config.ThemeConfig) {
	switch theme.Mode {
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	default:
		lipgloss.SetHasDarkBackground(termenv.HasDarkBackground())
	}

	if theme.Muted != "" {
		TextMutedColor = solid(theme.Muted)
		BorderDefaultColor = solid(theme.Muted)
	}
	if theme.Error != "" {
		StatusErrorColor = solid(theme.Error)
	}
	if theme.Success != "" {
		StatusSuccessColor = solid(theme.Success)
	}
	rebuildStyles()
}

func solid(hex string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: hex, Dark: hex}
}

func rebuildStyles() {
	SelectionIndicatorStyle = lipgloss.NewStyle().Bold(true).Foreground(SelectionIndicatorColor)
	SelectedRowStyle = lipgloss.NewStyle().Foreground(TextPrimaryColor).Background(SelectionBgColor)
	MarkedRowStyle = lipgloss.NewStyle().Foreground(BorderFocusColor)
	MutedStyle = lipgloss.NewStyle().Foreground(TextMutedColor)
	SecondaryStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor)
	CommitIDStyle = lipgloss.NewStyle().Foreground(CommitIDColor)
	ErrorStyle = lipgloss.NewStyle().Foreground(StatusErrorColor).Bold(true)
	StatusBarStyle = lipgloss.NewStyle().Foreground(TextSecondaryColor).Padding(0, 1)
	SpinnerStyle = lipgloss.NewStyle().Foreground(SpinnerColor)

	FileStatusStyles = map[git.FileStatus]lipgloss.Style{
		git.StatusAdded:      lipgloss.NewStyle().Foreground(StatusSuccessColor),
		git.StatusModified:   lipgloss.NewStyle().Foreground(StatusWarningColor),
		git.StatusDeleted:    lipgloss.NewStyle().Foreground(StatusErrorColor),
		git.StatusRenamed:    lipgloss.NewStyle().Foreground(BorderFocusColor),
		git.StatusCopied:     lipgloss.NewStyle().Foreground(BorderFocusColor),
		git.StatusTypeChange: lipgloss.NewStyle().Foreground(TextSecondaryColor),
		git.StatusUntracked:  lipgloss.NewStyle().Foreground(TextMutedColor),
	}
}

// DiffStyles returns the diff palette in terms of the current theme.
func DiffStyles() diffview.Styles {
	st := diffview.DefaultStyles()
	st.Add = st.Add.Foreground(StatusSuccessColor)
	st.Delete = st.Delete.Foreground(StatusErrorColor)
	st.AddWord = st.AddWord.Foreground(StatusSuccessColor)
	st.DeleteWord = st.DeleteWord.Foreground(StatusErrorColor)
	st.Gutter = st.Gutter.Foreground(TextMutedColor)
	st.Separator = st.Separator.Foreground(BorderDefaultColor)
	st.Empty = st.Empty.Foreground(TextMutedColor)
	return st
}
