package theme

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// LauncherTheme extends the default Fyne theme with a tighter layout
type LauncherTheme struct {
	fyne.Theme
}

// NewLauncherTheme creates a new launcher theme
func NewLauncherTheme() *LauncherTheme {
	return &LauncherTheme{
		Theme: theme.DefaultTheme(),
	}
}

// Color returns the color for the given name
func (t *LauncherTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary:
		return color.NRGBA{R: 0, G: 120, B: 212, A: 255}
	case theme.ColorNameFocus:
		return color.NRGBA{R: 0, G: 99, B: 177, A: 255}
	default:
		return t.Theme.Color(name, variant)
	}
}

// Size returns the size for the given name
func (t *LauncherTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return 4
	case theme.SizeNameScrollBar:
		return 8
	default:
		return t.Theme.Size(name)
	}
}
