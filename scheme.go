package scenery

import (
	"os"
	"strconv"
	"strings"
)

// ColorScheme indicates whether the host environment prefers a light or a
// dark appearance, the desktop equivalent of the prefers-color-scheme media
// query.
type ColorScheme int

const (
	SchemeDark ColorScheme = iota
	SchemeLight
)

// SystemColorScheme guesses the host's preferred color scheme from
// environment hints. It checks, in order: the SCENERY_COLOR_SCHEME variable
// ("light" or "dark"), a "dark"/"light" suffix on GTK_THEME, and the
// terminal's COLORFGBG background index. When nothing matches, it reports
// SchemeDark.
//
// SystemColorScheme is the default SchemeFunc for SetBackground; pass your
// own to read the scheme from a toolkit or settings daemon instead.
func SystemColorScheme() ColorScheme {

	if scheme := strings.ToLower(os.Getenv("SCENERY_COLOR_SCHEME")); scheme != "" {
		if scheme == "light" {
			return SchemeLight
		}
		return SchemeDark
	}

	if theme := strings.ToLower(os.Getenv("GTK_THEME")); theme != "" {
		if strings.Contains(theme, "light") {
			return SchemeLight
		}
		if strings.Contains(theme, "dark") {
			return SchemeDark
		}
	}

	// COLORFGBG is "<fg>;<bg>"; background indices 0-6 and 8 are dark.
	if fgbg := os.Getenv("COLORFGBG"); fgbg != "" {
		parts := strings.Split(fgbg, ";")
		if bg, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			if bg == 7 || bg > 8 {
				return SchemeLight
			}
			return SchemeDark
		}
	}

	return SchemeDark
}
