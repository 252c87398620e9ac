package render

import (
	"statbars/internal/stats"

	"github.com/gdamore/tcell/v2"
)

// Palette holds the glyph and colours a statistic is drawn with. Emoji
// icons carry their own colours, so only the bar cells are tinted.
type Palette struct {
	Icon  string
	Fill  tcell.Color
	Trail tcell.Color // the "remove" colour of the trailing chunk
	Empty tcell.Color
}

// Palettes maps the named statistics to their look.
var Palettes = map[stats.Stat]Palette{
	stats.StatHealth: {
		Icon:  "❤️",
		Fill:  tcell.ColorRed,
		Trail: tcell.ColorYellow,
		Empty: tcell.ColorMaroon,
	},
	stats.StatMana: {
		Icon:  "💧",
		Fill:  tcell.ColorBlue,
		Trail: tcell.ColorAqua,
		Empty: tcell.ColorNavy,
	},
	stats.StatStamina: {
		Icon:  "⚡",
		Fill:  tcell.ColorGreen,
		Trail: tcell.ColorLime,
		Empty: tcell.ColorDarkGreen,
	},
	stats.StatExperience: {
		Icon:  "⭐",
		Fill:  tcell.ColorPurple,
		Trail: tcell.ColorFuchsia,
		Empty: tcell.ColorIndigo,
	},
}

var fallbackPalette = Palette{
	Icon:  "▪",
	Fill:  tcell.ColorWhite,
	Trail: tcell.ColorSilver,
	Empty: tcell.ColorGray,
}

// PaletteFor returns the palette of key, or a neutral grey one.
func PaletteFor(key stats.Stat) Palette {
	if p, ok := Palettes[key]; ok {
		return p
	}
	return fallbackPalette
}
