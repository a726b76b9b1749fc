package home

import (
	"charm.land/lipgloss/v2"

	"github.com/kilohertztli/Mathenique/internal/ui/theme"
)

// MascotVariant selects which mascot art to display.
type MascotVariant int

const (
	MascotIdle     MascotVariant = iota // Default violet
	MascotCheering                      // Gold, star eyes — lessons completed
)

const mascotIdle = `┌─────┐
│ ◉ ◉ │
│  ▽  │
│ +−× │
└─────┘`

const mascotCheering = `┌─────┐
│ ★ ★ │
│  ▿  │
│ +−× │
└─╥═╥─┘
  ╚═╝`

// RenderMascot returns the mascot ASCII art for the given variant.
func RenderMascot(variant MascotVariant) string {
	art := mascotIdle
	fg := theme.Primary
	if variant == MascotCheering {
		art = mascotCheering
		fg = theme.Gold
	}

	return lipgloss.NewStyle().
		Foreground(fg).
		Render(art)
}
