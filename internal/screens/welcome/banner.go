package welcome

import (
	"charm.land/lipgloss/v2"

	"github.com/abhisek/mathstep/internal/ui/theme"
)

const bannerArt = `
 ███╗   ███╗ █████╗ ████████╗██╗  ██╗███████╗████████╗███████╗██████╗
 ████╗ ████║██╔══██╗╚══██╔══╝██║  ██║██╔════╝╚══██╔══╝██╔════╝██╔══██╗
 ██╔████╔██║███████║   ██║   ███████║███████╗   ██║   █████╗  ██████╔╝
 ██║╚██╔╝██║██╔══██║   ██║   ██╔══██║╚════██║   ██║   ██╔══╝  ██╔═══╝
 ██║ ╚═╝ ██║██║  ██║   ██║   ██║  ██║███████║   ██║   ███████╗██║
 ╚═╝     ╚═╝╚═╝  ╚═╝   ╚═╝   ╚═╝  ╚═╝╚══════╝   ╚═╝   ╚══════╝╚═╝`

const bannerCompact = "M A T H S T E P"

// bannerMinWidth is the narrowest terminal that fits bannerArt.
const bannerMinWidth = 72

// RenderBanner returns the mathstep banner styled in the primary color,
// falling back to a compact form on narrow terminals.
func RenderBanner(width int) string {
	style := lipgloss.NewStyle().
		Foreground(theme.Primary).
		Bold(true)

	if width < bannerMinWidth {
		return style.Render(bannerCompact)
	}
	return style.Render(bannerArt)
}
