package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/common-nighthawk/go-figure"

	"github.com/urbanarchive/submiteval/rules"
)

// BannerOptions configures the startup banner display.
type BannerOptions struct {
	ShowBanner  bool // Show ASCII art logo
	ShowVersion bool // Show version information
	ShowLicense bool // Show license information
}

// DefaultBannerOptions returns default banner configuration.
func DefaultBannerOptions() BannerOptions {
	return BannerOptions{
		ShowBanner:  true,
		ShowVersion: true,
		ShowLicense: true,
	}
}

// PrintBanner displays the submiteval logo, version/license information,
// and the categories this build carries an actively maintained rule set
// for, so an operator picking --category at the prompt knows what's
// actually exercised before a run starts.
func PrintBanner(w io.Writer, version string, opts BannerOptions) {
	if w == nil {
		return
	}

	showCategories := opts.ShowVersion || opts.ShowLicense

	if !opts.ShowBanner {
		// Simple text-only banner
		if opts.ShowVersion {
			fmt.Fprintf(w, "Submiteval v%s\n", version)
		}
		if opts.ShowLicense {
			fmt.Fprintf(w, "Apache-2.0 License | https://github.com/urbanarchive/submiteval\n")
		}
		if showCategories {
			fmt.Fprintln(w, activeCategoriesLine())
			fmt.Fprintln(w)
		}
		return
	}

	// Generate ASCII art using go-figure
	asciiArt := GetASCIILogo()
	fmt.Fprintln(w, asciiArt)

	// Version and license info
	if opts.ShowVersion {
		fmt.Fprintf(w, "Submiteval v%s\n", version)
	}

	if opts.ShowLicense {
		fmt.Fprintln(w, "Apache-2.0 License | https://github.com/urbanarchive/submiteval")
	}

	if showCategories {
		fmt.Fprintln(w, activeCategoriesLine())
	}

	// Empty line separator
	fmt.Fprintln(w)
}

// activeCategoriesLine renders the categories this build actively
// maintains a rule set for, e.g.
// "Active categories: C1 Plan Urbanistic General, C3 Plan Urbanistic de Detaliu".
func activeCategoriesLine() string {
	parts := make([]string, 0, len(rules.ActiveCategories))
	for _, c := range rules.ActiveCategories {
		parts = append(parts, fmt.Sprintf("C%d %s", c, rules.CategoryName(c)))
	}
	return "Active categories: " + strings.Join(parts, ", ")
}

// GetASCIILogo generates the ASCII art logo for "Submiteval".
func GetASCIILogo() string {
	// Use "standard" font for compact output
	fig := figure.NewFigure("Submiteval", "standard", true)
	return fig.String()
}

// GetCompactBanner returns a single-line banner for non-TTY output,
// including the active-category summary so redirected/logged output still
// carries it.
func GetCompactBanner(version string) string {
	return fmt.Sprintf("Submiteval v%s | Apache-2.0 | https://github.com/urbanarchive/submiteval | %s",
		version, activeCategoriesLine())
}

// ShouldShowBanner determines if banner should be displayed.
func ShouldShowBanner(isTTY bool, noBannerFlag bool) bool {
	// Never show if --no-banner is set
	if noBannerFlag {
		return false
	}
	// Show full banner only in TTY
	return isTTY
}
