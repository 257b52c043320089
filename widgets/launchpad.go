package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// PadConfig is one button of the Launchpad mirror
type PadConfig struct {
	Color   [3]uint8
	Tooltip string
}

// LaunchpadLayout is a full Launchpad X surface. Grid row 0 is the bottom row.
type LaunchpadLayout struct {
	TopRow   [8]PadConfig
	Grid     [8][8]PadConfig
	RightCol [8]PadConfig
}

// Zone is a legend entry
type Zone struct {
	Name  string
	Color [3]uint8
	Desc  string
}

// RenderPad renders a single colored pad
func RenderPad(color [3]uint8) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render("■")
}

// RenderPadRow renders a row of colored pads with spacing
func RenderPadRow(colors [][3]uint8) string {
	var out strings.Builder
	for i, c := range colors {
		if i > 0 {
			out.WriteString(" ")
		}
		out.WriteString(RenderPad(c))
	}
	return out.String()
}

// RenderLaunchpad renders the layout with the top row first and row 0 last,
// the way the hardware is laid out
func RenderLaunchpad(layout LaunchpadLayout) string {
	var lines []string

	top := make([][3]uint8, 0, 8)
	for _, p := range layout.TopRow {
		top = append(top, p.Color)
	}
	lines = append(lines, RenderPadRow(top))

	for row := 7; row >= 0; row-- {
		colors := make([][3]uint8, 0, 9)
		for col := 0; col < 8; col++ {
			colors = append(colors, layout.Grid[row][col].Color)
		}
		colors = append(colors, layout.RightCol[row].Color)
		lines = append(lines, RenderPadRow(colors))
	}
	return strings.Join(lines, "\n")
}

// HitTest maps a character position inside RenderLaunchpad output to the
// pad tooltip under it
func (l LaunchpadLayout) HitTest(x, y int) (string, bool) {
	if x < 0 || y < 0 || x%2 != 0 {
		return "", false
	}
	col := x / 2
	if y == 0 {
		if col < 8 {
			return l.TopRow[col].Tooltip, true
		}
		return "", false
	}
	row := 8 - y
	if row < 0 || row > 7 {
		return "", false
	}
	switch {
	case col < 8:
		return l.Grid[row][col].Tooltip, true
	case col == 8:
		return l.RightCol[row].Tooltip, true
	}
	return "", false
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color [3]uint8, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderPad(color), name, desc)
}

// RenderLegend renders one line per zone
func RenderLegend(zones []Zone) string {
	lines := make([]string, 0, len(zones))
	for _, z := range zones {
		lines = append(lines, RenderLegendItem(z.Color, z.Name, z.Desc))
	}
	return strings.Join(lines, "\n")
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
