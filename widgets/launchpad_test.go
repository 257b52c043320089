package widgets

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestRenderLaunchpadShape(t *testing.T) {
	var layout LaunchpadLayout
	out := RenderLaunchpad(layout)
	if h := lipgloss.Height(out); h != 9 {
		t.Fatalf("height = %d, want 9", h)
	}
	lines := strings.Split(out, "\n")
	if n := strings.Count(lines[1], "■"); n != 9 {
		t.Fatalf("grid row has %d pads, want 9", n)
	}
	if n := strings.Count(lines[0], "■"); n != 8 {
		t.Fatalf("top row has %d pads, want 8", n)
	}
}

func TestHitTest(t *testing.T) {
	var layout LaunchpadLayout
	layout.TopRow[1].Tooltip = "pad 2"
	layout.Grid[7][0].Tooltip = "top left"
	layout.Grid[0][7].Tooltip = "bottom right"
	layout.RightCol[0].Tooltip = "scene 1"

	tests := []struct {
		x, y int
		want string
		hit  bool
	}{
		{2, 0, "pad 2", true},
		{0, 1, "top left", true},
		{14, 8, "bottom right", true},
		{16, 8, "scene 1", true},
		{1, 1, "", false},
		{0, 9, "", false},
		{18, 4, "", false},
	}
	for _, tt := range tests {
		got, hit := layout.HitTest(tt.x, tt.y)
		if got != tt.want || hit != tt.hit {
			t.Errorf("HitTest(%d,%d) = %q %v, want %q %v", tt.x, tt.y, got, hit, tt.want, tt.hit)
		}
	}
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{{
		Title: "Keys",
		Keys:  []KeyBinding{{Key: "space", Desc: "trigger"}},
	}})
	if !strings.Contains(out, "Keys") || !strings.Contains(out, "space") || !strings.Contains(out, "trigger") {
		t.Fatalf("help = %q", out)
	}
}
