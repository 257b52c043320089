package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-padlaunch/debug"
	"go-padlaunch/media"
	"go-padlaunch/midi"
	"go-padlaunch/session"
	"go-padlaunch/store"
	"go-padlaunch/theme"
	"go-padlaunch/widgets"
)

// cellWidth is the printed width of one grid cell, brackets included
const cellWidth = 10

// layoutBounds holds cached layout info
type layoutBounds struct {
	lpHelpTop    int
	lpHelpHeight int
}

// MediaStatus reports the load state of a media file (media.Loader)
type MediaStatus interface {
	Status(file string) (media.Status, error)
}

type Model struct {
	Manager   *session.Manager
	DeviceMgr *midi.DeviceManager
	Theme     *theme.Theme
	Media     MediaStatus
	// KeyboardBase returns the first pad note for a keyboard port
	KeyboardBase func(port string) int

	title      string
	cursorRow  int
	cursorCol  int
	quitting   bool
	showHelp   bool
	tooltip    string
	bounds     *layoutBounds
	controller midi.Controller // current controller (may be nil)
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

func NewModel(title string, manager *session.Manager, deviceMgr *midi.DeviceManager, th *theme.Theme) Model {
	return Model{
		Manager:      manager,
		DeviceMgr:    deviceMgr,
		Theme:        th,
		KeyboardBase: func(string) int { return 36 },
		title:        title,
		bounds:       &layoutBounds{},
	}
}

func ListenForUpdates(manager *session.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.Manager)}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg.String())

	case tea.MouseMsg:
		m.tooltip = m.hitTest(msg.X, msg.Y)

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		switch event.Type {
		case midi.DeviceConnected:
			debug.Log("tui", "device connected %s", event.ID)
			if event.Controller.Type() == midi.ControllerKeyboard {
				m.Manager.AddKeyboard(event.Controller, m.KeyboardBase(event.ID))
			} else {
				m.controller = event.Controller
				m.Manager.SetController(event.Controller)
			}
		case midi.DeviceDisconnected:
			debug.Log("tui", "device disconnected %s", event.ID)
			if m.controller != nil && m.controller.ID() == event.ID {
				// fall back to another connected Launchpad, if any
				m.controller = m.DeviceMgr.GetLaunchpad()
				m.Manager.SetController(m.controller)
			}
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

func (m Model) handleKey(key string) (tea.Model, tea.Cmd) {
	pad := m.Manager.Pad()
	rows, cols := 0, 0
	if pad != nil {
		rows, cols = pad.Rows(), pad.Cols()
	}

	switch key {
	case "q", "ctrl+c":
		m.quitting = true
		m.Manager.Close()
		return m, tea.Quit

	case "p":
		m.Manager.TogglePlay()
	case "+", "=":
		m.Manager.NudgeTempo(5)
	case "-", "_":
		m.Manager.NudgeTempo(-5)

	case "tab":
		m.Manager.NextPad()
		m.cursorRow, m.cursorCol = 0, 0

	case "h", "left":
		if m.cursorCol > 0 {
			m.cursorCol--
		}
	case "l", "right":
		if m.cursorCol < cols-1 {
			m.cursorCol++
		}
	case "k", "up":
		if m.cursorRow > 0 {
			m.cursorRow--
		}
	case "j", "down":
		if m.cursorRow < rows-1 {
			m.cursorRow++
		}

	case " ":
		m.Manager.HandleCell(m.cursorRow, m.cursorCol)
	case "enter":
		m.Manager.HandleRow(m.cursorRow)
	case "x":
		m.Manager.HandleColumn(m.cursorCol)
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m Model) hitTest(x, y int) string {
	if y >= m.bounds.lpHelpTop && y < m.bounds.lpHelpTop+m.bounds.lpHelpHeight {
		if tip, hit := m.Manager.Layout().HitTest(x, y-m.bounds.lpHelpTop); hit {
			return tip
		}
	}
	return ""
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	bar, playing, tempo := m.Manager.GetState()

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	tooltipStyle := lipgloss.NewStyle().
		Foreground(m.Theme.FG()).
		Background(m.Theme.Muted()).
		Padding(0, 1)

	playState := "STOP"
	if playing {
		playState = "PLAY"
	}
	deviceStatus := ""
	if m.controller != nil {
		deviceStatus = " LP:X"
	}
	header := headerStyle.Render(fmt.Sprintf("%s  %s  %3dbpm  bar:%03d %s%s",
		m.title, playState, tempo, bar, progressBar(m.Manager.Progress(), 8), deviceStatus))

	grid := m.renderGrid()
	lpView := widgets.RenderLaunchpad(m.Manager.Layout())
	help := dimStyle.Render("hjkl:nav  space:trigger  enter:row  x:stop column  tab:pad  p:play  +/-:tempo  ?:help  q:quit")
	if m.showHelp {
		help = m.renderHelp()
	}

	headerHeight := lipgloss.Height(header)
	gridHeight := lipgloss.Height(grid)
	m.bounds.lpHelpTop = 1 + headerHeight + 1 + gridHeight + 2
	m.bounds.lpHelpHeight = lipgloss.Height(lpView)

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(grid)
	out.WriteString("\n\n")
	out.WriteString(lpView)
	out.WriteString("\n\n")
	out.WriteString(help)

	if m.tooltip != "" {
		out.WriteString("\n")
		out.WriteString(tooltipStyle.Render(m.tooltip))
	}
	return out.String()
}

func (m Model) renderGrid() string {
	pad := m.Manager.Pad()
	if pad == nil {
		return "no pads"
	}
	reg := m.Manager.Pads()
	snap := m.Manager.Snapshot()
	sym := m.Theme.Symbols

	var tabs []string
	for i, p := range reg {
		name := p.Label()
		if i == m.Manager.PadIndex() {
			name = lipgloss.NewStyle().Foreground(m.Theme.Cursor()).Render("[" + name + "]")
		}
		tabs = append(tabs, name)
	}

	lines := []string{strings.Join(tabs, "  "), ""}
	for row := 0; row < pad.Rows(); row++ {
		var line strings.Builder
		for col := 0; col < pad.Cols(); col++ {
			id := pad.Cell(row, col)
			symbol, color := sym.CellEmpty, m.Theme.Muted()
			if id != "" {
				switch snap.Get(id) {
				case store.StateScheduled:
					symbol, color = sym.CellScheduled, m.Theme.Success()
				case store.StatePlaying:
					symbol, color = sym.CellPlaying, m.Theme.Active()
				case store.StateStopping:
					symbol, color = sym.CellStopping, m.Theme.Warning()
				default:
					symbol, color = sym.CellIdle, m.Theme.FG()
				}
				if m.failed(id) {
					color = m.Theme.Warning()
				}
			}
			text := fmt.Sprintf("%c %-6s", symbol, truncate(id, 6))
			if row == m.cursorRow && col == m.cursorCol {
				text = "[" + text + "]"
			} else {
				text = " " + text + " "
			}
			line.WriteString(lipgloss.NewStyle().Foreground(color).Width(cellWidth).Render(text))
		}
		lines = append(lines, line.String())
	}
	lines = append(lines, "", fmt.Sprintf("%c idle  %c queued  %c playing  %c stopping",
		sym.CellIdle, sym.CellScheduled, sym.CellPlaying, sym.CellStopping))
	return strings.Join(lines, "\n")
}

func (m Model) renderHelp() string {
	c := m.Manager.Colors()
	legend := widgets.RenderLegend([]widgets.Zone{
		{Name: "Idle", Color: c.Idle, Desc: "clip loaded, not playing"},
		{Name: "Queued", Color: c.Scheduled, Desc: "starts on the next bar (flashing)"},
		{Name: "Playing", Color: c.Playing, Desc: "press again to stop on the next bar (pulsing)"},
		{Name: "Stopping", Color: c.Stopping, Desc: "stops on the next bar (flashing)"},
		{Name: "Scene", Color: c.Scene, Desc: "launch the row, silence the rest of each column"},
		{Name: "Pads", Color: c.PadActive, Desc: "top row selects the pad"},
	})
	keys := widgets.RenderKeyHelp([]widgets.KeySection{
		{Title: "Grid", Keys: []widgets.KeyBinding{
			{Key: "hjkl/arrows", Desc: "move the cursor"},
			{Key: "space", Desc: "trigger the cell (empty cell stops its column)"},
			{Key: "enter", Desc: "launch the row"},
			{Key: "x", Desc: "stop the column on the next bar"},
			{Key: "tab", Desc: "next pad"},
		}},
		{Title: "Transport", Keys: []widgets.KeyBinding{
			{Key: "p", Desc: "play / stop everything"},
			{Key: "+ / -", Desc: "tempo up / down"},
			{Key: "q", Desc: "quit"},
		}},
	})
	return legend + "\n\n" + keys
}

// failed reports whether the clip's media could not be loaded
func (m Model) failed(clipID string) bool {
	if m.Media == nil {
		return false
	}
	c, ok := m.Manager.Clip(clipID)
	if !ok {
		return false
	}
	st, _ := m.Media.Status(c.File)
	return st == media.StatusFailed
}

func progressBar(p float64, width int) string {
	n := int(p * float64(width))
	if n > width {
		n = width
	}
	return strings.Repeat("▮", n) + strings.Repeat("▯", width-n)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
