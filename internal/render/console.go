// internal/render/console.go
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/tamzrod/inverter-monitor/internal/dashboard"
	"github.com/tamzrod/inverter-monitor/internal/status"
)

// Highlight is how long a freshly updated field stays highlighted.
const Highlight = time.Second

const (
	colorCyan       = "#8BE9FD"
	colorComment    = "#6272A4"
	colorForeground = "#F8F8F2"
	colorGreen      = "#50FA7B"
	colorYellow     = "#F1FA8C"
	colorRed        = "#FF5555"
	colorPurple     = "#BD93F9"
)

type consoleStyles struct {
	title, section, label, value, fresh, mild, strong, panel lipgloss.Style
}

func newConsoleStyles() consoleStyles {
	return consoleStyles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorCyan)),
		section: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorPurple)),
		label: lipgloss.NewStyle().
			Width(26).
			Foreground(lipgloss.Color(colorComment)),
		value: lipgloss.NewStyle().
			Foreground(lipgloss.Color(colorForeground)),
		fresh: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorGreen)),
		mild: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(colorYellow)),
		strong: lipgloss.NewStyle().
			Bold(true).
			Blink(true).
			Foreground(lipgloss.Color(colorRed)),
		panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(colorPurple)).
			Padding(0, 1),
	}
}

type section struct {
	title  string
	fields []dashboard.Field
}

var sections = []section{
	{"AC Output", []dashboard.Field{
		dashboard.FieldACOutputPower, dashboard.FieldOutputApparentPower, dashboard.FieldLoadPercentage,
		dashboard.FieldLoadAmpere, dashboard.FieldACOutputVoltage, dashboard.FieldACOutputFrequency,
	}},
	{"Solar", []dashboard.Field{
		dashboard.FieldPVPower, dashboard.FieldPVVoltage, dashboard.FieldPVChargingPower,
	}},
	{"Battery", []dashboard.Field{
		dashboard.FieldBatteryCapacity, dashboard.FieldBatteryVoltage, dashboard.FieldBatteryChargingCurrent,
		dashboard.FieldBatteryDischargeCurrent, dashboard.FieldHeatSinkTemp,
	}},
	{"Grid", []dashboard.Field{
		dashboard.FieldGridVoltage, dashboard.FieldGridFrequency, dashboard.FieldBusVoltage,
	}},
	{"System", []dashboard.Field{
		dashboard.FieldStatusCode, dashboard.FieldStatusBits, dashboard.FieldStatusBinary,
		dashboard.FieldFanBatteryOffset, dashboard.FieldEEPROMFirmware, dashboard.FieldReserved,
		dashboard.FieldLastUpdateTime, dashboard.FieldLastReadingTime,
	}},
}

// Console draws the dashboard to a terminal on every Flush.
type Console struct {
	*Memory

	mu     sync.Mutex
	out    io.Writer
	now    func() time.Time
	styles consoleStyles
	clear  bool
}

// NewConsole creates a console renderer writing to out.
// clear redraws in place using ANSI home/clear sequences.
func NewConsole(out io.Writer, now func() time.Time, clear bool) *Console {
	if now == nil {
		now = time.Now
	}
	return &Console{
		Memory: NewMemory(now),
		out:    out,
		now:    now,
		styles: newConsoleStyles(),
		clear:  clear,
	}
}

// Flush redraws the whole dashboard.
func (c *Console) Flush() {
	view := c.View()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.clear {
		_, _ = io.WriteString(c.out, "\033[H\033[2J")
	}
	_, _ = io.WriteString(c.out, view+"\n")
}

// View renders the current state.
func (c *Console) View() string {
	s := c.State()
	now := c.now()
	st := c.styles

	var b strings.Builder

	clock, _ := s.Display(dashboard.FieldCurrentTime)
	countdown, _ := s.Display(dashboard.FieldCountdown)
	b.WriteString(st.title.Render("Solar Inverter"))
	b.WriteString(st.label.UnsetWidth().Render(fmt.Sprintf("  %s  next refresh in %ss", clock, countdown)))
	b.WriteString("\n")

	b.WriteString(c.banner(s))
	b.WriteString("\n")

	for _, sec := range sections {
		b.WriteString("\n")
		b.WriteString(st.section.Render(sec.title))
		b.WriteString("\n")
		for _, f := range sec.fields {
			b.WriteString(st.label.Render(string(f)))
			b.WriteString(c.field(s, f, now))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(st.section.Render("Flows"))
	b.WriteString("\n")
	b.WriteString(flowLine(s.Flows))

	return st.panel.Render(b.String())
}

func (c *Console) banner(s State) string {
	st := c.styles

	modeText := dashboard.Placeholder
	if s.Mode != nil {
		modeText = fmt.Sprintf("%s (%s)", s.Mode.Label, s.Mode.Description)
	}
	conn, ok := s.Display(dashboard.FieldLastReadingTime)
	if !ok {
		conn = dashboard.Placeholder
	}

	line := fmt.Sprintf("Mode: %s  |  %s", modeText, conn)
	switch s.Alert {
	case status.AlertMild:
		return st.mild.Render(line)
	case status.AlertStrong:
		return st.strong.Render(line)
	}
	return st.value.Render(line)
}

func (c *Console) field(s State, f dashboard.Field, now time.Time) string {
	text, ok := s.Display(f)
	if !ok {
		text = dashboard.Placeholder
	}
	if at, seen := s.Updated[f]; seen && now.Sub(at) < Highlight {
		return c.styles.fresh.Render(text)
	}
	return c.styles.value.Render(text)
}

func flowLine(f dashboard.Flows) string {
	mark := func(on bool, name string) string {
		if on {
			return "● " + name
		}
		return "○ " + name
	}

	arrow := ""
	switch {
	case f.Charging() && f.Discharging():
		arrow = "  ↕"
	case f.Charging():
		arrow = "  ↓ charging"
	case f.Discharging():
		arrow = "  ↑ discharging"
	}

	return strings.Join([]string{
		mark(f.Solar, "solar"),
		mark(f.Output, "output"),
		mark(f.Grid, "grid"),
		mark(f.BatteryDischarge, "battery out"),
		mark(f.BatteryCharge, "battery in"),
	}, "  ") + arrow
}
