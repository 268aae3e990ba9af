// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 New Earth Lab

package cmd

import (
	"fmt"
	"time"

	"github.com/New-Earth-Lab/interbus/pkg/interbus"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	watchIntervalMs int
	watchFormat     string
)

var watchCmd = &cobra.Command{
	Use:   "watch <device> <register>",
	Short: "Poll a register and display its value live",
	Long: `Repeatedly read one register and display the value in a live view.

Each poll is a full RDCMD/DATAGRAM transaction; failed polls are counted and
the last error is shown without stopping the loop. Press q to quit.`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().IntVarP(&watchIntervalMs, "interval", "i", 500, "Poll interval in milliseconds")
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "hex", "Value format: hex, u8, u16, u32, f32, ascii")
}

// Styles
var (
	watchTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)
	watchLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	watchValueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	watchErrorStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	watchHelpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Messages
type pollResultMsg struct {
	payload []byte
	err     error
	elapsed time.Duration
}

type pollTickMsg struct{}

type watchModel struct {
	bus      *interbus.Bus
	connInfo string
	dest     byte
	register byte
	interval time.Duration
	format   string

	spin        spinner.Model
	lastPayload []byte
	lastErr     error
	lastElapsed time.Duration
	polls       int
	failures    int
	quitting    bool
}

func newWatchModel(bus *interbus.Bus, connInfo string, dest, register byte) watchModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("62"))

	return watchModel{
		bus:      bus,
		connInfo: connInfo,
		dest:     dest,
		register: register,
		interval: time.Duration(watchIntervalMs) * time.Millisecond,
		format:   watchFormat,
		spin:     s,
	}
}

func (m watchModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.poll())
}

// poll runs one read transaction off the UI loop.
func (m watchModel) poll() tea.Cmd {
	bus, dest, register := m.bus, m.dest, m.register
	return func() tea.Msg {
		start := time.Now()
		payload, err := bus.ReadRegister(dest, register)
		return pollResultMsg{payload: payload, err: err, elapsed: time.Since(start)}
	}
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case pollResultMsg:
		m.polls++
		m.lastElapsed = msg.elapsed
		if msg.err != nil {
			m.failures++
			m.lastErr = msg.err
		} else {
			m.lastErr = nil
			m.lastPayload = msg.payload
		}
		return m, tea.Tick(m.interval, func(time.Time) tea.Msg { return pollTickMsg{} })

	case pollTickMsg:
		return m, m.poll()
	}

	var cmd tea.Cmd
	m.spin, cmd = m.spin.Update(msg)
	return m, cmd
}

func (m watchModel) View() string {
	if m.quitting {
		return ""
	}

	view := watchTitleStyle.Render("Interbus Watch") + "\n\n"
	view += fmt.Sprintf("%s %s\n", watchLabelStyle.Render("Connection:"), m.connInfo)
	view += fmt.Sprintf("%s device 0x%02X, register 0x%02X, every %s\n\n",
		watchLabelStyle.Render("Polling:"), m.dest, m.register, m.interval)

	switch {
	case m.polls == 0:
		view += fmt.Sprintf("%s waiting for first reply...\n", m.spin.View())
	case m.lastErr != nil:
		view += fmt.Sprintf("%s %s\n", m.spin.View(), watchErrorStyle.Render(m.lastErr.Error()))
	default:
		value, err := formatPayload(m.lastPayload, m.format)
		if err != nil {
			value = interbus.FormatHex(m.lastPayload)
		}
		view += fmt.Sprintf("%s %s\n", m.spin.View(), watchValueStyle.Render(value))
		view += fmt.Sprintf("  %s % X\n", watchLabelStyle.Render("raw:"), m.lastPayload)
	}

	view += fmt.Sprintf("\n%s polls=%d failures=%d last-rtt=%s\n",
		watchLabelStyle.Render("Stats:"), m.polls, m.failures, m.lastElapsed.Round(time.Microsecond))
	view += watchHelpStyle.Render("\nq: quit")
	return view
}

func runWatch(cmd *cobra.Command, args []string) error {
	dest, err := cfg.ResolveDevice(args[0])
	if err != nil {
		return err
	}
	register, err := parseRegister(args[1])
	if err != nil {
		return err
	}

	bus, info, err := openBus()
	if err != nil {
		return err
	}
	defer bus.Close()

	model := newWatchModel(bus, info, dest, register)
	_, err = tea.NewProgram(model).Run()
	return err
}
