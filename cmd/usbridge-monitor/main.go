// Command usbridge-monitor is a small terminal dashboard that polls a
// running usbridged's status API and displays engine and host health: a
// tea.Model with periodic tick commands, lipgloss-styled panels, gopsutil
// host stats, and a clipboard-copy keybinding.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	pscpu "github.com/shirou/gopsutil/v3/cpu"
	psmem "github.com/shirou/gopsutil/v3/mem"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#000000")).
			Background(lipgloss.Color("#FFFF00")).
			Bold(true).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#9CA3AF")).
			Padding(0, 1)

	okStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#34D399"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))
	copyNotice = lipgloss.NewStyle().
			Background(lipgloss.Color("#10B981")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 1)
)

type statsMsg struct {
	raw map[string]any
	err error
	body string
}

type hostMsg struct {
	cpuPercent float64
	memPercent float64
}

type model struct {
	apiAddr string
	stats map[string]any
	statsBody string
	statsErr error
	cpuPercent float64
	memPercent float64
	copiedAt time.Time
	width int
	spinner spinner.Model
}

func initialModel(apiAddr string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#60A5FA"))
	return model{apiAddr: apiAddr, spinner: s}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(pollStats(m.apiAddr), pollHost(), tea.ClearScreen, m.spinner.Tick)
}

func pollStats(apiAddr string) tea.Cmd {
	return func() tea.Msg {
		resp, err := http.Get(fmt.Sprintf("http://%s/stats", apiAddr))
		if err != nil {
			return statsMsg{err: err}
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return statsMsg{err: err}
		}
		var parsed map[string]any
		if err := json.Unmarshal(body, &parsed); err != nil {
			return statsMsg{err: err}
		}
		return statsMsg{raw: parsed, body: string(body)}
	}
}

func pollHost() tea.Cmd {
	return func() tea.Msg {
		var cpuPct float64
		if pcts, err := pscpu.Percent(0, false); err == nil && len(pcts) > 0 {
			cpuPct = pcts[0]
		}
		var memPct float64
		if vm, err := psmem.VirtualMemory(); err == nil {
			memPct = vm.UsedPercent
		}
		return hostMsg{cpuPercent: cpuPct, memPercent: memPct}
	}
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "c":
			if m.statsBody != "" {
				if err := clipboard.WriteAll(m.statsBody); err == nil {
					m.copiedAt = time.Now()
				}
			}
			return m, nil
		}
		return m, nil

	case statsMsg:
		m.stats, m.statsErr, m.statsBody = msg.raw, msg.err, msg.body
		return m, tick()

	case hostMsg:
		m.cpuPercent, m.memPercent = msg.cpuPercent, msg.memPercent
		return m, nil

	case tickMsg:
		return m, tea.Batch(pollStats(m.apiAddr), pollHost())
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m model) View() string {
	header := headerStyle.Render(fmt.Sprintf(" usbridge-monitor %s ", m.apiAddr))

	var body string
	if m.statsErr != nil {
		body = errStyle.Render(fmt.Sprintf("status API unreachable: %v", m.statsErr))
	} else if m.stats == nil {
		body = fmt.Sprintf("%s %s", m.spinner.View(), helpStyle.Render("waiting for first poll..."))
	} else {
		status, _ := m.stats["status"].(string)
		statusRendered := okStyle.Render(status)
		if status == "ERROR" {
			statusRendered = errStyle.Render(status)
		} else if status == "STOP" || status == "READY" || status == "BOOT" {
			statusRendered = warnStyle.Render(status)
		}
		body = fmt.Sprintf(
			"status: %s\np2o latency: %v (max %v)\np2o audio enabled: %v\nframes processed: %v\nunderruns: %v overruns: %v\nmidi dropped in/out: %v/%v",
			statusRendered,
			m.stats["p2o_latency"], m.stats["p2o_max_latency"],
			m.stats["p2o_audio_enabled"],
			m.stats["frames_processed"],
			m.stats["underruns"], m.stats["overruns"],
			m.stats["midi_in_dropped"], m.stats["midi_out_dropped"],
		)
	}

	hostPanel := fmt.Sprintf("host cpu: %.1f%%\nhost mem: %.1f%%", m.cpuPercent, m.memPercent)

	footer := helpStyle.Render("q: quit c: copy stats JSON")
	if time.Since(m.copiedAt) < 2*time.Second {
		footer = copyNotice.Render(" copied! ") + " " + footer
	}

	return header + "\n\n" +
		panelStyle.Render(body) + "\n" +
		panelStyle.Render(hostPanel) + "\n\n" +
		footer
}

func main() {
	apiAddr := flag.String("api-addr", "localhost:8088", "usbridged status API address")
	flag.Parse()

	p := tea.NewProgram(initialModel(*apiAddr))
	if _, err := p.Run(); err != nil {
		fmt.Println("usbridge-monitor:", err)
	}
}
