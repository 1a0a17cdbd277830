// Package tui is a minimal terminal workbench for composing and sending
// requests.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hermeshq/hermes/internal/app"
	"github.com/hermeshq/hermes/internal/codegen"
	"github.com/hermeshq/hermes/internal/core"
)

// Field identifies the focused input.
type Field int

const (
	FieldMethod Field = iota
	FieldURL
	FieldBody
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	focusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	statusOKStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusKOStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// responseMsg delivers the executed response back to the update loop.
type responseMsg struct {
	resp *core.ResponseRecord
}

// clearNotifyMsg clears a transient notification.
type clearNotifyMsg struct{}

// Model is the workbench model.
type Model struct {
	app *app.App

	focus       Field
	methodIndex int
	url         string
	body        string

	sending  bool
	response *core.ResponseRecord

	notification string

	width  int
	height int
}

// NewModel creates a workbench backed by the given app.
func NewModel(a *app.App) Model {
	return Model{app: a}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case responseMsg:
		m.sending = false
		m.response = msg.resp
		return m, nil

	case clearNotifyMsg:
		m.notification = ""
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit

	case tea.KeyTab:
		m.focus = (m.focus + 1) % 3
		return m, nil

	case tea.KeyShiftTab:
		m.focus = (m.focus + 2) % 3
		return m, nil

	case tea.KeyEnter:
		if m.focus == FieldBody {
			m.body += "\n"
			return m, nil
		}
		return m.send()

	case tea.KeyCtrlS:
		return m.send()

	case tea.KeyCtrlG:
		return m.copyCurl()

	case tea.KeyBackspace:
		switch m.focus {
		case FieldURL:
			m.url = trimLast(m.url)
		case FieldBody:
			m.body = trimLast(m.body)
		}
		return m, nil

	case tea.KeyLeft:
		if m.focus == FieldMethod {
			m.methodIndex = (m.methodIndex + len(core.Methods) - 1) % len(core.Methods)
		}
		return m, nil

	case tea.KeyRight, tea.KeySpace:
		if m.focus == FieldMethod {
			m.methodIndex = (m.methodIndex + 1) % len(core.Methods)
		}
		return m, nil

	case tea.KeyRunes:
		switch m.focus {
		case FieldURL:
			m.url += string(msg.Runes)
		case FieldBody:
			m.body += string(msg.Runes)
		}
		return m, nil
	}

	return m, nil
}

func (m Model) send() (tea.Model, tea.Cmd) {
	cfg, err := m.config()
	if err != nil {
		m.notification = err.Error()
		return m, notifyLater()
	}

	m.sending = true
	a := m.app
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		return responseMsg{resp: a.Send(ctx, cfg)}
	}
}

func (m Model) copyCurl() (tea.Model, tea.Cmd) {
	cfg, err := m.config()
	if err != nil {
		m.notification = err.Error()
		return m, notifyLater()
	}

	gen, _ := codegen.NewRegistry().Get(codegen.TargetCurl)
	if err := clipboard.WriteAll(gen.Generate(cfg)); err != nil {
		m.notification = "clipboard unavailable"
	} else {
		m.notification = "curl command copied"
	}
	return m, notifyLater()
}

func (m Model) config() (*core.RequestConfig, error) {
	if strings.TrimSpace(m.url) == "" {
		return nil, fmt.Errorf("enter a URL first")
	}
	cfg, err := core.NewRequestConfig(core.Methods[m.methodIndex], strings.TrimSpace(m.url))
	if err != nil {
		return nil, err
	}
	cfg.Body = m.body
	return cfg, nil
}

func notifyLater() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return clearNotifyMsg{}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("hermes"))
	b.WriteString("\n\n")

	b.WriteString(m.renderField(FieldMethod, "Method", core.Methods[m.methodIndex]))
	b.WriteString(m.renderField(FieldURL, "URL", m.url))
	b.WriteString(m.renderField(FieldBody, "Body", m.body))
	b.WriteString("\n")

	switch {
	case m.sending:
		b.WriteString(labelStyle.Render("sending..."))
		b.WriteString("\n")
	case m.response != nil:
		b.WriteString(m.renderResponse())
	}

	if m.notification != "" {
		b.WriteString("\n")
		b.WriteString(focusedStyle.Render(m.notification))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: next field • enter/ctrl+s: send • ctrl+g: copy curl • ctrl+c: quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderField(f Field, label, value string) string {
	prefix := "  "
	style := labelStyle
	if m.focus == f {
		prefix = "> "
		style = focusedStyle
	}
	return fmt.Sprintf("%s%s %s\n", prefix, style.Render(label+":"), value)
}

func (m Model) renderResponse() string {
	resp := m.response

	status := fmt.Sprintf("%d %s", resp.StatusCode, resp.StatusText)
	style := statusOKStyle
	if resp.IsTransportFailure() || !resp.IsSuccess() {
		style = statusKOStyle
	}

	var b strings.Builder
	b.WriteString(style.Render(status))
	b.WriteString(labelStyle.Render(fmt.Sprintf("  %dms  %dB", resp.ElapsedMillis, resp.SizeBytes)))
	b.WriteString("\n\n")

	body := resp.Body
	if max := m.height - 14; max > 0 {
		lines := strings.Split(body, "\n")
		if len(lines) > max {
			body = strings.Join(lines[:max], "\n") + "\n..."
		}
	}
	b.WriteString(body)
	b.WriteString("\n")

	return b.String()
}

func trimLast(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return string(runes[:len(runes)-1])
}
