// Package tui is the interactive chat screen of the soundlink CLI. It is
// built on bubbletea and lipgloss; engine notifications reach the model as
// messages sent through the running program.
package tui

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"Soundlink/pkg/notify"
	"Soundlink/pkg/state"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("57")).
			Padding(0, 1)

	sentStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	receivedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			PaddingLeft(1)

	stateStyles = map[state.State]lipgloss.Style{
		state.Running:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		state.Sending:   lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		state.Receiving: lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
		state.Paused:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	}
)

// Engine is the part of the engine the chat screen drives.
type Engine interface {
	Send(b []byte) error
	Start() error
	Stop(onComplete func()) (<-chan struct{}, error)
	State() state.State
	MaxPayloadLength() int
	RandomPayload(n int) []byte
	Volume() float64
	SetVolume(v float64) error
}

// EventMsg carries an engine notification into the model.
type EventMsg notify.Event

// StopCompleteMsg arrives once a stop requested with ctrl+s has finished.
type StopCompleteMsg struct{}

// Handlers forwards every notification to send, usually tea.Program.Send.
func Handlers(send func(tea.Msg)) notify.Handlers {
	post := func(ev notify.Event) { send(EventMsg(ev)) }
	return notify.Handlers{
		OnReceived: func(p []byte) { post(notify.Event{Kind: notify.Received, Payload: p}) },
		OnSending:  func(p []byte) { post(notify.Event{Kind: notify.Sending, Payload: p}) },
		OnSent:     func(p []byte) { post(notify.Event{Kind: notify.Sent, Payload: p}) },
		OnReceiving: func() {
			post(notify.Event{Kind: notify.Receiving})
		},
		OnStateChanged: func(old, new state.State) {
			post(notify.Event{Kind: notify.StateChanged, Old: old, New: new})
		},
		OnVolumeChanged:    func(v float64) { post(notify.Event{Kind: notify.VolumeChanged, Level: v}) },
		OnAuthStateChanged: func(err error) { post(notify.Event{Kind: notify.AuthStateChanged, Err: err}) },
		OnError:            func(err error) { post(notify.Event{Kind: notify.Error, Err: err}) },
	}
}

type line struct {
	at    time.Time
	style lipgloss.Style
	text  string
}

const maxLines = 500

type Model struct {
	engine Engine
	title  string
	now    func() time.Time

	lines    []line
	input    []rune
	state    state.State
	stopping bool
	volume   float64
	err      error

	width  int
	height int
}

func New(e Engine, title string) Model {
	return Model{
		engine: e,
		title:  title,
		now:    time.Now,
		state:  e.State(),
		volume: e.Volume(),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		m.handleEvent(notify.Event(msg))

	case StopCompleteMsg:
		m.stopping = false
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		if len(m.input) > 0 && m.send([]byte(string(m.input))) {
			m.input = m.input[:0]
		}
	case tea.KeyCtrlR:
		m.send(m.engine.RandomPayload(0))
	case tea.KeyCtrlS:
		return m.toggle()
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyUp:
		m.adjustVolume(0.1)
	case tea.KeyDown:
		m.adjustVolume(-0.1)
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}
	return m, nil
}

func (m *Model) send(b []byte) bool {
	if err := m.engine.Send(b); err != nil {
		m.err = err
		return false
	}
	m.err = nil
	return true
}

// toggle starts a stopped engine and stops any other. The stop completes
// asynchronously with a StopCompleteMsg.
func (m Model) toggle() (tea.Model, tea.Cmd) {
	if m.stopping {
		return m, nil
	}

	if m.state == state.Stopped || m.state == state.NotCreated {
		m.err = m.engine.Start()
		return m, nil
	}

	complete := make(chan struct{})
	if _, err := m.engine.Stop(func() { close(complete) }); err != nil {
		m.err = err
		return m, nil
	}
	m.err = nil
	m.stopping = true
	return m, func() tea.Msg {
		<-complete
		return StopCompleteMsg{}
	}
}

func (m *Model) adjustVolume(delta float64) {
	v := min(1, max(0, m.volume+delta))
	if err := m.engine.SetVolume(v); err != nil {
		m.err = err
	}
}

func (m *Model) handleEvent(ev notify.Event) {
	switch ev.Kind {
	case notify.Sent:
		m.add(sentStyle, "> "+Format(ev.Payload))
	case notify.Received:
		if ev.Payload == nil {
			m.add(errorStyle, "< (corrupted frame)")
		} else {
			m.add(receivedStyle, "< "+Format(ev.Payload))
		}
	case notify.StateChanged:
		m.state = ev.New
	case notify.VolumeChanged:
		m.volume = ev.Level
	case notify.AuthStateChanged:
		if ev.Err != nil {
			m.add(errorStyle, "license: "+ev.Err.Error())
		} else {
			m.add(dimStyle, "license approved")
		}
	case notify.Error:
		m.add(errorStyle, ev.Err.Error())
	}
}

func (m *Model) add(style lipgloss.Style, text string) {
	m.lines = append(m.lines, line{at: m.now(), style: style, text: text})
	if len(m.lines) > maxLines {
		m.lines = m.lines[len(m.lines)-maxLines:]
	}
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n\n")

	lines := m.lines
	if room := m.height - 6; m.height > 0 && len(lines) > room {
		lines = lines[len(lines)-max(room, 0):]
	}
	if len(lines) == 0 {
		sb.WriteString(dimStyle.Render("No messages yet. Type and press enter to send."))
		sb.WriteString("\n")
	}
	for _, l := range lines {
		sb.WriteString(dimStyle.Render(l.at.Format("15:04:05")))
		sb.WriteString(" ")
		sb.WriteString(l.style.Render(l.text))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	limit := m.engine.MaxPayloadLength()
	sb.WriteString(fmt.Sprintf("%s %s", lipgloss.NewStyle().Bold(true).Render(">"), string(m.input)))
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  %d/%d B", len(string(m.input)), limit)))
	sb.WriteString("\n")

	if m.err != nil {
		sb.WriteString(errorStyle.Render(m.err.Error()))
		sb.WriteString("\n")
	}

	st, ok := stateStyles[m.state]
	if !ok {
		st = dimStyle
	}
	label := st.Render(m.state.String())
	if m.stopping {
		label = dimStyle.Render("stopping…")
	}
	status := fmt.Sprintf("%s  volume %3.0f%%  enter send · ctrl+r random · ctrl+s start/stop · ↑/↓ volume · esc quit",
		label, m.volume*100)
	sb.WriteString(statusBarStyle.Render(status))
	return sb.String()
}

// Format shows printable UTF-8 payloads as text and anything else as hex.
func Format(b []byte) string {
	if utf8.Valid(b) && !strings.ContainsFunc(string(b), func(r rune) bool { return !unicode.IsPrint(r) }) {
		return string(b)
	}
	return hex.EncodeToString(b)
}
