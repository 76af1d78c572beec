package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abdul-hamid-achik/pplxchat/internal/chat"
	"github.com/abdul-hamid-achik/pplxchat/internal/permissions"
)

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Header: 1 line, Footer: 2 lines (status bar + input line)
		viewportHeight := max(m.height-3-1, 1)

		if !m.ready {
			m.viewport = viewport.New(m.width, viewportHeight)
			m.textInput.Width = m.width - 4
			m.ready = true
			m.state = StateIdle
			m.updateViewportContent()
			return m, m.signalReady()
		}
		m.viewport.Width = m.width
		m.viewport.Height = viewportHeight
		m.textInput.Width = m.width - 4
		m.updateViewportContent()
		return m, nil

	case PostMsg:
		return m.handlePost(msg.Message)

	case ConfirmRequestMsg:
		m.state = StateConfirm
		m.confirmPath = msg.Path
		m.confirmQuestion = msg.Question
		m.confirmReply = msg.Reply
		m.textInput.Blur()
		return m, nil

	case PreviewMsg:
		m.AddBlock(ContentBlock{Type: BlockFile, Path: msg.Path, Content: msg.Content})
		return m, nil

	case EditMsg:
		prev := m.state
		m.state = StateEditing
		done := msg.Done
		return m, tea.ExecProcess(msg.Cmd, func(err error) tea.Msg {
			done <- err
			return editorExitedMsg{prev: prev}
		})

	case editorExitedMsg:
		if m.state == StateEditing {
			m.state = msg.prev
		}
		return m, nil

	case TickMsg:
		if m.state == StateBusy {
			m.spinnerFrame++
			return m, tickCmd()
		}
		return m, nil

	case QuitMsg:
		return m.quit()
	}

	m.textInput, cmd = m.textInput.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func tickCmd() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(time.Time) tea.Msg {
		return TickMsg{}
	})
}

// signalReady runs the onReady callback off the event loop
func (m Model) signalReady() tea.Cmd {
	callbacks := m.callbacks
	return func() tea.Msg {
		if callbacks.onReady != nil {
			callbacks.onReady()
		}
		return nil
	}
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	// never leave an ask blocked on a question nobody will answer
	m.answerConfirm(permissions.DecisionDeny)
	m.quitting = true
	return m, tea.Quit
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m.quit()
	}

	switch m.state {
	case StateConfirm:
		if msg.Type == tea.KeyEsc {
			return m.handleConfirmKey(permissions.DecisionDeny)
		}
		if decision, ok := permissions.ParseAnswer(msg.String()); ok {
			return m.handleConfirmKey(decision)
		}
		return m, nil
	case StateEditing, StateStarting:
		return m, nil
	}

	switch msg.Type {
	case tea.KeyTab:
		m.toggleMode()
		return m, nil

	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyEnter:
		input := strings.TrimSpace(m.textInput.Value())
		if input == "" {
			return m, nil
		}
		m.textInput.Reset()

		if strings.HasPrefix(input, "/") {
			return m.handleCommand(input)
		}

		if m.state != StateIdle {
			m.AddBlock(ContentBlock{Type: BlockWarning, Content: "Still waiting for the previous response."})
			return m, nil
		}

		m.AddBlock(ContentBlock{Type: BlockUser, Content: input})
		m.state = StateBusy
		m.busyText = "Sending..."

		req := chat.AskRequest{Text: input, Model: m.modelName, Mode: m.mode}
		if onAsk := m.callbacks.onAsk; onAsk != nil {
			go onAsk(req)
		}
		return m, tickCmd()
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *Model) answerConfirm(decision permissions.Decision) {
	if m.confirmReply == nil {
		return
	}
	select {
	case m.confirmReply <- decision:
	default:
	}
	m.confirmReply = nil
	m.confirmPath = ""
	m.confirmQuestion = ""
}

func (m Model) handleConfirmKey(decision permissions.Decision) (tea.Model, tea.Cmd) {
	tuiLog.Debug("overwrite %s: decision %d", m.confirmPath, decision)
	m.answerConfirm(decision)
	m.state = StateBusy
	m.textInput.Focus()
	return m, tickCmd()
}

// handleCommand runs a slash command
func (m Model) handleCommand(input string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/exit", "/quit":
		return m.quit()

	case "/clear":
		if m.state != StateIdle {
			m.AddBlock(ContentBlock{Type: BlockWarning, Content: "Wait for the current response before clearing."})
			return m, nil
		}
		if onClear := m.callbacks.onClear; onClear != nil {
			go onClear()
		}
		return m, nil

	case "/model":
		if len(fields) == 1 {
			m.AddBlock(ContentBlock{Type: BlockInfo, Content: fmt.Sprintf("Model: %s (available: %s)", m.modelName, strings.Join(m.models, ", "))})
			return m, nil
		}
		m.modelName = fields[1]
		if !m.knownModel(fields[1]) {
			m.AddBlock(ContentBlock{Type: BlockWarning, Content: fmt.Sprintf("Model %s is not in the known list; using it anyway.", fields[1])})
		} else {
			m.AddBlock(ContentBlock{Type: BlockInfo, Content: "Model set to " + fields[1]})
		}
		return m, nil

	case "/mode":
		m.toggleMode()
		m.AddBlock(ContentBlock{Type: BlockInfo, Content: "Mode: " + m.mode})
		return m, nil

	case "/help":
		m.AddBlock(ContentBlock{Type: BlockInfo, Content: helpText})
		return m, nil
	}

	m.AddBlock(ContentBlock{Type: BlockWarning, Content: "Unknown command: " + fields[0]})
	return m, nil
}

const helpText = `Enter send · Tab toggle chat/agentic · PgUp/PgDn scroll
/model [name]  show or set the model
/mode          toggle chat/agentic
/clear         clear the history
/exit          quit`

func (m Model) knownModel(name string) bool {
	for _, known := range m.models {
		if known == name {
			return true
		}
	}
	return len(m.models) == 0
}

// handlePost applies one conversation message
func (m Model) handlePost(msg chat.Message) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case chat.TextMessage:
		switch msg.Command {
		case chat.CommandResponse:
			m.AddBlock(ContentBlock{Type: BlockAssistant, Content: msg.Text})
		case chat.CommandAgenticInfo:
			m.AddBlock(ContentBlock{Type: BlockAgenticInfo, Content: msg.Text})
		case chat.CommandBusy:
			return m.setBusy(msg.Text)
		}

	case chat.HistoryMessage:
		m.loadHistory(msg.History)

	case chat.OpenFileMessage:
		m.AddBlock(ContentBlock{Type: BlockFile, Path: msg.Path, Content: msg.Text})
	}
	return m, nil
}

func (m Model) setBusy(text string) (tea.Model, tea.Cmd) {
	m.busyText = text
	if m.state == StateConfirm || m.state == StateEditing {
		return m, nil
	}
	if text == "" {
		m.state = StateIdle
		return m, nil
	}
	wasBusy := m.state == StateBusy
	m.state = StateBusy
	if wasBusy {
		return m, nil
	}
	return m, tickCmd()
}
