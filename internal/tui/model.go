package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/abdul-hamid-achik/pplxchat/internal/chat"
	"github.com/abdul-hamid-achik/pplxchat/internal/config"
	"github.com/abdul-hamid-achik/pplxchat/internal/logger"
	"github.com/abdul-hamid-achik/pplxchat/internal/permissions"
	"github.com/abdul-hamid-achik/pplxchat/internal/session"
)

// tuiLog is a prefixed logger for TUI events
var tuiLog = logger.WithPrefix("TUI")

// AppState represents the current state of the application
type AppState int

const (
	StateStarting AppState = iota // TUI is initializing
	StateIdle                     // Waiting for user input
	StateBusy                     // An ask is in flight
	StateConfirm                  // Waiting for an overwrite answer
	StateEditing                  // An editor owns the terminal
)

// BlockType represents the type of content block
type BlockType int

const (
	BlockUser        BlockType = iota // User message
	BlockAssistant                    // Model response
	BlockAgenticInfo                  // File action notice
	BlockFile                         // Written file preview
	BlockError                        // Error message
	BlockInfo                         // Info message
	BlockWarning                      // Warning message
)

// ContentBlock represents a piece of content in the conversation
type ContentBlock struct {
	Type    BlockType
	Content string
	Path    string // BlockFile only
}

// modelCallbacks holds callbacks that need to survive model copies
type modelCallbacks struct {
	onAsk   func(chat.AskRequest)
	onClear func()
	onReady func()
}

// Model is the main Bubble Tea model for the TUI
type Model struct {
	width  int
	height int
	ready  bool

	state     AppState
	modelName string
	mode      string
	models    []string

	blocks *[]ContentBlock // Pointer to survive model copies

	viewport  viewport.Model
	textInput textinput.Model

	busyText     string
	spinnerFrame int

	// pending overwrite question
	confirmPath     string
	confirmQuestion string
	confirmReply    chan<- permissions.Decision

	callbacks *modelCallbacks

	quitting bool
}

// NewModel creates a new TUI model
func NewModel(modelName, mode string, models []string) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask something..."
	ti.Prompt = "" // We render our own prompt in the footer
	ti.Focus()
	ti.CharLimit = 0
	ti.Width = 50

	if mode != config.ModeAgentic {
		mode = config.ModeChat
	}

	blocks := make([]ContentBlock, 0)
	return Model{
		state:     StateStarting,
		modelName: modelName,
		mode:      mode,
		models:    models,
		blocks:    &blocks,
		textInput: ti,
		callbacks: &modelCallbacks{},
	}
}

// SetAskCallback sets what runs when the user submits a prompt. It is called
// on its own goroutine.
func (m *Model) SetAskCallback(fn func(chat.AskRequest)) {
	m.callbacks.onAsk = fn
}

// SetClearCallback sets what runs for /clear
func (m *Model) SetClearCallback(fn func()) {
	m.callbacks.onClear = fn
}

// SetOnReady sets the callback for when the TUI has its first window size
func (m *Model) SetOnReady(fn func()) {
	m.callbacks.onReady = fn
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Mode returns the current chat mode
func (m Model) Mode() string {
	return m.mode
}

// ModelName returns the model used for the next ask
func (m Model) ModelName() string {
	return m.modelName
}

// State returns the current application state
func (m Model) State() AppState {
	return m.state
}

// Blocks returns a copy of the conversation blocks
func (m Model) Blocks() []ContentBlock {
	return append([]ContentBlock(nil), *m.blocks...)
}

// AddBlock adds a content block to the conversation
func (m *Model) AddBlock(block ContentBlock) {
	*m.blocks = append(*m.blocks, block)
	m.updateViewportContent()
	m.viewport.GotoBottom()
}

// ClearBlocks clears all content blocks
func (m *Model) ClearBlocks() {
	*m.blocks = []ContentBlock{}
	m.updateViewportContent()
}

func (m *Model) loadHistory(turns []session.ChatTurn) {
	blocks := make([]ContentBlock, 0, len(turns))
	for _, t := range turns {
		typ := BlockAssistant
		if t.Role == session.RoleUser {
			typ = BlockUser
		}
		blocks = append(blocks, ContentBlock{Type: typ, Content: t.Content})
	}
	*m.blocks = blocks
	m.updateViewportContent()
	m.viewport.GotoBottom()
}

func (m *Model) updateViewportContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderContent())
}

// toggleMode switches between chat and agentic
func (m *Model) toggleMode() {
	if m.mode == config.ModeAgentic {
		m.mode = config.ModeChat
	} else {
		m.mode = config.ModeAgentic
	}
}

// IsQuitting returns true if the model is quitting
func (m Model) IsQuitting() bool {
	return m.quitting
}

// GetConversationText returns the conversation as plain text
func (m *Model) GetConversationText() string {
	var b strings.Builder
	for _, block := range *m.blocks {
		switch block.Type {
		case BlockUser:
			b.WriteString("User: ")
			b.WriteString(block.Content)
			b.WriteString("\n\n")
		case BlockAssistant:
			b.WriteString("Assistant: ")
			b.WriteString(block.Content)
			b.WriteString("\n\n")
		case BlockAgenticInfo:
			b.WriteString("[" + block.Content + "]\n\n")
		}
	}
	return strings.TrimSpace(b.String())
}
