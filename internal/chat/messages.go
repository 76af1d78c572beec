package chat

import (
	"encoding/json"
	"fmt"

	"github.com/abdul-hamid-achik/pplxchat/internal/config"
	"github.com/abdul-hamid-achik/pplxchat/internal/session"
)

// Inbound commands sent by a UI
const (
	CommandAsk             = "ask"
	CommandConfirmResponse = "confirmResponse"
	CommandClearHistory    = "clearHistory"
)

// Outbound commands posted to a UI
const (
	CommandResponse    = "response"
	CommandAgenticInfo = "agenticInfo"
	CommandLoadHistory = "loadHistory"
	CommandConfirm     = "confirm"
	CommandOpenFile    = "openFile"
	CommandBusy        = "busy"
)

// Inbound is any message a UI sends. Which fields are set depends on Command.
type Inbound struct {
	Command string `json:"command"`
	Text    string `json:"text,omitempty"`
	Model   string `json:"model,omitempty"`
	Mode    string `json:"mode,omitempty"`
	ID      string `json:"id,omitempty"`
	Answer  string `json:"answer,omitempty"`
}

// DecodeInbound parses one UI message
func DecodeInbound(data []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Inbound{}, fmt.Errorf("decode message: %w", err)
	}
	if in.Command == "" {
		return Inbound{}, fmt.Errorf("decode message: missing command")
	}
	return in, nil
}

// AskRequest is the payload of an ask command
type AskRequest struct {
	Text  string
	Model string
	Mode  string
}

// Agentic reports whether the response may be scanned for announced files
func (r AskRequest) Agentic() bool {
	return r.Mode == config.ModeAgentic
}

// AskRequest extracts the ask payload
func (in Inbound) AskRequest() AskRequest {
	return AskRequest{Text: in.Text, Model: in.Model, Mode: in.Mode}
}

// Message is anything posted to a UI
type Message interface {
	Name() string
}

// TextMessage carries response, agenticInfo and busy
type TextMessage struct {
	Command string `json:"command"`
	Text    string `json:"text"`
}

func (m TextMessage) Name() string { return m.Command }

// HistoryMessage carries loadHistory
type HistoryMessage struct {
	Command string             `json:"command"`
	History []session.ChatTurn `json:"history"`
}

func (m HistoryMessage) Name() string { return m.Command }

// ConfirmMessage asks a yes/no question identified by ID
type ConfirmMessage struct {
	Command string `json:"command"`
	ID      string `json:"id"`
	Text    string `json:"text"`
}

func (m ConfirmMessage) Name() string { return m.Command }

// OpenFileMessage shows a written file
type OpenFileMessage struct {
	Command string `json:"command"`
	Path    string `json:"path"`
	Text    string `json:"text"`
}

func (m OpenFileMessage) Name() string { return m.Command }

func Response(text string) TextMessage {
	return TextMessage{Command: CommandResponse, Text: text}
}

func AgenticInfo(text string) TextMessage {
	return TextMessage{Command: CommandAgenticInfo, Text: text}
}

// Busy reports progress; an empty text means idle
func Busy(text string) TextMessage {
	return TextMessage{Command: CommandBusy, Text: text}
}

func LoadHistory(turns []session.ChatTurn) HistoryMessage {
	if turns == nil {
		turns = []session.ChatTurn{}
	}
	return HistoryMessage{Command: CommandLoadHistory, History: turns}
}

func Confirm(id, text string) ConfirmMessage {
	return ConfirmMessage{Command: CommandConfirm, ID: id, Text: text}
}

func OpenFile(path, text string) OpenFileMessage {
	return OpenFileMessage{Command: CommandOpenFile, Path: path, Text: text}
}

// Sink receives messages for one UI
type Sink interface {
	Post(msg Message)
}

// SinkFunc adapts a function to Sink
type SinkFunc func(msg Message)

func (f SinkFunc) Post(msg Message) { f(msg) }
