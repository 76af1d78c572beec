package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/abdul-hamid-achik/pplxchat/internal/config"
	"github.com/abdul-hamid-achik/pplxchat/internal/ui/highlight"
)

// maxPreviewLines caps how much of a written file is shown inline
const maxPreviewLines = 30

var (
	mdRenderer  *glamour.TermRenderer
	highlighter = highlight.New(true)
)

func init() {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		// no markdown rendering
		return
	}
	mdRenderer = r
}

// renderMarkdown renders markdown text, falling back to plain text on error
func renderMarkdown(content string) string {
	if mdRenderer == nil {
		return content
	}
	rendered, err := mdRenderer.Render(content)
	if err != nil {
		return content
	}
	return strings.Trim(rendered, "\n")
}

// View renders the entire TUI
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}
	if !m.ready {
		return "\n  " + spinnerStyle.Render(GetSpinnerFrame(0)) + " Starting pplxchat..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

// renderHeader renders the title, mode and model
func (m Model) renderHeader() string {
	title := headerTitleStyle.Render("pplxchat")

	modeStyle := modeChatStyle
	if m.mode == config.ModeAgentic {
		modeStyle = modeAgenticStyle
	}
	mode := modeStyle.Render(" [" + m.mode + "]")
	model := headerModelStyle.Render("Model: " + m.modelName)

	leftPart := title + mode
	availWidth := max(m.width-lipgloss.Width(leftPart)-lipgloss.Width(model)-4, 0)
	return headerStyle.Width(m.width).Render(leftPart + strings.Repeat(" ", availWidth) + model)
}

// renderFooter renders the status bar and the input line or the overwrite question
func (m Model) renderFooter() string {
	var b strings.Builder
	b.WriteString(m.renderStatusBar())
	b.WriteString("\n")

	if m.state == StateConfirm {
		line := warningStyle.Render(iconWarning+" ") + truncate(m.confirmQuestion, max(m.width-30, 20)) +
			confirmPromptStyle.Render("  [y]es [n]o [a]lways ne[v]er")
		b.WriteString(footerStyle.Width(m.width).Render(line))
		return b.String()
	}

	prompt := inputPromptStyle.Render(iconUser + " ")
	b.WriteString(footerStyle.Width(m.width).Render(prompt + m.textInput.View()))
	return b.String()
}

func (m Model) renderStatusBar() string {
	var parts []string

	switch m.state {
	case StateBusy:
		text := m.busyText
		if text == "" {
			text = "Working..."
		}
		parts = append(parts, spinnerStyle.Render(GetSpinnerFrame(m.spinnerFrame)+" "+text))
	case StateConfirm:
		parts = append(parts, warningStyle.Render("Overwrite "+m.confirmPath+"?"))
	case StateEditing:
		parts = append(parts, infoStyle.Render("Editing..."))
	}

	switch m.state {
	case StateConfirm:
		parts = append(parts, statusHintStyle.Render("y/n/a/v · Esc = no"))
	default:
		parts = append(parts, statusHintStyle.Render("Tab mode · /help"))
	}
	return statusBarStyle.Width(m.width).Padding(0, 1).Render(strings.Join(parts, "   "))
}

// renderContent renders every block for the viewport
func (m Model) renderContent() string {
	var b strings.Builder
	for i, block := range *m.blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(renderBlock(block))
		b.WriteString("\n")
	}
	return b.String()
}

func renderBlock(block ContentBlock) string {
	switch block.Type {
	case BlockUser:
		return userPrefixStyle.Render(iconUser+" ") + userStyle.Render(block.Content)
	case BlockAssistant:
		return assistantStyle.Render(renderMarkdown(block.Content))
	case BlockAgenticInfo:
		return agenticInfoStyle.Render(iconAgentic + " " + block.Content)
	case BlockFile:
		return renderFilePreview(block.Path, block.Content)
	case BlockError:
		return errorStyle.Render(iconError + " " + block.Content)
	case BlockWarning:
		return warningStyle.Render(iconWarning + " " + block.Content)
	default:
		return infoStyle.Render(iconInfo + " " + block.Content)
	}
}

func renderFilePreview(path, content string) string {
	var b strings.Builder
	header := path
	if lang := highlight.Language(path); lang != "" {
		header = fmt.Sprintf("%s (%s)", path, lang)
	}
	b.WriteString(filePathStyle.Render(header))

	lines := strings.Split(highlighter.HighlightFile(path, content), "\n")
	extra := 0
	if len(lines) > maxPreviewLines {
		extra = len(lines) - maxPreviewLines
		lines = lines[:maxPreviewLines]
	}
	for _, line := range lines {
		b.WriteString("\n")
		b.WriteString(fileGutterStyle.Render(iconIndent+" ") + line)
	}
	if extra > 0 {
		b.WriteString("\n")
		b.WriteString(fileGutterStyle.Render(fmt.Sprintf("%s … %d more lines", iconIndent, extra)))
	}
	return b.String()
}
