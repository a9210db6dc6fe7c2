package adapter_bubbletea

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/ionut-t/textcore/adapter-bubbletea/highlighter"
	"github.com/ionut-t/textcore/core"
)

const (
	messageDuration     = 3 * time.Second
	yankHighlightDelay  = 150 * time.Millisecond
	cursorBlinkInterval = 530 * time.Millisecond
)

type Theme struct {
	EditModeStyle          lipgloss.Style
	SelectModeStyle        lipgloss.Style
	StatusLineStyle        lipgloss.Style
	CommandLineStyle       lipgloss.Style
	MessageStyle           lipgloss.Style
	ErrorStyle             lipgloss.Style
	LineNumberStyle        lipgloss.Style
	CurrentLineNumberStyle lipgloss.Style
	SelectionStyle         lipgloss.Style
	SearchHighlightStyle   lipgloss.Style
	HighlightYankStyle     lipgloss.Style
	CursorStyle            lipgloss.Style
	PlaceholderStyle       lipgloss.Style
}

var DefaultTheme = Theme{
	EditModeStyle:          lipgloss.NewStyle().Background(lipgloss.Color("26")).Foreground(lipgloss.Color("255")),
	SelectModeStyle:        lipgloss.NewStyle().Background(lipgloss.Color("127")).Foreground(lipgloss.Color("255")),
	StatusLineStyle:        lipgloss.NewStyle().Background(lipgloss.Color("236")).Foreground(lipgloss.Color("255")),
	CommandLineStyle:       lipgloss.NewStyle().Background(lipgloss.Color("235")).Foreground(lipgloss.Color("255")),
	MessageStyle:           lipgloss.NewStyle().Foreground(lipgloss.Color("34")),
	ErrorStyle:             lipgloss.NewStyle().Foreground(lipgloss.Color("208")),
	LineNumberStyle:        lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Width(4).Align(lipgloss.Right),
	CurrentLineNumberStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Width(4).Align(lipgloss.Right),
	SelectionStyle:         lipgloss.NewStyle().Background(lipgloss.Color("237")),
	SearchHighlightStyle:   lipgloss.NewStyle().Background(lipgloss.Color("58")),
	HighlightYankStyle:     lipgloss.NewStyle().Background(lipgloss.Color("220")).Foreground(lipgloss.Color("0")).Bold(true),
	CursorStyle:            lipgloss.NewStyle().Reverse(true),
	PlaceholderStyle:       lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
}

type CursorMode int

const (
	CursorStatic CursorMode = iota
	CursorBlink
)

type Model struct {
	buffer           *core.Buffer
	viewport         viewport.Model
	width            int
	height           int
	leftCol          int
	showLineNumbers  bool
	showStatusLine   bool
	theme            Theme
	err              error
	message          string
	clearMsgCancel   context.CancelFunc
	yanked           bool
	highlighter      *highlighter.Highlighter
	language         string
	highlighterTheme string
	isFocused        bool
	placeholder      string
	cursorMode       CursorMode
	blinkID          int
}

// ErrorMsg reports a failed clipboard operation.
type ErrorMsg struct {
	ID    core.ErrorId
	Error error
}

// SaveMsg carries the content that was just marked as saved (Ctrl+S).
// Writing it somewhere is up to the parent model.
type SaveMsg struct {
	Content string
}

// ChangeMsg is emitted after every committed edit, undo or redo.
type ChangeMsg struct {
	Version uint64
	Changes []core.Change
}

type YankMsg struct {
	Lines int
	Mode  core.SelectionMode
}

type PasteMsg struct {
	Chars int
}

type DeleteMsg struct {
	Chars int
}

type UndoMsg struct {
	Version uint64
}

type RedoMsg struct {
	Version uint64
}

// ReloadMsg is emitted when the content is replaced wholesale.
type ReloadMsg struct{}

type SearchResultsMsg struct {
	Positions []core.Position
}

type signalMsg struct {
	signal core.Signal
}

type clearMsg struct{}

type clearYankMsg struct{}

type cursorBlinkMsg struct {
	id int
}

// New creates an editor with the default buffer configuration.
func New(width, height int) Model {
	return NewWithConfig(width, height, core.DefaultConfig())
}

// NewWithConfig creates an editor whose buffer uses cfg. The viewport
// height in cfg is overridden by height minus the status and message lines.
func NewWithConfig(width, height int, cfg core.Config) Model {
	vp := viewport.New(width, height-2)

	cfg.ViewportHeight = max(1, height-2)
	buffer := core.New(cfg, &clipboardImpl{})

	return Model{
		buffer:          buffer,
		viewport:        vp,
		width:           width,
		height:          height,
		showLineNumbers: true,
		showStatusLine:  true,
		theme:           DefaultTheme,
		isFocused:       false,
	}
}

// Buffer exposes the underlying buffer for operations the model does not wrap.
func (m *Model) Buffer() *core.Buffer {
	return m.buffer
}

// SetSize sets the width and height of the editor, including the status
// and message lines.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(1, height-2)
	m.buffer.SetViewportHeight(m.viewport.Height)
	m.renderVisibleSlice()
}

// SetContent replaces the text and resets history.
func (m *Model) SetContent(content string) {
	m.buffer.SetContent(content)
	m.leftCol = 0
	if m.highlighter != nil {
		m.highlighter.Invalidate()
	}
	m.renderVisibleSlice()
}

func (m *Model) SetBytes(content []byte) {
	m.SetContent(string(content))
}

func (m *Model) GetCurrentContent() string {
	return m.buffer.Content()
}

func (m *Model) GetSavedContent() string {
	return m.buffer.GetSavedContent()
}

// HasChanges reports whether the text differs from the last saved content.
func (m *Model) HasChanges() bool {
	return m.buffer.IsModified()
}

func (m *Model) IsEmpty() bool {
	return m.buffer.TotalLen() == 0
}

func (m *Model) SetReadOnly(readOnly bool) {
	m.buffer.SetReadOnly(readOnly)
}

func (m *Model) SetTabSpaceCount(n int) {
	m.buffer.SetTabSpaceCount(n)
}

func (m *Model) WithTheme(theme Theme) {
	m.theme = theme
}

// SetLanguage enables syntax highlighting for language with the named
// chroma style.
func (m *Model) SetLanguage(language string, theme string) {
	m.language = language
	m.highlighterTheme = theme
	m.highlighter = highlighter.New(language, theme)
	m.renderVisibleSlice()
}

func (m *Model) ShowLineNumbers(show bool) {
	m.showLineNumbers = show
}

func (m *Model) ShowStatusLine(show bool) {
	m.showStatusLine = show
}

func (m *Model) Focus() {
	m.isFocused = true
	m.buffer.SetCursorVisible(true)
}

func (m *Model) Blur() {
	m.isFocused = false
	m.buffer.SetCursorVisible(false)
}

func (m *Model) IsFocused() bool {
	return m.isFocused
}

// SetPlaceholder sets the text shown while the buffer is empty.
func (m *Model) SetPlaceholder(placeholder string) {
	m.placeholder = placeholder
}

func (m *Model) SetCursorMode(mode CursorMode) {
	m.cursorMode = mode
}

// SetCursorPosition moves the cursor to row and col, clamped into the text.
func (m *Model) SetCursorPosition(row, col int) {
	m.buffer.MoveCursorTo(core.Position{Row: row, Col: col})
	m.renderVisibleSlice()
}

// SetCursorPositionEnd moves the cursor to the end of the text.
func (m *Model) SetCursorPositionEnd() {
	m.buffer.MoveCursorToOffset(m.buffer.TotalLen())
	m.renderVisibleSlice()
}

// Find searches for term and jumps to the first match at or after the cursor.
func (m *Model) Find(term string) int {
	n := m.buffer.Find(term)
	m.renderVisibleSlice()
	return n
}

// DispatchMessage shows message in the message line for duration.
func (m *Model) DispatchMessage(message string, duration time.Duration) tea.Cmd {
	m.message = message
	m.err = nil
	return m.dispatchClearMsg(duration)
}

// DispatchError shows err in the message line for duration.
func (m *Model) DispatchError(err error, duration time.Duration) tea.Cmd {
	m.err = err
	m.message = ""
	return m.dispatchClearMsg(duration)
}

func (m *Model) dispatchClearMsg(duration time.Duration) tea.Cmd {
	if m.clearMsgCancel != nil {
		m.clearMsgCancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), duration)
	m.clearMsgCancel = cancel

	return func() tea.Msg {
		defer cancel()
		<-ctx.Done()
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return clearMsg{}
		}
		return nil
	}
}

func (m *Model) dispatchClearYankMsg() tea.Cmd {
	return tea.Tick(yankHighlightDelay, func(time.Time) tea.Msg {
		return clearYankMsg{}
	})
}

// CursorBlink schedules the next blink. Key presses restart the cycle.
func (m *Model) CursorBlink() tea.Cmd {
	if m.cursorMode != CursorBlink || !m.isFocused {
		return nil
	}
	id := m.blinkID
	return tea.Tick(cursorBlinkInterval, func(time.Time) tea.Msg {
		return cursorBlinkMsg{id: id}
	})
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.listenForEditorUpdate(), m.CursorBlink())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.IsFocused() {
			break
		}

		if msg.Paste {
			m.pasteText(string(msg.Runes))
		} else if err := m.buffer.HandleKey(convertBubbleKey(msg)); errors.Is(err, core.ErrNoClipboard) {
			cmds = append(cmds, m.DispatchError(err, messageDuration))
		}

		m.blinkID++
		m.buffer.SetCursorVisible(true)
		cmds = append(cmds, m.CursorBlink())

	case signalMsg:
		cmds = append(cmds, m.handleSignal(msg.signal), m.listenForEditorUpdate())

	case clearMsg:
		m.message = ""
		m.err = nil
		m.clearMsgCancel = nil

	case clearYankMsg:
		m.yanked = false

	case cursorBlinkMsg:
		if msg.id == m.blinkID && m.isFocused && m.cursorMode == CursorBlink {
			m.buffer.ToggleCursorVisibility()
			cmds = append(cmds, m.CursorBlink())
		}
	}

	m.renderVisibleSlice()

	return m, tea.Batch(cmds...)
}

// pasteText inserts bracketed paste input at the cursor as one entry.
func (m *Model) pasteText(text string) {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text == "" {
		return
	}
	m.buffer.CloseSelection()
	m.buffer.ApplyInsertion(m.buffer.Cursor().Position(), text)
	m.buffer.ScrollViewport()
}

func (m Model) View() string {
	content := m.viewport.View()

	if !m.showStatusLine {
		return content
	}

	var commandLine string
	if m.message != "" {
		commandLine = m.theme.MessageStyle.
			Background(m.theme.CommandLineStyle.GetBackground()).
			Render(m.message)
	}

	if m.err != nil {
		commandLine = m.theme.ErrorStyle.
			Background(m.theme.CommandLineStyle.GetBackground()).
			Render(m.err.Error())
	}

	paddingWidth := m.width - lipgloss.Width(commandLine)
	if paddingWidth > 0 {
		commandLine += m.theme.CommandLineStyle.Render(strings.Repeat(" ", paddingWidth))
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		content,
		m.getStatusLine(),
		commandLine,
	)
}

func (m *Model) getStatusLine() string {
	var statusLine string
	switch m.buffer.Selection().Mode {
	case core.SelectionNormal:
		statusLine = m.theme.SelectModeStyle.Render(" SELECT ")
	case core.SelectionLine:
		statusLine = m.theme.SelectModeStyle.Render(" SELECT LINE ")
	case core.SelectionBlock:
		statusLine = m.theme.SelectModeStyle.Render(" SELECT BLOCK ")
	default:
		statusLine = m.theme.EditModeStyle.Render(" EDIT ")
	}

	var flags []string
	if m.buffer.IsModified() {
		flags = append(flags, "[+]")
	}
	if m.buffer.IsReadOnly() {
		flags = append(flags, "[RO]")
	}
	if term := m.buffer.SearchTerm(); term != "" {
		flags = append(flags, fmt.Sprintf("/%s (%d)", term, len(m.buffer.SearchResults())))
	}

	cursor := m.buffer.Cursor()
	info := fmt.Sprintf("%s v%d %d/%d ",
		strings.Join(flags, " "), m.buffer.Version(), cursor.Row()+1, cursor.Col()+1)
	info = strings.TrimLeft(info, " ")

	width := m.width - (lipgloss.Width(info) + lipgloss.Width(statusLine))
	gap := strings.Repeat(" ", max(0, width))

	return statusLine + m.theme.StatusLineStyle.Render(gap+info)
}

func (m Model) listenForEditorUpdate() tea.Cmd {
	updates := m.buffer.GetUpdateSignalChan()
	return func() tea.Msg {
		return signalMsg{signal: <-updates}
	}
}

// handleSignal turns a buffer signal into the public message for the
// parent model, updating the message line where the signal carries text.
func (m *Model) handleSignal(signal core.Signal) tea.Cmd {
	switch signal := signal.(type) {
	case core.ChangeSignal:
		version, changes := signal.Value()
		return emit(ChangeMsg{Version: version, Changes: changes})

	case core.MessageSignal:
		_, message := signal.Value()
		if message == core.EmptyMessage {
			return nil
		}
		return m.DispatchMessage(message, messageDuration)

	case core.ErrorSignal:
		id, err := signal.Value()
		return tea.Batch(
			m.DispatchError(err, messageDuration),
			emit(ErrorMsg{ID: id, Error: err}),
		)

	case core.YankSignal:
		lines, mode := signal.Value()
		m.yanked = true
		return tea.Batch(
			emit(YankMsg{Lines: lines, Mode: mode}),
			m.dispatchClearYankMsg(),
		)

	case core.PasteSignal:
		return emit(PasteMsg{Chars: signal.Value()})

	case core.DeleteSignal:
		return emit(DeleteMsg{Chars: signal.Value()})

	case core.UndoSignal:
		return emit(UndoMsg{Version: signal.Value()})

	case core.RedoSignal:
		return emit(RedoMsg{Version: signal.Value()})

	case core.ReloadSignal:
		if m.highlighter != nil {
			m.highlighter.Invalidate()
		}
		return emit(ReloadMsg{})

	case core.SaveSignal:
		return emit(SaveMsg{Content: signal.Value()})

	case core.SearchResultsSignal:
		return emit(SearchResultsMsg{Positions: signal.Value()})
	}

	return nil
}

func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return msg
	}
}
