package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	editor "github.com/ionut-t/textcore/adapter-bubbletea"
	"github.com/ionut-t/textcore/core"
)

const messageDuration = 3 * time.Second

type Model struct {
	editor editor.Model
	file   string
}

func (m Model) Init() tea.Cmd {
	return m.editor.Init()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.editor.SetSize(msg.Width-4, msg.Height-2)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+q", "ctrl+c":
			if msg.String() == "ctrl+c" && m.editor.Buffer().Selection().IsActive() {
				break
			}
			return m, tea.Quit
		}

	case editor.YankMsg:
		log.Printf("yanked %d lines (%s)", msg.Lines, msg.Mode)

	case editor.DeleteMsg:
		log.Printf("deleted %d chars", msg.Chars)

	case editor.ChangeMsg:
		log.Printf("version %d: %d changes", msg.Version, len(msg.Changes))

	case editor.SaveMsg:
		filePath := m.file
		if strings.HasPrefix(filePath, "~/") {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return m, m.editor.DispatchError(err, messageDuration)
			}
			filePath = filepath.Join(homeDir, filePath[2:])
		}

		if err := os.WriteFile(filePath, []byte(msg.Content), 0644); err != nil {
			return m, m.editor.DispatchError(err, messageDuration)
		}

		return m, m.editor.DispatchMessage(fmt.Sprintf("file saved to %s", m.file), messageDuration)
	}

	editorModel, cmd := m.editor.Update(msg)
	m.editor = editorModel.(editor.Model)

	return m, cmd
}

func (m Model) View() string {
	return lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1).
		Render(m.editor.View())
}

func main() {
	lang := flag.String("lang", "markdown", "language used for syntax highlighting")
	theme := flag.String("theme", "catppuccin-mocha", "chroma style")
	readOnly := flag.Bool("readonly", false, "open the file read-only")
	tabs := flag.Int("tabs", 4, "spaces per indent, 0 for tab characters")
	debug := flag.String("debug", "", "write buffer logs to this file")
	flag.Parse()

	file := "test.md"
	if flag.NArg() > 0 {
		file = flag.Arg(0)
	}

	cfg := core.DefaultConfig()
	cfg.ReadOnly = *readOnly
	cfg.TabSpaceCount = *tabs

	if *debug != "" {
		f, err := tea.LogToFile(*debug, "textcore")
		if err != nil {
			log.Fatalf("Error opening log file: %v", err)
		}
		defer f.Close()
		cfg.Logger = log.Default()
	} else {
		log.SetOutput(io.Discard)
	}

	textEditor := editor.NewWithConfig(80, 20, cfg)
	textEditor.Focus()
	textEditor.SetCursorMode(editor.CursorBlink)
	textEditor.SetLanguage(*lang, *theme)
	textEditor.SetPlaceholder("Start typing...")

	if content, err := os.ReadFile(file); err == nil {
		textEditor.SetBytes(content)
	}

	m := Model{
		editor: textEditor,
		file:   file,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		log.Fatalf("Error running Bubble Tea program: %v", err)
	}
}
