package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// Terminal presents choices as an interactive list on a terminal.
type Terminal struct {
	In  io.Reader
	Out io.Writer
}

// NewTerminal returns a presenter bound to stdin and stderr.
func NewTerminal() *Terminal {
	return &Terminal{In: os.Stdin, Out: os.Stderr}
}

// PresentChoice implements Presenter. Arrow keys or j/k move, enter selects,
// a digit selects directly, esc or ctrl+c dismisses.
func (t *Terminal) PresentChoice(ctx context.Context, title, message string, options []Option) (Option, error) {
	if len(options) == 0 {
		return Option{}, errors.New("no options to choose from")
	}

	p := tea.NewProgram(
		newChoiceModel(title, message, options),
		tea.WithContext(ctx),
		tea.WithInput(t.In),
		tea.WithOutput(t.Out),
	)
	final, err := p.Run()
	if ctx.Err() != nil {
		return Option{}, ctx.Err()
	}
	if err != nil {
		return Option{}, fmt.Errorf("run prompt: %w", err)
	}

	m, ok := final.(choiceModel)
	if !ok || !m.chosen {
		return Option{}, ErrDismissed
	}
	return m.options[m.cursor], nil
}

type choiceModel struct {
	title   string
	message string
	options []Option
	cursor  int
	chosen  bool
	done    bool
}

func newChoiceModel(title, message string, options []Option) choiceModel {
	return choiceModel{title: title, message: message, options: options}
}

func (m choiceModel) Init() tea.Cmd { return nil }

func (m choiceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "esc", "ctrl+c", "q":
		m.done = true
		return m, tea.Quit
	case "up", "k", "shift+tab":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j", "tab":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter", " ":
		m.chosen = true
		m.done = true
		return m, tea.Quit
	default:
		if n := digit(key.String()); n > 0 && n <= len(m.options) {
			m.cursor = n - 1
			m.chosen = true
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m choiceModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(styleTitle.Render(m.title))
	b.WriteString("\n\n")
	if m.message != "" {
		b.WriteString(styleMessage.Render(m.message))
		b.WriteString("\n\n")
	}
	for i, opt := range m.options {
		line := fmt.Sprintf("%d. %s", i+1, opt.Label)
		if i == m.cursor {
			b.WriteString(styleSelected.Render("> " + line))
		} else {
			b.WriteString(styleOption.Render(line))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(styleHelp.Render("[↑/↓] Move  [Enter] Select  [Esc] Cancel"))
	b.WriteString("\n")
	return b.String()
}

// digit returns the value of a single 1-9 key, or 0.
func digit(s string) int {
	if len(s) != 1 || s[0] < '1' || s[0] > '9' {
		return 0
	}
	return int(s[0] - '0')
}
