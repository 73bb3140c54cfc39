package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type promptKind int

const (
	promptNone promptKind = iota
	promptEncryptKey
	promptDecryptKey
	promptFolderName
	promptSavePath
	promptSavePassphrase
	promptLoadPath
	promptLoadPassphrase
)

// promptModel is a single-line input shown over the browser. target
// carries the path the answer applies to.
type promptModel struct {
	kind   promptKind
	label  string
	hint   string
	target string
	input  textinput.Model
}

func newPrompt(kind promptKind, label, hint, target string, secret bool) promptModel {
	in := textinput.New()
	in.Prompt = "> "
	in.CharLimit = 4096
	in.Width = 48
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	in.Focus()

	return promptModel{kind: kind, label: label, hint: hint, target: target, input: in}
}

func (p promptModel) active() bool {
	return p.kind != promptNone
}

// value returns the typed text and wipes it from the input.
func (p *promptModel) value() string {
	v := p.input.Value()
	p.input.Reset()
	return v
}

func (p promptModel) update(msg tea.Msg) (promptModel, tea.Cmd) {
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p promptModel) View() string {
	body := p.label + "\n\n" + p.input.View()
	if p.hint != "" {
		body += "\n\n" + helpStyle.Render(p.hint)
	}
	body += "\n\n" + helpStyle.Render("enter: confirm • esc: cancel")
	return overlayBoxStyle.Render(body)
}
