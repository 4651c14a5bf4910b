package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type field struct {
	label       string
	placeholder string
	charLimit   int
	secret      bool
}

// inputForm is the focus ring shared by the login and signup pages.
type inputForm struct {
	labels []string
	inputs []textinput.Model
	focus  int
}

func newInputForm(fields ...field) inputForm {
	f := inputForm{
		labels: make([]string, len(fields)),
		inputs: make([]textinput.Model, len(fields)),
	}
	for i, spec := range fields {
		in := textinput.New()
		in.Placeholder = spec.placeholder
		in.CharLimit = spec.charLimit
		in.Width = 40
		if spec.secret {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '*'
		}
		f.labels[i] = spec.label
		f.inputs[i] = in
	}
	f.inputs[0].Focus()
	return f
}

func (f *inputForm) value(i int) string {
	return f.inputs[i].Value()
}

func (f *inputForm) next() {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus + 1) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *inputForm) prev() {
	f.inputs[f.focus].Blur()
	f.focus = (f.focus - 1 + len(f.inputs)) % len(f.inputs)
	f.inputs[f.focus].Focus()
}

func (f *inputForm) reset() {
	for i := range f.inputs {
		f.inputs[i].SetValue("")
		f.inputs[i].Blur()
	}
	f.focus = 0
	f.inputs[0].Focus()
}

// update forwards msg to the focused input.
func (f *inputForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}

func (f *inputForm) view() string {
	rows := make([][2]string, len(f.inputs))
	for i := range f.inputs {
		rows[i] = [2]string{f.labels[i], "[" + f.inputs[i].View() + "]"}
	}
	return renderTable([2]string{"Field", "Value"}, rows)
}
