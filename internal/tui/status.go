package tui

type statusLevel int

const (
	statusInfo statusLevel = iota
	statusSuccess
	statusWarning
	statusError
)

// statusLine is the one-line message under the browser. seq tells a
// pending clear timer whether its message is still the one shown.
type statusLine struct {
	level statusLevel
	text  string
	seq   int
}

func (s statusLine) View() string {
	if s.text == "" {
		return ""
	}
	switch s.level {
	case statusSuccess:
		return successStyle.Render(s.text)
	case statusWarning:
		return warningStyle.Render(s.text)
	case statusError:
		return errorStyle.Render(s.text)
	default:
		return s.text
	}
}
