package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/tangara/meta"
	"github.com/wippyai/tangara/metaio"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB"))

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// pageSize is how many entries the browser shows at once.
const pageSize = 20

type interactiveModel struct {
	err        error
	sess       *session
	pkg        *meta.Package
	filename   string
	pluginPath string
	result     string
	rows       []row
	inputs     []textinput.Model
	selected   int
	focusIdx   int
	state      modelState
}

// row is a type header or one of its entries.
type row struct {
	typ   *meta.Type
	entry *entry
}

type modelState int

const (
	stateBrowse modelState = iota
	stateInputArgs
	stateShowResult
)

func newInteractiveModel(filename, pluginPath string) *interactiveModel {
	return &interactiveModel{
		filename:   filename,
		pluginPath: pluginPath,
		state:      stateBrowse,
	}
}

type loadedMsg struct {
	err  error
	pkg  *meta.Package
	sess *session
}

type callResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

func (m *interactiveModel) load() tea.Msg {
	if m.pluginPath != "" {
		sess, err := openSession(m.pluginPath, m.filename)
		if err != nil {
			return loadedMsg{err: err}
		}
		return loadedMsg{pkg: sess.pkg, sess: sess}
	}
	pkg, err := metaio.ReadFile(m.filename)
	return loadedMsg{err: err, pkg: pkg}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, m.quit()

		case "q":
			if m.state != stateInputArgs {
				return m, m.quit()
			}

		case "up":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
			}

		case "down":
			if m.state == stateBrowse && m.selected < len(m.rows)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateBrowse:
				e := m.current()
				if e == nil || m.sess == nil || !e.callable() {
					break
				}
				m.prepareInputs(*e)
				if len(m.inputs) == 0 {
					return m, m.call
				}
				m.state = stateInputArgs

			case stateInputArgs:
				return m, m.call

			case stateShowResult:
				m.state = stateBrowse
				m.result = ""
				m.err = nil
			}

		case "tab":
			if m.state == stateInputArgs && len(m.inputs) > 1 {
				m.inputs[m.focusIdx].Blur()
				m.focusIdx = (m.focusIdx + 1) % len(m.inputs)
				m.inputs[m.focusIdx].Focus()
			}

		case "esc":
			switch m.state {
			case stateInputArgs:
				m.state = stateBrowse
				m.inputs = nil
			case stateShowResult:
				m.state = stateBrowse
				m.result = ""
				m.err = nil
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.pkg = msg.pkg
		m.sess = msg.sess
		m.rows = buildRows(msg.pkg)

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputArgs {
		var cmds []tea.Cmd
		for i := range m.inputs {
			var cmd tea.Cmd
			m.inputs[i], cmd = m.inputs[i].Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

func (m *interactiveModel) quit() tea.Cmd {
	if m.sess != nil {
		_ = m.sess.Close()
		m.sess = nil
	}
	return tea.Quit
}

func buildRows(pkg *meta.Package) []row {
	var rows []row
	for _, t := range pkg.Types {
		rows = append(rows, row{typ: t})
		for _, e := range entries(t) {
			rows = append(rows, row{typ: t, entry: &e})
		}
	}
	return rows
}

func (m *interactiveModel) current() *entry {
	if m.selected >= len(m.rows) {
		return nil
	}
	return m.rows[m.selected].entry
}

// prepareInputs builds one input per argument. Static properties and
// fields take an optional value to write.
func (m *interactiveModel) prepareInputs(e entry) {
	params := e.args
	if e.kind == entryStaticProperty || e.kind == entryStaticField {
		params = nil
		if !e.readOnly {
			params = []meta.Argument{{Name: "set", Type: e.valueType, Kind: meta.ArgDefault}}
		}
	}
	m.inputs = make([]textinput.Model, len(params))
	for i, p := range params {
		ti := textinput.New()
		ti.Placeholder = p.Type.String()
		if p.Kind.Mode == meta.ByDefaultValue {
			ti.Placeholder += " = " + p.Kind.Default.String()
		}
		ti.Prompt = p.Name + ": "
		ti.Width = 40
		if i == 0 {
			ti.Focus()
		}
		m.inputs[i] = ti
	}
	m.focusIdx = 0
}

func (m *interactiveModel) call() tea.Msg {
	e := m.current()
	if e == nil || m.sess == nil {
		return callResultMsg{err: fmt.Errorf("no plugin bound")}
	}
	raw := make([]string, 0, len(m.inputs))
	for _, input := range m.inputs {
		raw = append(raw, input.Value())
	}
	// Empty trailing inputs fall back to defaults, or read a static.
	for len(raw) > 0 && raw[len(raw)-1] == "" {
		raw = raw[:len(raw)-1]
	}
	result, err := m.sess.invoke(*e, raw)
	return callResultMsg{result: result, err: err}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.pkg == nil {
		return "Loading metadata..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("Tangara " + m.pkg.Name))
	b.WriteString(" ")
	b.WriteString(m.filename)
	if m.sess != nil {
		b.WriteString(" ")
		b.WriteString(resultStyle.Render("bound to " + m.pluginPath))
	}
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse:
		start := 0
		if m.selected >= pageSize {
			start = m.selected - pageSize + 1
		}
		end := min(start+pageSize, len(m.rows))
		for i := start; i < end; i++ {
			line := m.formatRow(m.rows[i])
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		if e := m.current(); e != nil && e.id != 0 {
			b.WriteString(helpStyle.Render("id " + hexID(e.id)))
			b.WriteString("\n")
		}
		help := "↑/↓ select • q quit"
		if m.sess != nil {
			help = "↑/↓ select • enter call • q quit"
		}
		b.WriteString(helpStyle.Render(help))

	case stateInputArgs:
		e := m.current()
		fmt.Fprintf(&b, "Calling %s\n\n", funcStyle.Render(e.typ.FullName()+"."+e.name))
		for _, input := range m.inputs {
			b.WriteString(input.View())
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("tab next field • enter call • esc back"))

	case stateShowResult:
		e := m.current()
		fmt.Fprintf(&b, "Result of %s:\n\n", funcStyle.Render(e.typ.FullName()+"."+e.name))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatRow(r row) string {
	if r.entry == nil {
		return headerStyle.Render(typeHeader(r.typ))
	}
	e := r.entry
	s := "  " + typeStyle.Render(fmt.Sprintf("%-15s", e.kind)) + " " + funcStyle.Render(e.signature())
	if e.visibility != meta.Public {
		s += " " + helpStyle.Render("["+e.visibility.String()+"]")
	}
	return s
}

func runInteractive(filename, pluginPath string) error {
	p := tea.NewProgram(newInteractiveModel(filename, pluginPath), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
