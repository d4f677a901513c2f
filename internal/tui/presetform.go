package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hmkang/pgsetup/internal/preset"
	"github.com/hmkang/pgsetup/pkg/pgsetup"
)

// PresetFormResult holds the outcome of the preset entry form.
type PresetFormResult struct {
	Cancelled bool
	Preset    preset.Preset
}

// RunPresetForm shows an interactive form for entering a connection preset.
// Initial values come from the given preset (zero value for a blank form).
func RunPresetForm(initial preset.Preset) (PresetFormResult, error) {
	if !IsInteractive() {
		return PresetFormResult{}, fmt.Errorf("preset form requires an interactive terminal")
	}

	final, err := tea.NewProgram(newPresetForm(initial)).Run()
	if err != nil {
		return PresetFormResult{}, err
	}
	m := final.(presetForm)
	if m.cancelled {
		return PresetFormResult{Cancelled: true}, nil
	}
	return PresetFormResult{Preset: m.preset()}, nil
}

const (
	fieldName = iota
	fieldHost
	fieldPort
	fieldUser
	fieldPassword
	fieldDatabase
	fieldCount
)

type presetForm struct {
	inputs    []textinput.Model
	focus     int
	cancelled bool
	done      bool
	errMsg    string
}

func newPresetForm(initial preset.Preset) presetForm {
	labels := []struct {
		placeholder string
		value       string
		secret      bool
	}{
		{"preset name", initial.Name, false},
		{pgsetup.DefaultHost, initial.Host, false},
		{strconv.Itoa(pgsetup.DefaultPort), portString(initial.Port), false},
		{pgsetup.DefaultUser, initial.Username, false},
		{"password", initial.Password, true},
		{pgsetup.DefaultDatabase, initial.Database, false},
	}

	inputs := make([]textinput.Model, fieldCount)
	for i, l := range labels {
		ti := textinput.New()
		ti.Placeholder = l.placeholder
		ti.SetValue(l.value)
		ti.CharLimit = 256
		ti.Width = 40
		if l.secret {
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '*'
		}
		inputs[i] = ti
	}
	inputs[fieldName].Focus()

	return presetForm{inputs: inputs}
}

func portString(port int) string {
	if port == 0 {
		return ""
	}
	return strconv.Itoa(port)
}

func (m presetForm) Init() tea.Cmd {
	return textinput.Blink
}

func (m presetForm) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			m.cancelled = true
			return m, tea.Quit

		case tea.KeyEnter:
			if m.focus == fieldCount-1 {
				if err := m.validate(); err != nil {
					m.errMsg = err.Error()
					return m, nil
				}
				m.done = true
				return m, tea.Quit
			}
			return m.moveFocus(1)

		case tea.KeyTab, tea.KeyDown:
			return m.moveFocus(1)

		case tea.KeyShiftTab, tea.KeyUp:
			return m.moveFocus(-1)
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m presetForm) moveFocus(delta int) (tea.Model, tea.Cmd) {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + fieldCount) % fieldCount
	m.errMsg = ""
	return m, m.inputs[m.focus].Focus()
}

func (m presetForm) validate() error {
	if strings.TrimSpace(m.inputs[fieldName].Value()) == "" {
		return fmt.Errorf("preset name is required")
	}
	if v := m.inputs[fieldPort].Value(); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			return fmt.Errorf("port must be a number")
		}
	}
	return nil
}

// preset builds the Preset from the form values, applying connection
// defaults for blank fields.
func (m presetForm) preset() preset.Preset {
	p := preset.Preset{
		Name:     strings.TrimSpace(m.inputs[fieldName].Value()),
		Host:     m.inputs[fieldHost].Value(),
		Username: m.inputs[fieldUser].Value(),
		Password: m.inputs[fieldPassword].Value(),
		Database: m.inputs[fieldDatabase].Value(),
	}
	if p.Host == "" {
		p.Host = pgsetup.DefaultHost
	}
	if p.Username == "" {
		p.Username = pgsetup.DefaultUser
	}
	if p.Database == "" {
		p.Database = pgsetup.DefaultDatabase
	}
	p.Port = pgsetup.DefaultPort
	if v := m.inputs[fieldPort].Value(); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			p.Port = port
		}
	}
	return p
}

var fieldLabels = [fieldCount]string{
	"Name", "Host", "Port", "Username", "Password", "Database",
}

func (m presetForm) View() string {
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Connection preset"))
	b.WriteString("\n")

	for i, input := range m.inputs {
		b.WriteString(InputLabelStyle.Render(fmt.Sprintf("%-9s", fieldLabels[i])))
		b.WriteString(input.View())
		b.WriteString("\n")
	}

	if m.errMsg != "" {
		b.WriteString(ErrorStyle.Render(SymbolCross + " " + m.errMsg))
		b.WriteString("\n")
	}
	b.WriteString(HelpStyle.Render("tab/enter: next field • esc: cancel"))
	b.WriteString("\n")
	return b.String()
}
