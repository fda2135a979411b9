package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nkarpova/pokedeck/internal/session"
)

type registerField int

const (
	regFieldEmail registerField = iota
	regFieldUsername
	regFieldPassword
	regFieldConfirm
	numRegisterFields
)

type registerModel struct {
	session    *session.Manager
	fields     [numRegisterFields]string
	focus      registerField
	errMsg     string
	submitting bool
	width      int
	height     int
}

func newRegisterModel(s *session.Manager) registerModel {
	return registerModel{session: s}
}

func (m registerModel) Init() tea.Cmd {
	return nil
}

func (m registerModel) Update(msg tea.Msg) (registerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		m.submitting = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.focus = (m.focus + 1) % numRegisterFields
		case "shift+tab", "up":
			m.focus = (m.focus - 1 + numRegisterFields) % numRegisterFields
		case "enter":
			if m.focus < numRegisterFields-1 {
				m.focus++
				return m, nil
			}
			return m.submit()
		default:
			f := &m.fields[m.focus]
			*f = editRune(*f, msg.String())
			m.errMsg = ""
		}
	}
	return m, nil
}

func (m registerModel) submit() (registerModel, tea.Cmd) {
	form := registerForm{
		Email:    m.fields[regFieldEmail],
		Username: m.fields[regFieldUsername],
		Password: m.fields[regFieldPassword],
		Confirm:  m.fields[regFieldConfirm],
	}
	if err := validate.Struct(form); err != nil {
		m.errMsg = validationMessage(err)
		return m, nil
	}

	m.submitting = true
	m.errMsg = ""
	s := m.session
	return m, func() tea.Msg {
		err := s.Register(context.Background(), form.Email, form.Username, form.Password)
		return authResultMsg{err: err}
	}
}

func (m registerModel) View() string {
	var b []string
	b = append(b, "")
	b = append(b, " "+titleStyle.Render("POKEDECK")+"  "+dimStyle.Render("new trainer"))
	b = append(b, "")
	b = append(b, renderFormField("email", m.fields[regFieldEmail], m.focus == regFieldEmail))
	b = append(b, renderFormField("username", m.fields[regFieldUsername], m.focus == regFieldUsername))
	b = append(b, renderFormField("password", maskPassword(m.fields[regFieldPassword]), m.focus == regFieldPassword))
	b = append(b, renderFormField("confirm", maskPassword(m.fields[regFieldConfirm]), m.focus == regFieldConfirm))
	b = append(b, "")
	if m.submitting {
		b = append(b, " "+dimStyle.Render("creating account..."))
	} else if m.errMsg != "" {
		b = append(b, " "+errorStyle.Render(m.errMsg))
	} else {
		b = append(b, " "+dimStyle.Render("esc back to sign in"))
	}
	return join(b)
}
