package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nkarpova/pokedeck/internal/session"
)

type loginField int

const (
	loginFieldEmail loginField = iota
	loginFieldPassword
	numLoginFields
)

// authResultMsg carries the outcome of a login or register attempt.
type authResultMsg struct {
	err error
}

type loginModel struct {
	session    *session.Manager
	fields     [numLoginFields]string
	focus      loginField
	errMsg     string
	submitting bool
	width      int
	height     int
}

func newLoginModel(s *session.Manager) loginModel {
	return loginModel{session: s}
}

func (m loginModel) Init() tea.Cmd {
	return nil
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
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
			m.focus = (m.focus + 1) % numLoginFields
		case "shift+tab", "up":
			m.focus = (m.focus - 1 + numLoginFields) % numLoginFields
		case "enter":
			if m.focus < numLoginFields-1 {
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

func (m loginModel) submit() (loginModel, tea.Cmd) {
	form := loginForm{
		Email:    m.fields[loginFieldEmail],
		Password: m.fields[loginFieldPassword],
	}
	if err := validate.Struct(form); err != nil {
		m.errMsg = validationMessage(err)
		return m, nil
	}

	m.submitting = true
	m.errMsg = ""
	s := m.session
	return m, func() tea.Msg {
		err := s.Login(context.Background(), form.Email, form.Password)
		return authResultMsg{err: err}
	}
}

func (m loginModel) View() string {
	var b []string
	b = append(b, "")
	b = append(b, " "+titleStyle.Render("POKEDECK")+"  "+dimStyle.Render("sign in"))
	b = append(b, "")
	b = append(b, renderFormField("email", m.fields[loginFieldEmail], m.focus == loginFieldEmail))
	b = append(b, renderFormField("password", maskPassword(m.fields[loginFieldPassword]), m.focus == loginFieldPassword))
	b = append(b, "")
	if m.submitting {
		b = append(b, " "+dimStyle.Render("signing in..."))
	} else if m.errMsg != "" {
		b = append(b, " "+errorStyle.Render(m.errMsg))
	} else {
		b = append(b, " "+dimStyle.Render("no account? ctrl+n to register"))
	}
	return join(b)
}
