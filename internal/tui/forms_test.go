package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestLoginFormValidation(t *testing.T) {
	cases := []struct {
		name    string
		form    loginForm
		wantMsg string
	}{
		{"valid", loginForm{Email: "ash@example.com", Password: "pikapika"}, ""},
		{"missing email", loginForm{Password: "pikapika"}, "email is required"},
		{"bad email", loginForm{Email: "not-an-email", Password: "pikapika"}, "enter a valid email address"},
		{"short password", loginForm{Email: "ash@example.com", Password: "pika"}, "password must be at least 6 characters long"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := validate.Struct(c.form)
			if c.wantMsg == "" {
				if err != nil {
					t.Fatalf("unexpected validation error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if got := validationMessage(err); got != c.wantMsg {
				t.Errorf("validationMessage = %q, want %q", got, c.wantMsg)
			}
		})
	}
}

func TestRegisterFormValidation(t *testing.T) {
	valid := registerForm{
		Email:    "ash@example.com",
		Username: "ash",
		Password: "pikapika",
		Confirm:  "pikapika",
	}
	if err := validate.Struct(valid); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}

	mismatch := valid
	mismatch.Confirm = "raichu"
	err := validate.Struct(mismatch)
	if err == nil {
		t.Fatal("expected a validation error for mismatched passwords")
	}
	if got := validationMessage(err); got != "passwords do not match" {
		t.Errorf("validationMessage = %q, want %q", got, "passwords do not match")
	}

	shortName := valid
	shortName.Username = "ab"
	err = validate.Struct(shortName)
	if err == nil {
		t.Fatal("expected a validation error for short username")
	}
	if got := validationMessage(err); got != "username must be at least 3 characters long" {
		t.Errorf("validationMessage = %q, want %q", got, "username must be at least 3 characters long")
	}
}

func TestLoginSubmitValidatesBeforeNetwork(t *testing.T) {
	// No session manager attached: a network call would panic, so a nil cmd
	// proves validation short-circuited.
	m := newLoginModel(nil)
	m.fields[loginFieldEmail] = "nonsense"
	m.fields[loginFieldPassword] = "pikapika"
	m.focus = loginFieldPassword

	m, cmd := m.Update(key("enter"))
	if cmd != nil {
		t.Fatal("invalid form still produced a submit command")
	}
	if m.errMsg == "" {
		t.Error("invalid form left no error message")
	}
	if !strings.Contains(m.View(), "enter a valid email address") {
		t.Errorf("expected inline validation error, got:\n%s", m.View())
	}
}

func TestLoginFieldCycling(t *testing.T) {
	m := newLoginModel(nil)
	if m.focus != loginFieldEmail {
		t.Fatal("expected focus on email initially")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != loginFieldPassword {
		t.Errorf("focus = %d after tab, want password", m.focus)
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if m.focus != loginFieldEmail {
		t.Errorf("focus = %d after second tab, want wrap to email", m.focus)
	}

	// Enter on a non-final field advances instead of submitting.
	m, cmd := m.Update(key("enter"))
	if m.focus != loginFieldPassword {
		t.Errorf("focus = %d after enter, want password", m.focus)
	}
	if cmd != nil {
		t.Error("enter on a non-final field submitted")
	}
}

func TestRegisterSubmitValidates(t *testing.T) {
	m := newRegisterModel(nil)
	m.fields[regFieldEmail] = "ash@example.com"
	m.fields[regFieldUsername] = "ash"
	m.fields[regFieldPassword] = "pikapika"
	m.fields[regFieldConfirm] = "different"
	m.focus = regFieldConfirm

	m, cmd := m.Update(key("enter"))
	if cmd != nil {
		t.Fatal("mismatched passwords still produced a submit command")
	}
	if !strings.Contains(m.View(), "passwords do not match") {
		t.Errorf("expected mismatch error, got:\n%s", m.View())
	}
}

func TestMaskPassword(t *testing.T) {
	if got := maskPassword("secret"); got != "••••••" {
		t.Errorf("maskPassword = %q, want six dots", got)
	}
	if got := maskPassword(""); got != "" {
		t.Errorf("maskPassword(\"\") = %q, want empty", got)
	}
}
