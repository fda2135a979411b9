package tui

import (
	"fmt"
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nkarpova/pokedeck/internal/session"
	"github.com/nkarpova/pokedeck/pkg/backend"
	"github.com/nkarpova/pokedeck/pkg/pokedex"
)

type screen int

const (
	screenLogin screen = iota
	screenRegister
	screenBrowse
	screenCollection
)

// bootstrappedMsg fires once the persisted session has been restored.
type bootstrappedMsg struct{}

// App is the root model. It owns the screen switch, the navigation gate
// and the detail overlay; everything else lives in the per-screen models.
type App struct {
	session *session.Manager
	dex     *pokedex.Client
	backend *backend.Client
	log     *slog.Logger

	booting bool
	screen  screen
	notice  string

	login      loginModel
	register   registerModel
	browse     browseModel
	collection collectionModel
	detail     *detailModel

	width  int
	height int
}

func NewApp(s *session.Manager, dex *pokedex.Client, bc *backend.Client, log *slog.Logger) App {
	return App{
		session:    s,
		dex:        dex,
		backend:    bc,
		log:        log,
		booting:    true,
		login:      newLoginModel(s),
		register:   newRegisterModel(s),
		browse:     newBrowseModel(dex, bc),
		collection: newCollectionModel(bc),
	}
}

func (a App) Init() tea.Cmd {
	s := a.session
	return func() tea.Msg {
		s.Bootstrap()
		return bootstrappedMsg{}
	}
}

// gate maps a requested screen to the one the session state allows.
// Signed-in users never see the auth screens; signed-out users never
// see the collection or the browser.
func gate(requested screen, authenticated bool) screen {
	switch {
	case authenticated && (requested == screenLogin || requested == screenRegister):
		return screenBrowse
	case !authenticated && (requested == screenBrowse || requested == screenCollection):
		return screenLogin
	default:
		return requested
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		var cmds []tea.Cmd
		var cmd tea.Cmd
		a.login, cmd = a.login.Update(msg)
		cmds = append(cmds, cmd)
		a.register, cmd = a.register.Update(msg)
		cmds = append(cmds, cmd)
		a.browse, cmd = a.browse.Update(msg)
		cmds = append(cmds, cmd)
		a.collection, cmd = a.collection.Update(msg)
		cmds = append(cmds, cmd)
		if a.detail != nil {
			d, cmd := a.detail.Update(msg)
			a.detail = &d
			cmds = append(cmds, cmd)
		}
		return a, tea.Batch(cmds...)

	case bootstrappedMsg:
		a.booting = false
		if a.session.IsAuthenticated() {
			a.screen = screenBrowse
			return a, a.browse.Init()
		}
		a.screen = screenLogin
		return a, nil

	case authResultMsg:
		var cmd tea.Cmd
		switch a.screen {
		case screenLogin:
			a.login, cmd = a.login.Update(msg)
		case screenRegister:
			a.register, cmd = a.register.Update(msg)
		}
		if msg.err == nil && a.session.IsAuthenticated() {
			a.screen = screenBrowse
			a.notice = ""
			a.browse = newBrowseModel(a.dex, a.backend)
			return a, a.browse.Init()
		}
		return a, cmd

	case showDetailMsg:
		d := newDetailModel(a.dex, a.backend, msg.id, a.width, a.height)
		a.detail = &d
		return a, d.Init()

	case detailClosedMsg:
		a.detail = nil
		if !msg.changed {
			return a, nil
		}
		cmds := []tea.Cmd{a.browse.loadMembership()}
		if a.screen == screenCollection {
			a.collection.loading = true
			cmds = append(cmds, a.collection.load())
		}
		return a, tea.Batch(cmds...)

	case detailPokemonMsg, detailStatusMsg, actionDoneMsg:
		if expired := a.enforceGate(); expired {
			return a, nil
		}
		if a.detail == nil {
			return a, nil
		}
		d, cmd := a.detail.Update(msg)
		a.detail = &d
		return a, cmd

	case typesLoadedMsg, membershipLoadedMsg, workingLoadedMsg, searchDebounceMsg:
		// A 401 inside the load may have invalidated the session before
		// the result landed; bounce first instead of rendering it.
		if expired := a.enforceGate(); expired {
			return a, nil
		}
		var cmd tea.Cmd
		a.browse, cmd = a.browse.Update(msg)
		return a, cmd

	case collectionLoadedMsg, releaseResultMsg:
		if expired := a.enforceGate(); expired {
			return a, nil
		}
		var cmd tea.Cmd
		a.collection, cmd = a.collection.Update(msg)
		return a, cmd

	case tea.FocusMsg:
		if expired := a.enforceGate(); expired {
			return a, nil
		}
		return a.routeToScreen(msg)

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}
	if a.booting {
		return a, nil
	}

	// Implicit logout after a 401 flips the session underneath us.
	if expired := a.enforceGate(); expired {
		return a, nil
	}

	if a.detail != nil {
		d, cmd := a.detail.Update(msg)
		a.detail = &d
		return a, cmd
	}

	switch a.screen {
	case screenLogin:
		if msg.String() == "ctrl+n" {
			a.screen = screenRegister
			a.register = newRegisterModel(a.session)
			return a, nil
		}
	case screenRegister:
		if msg.String() == "esc" {
			a.screen = screenLogin
			return a, nil
		}
	case screenBrowse, screenCollection:
		if !a.typing() {
			switch msg.String() {
			case "q":
				return a, tea.Quit
			case "1":
				if a.screen != screenBrowse {
					a.screen = screenBrowse
					return a, a.browse.loadMembership()
				}
				return a, nil
			case "2":
				if a.screen != screenCollection {
					a.screen = screenCollection
					a.collection = newCollectionModel(a.backend)
					return a, a.collection.Init()
				}
				return a, nil
			case "L":
				a.session.Logout()
				a.screen = screenLogin
				a.login = newLoginModel(a.session)
				a.notice = ""
				return a, nil
			}
		}
	}
	return a.routeToScreen(msg)
}

// typing reports whether the current screen is capturing free text, so
// global shortcuts stay out of the way.
func (a App) typing() bool {
	switch a.screen {
	case screenBrowse:
		return a.browse.searching
	case screenCollection:
		return a.collection.searching
	default:
		return false
	}
}

// enforceGate re-applies the navigation gate against the live session
// state. Returns true when the user was bounced back to the sign-in
// screen because the session went away.
func (a *App) enforceGate() bool {
	allowed := gate(a.screen, a.session.IsAuthenticated())
	if allowed == a.screen {
		return false
	}
	a.screen = allowed
	if allowed == screenLogin {
		a.log.Info("session expired, returning to sign-in")
		a.detail = nil
		a.login = newLoginModel(a.session)
		a.notice = "session expired, sign in again"
		return true
	}
	return false
}

func (a App) routeToScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.screen {
	case screenLogin:
		a.login, cmd = a.login.Update(msg)
	case screenRegister:
		a.register, cmd = a.register.Update(msg)
	case screenBrowse:
		a.browse, cmd = a.browse.Update(msg)
	case screenCollection:
		a.collection, cmd = a.collection.Update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	if a.booting {
		return "\n " + dimStyle.Render("loading...")
	}

	var b strings.Builder

	if a.session.IsAuthenticated() {
		b.WriteString(a.header())
		b.WriteString("\n")
	} else if a.notice != "" {
		b.WriteString(" " + errorStyle.Render(a.notice) + "\n\n")
	}

	if a.detail != nil {
		b.WriteString(a.detail.View())
		return b.String()
	}

	switch a.screen {
	case screenLogin:
		b.WriteString(a.login.View())
	case screenRegister:
		b.WriteString(a.register.View())
	case screenBrowse:
		b.WriteString(a.browse.View())
		b.WriteString("\n\n" + a.browseHelp())
	case screenCollection:
		b.WriteString(a.collection.View())
		b.WriteString("\n\n" + a.collectionHelp())
	}
	return b.String()
}

func (a App) header() string {
	tabs := make([]string, 2)
	tabs[0] = dimStyle.Render("1 browse")
	tabs[1] = dimStyle.Render("2 my pokemon")
	if a.screen == screenBrowse {
		tabs[0] = accentStyle.Render("1 browse")
	}
	if a.screen == screenCollection {
		tabs[1] = accentStyle.Render("2 my pokemon")
	}

	who := ""
	if u := a.session.CurrentUser(); u != nil {
		who = metaStyle.Render(fmt.Sprintf("@%s", u.Username))
	}
	return " " + titleStyle.Render("POKEDECK") + "  " + strings.Join(tabs, "  ") + "  " + who
}

func (a App) browseHelp() string {
	return " " + helpEntry("j/k", "move") + "  " + helpEntry("enter", "view") + "  " +
		helpEntry("/", "search") + "  " + helpEntry("t", "type") + "  " +
		helpEntry("o", "caught only") + "  " + helpEntry("L", "logout") + "  " +
		helpEntry("q", "quit")
}

func (a App) collectionHelp() string {
	return " " + helpEntry("j/k", "move") + "  " + helpEntry("enter", "view") + "  " +
		helpEntry("/", "search") + "  " + helpEntry("t", "type") + "  " +
		helpEntry("s/S", "sort") + "  " + helpEntry("d", "release") + "  " +
		helpEntry("L", "logout") + "  " + helpEntry("q", "quit")
}
