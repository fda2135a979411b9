package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nkarpova/pokedeck/internal/browser"
	"github.com/nkarpova/pokedeck/pkg/backend"
	"github.com/nkarpova/pokedeck/pkg/domain"
	"github.com/nkarpova/pokedeck/pkg/pokedex"
)

// detailPokemonMsg carries the PokeAPI record for the detail view.
type detailPokemonMsg struct {
	pokemon *domain.Pokemon
	err     error
}

// detailStatusMsg carries the caught status for the detail view.
type detailStatusMsg struct {
	caught bool
	err    error
}

// actionDoneMsg carries the outcome of a catch or release.
type actionDoneMsg struct {
	caught bool // new status after the action
	err    error
}

// detailClosedMsg tells the parent the overlay was dismissed. changed is
// true when a catch or release succeeded while the view was open, so the
// underlying list can refresh its membership markers.
type detailClosedMsg struct {
	changed bool
}

// detailModel shows one pokemon with its stats and a catch/release toggle.
// The pokemon record and the caught status load independently; the toggle
// stays disabled until both have landed.
type detailModel struct {
	dex     *pokedex.Client
	backend *backend.Client

	pokemonID int
	pokemon   *domain.Pokemon
	caught    bool

	loadingPokemon bool
	loadingStatus  bool
	failed         bool

	acting    bool
	changed   bool
	statusMsg string

	width  int
	height int
}

func newDetailModel(dex *pokedex.Client, bc *backend.Client, id, width, height int) detailModel {
	return detailModel{
		dex:            dex,
		backend:        bc,
		pokemonID:      id,
		loadingPokemon: true,
		loadingStatus:  true,
		width:          width,
		height:         height,
	}
}

func (m detailModel) Init() tea.Cmd {
	return tea.Batch(m.loadPokemon(), m.loadStatus())
}

func (m detailModel) loadPokemon() tea.Cmd {
	dex := m.dex
	id := m.pokemonID
	return func() tea.Msg {
		p, err := dex.PokemonByID(context.Background(), id)
		return detailPokemonMsg{pokemon: p, err: err}
	}
}

func (m detailModel) loadStatus() tea.Cmd {
	bc := m.backend
	id := m.pokemonID
	return func() tea.Msg {
		caught, err := bc.IsCaught(context.Background(), id)
		return detailStatusMsg{caught: caught, err: err}
	}
}

func (m detailModel) ready() bool {
	return !m.loadingPokemon && !m.loadingStatus && !m.failed
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case detailPokemonMsg:
		m.loadingPokemon = false
		if msg.err != nil {
			m.failed = true
			return m, nil
		}
		m.pokemon = msg.pokemon
		return m, nil

	case detailStatusMsg:
		m.loadingStatus = false
		if msg.err != nil {
			m.failed = true
			return m, nil
		}
		m.caught = msg.caught
		return m, nil

	case actionDoneMsg:
		m.acting = false
		if msg.err != nil {
			m.statusMsg = "failed: " + msg.err.Error()
			return m, nil
		}
		m.caught = msg.caught
		m.changed = true
		if msg.caught {
			m.statusMsg = "caught!"
		} else {
			m.statusMsg = "released"
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "q":
			changed := m.changed
			return m, func() tea.Msg {
				return detailClosedMsg{changed: changed}
			}
		case " ":
			if !m.ready() || m.acting {
				return m, nil
			}
			m.acting = true
			m.statusMsg = ""
			return m, m.toggle()
		case "c":
			if m.pokemon != nil {
				url := pokedex.BestImageURL(*m.pokemon)
				if err := clipboard.WriteAll(url); err != nil {
					m.statusMsg = "clipboard unavailable"
				} else {
					m.statusMsg = "image url copied"
				}
			}
		case "b":
			if m.pokemon != nil {
				if err := browser.Open(pokedex.ArtworkURL(m.pokemon.ID)); err != nil {
					m.statusMsg = "could not open browser"
				}
			}
		}
	}
	return m, nil
}

// toggle issues a catch when the pokemon is free and a release when it is
// already in the collection.
func (m detailModel) toggle() tea.Cmd {
	bc := m.backend
	if m.caught {
		id := m.pokemonID
		return func() tea.Msg {
			err := bc.Release(context.Background(), id)
			return actionDoneMsg{caught: err != nil, err: err}
		}
	}
	req := snapshotCatch(m.pokemon)
	return func() tea.Msg {
		_, err := bc.Catch(context.Background(), req)
		return actionDoneMsg{caught: err == nil, err: err}
	}
}

// snapshotCatch captures the fields the backend stores for a caught pokemon.
func snapshotCatch(p *domain.Pokemon) domain.CatchRequest {
	return domain.CatchRequest{
		PokemonID:   p.ID,
		PokemonName: p.Name,
		Types:       p.TypeNames(),
		ImageURL:    pokedex.BestImageURL(*p),
		Weight:      p.Weight,
		Height:      p.Height,
		Abilities:   p.VisibleAbilities(),
	}
}

func (m detailModel) View() string {
	var b strings.Builder

	if m.loadingPokemon || m.loadingStatus {
		b.WriteString("\n " + dimStyle.Render("loading pokemon..."))
		return b.String()
	}
	if m.failed {
		b.WriteString("\n " + errorStyle.Render("pokemon not found") + "\n\n")
		b.WriteString(" " + dimStyle.Render("esc to go back"))
		return b.String()
	}

	p := m.pokemon

	b.WriteString(" " + titleStyle.Render(strings.ToUpper(pokedex.FormatName(p.Name))) +
		"  " + metaStyle.Render(fmt.Sprintf("#%04d", p.ID)))
	if m.caught {
		b.WriteString("  " + caughtStyle.Render("● caught"))
	}
	b.WriteString("\n\n")

	pills := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		pills = append(pills, typePill(t.Type.Name))
	}
	b.WriteString(" " + strings.Join(pills, " ") + "\n\n")

	b.WriteString(" " + dimStyle.Render("weight") + "  " + normalStyle.Render(pokedex.FormatWeight(p.Weight)) + "\n")
	b.WriteString(" " + dimStyle.Render("height") + "  " + normalStyle.Render(pokedex.FormatHeight(p.Height)) + "\n")

	abilities := p.VisibleAbilities()
	if len(abilities) > 0 {
		for i, a := range abilities {
			label := "      "
			if i == 0 {
				label = dimStyle.Render("skills")
			}
			b.WriteString(" " + label + "  " + normalStyle.Render(pokedex.FormatName(a)) + "\n")
		}
	}

	b.WriteString("\n " + metaStyle.Render(truncStr(pokedex.BestImageURL(*p), m.width-4)) + "\n")

	if m.statusMsg != "" {
		b.WriteString("\n " + statusStyle.Render(m.statusMsg) + "\n")
	}

	b.WriteString("\n ")
	if m.acting {
		b.WriteString(dimStyle.Render("working..."))
	} else if m.caught {
		b.WriteString(helpEntry("space", "release"))
	} else {
		b.WriteString(helpEntry("space", "catch"))
	}
	b.WriteString("  " + helpEntry("c", "copy image url"))
	b.WriteString("  " + helpEntry("b", "open artwork"))
	b.WriteString("  " + helpEntry("esc", "back"))

	return truncateToHeight(b.String(), m.height)
}
