package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nkarpova/pokedeck/pkg/backend"
	"github.com/nkarpova/pokedeck/pkg/domain"
	"github.com/nkarpova/pokedeck/pkg/pokedex"
)

type sortKey int

const (
	sortByCaughtAt sortKey = iota
	sortByName
	sortByID
)

func (k sortKey) String() string {
	switch k {
	case sortByName:
		return "name"
	case sortByID:
		return "id"
	default:
		return "caught"
	}
}

// collectionLoadedMsg carries the caught records and the distinct-type list.
// typesErr is non-nil when the types endpoint failed and the dropdown was
// derived from the records instead.
type collectionLoadedMsg struct {
	records  []domain.CaughtPokemon
	types    []string
	err      error
	typesErr error
}

// releaseResultMsg carries the outcome of a release action.
type releaseResultMsg struct {
	pokemonID int
	err       error
}

// collectionModel shows the trainer's caught records with local filtering
// and sorting. Sorting is stable: ties preserve the backend's record order.
type collectionModel struct {
	backend *backend.Client

	records []domain.CaughtPokemon
	types   []string
	loading bool
	errMsg  string

	search     string
	searching  bool
	typeFilter string
	sortBy     sortKey
	descending bool

	cursor     int
	confirming bool // release confirmation pending
	releasing  bool
	statusMsg  string

	width  int
	height int
}

func newCollectionModel(bc *backend.Client) collectionModel {
	return collectionModel{
		backend:    bc,
		loading:    true,
		descending: true, // newest catches first
	}
}

func (m collectionModel) Init() tea.Cmd {
	return m.load()
}

func (m collectionModel) load() tea.Cmd {
	bc := m.backend
	return func() tea.Msg {
		records, err := bc.Caught(context.Background(), backend.CaughtQuery{})
		if err != nil {
			return collectionLoadedMsg{err: err}
		}
		types, typesErr := bc.CaughtTypes(context.Background())
		if typesErr != nil {
			// Degrade: derive the dropdown from the records themselves.
			seen := map[string]struct{}{}
			for _, r := range records {
				for _, t := range r.Types {
					seen[t] = struct{}{}
				}
			}
			types = make([]string, 0, len(seen))
			for t := range seen {
				types = append(types, t)
			}
			sort.Strings(types)
		}
		return collectionLoadedMsg{records: records, types: types, typesErr: typesErr}
	}
}

func (m collectionModel) Update(msg tea.Msg) (collectionModel, tea.Cmd) {
	switch msg := msg.(type) {
	case collectionLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.errMsg = msg.err.Error()
			return m, nil
		}
		m.records = msg.records
		m.types = msg.types
		m.errMsg = ""
		if m.cursor >= len(m.records) {
			m.cursor = 0
		}
		return m, nil

	case releaseResultMsg:
		m.releasing = false
		if msg.err != nil {
			m.statusMsg = "release failed: " + msg.err.Error()
			return m, nil
		}
		kept := m.records[:0]
		for _, r := range m.records {
			if r.PokemonID != msg.pokemonID {
				kept = append(kept, r)
			}
		}
		m.records = kept
		if m.cursor >= len(m.records) {
			m.cursor = 0
		}
		m.statusMsg = "released!"
		return m, nil

	case tea.FocusMsg:
		return m, m.load()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		if m.searching {
			return m.updateSearch(msg)
		}
		if m.confirming {
			return m.updateConfirm(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m collectionModel) updateSearch(msg tea.KeyMsg) (collectionModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
	case "esc":
		m.searching = false
		m.search = ""
	default:
		m.search = editRune(m.search, msg.String())
		m.cursor = 0
	}
	return m, nil
}

func (m collectionModel) updateConfirm(msg tea.KeyMsg) (collectionModel, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.confirming = false
		visible := m.visible()
		if m.cursor >= len(visible) {
			return m, nil
		}
		m.releasing = true
		id := visible[m.cursor].PokemonID
		bc := m.backend
		return m, func() tea.Msg {
			err := bc.Release(context.Background(), id)
			return releaseResultMsg{pokemonID: id, err: err}
		}
	default:
		m.confirming = false
	}
	return m, nil
}

func (m collectionModel) updateList(msg tea.KeyMsg) (collectionModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.visible())-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		visible := m.visible()
		if m.cursor < len(visible) {
			id := visible[m.cursor].PokemonID
			return m, func() tea.Msg {
				return showDetailMsg{id: id}
			}
		}
	case "/":
		m.searching = true
	case "t", "T":
		m.typeFilter = cycleOption(m.typeFilter, m.types, msg.String() == "t")
		m.cursor = 0
	case "s":
		m.sortBy = (m.sortBy + 1) % 3
		m.cursor = 0
	case "S":
		m.descending = !m.descending
		m.cursor = 0
	case "d":
		if !m.releasing && len(m.visible()) > 0 {
			m.confirming = true
		}
	case "r":
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

// cycleOption steps through "" followed by the given options.
func cycleOption(current string, options []string, forward bool) string {
	if len(options) == 0 {
		return ""
	}
	all := append([]string{""}, options...)
	idx := 0
	for i, name := range all {
		if name == current {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(all)
	} else {
		idx = (idx - 1 + len(all)) % len(all)
	}
	return all[idx]
}

// visible derives the filtered, sorted record list.
func (m collectionModel) visible() []domain.CaughtPokemon {
	filtered := make([]domain.CaughtPokemon, 0, len(m.records))
	needle := strings.ToLower(m.search)
	for _, r := range m.records {
		if needle != "" && !strings.Contains(strings.ToLower(r.PokemonName), needle) {
			continue
		}
		if m.typeFilter != "" && !containsString(r.Types, m.typeFilter) {
			continue
		}
		filtered = append(filtered, r)
	}
	sortRecords(filtered, m.sortBy, m.descending)
	return filtered
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// sortRecords sorts in place. Stable: equal keys keep their input order,
// regardless of direction.
func sortRecords(records []domain.CaughtPokemon, key sortKey, descending bool) {
	less := func(a, b domain.CaughtPokemon) bool {
		switch key {
		case sortByName:
			return strings.ToLower(a.PokemonName) < strings.ToLower(b.PokemonName)
		case sortByID:
			return a.PokemonID < b.PokemonID
		default:
			return a.CaughtAt.Before(b.CaughtAt)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		if descending {
			return less(records[j], records[i])
		}
		return less(records[i], records[j])
	})
}

func (m collectionModel) View() string {
	var b strings.Builder

	b.WriteString(" " + titleStyle.Render("MY POKEMON") + "  " +
		dimStyle.Render(fmt.Sprintf("%d caught", len(m.records))) + "\n")

	// Search + type filter + sort bar
	if m.searching {
		b.WriteString(" " + searchStyle.Render("/ "+m.search+"█"))
	} else if m.search != "" {
		b.WriteString(" " + searchStyle.Render("/ "+m.search))
	} else {
		b.WriteString(" " + dimStyle.Render("/ search..."))
	}
	b.WriteString("   ")
	if m.typeFilter != "" {
		b.WriteString(typePill(m.typeFilter))
	} else {
		b.WriteString(dimStyle.Render("[all types]"))
	}
	b.WriteString("  " + helpKeyStyle.Render("t"))

	arrow := "↑"
	if m.descending {
		arrow = "↓"
	}
	b.WriteString("   " + searchStyle.Render(m.sortBy.String()+arrow) + " " + helpKeyStyle.Render("s"))
	b.WriteString("\n")

	sepW := m.width - 2
	if sepW < 4 {
		sepW = 4
	}
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", sepW)) + "\n")

	if m.statusMsg != "" {
		b.WriteString(" " + statusStyle.Render(m.statusMsg) + "\n")
	}

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading collection..."))
		return b.String()
	}
	if m.errMsg != "" {
		b.WriteString(" " + errorStyle.Render("error: "+m.errMsg) + "\n")
		b.WriteString(" " + dimStyle.Render("r to retry"))
		return b.String()
	}

	visible := m.visible()
	if len(visible) == 0 {
		b.WriteString(" " + dimStyle.Render("no pokemon in your collection"))
		return b.String()
	}

	maxVisible := m.height - 6
	if maxVisible < 3 {
		maxVisible = 3
	}
	start := 0
	if m.cursor >= maxVisible {
		start = m.cursor - maxVisible + 1
	}

	for i := start; i < len(visible) && i < start+maxVisible; i++ {
		r := visible[i]

		cursor := "  "
		nameStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			nameStyle = selectedStyle
		}

		id := metaStyle.Render(fmt.Sprintf("#%04d", r.PokemonID))
		name := nameStyle.Render(fmt.Sprintf("%-16s", truncStr(pokedex.FormatName(r.PokemonName), 16)))

		pills := make([]string, 0, len(r.Types))
		for _, t := range r.Types {
			pills = append(pills, typePill(t))
		}

		when := metaStyle.Render(formatTime(r.CaughtAt))

		line := cursor + id + "  " + name + "  " + strings.Join(pills, " ") + "  " + when
		if i == m.cursor {
			b.WriteString(selectedRowBg.Render(line) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}

	if m.confirming && m.cursor < len(visible) {
		name := pokedex.FormatName(visible[m.cursor].PokemonName)
		b.WriteString("\n " + errorStyle.Render(fmt.Sprintf("release %s? (y/n)", name)) + "\n")
	}
	if m.releasing {
		b.WriteString("\n " + dimStyle.Render("releasing...") + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}
