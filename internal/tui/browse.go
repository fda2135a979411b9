package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nkarpova/pokedeck/pkg/backend"
	"github.com/nkarpova/pokedeck/pkg/domain"
	"github.com/nkarpova/pokedeck/pkg/pokedex"
)

const (
	// searchDebounce is measured from the last keystroke.
	searchDebounce = 500 * time.Millisecond
	// randomSampleSize is the size of the initial working set.
	randomSampleSize = 20
	// typeMemberCap limits how many of a type's members are fetched.
	typeMemberCap = 30
	// searchResultCap limits how many search matches get full detail.
	searchResultCap = 20
)

// typesLoadedMsg carries the type dropdown contents.
type typesLoadedMsg struct {
	types []domain.NamedRef
	err   error
}

// membershipLoadedMsg carries the set of caught creature ids.
type membershipLoadedMsg struct {
	ids map[int]struct{}
	err error
}

// workingLoadedMsg replaces the working set. gen is the issuance generation;
// stale generations are discarded so a superseded load can never overwrite a
// later one.
type workingLoadedMsg struct {
	pokemon []domain.Pokemon
	err     error
	gen     int
}

// searchDebounceMsg fires when the debounce window after a keystroke elapses.
type searchDebounceMsg struct {
	gen int
}

// showDetailMsg asks the app to open the detail overlay. Pure notification.
type showDetailMsg struct {
	id int
}

// browseModel is the list/filter view over the creature directory: a working
// set (random sample, a type's members, or search results) crossed with the
// trainer's membership set. The three loads are independent; one failing
// never blocks or clears the others.
type browseModel struct {
	dex     *pokedex.Client
	backend *backend.Client

	types        []domain.NamedRef
	typesErr     string
	loadingTypes bool

	working    []domain.Pokemon
	loading    bool
	workingErr string
	gen        int // issuance counter for working-set loads

	caught    map[int]struct{}
	caughtErr string

	typeFilter string // selected type name, "" = random sample
	search     string
	searching  bool // typing in the search field
	onlyCaught bool

	cursor int
	width  int
	height int
}

func newBrowseModel(dex *pokedex.Client, bc *backend.Client) browseModel {
	return browseModel{
		dex:          dex,
		backend:      bc,
		caught:       map[int]struct{}{},
		loading:      true,
		loadingTypes: true,
	}
}

// Init issues the three activation loads concurrently.
func (m browseModel) Init() tea.Cmd {
	return tea.Batch(m.loadTypes(), m.loadMembership(), m.loadRandom())
}

func (m browseModel) loadTypes() tea.Cmd {
	dex := m.dex
	return func() tea.Msg {
		resp, err := dex.Types(context.Background())
		if err != nil {
			return typesLoadedMsg{err: err}
		}
		return typesLoadedMsg{types: resp.Results}
	}
}

func (m browseModel) loadMembership() tea.Cmd {
	bc := m.backend
	return func() tea.Msg {
		records, err := bc.Caught(context.Background(), backend.CaughtQuery{})
		if err != nil {
			return membershipLoadedMsg{err: err}
		}
		ids := make(map[int]struct{}, len(records))
		for _, r := range records {
			ids[r.PokemonID] = struct{}{}
		}
		return membershipLoadedMsg{ids: ids}
	}
}

func (m browseModel) loadRandom() tea.Cmd {
	dex := m.dex
	gen := m.gen
	return func() tea.Msg {
		sample := dex.RandomSample(context.Background(), randomSampleSize)
		return workingLoadedMsg{pokemon: sample, gen: gen}
	}
}

func (m browseModel) loadType(name string) tea.Cmd {
	dex := m.dex
	gen := m.gen
	var ref *domain.NamedRef
	for i := range m.types {
		if m.types[i].Name == name {
			ref = &m.types[i]
			break
		}
	}
	if ref == nil {
		// Unknown type name, fall back to the random sample so the
		// in-flight load set up by reload still lands.
		return m.loadRandom()
	}
	typeID := pokedex.ExtractID(ref.URL)
	return func() tea.Msg {
		members, err := dex.PokemonByType(context.Background(), typeID, typeMemberCap)
		return workingLoadedMsg{pokemon: members, err: err, gen: gen}
	}
}

func (m browseModel) loadSearch(query string) tea.Cmd {
	dex := m.dex
	gen := m.gen
	return func() tea.Msg {
		results, err := dex.Search(context.Background(), query, searchResultCap)
		return workingLoadedMsg{pokemon: results, err: err, gen: gen}
	}
}

// reload re-issues the load for the current filter state. Manual retry and
// the 'r' key both land here.
func (m *browseModel) reload() tea.Cmd {
	m.gen++
	m.loading = true
	m.workingErr = ""
	if strings.TrimSpace(m.search) != "" {
		return m.loadSearch(strings.TrimSpace(m.search))
	}
	if m.typeFilter != "" {
		return m.loadType(m.typeFilter)
	}
	return m.loadRandom()
}

func (m browseModel) Update(msg tea.Msg) (browseModel, tea.Cmd) {
	switch msg := msg.(type) {
	case typesLoadedMsg:
		m.loadingTypes = false
		if msg.err != nil {
			m.typesErr = msg.err.Error()
		} else {
			m.types = msg.types
			m.typesErr = ""
		}
		return m, nil

	case membershipLoadedMsg:
		if msg.err != nil {
			m.caughtErr = msg.err.Error()
		} else {
			m.caught = msg.ids
			m.caughtErr = ""
		}
		return m, nil

	case workingLoadedMsg:
		if msg.gen < m.gen {
			// Superseded by a later issuance; drop it.
			return m, nil
		}
		m.loading = false
		if msg.err != nil {
			m.workingErr = msg.err.Error()
		} else {
			m.working = msg.pokemon
			m.workingErr = ""
		}
		if m.cursor >= len(m.working) {
			m.cursor = 0
		}
		return m, nil

	case searchDebounceMsg:
		if msg.gen != m.gen {
			// Another keystroke arrived inside the window.
			return m, nil
		}
		query := strings.TrimSpace(m.search)
		m.loading = true
		m.workingErr = ""
		if query == "" {
			return m, m.loadRandom()
		}
		return m, m.loadSearch(query)

	case tea.FocusMsg:
		// Catch/release may have happened elsewhere; refresh membership
		// only, never the working set.
		return m, m.loadMembership()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m browseModel) updateSearch(msg tea.KeyMsg) (browseModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		return m, nil
	case "esc":
		m.searching = false
		if m.search != "" {
			m.search = ""
			return m, m.reload()
		}
		return m, nil
	default:
		before := m.search
		m.search = editRune(m.search, msg.String())
		if m.search == before {
			return m, nil
		}
		// Each keystroke supersedes any pending search; only the debounce
		// tick matching the latest generation fires.
		m.gen++
		gen := m.gen
		return m, tea.Tick(searchDebounce, func(time.Time) tea.Msg {
			return searchDebounceMsg{gen: gen}
		})
	}
}

func (m browseModel) updateList(msg tea.KeyMsg) (browseModel, tea.Cmd) {
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
			id := visible[m.cursor].ID
			return m, func() tea.Msg {
				return showDetailMsg{id: id}
			}
		}
	case "/":
		m.searching = true
	case "o":
		m.onlyCaught = !m.onlyCaught
		m.cursor = 0
	case "t", "T":
		m.typeFilter = m.cycleType(m.typeFilter, msg.String() == "t")
		m.search = ""
		m.cursor = 0
		return m, m.reload()
	case "r":
		return m, m.reload()
	}
	return m, nil
}

// cycleType steps through "" followed by the loaded type names.
func (m browseModel) cycleType(current string, forward bool) string {
	names := make([]string, 0, len(m.types))
	for _, t := range m.types {
		names = append(names, t.Name)
	}
	return cycleOption(current, names, forward)
}

// visible derives the rendered list: the working set, optionally restricted
// to caught creatures. Order is always the working set's order.
func (m browseModel) visible() []domain.Pokemon {
	if !m.onlyCaught {
		return m.working
	}
	out := make([]domain.Pokemon, 0, len(m.working))
	for _, p := range m.working {
		if _, ok := m.caught[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (m browseModel) View() string {
	var b strings.Builder

	// Search and filter bar
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
	b.WriteString("   ")
	if m.onlyCaught {
		b.WriteString(accentStyle.Render("[caught only]"))
	} else {
		b.WriteString(dimStyle.Render("[caught only]"))
	}
	b.WriteString("  " + helpKeyStyle.Render("o"))
	b.WriteString("\n")

	// Separator
	sepW := m.width - 2
	if sepW < 4 {
		sepW = 4
	}
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", sepW)) + "\n")

	if m.caughtErr != "" {
		b.WriteString(" " + errorStyle.Render("collection unavailable: "+m.caughtErr) + "\n")
	}
	if m.typesErr != "" {
		b.WriteString(" " + errorStyle.Render("types unavailable: "+m.typesErr) + "\n")
	}

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading pokemon..."))
		return b.String()
	}
	if m.workingErr != "" {
		b.WriteString(" " + errorStyle.Render("error: "+m.workingErr) + "\n")
		b.WriteString(" " + dimStyle.Render("r to retry"))
		return b.String()
	}

	visible := m.visible()
	if len(visible) == 0 {
		b.WriteString(" " + dimStyle.Render("no pokemon found"))
		return b.String()
	}

	maxVisible := m.height - 4
	if maxVisible < 3 {
		maxVisible = 3
	}
	start := 0
	if m.cursor >= maxVisible {
		start = m.cursor - maxVisible + 1
	}

	for i := start; i < len(visible) && i < start+maxVisible; i++ {
		p := visible[i]

		cursor := "  "
		nameStyle := dimStyle
		if i == m.cursor {
			cursor = accentStyle.Render("▸") + " "
			nameStyle = selectedStyle
		}

		marker := "  "
		if _, ok := m.caught[p.ID]; ok {
			marker = caughtStyle.Render("●") + " "
		}

		id := metaStyle.Render(fmt.Sprintf("#%04d", p.ID))
		name := nameStyle.Render(fmt.Sprintf("%-16s", truncStr(pokedex.FormatName(p.Name), 16)))

		pills := make([]string, 0, len(p.Types))
		for _, t := range p.Types {
			pills = append(pills, typePill(t.Type.Name))
		}

		line := cursor + marker + id + "  " + name + "  " + strings.Join(pills, " ")
		if i == m.cursor {
			b.WriteString(selectedRowBg.Render(line) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}

	return truncateToHeight(b.String(), m.height)
}
