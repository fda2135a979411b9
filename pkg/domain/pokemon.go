package domain

// NamedRef is a name + resource URL pair as returned by PokeAPI list endpoints.
type NamedRef struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Sprites holds the candidate image URLs for a Pokemon, ranked by preference.
type Sprites struct {
	FrontDefault string `json:"front_default"`
	FrontShiny   string `json:"front_shiny,omitempty"`
	Other        *struct {
		OfficialArtwork *struct {
			FrontDefault string `json:"front_default"`
		} `json:"official-artwork,omitempty"`
	} `json:"other,omitempty"`
}

// AbilitySlot is one ability entry on a Pokemon record.
type AbilitySlot struct {
	Ability  NamedRef `json:"ability"`
	IsHidden bool     `json:"is_hidden"`
}

// TypeSlot is one type entry on a Pokemon record. Slot order is display order.
type TypeSlot struct {
	Slot int      `json:"slot"`
	Type NamedRef `json:"type"`
}

// Pokemon is a full creature record from the directory.
// Height and weight are in PokeAPI decaunits (decimetres / hectograms).
type Pokemon struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	Height    int           `json:"height"`
	Weight    int           `json:"weight"`
	Sprites   Sprites       `json:"sprites"`
	Abilities []AbilitySlot `json:"abilities"`
	Types     []TypeSlot    `json:"types"`
}

// TypeNames returns the type names in slot order.
func (p Pokemon) TypeNames() []string {
	names := make([]string, 0, len(p.Types))
	for _, t := range p.Types {
		names = append(names, t.Type.Name)
	}
	return names
}

// VisibleAbilities returns the names of the non-hidden abilities.
func (p Pokemon) VisibleAbilities() []string {
	var names []string
	for _, a := range p.Abilities {
		if !a.IsHidden {
			names = append(names, a.Ability.Name)
		}
	}
	return names
}

// TypeDetail is the member listing for one Pokemon type.
type TypeDetail struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Pokemon []struct {
		Pokemon NamedRef `json:"pokemon"`
	} `json:"pokemon"`
}

// PokemonPage is one page of the full directory listing.
type PokemonPage struct {
	Count    int        `json:"count"`
	Next     *string    `json:"next"`
	Previous *string    `json:"previous"`
	Results  []NamedRef `json:"results"`
}

// TypesResponse is the type listing used for the filter dropdown.
type TypesResponse struct {
	Count   int        `json:"count"`
	Results []NamedRef `json:"results"`
}
