package pokedex

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/nkarpova/pokedeck/pkg/domain"
)

const spriteRepoURL = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon"

// SpriteURL returns the small front sprite URL for a Pokemon id.
func SpriteURL(id int) string {
	return fmt.Sprintf("%s/%d.png", spriteRepoURL, id)
}

// ArtworkURL returns the official artwork URL for a Pokemon id.
func ArtworkURL(id int) string {
	return fmt.Sprintf("%s/other/official-artwork/%d.png", spriteRepoURL, id)
}

// BestImageURL picks the preferred image for a Pokemon: official artwork,
// then the default front sprite, then a URL constructed from the id.
func BestImageURL(p domain.Pokemon) string {
	if p.Sprites.Other != nil && p.Sprites.Other.OfficialArtwork != nil &&
		p.Sprites.Other.OfficialArtwork.FrontDefault != "" {
		return p.Sprites.Other.OfficialArtwork.FrontDefault
	}
	if p.Sprites.FrontDefault != "" {
		return p.Sprites.FrontDefault
	}
	return SpriteURL(p.ID)
}

var resourceIDPattern = regexp.MustCompile(`/(\d+)/?$`)

// ExtractID pulls the trailing numeric id out of a PokeAPI resource URL.
// Returns 0 when the URL carries no id.
func ExtractID(resourceURL string) int {
	matches := resourceIDPattern.FindStringSubmatch(resourceURL)
	if matches == nil {
		return 0
	}
	id, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0
	}
	return id
}

// FormatName renders a directory name for display: first letter capitalized,
// first hyphen replaced with a space ("mr-mime" -> "Mr mime").
func FormatName(name string) string {
	if name == "" {
		return ""
	}
	name = strings.ToUpper(name[:1]) + name[1:]
	return strings.Replace(name, "-", " ", 1)
}

// FormatWeight renders directory hectograms as kilograms ("69" -> "6.9 kg").
func FormatWeight(weight int) string {
	return fmt.Sprintf("%.1f kg", float64(weight)/10)
}

// FormatHeight renders directory decimetres as metres ("7" -> "0.7 m").
func FormatHeight(height int) string {
	return fmt.Sprintf("%.1f m", float64(height)/10)
}

// typeColors maps each Pokemon type to its conventional display color.
var typeColors = map[string]string{
	"normal":   "#A8A878",
	"fire":     "#F08030",
	"water":    "#6890F0",
	"electric": "#F8D030",
	"grass":    "#78C850",
	"ice":      "#98D8D8",
	"fighting": "#C03028",
	"poison":   "#A040A0",
	"ground":   "#E0C068",
	"flying":   "#A890F0",
	"psychic":  "#F85888",
	"bug":      "#A8B820",
	"rock":     "#B8A038",
	"ghost":    "#705898",
	"dragon":   "#7038F8",
	"dark":     "#705848",
	"steel":    "#B8B8D0",
	"fairy":    "#EE99AC",
}

// defaultTypeColor is used for types missing from the table.
const defaultTypeColor = "#68A090"

// TypeColor returns the display hex color for a type name.
func TypeColor(name string) string {
	if c, ok := typeColors[strings.ToLower(name)]; ok {
		return c
	}
	return defaultTypeColor
}
