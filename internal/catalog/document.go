// Package catalog holds the pricing configuration document shared by the
// estimate and admin conversations.
package catalog

import (
	"encoding/json"
	"sort"
)

type Section string

const (
	SectionFoundation Section = "foundation"
	SectionWalls      Section = "walls"
	SectionFloors     Section = "floors"
	SectionRoof       Section = "roof"
	SectionExtras     Section = "extras"
)

// Sections lists every section in estimate order.
var Sections = []Section{
	SectionFoundation,
	SectionWalls,
	SectionFloors,
	SectionRoof,
	SectionExtras,
}

// Index returns the position of s in Sections, or -1.
func (s Section) Index() int {
	for i, sec := range Sections {
		if sec == s {
			return i
		}
	}
	return -1
}

func (s Section) Valid() bool {
	return s.Index() >= 0
}

// Title is the human readable section name.
func (s Section) Title() string {
	switch s {
	case SectionFoundation:
		return "Foundation"
	case SectionWalls:
		return "Walls"
	case SectionFloors:
		return "Floors"
	case SectionRoof:
		return "Roof"
	case SectionExtras:
		return "Extras"
	default:
		return string(s)
	}
}

type AreaLimits struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether area lies inside the inclusive bounds.
func (l AreaLimits) Contains(area float64) bool {
	return area >= float64(l.Min) && area <= float64(l.Max)
}

type Item struct {
	ID                  string  `json:"id"`
	Title               string  `json:"title"`
	PricePerSquareMeter float64 `json:"pricePerSquareMeter"`
	Enabled             bool    `json:"enabled"`
	Order               int     `json:"order"`
}

// UnmarshalJSON treats a missing "enabled" key as enabled.
func (it *Item) UnmarshalJSON(data []byte) error {
	type plain Item
	aux := struct {
		*plain
		Enabled *bool `json:"enabled"`
	}{plain: (*plain)(it)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	it.Enabled = aux.Enabled == nil || *aux.Enabled
	return nil
}

type Document struct {
	AreaLimits      AreaLimits `json:"areaLimits"`
	RoofCoefficient float64    `json:"roofCoefficient"`
	Foundation      []Item     `json:"foundation"`
	Walls           []Item     `json:"walls"`
	Floors          []Item     `json:"floors"`
	Roof            []Item     `json:"roof"`
	Extras          []Item     `json:"extras"`
}

func (d *Document) items(s Section) *[]Item {
	switch s {
	case SectionFoundation:
		return &d.Foundation
	case SectionWalls:
		return &d.Walls
	case SectionFloors:
		return &d.Floors
	case SectionRoof:
		return &d.Roof
	case SectionExtras:
		return &d.Extras
	default:
		return nil
	}
}

// Items returns the stored items of a section in storage order.
func (d *Document) Items(s Section) []Item {
	p := d.items(s)
	if p == nil {
		return nil
	}
	return *p
}

// Find returns a pointer into the document so callers can edit in place.
func (d *Document) Find(s Section, id string) (*Item, bool) {
	p := d.items(s)
	if p == nil {
		return nil, false
	}
	for i := range *p {
		if (*p)[i].ID == id {
			return &(*p)[i], true
		}
	}
	return nil, false
}

// Selectable returns the enabled items of a section sorted by Order.
func (d *Document) Selectable(s Section) []Item {
	var out []Item
	for _, it := range d.Items(s) {
		if it.Enabled {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Sorted returns all items of a section, disabled included, sorted by Order.
func (d *Document) Sorted(s Section) []Item {
	out := append([]Item(nil), d.Items(s)...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Lookup finds an enabled item.
func (d *Document) Lookup(s Section, id string) (Item, bool) {
	it, ok := d.Find(s, id)
	if !ok || !it.Enabled {
		return Item{}, false
	}
	return *it, true
}

func (d *Document) Clone() *Document {
	c := *d
	for _, s := range Sections {
		src := d.Items(s)
		if src == nil {
			continue
		}
		*c.items(s) = append([]Item(nil), src...)
	}
	return &c
}
