package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMalformed = errors.New("malformed configuration")
	ErrNotObject = errors.New("configuration must be a JSON object")
	ErrShape     = errors.New("invalid configuration shape")
)

// Encode renders the document as indented UTF-8 JSON suitable for hand
// editing. Non-ASCII titles are written verbatim.
func Encode(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("encode configuration: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode parses a document without checking its shape.
func Decode(raw []byte) (*Document, error) {
	if !json.Valid(raw) {
		return nil, ErrMalformed
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal(raw, &top); err != nil || top == nil {
		return nil, ErrNotObject
	}

	var d Document
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return &d, nil
}

// Import decodes and shape-checks an operator supplied document.
func Import(raw []byte) (*Document, error) {
	d, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if err := Validate(d); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate performs the minimal shape check required before a document may
// replace the stored one.
func Validate(d *Document) error {
	if d.AreaLimits.Min <= 0 || d.AreaLimits.Min > d.AreaLimits.Max {
		return fmt.Errorf("%w: areaLimits must satisfy 0 < min <= max, got %d,%d",
			ErrShape, d.AreaLimits.Min, d.AreaLimits.Max)
	}
	if d.RoofCoefficient <= 0 {
		return fmt.Errorf("%w: roofCoefficient must be positive", ErrShape)
	}

	for _, s := range Sections {
		seen := make(map[string]bool)
		for _, it := range d.Items(s) {
			if it.ID == "" {
				return fmt.Errorf("%w: %s has an item without id", ErrShape, s)
			}
			if seen[it.ID] {
				return fmt.Errorf("%w: %s has duplicate id %q", ErrShape, s, it.ID)
			}
			seen[it.ID] = true
			if it.PricePerSquareMeter < 0 {
				return fmt.Errorf("%w: %s/%s has a negative price", ErrShape, s, it.ID)
			}
		}
	}
	return nil
}

// Unselectable lists the sections a user must pick from that currently
// offer no enabled item.
func Unselectable(d *Document) []Section {
	var out []Section
	for _, s := range Sections {
		if s == SectionExtras {
			continue
		}
		if len(d.Selectable(s)) == 0 {
			out = append(out, s)
		}
	}
	return out
}
