package domain

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hperssn/buildcalc/internal/catalog"
	"github.com/hperssn/buildcalc/internal/pricing"
)

// Session is the volatile state of one conversation. It is owned by a single
// identity and only ever touched by that identity's flow.
type Session struct {
	ID        string     `json:"id"`
	Identity  string     `json:"identity"`
	Stage     Stage      `json:"stage"`
	Area      float64    `json:"area"`
	LineItems []LineItem `json:"lineItems"`
	Extras    ExtraSet   `json:"extras"`
	Scratch   Scratch    `json:"scratch"`
	Result    *Result    `json:"result,omitempty"`
	StartedAt time.Time  `json:"startedAt"`
}

type LineItem struct {
	Section             catalog.Section `json:"section"`
	ID                  string          `json:"id"`
	Title               string          `json:"title"`
	EffectiveArea       float64         `json:"effectiveArea"`
	PricePerSquareMeter float64         `json:"pricePerSquareMeter"`
}

func (li LineItem) Cost() float64 {
	return pricing.LineCost(li.PricePerSquareMeter, li.EffectiveArea, 1)
}

// Result is the frozen outcome of a finished estimate. Export consumers read
// it as is and never recompute it.
type Result struct {
	Area                float64    `json:"area"`
	Total               float64    `json:"total"`
	PricePerSquareMeter float64    `json:"pricePerSquareMeter"`
	SummaryText         string     `json:"summaryText"`
	LineItems           []LineItem `json:"lineItems"`
	CalculatedAt        time.Time  `json:"calculatedAt"`
}

// ExtraSet is the set of extra ids the user has ticked.
type ExtraSet map[string]struct{}

func (s ExtraSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Toggle flips membership and reports whether id is now selected.
func (s ExtraSet) Toggle(id string) bool {
	if s.Has(id) {
		delete(s, id)
		return false
	}
	s[id] = struct{}{}
	return true
}

func (s ExtraSet) Clone() ExtraSet {
	c := make(ExtraSet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Scratch remembers what the operator is editing between prompts.
type Scratch struct {
	Section        catalog.Section `json:"section,omitempty"`
	ItemID         string          `json:"itemId,omitempty"`
	Field          Field           `json:"field,omitempty"`
	CoefficientKey CoefficientKey  `json:"coefficientKey,omitempty"`
}

func NewSession(id, identity string) *Session {
	if id == "" {
		id = uuid.New().String()
	}

	return &Session{
		ID:        id,
		Identity:  identity,
		Stage:     StageIdle,
		Extras:    make(ExtraSet),
		StartedAt: time.Now(),
	}
}

// ClearSelections drops everything chosen so far but keeps the area.
func (s *Session) ClearSelections() {
	s.LineItems = nil
	s.Extras = make(ExtraSet)
	s.Result = nil
}

// DropFrom removes the line items of section and of every later section,
// and clears the extras selection.
func (s *Session) DropFrom(section catalog.Section) {
	from := section.Index()
	kept := s.LineItems[:0]
	for _, li := range s.LineItems {
		if li.Section.Index() < from {
			kept = append(kept, li)
		}
	}
	s.LineItems = kept
	s.Extras = make(ExtraSet)
}

// LineItem returns the selection recorded for a non-extras section.
func (s *Session) LineItem(section catalog.Section) (LineItem, bool) {
	for _, li := range s.LineItems {
		if li.Section == section {
			return li, true
		}
	}
	return LineItem{}, false
}

// Clone returns a deep copy safe to hand outside the owning conversation.
func (s *Session) Clone() *Session {
	c := *s
	c.LineItems = append([]LineItem(nil), s.LineItems...)
	c.Extras = s.Extras.Clone()
	if s.Result != nil {
		r := *s.Result
		r.LineItems = append([]LineItem(nil), s.Result.LineItems...)
		c.Result = &r
	}
	return &c
}

// MarshalJSON renders the set as a sorted id list.
func (s ExtraSet) MarshalJSON() ([]byte, error) {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return json.Marshal(ids)
}

func (s *ExtraSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	*s = make(ExtraSet, len(ids))
	for _, id := range ids {
		(*s)[id] = struct{}{}
	}
	return nil
}
