package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/hperssn/buildcalc/internal/catalog"
)

func TestNewSessionGeneratesID(t *testing.T) {
	s := NewSession("", "user-1")

	if s.ID == "" {
		t.Fatalf("expected generated session id")
	}
	if s.Stage != StageIdle {
		t.Fatalf("stage = %s, want %s", s.Stage, StageIdle)
	}
	if s.Extras == nil {
		t.Fatalf("extras set must be allocated")
	}

	other := NewSession("fixed", "user-1")
	if other.ID != "fixed" {
		t.Fatalf("expected caller supplied id to be kept, got %s", other.ID)
	}
}

func TestDropFrom(t *testing.T) {
	tests := []struct {
		name    string
		section catalog.Section
		want    []catalog.Section
	}{
		{name: "foundation drops everything", section: catalog.SectionFoundation, want: nil},
		{name: "walls keeps foundation", section: catalog.SectionWalls, want: []catalog.Section{catalog.SectionFoundation}},
		{name: "roof keeps first three", section: catalog.SectionRoof, want: []catalog.Section{
			catalog.SectionFoundation, catalog.SectionWalls, catalog.SectionFloors,
		}},
		{name: "extras keeps all sections", section: catalog.SectionExtras, want: []catalog.Section{
			catalog.SectionFoundation, catalog.SectionWalls, catalog.SectionFloors, catalog.SectionRoof,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSession("", "u")
			s.Area = 100
			for _, sec := range catalog.Sections {
				s.LineItems = append(s.LineItems, LineItem{Section: sec, ID: string(sec)})
			}
			s.Extras.Toggle("electric")

			s.DropFrom(tt.section)

			if len(s.LineItems) != len(tt.want) {
				t.Fatalf("kept %d line items, want %d", len(s.LineItems), len(tt.want))
			}
			for i, sec := range tt.want {
				if s.LineItems[i].Section != sec {
					t.Errorf("line item %d section = %s, want %s", i, s.LineItems[i].Section, sec)
				}
			}
			if len(s.Extras) != 0 {
				t.Errorf("extras must be cleared, got %d", len(s.Extras))
			}
		})
	}
}

func TestExtraSetToggleTwiceRestores(t *testing.T) {
	s := ExtraSet{"water": {}}

	if !s.Toggle("electric") {
		t.Fatalf("first toggle should select")
	}
	if s.Toggle("electric") {
		t.Fatalf("second toggle should deselect")
	}
	if len(s) != 1 || !s.Has("water") {
		t.Fatalf("set changed after toggle pair: %v", s)
	}
}

func TestExtraSetJSON(t *testing.T) {
	s := ExtraSet{"water": {}, "electric": {}}

	raw, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `["electric","water"]` {
		t.Fatalf("unexpected json %s", raw)
	}

	var back ExtraSet
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !back.Has("water") || !back.Has("electric") || len(back) != 2 {
		t.Fatalf("round trip lost ids: %v", back)
	}
}

func TestCloneIsDeep(t *testing.T) {
	s := NewSession("", "u")
	s.LineItems = []LineItem{{Section: catalog.SectionFoundation, ID: "strip"}}
	s.Extras.Toggle("water")
	s.Result = &Result{LineItems: []LineItem{{ID: "strip"}}}

	c := s.Clone()
	c.LineItems[0].ID = "slab"
	c.Extras.Toggle("sewer")
	c.Result.LineItems[0].ID = "slab"

	if s.LineItems[0].ID != "strip" || s.Result.LineItems[0].ID != "strip" {
		t.Fatalf("clone shares line items with original")
	}
	if s.Extras.Has("sewer") {
		t.Fatalf("clone shares extras with original")
	}
}

func TestStageSection(t *testing.T) {
	for _, sec := range catalog.Sections {
		st := ChoosingStage(sec)
		got, ok := st.Section()
		if !ok || got != sec {
			t.Errorf("stage %s maps back to %s", st, got)
		}
	}
	if StageAwaitingArea.IsChoosing() {
		t.Errorf("awaiting area is not a choosing stage")
	}
	if !StageAdminWaitingValue.IsAdmin() || StageChoosingRoof.IsAdmin() {
		t.Errorf("admin stage classification is wrong")
	}
}

func TestRejectError(t *testing.T) {
	err := fmt.Errorf("pick: %w", Missing("option %q is unavailable", "slab"))

	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound in chain")
	}
	re, ok := AsReject(err)
	if !ok {
		t.Fatalf("expected a RejectError")
	}
	if re.Notice != `option "slab" is unavailable` {
		t.Fatalf("notice = %q", re.Notice)
	}
	if _, ok := AsReject(ErrUnauthorized); ok {
		t.Fatalf("plain sentinel is not a rejection")
	}
}
