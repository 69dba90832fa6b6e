package admin

import (
	"fmt"
	"strings"
	"time"

	"github.com/hperssn/buildcalc/internal/catalog"
	"github.com/hperssn/buildcalc/internal/domain"
	"github.com/hperssn/buildcalc/internal/pricing"
)

var (
	homeButton         = domain.Button{Label: "Admin home", Action: domain.Action{Kind: domain.ActionAdminHome}}
	sectionsButton     = domain.Button{Label: "Edit sections", Action: domain.Action{Kind: domain.ActionAdminSections}}
	coefficientsButton = domain.Button{Label: "Coefficients", Action: domain.Action{Kind: domain.ActionAdminCoefficients}}
	exportButton       = domain.Button{Label: "Export JSON", Action: domain.Action{Kind: domain.ActionAdminExport}}
	importButton       = domain.Button{Label: "Import JSON", Action: domain.Action{Kind: domain.ActionAdminImport}}
)

func homeReply(updated time.Time) domain.Reply {
	text := "Administration"
	if !updated.IsZero() {
		text += "\nConfiguration updated " + updated.UTC().Format("2006-01-02 15:04:05 UTC")
	}
	return domain.Reply{
		Stage:   domain.StageAdminIdle,
		Text:    text,
		Buttons: []domain.Button{sectionsButton, coefficientsButton, exportButton, importButton},
	}
}

func sectionsReply() domain.Reply {
	buttons := make([]domain.Button, 0, len(catalog.Sections)+1)
	for _, s := range catalog.Sections {
		buttons = append(buttons, domain.Button{
			Label:  s.Title(),
			Action: domain.Action{Kind: domain.ActionAdminSection, Section: s},
		})
	}
	return domain.Reply{
		Stage:   domain.StageAdminChoosingSection,
		Text:    "Choose a section",
		Buttons: append(buttons, homeButton),
	}
}

// itemsReply lists every item of the section, disabled ones included.
func itemsReply(doc *catalog.Document, section catalog.Section) domain.Reply {
	items := doc.Sorted(section)
	options := make([]domain.Option, 0, len(items))
	for _, it := range items {
		options = append(options, domain.Option{
			Section: section,
			ID:      it.ID,
			Title:   it.Title,
			Enabled: it.Enabled,
		})
	}

	text := section.Title()
	if len(items) == 0 {
		text += "\nThe section is empty"
	}
	return domain.Reply{
		Stage:   domain.StageAdminChoosingItem,
		Text:    text,
		Options: options,
		Buttons: []domain.Button{sectionsButton, homeButton},
	}
}

func itemReply(section catalog.Section, it catalog.Item) domain.Reply {
	state := "enabled"
	toggle := "Disable"
	if !it.Enabled {
		state, toggle = "disabled", "Enable"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", it.Title)
	fmt.Fprintf(&b, "id: %s\n", it.ID)
	fmt.Fprintf(&b, "price: %s per m²\n", pricing.FormatRub(it.PricePerSquareMeter))
	fmt.Fprintf(&b, "order: %d\n", it.Order)
	fmt.Fprintf(&b, "state: %s", state)

	buttons := []domain.Button{{
		Label:  toggle,
		Action: domain.Action{Kind: domain.ActionAdminToggle, Section: section, ItemID: it.ID},
	}}
	for _, field := range domain.Fields {
		buttons = append(buttons, domain.Button{
			Label:  "Edit " + string(field),
			Action: domain.Action{Kind: domain.ActionAdminField, Section: section, ItemID: it.ID, Field: field},
		})
	}
	buttons = append(buttons,
		domain.Button{Label: "Back to list", Action: domain.Action{Kind: domain.ActionAdminSection, Section: section}},
		homeButton,
	)

	return domain.Reply{
		Stage:   domain.StageAdminItemMenu,
		Text:    b.String(),
		Buttons: buttons,
	}
}

func coefficientsReply(doc *catalog.Document) domain.Reply {
	lines := []string{"Document settings"}
	buttons := make([]domain.Button, 0, len(domain.CoefficientKeys)+1)
	for _, key := range domain.CoefficientKeys {
		lines = append(lines, fmt.Sprintf("%s: %s", key, coefficientEditors[key].current(doc)))
		buttons = append(buttons, domain.Button{
			Label:  "Edit " + string(key),
			Action: domain.Action{Kind: domain.ActionAdminCoefficient, Key: key},
		})
	}
	return domain.Reply{
		Stage:   domain.StageAdminCoefficientMenu,
		Text:    strings.Join(lines, "\n"),
		Buttons: append(buttons, homeButton),
	}
}

func valueReply(text string) domain.Reply {
	return domain.Reply{
		Stage:   domain.StageAdminWaitingValue,
		Text:    text,
		Buttons: []domain.Button{homeButton},
	}
}
