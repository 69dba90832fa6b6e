package estimate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hperssn/buildcalc/internal/catalog"
	"github.com/hperssn/buildcalc/internal/domain"
	"github.com/hperssn/buildcalc/internal/pricing"
)

const (
	welcomeText = "Welcome to the construction estimate calculator.\n" +
		"Get a preliminary price for your house in two or three minutes."
	areaText = "Enter the house area in m² (numbers only)"
	infoText = "How the estimate works:\n" +
		"1) You enter the house area.\n" +
		"2) You choose materials and works stage by stage.\n" +
		"3) The calculator prices each choice per m² and applies the roof coefficient.\n\n" +
		disclaimer
	contactText = "Send your phone number and city and a manager will contact you shortly."
	disclaimer  = "The estimate is preliminary and is not a public offer."
)

var (
	startButton   = domain.Button{Label: "Calculate", Action: domain.Action{Kind: domain.ActionStart}}
	homeButton    = domain.Button{Label: "Home", Action: domain.Action{Kind: domain.ActionRestart}}
	backButton    = domain.Button{Label: "Back", Action: domain.Action{Kind: domain.ActionBack}}
	doneButton    = domain.Button{Label: "Done", Action: domain.Action{Kind: domain.ActionDone}}
	restartButton = domain.Button{Label: "Start over", Action: domain.Action{Kind: domain.ActionRestart}}
	contactButton = domain.Button{Label: "Contact a manager", Action: domain.Action{Kind: domain.ActionContact}}
	showButton    = domain.Button{Label: "Back to result", Action: domain.Action{Kind: domain.ActionShow}}
	infoButton    = domain.Button{Label: "How it works", Action: domain.Action{Kind: domain.ActionInfo}}
)

var questions = map[catalog.Section]string{
	catalog.SectionFoundation: "Choose the foundation type",
	catalog.SectionWalls:      "Choose the wall type",
	catalog.SectionFloors:     "Choose the floor type",
	catalog.SectionRoof:       "Choose the roof type",
	catalog.SectionExtras:     "Additional works (tap to toggle, then Done)",
}

func homeReply() domain.Reply {
	return domain.Reply{
		Stage:   domain.StageIdle,
		Text:    welcomeText,
		Buttons: []domain.Button{startButton, infoButton},
	}
}

func areaReply() domain.Reply {
	return domain.Reply{
		Stage:   domain.StageAwaitingArea,
		Text:    areaText,
		Buttons: []domain.Button{homeButton},
	}
}

// coefficient is the area multiplier applied to a section's prices.
func coefficient(doc *catalog.Document, s catalog.Section) float64 {
	if s == catalog.SectionRoof {
		return doc.RoofCoefficient
	}
	return 1
}

// render shows the options of the section the session is choosing, each
// with the cost it would add.
func render(doc *catalog.Document, sess *domain.Session, header string) domain.Reply {
	section, _ := sess.Stage.Section()
	coef := coefficient(doc, section)

	var options []domain.Option
	for _, it := range doc.Selectable(section) {
		options = append(options, domain.Option{
			Section:     section,
			ID:          it.ID,
			Title:       it.Title,
			PreviewCost: pricing.LineCost(it.PricePerSquareMeter, sess.Area, coef),
			Selected:    section == catalog.SectionExtras && sess.Extras.Has(it.ID),
			Enabled:     true,
		})
	}

	text := questions[section]
	if header != "" {
		text = header + "\n\n" + text
	}

	buttons := []domain.Button{backButton, restartButton}
	if section == catalog.SectionExtras {
		buttons = append([]domain.Button{doneButton}, buttons...)
	}

	return domain.Reply{
		Stage:   sess.Stage,
		Text:    text,
		Options: options,
		Buttons: buttons,
	}
}

func pickedLine(li domain.LineItem) string {
	return fmt.Sprintf("%s: %s, %s", li.Section.Title(), li.Title, pricing.FormatRub(li.Cost()))
}

func resultReply(r *domain.Result) domain.Reply {
	return domain.Reply{
		Stage:   domain.StageShowingResult,
		Text:    r.SummaryText,
		Result:  r,
		Buttons: []domain.Button{restartButton, contactButton},
	}
}

func summaryText(area float64, sum pricing.Summary) string {
	return strings.Join([]string{
		"Area: " + strconv.FormatFloat(area, 'f', -1, 64) + " m²",
		"Total: " + pricing.FormatRub(sum.Total),
		"Price per m²: " + pricing.FormatRub(sum.PricePerSquareMeter),
		"",
		disclaimer,
	}, "\n")
}
