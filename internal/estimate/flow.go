// Package estimate drives the end-user conversation that turns a house area
// and a sequence of catalog picks into a cost estimate.
//
// Picking an option in a section always discards the selections of that
// section and every later one, extras included, so a finished estimate never
// mixes stale picks. Going back only moves the cursor and discards nothing;
// the discard happens on the next forward pick.
package estimate

import (
	"context"
	"log/slog"
	"time"

	"github.com/hperssn/buildcalc/internal/catalog"
	"github.com/hperssn/buildcalc/internal/domain"
	"github.com/hperssn/buildcalc/internal/metrics"
	"github.com/hperssn/buildcalc/internal/pricing"
	"github.com/hperssn/buildcalc/internal/storage"
)

type Flow struct {
	store    storage.ConfigStore
	log      *slog.Logger
	recorder metrics.Recorder
}

func New(store storage.ConfigStore, log *slog.Logger, recorder metrics.Recorder) *Flow {
	if log == nil {
		log = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Flow{store: store, log: log.With("flow", "estimate"), recorder: recorder}
}

// Home discards the calculation and shows the welcome screen.
func (f *Flow) Home(sess *domain.Session) domain.Reply {
	sess.Area = 0
	sess.ClearSelections()
	sess.Stage = domain.StageIdle
	return homeReply()
}

func (f *Flow) Start(sess *domain.Session) domain.Reply {
	sess.Area = 0
	sess.ClearSelections()
	sess.Stage = domain.StageAwaitingArea
	f.recorder.EstimateStarted()
	return areaReply()
}

func (f *Flow) SubmitArea(ctx context.Context, sess *domain.Session, text string) (domain.Reply, error) {
	if sess.Stage != domain.StageAwaitingArea {
		return domain.Reply{}, domain.Invalid("start a new calculation first")
	}

	area, ok := pricing.ParseDecimal(text)
	if !ok {
		return domain.Reply{}, domain.Invalid("could not read the area, enter a number such as 120")
	}

	doc, err := f.store.Get(ctx)
	if err != nil {
		return domain.Reply{}, err
	}
	if area <= 0 || !doc.AreaLimits.Contains(area) {
		return domain.Reply{}, domain.Invalid("the area must be between %d and %d m²",
			doc.AreaLimits.Min, doc.AreaLimits.Max)
	}

	sess.Area = area
	sess.ClearSelections()
	sess.Stage = domain.StageChoosingFoundation
	return render(doc, sess, ""), nil
}

// Pick records an option for section. The section may be the one currently
// asked or an earlier one reached through an older prompt, never a later one.
func (f *Flow) Pick(ctx context.Context, sess *domain.Session, section catalog.Section, id string) (domain.Reply, error) {
	current, ok := sess.Stage.Section()
	if !ok {
		return domain.Reply{}, domain.Invalid("there is nothing to choose right now")
	}
	if !section.Valid() || section == catalog.SectionExtras {
		return domain.Reply{}, domain.Invalid("unknown section %q", section)
	}
	if section.Index() > current.Index() {
		return domain.Reply{}, domain.Invalid("answer the current question first")
	}

	doc, err := f.store.Get(ctx)
	if err != nil {
		return domain.Reply{}, err
	}
	item, ok := doc.Lookup(section, id)
	if !ok {
		return domain.Reply{}, domain.Missing("option %q is unavailable", id)
	}

	effective := sess.Area
	if section == catalog.SectionRoof {
		effective = sess.Area * doc.RoofCoefficient
	}
	li := domain.LineItem{
		Section:             section,
		ID:                  item.ID,
		Title:               item.Title,
		EffectiveArea:       effective,
		PricePerSquareMeter: item.PricePerSquareMeter,
	}

	sess.DropFrom(section)
	sess.LineItems = append(sess.LineItems, li)
	sess.Stage = domain.ChoosingStage(catalog.Sections[section.Index()+1])

	f.log.Debug("option picked", "identity", sess.Identity, "section", section, "id", id)
	return render(doc, sess, pickedLine(li)), nil
}

// Back moves to the previous section without discarding anything. From the
// first section it returns to the welcome screen.
func (f *Flow) Back(ctx context.Context, sess *domain.Session) (domain.Reply, error) {
	current, ok := sess.Stage.Section()
	if !ok {
		return domain.Reply{}, domain.Invalid("there is nothing to go back to")
	}
	if current == catalog.SectionFoundation {
		return f.Home(sess), nil
	}

	doc, err := f.store.Get(ctx)
	if err != nil {
		return domain.Reply{}, err
	}
	sess.Stage = domain.ChoosingStage(catalog.Sections[current.Index()-1])
	return render(doc, sess, ""), nil
}

func (f *Flow) ToggleExtra(ctx context.Context, sess *domain.Session, id string) (domain.Reply, error) {
	if sess.Stage != domain.StageChoosingExtras {
		return domain.Reply{}, domain.Invalid("extras are offered after the roof")
	}

	doc, err := f.store.Get(ctx)
	if err != nil {
		return domain.Reply{}, err
	}
	if _, ok := doc.Lookup(catalog.SectionExtras, id); !ok {
		return domain.Reply{}, domain.Missing("option %q is unavailable", id)
	}

	sess.Extras.Toggle(id)
	return render(doc, sess, ""), nil
}

// Done turns the ticked extras into line items, totals everything and
// freezes the result.
func (f *Flow) Done(ctx context.Context, sess *domain.Session) (domain.Reply, error) {
	if sess.Stage != domain.StageChoosingExtras {
		return domain.Reply{}, domain.Invalid("finish choosing the sections first")
	}

	doc, err := f.store.Get(ctx)
	if err != nil {
		return domain.Reply{}, err
	}

	for _, it := range doc.Selectable(catalog.SectionExtras) {
		if !sess.Extras.Has(it.ID) {
			continue
		}
		sess.LineItems = append(sess.LineItems, domain.LineItem{
			Section:             catalog.SectionExtras,
			ID:                  it.ID,
			Title:               it.Title,
			EffectiveArea:       sess.Area,
			PricePerSquareMeter: it.PricePerSquareMeter,
		})
	}

	sum := pricing.Aggregate(sess.Area, sess.LineItems)
	sess.Result = &domain.Result{
		Area:                sess.Area,
		Total:               sum.Total,
		PricePerSquareMeter: sum.PricePerSquareMeter,
		SummaryText:         summaryText(sess.Area, sum),
		LineItems:           append([]domain.LineItem(nil), sess.LineItems...),
		CalculatedAt:        time.Now(),
	}
	sess.Stage = domain.StageShowingResult

	f.recorder.EstimateCompleted(sum.Total)
	f.log.Info("estimate completed", "identity", sess.Identity, "area", sess.Area,
		"total", sum.Total, "lines", len(sess.LineItems))
	return resultReply(sess.Result), nil
}

// Export returns the frozen result for the tabular export collaborator.
func (f *Flow) Export(sess *domain.Session) (*domain.Result, error) {
	if sess.Stage != domain.StageShowingResult || sess.Result == nil {
		return nil, domain.ErrNoResult
	}
	return sess.Clone().Result, nil
}

// Info explains how the calculator works; the stage is left alone.
func (f *Flow) Info(sess *domain.Session) domain.Reply {
	return domain.Reply{
		Stage:   sess.Stage,
		Text:    infoText,
		Buttons: []domain.Button{startButton, homeButton},
	}
}

func (f *Flow) Contact(sess *domain.Session) (domain.Reply, error) {
	if sess.Stage != domain.StageShowingResult {
		return domain.Reply{}, domain.Invalid("finish a calculation first")
	}
	return domain.Reply{
		Stage:   sess.Stage,
		Text:    contactText,
		Buttons: []domain.Button{showButton},
	}, nil
}

// Prompt re-renders the current stage.
func (f *Flow) Prompt(ctx context.Context, sess *domain.Session) (domain.Reply, error) {
	switch {
	case sess.Stage == domain.StageAwaitingArea:
		return areaReply(), nil
	case sess.Stage == domain.StageShowingResult && sess.Result != nil:
		return resultReply(sess.Result), nil
	case sess.Stage.IsChoosing():
		doc, err := f.store.Get(ctx)
		if err != nil {
			return domain.Reply{}, err
		}
		return render(doc, sess, ""), nil
	default:
		return f.Home(sess), nil
	}
}
