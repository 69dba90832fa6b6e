// Package admin implements the operator conversation that edits the pricing
// catalog. Every edit reads the whole document, changes it and writes it
// back; concurrent operators overwrite each other.
package admin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hperssn/buildcalc/internal/catalog"
	"github.com/hperssn/buildcalc/internal/domain"
	"github.com/hperssn/buildcalc/internal/metrics"
	"github.com/hperssn/buildcalc/internal/storage"
)

type Flow struct {
	store     storage.ConfigStore
	operators map[string]struct{}
	log       *slog.Logger
	recorder  metrics.Recorder
}

func New(store storage.ConfigStore, operators []string, log *slog.Logger, recorder metrics.Recorder) *Flow {
	if log == nil {
		log = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	set := make(map[string]struct{}, len(operators))
	for _, id := range operators {
		if id = strings.TrimSpace(id); id != "" {
			set[id] = struct{}{}
		}
	}
	return &Flow{store: store, operators: set, log: log.With("flow", "admin"), recorder: recorder}
}

// Authorized reports whether identity may use the admin flow.
func (f *Flow) Authorized(identity string) bool {
	_, ok := f.operators[identity]
	return ok
}

func (f *Flow) guard(sess *domain.Session) error {
	if sess == nil || !f.Authorized(sess.Identity) {
		return domain.ErrUnauthorized
	}
	return nil
}

// Enter opens the admin home screen and forgets any edit in progress.
func (f *Flow) Enter(ctx context.Context, sess *domain.Session) (domain.Reply, error) {
	if err := f.guard(sess); err != nil {
		return domain.Reply{}, err
	}

	return f.home(ctx, sess), nil
}

// home shows the admin home screen. A failed timestamp read only drops the
// timestamp line.
func (f *Flow) home(ctx context.Context, sess *domain.Session) domain.Reply {
	updated, err := f.store.UpdatedAt(ctx)
	if err != nil {
		f.log.Warn("read configuration timestamp", "error", err)
		updated = time.Time{}
	}

	sess.Scratch = domain.Scratch{}
	sess.Stage = domain.StageAdminIdle
	return homeReply(updated)
}

func (f *Flow) Sections(sess *domain.Session) (domain.Reply, error) {
	if err := f.guard(sess); err != nil {
		return domain.Reply{}, err
	}
	sess.Stage = domain.StageAdminChoosingSection
	return sectionsReply(), nil
}

func (f *Flow) SelectSection(ctx context.Context, sess *domain.Session, section catalog.Section) (domain.Reply, error) {
	if err := f.guard(sess); err != nil {
		return domain.Reply{}, err
	}
	if !section.Valid() {
		return domain.Reply{}, domain.Missing("unknown section %q", section)
	}

	doc, err := f.store.Get(ctx)
	if err != nil {
		return domain.Reply{}, err
	}

	sess.Scratch = domain.Scratch{Section: section}
	sess.Stage = domain.StageAdminChoosingItem
	return itemsReply(doc, section), nil
}

func (f *Flow) SelectItem(ctx context.Context, sess *domain.Session, section catalog.Section, id string) (domain.Reply, error) {
	if err := f.guard(sess); err != nil {
		return domain.Reply{}, err
	}

	doc, err := f.store.Get(ctx)
	if err != nil {
		return domain.Reply{}, err
	}
	it, ok := doc.Find(section, id)
	if !ok {
		return domain.Reply{}, domain.Missing("item %s/%s not found", section, id)
	}

	sess.Scratch = domain.Scratch{Section: section, ItemID: id}
	sess.Stage = domain.StageAdminItemMenu
	return itemReply(section, *it), nil
}

// Toggle flips the item's enabled flag and saves at once.
func (f *Flow) Toggle(ctx context.Context, sess *domain.Session, section catalog.Section, id string) (domain.Reply, error) {
	if err := f.guard(sess); err != nil {
		return domain.Reply{}, err
	}

	doc, err := f.store.Get(ctx)
	if err != nil {
		return domain.Reply{}, err
	}
	it, ok := doc.Find(section, id)
	if !ok {
		return domain.Reply{}, domain.Missing("item %s/%s not found", section, id)
	}

	it.Enabled = !it.Enabled
	if err := f.save(ctx, doc, "admin"); err != nil {
		return domain.Reply{}, err
	}

	f.log.Info("item toggled", "identity", sess.Identity, "section", section, "id", id, "enabled", it.Enabled)
	sess.Scratch = domain.Scratch{Section: section, ItemID: id}
	sess.Stage = domain.StageAdminItemMenu
	reply := itemReply(section, *it)
	reply.Notice = "Saved"
	return reply, nil
}

// EditField asks for a new value of one item attribute.
func (f *Flow) EditField(ctx context.Context, sess *domain.Session, section catalog.Section, id string, field domain.Field) (domain.Reply, error) {
	if err := f.guard(sess); err != nil {
		return domain.Reply{}, err
	}
	editor, ok := fieldEditors[field]
	if !ok {
		return domain.Reply{}, domain.Invalid("field %q cannot be edited", field)
	}

	doc, err := f.store.Get(ctx)
	if err != nil {
		return domain.Reply{}, err
	}
	if _, ok := doc.Find(section, id); !ok {
		return domain.Reply{}, domain.Missing("item %s/%s not found", section, id)
	}

	sess.Scratch = domain.Scratch{Section: section, ItemID: id, Field: field}
	sess.Stage = domain.StageAdminWaitingValue
	return valueReply(fmt.Sprintf("Enter a new %s (%s)", field, editor.hint)), nil
}

func (f *Flow) Coefficients(ctx context.Context, sess *domain.Session) (domain.Reply, error) {
	if err := f.guard(sess); err != nil {
		return domain.Reply{}, err
	}

	doc, err := f.store.Get(ctx)
	if err != nil {
		return domain.Reply{}, err
	}

	sess.Scratch = domain.Scratch{}
	sess.Stage = domain.StageAdminCoefficientMenu
	return coefficientsReply(doc), nil
}

// EditCoefficient asks for a new value of a document-wide setting.
func (f *Flow) EditCoefficient(sess *domain.Session, key domain.CoefficientKey) (domain.Reply, error) {
	if err := f.guard(sess); err != nil {
		return domain.Reply{}, err
	}
	editor, ok := coefficientEditors[key]
	if !ok {
		return domain.Reply{}, domain.Invalid("unknown setting %q", key)
	}

	sess.Scratch = domain.Scratch{CoefficientKey: key}
	sess.Stage = domain.StageAdminWaitingValue
	return valueReply(fmt.Sprintf("Enter %s (%s)", key, editor.hint)), nil
}

// SubmitValue applies the operator's answer to the pending edit. A value
// that does not parse keeps the stage and the edit target so the operator
// can simply try again.
func (f *Flow) SubmitValue(ctx context.Context, sess *domain.Session, text string) (domain.Reply, error) {
	if err := f.guard(sess); err != nil {
		return domain.Reply{}, err
	}
	if sess.Stage != domain.StageAdminWaitingValue {
		return domain.Reply{}, domain.Invalid("no edit is pending")
	}

	raw := strings.TrimSpace(text)
	if sess.Scratch.CoefficientKey != "" {
		return f.submitCoefficient(ctx, sess, raw)
	}
	return f.submitField(ctx, sess, raw)
}

func (f *Flow) submitCoefficient(ctx context.Context, sess *domain.Session, raw string) (domain.Reply, error) {
	key := sess.Scratch.CoefficientKey
	editor, ok := coefficientEditors[key]
	if !ok {
		return f.lostTarget(sess, "unknown setting %q", key)
	}

	doc, err := f.store.Get(ctx)
	if err != nil {
		return domain.Reply{}, err
	}
	if err := editor.apply(doc, raw); err != nil {
		return domain.Reply{}, err
	}
	if err := f.save(ctx, doc, "admin"); err != nil {
		return domain.Reply{}, err
	}

	f.log.Info("setting changed", "identity", sess.Identity, "key", key, "value", raw)
	reply := f.home(ctx, sess)
	reply.Notice = "Saved"
	return reply, nil
}

func (f *Flow) submitField(ctx context.Context, sess *domain.Session, raw string) (domain.Reply, error) {
	target := sess.Scratch
	editor, ok := fieldEditors[target.Field]
	if !ok {
		return f.lostTarget(sess, "field %q cannot be edited", target.Field)
	}

	doc, err := f.store.Get(ctx)
	if err != nil {
		return domain.Reply{}, err
	}
	it, ok := doc.Find(target.Section, target.ItemID)
	if !ok {
		return f.lostTarget(sess, "item %s/%s not found", target.Section, target.ItemID)
	}
	if err := editor.apply(it, raw); err != nil {
		return domain.Reply{}, err
	}
	if err := f.save(ctx, doc, "admin"); err != nil {
		return domain.Reply{}, err
	}

	f.log.Info("item edited", "identity", sess.Identity, "section", target.Section,
		"id", target.ItemID, "field", target.Field)
	sess.Scratch = domain.Scratch{Section: target.Section}
	sess.Stage = domain.StageAdminChoosingItem
	reply := itemsReply(doc, target.Section)
	reply.Notice = "Saved"
	return reply, nil
}

// lostTarget abandons an edit whose target no longer exists.
func (f *Flow) lostTarget(sess *domain.Session, format string, args ...any) (domain.Reply, error) {
	sess.Scratch = domain.Scratch{}
	sess.Stage = domain.StageAdminIdle
	return domain.Reply{}, domain.Missing(format, args...)
}

// Export renders the stored document as a downloadable JSON file.
func (f *Flow) Export(ctx context.Context, sess *domain.Session) (domain.Reply, error) {
	if err := f.guard(sess); err != nil {
		return domain.Reply{}, err
	}

	doc, err := f.store.Get(ctx)
	if err != nil {
		return domain.Reply{}, err
	}
	raw, err := catalog.Encode(doc)
	if err != nil {
		return domain.Reply{}, err
	}

	return domain.Reply{
		Stage: sess.Stage,
		Text:  "Configuration export",
		Attachment: &domain.Attachment{
			Filename:    "config.json",
			ContentType: "application/json",
			Data:        raw,
		},
	}, nil
}

func (f *Flow) BeginImport(sess *domain.Session) (domain.Reply, error) {
	if err := f.guard(sess); err != nil {
		return domain.Reply{}, err
	}
	sess.Scratch = domain.Scratch{}
	sess.Stage = domain.StageAdminImporting
	return domain.Reply{
		Stage:   sess.Stage,
		Text:    "Send the configuration JSON file (config.json)",
		Buttons: []domain.Button{homeButton},
	}, nil
}

// Import replaces the whole stored document with the uploaded one after a
// minimal shape check. Nothing is merged.
func (f *Flow) Import(ctx context.Context, sess *domain.Session, payload []byte) (domain.Reply, error) {
	if err := f.guard(sess); err != nil {
		return domain.Reply{}, err
	}
	if sess.Stage != domain.StageAdminImporting {
		return domain.Reply{}, domain.Invalid("choose import first")
	}

	doc, err := catalog.Import(payload)
	switch {
	case errors.Is(err, catalog.ErrNotObject):
		return domain.Reply{}, domain.Invalid("the configuration must be a JSON object")
	case errors.Is(err, catalog.ErrMalformed):
		return domain.Reply{}, domain.Invalid("could not read the JSON file")
	case errors.Is(err, catalog.ErrShape):
		return domain.Reply{}, domain.Invalid("%s", strings.TrimPrefix(err.Error(), catalog.ErrShape.Error()+": "))
	case err != nil:
		return domain.Reply{}, err
	}

	if empty := catalog.Unselectable(doc); len(empty) > 0 {
		f.log.Warn("imported configuration leaves sections without options", "sections", empty)
	}
	if err := f.save(ctx, doc, "import"); err != nil {
		return domain.Reply{}, err
	}

	f.log.Info("configuration imported", "identity", sess.Identity, "bytes", len(payload))
	reply := f.home(ctx, sess)
	reply.Notice = "Import complete"
	return reply, nil
}

func (f *Flow) save(ctx context.Context, doc *catalog.Document, source string) error {
	if err := f.store.Set(ctx, doc); err != nil {
		return err
	}
	f.recorder.ConfigWritten(source)
	return nil
}

// Prompt re-renders the current admin stage.
func (f *Flow) Prompt(ctx context.Context, sess *domain.Session) (domain.Reply, error) {
	if err := f.guard(sess); err != nil {
		return domain.Reply{}, err
	}

	switch sess.Stage {
	case domain.StageAdminChoosingSection:
		return sectionsReply(), nil
	case domain.StageAdminChoosingItem:
		return f.SelectSection(ctx, sess, sess.Scratch.Section)
	case domain.StageAdminItemMenu:
		return f.SelectItem(ctx, sess, sess.Scratch.Section, sess.Scratch.ItemID)
	case domain.StageAdminCoefficientMenu:
		return f.Coefficients(ctx, sess)
	case domain.StageAdminWaitingValue:
		if key := sess.Scratch.CoefficientKey; key != "" {
			return valueReply(fmt.Sprintf("Enter %s (%s)", key, coefficientEditors[key].hint)), nil
		}
		field := sess.Scratch.Field
		return valueReply(fmt.Sprintf("Enter a new %s (%s)", field, fieldEditors[field].hint)), nil
	case domain.StageAdminImporting:
		return f.BeginImport(sess)
	default:
		return f.Enter(ctx, sess)
	}
}
