// Package runner keeps one conversation per identity and routes each action
// to the estimate or admin flow. Transitions of one identity run one at a
// time; different identities proceed in parallel.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/hperssn/buildcalc/internal/admin"
	"github.com/hperssn/buildcalc/internal/domain"
	"github.com/hperssn/buildcalc/internal/estimate"
	"github.com/hperssn/buildcalc/internal/metrics"
)

type Manager struct {
	mu            sync.Mutex
	conversations map[string]*conversation

	estimate *estimate.Flow
	admin    *admin.Flow
	log      *slog.Logger
	recorder metrics.Recorder
}

func NewManager(est *estimate.Flow, adm *admin.Flow, log *slog.Logger, recorder metrics.Recorder) *Manager {
	if log == nil {
		log = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}
	return &Manager{
		conversations: make(map[string]*conversation),
		estimate:      est,
		admin:         adm,
		log:           log.With("component", "runner"),
		recorder:      recorder,
	}
}

func (m *Manager) lookup(identity string) (*conversation, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.conversations[identity]
	return c, ok
}

func (m *Manager) conversation(identity string) *conversation {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.conversations[identity]
	if !ok {
		c = newConversation(identity)
		m.conversations[identity] = c
	}
	return c
}

// Events returns the stream of replies produced for identity, starting the
// conversation when needed so a reader can subscribe before acting. The
// stream opens with the latest reply, if any; older unread replies are
// discarded.
func (m *Manager) Events(identity string) (<-chan domain.Reply, error) {
	if identity == "" {
		return nil, domain.ErrUnauthorized
	}
	return m.conversation(identity).subscribe(), nil
}

// Session returns a snapshot of the identity's session.
func (m *Manager) Session(identity string) (*domain.Session, error) {
	c, ok := m.lookup(identity)
	if !ok {
		return nil, domain.ErrNoSession
	}
	return c.Session(), nil
}

// Export returns the frozen result of the identity's last estimate.
func (m *Manager) Export(identity string) (*domain.Result, error) {
	c, ok := m.lookup(identity)
	if !ok {
		return nil, domain.ErrNoResult
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return m.estimate.Export(c.session)
}

// Dispatch applies one action for identity and returns the reply to show.
//
// The flows work on a copy of the session. The copy replaces the session
// when the action succeeds or is rejected with a notice; any other error
// leaves the session untouched. Admin actions from non-operators are
// dropped before a conversation is created.
func (m *Manager) Dispatch(ctx context.Context, identity string, action domain.Action) (domain.Reply, error) {
	if identity == "" {
		return domain.Reply{}, domain.ErrUnauthorized
	}
	if action.Kind.IsAdmin() && !m.admin.Authorized(identity) {
		m.drop(identity, action)
		return domain.Reply{}, domain.ErrUnauthorized
	}

	c := m.conversation(identity)
	c.mu.Lock()
	defer c.mu.Unlock()

	work := c.session.Clone()
	reply, err := m.route(ctx, work, action)
	if err != nil {
		reject, ok := domain.AsReject(err)
		if !ok {
			if errors.Is(err, domain.ErrUnauthorized) {
				m.drop(identity, action)
			} else {
				m.log.Error("action failed", "identity", identity, "action", action.Kind, "error", err)
			}
			return domain.Reply{}, err
		}

		flow := flowOf(work, action)
		m.recorder.Rejected(flow, reason(reject))
		m.log.Debug("action rejected", "identity", identity, "action", action.Kind,
			"flow", flow, "notice", reject.Notice)

		reply, err = m.prompt(ctx, work, flow)
		if err != nil {
			m.log.Error("re-prompt failed", "identity", identity, "error", err)
			return domain.Reply{}, err
		}
		reply.Notice = reject.Notice
	}

	c.session = work
	if !c.publish(reply) {
		m.log.Debug("event buffer full, oldest reply dropped", "identity", identity)
	}
	return reply, nil
}

func (m *Manager) drop(identity string, action domain.Action) {
	m.recorder.AdminDropped()
	m.log.Debug("admin action dropped", "identity", identity, "action", action.Kind)
}

func (m *Manager) route(ctx context.Context, sess *domain.Session, a domain.Action) (domain.Reply, error) {
	switch a.Kind {
	case domain.ActionStart:
		return m.estimate.Start(sess), nil
	case domain.ActionText:
		return m.text(ctx, sess, a.Text)
	case domain.ActionFile:
		return m.file(ctx, sess, a.Payload)
	case domain.ActionPick:
		return m.estimate.Pick(ctx, sess, a.Section, a.ItemID)
	case domain.ActionBack:
		return m.estimate.Back(ctx, sess)
	case domain.ActionToggle:
		return m.estimate.ToggleExtra(ctx, sess, a.ItemID)
	case domain.ActionDone:
		return m.estimate.Done(ctx, sess)
	case domain.ActionRestart:
		*sess = *domain.NewSession("", sess.Identity)
		return m.estimate.Home(sess), nil
	case domain.ActionInfo:
		return m.estimate.Info(sess), nil
	case domain.ActionContact:
		return m.estimate.Contact(sess)
	case domain.ActionPrompt:
		return m.prompt(ctx, sess, flowOf(sess, a))
	case domain.ActionShow:
		if sess.Stage != domain.StageShowingResult {
			return domain.Reply{}, domain.Invalid("there is no result to show yet")
		}
		return m.estimate.Prompt(ctx, sess)

	case domain.ActionAdminEnter, domain.ActionAdminHome:
		return m.admin.Enter(ctx, sess)
	case domain.ActionAdminSections:
		return m.admin.Sections(sess)
	case domain.ActionAdminSection:
		return m.admin.SelectSection(ctx, sess, a.Section)
	case domain.ActionAdminItem:
		return m.admin.SelectItem(ctx, sess, a.Section, a.ItemID)
	case domain.ActionAdminToggle:
		return m.admin.Toggle(ctx, sess, a.Section, a.ItemID)
	case domain.ActionAdminField:
		return m.admin.EditField(ctx, sess, a.Section, a.ItemID, a.Field)
	case domain.ActionAdminCoefficients:
		return m.admin.Coefficients(ctx, sess)
	case domain.ActionAdminCoefficient:
		return m.admin.EditCoefficient(sess, a.Key)
	case domain.ActionAdminExport:
		return m.admin.Export(ctx, sess)
	case domain.ActionAdminImport:
		return m.admin.BeginImport(sess)
	}
	return domain.Reply{}, domain.Invalid("unknown action %q", a.Kind)
}

// text routes free text by the stage the session is in.
func (m *Manager) text(ctx context.Context, sess *domain.Session, text string) (domain.Reply, error) {
	switch {
	case sess.Stage == domain.StageAwaitingArea:
		return m.estimate.SubmitArea(ctx, sess, text)
	case sess.Stage == domain.StageAdminWaitingValue:
		return m.admin.SubmitValue(ctx, sess, text)
	case sess.Stage.IsChoosing():
		return domain.Reply{}, domain.Invalid("please choose one of the options")
	case sess.Stage == domain.StageShowingResult:
		return m.estimate.Prompt(ctx, sess)
	case sess.Stage.IsAdmin():
		return domain.Reply{}, domain.Invalid("please use the buttons")
	default:
		return m.estimate.Home(sess), nil
	}
}

func (m *Manager) file(ctx context.Context, sess *domain.Session, payload []byte) (domain.Reply, error) {
	if sess.Stage != domain.StageAdminImporting {
		return domain.Reply{}, domain.Invalid("a file is not expected here")
	}
	return m.admin.Import(ctx, sess, payload)
}

const (
	flowEstimate = "estimate"
	flowAdmin    = "admin"
)

func flowOf(sess *domain.Session, a domain.Action) string {
	if a.Kind.IsAdmin() || sess.Stage.IsAdmin() {
		return flowAdmin
	}
	return flowEstimate
}

func (m *Manager) prompt(ctx context.Context, sess *domain.Session, flow string) (domain.Reply, error) {
	if flow == flowAdmin {
		return m.admin.Prompt(ctx, sess)
	}
	return m.estimate.Prompt(ctx, sess)
}

func reason(r *domain.RejectError) string {
	if errors.Is(r, domain.ErrNotFound) {
		return "not_found"
	}
	return "invalid"
}
