package domain

import "github.com/hperssn/buildcalc/internal/catalog"

type ActionKind string

const (
	ActionStart   ActionKind = "start"
	ActionText    ActionKind = "text"
	ActionFile    ActionKind = "file"
	ActionPick    ActionKind = "pick"
	ActionBack    ActionKind = "back"
	ActionToggle  ActionKind = "toggle"
	ActionDone    ActionKind = "done"
	ActionRestart ActionKind = "restart"
	ActionInfo    ActionKind = "info"
	ActionContact ActionKind = "contact"
	ActionShow    ActionKind = "show"
	ActionPrompt  ActionKind = "prompt"

	ActionAdminEnter        ActionKind = "admin.enter"
	ActionAdminHome         ActionKind = "admin.home"
	ActionAdminSections     ActionKind = "admin.sections"
	ActionAdminSection      ActionKind = "admin.section"
	ActionAdminItem         ActionKind = "admin.item"
	ActionAdminToggle       ActionKind = "admin.toggle"
	ActionAdminField        ActionKind = "admin.field"
	ActionAdminCoefficients ActionKind = "admin.coefficients"
	ActionAdminCoefficient  ActionKind = "admin.coefficient"
	ActionAdminExport       ActionKind = "admin.export"
	ActionAdminImport       ActionKind = "admin.import"
)

// IsAdmin reports whether the action always belongs to the admin flow.
func (k ActionKind) IsAdmin() bool {
	switch k {
	case ActionAdminEnter, ActionAdminHome, ActionAdminSections, ActionAdminSection,
		ActionAdminItem, ActionAdminToggle, ActionAdminField, ActionAdminCoefficients,
		ActionAdminCoefficient, ActionAdminExport, ActionAdminImport:
		return true
	}
	return false
}

// Action is one identity-tagged event delivered by the transport.
type Action struct {
	Kind    ActionKind      `json:"kind"`
	Section catalog.Section `json:"section,omitempty"`
	ItemID  string          `json:"itemId,omitempty"`
	Field   Field           `json:"field,omitempty"`
	Key     CoefficientKey  `json:"key,omitempty"`
	Text    string          `json:"text,omitempty"`
	Payload []byte          `json:"-"`
}

// Field is an editable catalog item attribute.
type Field string

const (
	FieldTitle Field = "title"
	FieldPrice Field = "price"
	FieldOrder Field = "order"
)

// Fields lists the editable attributes in menu order.
var Fields = []Field{FieldTitle, FieldPrice, FieldOrder}

// CoefficientKey names a document-wide setting.
type CoefficientKey string

const (
	CoefficientRoof       CoefficientKey = "roofCoefficient"
	CoefficientAreaLimits CoefficientKey = "areaLimits"
)

var CoefficientKeys = []CoefficientKey{CoefficientRoof, CoefficientAreaLimits}
