package domain

import "github.com/hperssn/buildcalc/internal/catalog"

// Reply is what a flow hands to the presentation layer after each action.
type Reply struct {
	Stage      Stage       `json:"stage"`
	Text       string      `json:"text"`
	Notice     string      `json:"notice,omitempty"`
	Options    []Option    `json:"options,omitempty"`
	Buttons    []Button    `json:"buttons,omitempty"`
	Result     *Result     `json:"result,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
}

// Option is one selectable catalog entry. PreviewCost is filled for estimate
// prompts, Selected for the extras checklist, Enabled for admin listings.
type Option struct {
	Section     catalog.Section `json:"section"`
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	PreviewCost float64         `json:"previewCost,omitempty"`
	Selected    bool            `json:"selected,omitempty"`
	Enabled     bool            `json:"enabled"`
}

// Button is a navigation action offered next to the options.
type Button struct {
	Label  string `json:"label"`
	Action Action `json:"action"`
}

type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Data        []byte `json:"data"`
}
