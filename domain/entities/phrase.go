package entities

// PhraseKind enumerates the fixed step templates the synthesizer emits.
// Renderers resolve steps from the phrase instead of re-parsing action text.
type PhraseKind string

const (
	PhraseNavigate      PhraseKind = "navigate"
	PhraseVerifyTitle   PhraseKind = "verify_title"
	PhraseVerifyCount   PhraseKind = "verify_count"
	PhraseClickButton   PhraseKind = "click_button"
	PhraseClickLink     PhraseKind = "click_link"
	PhraseEnterText     PhraseKind = "enter_text"
	PhraseSubmitForm    PhraseKind = "submit_form"
	PhraseVerifyVisible PhraseKind = "verify_visible"
	PhraseOpenScreen    PhraseKind = "open_screen"

	// A check a person performs by hand; renderers emit it as a comment
	PhraseManual PhraseKind = "manual"
)

// Phrase carries the typed parameters of a templated step
type Phrase struct {
	Kind     PhraseKind `json:"kind"`
	Target   string     `json:"target,omitempty"`   // element label to act on
	Selector string     `json:"selector,omitempty"` // driver selector, when known
	Field    string     `json:"field,omitempty"`    // input field name or id
	Value    string     `json:"value,omitempty"`    // literal to type
	Text     string     `json:"text,omitempty"`     // text expected to be visible
	URL      string     `json:"url,omitempty"`
	Count    int        `json:"count,omitempty"`
}
