package entities

import "strings"

// ElementType identifies a category of extracted page element
type ElementType string

const (
	ElementPage   ElementType = "page"
	ElementButton ElementType = "button"
	ElementInput  ElementType = "input"
	ElementLink   ElementType = "link"
	ElementForm   ElementType = "form"
	ElementScreen ElementType = "screen"

	// Categories of cases not derived from a single snapshot element
	CategoryGeneric ElementType = "generic"
	CategoryAI      ElementType = "ai"
)

// Element represents a single interactive element on a page or app screen
type Element struct {
	Text        string `json:"text"`                  // Visible text or label
	ID          string `json:"id,omitempty"`          // Stable identifier, if any
	Name        string `json:"name,omitempty"`        // name attribute (inputs)
	Selector    string `json:"selector,omitempty"`    // CSS selector usable by a driver
	Type        string `json:"type,omitempty"`        // input type, tag name, etc.
	Href        string `json:"href,omitempty"`        // link target
	Placeholder string `json:"placeholder,omitempty"` // input placeholder
	AriaLabel   string `json:"ariaLabel,omitempty"`
}

// Label - returns the best human readable label for the element
func (e Element) Label() string {
	for _, v := range []string{e.Text, e.AriaLabel, e.Placeholder, e.Name, e.ID} {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// Target - returns the selector a driver should use to find the element
func (e Element) Target() string {
	switch {
	case e.Selector != "":
		return e.Selector
	case e.ID != "":
		return AttrSelector("id", e.ID)
	case e.Name != "":
		return AttrSelector("name", e.Name)
	}
	return ""
}

// AttrSelector - a CSS attribute selector matching value exactly. Works for
// ids that are not valid CSS identifiers, like "2col" or "first name".
func AttrSelector(attr, value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return "[" + attr + `="` + value + `"]`
}

// Form represents a form and the inputs it contains
type Form struct {
	ID         string    `json:"id,omitempty"`
	Name       string    `json:"name,omitempty"`
	Action     string    `json:"action,omitempty"`
	Method     string    `json:"method,omitempty"`
	Inputs     []Element `json:"inputs,omitempty"`
	SubmitText string    `json:"submitText,omitempty"`
	Selector   string    `json:"selector,omitempty"`
}

// Label - returns the form's display name
func (f Form) Label() string {
	for _, v := range []string{f.Name, f.ID, f.Action} {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

// Screen represents one screen of a mobile app
type Screen struct {
	Name     string    `json:"name"`
	ID       string    `json:"id,omitempty"`
	Elements []Element `json:"elements,omitempty"`
}
