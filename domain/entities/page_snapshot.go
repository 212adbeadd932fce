package entities

import "time"

// Platform of the analyzed target
type Platform string

const (
	PlatformWeb    Platform = "web"
	PlatformMobile Platform = "mobile"
)

// PageSnapshot is the captured structure of a page or app at one point in time.
// It is read-only to the pipeline.
type PageSnapshot struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Platform    Platform  `json:"platform,omitempty"`
	Description string    `json:"description,omitempty"`
	Buttons     []Element `json:"buttons"`
	Links       []Element `json:"links"`
	Inputs      []Element `json:"inputs"`
	Forms       []Form    `json:"forms"`
	Screens     []Screen  `json:"screens,omitempty"`
	CapturedAt  time.Time `json:"capturedAt,omitempty"`
}

// IsMobile - reports whether the snapshot describes a mobile app
func (p *PageSnapshot) IsMobile() bool {
	return p.Platform == PlatformMobile
}

// Count - returns the number of elements of the given type
func (p *PageSnapshot) Count(t ElementType) int {
	switch t {
	case ElementButton:
		return len(p.Buttons)
	case ElementInput:
		return len(p.Inputs)
	case ElementLink:
		return len(p.Links)
	case ElementForm:
		return len(p.Forms)
	case ElementScreen:
		return len(p.Screens)
	}
	return 0
}

// IsEmpty - true when no element of any category was captured
func (p *PageSnapshot) IsEmpty() bool {
	return len(p.Buttons)+len(p.Links)+len(p.Inputs)+len(p.Forms)+len(p.Screens) == 0
}
