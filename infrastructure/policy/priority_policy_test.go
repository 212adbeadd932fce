package policy

import (
	"io"
	"testing"

	"ai_testgen/domain/entities"

	"github.com/sirupsen/logrus"
)

func newTestPolicy() *PriorityPolicy {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewPriorityPolicy(logger)
}

func TestPriority(t *testing.T) {
	p := newTestPolicy()

	tests := []struct {
		name string
		t    entities.ElementType
		el   *entities.Element
		want entities.Priority
	}{
		{"page load", entities.ElementPage, nil, entities.PriorityHigh},
		{"link count", entities.ElementLink, nil, entities.PriorityLow},
		{"button count", entities.ElementButton, nil, entities.PriorityMedium},
		{"login button", entities.ElementButton, &entities.Element{Text: "Login"}, entities.PriorityHigh},
		{"sign in by id", entities.ElementButton, &entities.Element{ID: "sign-in"}, entities.PriorityHigh},
		{"checkout link", entities.ElementLink, &entities.Element{Text: "Checkout"}, entities.PriorityHigh},
		{"password input", entities.ElementInput, &entities.Element{Name: "password", Type: "password"}, entities.PriorityHigh},
		{"plain button", entities.ElementButton, &entities.Element{Text: "Show more"}, entities.PriorityMedium},
		{"plain link", entities.ElementLink, &entities.Element{Text: "About us"}, entities.PriorityLow},
		{"word boundary", entities.ElementLink, &entities.Element{Text: "Display settings"}, entities.PriorityLow},
		{"screen", entities.ElementScreen, &entities.Element{Text: "Profile"}, entities.PriorityMedium},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.Priority(tt.t, tt.el); got != tt.want {
				t.Errorf("Priority() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestFormPriority(t *testing.T) {
	if got := newTestPolicy().FormPriority(entities.Form{Name: "newsletter"}); got != entities.PriorityHigh {
		t.Errorf("FormPriority() = %s, want High", got)
	}
}

func TestContainsWord(t *testing.T) {
	tests := []struct {
		haystack, keyword string
		want              bool
	}{
		{"pay now", "pay", true},
		{"display", "pay", false},
		{"repay pay", "pay", true},
		{"log in", "log in", true},
		{"", "pay", false},
	}
	for _, tt := range tests {
		if got := containsWord(tt.haystack, tt.keyword); got != tt.want {
			t.Errorf("containsWord(%q, %q) = %v, want %v", tt.haystack, tt.keyword, got, tt.want)
		}
	}
}
