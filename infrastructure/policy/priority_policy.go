package policy

import (
	"strings"

	"ai_testgen/domain/entities"
	"ai_testgen/domain/interfaces"

	"github.com/sirupsen/logrus"
)

type PriorityPolicy struct {
	logger *logrus.Logger
}

func NewPriorityPolicy(logger *logrus.Logger) *PriorityPolicy {
	return &PriorityPolicy{
		logger: logger,
	}
}

var (
	// Login, registration and credential handling
	authKeywords = []string{
		"login", "log in", "signin", "sign in", "sign-in",
		"signup", "sign up", "sign-up", "register", "password", "logout", "log out",
	}

	// Money changes hands
	paymentKeywords = []string{
		"checkout", "pay", "payment", "buy", "purchase", "order", "cart", "subscribe",
	}

	// Data is sent or destroyed
	submitKeywords = []string{
		"submit", "send", "confirm", "save", "delete", "remove",
	}
)

func (p *PriorityPolicy) Priority(t entities.ElementType, el *entities.Element) entities.Priority {
	if el == nil {
		return p.aggregatePriority(t)
	}

	if p.isCritical(el) {
		return entities.PriorityHigh
	}

	switch t {
	case entities.ElementLink:
		return entities.PriorityLow
	case entities.ElementButton, entities.ElementInput, entities.ElementScreen:
		return entities.PriorityMedium
	}
	return entities.PriorityMedium
}

func (p *PriorityPolicy) FormPriority(form entities.Form) entities.Priority {
	// Submitting a form is always a core flow
	return entities.PriorityHigh
}

func (p *PriorityPolicy) aggregatePriority(t entities.ElementType) entities.Priority {
	switch t {
	case entities.ElementPage:
		return entities.PriorityHigh
	case entities.ElementLink:
		return entities.PriorityLow
	}
	return entities.PriorityMedium
}

func (p *PriorityPolicy) isCritical(el *entities.Element) bool {
	haystack := strings.ToLower(strings.Join([]string{
		el.Text, el.ID, el.Name, el.AriaLabel, el.Placeholder, el.Type, el.Href,
	}, " "))

	for _, group := range [][]string{authKeywords, paymentKeywords, submitKeywords} {
		for _, keyword := range group {
			if containsWord(haystack, keyword) {
				p.logger.WithFields(logrus.Fields{
					"element": el.Label(),
					"keyword": keyword,
				}).Debug("Critical element detected")
				return true
			}
		}
	}
	return false
}

// containsWord - substring match that refuses matches inside a longer word,
// so "pay" does not match "display"
func containsWord(haystack, keyword string) bool {
	for start := 0; ; {
		idx := strings.Index(haystack[start:], keyword)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(keyword)
		if (idx == 0 || !isLetter(haystack[idx-1])) && (end == len(haystack) || !isLetter(haystack[end])) {
			return true
		}
		start = idx + 1
	}
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// Ensure PriorityPolicy implements PriorityPolicy interface
var _ interfaces.PriorityPolicy = (*PriorityPolicy)(nil)
