// Package browser captures page snapshots and drives pages through real
// browsers: playwright, selenium (chromedriver) and rod with stealth.
package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"ai_testgen/domain/entities"
)

// snapshotScript runs in the page and returns the PageSnapshot JSON shape
const snapshotScript = `() => {
	const clean = (s) => (s || '').replace(/\s+/g, ' ').trim().substring(0, 120);
	const visible = (el) => {
		const style = window.getComputedStyle(el);
		return style.display !== 'none' && style.visibility !== 'hidden';
	};
	const attr = (el, name) => el.getAttribute(name) || '';
	const esc = (v) => v.replace(/"/g, '\\"');
	const selectorFor = (el) => {
		const tag = el.tagName.toLowerCase();
		if (attr(el, 'data-testid')) return '[data-testid="' + esc(attr(el, 'data-testid')) + '"]';
		if (attr(el, 'data-qa')) return '[data-qa="' + esc(attr(el, 'data-qa')) + '"]';
		if (el.id) return '#' + CSS.escape(el.id);
		if (attr(el, 'name')) return tag + '[name="' + esc(attr(el, 'name')) + '"]';
		return '';
	};
	const element = (el) => ({
		text: clean(el.innerText || el.value || el.textContent),
		id: el.id || '',
		name: attr(el, 'name'),
		selector: selectorFor(el),
		type: (attr(el, 'type') || el.tagName).toLowerCase(),
		href: el.href || '',
		placeholder: attr(el, 'placeholder'),
		ariaLabel: attr(el, 'aria-label'),
	});
	const all = (sel, root) => Array.from((root || document).querySelectorAll(sel)).filter(visible);
	const inputSel = 'input:not([type=hidden]):not([type=submit]):not([type=button]):not([type=reset]), textarea, select';

	const forms = all('form').map((f, i) => {
		const submit = f.querySelector('button[type=submit], input[type=submit], button:not([type])');
		return {
			id: f.id || '',
			name: attr(f, 'name'),
			action: attr(f, 'action'),
			method: (attr(f, 'method') || 'get').toUpperCase(),
			inputs: all(inputSel, f).map(element),
			submitText: submit ? clean(submit.innerText || submit.value) : '',
			selector: f.id ? '#' + CSS.escape(f.id) : 'form:nth-of-type(' + (i + 1) + ')',
		};
	});
	const meta = document.querySelector('meta[name="description"]');

	return JSON.stringify({
		url: location.href,
		title: document.title || '',
		description: meta ? clean(meta.content) : '',
		buttons: all('button, input[type=submit], input[type=button], input[type=reset], [role=button]').map(element),
		links: all('a[href]').map(element),
		inputs: all(inputSel).map(element),
		forms: forms,
	});
}`

// decodeSnapshot - parses the script result. requested is used when the page
// reports no url; an empty title falls back to the host.
func decodeSnapshot(raw string, requested string) (*entities.PageSnapshot, error) {
	var snapshot entities.PageSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode page snapshot: %w", err)
	}

	if snapshot.URL == "" || snapshot.URL == "about:blank" {
		snapshot.URL = requested
	}
	if strings.TrimSpace(snapshot.Title) == "" {
		snapshot.Title = hostOf(snapshot.URL)
	}
	snapshot.Platform = entities.PlatformWeb
	snapshot.CapturedAt = time.Now().UTC()
	return &snapshot, nil
}

func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}

// isSelector reports whether target looks like a CSS selector or XPath
// rather than visible text
func isSelector(target string) bool {
	if strings.HasPrefix(target, "/") || strings.HasPrefix(target, "(") {
		return true
	}
	if strings.ContainsAny(target, "#[]>=:") {
		return true
	}
	return strings.HasPrefix(target, ".") && !strings.Contains(target, " ")
}

// fieldSelector - a selector for an input known by name, id or placeholder
func fieldSelector(target string) string {
	if isSelector(target) {
		return target
	}
	attrs := []string{"name", "id", "placeholder", "aria-label"}
	sels := make([]string, len(attrs))
	for i, attr := range attrs {
		sels[i] = entities.AttrSelector(attr, target)
	}
	return strings.Join(sels, ", ")
}

// xpathLiteral quotes s for use inside an XPath expression
func xpathLiteral(s string) string {
	if !strings.Contains(s, "'") {
		return "'" + s + "'"
	}
	if !strings.Contains(s, `"`) {
		return `"` + s + `"`
	}
	parts := strings.Split(s, "'")
	for i, p := range parts {
		parts[i] = "'" + p + "'"
	}
	return "concat(" + strings.Join(parts, `, "'", `) + ")"
}

// textXPath matches elements whose own text contains text
func textXPath(text string) string {
	return fmt.Sprintf("//*[contains(normalize-space(text()), %s)]", xpathLiteral(text))
}

// withContext runs a blocking driver call and gives up when ctx ends.
// The call itself keeps running in the background.
func withContext(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// timeoutMillis - remaining time of ctx in milliseconds, or def when ctx has no deadline
func timeoutMillis(ctx context.Context, def time.Duration) float64 {
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left > 0 {
			return float64(left.Milliseconds())
		}
		return 1
	}
	return float64(def.Milliseconds())
}
