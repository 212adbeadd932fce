// Package htmlsnap captures page snapshots from static HTML over plain HTTP,
// for targets that do not need a browser to render.
package htmlsnap

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ai_testgen/domain/entities"
	"ai_testgen/domain/interfaces"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	maxBodyBytes = 5 << 20
	maxTextLen   = 120
	userAgent    = "Mozilla/5.0 (compatible; ai_testgen/1.0)"
)

type Extractor struct {
	client *http.Client
	logger *logrus.Logger
}

// NewExtractor - creates an HTTP extractor; client may be nil
func NewExtractor(client *http.Client, logger *logrus.Logger) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Extractor{client: client, logger: logger}
}

// Extract - fetches url and parses its interactive elements
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*entities.PageSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("failed to fetch %s: %s", rawURL, resp.Status)
	}

	doc, err := html.Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	snapshot := Parse(doc, resp.Request.URL)
	e.logger.WithFields(logrus.Fields{
		"url":     snapshot.URL,
		"buttons": len(snapshot.Buttons),
		"links":   len(snapshot.Links),
		"inputs":  len(snapshot.Inputs),
		"forms":   len(snapshot.Forms),
	}).Info("Page extracted")
	return snapshot, nil
}

// Parse - builds a snapshot from a parsed document; base resolves relative links
func Parse(doc *html.Node, base *url.URL) *entities.PageSnapshot {
	p := &parser{
		base: base,
		snapshot: &entities.PageSnapshot{
			URL:        base.String(),
			Platform:   entities.PlatformWeb,
			Buttons:    []entities.Element{},
			Links:      []entities.Element{},
			Inputs:     []entities.Element{},
			Forms:      []entities.Form{},
			CapturedAt: time.Now().UTC(),
		},
	}
	p.walk(doc, nil)

	if strings.TrimSpace(p.snapshot.Title) == "" {
		p.snapshot.Title = base.Host
	}
	return p.snapshot
}

type parser struct {
	base     *url.URL
	snapshot *entities.PageSnapshot
}

func (p *parser) walk(n *html.Node, form *entities.Form) {
	if n.Type == html.ElementNode {
		if hidden(n) {
			return
		}

		switch n.DataAtom {
		case atom.Title:
			if p.snapshot.Title == "" {
				p.snapshot.Title = clean(collectText(n))
			}
		case atom.Meta:
			if strings.EqualFold(attr(n, "name"), "description") {
				p.snapshot.Description = clean(attr(n, "content"))
			}
		case atom.Form:
			f := entities.Form{
				ID:     attr(n, "id"),
				Name:   attr(n, "name"),
				Action: attr(n, "action"),
				Method: strings.ToUpper(attr(n, "method")),
			}
			if f.Method == "" {
				f.Method = "GET"
			}
			if f.ID != "" {
				f.Selector = entities.AttrSelector("id", f.ID)
			} else {
				f.Selector = fmt.Sprintf("form:nth-of-type(%d)", len(p.snapshot.Forms)+1)
			}
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				p.walk(c, &f)
			}
			p.snapshot.Forms = append(p.snapshot.Forms, f)
			return
		case atom.A:
			if href := attr(n, "href"); href != "" {
				el := element(n)
				el.Href = p.resolve(href)
				p.snapshot.Links = append(p.snapshot.Links, el)
			}
		case atom.Button:
			el := element(n)
			p.snapshot.Buttons = append(p.snapshot.Buttons, el)
			if form != nil && form.SubmitText == "" && el.Type == "submit" {
				form.SubmitText = el.Text
			}
			return
		case atom.Input:
			p.input(n, form)
			return
		case atom.Textarea, atom.Select:
			p.addInput(element(n), form)
			return
		default:
			if strings.EqualFold(attr(n, "role"), "button") {
				p.snapshot.Buttons = append(p.snapshot.Buttons, element(n))
				return
			}
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, form)
	}
}

func (p *parser) input(n *html.Node, form *entities.Form) {
	el := element(n)
	switch el.Type {
	case "hidden":
	case "submit", "button", "reset", "image":
		if el.Text == "" {
			el.Text = attr(n, "value")
		}
		p.snapshot.Buttons = append(p.snapshot.Buttons, el)
		if form != nil && form.SubmitText == "" && el.Type == "submit" {
			form.SubmitText = el.Text
		}
	default:
		p.addInput(el, form)
	}
}

func (p *parser) addInput(el entities.Element, form *entities.Form) {
	p.snapshot.Inputs = append(p.snapshot.Inputs, el)
	if form != nil {
		form.Inputs = append(form.Inputs, el)
	}
}

func (p *parser) resolve(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return href
	}
	return p.base.ResolveReference(u).String()
}

func element(n *html.Node) entities.Element {
	el := entities.Element{
		Text:        clean(collectText(n)),
		ID:          attr(n, "id"),
		Name:        attr(n, "name"),
		Type:        strings.ToLower(attr(n, "type")),
		Placeholder: attr(n, "placeholder"),
		AriaLabel:   attr(n, "aria-label"),
	}
	if el.Type == "" {
		el.Type = n.Data
		if n.DataAtom == atom.Input {
			el.Type = "text"
		}
	}
	if n.DataAtom == atom.Button && attr(n, "type") == "" {
		el.Type = "submit"
	}

	switch {
	case attr(n, "data-testid") != "":
		el.Selector = fmt.Sprintf(`[data-testid="%s"]`, attr(n, "data-testid"))
	case el.ID != "":
		el.Selector = entities.AttrSelector("id", el.ID)
	case el.Name != "":
		el.Selector = fmt.Sprintf(`%s[name="%s"]`, n.Data, el.Name)
	}
	return el
}

func hidden(n *html.Node) bool {
	if _, ok := attrOK(n, "hidden"); ok {
		return true
	}
	if strings.EqualFold(attr(n, "aria-hidden"), "true") {
		return true
	}
	style := strings.ReplaceAll(strings.ToLower(attr(n, "style")), " ", "")
	return strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden")
}

func attr(n *html.Node, key string) string {
	v, _ := attrOK(n, key)
	return v
}

func attrOK(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func collectText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			b.WriteString(n.Data)
			b.WriteByte(' ')
		case n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style):
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func clean(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxTextLen {
		s = string(r[:maxTextLen])
	}
	return s
}

// Ensure Extractor implements Extractor interface
var _ interfaces.Extractor = (*Extractor)(nil)
