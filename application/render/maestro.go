package render

import (
	"ai_testgen/domain/entities"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// scalar - a YAML-safe single-line rendering of s
func scalar(s string) string {
	out, err := yaml.Marshal(oneLine(s))
	if err != nil {
		return strconv.Quote(s)
	}
	return strings.TrimSuffix(string(out), "\n")
}

func (r *Renderer) maestro(meta entities.ExportMeta, cases []entities.TestCase) string {
	var b strings.Builder
	mobile := meta.Platform == entities.PlatformMobile

	if mobile {
		fmt.Fprintf(&b, "appId: %s\n---\n- launchApp\n", scalar(meta.URL))
	} else {
		fmt.Fprintf(&b, "url: %s\n---\n- launchUrl: %s\n", scalar(meta.URL), scalar(meta.URL))
	}
	if meta.Title != "" {
		fmt.Fprintf(&b, "- assertVisible: %s\n", scalar(meta.Title))
	}

	for _, tc := range cases {
		fmt.Fprintf(&b, "\n# %s: %s\n", tc.ID, oneLine(tc.Title))
		for _, step := range tc.Steps {
			p := resolveStep(step)
			if firstNavigation(step, p) {
				continue
			}
			writeMaestroStep(&b, p, step, meta, mobile)
		}
	}
	return b.String()
}

func writeMaestroStep(b *strings.Builder, p entities.Phrase, step entities.TestStep, meta entities.ExportMeta, mobile bool) {
	switch {
	case p.Kind == entities.PhraseNavigate:
		if mobile {
			b.WriteString("- launchApp\n")
			return
		}
		url := p.URL
		if url == "" {
			url = meta.URL
		}
		fmt.Fprintf(b, "- openLink: %s\n", scalar(url))
	case isClick(p.Kind):
		fmt.Fprintf(b, "- tapOn: %s\n", scalar(clickTarget(p)))
	case p.Kind == entities.PhraseEnterText:
		fmt.Fprintf(b, "- tapOn: %s\n", scalar(fieldTarget(p)))
		fmt.Fprintf(b, "- inputText: %s\n", scalar(inputValue(p)))
	case p.Kind == entities.PhraseOpenScreen && p.Target != "":
		fmt.Fprintf(b, "- tapOn: %s\n", scalar(p.Target))
		fmt.Fprintf(b, "- assertVisible: %s\n", scalar(p.Text))
	case p.Kind == entities.PhraseVerifyTitle, p.Kind == entities.PhraseVerifyVisible:
		if p.Text == "" {
			fmt.Fprintf(b, "# %s\n", oneLine(step.Expected))
			return
		}
		fmt.Fprintf(b, "- assertVisible: %s\n", scalar(p.Text))
	default:
		fmt.Fprintf(b, "# %s: %s\n", oneLine(step.Action), oneLine(step.Expected))
	}
}
