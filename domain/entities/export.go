package entities

import (
	"strings"
	"time"
)

// Format selects an export syntax
type Format string

const (
	FormatJSON          Format = "json"
	FormatMaestro       Format = "maestro"
	FormatKatalon       Format = "katalon"
	FormatTestRail      Format = "testrail"
	FormatCSV           Format = "csv"
	FormatHTML          Format = "html"
	FormatText          Format = "txt"
	FormatMarkdown      Format = "markdown"
	FormatKatalonScript Format = "katalon-script"
	FormatPlaywright    Format = "playwright"
)

// Formats lists every supported export format
var Formats = []Format{
	FormatJSON, FormatMaestro, FormatKatalon, FormatTestRail, FormatCSV,
	FormatHTML, FormatText, FormatMarkdown, FormatKatalonScript, FormatPlaywright,
}

// ParseFormat - normalizes a format selector. Unknown values map to JSON.
func ParseFormat(s string) Format {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "text":
		return FormatText
	case "md":
		return FormatMarkdown
	}
	for _, known := range Formats {
		if f == known {
			return f
		}
	}
	return FormatJSON
}

// ExportMeta is the page metadata printed by renderers
type ExportMeta struct {
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	Platform    Platform  `json:"platform,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// ExportDocument is a rendered, downloadable file
type ExportDocument struct {
	Format      Format `json:"format"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Body        string `json:"body"`
}
