// Package page renders the stopwatch page and serves its static assets.
package page

import (
	"log/slog"
	"maps"
	"net/http"
	"slices"
	"strings"
)

// ResultsKey is the placeholder name that receives the recorded results log.
const ResultsKey = "RESULTS"

// delimiter marks both ends of a placeholder name.
const delimiter = "%"

// Placeholder returns the token for name as it appears in a template.
func Placeholder(name string) string {
	return delimiter + name + delimiter
}

// Template is page text fixed at build time. The zero value is an empty template.
type Template struct {
	text string
}

// New wraps build-time text as a Template.
func New(text string) Template {
	return Template{text: text}
}

// Text returns the unrendered template text.
func (t Template) Text() string {
	return t.text
}

// Render returns a copy of the template with every occurrence of each
// placeholder in subs replaced by its value. Replacement values are inserted
// as-is and never rescanned for placeholders. Tokens with no entry in subs
// are left in place.
func (t Template) Render(subs map[string]string) string {
	if len(subs) == 0 {
		return t.text
	}

	// Sorted so overlapping names resolve the same way on every call.
	keys := slices.Sorted(maps.Keys(subs))
	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, Placeholder(k), subs[k])
	}
	return strings.NewReplacer(pairs...).Replace(t.text)
}

// Serve renders the template and writes it as an HTML document.
func (t Template) Serve(w http.ResponseWriter, subs map[string]string) {
	html := t.Render(subs)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(html)); err != nil {
		slog.Error("failed to write page", "error", err)
	}
}

// Asset is a static document served verbatim.
type Asset struct {
	name        string
	contentType string
	content     string
}

// NewAsset returns an Asset with the given name, content type and content.
func NewAsset(name, contentType, content string) Asset {
	return Asset{name: name, contentType: contentType, content: content}
}

// Name returns the asset file name.
func (a Asset) Name() string {
	return a.name
}

// ContentType returns the Content-Type header value for the asset.
func (a Asset) ContentType() string {
	return a.contentType
}

// Content returns the asset body.
func (a Asset) Content() string {
	return a.content
}

// Serve writes the asset unmodified.
func (a Asset) Serve(w http.ResponseWriter) {
	w.Header().Set("Content-Type", a.contentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(a.content)); err != nil {
		slog.Error("failed to write static file", "file", a.name, "error", err)
	}
}
