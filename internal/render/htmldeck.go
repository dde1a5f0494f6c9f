// Package render turns document summaries into presentation artifacts.
// The only renderer today produces a self-contained HTML slide deck.
package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Common errors returned by the render package
var (
	// ErrRenderFailed is returned when deck generation or publishing fails
	ErrRenderFailed = errors.New("failed to render slide deck")

	// ErrEmptySummary is returned when there is nothing to render
	ErrEmptySummary = errors.New("summary cannot be empty")
)

// pointsPerSlide caps how many summary points share one slide.
const pointsPerSlide = 5

// OutputPublisher durably publishes a deck artifact under the given name.
// The artifact must be fully visible to readers once PublishOutput returns.
type OutputPublisher interface {
	PublishOutput(ctx context.Context, filename string, content []byte) error
}

// HTMLDeckRenderer renders summaries into standalone HTML slide decks.
type HTMLDeckRenderer struct {
	publisher OutputPublisher
	logger    *slog.Logger
	tmpl      *template.Template
}

// NewHTMLDeckRenderer creates an HTMLDeckRenderer.
func NewHTMLDeckRenderer(publisher OutputPublisher, logger *slog.Logger) (*HTMLDeckRenderer, error) {
	if publisher == nil {
		return nil, errors.New("output publisher cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	tmpl, err := template.New("deck").
		Funcs(template.FuncMap{"add": func(a, b int) int { return a + b }}).
		Parse(deckTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse deck template: %w", err)
	}

	return &HTMLDeckRenderer{
		publisher: publisher,
		logger:    logger.With("component", "html_deck_renderer"),
		tmpl:      tmpl,
	}, nil
}

type deckData struct {
	Title       string
	GeneratedAt string
	Slides      [][]string
}

// Render builds the deck from the summary's lines, publishes it, and
// returns the artifact's output ref (its published file name). The ref is
// only returned after the artifact is durably visible.
func (r *HTMLDeckRenderer) Render(ctx context.Context, summary, title string) (string, error) {
	points := summaryPoints(summary)
	if len(points) == 0 {
		return "", ErrEmptySummary
	}

	title = deckTitle(title)

	data := deckData{
		Title:       title,
		GeneratedAt: time.Now().UTC().Format("2006-01-02 15:04 UTC"),
		Slides:      chunkPoints(points, pointsPerSlide),
	}

	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	outputRef := deckFileName(title)
	if err := r.publisher.PublishOutput(ctx, outputRef, buf.Bytes()); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	r.logger.InfoContext(ctx, "deck published",
		"output_ref", outputRef,
		"slides", len(data.Slides))
	return outputRef, nil
}

// summaryPoints splits a summary into its non-empty lines.
func summaryPoints(summary string) []string {
	var points []string
	for _, line := range strings.Split(summary, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			points = append(points, line)
		}
	}
	return points
}

func chunkPoints(points []string, size int) [][]string {
	var slides [][]string
	for len(points) > size {
		slides = append(slides, points[:size])
		points = points[size:]
	}
	return append(slides, points)
}

// deckTitle derives a presentable title from the uploaded file's name.
func deckTitle(originalName string) string {
	name := strings.TrimSuffix(originalName, filepath.Ext(originalName))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	name = strings.TrimSpace(name)
	if name == "" {
		return "Document Summary"
	}
	return name
}

// deckFileName builds a unique published name for the artifact.
func deckFileName(title string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			sb.WriteRune('_')
		}
	}
	slug := strings.Trim(sb.String(), "_")
	if slug == "" {
		slug = "summary"
	}
	return fmt.Sprintf("%s_%s_deck.html", slug, uuid.New().String()[:8])
}

const deckTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { margin: 0; font-family: Georgia, serif; background: #1c1e26; color: #e8e8e8; }
  .slide { min-height: 100vh; box-sizing: border-box; padding: 8vh 12vw;
           display: flex; flex-direction: column; justify-content: center;
           border-bottom: 2px solid #3a3d4d; }
  .slide h1 { font-size: 3em; margin: 0 0 0.3em; }
  .slide h2 { font-size: 1.8em; color: #9db4d0; margin: 0 0 1em; }
  .slide ul { font-size: 1.3em; line-height: 1.8; }
  .meta { color: #777; font-size: 0.9em; margin-top: 2em; }
</style>
</head>
<body>
<section class="slide">
  <h1>{{.Title}}</h1>
  <p class="meta">Generated {{.GeneratedAt}}</p>
</section>
{{- range $i, $points := .Slides}}
<section class="slide">
  <h2>Key Points{{if gt (len $.Slides) 1}} ({{add $i 1}}/{{len $.Slides}}){{end}}</h2>
  <ul>
  {{- range $points}}
    <li>{{.}}</li>
  {{- end}}
  </ul>
</section>
{{- end}}
</body>
</html>
`
