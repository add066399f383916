// Package markdown renders markdown documents for the terminal with glamour.
package markdown

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-isatty"

	"github.com/arthur-debert/dotsync/pkg/errors"
)

// Renderer formats content for terminal display
type Renderer interface {
	// Render takes raw content and its file extension and returns
	// formatted content
	Render(content string, format string) string
}

// PlainRenderer returns content as-is
type PlainRenderer struct{}

// Render returns the content unchanged
func (r *PlainRenderer) Render(content string, format string) string {
	return content
}

// GlamourRenderer uses glamour for rich markdown rendering
type GlamourRenderer struct {
	Style string // "dark", "light", "notty", "auto", or path to a custom style
	Width int    // 0 = glamour's default
}

// NewGlamourRenderer creates a renderer with automatic style detection
func NewGlamourRenderer() *GlamourRenderer {
	return &GlamourRenderer{
		Style: "auto",
		Width: 0,
	}
}

// ForTerminal picks a renderer for stdout: colored styles on a terminal,
// the notty style when colors are off or output is redirected.
func ForTerminal(noColor bool) *GlamourRenderer {
	r := NewGlamourRenderer()
	if noColor || !isatty.IsTerminal(os.Stdout.Fd()) {
		r.Style = "notty"
	}
	return r
}

// IsMarkdown reports whether format names a markdown file extension
func IsMarkdown(format string) bool {
	switch strings.ToLower(format) {
	case ".md", ".markdown":
		return true
	}
	return false
}

// Render converts markdown to terminal output. Other formats and render
// failures return content unchanged.
func (r *GlamourRenderer) Render(content string, format string) string {
	if !IsMarkdown(format) {
		return content
	}
	rendered, err := r.render(content)
	if err != nil {
		return content
	}
	return rendered
}

// RenderFile reads and renders a markdown file
func (r *GlamourRenderer) RenderFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", path)
	}
	if !IsMarkdown(filepath.Ext(path)) {
		return string(data), nil
	}
	rendered, err := r.render(string(data))
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInternal, "cannot render %s", path)
	}
	return rendered, nil
}

func (r *GlamourRenderer) render(content string) (string, error) {
	var options []glamour.TermRendererOption

	if r.Style != "" && r.Style != "auto" {
		options = append(options, glamour.WithStylePath(r.Style))
	} else {
		options = append(options, glamour.WithAutoStyle())
	}

	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}

	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return "", err
	}
	return renderer.Render(content)
}
