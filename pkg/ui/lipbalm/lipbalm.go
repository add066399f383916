package lipbalm

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/beevik/etree"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// noFormatTag content is only shown when colors are unavailable
const noFormatTag = "no-format"

// StyleMap maps tag names to styles
type StyleMap map[string]lipgloss.Style

var defaultRenderer = lipgloss.DefaultRenderer()

// SetDefaultRenderer sets the renderer whose color profile decides whether
// styles are applied.
func SetDefaultRenderer(r *lipgloss.Renderer) {
	defaultRenderer = r
}

// Render executes tmpl as a Go template with data, then expands style tags
func Render(tmpl string, data interface{}, styles StyleMap) (string, error) {
	t, err := template.New("lipbalm").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return ExpandTags(buf.String(), styles)
}

// ExpandTags replaces style tags with styled text. Input that is not
// well-formed markup is returned unchanged.
func ExpandTags(input string, styles StyleMap) (string, error) {
	if input == "" {
		return "", nil
	}

	root, ok := parse(input)
	if !ok {
		return input, nil
	}

	colored := defaultRenderer.ColorProfile() != termenv.Ascii
	var sb strings.Builder
	expand(&sb, root, styles, colored)
	return sb.String(), nil
}

// StripTags removes every tag and keeps the text, including no-format
// content. Input that is not well-formed markup is returned unchanged.
func StripTags(input string) string {
	if input == "" {
		return ""
	}

	root, ok := parse(input)
	if !ok {
		return input
	}

	var sb strings.Builder
	expand(&sb, root, nil, false)
	return sb.String()
}

func parse(input string) (*etree.Element, bool) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString("<lipbalm>" + input + "</lipbalm>"); err != nil {
		return nil, false
	}
	root := doc.Root()
	return root, root != nil
}

func expand(sb *strings.Builder, el *etree.Element, styles StyleMap, colored bool) {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			sb.WriteString(t.Data)
		case *etree.Element:
			if t.Tag == noFormatTag && colored {
				continue
			}
			var inner strings.Builder
			expand(&inner, t, styles, colored)
			style, ok := styles[t.Tag]
			if ok && colored {
				sb.WriteString(style.Render(inner.String()))
			} else {
				sb.WriteString(inner.String())
			}
		}
	}
}
