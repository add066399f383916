/*
Package lipbalm provides a simple template engine for rich terminal rendering.

Lipbalm combines Go's text/template with lipgloss styling through XML-like tags,
enabling declarative terminal output that automatically adapts to terminal capabilities.

# Core Functions

The package offers three main functions:
  - Render: Processes Go templates then expands style tags
  - ExpandTags: Only expands style tags (no template processing)
  - StripTags: Removes all style tags for plain text output

# Usage with Go templating

	styles := lipbalm.StyleMap{
		"FilePath": lipgloss.NewStyle().Underline(true),
		"Muted":    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
	template := `<FilePath>{{.Path}}</FilePath> <Muted>{{.Message}}</Muted>`
	data := struct {
		Path    string
		Message string
	}{
		Path:    "~/.zshrc",
		Message: "up to date",
	}
	output, err := lipbalm.Render(template, data, styles)
	fmt.Println(output)

# Usage for tag expansion only

	styles := lipbalm.StyleMap{"Success": lipgloss.NewStyle().Bold(true)}
	input := `Done: <Success>3</Success>/3 successful`
	output, err := lipbalm.ExpandTags(input, styles)
	fmt.Println(output)

# Plain text output

	input := `<FilePath>~/.vimrc</FilePath> <Muted>skipped</Muted>`
	plain := lipbalm.StripTags(input) // "~/.vimrc skipped"

# Tags

Tags are used to apply styles. The tag name must correspond to a key in the
StyleMap passed to the Render or ExpandTags function.

	<my-style>This text will be styled.</my-style>

# Special Tags

The <no-format> tag only renders when the terminal doesn't support color:

	<Success>synced</Success><no-format> (ok)</no-format>

In the example above, " (ok)" is only rendered in plain text mode.

Values interpolated into markup must be escaped (the output templates use
an esc function bound to HTMLEscapeString); paths containing & or < are
otherwise not well formed and come back unstyled.

# Integration with dotsync

In dotsync's output pipeline, lipbalm is the final styling layer that turns
the semantic tags written by the ui/output templates into terminal output.
Color support is read from the renderer's termenv profile, and markup that
is not well formed is returned as is.
*/
package lipbalm
