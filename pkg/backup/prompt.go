package backup

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptFunc asks for the repository URL, offering def
type PromptFunc func(def string) (string, error)

// LinePrompt asks on out and reads one line from in. An empty line or end
// of input selects the default.
func LinePrompt(in io.Reader, out io.Writer) PromptFunc {
	reader := bufio.NewReader(in)
	return func(def string) (string, error) {
		if _, err := fmt.Fprintf(out, "Enter git repo URL (default: %s): ", def); err != nil {
			return "", err
		}
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", err
		}
		if line = strings.TrimSpace(line); line == "" {
			return def, nil
		}
		return line, nil
	}
}
