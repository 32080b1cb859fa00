// Package prompts implements the interactive selection flow: pick a base
// URL (auto-detect or menu), pick a model from the server's list. Input and
// output are injected so tests can script a session.
package prompts

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/danshapiro/codexlink/internal/detect"
	"github.com/danshapiro/codexlink/internal/providerspec"
)

// Session reads answers from In and writes menus to Out.
type Session struct {
	In  *bufio.Reader
	Out io.Writer
}

func NewSession(in io.Reader, out io.Writer) *Session {
	return &Session{In: bufio.NewReader(in), Out: out}
}

// Choice asks the user to pick one of options by number. def is the
// zero-based default used on empty input. Out-of-range or non-numeric
// answers re-prompt; EOF returns the default.
func (s *Session) Choice(title string, options []string, def int) int {
	if def < 0 || def >= len(options) {
		def = 0
	}
	fmt.Fprintf(s.Out, "%s\n", title)
	for i, opt := range options {
		fmt.Fprintf(s.Out, "  %d) %s\n", i+1, opt)
	}
	for {
		fmt.Fprintf(s.Out, "Select [%d]: ", def+1)
		line, err := s.In.ReadString('\n')
		line = strings.TrimSpace(line)
		if line == "" {
			if err != nil {
				return def
			}
			return def
		}
		n, convErr := strconv.Atoi(line)
		if convErr == nil && n >= 1 && n <= len(options) {
			return n - 1
		}
		fmt.Fprintf(s.Out, "enter a number between 1 and %d\n", len(options))
		if err != nil {
			return def
		}
	}
}

// YesNo asks a y/n question. Empty input returns def; EOF returns def.
func (s *Session) YesNo(question string, def bool) bool {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(s.Out, "%s [%s]: ", question, hint)
		line, err := s.In.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			return def
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		if err != nil {
			return def
		}
		fmt.Fprintln(s.Out, "answer y or n")
	}
}

// Text asks a free-form question, returning def on empty input or EOF.
func (s *Session) Text(question, def string) string {
	if def != "" {
		fmt.Fprintf(s.Out, "%s [%s]: ", question, def)
	} else {
		fmt.Fprintf(s.Out, "%s: ", question)
	}
	line, _ := s.In.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

// PickBaseURL resolves the server base URL. With auto it races the common
// endpoints and only falls back to the menu when nothing answers. The menu
// lists the known local servers plus a free-form entry.
func (s *Session) PickBaseURL(ctx context.Context, probe detect.ProbeFunc, auto bool) string {
	candidates := providerspec.CommonBaseURLs()
	if auto {
		if winner, ok := detect.Race(ctx, candidates, probe); ok {
			return winner
		}
		fmt.Fprintln(s.Out, "no server answered on the common ports")
	}

	options := make([]string, 0, len(candidates)+1)
	for _, u := range candidates {
		options = append(options, fmt.Sprintf("%s (%s)", providerspec.Label(providerspec.InferProvider(u)), u))
	}
	options = append(options, "Enter a URL manually")
	idx := s.Choice("Select the server to link:", options, 0)
	if idx == len(options)-1 {
		return s.Text("Base URL", "http://localhost:1234/v1")
	}
	return candidates[idx]
}

// PickModel lists the server's models and asks for one. prefer, when
// present in the list, becomes the menu default. An unreachable or empty
// list falls back to free-form entry.
func (s *Session) PickModel(ctx context.Context, probe detect.ProbeFunc, baseURL, prefer string) (string, error) {
	models, err := detect.ListModels(ctx, probe, baseURL)
	if err != nil {
		return "", err
	}
	if len(models) == 0 {
		return s.Text("Model id", prefer), nil
	}
	def := 0
	for i, m := range models {
		if m == prefer {
			def = i
			break
		}
	}
	return models[s.Choice("Select a model:", models, def)], nil
}
