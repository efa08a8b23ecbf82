// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package termprompt

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/bureau-foundation/passprompt/lib/config"
	"github.com/bureau-foundation/passprompt/lib/secret"
)

// Prompter asks for secrets on a terminal. It satisfies
// pinentry.FallbackPrompter.
type Prompter struct {
	// input is read without buffering, so typed bytes only ever land
	// in protected memory.
	input    io.Reader
	output   io.Writer
	console  Console
	renderer *lipgloss.Renderer

	// erase clears the prompt from the screen once the read is over.
	erase bool
}

// New returns a Prompter that reads from input and writes the prompt to
// output. color is one of config.ColorAuto, config.ColorAlways and
// config.ColorNever.
func New(input, output *os.File, color string) *Prompter {
	return &Prompter{
		input:    input,
		output:   output,
		console:  NewTerminal(input),
		renderer: newRenderer(output, color),
		erase:    term.IsTerminal(int(output.Fd())),
	}
}

// newRenderer builds the renderer for the prompt text. Auto detection
// yields plain text when output is not a terminal.
func newRenderer(output io.Writer, color string) *lipgloss.Renderer {
	switch color {
	case config.ColorAlways:
		renderer := lipgloss.NewRenderer(output, termenv.WithProfile(termenv.ANSI256))
		renderer.SetColorProfile(termenv.ANSI256)
		return renderer
	case config.ColorNever:
		renderer := lipgloss.NewRenderer(output, termenv.WithProfile(termenv.Ascii))
		renderer.SetColorProfile(termenv.Ascii)
		return renderer
	default:
		return lipgloss.NewRenderer(output)
	}
}

// PromptSecret shows description, the error line when errorMessage is
// non-empty, and "prompt: ", then reads one line with echo disabled.
// It returns (nil, nil) when input ends before anything is typed. An
// empty line is an empty secret.
func (p *Prompter) PromptSecret(prompt, errorMessage, description string) (*secret.Buffer, error) {
	descriptionStyle := p.style().Bold(true).Foreground(lipgloss.Color("3"))
	errorStyle := p.style().Bold(true).Foreground(lipgloss.Color("1"))
	promptStyle := p.style().Bold(true)

	// lines counts the rows from the first description line down to
	// the cursor.
	var header strings.Builder
	header.WriteString(renderLines(descriptionStyle, description))
	header.WriteString("\n\n")
	lines := 2 + strings.Count(description, "\n")
	if errorMessage != "" {
		header.WriteString(renderLines(errorStyle, errorMessage))
		header.WriteString("\n")
		lines += 1 + strings.Count(errorMessage, "\n")
	}
	header.WriteString(renderLines(promptStyle, prompt))
	header.WriteString(": ")

	if _, err := io.WriteString(p.output, header.String()); err != nil {
		return nil, fmt.Errorf("writing prompt: %w", err)
	}
	if p.erase {
		defer func() { p.eraseLines(lines) }()
	}

	mask, err := maskInput(p.console)
	if err != nil {
		return nil, err
	}
	defer mask.Restore()

	result, err := secret.ReadLine(p.input)
	if errors.Is(err, io.EOF) {
		return nil, mask.Restore()
	}
	if err != nil {
		return nil, fmt.Errorf("reading secret: %w", err)
	}

	// The typed newline was not echoed.
	if _, err := io.WriteString(p.output, "\n"); err != nil {
		result.Close()
		return nil, fmt.Errorf("writing prompt: %w", err)
	}
	lines++

	if err := mask.Restore(); err != nil {
		result.Close()
		return nil, err
	}
	return result, nil
}

func (p *Prompter) style() lipgloss.Style {
	return p.renderer.NewStyle().TabWidth(lipgloss.NoTabConversion)
}

// eraseLines moves the cursor back to the first prompt line and clears
// everything below it.
func (p *Prompter) eraseLines(lines int) {
	_, _ = io.WriteString(p.output, ansi.CursorUp(lines)+ansi.EraseScreenBelow)
}

// renderLines styles each line on its own, keeping lipgloss from
// padding shorter lines to a common width.
func renderLines(style lipgloss.Style, text string) string {
	lines := strings.Split(text, "\n")
	for index, line := range lines {
		lines[index] = style.Render(line)
	}
	return strings.Join(lines, "\n")
}
