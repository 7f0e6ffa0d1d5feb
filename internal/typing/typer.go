// Package typing inserts text into the focused X11 window.
package typing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/Alijeyrad/gotalk-voicecode/internal/session"
)

var punctuationMap = map[string]string{
	"period":            ".",
	"comma":             ",",
	"question mark":     "?",
	"exclamation mark":  "!",
	"exclamation point": "!",
	"colon":             ":",
	"semicolon":         ";",
	"new line":          "\n",
	"new paragraph":     "\n\n",
	"open parenthesis":  "(",
	"close parenthesis": ")",
	"dash":              "-",
	"hyphen":            "-",
	"ellipsis":          "...",
}

// keyboard is an input backend: native XTest or the xdotool/xclip tools.
type keyboard interface {
	typeString(text string) error
	// paste puts text on the clipboard and sends Ctrl+V.
	paste(text string) error
	selectAll() error
	backspace(n int) error
	// readClipboard returns the clipboard contents, ok=false when empty or unreadable.
	readClipboard() (string, bool)
	writeClipboard(text string) error
	close()
}

// Typer implements session.Inserter. It is safe for concurrent use.
type Typer struct {
	enablePunctuation bool
	useClipboard      bool

	mu            sync.Mutex
	kb            keyboard
	lastRuneCount int
}

var _ session.Inserter = (*Typer)(nil)

type Options struct {
	EnablePunctuation bool
	UseClipboard      bool
}

// New connects to the X server for native input, falling back to xdotool
// when XTest is unavailable.
func New(opts Options) *Typer {
	var kb keyboard
	x, err := newX11Typer()
	if err != nil {
		slog.Warn("native X11 input unavailable, using xdotool", "error", err)
		kb = xdotool{}
	} else {
		kb = x
	}
	return newTyper(kb, opts)
}

func newTyper(kb keyboard, opts Options) *Typer {
	return &Typer{
		kb:                kb,
		enablePunctuation: opts.EnablePunctuation,
		useClipboard:      opts.UseClipboard,
	}
}

// SetOptions applies changed settings.
func (t *Typer) SetOptions(opts Options) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enablePunctuation = opts.EnablePunctuation
	t.useClipboard = opts.UseClipboard
}

// InsertText types text at the cursor. With clipboard insertion enabled it
// pastes first and types only if pasting fails; the previous clipboard
// contents are restored either way.
func (t *Typer) InsertText(_ context.Context, text string, mode session.InsertMode) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.enablePunctuation {
		text = processPunctuation(text)
	}
	if mode == session.Replace {
		if err := t.kb.selectAll(); err != nil {
			return fmt.Errorf("select all: %w", err)
		}
	}

	if t.useClipboard {
		err := t.pasteRestoring(text)
		if err == nil {
			t.lastRuneCount = utf8.RuneCountInString(text)
			return nil
		}
		slog.Warn("clipboard paste failed, typing instead", "error", err)
	}
	if err := t.kb.typeString(text); err != nil {
		return fmt.Errorf("typing text: %w", err)
	}
	t.lastRuneCount = utf8.RuneCountInString(text)
	return nil
}

func (t *Typer) pasteRestoring(text string) error {
	saved, ok := t.kb.readClipboard()
	err := t.kb.paste(text)
	if ok {
		if rerr := t.kb.writeClipboard(saved); rerr != nil {
			slog.Warn("restore clipboard", "error", rerr)
		}
	}
	return err
}

// Undo deletes the characters of the last insertion.
func (t *Typer) Undo() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.lastRuneCount == 0 {
		return nil
	}
	n := t.lastRuneCount
	t.lastRuneCount = 0
	return t.kb.backspace(n)
}

func (t *Typer) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.kb.close()
}

// processPunctuation replaces spoken punctuation with symbols. Closing marks
// attach to the previous word and line breaks absorb surrounding spaces.
func processPunctuation(text string) string {
	words := strings.Fields(text)
	var b strings.Builder
	glue := true // no space before the next token
	i := 0
	for i < len(words) {
		tok, punct := words[i], ""
		if i+1 < len(words) {
			if p, ok := punctuationMap[strings.ToLower(words[i]+" "+words[i+1])]; ok {
				punct = p
				i++
			}
		}
		if punct == "" {
			if p, ok := punctuationMap[strings.ToLower(tok)]; ok {
				punct = p
			}
		}
		i++

		switch {
		case punct == "":
			if !glue {
				b.WriteByte(' ')
			}
			b.WriteString(tok)
			glue = false
		case strings.HasPrefix(punct, "\n"):
			b.WriteString(punct)
			glue = true
		case punct == "(":
			if !glue {
				b.WriteByte(' ')
			}
			b.WriteString(punct)
			glue = true
		case punct == "-":
			if !glue {
				b.WriteByte(' ')
			}
			b.WriteString(punct)
			glue = false
		default:
			b.WriteString(punct)
			glue = false
		}
	}
	return b.String()
}
