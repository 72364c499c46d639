// Package cli handles cmd line input and file checking for debugging and scripting.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/spellserve/internal/utils"
	"github.com/bastiangx/spellserve/pkg/suggest"
)

// Engine is what the interactive loop needs from the suggestion engine.
type Engine interface {
	suggest.IChecker
	suggest.ICompleter
	suggest.ICorrector
}

// InputHandler reads words from a stream and prints what the engine knows
// about them. A line ending in "*" asks for completions of the prefix before it.
type InputHandler struct {
	engine          Engine
	out             io.Writer
	palette         palette
	minPrefixLength int
	maxPrefixLength int
	suggestLimit    int
	noFilter        bool
	prompt          bool
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(engine Engine, out io.Writer, minLength, maxLength, limit int, noFilter bool) *InputHandler {
	return &InputHandler{
		engine:          engine,
		out:             out,
		palette:         newPalette(IsTerminal(out)),
		minPrefixLength: minLength,
		maxPrefixLength: maxLength,
		suggestLimit:    limit,
		noFilter:        noFilter,
		prompt:          IsTerminal(out),
	}
}

// Start runs the loop until in is exhausted.
func (h *InputHandler) Start(in io.Reader) error {
	if h.prompt {
		fmt.Fprintln(h.out, h.palette.title.Sprint("spellserve CLI"))
		fmt.Fprintln(h.out, "type a word to check it, or a prefix followed by * to complete it (Ctrl+D to exit)")
	}
	scanner := bufio.NewScanner(in)
	for {
		if h.prompt {
			fmt.Fprint(h.out, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if prefix, ok := strings.CutSuffix(line, "*"); ok {
			h.complete(prefix)
			continue
		}
		for _, word := range strings.Fields(line) {
			h.check(word)
		}
	}
}

func (h *InputHandler) check(word string) {
	if !h.noFilter && !utils.IsValidInput(word) {
		log.Debug("input filtered", "word", word)
		return
	}
	if h.engine.Contains(word) {
		fmt.Fprintf(h.out, "%s %s\n", h.palette.ok.Sprint("✓"), word)
		return
	}

	start := time.Now()
	found := h.engine.Suggest(word, h.suggestLimit)
	log.Debug("suggestions", "word", word, "took", time.Since(start), "count", len(found))

	fmt.Fprintf(h.out, "%s %s", h.palette.bad.Sprint("✗"), h.palette.word.Sprint(word))
	if len(found) == 0 {
		fmt.Fprintln(h.out, " (no suggestions)")
		return
	}
	words := make([]string, len(found))
	for i, s := range found {
		words[i] = suggest.MatchCase(word, s.Word)
	}
	fmt.Fprintf(h.out, " -> %s\n", h.palette.suggestion.Sprint(strings.Join(words, ", ")))
}

func (h *InputHandler) complete(prefix string) {
	n := utf8.RuneCountInString(prefix)
	if n < h.minPrefixLength {
		log.Errorf("Prefix too short: %s", prefix)
		return
	}
	if n > h.maxPrefixLength {
		log.Errorf("Prefix too long: %s", prefix)
		return
	}
	if !h.noFilter && !utils.IsValidInput(prefix) {
		log.Warnf("No suggestions found for prefix: '%s' (filtered out)", prefix)
		return
	}

	start := time.Now()
	found := h.engine.Complete(prefix, h.suggestLimit)
	log.Debugf("Took %v for prefix '%s'", time.Since(start), prefix)

	if len(found) == 0 {
		fmt.Fprintf(h.out, "no completions for %q\n", prefix)
		return
	}
	for i, c := range found {
		word := h.palette.suggestion.Sprint(suggest.MatchCase(prefix, c.Word))
		if c.Common {
			word += h.palette.dim.Sprint(" (common)")
		}
		fmt.Fprintf(h.out, "%2d. %s\n", i+1, word)
	}
}
