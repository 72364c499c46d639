package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"
	"golang.org/x/sync/errgroup"

	"github.com/bastiangx/spellserve/pkg/diagnose"
	"github.com/bastiangx/spellserve/pkg/suggest"
	"github.com/bastiangx/spellserve/pkg/tokenize"
)

// Finding is one unknown word. Line and Column are 1-based, Column counts characters.
type Finding struct {
	Line        int
	Column      int
	Word        string
	Suggestions []string
}

// FileReport holds the findings of one file, in document order.
type FileReport struct {
	Path     string
	Findings []Finding
	Err      error
}

// Checker is what file checking needs from the suggestion engine.
type Checker interface {
	suggest.IChecker
	suggest.ICorrector
}

// CheckText spell-checks text.
func CheckText(text string, c Checker, limit int) []Finding {
	lines := tokenize.NewLineIndex(text)
	diags := diagnose.Tokens(tokenize.Tokenize(text), c)
	out := make([]Finding, len(diags))
	for i, d := range diags {
		lineStart := lines.Offset(tokenize.Position{Line: d.Range.Start.Line})
		at := lines.Offset(d.Range.Start)
		f := Finding{
			Line:   d.Range.Start.Line + 1,
			Column: utf8.RuneCountInString(text[lineStart:at]) + 1,
			Word:   d.Word,
		}
		for _, s := range c.Suggest(d.Word, limit) {
			f.Suggestions = append(f.Suggestions, suggest.MatchCase(d.Word, s.Word))
		}
		out[i] = f
	}
	return out
}

// CheckFiles checks paths on up to workers goroutines. Unreadable files are
// reported through FileReport.Err; the returned error is only set when ctx ends.
func CheckFiles(ctx context.Context, paths []string, c Checker, workers, limit int) ([]FileReport, error) {
	reports := make([]FileReport, len(paths))
	if len(paths) == 0 {
		return reports, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(workers, len(paths))))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			reports[i].Path = path
			data, err := os.ReadFile(path)
			if err != nil {
				reports[i].Err = err
				return nil
			}
			reports[i].Findings = CheckText(string(data), c, limit)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// WriteReport prints every finding as "path:line:col word -> suggestions",
// aligned in columns, and returns how many words were flagged.
func WriteReport(w io.Writer, reports []FileReport, colorize bool) int {
	p := newPalette(colorize)

	type row struct {
		loc, word string
		f         Finding
	}
	var rows []row
	locWidth, wordWidth := 0, 0
	for _, r := range reports {
		if r.Err != nil {
			fmt.Fprintf(w, "%s %s: %v\n", p.bad.Sprint("error"), r.Path, r.Err)
			continue
		}
		for _, f := range r.Findings {
			loc := fmt.Sprintf("%s:%d:%d", r.Path, f.Line, f.Column)
			locWidth = max(locWidth, runewidth.StringWidth(loc))
			wordWidth = max(wordWidth, runewidth.StringWidth(f.Word))
			rows = append(rows, row{loc: loc, word: f.Word, f: f})
		}
	}

	for _, r := range rows {
		loc := p.location.Sprint(runewidth.FillRight(r.loc, locWidth))
		if len(r.f.Suggestions) == 0 {
			fmt.Fprintf(w, "%s  %s\n", loc, p.word.Sprint(r.word))
			continue
		}
		word := p.word.Sprint(runewidth.FillRight(r.word, wordWidth))
		fmt.Fprintf(w, "%s  %s -> %s\n", loc, word, p.suggestion.Sprint(strings.Join(r.f.Suggestions, ", ")))
	}
	return len(rows)
}
