package cli

import (
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

type palette struct {
	title      *color.Color
	ok         *color.Color
	bad        *color.Color
	word       *color.Color
	suggestion *color.Color
	location   *color.Color
	dim        *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		title:      color.New(color.FgCyan, color.Bold),
		ok:         color.New(color.FgGreen),
		bad:        color.New(color.FgRed, color.Bold),
		word:       color.New(color.FgYellow, color.Bold),
		suggestion: color.New(color.FgBlue),
		location:   color.New(color.FgHiBlack),
		dim:        color.New(color.Faint),
	}
	for _, c := range []*color.Color{p.title, p.ok, p.bad, p.word, p.suggestion, p.location, p.dim} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}
