// Package baseline embeds the word list shipped with the binary.
package baseline

import (
	_ "embed"

	"github.com/bastiangx/spellserve/pkg/dictionary"
)

// Name identifies the baseline in logs.
const Name = "baseline"

//go:embed words.txt
var words []byte

// Source returns the embedded baseline as the first dictionary source.
func Source() dictionary.Source {
	return dictionary.Source{Name: Name, Data: words}
}
