package lsp

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/bastiangx/spellserve/pkg/suggest"
	"github.com/bastiangx/spellserve/pkg/tokenize"
)

// triggerCharacters lists every letter that can continue a word.
func triggerCharacters() []string {
	var out []string
	for r := 'a'; r <= 'z'; r++ {
		out = append(out, string(r))
	}
	for r := 'A'; r <= 'Z'; r++ {
		out = append(out, string(r))
	}
	for _, r := range tokenize.Diacritics {
		out = append(out, string(r))
	}
	return out
}

func (s *Server) handleCompletion(msg *rpcMessage) error {
	var params completionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	doc, err := s.docs.Snapshot(params.TextDocument.URI)
	if err != nil {
		return s.notOpen(msg.ID, err)
	}
	return s.sendResponse(msg.ID, s.buildCompletion(doc.Lines, params.Position))
}

func (s *Server) buildCompletion(lines *tokenize.LineIndex, pos position) completionList {
	empty := completionList{IsIncomplete: true, Items: []completionItem{}}
	if lines.OutOfBounds(pos) {
		return empty
	}
	prefix, start := tokenize.PrefixAt(lines, pos)
	n := utf8.RuneCountInString(prefix)
	if n < s.opts.MinPrefix || n > s.opts.MaxPrefix {
		return empty
	}

	candidates := s.engine.Load().Complete(prefix, s.opts.CompletionLimit)
	items := make([]completionItem, 0, len(candidates))
	for i, c := range candidates {
		word := suggest.MatchCase(prefix, c.Word)
		detail := "spellserve"
		if c.Common {
			detail = "spellserve (common)"
		}
		items = append(items, completionItem{
			Label:      word,
			Kind:       completionItemKindText,
			Detail:     detail,
			SortText:   fmt.Sprintf("%05d", i+1),
			FilterText: prefix,
			TextEdit: &textEdit{
				Range:   lspRange{Start: start, End: pos},
				NewText: word,
			},
		})
	}
	return completionList{IsIncomplete: true, Items: items}
}
