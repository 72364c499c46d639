package lsp

import (
	"encoding/json"
	"slices"

	"github.com/bastiangx/spellserve/pkg/action"
	"github.com/bastiangx/spellserve/pkg/diagnose"
)

func (s *Server) handleCodeAction(msg *rpcMessage) error {
	var params codeActionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	doc, err := s.docs.Snapshot(params.TextDocument.URI)
	if err != nil {
		return s.notOpen(msg.ID, err)
	}
	out := []codeAction{}
	if len(params.Context.Only) > 0 && !slices.Contains(params.Context.Only, action.KindQuickFix) {
		return s.sendResponse(msg.ID, out)
	}

	engine := s.engine.Load()
	for _, d := range diagnose.Diagnose(doc, engine) {
		if !d.Range.Overlaps(params.Range) {
			continue
		}
		for _, a := range action.Build(doc, d, engine, s.opts.SuggestionLimit) {
			out = append(out, toLSPAction(a))
		}
		if s.opts.UserDictPath != "" {
			out = append(out, toLSPAction(action.AddWordAction(d.Word, doc.URI)))
		}
	}
	return s.sendResponse(msg.ID, out)
}

func toLSPAction(a action.CodeAction) codeAction {
	ca := codeAction{
		Title:       a.Title,
		Kind:        a.Kind,
		IsPreferred: a.IsPreferred,
	}
	if a.Diagnostic != nil {
		ca.Diagnostics = []lspDiagnostic{toLSPDiagnostic(*a.Diagnostic)}
	}
	if a.Edit != nil {
		ca.Edit = &workspaceEdit{Changes: map[string][]textEdit{
			a.URI: {{Range: a.Edit.Range, NewText: a.Edit.NewText}},
		}}
	}
	if a.Command != nil {
		ca.Command = &lspCommand{
			Title:     a.Command.Title,
			Command:   a.Command.Command,
			Arguments: a.Command.Arguments,
		}
	}
	return ca
}
