package lsp

import (
	"encoding/json"
	"time"

	"github.com/bastiangx/spellserve/pkg/diagnose"
	"github.com/bastiangx/spellserve/pkg/document"
)

// scheduleDiagnostics supersedes any computation in flight for doc.URI right
// away, then checks doc once the debounce timer fires.
func (s *Server) scheduleDiagnostics(doc document.Document) {
	ticket := s.gate.Begin(doc.URI, doc.Version)
	if s.opts.Debounce == 0 {
		s.runAsync(ticket, doc)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.shutdownRequested {
		return
	}
	if t, ok := s.timers[doc.URI]; ok {
		t.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(s.opts.Debounce, func() {
		s.mu.Lock()
		if s.timers[doc.URI] == timer {
			delete(s.timers, doc.URI)
		}
		s.mu.Unlock()
		s.runAsync(ticket, doc)
	})
	s.timers[doc.URI] = timer
}

func (s *Server) cancelTimer(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[uri]; ok {
		t.Stop()
		delete(s.timers, uri)
	}
}

func (s *Server) stopTimers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for uri, t := range s.timers {
		t.Stop()
		delete(s.timers, uri)
	}
}

// startDiagnostics captures the current snapshot of uri and checks it on the
// worker pool.
func (s *Server) startDiagnostics(uri string) {
	doc, err := s.docs.Snapshot(uri)
	if err != nil {
		return
	}
	s.runAsync(s.gate.Begin(uri, doc.Version), doc)
}

func (s *Server) runAsync(ticket diagnose.Ticket, doc document.Document) {
	s.jobs.Go(func() error {
		s.runDiagnostics(ticket, doc)
		return nil
	})
}

// runDiagnostics publishes the diagnostics of doc unless a newer version was
// scheduled in the meantime.
func (s *Server) runDiagnostics(ticket diagnose.Ticket, doc document.Document) {
	if s.baseCtx.Err() != nil || !s.gate.Current(ticket) {
		s.log.Debug("skipping stale diagnostics", "uri", doc.URI, "version", doc.Version)
		return
	}
	list := s.diagnose(doc)

	s.publishMu.Lock()
	defer s.publishMu.Unlock()
	if !s.gate.Commit(ticket) {
		s.log.Debug("discarding stale diagnostics", "uri", doc.URI, "version", doc.Version)
		return
	}
	if err := s.sendPublish(doc.URI, nil, list); err != nil {
		s.log.Error("failed to publish diagnostics", "uri", doc.URI, "err", err)
		return
	}
	s.log.Debug("published diagnostics", "uri", doc.URI, "version", doc.Version, "count", len(list))
}

// rediagnoseAll rechecks every open document, after the dictionary changed.
func (s *Server) rediagnoseAll() {
	for _, uri := range s.docs.URIs() {
		s.startDiagnostics(uri)
	}
}

func (s *Server) diagnose(doc document.Document) []lspDiagnostic {
	diags := diagnose.Diagnose(doc, s.engine.Load())
	if s.opts.MaxDiagnostics > 0 && len(diags) > s.opts.MaxDiagnostics {
		diags = diags[:s.opts.MaxDiagnostics]
	}
	out := make([]lspDiagnostic, len(diags))
	for i, d := range diags {
		out[i] = toLSPDiagnostic(d)
	}
	return out
}

func toLSPDiagnostic(d diagnose.Diagnostic) lspDiagnostic {
	return lspDiagnostic{
		Range:    d.Range,
		Severity: int(d.Severity),
		Source:   d.Source,
		Message:  d.Message,
		Data:     &diagnosticData{Word: d.Word},
	}
}

func (s *Server) handlePullDiagnostics(msg *rpcMessage) error {
	var params documentDiagnosticParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	doc, err := s.docs.Snapshot(params.TextDocument.URI)
	if err != nil {
		return s.notOpen(msg.ID, err)
	}
	return s.sendResponse(msg.ID, fullDocumentDiagnosticReport{
		Kind:  "full",
		Items: s.diagnose(doc),
	})
}
