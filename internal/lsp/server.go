// Package lsp serves spell checking over the editor protocol on stdio.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/bastiangx/spellserve/internal/logger"
	"github.com/bastiangx/spellserve/pkg/diagnose"
	"github.com/bastiangx/spellserve/pkg/document"
	"github.com/bastiangx/spellserve/pkg/suggest"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// Options configures the server. Zero values fall back to defaults.
type Options struct {
	Debounce time.Duration
	Workers  int
	// MaxDiagnostics caps each published set. Zero publishes every diagnostic.
	MaxDiagnostics  int
	CompletionLimit int
	SuggestionLimit int
	MinPrefix       int
	MaxPrefix       int
	// UserDictPath receives added words. Empty disables the add-word action.
	UserDictPath string
	Version      string
	Logger       *log.Logger
}

func (o *Options) setDefaults() {
	if o.Debounce < 0 {
		o.Debounce = 0
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxDiagnostics < 0 {
		o.MaxDiagnostics = 0
	}
	if o.CompletionLimit <= 0 {
		o.CompletionLimit = 50
	}
	if o.SuggestionLimit <= 0 {
		o.SuggestionLimit = 10
	}
	if o.MinPrefix < suggest.MinPrefixLength {
		o.MinPrefix = suggest.MinPrefixLength
	}
	if o.MaxPrefix <= 0 {
		o.MaxPrefix = 60
	}
	if o.Logger == nil {
		o.Logger = logger.New("lsp")
	}
}

// Server handles one editing session.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex
	opts   Options
	log    *log.Logger

	docs   *document.Manager
	engine atomic.Pointer[suggest.Engine]
	gate   *diagnose.Gate

	mu                sync.Mutex
	timers            map[string]*time.Timer
	shutdownRequested bool

	publishMu sync.Mutex
	jobs      *errgroup.Group
	baseCtx   context.Context
}

// NewServer constructs a server reading requests from in and writing to out.
// The server takes ownership of engine.
func NewServer(in io.Reader, out io.Writer, engine *suggest.Engine, opts Options) *Server {
	opts.setDefaults()
	s := &Server{
		in:      bufio.NewReader(in),
		out:     bufio.NewWriter(out),
		opts:    opts,
		log:     opts.Logger,
		docs:    document.NewManager(),
		gate:    diagnose.NewGate(),
		timers:  make(map[string]*time.Timer),
		jobs:    new(errgroup.Group),
		baseCtx: context.Background(),
	}
	s.jobs.SetLimit(opts.Workers)
	s.engine.Store(engine)
	s.docs.OnUpdate(func(d document.Document) {
		s.scheduleDiagnostics(d)
	})
	return s
}

// Run serves requests until exit, end of input or ctx cancellation.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	s.baseCtx = ctx
	defer func() {
		cancel()
		s.stopTimers()
		_ = s.jobs.Wait()
		s.engine.Load().Close()
	}()

	for {
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.log.Warn("failed to parse message", "err", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	s.log.Debug("request", "method", msg.Method)

	s.mu.Lock()
	shutdown := s.shutdownRequested
	s.mu.Unlock()
	if shutdown && msg.Method != "exit" {
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeInvalidRequest, "server is shutting down")
		}
		return nil
	}

	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		if shutdown {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "textDocument/completion":
		return s.handleCompletion(msg)
	case "textDocument/codeAction":
		return s.handleCodeAction(msg)
	case "textDocument/diagnostic":
		return s.handlePullDiagnostics(msg)
	case "workspace/executeCommand":
		return s.handleExecuteCommand(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	if params.ClientInfo != nil {
		s.log.Info("client connected", "name", params.ClientInfo.Name, "version", params.ClientInfo.Version)
	}

	caps := serverCapabilities{
		TextDocumentSync: textDocumentSyncOptions{
			OpenClose: true,
			Change:    syncIncremental,
		},
		CompletionProvider: &completionOptions{
			TriggerCharacters:   triggerCharacters(),
			AllCommitCharacters: []string{" "},
		},
		CodeActionProvider: &codeActionOptions{
			CodeActionKinds: []string{"quickfix"},
		},
		DiagnosticProvider: &diagnosticOptions{},
	}
	if s.opts.UserDictPath != "" {
		caps.ExecuteCommandProvider = &executeCommandOptions{Commands: []string{addWordCommand}}
	}
	return s.sendResponse(msg.ID, initializeResult{
		Capabilities: caps,
		ServerInfo:   serverInfo{Name: "spellserve", Version: s.opts.Version},
	})
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	s.stopTimers()
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.log.Warn("invalid didOpen params", "err", err)
		return nil
	}
	uri := params.TextDocument.URI
	if uri == "" {
		return nil
	}
	// A reopened document restarts at version 0, below what the gate has seen.
	s.cancelTimer(uri)
	s.publishMu.Lock()
	s.gate.Forget(uri)
	s.publishMu.Unlock()

	doc, _ := s.docs.Open(uri, params.TextDocument.Text)
	s.log.Debug("opened", "uri", uri, "tokens", len(doc.Tokens))
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.log.Warn("invalid didChange params", "err", err)
		return nil
	}
	changes := make([]document.Change, len(params.ContentChanges))
	for i, c := range params.ContentChanges {
		changes[i] = document.Change{Range: c.Range, Text: c.Text}
	}
	doc, err := s.docs.ApplyChange(params.TextDocument.URI, changes...)
	if err != nil {
		s.log.Warn("change rejected", "uri", params.TextDocument.URI, "err", err)
		return nil
	}
	s.log.Debug("changed", "uri", doc.URI, "version", doc.Version, "client_version", params.TextDocument.Version)
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.log.Warn("invalid didClose params", "err", err)
		return nil
	}
	uri := params.TextDocument.URI
	if err := s.docs.Close(uri); err != nil {
		s.log.Warn("close rejected", "uri", uri, "err", err)
		return nil
	}
	s.cancelTimer(uri)

	s.publishMu.Lock()
	s.gate.Forget(uri)
	err := s.sendPublish(uri, nil, nil)
	s.publishMu.Unlock()
	return err
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": rpcError{
			Code:    code,
			Message: message,
		},
	}
	return s.send(msg)
}

func (s *Server) sendNotification(method string, params any) error {
	return s.send(map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	})
}

func (s *Server) sendPublish(uri string, version *int, list []lspDiagnostic) error {
	if list == nil {
		list = []lspDiagnostic{}
	}
	return s.sendNotification("textDocument/publishDiagnostics", publishDiagnosticsParams{
		URI:         uri,
		Version:     version,
		Diagnostics: list,
	})
}

func (s *Server) showMessage(kind int, message string) {
	if err := s.sendNotification("window/showMessage", showMessageParams{Type: kind, Message: message}); err != nil {
		s.log.Warn("failed to show message", "err", err)
	}
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}

// notOpen answers a request about a document the client never opened.
func (s *Server) notOpen(id json.RawMessage, err error) error {
	if errors.Is(err, document.ErrNotOpen) {
		return s.sendError(id, codeRequestFailed, err.Error())
	}
	return s.sendError(id, codeRequestFailed, "request failed")
}
