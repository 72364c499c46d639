package lsp

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastiangx/spellserve/pkg/dictionary"
	"github.com/bastiangx/spellserve/pkg/suggest"
)

const (
	testWords = "*kot\nkotek\nkotlet\ndom\nala\nmam\n"
	testURI   = "file:///tmp/list.txt"
)

func newTestServer(t *testing.T, opts Options) (*Server, *bytes.Buffer) {
	t.Helper()
	dict := dictionary.Load(dictionary.Source{Name: "test", Data: []byte(testWords)})
	engine, err := suggest.NewEngine(dict, suggest.EngineOptions{MaxDistance: 2})
	require.NoError(t, err)
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	var out bytes.Buffer
	s := NewServer(bytes.NewReader(nil), &out, engine, opts)
	t.Cleanup(func() {
		s.stopTimers()
		_ = s.jobs.Wait()
	})
	return s, &out
}

func request(t *testing.T, handler func(*rpcMessage) error, id int, params any) {
	t.Helper()
	payload, err := json.Marshal(params)
	require.NoError(t, err)
	msg := &rpcMessage{JSONRPC: "2.0", Params: payload}
	if id > 0 {
		msg.ID = json.RawMessage(strconv.Itoa(id))
	}
	require.NoError(t, handler(msg))
}

func readAll(t *testing.T, out *bytes.Buffer) []rpcMessage {
	t.Helper()
	reader := bufio.NewReader(bytes.NewReader(out.Bytes()))
	var msgs []rpcMessage
	for {
		payload, err := readMessage(reader)
		if errors.Is(err, io.EOF) {
			return msgs
		}
		require.NoError(t, err)
		var msg rpcMessage
		require.NoError(t, json.Unmarshal(payload, &msg))
		msgs = append(msgs, msg)
	}
}

func response(t *testing.T, msgs []rpcMessage, id int) rpcMessage {
	t.Helper()
	for _, m := range msgs {
		if m.Method == "" && string(m.ID) == strconv.Itoa(id) {
			return m
		}
	}
	t.Fatalf("no response with id %d", id)
	return rpcMessage{}
}

func publications(t *testing.T, msgs []rpcMessage, uri string) []publishDiagnosticsParams {
	t.Helper()
	var out []publishDiagnosticsParams
	for _, m := range msgs {
		if m.Method != "textDocument/publishDiagnostics" {
			continue
		}
		var p publishDiagnosticsParams
		require.NoError(t, json.Unmarshal(m.Params, &p))
		if p.URI == uri {
			out = append(out, p)
		}
	}
	return out
}

func open(t *testing.T, s *Server, text string) {
	t.Helper()
	request(t, s.handleDidOpen, 0, didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: testURI, LanguageID: "plaintext", Version: 1, Text: text},
	})
	require.NoError(t, s.jobs.Wait())
}

func TestInitializeCapabilities(t *testing.T) {
	s, out := newTestServer(t, Options{Version: "1.2.3"})
	request(t, s.handleInitialize, 1, initializeParams{ClientInfo: &clientInfo{Name: "test"}})

	var result initializeResult
	require.NoError(t, json.Unmarshal(response(t, readAll(t, out), 1).Result, &result))
	caps := result.Capabilities
	assert.Equal(t, syncIncremental, caps.TextDocumentSync.Change)
	assert.True(t, caps.TextDocumentSync.OpenClose)
	require.NotNil(t, caps.CompletionProvider)
	assert.Contains(t, caps.CompletionProvider.TriggerCharacters, "ż")
	assert.Contains(t, caps.CompletionProvider.TriggerCharacters, "Q")
	assert.Equal(t, []string{"quickfix"}, caps.CodeActionProvider.CodeActionKinds)
	assert.NotNil(t, caps.DiagnosticProvider)
	assert.Nil(t, caps.ExecuteCommandProvider, "no user dictionary, no command")
	assert.Equal(t, serverInfo{Name: "spellserve", Version: "1.2.3"}, result.ServerInfo)

	s, out = newTestServer(t, Options{UserDictPath: filepath.Join(t.TempDir(), "user.txt")})
	request(t, s.handleInitialize, 2, initializeParams{})
	require.NoError(t, json.Unmarshal(response(t, readAll(t, out), 2).Result, &result))
	require.NotNil(t, result.Capabilities.ExecuteCommandProvider)
	assert.Equal(t, []string{addWordCommand}, result.Capabilities.ExecuteCommandProvider.Commands)
}

func TestDidOpenPublishesDiagnostics(t *testing.T) {
	s, out := newTestServer(t, Options{})
	open(t, s, "Ala ma kit.\nMam kota")

	pubs := publications(t, readAll(t, out), testURI)
	require.Len(t, pubs, 1)
	diags := pubs[0].Diagnostics
	require.Len(t, diags, 2)

	assert.Equal(t, lspRange{Start: position{Line: 0, Character: 7}, End: position{Line: 0, Character: 10}}, diags[0].Range)
	assert.Equal(t, `Unknown word: "kit"`, diags[0].Message)
	assert.Equal(t, 4, diags[0].Severity, "hint")
	assert.Equal(t, "spellserve", diags[0].Source)
	assert.Equal(t, "kit", diags[0].Data.Word)
	assert.Equal(t, "kota", diags[1].Data.Word)
}

func TestDidChangeRepublishes(t *testing.T) {
	s, out := newTestServer(t, Options{})
	open(t, s, "Ala ma kit.")

	request(t, s.handleDidChange, 0, didChangeTextDocumentParams{
		TextDocument: versionedTextDocumentIdentifier{URI: testURI, Version: 2},
		ContentChanges: []textDocumentContentChangeEvent{{
			Range: &lspRange{Start: position{Line: 0, Character: 8}, End: position{Line: 0, Character: 9}},
			Text:  "o",
		}},
	})
	require.NoError(t, s.jobs.Wait())

	pubs := publications(t, readAll(t, out), testURI)
	require.Len(t, pubs, 2)
	assert.Len(t, pubs[0].Diagnostics, 1)
	assert.Empty(t, pubs[1].Diagnostics)

	doc, err := s.docs.Snapshot(testURI)
	require.NoError(t, err)
	assert.Equal(t, "Ala ma kot.", doc.Text)
	assert.Equal(t, 1, doc.Version)
}

func TestDebounceCoalescesChanges(t *testing.T) {
	s, out := newTestServer(t, Options{Debounce: time.Hour})
	request(t, s.handleDidOpen, 0, didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: testURI, Text: "kit"},
	})
	for _, text := range []string{"kat", "kot"} {
		request(t, s.handleDidChange, 0, didChangeTextDocumentParams{
			TextDocument:   versionedTextDocumentIdentifier{URI: testURI},
			ContentChanges: []textDocumentContentChangeEvent{{Text: text}},
		})
	}

	s.mu.Lock()
	pending := len(s.timers)
	s.mu.Unlock()
	assert.Equal(t, 1, pending)
	assert.Zero(t, out.Len(), "nothing published before the debounce fires")

	s.stopTimers()
	s.startDiagnostics(testURI)
	require.NoError(t, s.jobs.Wait())
	pubs := publications(t, readAll(t, out), testURI)
	require.Len(t, pubs, 1)
	assert.Empty(t, pubs[0].Diagnostics)
}

func change(t *testing.T, s *Server, version int, text string) {
	t.Helper()
	request(t, s.handleDidChange, 0, didChangeTextDocumentParams{
		TextDocument:   versionedTextDocumentIdentifier{URI: testURI, Version: version},
		ContentChanges: []textDocumentContentChangeEvent{{Text: text}},
	})
}

func TestChangeSupersedesRunningCheck(t *testing.T) {
	s, out := newTestServer(t, Options{Debounce: time.Hour})
	request(t, s.handleDidOpen, 0, didOpenTextDocumentParams{
		TextDocument: textDocumentItem{URI: testURI, Text: "Ala ma kit."},
	})
	s.stopTimers()

	// a check of version 0 is underway when version 1 arrives
	v0, err := s.docs.Snapshot(testURI)
	require.NoError(t, err)
	running := s.gate.Begin(testURI, v0.Version)
	change(t, s, 2, "Ala ma kot.")

	s.runDiagnostics(running, v0)
	assert.Empty(t, publications(t, readAll(t, out), testURI), "result for replaced text was published")

	s.stopTimers()
	s.startDiagnostics(testURI)
	require.NoError(t, s.jobs.Wait())
	pubs := publications(t, readAll(t, out), testURI)
	require.Len(t, pubs, 1)
	assert.Empty(t, pubs[0].Diagnostics)
}

func TestReopenRepublishes(t *testing.T) {
	s, out := newTestServer(t, Options{})
	open(t, s, "Ala ma kot.")
	for v, text := range []string{"dom", "dom dom", "dom dom dom"} {
		change(t, s, v+2, text)
		require.NoError(t, s.jobs.Wait())
	}
	before := len(publications(t, readAll(t, out), testURI))
	require.Equal(t, 4, before)

	open(t, s, "Ala ma kit.")
	pubs := publications(t, readAll(t, out), testURI)
	require.Len(t, pubs, before+1)
	last := pubs[len(pubs)-1]
	require.Len(t, last.Diagnostics, 1)
	assert.Equal(t, "kit", last.Diagnostics[0].Data.Word)

	doc, err := s.docs.Snapshot(testURI)
	require.NoError(t, err)
	assert.Zero(t, doc.Version)
}

func TestDiagnosticsUncappedByDefault(t *testing.T) {
	s, out := newTestServer(t, Options{})
	open(t, s, strings.Repeat("kit ", 1200))

	pubs := publications(t, readAll(t, out), testURI)
	require.Len(t, pubs, 1)
	assert.Len(t, pubs[0].Diagnostics, 1200)
}

func TestCompletion(t *testing.T) {
	s, out := newTestServer(t, Options{})
	open(t, s, "Mam Ko")
	out.Reset()

	request(t, s.handleCompletion, 3, completionParams{
		textDocumentPositionParams: textDocumentPositionParams{
			TextDocument: textDocumentIdentifier{URI: testURI},
			Position:     position{Line: 0, Character: 6},
		},
	})

	var list completionList
	require.NoError(t, json.Unmarshal(response(t, readAll(t, out), 3).Result, &list))
	assert.True(t, list.IsIncomplete)
	require.GreaterOrEqual(t, len(list.Items), 3)

	labels := make([]string, 3)
	for i := range labels {
		labels[i] = list.Items[i].Label
	}
	assert.Equal(t, []string{"Kot", "Kotek", "Kotlet"}, labels)

	first := list.Items[0]
	assert.Equal(t, "00001", first.SortText)
	assert.Equal(t, "Ko", first.FilterText)
	assert.Equal(t, "spellserve (common)", first.Detail)
	assert.Equal(t, completionItemKindText, first.Kind)
	require.NotNil(t, first.TextEdit)
	assert.Equal(t, lspRange{Start: position{Line: 0, Character: 4}, End: position{Line: 0, Character: 6}}, first.TextEdit.Range)
	assert.Equal(t, "Kot", first.TextEdit.NewText)
}

func TestCompletionEmpty(t *testing.T) {
	s, out := newTestServer(t, Options{})
	open(t, s, "Mam k\n")
	out.Reset()

	positions := []position{{Line: 0, Character: 5}, {Line: 0, Character: 4}, {Line: 5, Character: 0}, {Line: 0, Character: 40}}
	for i, pos := range positions {
		request(t, s.handleCompletion, i+1, completionParams{
			textDocumentPositionParams: textDocumentPositionParams{
				TextDocument: textDocumentIdentifier{URI: testURI},
				Position:     pos,
			},
		})
	}
	msgs := readAll(t, out)
	for i, pos := range positions {
		var list completionList
		require.NoError(t, json.Unmarshal(response(t, msgs, i+1).Result, &list))
		assert.Emptyf(t, list.Items, "position %+v", pos)
		assert.True(t, list.IsIncomplete)
	}
}

func TestCodeAction(t *testing.T) {
	dictPath := filepath.Join(t.TempDir(), "user.txt")
	s, out := newTestServer(t, Options{UserDictPath: dictPath})
	open(t, s, "Ala ma kit.")
	out.Reset()

	request(t, s.handleCodeAction, 4, codeActionParams{
		TextDocument: textDocumentIdentifier{URI: testURI},
		Range:        lspRange{Start: position{Line: 0, Character: 8}, End: position{Line: 0, Character: 8}},
	})

	var actions []codeAction
	require.NoError(t, json.Unmarshal(response(t, readAll(t, out), 4).Result, &actions))
	require.Len(t, actions, 2)

	fix := actions[0]
	assert.Equal(t, "kot", fix.Title)
	assert.Equal(t, "quickfix", fix.Kind)
	assert.True(t, fix.IsPreferred)
	require.NotNil(t, fix.Edit)
	edits := fix.Edit.Changes[testURI]
	require.Len(t, edits, 1)
	assert.Equal(t, textEdit{Range: lspRange{Start: position{Line: 0, Character: 7}, End: position{Line: 0, Character: 10}}, NewText: "kot"}, edits[0])
	require.Len(t, fix.Diagnostics, 1)
	assert.Equal(t, "kit", fix.Diagnostics[0].Data.Word)

	add := actions[1]
	assert.Equal(t, `Add "kit" to dictionary`, add.Title)
	require.NotNil(t, add.Command)
	assert.Equal(t, addWordCommand, add.Command.Command)
	assert.Nil(t, add.Edit)
}

func TestCodeActionOutsideDiagnostics(t *testing.T) {
	s, out := newTestServer(t, Options{})
	open(t, s, "Ala ma kit.")
	out.Reset()

	request(t, s.handleCodeAction, 5, codeActionParams{
		TextDocument: textDocumentIdentifier{URI: testURI},
		Range:        lspRange{Start: position{Line: 0, Character: 0}, End: position{Line: 0, Character: 2}},
	})
	request(t, s.handleCodeAction, 6, codeActionParams{
		TextDocument: textDocumentIdentifier{URI: testURI},
		Range:        lspRange{Start: position{Line: 0, Character: 8}, End: position{Line: 0, Character: 8}},
		Context:      codeActionContext{Only: []string{"refactor"}},
	})

	msgs := readAll(t, out)
	for _, id := range []int{5, 6} {
		assert.JSONEq(t, "[]", string(response(t, msgs, id).Result))
	}
}

func TestExecuteAddWord(t *testing.T) {
	dictPath := filepath.Join(t.TempDir(), "dict", "user.txt")
	s, out := newTestServer(t, Options{UserDictPath: dictPath})
	open(t, s, "Ala ma kit.")

	arg, err := json.Marshal(map[string]string{"word": "kit", "uri": testURI})
	require.NoError(t, err)
	request(t, s.handleExecuteCommand, 7, executeCommandParams{
		Command:   addWordCommand,
		Arguments: []json.RawMessage{arg},
	})
	require.NoError(t, s.jobs.Wait())

	data, err := os.ReadFile(dictPath)
	require.NoError(t, err)
	assert.Equal(t, "kit\n", string(data))
	assert.True(t, s.engine.Load().Contains("kit"))

	msgs := readAll(t, out)
	resp := response(t, msgs, 7)
	assert.Nil(t, resp.Error)
	assert.Equal(t, "null", string(resp.Result))

	idx := slices.IndexFunc(msgs, func(m rpcMessage) bool { return m.Method == "window/showMessage" })
	require.NotEqual(t, -1, idx)
	var shown showMessageParams
	require.NoError(t, json.Unmarshal(msgs[idx].Params, &shown))
	assert.Equal(t, messageTypeInfo, shown.Type)
	assert.Contains(t, shown.Message, "kit")

	pubs := publications(t, msgs, testURI)
	require.Len(t, pubs, 2)
	assert.Len(t, pubs[0].Diagnostics, 1)
	assert.Empty(t, pubs[1].Diagnostics, "document rechecked after the word was added")
}

func TestExecuteCommandInvalid(t *testing.T) {
	s, out := newTestServer(t, Options{UserDictPath: filepath.Join(t.TempDir(), "user.txt")})

	request(t, s.handleExecuteCommand, 1, executeCommandParams{Command: addWordCommand})
	empty, _ := json.Marshal(map[string]string{"word": ""})
	request(t, s.handleExecuteCommand, 2, executeCommandParams{Command: addWordCommand, Arguments: []json.RawMessage{empty}})
	request(t, s.handleExecuteCommand, 3, executeCommandParams{Command: "other.command"})

	msgs := readAll(t, out)
	for id := 1; id <= 3; id++ {
		resp := response(t, msgs, id)
		require.NotNil(t, resp.Error, "id %d", id)
		assert.Equal(t, codeInvalidParams, resp.Error.Code)
	}
}

func TestDidCloseClearsDiagnostics(t *testing.T) {
	s, out := newTestServer(t, Options{})
	open(t, s, "Ala ma kit.")

	request(t, s.handleDidClose, 0, didCloseTextDocumentParams{
		TextDocument: textDocumentIdentifier{URI: testURI},
	})
	pubs := publications(t, readAll(t, out), testURI)
	require.Len(t, pubs, 2)
	assert.NotNil(t, pubs[1].Diagnostics)
	assert.Empty(t, pubs[1].Diagnostics)

	_, err := s.docs.Snapshot(testURI)
	assert.Error(t, err)
}

func TestRequestsOnUnopenedDocument(t *testing.T) {
	s, out := newTestServer(t, Options{})
	doc := textDocumentIdentifier{URI: "file:///missing.txt"}

	request(t, s.handleCompletion, 1, completionParams{
		textDocumentPositionParams: textDocumentPositionParams{TextDocument: doc},
	})
	request(t, s.handleCodeAction, 2, codeActionParams{TextDocument: doc})
	request(t, s.handlePullDiagnostics, 3, documentDiagnosticParams{TextDocument: doc})
	// notifications are ignored
	request(t, s.handleDidChange, 0, didChangeTextDocumentParams{
		TextDocument:   versionedTextDocumentIdentifier{URI: doc.URI},
		ContentChanges: []textDocumentContentChangeEvent{{Text: "x"}},
	})

	msgs := readAll(t, out)
	require.Len(t, msgs, 3)
	for id := 1; id <= 3; id++ {
		resp := response(t, msgs, id)
		require.NotNil(t, resp.Error)
		assert.Equal(t, codeRequestFailed, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "file:///missing.txt")
	}
}

func TestPullDiagnostics(t *testing.T) {
	s, out := newTestServer(t, Options{MaxDiagnostics: 1})
	open(t, s, "kit kat kut")
	out.Reset()

	request(t, s.handlePullDiagnostics, 9, documentDiagnosticParams{
		TextDocument: textDocumentIdentifier{URI: testURI},
	})
	var report fullDocumentDiagnosticReport
	require.NoError(t, json.Unmarshal(response(t, readAll(t, out), 9).Result, &report))
	assert.Equal(t, "full", report.Kind)
	require.Len(t, report.Items, 1, "truncated to the configured maximum")
	assert.Equal(t, "kit", report.Items[0].Data.Word)
}

func frame(t *testing.T, msgs ...string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	for _, m := range msgs {
		require.NoError(t, writeMessage(&buf, []byte(m)))
	}
	return &buf
}

func runServer(t *testing.T, in io.Reader) ([]rpcMessage, error) {
	t.Helper()
	engine, err := suggest.NewEngine(dictionary.Load(dictionary.Source{Name: "test", Data: []byte(testWords)}), suggest.EngineOptions{MaxDistance: 2})
	require.NoError(t, err)
	var out bytes.Buffer
	s := NewServer(in, &out, engine, Options{Logger: log.New(io.Discard)})
	runErr := s.Run(t.Context())
	return readAll(t, &out), runErr
}

func TestRunLifecycle(t *testing.T) {
	in := frame(t,
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		`{"jsonrpc":"2.0","method":"initialized","params":{}}`,
		`{"jsonrpc":"2.0","id":2,"method":"textDocument/hover","params":{}}`,
		`{"jsonrpc":"2.0","method":"$/cancelRequest","params":{"id":2}}`,
		`{"jsonrpc":"2.0","id":3,"method":"shutdown"}`,
		`{"jsonrpc":"2.0","id":4,"method":"textDocument/completion","params":{}}`,
		`{"jsonrpc":"2.0","method":"exit"}`,
	)
	msgs, err := runServer(t, in)
	require.ErrorIs(t, err, ErrExit)

	require.Len(t, msgs, 4)
	assert.Nil(t, response(t, msgs, 1).Error)
	assert.Equal(t, codeMethodNotFound, response(t, msgs, 2).Error.Code)
	assert.Equal(t, "null", string(response(t, msgs, 3).Result))
	assert.Equal(t, codeInvalidRequest, response(t, msgs, 4).Error.Code)
}

func TestRunExitWithoutShutdown(t *testing.T) {
	_, err := runServer(t, frame(t, `{"jsonrpc":"2.0","method":"exit"}`))
	assert.ErrorIs(t, err, ErrExitWithoutShutdown)
}

func TestRunEndOfInput(t *testing.T) {
	msgs, err := runServer(t, frame(t, `not json`, `{"jsonrpc":"2.0","id":1,"method":"shutdown"}`))
	assert.NoError(t, err)
	require.Len(t, msgs, 1)
}
