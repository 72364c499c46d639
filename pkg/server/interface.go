/*
Package server implements msgpack IPC for spell checking services.

The server reads a stream of msgpack maps from stdin and answers each with one msgpack map on stdout.
Messages are processed in order, with timing info (microseconds) included in responses.

# IPC

Every request carries an ID and an operation. The remaining fields depend on the op:

	{"id": "r1", "op": "check", "w": "kot"}
	{"id": "r2", "op": "check", "t": "Ala ma kit."}
	{"id": "r3", "op": "suggest", "w": "kit", "l": 5}
	{"id": "r4", "op": "complete", "p": "ko", "l": 24}
	{"id": "r5", "op": "tokenize", "t": "Zażółć gęślą jaźń"}
	{"id": "r6", "op": "add", "w": "spellserve"}
	{"id": "r7", "op": "health"}

Suggestions come back ranked from 1, best first:

	{"id": "r3", "s": [{"w": "kot", "r": 1, "d": 1}], "c": 1, "t": 38}

An op that fails answers with an ErrorResponse:

	{"id": "r3", "e": "missing word", "c": 400}

Right after start the server writes a StatusResponse with status "ready".

# Message Types

WordsResponse answers both "suggest" and "complete".
CheckResponse reports membership of a single word, or the diagnostics of a whole text.
TokenizeResponse lists the checked words of a text with their positions.
StatusResponse answers "health" and "add".
*/
package server

import (
	"github.com/bastiangx/spellserve/pkg/diagnose"
	"github.com/bastiangx/spellserve/pkg/tokenize"
)

// Supported ops.
const (
	OpCheck    = "check"
	OpSuggest  = "suggest"
	OpComplete = "complete"
	OpTokenize = "tokenize"
	OpAdd      = "add"
	OpHealth   = "health"
)

// Error codes.
const (
	CodeBadRequest = 400
	CodeUnknownOp  = 404
	CodeInternal   = 500
)

// Request - one IPC request
type Request struct {
	ID     string `msgpack:"id"`
	Op     string `msgpack:"op"`
	Word   string `msgpack:"w,omitempty"`
	Prefix string `msgpack:"p,omitempty"`
	Text   string `msgpack:"t,omitempty"`
	Limit  int    `msgpack:"l,omitempty"`
}

// RankedWord - minimal suggestion
type RankedWord struct {
	Word     string `msgpack:"w"`
	Rank     uint16 `msgpack:"r"`
	Distance int    `msgpack:"d"`
	Common   bool   `msgpack:"m,omitempty"`
}

// WordsResponse - suggest and complete response
type WordsResponse struct {
	ID          string       `msgpack:"id"`
	Suggestions []RankedWord `msgpack:"s"`
	Count       int          `msgpack:"c"`
	TimeTaken   int64        `msgpack:"t"`
}

// CheckResponse - check response. Known is set for a word, Diagnostics for a text.
type CheckResponse struct {
	ID          string                `msgpack:"id"`
	Known       bool                  `msgpack:"k"`
	Diagnostics []diagnose.Diagnostic `msgpack:"d,omitempty"`
	Count       int                   `msgpack:"c"`
	TimeTaken   int64                 `msgpack:"t"`
}

// TokenInfo - one word of a tokenized text
type TokenInfo struct {
	Word  string            `msgpack:"w"`
	Start tokenize.Position `msgpack:"s"`
	End   tokenize.Position `msgpack:"e"`
}

// TokenizeResponse - tokenize response
type TokenizeResponse struct {
	ID        string      `msgpack:"id"`
	Tokens    []TokenInfo `msgpack:"k"`
	Count     int         `msgpack:"c"`
	TimeTaken int64       `msgpack:"t"`
}

// StatusResponse - ready, health and add response
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
	Words  int    `msgpack:"n,omitempty"`
}

// ErrorResponse holds basic error information for a failed request
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
