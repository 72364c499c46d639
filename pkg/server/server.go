package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/spellserve/internal/logger"
	"github.com/bastiangx/spellserve/internal/userdict"
	"github.com/bastiangx/spellserve/internal/utils"
	"github.com/bastiangx/spellserve/pkg/diagnose"
	"github.com/bastiangx/spellserve/pkg/fuzzy"
	"github.com/bastiangx/spellserve/pkg/suggest"
	"github.com/bastiangx/spellserve/pkg/tokenize"
)

// Options configures the server. Zero values fall back to defaults.
type Options struct {
	CompletionLimit int
	SuggestionLimit int
	MinPrefix       int
	MaxPrefix       int
	// UserDictPath receives words of the "add" op. Empty rejects the op.
	UserDictPath string
	Logger       *log.Logger
}

func (o *Options) setDefaults() {
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
		o.Logger = logger.New("ipc")
	}
}

// Server handles msgpack IPC on one pair of streams
type Server struct {
	engine *suggest.Engine
	opts   Options
	log    *log.Logger
	dec    *msgpack.Decoder
	out    *bufio.Writer
	enc    *msgpack.Encoder

	requests int
}

// NewServer creates a server reading requests from in and writing to out.
// The server takes ownership of engine.
func NewServer(in io.Reader, out io.Writer, engine *suggest.Engine, opts Options) *Server {
	opts.setDefaults()
	w := bufio.NewWriter(out)
	return &Server{
		engine: engine,
		opts:   opts,
		log:    opts.Logger,
		dec:    msgpack.NewDecoder(bufio.NewReader(in)),
		out:    w,
		enc:    msgpack.NewEncoder(w),
	}
}

// Start serves requests until end of input or ctx cancellation.
func (s *Server) Start(ctx context.Context) error {
	s.log.Debug("Starting Server.")
	defer s.engine.Close()

	if err := s.send(StatusResponse{Status: "ready", Words: s.engine.Dict.Len()}); err != nil {
		return err
	}
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := s.dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.log.Debug("client disconnected", "requests", s.requests)
				return nil
			}
			return fmt.Errorf("read request: %w", err)
		}
		s.requests++

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.log.Warn("invalid request", "err", err)
			if err := s.sendError("", "invalid request", CodeBadRequest); err != nil {
				return err
			}
			continue
		}
		if err := s.send(s.handle(req)); err != nil {
			return err
		}
	}
}

// handle returns the response to req.
func (s *Server) handle(req Request) any {
	s.log.Debug("request", "id", req.ID, "op", req.Op)
	switch req.Op {
	case OpCheck:
		return s.handleCheck(req)
	case OpSuggest:
		return s.handleSuggest(req)
	case OpComplete:
		return s.handleComplete(req)
	case OpTokenize:
		return s.handleTokenize(req)
	case OpAdd:
		return s.handleAdd(req)
	case OpHealth:
		return StatusResponse{ID: req.ID, Status: "ok", Words: s.engine.Dict.Len()}
	default:
		return ErrorResponse{ID: req.ID, Error: fmt.Sprintf("unknown op %q", req.Op), Code: CodeUnknownOp}
	}
}

func (s *Server) handleCheck(req Request) any {
	start := time.Now()
	if req.Text != "" {
		diags := diagnose.Tokens(tokenize.Tokenize(req.Text), s.engine)
		return CheckResponse{
			ID:          req.ID,
			Known:       len(diags) == 0,
			Diagnostics: diags,
			Count:       len(diags),
			TimeTaken:   time.Since(start).Microseconds(),
		}
	}
	if req.Word == "" {
		return badRequest(req, "missing word or text")
	}
	known := s.engine.Contains(req.Word)
	resp := CheckResponse{ID: req.ID, Known: known, TimeTaken: time.Since(start).Microseconds()}
	if !known {
		resp.Count = 1
	}
	return resp
}

func (s *Server) handleSuggest(req Request) any {
	if req.Word == "" {
		return badRequest(req, "missing word")
	}
	start := time.Now()
	var words []RankedWord
	if utils.IsValidInput(req.Word) {
		limit := limitOr(req.Limit, s.opts.SuggestionLimit)
		// the queried word itself comes back at distance 0 when it is known
		filter := utils.NewSuggestionFilter(req.Word)
		var found []fuzzy.Suggestion
		for _, f := range s.engine.Suggest(req.Word, limit+1) {
			if len(found) < limit && filter.ShouldInclude(f.Word) {
				found = append(found, f)
			}
		}
		ranks := utils.CreateRankList(len(found))
		words = make([]RankedWord, len(found))
		for i, f := range found {
			words[i] = RankedWord{
				Word:     suggest.MatchCase(req.Word, f.Word),
				Rank:     ranks[i],
				Distance: f.Distance,
				Common:   f.Common,
			}
		}
	}
	return wordsResponse(req.ID, words, start)
}

func (s *Server) handleComplete(req Request) any {
	prefix := req.Prefix
	if prefix == "" {
		return badRequest(req, "missing prefix")
	}
	n := utf8.RuneCountInString(prefix)
	if n > s.opts.MaxPrefix {
		return badRequest(req, fmt.Sprintf("prefix exceeds maximum length of %d characters", s.opts.MaxPrefix))
	}
	start := time.Now()
	var words []RankedWord
	if n >= s.opts.MinPrefix && utils.IsValidInput(prefix) {
		found := s.engine.Complete(prefix, limitOr(req.Limit, s.opts.CompletionLimit))
		ranks := utils.CreateRankList(len(found))
		words = make([]RankedWord, len(found))
		for i, c := range found {
			words[i] = RankedWord{
				Word:     suggest.MatchCase(prefix, c.Word),
				Rank:     ranks[i],
				Distance: c.Distance,
				Common:   c.Common,
			}
		}
	}
	return wordsResponse(req.ID, words, start)
}

func (s *Server) handleTokenize(req Request) any {
	start := time.Now()
	tokens := tokenize.Tokenize(req.Text)
	out := make([]TokenInfo, len(tokens))
	for i, t := range tokens {
		out[i] = TokenInfo{Word: t.Text, Start: t.Start, End: t.End}
	}
	return TokenizeResponse{
		ID:        req.ID,
		Tokens:    out,
		Count:     len(out),
		TimeTaken: time.Since(start).Microseconds(),
	}
}

func (s *Server) handleAdd(req Request) any {
	if s.opts.UserDictPath == "" {
		return badRequest(req, "no user dictionary configured")
	}
	if req.Word == "" {
		return badRequest(req, "missing word")
	}
	if s.engine.Contains(req.Word) {
		return StatusResponse{ID: req.ID, Status: "exists", Words: s.engine.Dict.Len()}
	}
	if err := userdict.Append(s.opts.UserDictPath, req.Word); err != nil {
		s.log.Error("failed to add word", "word", req.Word, "err", err)
		return ErrorResponse{ID: req.ID, Error: err.Error(), Code: CodeInternal}
	}
	next, err := s.engine.With(req.Word)
	if err != nil {
		return ErrorResponse{ID: req.ID, Error: err.Error(), Code: CodeInternal}
	}
	s.engine.Close()
	s.engine = next
	return StatusResponse{ID: req.ID, Status: "added", Words: next.Dict.Len()}
}

func (s *Server) send(resp any) error {
	if err := s.enc.Encode(resp); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return s.out.Flush()
}

func (s *Server) sendError(id, message string, code int) error {
	return s.send(ErrorResponse{ID: id, Error: message, Code: code})
}

func badRequest(req Request, message string) ErrorResponse {
	return ErrorResponse{ID: req.ID, Error: message, Code: CodeBadRequest}
}

func wordsResponse(id string, words []RankedWord, start time.Time) WordsResponse {
	if words == nil {
		words = []RankedWord{}
	}
	return WordsResponse{
		ID:          id,
		Suggestions: words,
		Count:       len(words),
		TimeTaken:   time.Since(start).Microseconds(),
	}
}

func limitOr(limit, fallback int) int {
	if limit < 1 {
		return fallback
	}
	return limit
}
