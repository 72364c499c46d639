package lsp

import (
	"encoding/json"
	"fmt"

	"github.com/bastiangx/spellserve/internal/userdict"
	"github.com/bastiangx/spellserve/pkg/action"
)

const addWordCommand = action.AddWordCommand

func (s *Server) handleExecuteCommand(msg *rpcMessage) error {
	var params executeCommandParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	if params.Command != addWordCommand || s.opts.UserDictPath == "" {
		return s.sendError(msg.ID, codeInvalidParams, fmt.Sprintf("unknown command %q", params.Command))
	}
	var args action.AddWordArgs
	if len(params.Arguments) == 0 || json.Unmarshal(params.Arguments[0], &args) != nil || args.Word == "" {
		return s.sendError(msg.ID, codeInvalidParams, "expected {word, uri} argument")
	}

	if err := s.addWord(args.Word); err != nil {
		s.log.Error("failed to add word", "word", args.Word, "err", err)
		s.showMessage(messageTypeError, fmt.Sprintf("Failed to add %q to dictionary: %v", args.Word, err))
		return s.sendError(msg.ID, codeRequestFailed, err.Error())
	}
	s.showMessage(messageTypeInfo, fmt.Sprintf("Added %q to dictionary", args.Word))
	if err := s.sendResponse(msg.ID, nil); err != nil {
		return err
	}
	s.rediagnoseAll()
	return nil
}

// addWord persists word and swaps in an engine that knows it.
func (s *Server) addWord(word string) error {
	cur := s.engine.Load()
	if cur.Contains(word) {
		s.log.Info("word already in dictionary", "word", word)
		return nil
	}
	if err := userdict.Append(s.opts.UserDictPath, word); err != nil {
		return err
	}
	next, err := cur.With(word)
	if err != nil {
		return err
	}
	s.engine.Store(next)
	cur.Close()
	s.log.Info("word added", "word", word, "path", s.opts.UserDictPath)
	return nil
}
