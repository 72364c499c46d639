package server

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/spellserve/pkg/dictionary"
	"github.com/bastiangx/spellserve/pkg/suggest"
	"github.com/bastiangx/spellserve/pkg/tokenize"
)

const testWords = "*kot\nkotek\nkotlet\ndom\nala\nmam\n"

// session runs the server over reqs and returns a decoder positioned after
// the ready message.
func session(t *testing.T, opts Options, reqs ...any) *msgpack.Decoder {
	t.Helper()
	var in bytes.Buffer
	enc := msgpack.NewEncoder(&in)
	for _, r := range reqs {
		require.NoError(t, enc.Encode(r))
	}

	dict := dictionary.Load(dictionary.Source{Name: "test", Data: []byte(testWords)})
	engine, err := suggest.NewEngine(dict, suggest.EngineOptions{MaxDistance: 2, CacheCost: 1 << 16})
	require.NoError(t, err)
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	var out bytes.Buffer
	require.NoError(t, NewServer(&in, &out, engine, opts).Start(t.Context()))

	dec := msgpack.NewDecoder(&out)
	var ready StatusResponse
	require.NoError(t, dec.Decode(&ready))
	require.Equal(t, "ready", ready.Status)
	require.Equal(t, 6, ready.Words)
	return dec
}

func TestCheck(t *testing.T) {
	dec := session(t, Options{},
		Request{ID: "1", Op: OpCheck, Word: "Kot"},
		Request{ID: "2", Op: OpCheck, Word: "kit"},
		Request{ID: "3", Op: OpCheck, Text: "Ala ma kit.\nMam kota"},
		Request{ID: "4", Op: OpCheck},
	)

	var word CheckResponse
	require.NoError(t, dec.Decode(&word))
	assert.Equal(t, "1", word.ID)
	assert.True(t, word.Known)

	require.NoError(t, dec.Decode(&word))
	assert.False(t, word.Known)
	assert.Equal(t, 1, word.Count)

	var text CheckResponse
	require.NoError(t, dec.Decode(&text))
	require.Len(t, text.Diagnostics, 2)
	assert.False(t, text.Known)
	assert.Equal(t, "kit", text.Diagnostics[0].Word)
	assert.Equal(t, tokenize.Position{Line: 1, Character: 4}, text.Diagnostics[1].Range.Start)
	assert.GreaterOrEqual(t, text.TimeTaken, int64(0))

	var bad ErrorResponse
	require.NoError(t, dec.Decode(&bad))
	assert.Equal(t, "4", bad.ID)
	assert.Equal(t, CodeBadRequest, bad.Code)
}

func TestSuggestAndComplete(t *testing.T) {
	dec := session(t, Options{},
		Request{ID: "s", Op: OpSuggest, Word: "Kit", Limit: 3},
		Request{ID: "c", Op: OpComplete, Prefix: "ko", Limit: 2},
		Request{ID: "short", Op: OpComplete, Prefix: "k"},
		Request{ID: "junk", Op: OpComplete, Prefix: "k#t"},
	)

	var sug WordsResponse
	require.NoError(t, dec.Decode(&sug))
	require.Equal(t, 1, sug.Count)
	assert.Equal(t, RankedWord{Word: "Kot", Rank: 1, Distance: 1, Common: true}, sug.Suggestions[0])

	var comp WordsResponse
	require.NoError(t, dec.Decode(&comp))
	require.Equal(t, 2, comp.Count)
	assert.Equal(t, "kot", comp.Suggestions[0].Word)
	assert.Equal(t, uint16(1), comp.Suggestions[0].Rank)
	assert.Equal(t, "kotek", comp.Suggestions[1].Word)
	assert.Equal(t, uint16(2), comp.Suggestions[1].Rank)

	for _, id := range []string{"short", "junk"} {
		var empty WordsResponse
		require.NoError(t, dec.Decode(&empty))
		assert.Equal(t, id, empty.ID)
		assert.Zero(t, empty.Count)
	}
}

func TestSuggestLeavesOutQueriedWord(t *testing.T) {
	dec := session(t, Options{}, Request{ID: "s", Op: OpSuggest, Word: "kot", Limit: 2})

	var sug WordsResponse
	require.NoError(t, dec.Decode(&sug))
	require.Equal(t, 2, sug.Count)
	assert.Equal(t, RankedWord{Word: "dom", Rank: 1, Distance: 2}, sug.Suggestions[0])
	assert.Equal(t, RankedWord{Word: "kotek", Rank: 2, Distance: 2}, sug.Suggestions[1])
}

func TestTokenize(t *testing.T) {
	dec := session(t, Options{}, Request{ID: "t", Op: OpTokenize, Text: "😀 kot, 12 żółw"})

	var resp TokenizeResponse
	require.NoError(t, dec.Decode(&resp))
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, TokenInfo{
		Word:  "kot",
		Start: tokenize.Position{Line: 0, Character: 3},
		End:   tokenize.Position{Line: 0, Character: 6},
	}, resp.Tokens[0])
	assert.Equal(t, "żółw", resp.Tokens[1].Word)
}

func TestAddWord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slownik.txt")
	dec := session(t, Options{UserDictPath: path},
		Request{ID: "1", Op: OpAdd, Word: "kit"},
		Request{ID: "2", Op: OpCheck, Word: "kit"},
		Request{ID: "3", Op: OpAdd, Word: "kot"},
		Request{ID: "4", Op: OpHealth},
	)

	var added StatusResponse
	require.NoError(t, dec.Decode(&added))
	assert.Equal(t, "added", added.Status)
	assert.Equal(t, 7, added.Words)

	var check CheckResponse
	require.NoError(t, dec.Decode(&check))
	assert.True(t, check.Known)

	var exists StatusResponse
	require.NoError(t, dec.Decode(&exists))
	assert.Equal(t, "exists", exists.Status)

	var health StatusResponse
	require.NoError(t, dec.Decode(&health))
	assert.Equal(t, StatusResponse{ID: "4", Status: "ok", Words: 7}, health)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "kit\n", string(data))
}

func TestAddWithoutUserDictionary(t *testing.T) {
	dec := session(t, Options{}, Request{ID: "1", Op: OpAdd, Word: "kit"})

	var resp ErrorResponse
	require.NoError(t, dec.Decode(&resp))
	assert.Equal(t, CodeBadRequest, resp.Code)
}

func TestInvalidRequests(t *testing.T) {
	dec := session(t, Options{},
		42,
		Request{ID: "x", Op: "translate"},
		Request{ID: "y", Op: OpHealth},
	)

	var bad ErrorResponse
	require.NoError(t, dec.Decode(&bad))
	assert.Equal(t, CodeBadRequest, bad.Code)

	var unknown ErrorResponse
	require.NoError(t, dec.Decode(&unknown))
	assert.Equal(t, "x", unknown.ID)
	assert.Equal(t, CodeUnknownOp, unknown.Code)

	var health StatusResponse
	require.NoError(t, dec.Decode(&health))
	assert.Equal(t, "ok", health.Status)

	var extra StatusResponse
	assert.True(t, errors.Is(dec.Decode(&extra), io.EOF))
}
