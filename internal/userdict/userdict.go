// Package userdict finds, reads and extends the user's dictionary files.
package userdict

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/bastiangx/spellserve/pkg/dictionary"
)

// LoadError reports a dictionary file that could not be read. Loading goes on
// without it.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load user dictionary %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// ErrEmptyWord is returned by Append for a blank word.
var ErrEmptyWord = errors.New("empty word")

// Discover lists the files in dir with extension ext, sorted by name. A
// missing dir yields no files.
func Discover(dir, ext string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ext) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	slices.Sort(paths)
	return paths, nil
}

// Load reads paths with up to workers files in flight. Sources come back in
// the order of paths, minus the unreadable ones, which are reported as
// LoadErrors for the caller to log. The returned error is only set when ctx
// is cancelled.
func Load(ctx context.Context, paths []string, workers int) ([]dictionary.Source, []*LoadError, error) {
	if len(paths) == 0 {
		return nil, nil, nil
	}
	if workers <= 0 {
		workers = 1
	}

	data := make([][]byte, len(paths))
	var (
		mu     sync.Mutex
		failed = make(map[int]*LoadError)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(workers, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			b, err := os.ReadFile(path)
			if err != nil {
				mu.Lock()
				failed[i] = &LoadError{Path: path, Err: err}
				mu.Unlock()
				return nil
			}
			data[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		sources []dictionary.Source
		errs    []*LoadError
	)
	for i, path := range paths {
		if le, ok := failed[i]; ok {
			errs = append(errs, le)
			continue
		}
		sources = append(sources, dictionary.Source{Name: path, Data: data[i]})
	}
	return sources, errs, nil
}

// LoadDir is Discover followed by Load.
func LoadDir(ctx context.Context, dir, ext string, workers int) ([]dictionary.Source, []*LoadError, error) {
	paths, err := Discover(dir, ext)
	if err != nil {
		return nil, []*LoadError{{Path: dir, Err: err}}, nil
	}
	return Load(ctx, paths, workers)
}

var appendMu sync.Mutex

// Append adds word as a new line of path, creating the file and its
// directory when needed.
func Append(path, word string) error {
	word = strings.TrimSpace(word)
	if word == "" {
		return ErrEmptyWord
	}
	if strings.ContainsAny(word, "\r\n") {
		return fmt.Errorf("word %q spans lines", word)
	}

	appendMu.Lock()
	defer appendMu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dictionary dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open user dictionary: %w", err)
	}
	defer f.Close()

	prefix, err := needsNewline(f)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(prefix + word + "\n"); err != nil {
		return fmt.Errorf("append to user dictionary: %w", err)
	}
	log.Debug("word added to user dictionary", "word", word, "path", path)
	return nil
}

// needsNewline returns "\n" when the file does not end with one.
func needsNewline(f *os.File) (string, error) {
	info, err := f.Stat()
	if err != nil {
		return "", err
	}
	if info.Size() == 0 {
		return "", nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return "", err
	}
	if last[0] == '\n' {
		return "", nil
	}
	return "\n", nil
}
