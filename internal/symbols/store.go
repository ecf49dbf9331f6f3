// Package symbols resolves characters into speakable names, the way a
// screen reader expands punctuation before spelling it.
//
// Dictionaries live in a directory of per-locale files named after a
// BCP 47 tag, e.g. en.dic or fr-CA.dic. Each line holds a symbol and
// its spoken name separated by a tab; blank lines and lines starting
// with # are skipped. Lookups fall back to a builtin English table and
// finally to the character itself, so resolution never fails.
package symbols

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/text/language"
)

const dictionaryExt = ".dic"

// builtinNames covers the punctuation a host usually expands even when
// no dictionary is installed.
var builtinNames = map[string]string{
	" ":  "space",
	"\t": "tab",
	"\n": "line feed",
	"!":  "bang",
	"\"": "quote",
	"#":  "number",
	"$":  "dollar",
	"%":  "percent",
	"&":  "and",
	"'":  "apostrophe",
	"(":  "left paren",
	")":  "right paren",
	"*":  "star",
	"+":  "plus",
	",":  "comma",
	"-":  "dash",
	".":  "dot",
	"/":  "slash",
	":":  "colon",
	";":  "semicolon",
	"=":  "equals",
	"?":  "question",
	"@":  "at",
	"\\": "backslash",
	"_":  "underscore",
}

// Store holds the loaded symbol dictionaries and answers lookups by
// locale. It is safe for concurrent use.
type Store struct {
	log *slog.Logger
	dir string

	mu      sync.RWMutex
	tables  map[string]map[string]string
	tags    []language.Tag
	matcher language.Matcher
}

// NewStore loads every *.dic file under dir. An empty or missing
// directory yields a store that serves only the builtin names.
func NewStore(dir string, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.Default()
	}
	store := &Store{log: log, dir: dir, tables: make(map[string]map[string]string)}
	store.mu.Lock()
	store.rebuildLocked()
	store.mu.Unlock()

	if dir == "" {
		return store, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return store, nil
		}
		return nil, fmt.Errorf("failed to read symbols dir %q: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), dictionaryExt) {
			continue
		}
		if err := store.loadFile(filepath.Join(dir, entry.Name())); err != nil {
			return nil, fmt.Errorf("failed to parse symbols file %q: %w", entry.Name(), err)
		}
	}
	return store, nil
}

// Speakable returns the spoken name for char in the closest loaded
// locale, falling back to the builtin table and then to char itself.
func (s *Store) Speakable(locale, char string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.tables) > 0 {
		_, index := language.MatchStrings(s.matcher, locale)
		if table := s.tables[s.tags[index].String()]; table != nil {
			if name, ok := table[char]; ok {
				return name
			}
		}
	}
	if name, ok := builtinNames[char]; ok {
		return name
	}
	return char
}

// Watch reloads dictionaries when files under the store directory
// change. It returns once the watcher is installed; reloading stops
// when ctx is cancelled.
func (s *Store) Watch(ctx context.Context) error {
	if s.dir == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create symbols watcher: %w", err)
	}
	if err := watcher.Add(s.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch symbols dir %q: %w", s.dir, err)
	}
	go s.watchLoop(ctx, watcher)
	return nil
}

func (s *Store) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !strings.HasSuffix(event.Name, dictionaryExt) {
				continue
			}
			if err := s.loadFile(event.Name); err != nil {
				s.log.Warn("symbol dictionary reload failed", "file", event.Name, "error", err)
				continue
			}
			s.log.Info("symbol dictionary reloaded", "file", event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("symbol watcher error", "error", err)
		}
	}
}

func (s *Store) loadFile(path string) error {
	tag, table, err := parseDictionary(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.tables[tag.String()] = table
	s.rebuildLocked()
	s.mu.Unlock()
	return nil
}

// rebuildLocked refreshes the matcher after the table set changed.
// English stays first so it wins when nothing else matches.
func (s *Store) rebuildLocked() {
	keys := make([]string, 0, len(s.tables))
	for key := range s.tables {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	tags := make([]language.Tag, 0, len(keys)+1)
	tags = append(tags, language.English)
	for _, key := range keys {
		tag := language.MustParse(key)
		if tag == language.English {
			continue
		}
		tags = append(tags, tag)
	}
	s.tags = tags
	s.matcher = language.NewMatcher(tags)
}

func parseDictionary(path string) (language.Tag, map[string]string, error) {
	base := strings.TrimSuffix(filepath.Base(path), dictionaryExt)
	tag, err := language.Parse(base)
	if err != nil {
		return language.Tag{}, nil, fmt.Errorf("unrecognized locale %q: %w", base, err)
	}

	file, err := os.Open(path)
	if err != nil {
		return language.Tag{}, nil, fmt.Errorf("failed to read symbols file %q: %w", path, err)
	}
	defer file.Close()

	table := make(map[string]string)
	scanner := bufio.NewScanner(file)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		// The symbol field is split from the raw line so entries for
		// whitespace characters survive.
		parts := strings.SplitN(line, "\t", 2)
		if len(parts) != 2 {
			return language.Tag{}, nil, fmt.Errorf("line %d: want symbol<TAB>name", lineNo)
		}
		symbol := parts[0]
		name := strings.TrimSpace(parts[1])
		if symbol == "" {
			return language.Tag{}, nil, fmt.Errorf("line %d: empty symbol", lineNo)
		}
		if name == "" {
			return language.Tag{}, nil, fmt.Errorf("line %d: empty name", lineNo)
		}
		table[symbol] = name
	}
	if err := scanner.Err(); err != nil {
		return language.Tag{}, nil, fmt.Errorf("failed to read symbols file %q: %w", path, err)
	}
	return tag, table, nil
}
