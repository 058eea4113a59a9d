// Package workspace keeps the documents an editor has open.
//
// The store map is guarded by a read-write mutex and every entry by its own
// mutex, so handlers running concurrently for different documents do not
// block each other while edits to one document are serialised.
package workspace

import (
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tliron/commonlog"

	"github.com/dhamidi/oak/lang"
)

var log = commonlog.GetLogger("oak.workspace")

// ErrUnknownLanguage is returned when no registered language matches a
// document.
var ErrUnknownLanguage = errors.New("unknown language")

type Store struct {
	mu       sync.RWMutex
	registry *lang.Registry
	entries  map[string]*Entry
}

// Entry is one open document.
type Entry struct {
	mu       sync.Mutex
	uri      string
	path     string
	language string
	version  int32
	doc      lang.Document
}

func New(registry *lang.Registry) *Store {
	return &Store{
		registry: registry,
		entries:  make(map[string]*Entry),
	}
}

// Open starts tracking a document, replacing any entry under the same
// URI. The language comes from languageID when it is registered, otherwise
// from the path and content.
func (s *Store) Open(uri, languageID, text string, version int32) (*Entry, error) {
	path := PathFromURI(uri)
	svc, ok := s.registry.Resolve(languageID, path, []byte(text))
	if !ok {
		return nil, fmt.Errorf("%s (language id %q): %w", uri, languageID, ErrUnknownLanguage)
	}

	e := &Entry{
		uri:      uri,
		path:     path,
		language: svc.Info().Name,
		version:  version,
		doc:      svc.Open(uri, text),
	}

	s.mu.Lock()
	s.entries[uri] = e
	s.mu.Unlock()

	log.Debugf("opened %s as %s (version %d)", uri, e.language, version)
	return e, nil
}

func (s *Store) Get(uri string) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[uri]
	return e, ok
}

// Close stops tracking uri and reports whether it was open.
func (s *Store) Close(uri string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[uri]; !ok {
		return false
	}
	delete(s.entries, uri)
	log.Debugf("closed %s", uri)
	return true
}

// URIs returns the open documents in sorted order.
func (s *Store) URIs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uris := make([]string, 0, len(s.entries))
	for uri := range s.entries {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

func (e *Entry) URI() string      { return e.uri }
func (e *Entry) Path() string     { return e.path }
func (e *Entry) Language() string { return e.language }

func (e *Entry) Version() int32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.version
}

// Read runs fn with exclusive access to the document.
func (e *Entry) Read(fn func(doc lang.Document) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.doc)
}

// Update runs fn with exclusive access to the document and records the
// new version when fn succeeds. Versions never go backwards.
func (e *Entry) Update(version int32, fn func(doc lang.Document) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(e.doc); err != nil {
		return err
	}
	if version > e.version {
		e.version = version
	}
	return nil
}

// PathFromURI turns a file URI into a local path. Other URIs are returned
// unchanged.
func PathFromURI(uri string) string {
	if !strings.HasPrefix(uri, "file://") {
		return uri
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return uri
	}
	return filepath.Clean(filepath.FromSlash(parsed.Path))
}

// URIFromPath turns a local path into a file URI.
func URIFromPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	slashed := filepath.ToSlash(path)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	return (&url.URL{Scheme: "file", Path: slashed}).String()
}
