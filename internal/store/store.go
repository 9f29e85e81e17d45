// Package store owns the persisted timesheet document: one pretty-printed
// JSON file, loaded wholesale at startup and written back wholesale after
// every mutation. There is no partial persistence and no transaction log;
// durability is the whole-file write.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"timesheet/internal/core"
	applog "timesheet/internal/log"
)

// DataFileName is the document file inside the data directory.
const DataFileName = "timesheet-data.json"

// StorageError wraps directory, read, parse and write failures. Callers
// surface it to the user; the in-memory document is never discarded on a
// failed save, so the user can retry.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// IsStorageError reports whether err is (or wraps) a StorageError.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}

// Store serializes access to the document for every window of the app. Both
// the primary and the quick-add screens run against this one instance, so
// consistency between them is in-process rather than reload-from-disk.
type Store struct {
	mu   sync.RWMutex
	dir  string
	path string
	doc  core.Document
	log  *applog.Logger

	subMu sync.Mutex
	subs  map[int]chan struct{}
	nextSub int
}

// Open creates the data directory if needed and loads the document. A
// missing file yields the seeded default document without writing it to
// disk; an unreadable or unparseable file is a StorageError and fatal to
// initialization.
func Open(dir string, logger *applog.Logger) (*Store, error) {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	s := &Store{
		dir:  dir,
		path: filepath.Join(dir, DataFileName),
		log:  logger.WithComponent(applog.ComponentStorage),
		subs: make(map[int]chan struct{}),
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &StorageError{Op: "mkdir", Path: dir, Err: err}
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.doc = DefaultDocument()
		s.log.Info("no data file found, starting with default document", "path", s.path)
		return s, nil
	}
	if err != nil {
		return nil, &StorageError{Op: "read", Path: s.path, Err: err}
	}
	var doc core.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &StorageError{Op: "parse", Path: s.path, Err: err}
	}
	if doc.Settings.MileageRate == 0 {
		doc.Settings.MileageRate = core.DefaultMileageRate
	}
	s.doc = doc
	s.log.Info("document loaded", "path", s.path, "clients", len(doc.Clients), "entries", len(doc.Entries))
	return s, nil
}

// DefaultDocument is the built-in starter document used when no data file
// exists yet.
func DefaultDocument() core.Document {
	return core.Document{
		Clients: []core.Client{
			{
				ID:            "safran",
				Name:          "Safran",
				Rate:          65,
				VATApplicable: false,
				Activities:    []string{"Customer Support", "Safran Marketing", "SRM Development"},
			},
			{
				ID:            "russell",
				Name:          "Russell",
				Rate:          62.5,
				VATApplicable: true,
				Activities:    []string{"Consulting"},
			},
			{
				ID:            "satarla",
				Name:          "Satarla",
				Rate:          75,
				VATApplicable: true,
				Activities:    []string{"Consulting"},
			},
		},
		Entries:  []core.Entry{},
		Settings: core.Settings{MileageRate: core.DefaultMileageRate},
	}
}

// Dir returns the data directory, which also receives export files and is
// scanned for import workbooks.
func (s *Store) Dir() string { return s.dir }

// Document returns a copy of the current document.
func (s *Store) Document() core.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyDoc()
}

func (s *Store) copyDoc() core.Document {
	doc := core.Document{
		Clients:  make([]core.Client, len(s.doc.Clients)),
		Entries:  make([]core.Entry, len(s.doc.Entries)),
		Settings: s.doc.Settings,
	}
	copy(doc.Clients, s.doc.Clients)
	copy(doc.Entries, s.doc.Entries)
	for i := range doc.Clients {
		acts := make([]string, len(doc.Clients[i].Activities))
		copy(acts, doc.Clients[i].Activities)
		doc.Clients[i].Activities = acts
	}
	return doc
}

// Clients lists clients, excluding hidden ones unless includeHidden is set.
func (s *Store) Clients(includeHidden bool) []core.Client {
	doc := s.Document()
	if includeHidden {
		return doc.Clients
	}
	out := make([]core.Client, 0, len(doc.Clients))
	for _, c := range doc.Clients {
		if !c.Hidden {
			out = append(out, c)
		}
	}
	return out
}

// Client returns one client by id.
func (s *Store) Client(id string) (core.Client, bool) {
	return s.Document().FindClient(id)
}

// CreateClient validates, assigns an id and persists a new client.
func (s *Store) CreateClient(c core.Client) (core.Client, error) {
	if err := preparedClient(&c); err != nil {
		return core.Client{}, err
	}
	c.ID = core.NewID()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Clients = append(s.doc.Clients, c)
	if err := s.save(); err != nil {
		return c, err
	}
	s.log.Info("client created", "client_id", c.ID, "name", c.Name)
	return c, nil
}

// UpdateClient replaces an existing client's fields. The invoice text is
// managed separately and preserved across updates.
func (s *Store) UpdateClient(c core.Client) (core.Client, error) {
	if err := preparedClient(&c); err != nil {
		return core.Client{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.doc.Clients {
		if existing.ID == c.ID {
			c.InvoiceText = existing.InvoiceText
			s.doc.Clients[i] = c
			if err := s.save(); err != nil {
				return c, err
			}
			s.log.Info("client updated", "client_id", c.ID, "name", c.Name)
			return c, nil
		}
	}
	return core.Client{}, core.ErrUnknownClient
}

// HideClient marks a client hidden. Clients are never removed: historical
// entries keep referencing them, so "delete" in the UI means hide.
func (s *Store) HideClient(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Clients {
		if s.doc.Clients[i].ID == id {
			s.doc.Clients[i].Hidden = true
			if err := s.save(); err != nil {
				return err
			}
			s.log.Info("client hidden", "client_id", id)
			return nil
		}
	}
	return core.ErrUnknownClient
}

// SetInvoiceText stores the free-text invoice note attached to a client.
func (s *Store) SetInvoiceText(id, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.doc.Clients {
		if s.doc.Clients[i].ID == id {
			s.doc.Clients[i].InvoiceText = text
			return s.save()
		}
	}
	return core.ErrUnknownClient
}

// Entries returns one client's entries for a month, in document order;
// callers sort as the view requires.
func (s *Store) Entries(clientID, yearMonth string) []core.Entry {
	doc := s.Document()
	return core.FilterMonth(doc.Entries, clientID, yearMonth)
}

// CreateEntry validates and persists a new entry for an existing client.
func (s *Store) CreateEntry(e core.Entry) (core.Entry, error) {
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.doc.FindClient(e.ClientID); !ok {
		return core.Entry{}, core.ErrUnknownClient
	}
	e.ID = core.NewID()
	s.doc.Entries = append(s.doc.Entries, e)
	if err := s.save(); err != nil {
		return e, err
	}
	s.log.Info("entry created", "entry_id", e.ID, "client_id", e.ClientID, "date", e.Date, "hours", e.Hours)
	return e, nil
}

// UpdateEntry replaces an existing entry by id.
func (s *Store) UpdateEntry(e core.Entry) (core.Entry, error) {
	if err := e.Validate(); err != nil {
		return core.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.doc.Entries {
		if existing.ID == e.ID {
			s.doc.Entries[i] = e
			if err := s.save(); err != nil {
				return e, err
			}
			s.log.Info("entry updated", "entry_id", e.ID, "client_id", e.ClientID, "date", e.Date)
			return e, nil
		}
	}
	return core.Entry{}, ErrEntryNotFound
}

// ErrEntryNotFound is returned when an entry id does not exist, e.g. after
// the other window already deleted it.
var ErrEntryNotFound = errors.New("entry not found")

// DeleteEntry removes an entry by id. There is no soft-delete and no undo;
// the UI asks for confirmation before calling this.
func (s *Store) DeleteEntry(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.doc.Entries {
		if e.ID == id {
			s.doc.Entries = append(s.doc.Entries[:i], s.doc.Entries[i+1:]...)
			if err := s.save(); err != nil {
				return err
			}
			s.log.Info("entry deleted", "entry_id", id)
			return nil
		}
	}
	return ErrEntryNotFound
}

// AddEntries appends a batch of already-validated entries (the import path)
// under a single write-back. Returns how many were added.
func (s *Store) AddEntries(entries []core.Entry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range entries {
		if entries[i].ID == "" {
			entries[i].ID = core.NewID()
		}
	}
	s.doc.Entries = append(s.doc.Entries, entries...)
	if err := s.save(); err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Settings returns the current document settings.
func (s *Store) Settings() core.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Settings
}

// UpdateSettings validates and persists new settings.
func (s *Store) UpdateSettings(settings core.Settings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc.Settings = settings
	if err := s.save(); err != nil {
		return err
	}
	s.log.Info("settings updated", "mileage_rate", settings.MileageRate)
	return nil
}

// Reload discards the in-memory document and re-reads it from disk. Kept
// for external edits to the data file while the app is running.
func (s *Store) Reload() error {
	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.doc = DefaultDocument()
		s.mu.Unlock()
		s.notify()
		return nil
	}
	if err != nil {
		s.mu.Unlock()
		return &StorageError{Op: "read", Path: s.path, Err: err}
	}
	var doc core.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		s.mu.Unlock()
		return &StorageError{Op: "parse", Path: s.path, Err: err}
	}
	s.doc = doc
	s.mu.Unlock()
	s.notify()
	return nil
}

// Subscribe returns a channel that receives a tick after every successful
// save, plus a cancel func. Feeds the reload signal pushed to open windows.
func (s *Store) Subscribe() (<-chan struct{}, func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch
	return ch, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default: // subscriber already has a pending tick
		}
	}
}

// save writes the full document, pretty-printed, via a temp file and an
// atomic rename so a crash mid-write cannot corrupt the data file. Must be
// called with s.mu held. On failure the in-memory document keeps the
// mutation; the caller reports the error and the user can retry.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.doc, "", "  ")
	if err != nil {
		return &StorageError{Op: "encode", Path: s.path, Err: err}
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &StorageError{Op: "mkdir", Path: s.dir, Err: err}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return &StorageError{Op: "write", Path: tmp, Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return &StorageError{Op: "rename", Path: s.path, Err: err}
	}
	s.notify()
	return nil
}

// preparedClient trims and validates client input in place.
func preparedClient(c *core.Client) error {
	c.Name = strings.TrimSpace(c.Name)
	acts := make([]string, 0, len(c.Activities))
	for _, a := range c.Activities {
		if t := strings.TrimSpace(a); t != "" {
			acts = append(acts, t)
		}
	}
	c.Activities = acts
	return c.Validate()
}
