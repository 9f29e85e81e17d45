package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/internal/core"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir(), nil)
	require.NoError(t, err)
	return s
}

func TestOpenMissingFile(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)

	doc := s.Document()
	require.Len(t, doc.Clients, 3, "default document seeds three clients")
	assert.Empty(t, doc.Entries)
	assert.Equal(t, core.DefaultMileageRate, doc.Settings.MileageRate)

	_, statErr := os.Stat(filepath.Join(dir, DataFileName))
	assert.True(t, os.IsNotExist(statErr), "defaults are not written until the first mutation")
}

func TestOpenExistingFile(t *testing.T) {
	dir := t.TempDir()
	doc := core.Document{
		Clients:  []core.Client{{ID: "c1", Name: "Acme", Rate: 50, Activities: []string{"Consulting"}}},
		Entries:  []core.Entry{{ID: "e1", ClientID: "c1", Date: "2025-03-14", Hours: 8}},
		Settings: core.Settings{MileageRate: 0.5},
	}
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DataFileName), data, 0o644))

	s, err := Open(dir, nil)
	require.NoError(t, err)
	got := s.Document()
	require.Len(t, got.Clients, 1)
	assert.Equal(t, "Acme", got.Clients[0].Name)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, 0.5, got.Settings.MileageRate)
}

func TestOpenZeroMileageRateDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DataFileName),
		[]byte(`{"clients":[],"entries":[]}`), 0o644))

	s, err := Open(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, core.DefaultMileageRate, s.Settings().MileageRate)
}

func TestOpenCorruptFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DataFileName), []byte("{not json"), 0o644))

	_, err := Open(dir, nil)
	require.Error(t, err)
	assert.True(t, IsStorageError(err))
}

func TestCreateClientPersists(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)

	c, err := s.CreateClient(core.Client{
		Name:       "  New Client  ",
		Rate:       80,
		Activities: []string{" Consulting ", ""},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "New Client", c.Name, "name is trimmed")
	assert.Equal(t, []string{"Consulting"}, c.Activities, "activities trimmed, blanks dropped")

	// Reopen from disk: the write must have gone through.
	s2, err := Open(dir, nil)
	require.NoError(t, err)
	got, ok := s2.Client(c.ID)
	require.True(t, ok)
	assert.Equal(t, "New Client", got.Name)
}

func TestCreateClientInvalid(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateClient(core.Client{Name: "", Rate: 80, Activities: []string{"x"}})
	assert.ErrorIs(t, err, core.ErrEmptyName)
}

func TestUpdateClientPreservesInvoiceText(t *testing.T) {
	s := newTestStore(t)
	c, err := s.CreateClient(core.Client{Name: "Acme", Rate: 50, Activities: []string{"Consulting"}})
	require.NoError(t, err)
	require.NoError(t, s.SetInvoiceText(c.ID, "bank details here"))

	c.Rate = 60
	updated, err := s.UpdateClient(c)
	require.NoError(t, err)
	assert.Equal(t, 60.0, updated.Rate)
	assert.Equal(t, "bank details here", updated.InvoiceText)
}

func TestUpdateClientUnknown(t *testing.T) {
	s := newTestStore(t)
	_, err := s.UpdateClient(core.Client{ID: "nope", Name: "X", Rate: 1, Activities: []string{"a"}})
	assert.ErrorIs(t, err, core.ErrUnknownClient)
}

func TestHideClient(t *testing.T) {
	s := newTestStore(t)
	c, err := s.CreateClient(core.Client{Name: "Acme", Rate: 50, Activities: []string{"Consulting"}})
	require.NoError(t, err)

	e, err := s.CreateEntry(core.Entry{ClientID: c.ID, Date: "2025-03-14", Hours: 4})
	require.NoError(t, err)

	require.NoError(t, s.HideClient(c.ID))

	for _, visible := range s.Clients(false) {
		assert.NotEqual(t, c.ID, visible.ID, "hidden client excluded from default listing")
	}

	var found bool
	for _, any := range s.Clients(true) {
		if any.ID == c.ID {
			found = true
			assert.True(t, any.Hidden)
		}
	}
	assert.True(t, found, "hidden client still present with includeHidden")

	entries := s.Entries(c.ID, "2025-03")
	require.Len(t, entries, 1, "entries survive hiding their client")
	assert.Equal(t, e.ID, entries[0].ID)

	assert.ErrorIs(t, s.HideClient("nope"), core.ErrUnknownClient)
}

func TestEntryLifecycle(t *testing.T) {
	s := newTestStore(t)
	c, err := s.CreateClient(core.Client{Name: "Acme", Rate: 50, Activities: []string{"Consulting"}})
	require.NoError(t, err)

	e, err := s.CreateEntry(core.Entry{ClientID: c.ID, Date: "2025-03-14", Hours: 7.5, Activity: "Consulting"})
	require.NoError(t, err)
	require.NotEmpty(t, e.ID)

	e.Hours = 8
	updated, err := s.UpdateEntry(e)
	require.NoError(t, err)
	assert.Equal(t, 8.0, updated.Hours)

	require.NoError(t, s.DeleteEntry(e.ID))
	assert.Empty(t, s.Entries(c.ID, "2025-03"))

	assert.ErrorIs(t, s.DeleteEntry(e.ID), ErrEntryNotFound)

	_, err = s.UpdateEntry(core.Entry{ID: "nope", ClientID: c.ID, Date: "2025-03-14", Hours: 1})
	assert.ErrorIs(t, err, ErrEntryNotFound)
}

func TestCreateEntryUnknownClient(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateEntry(core.Entry{ClientID: "ghost", Date: "2025-03-14", Hours: 1})
	assert.ErrorIs(t, err, core.ErrUnknownClient)
}

func TestAddEntriesBatch(t *testing.T) {
	s := newTestStore(t)

	n, err := s.AddEntries(nil)
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.AddEntries([]core.Entry{
		{ClientID: "safran", Date: "2025-03-01", Hours: 4},
		{ClientID: "safran", Date: "2025-03-02", Hours: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got := s.Entries("safran", "2025-03")
	require.Len(t, got, 2)
	for _, e := range got {
		assert.NotEmpty(t, e.ID, "batch entries without an id get one assigned")
	}
}

func TestDocumentReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	doc := s.Document()
	doc.Clients[0].Name = "mutated"
	doc.Clients[0].Activities[0] = "mutated"

	fresh := s.Document()
	assert.NotEqual(t, "mutated", fresh.Clients[0].Name)
	assert.NotEqual(t, "mutated", fresh.Clients[0].Activities[0])
}

func TestSavedFileIsPrettyPrinted(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)

	_, err = s.CreateEntry(core.Entry{ClientID: "safran", Date: "2025-03-14", Hours: 2})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, DataFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"clients\"", "document is written indented")

	_, statErr := os.Stat(filepath.Join(dir, DataFileName+".tmp"))
	assert.True(t, os.IsNotExist(statErr), "temp file is gone after a successful save")
}

func TestUpdateSettings(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.UpdateSettings(core.Settings{MileageRate: 0.6}))
	assert.Equal(t, 0.6, s.Settings().MileageRate)

	assert.ErrorIs(t, s.UpdateSettings(core.Settings{MileageRate: -1}), core.ErrNegativeMileage)
	assert.Equal(t, 0.6, s.Settings().MileageRate, "invalid update leaves settings untouched")
}

func TestSubscribeReceivesTickOnSave(t *testing.T) {
	s := newTestStore(t)
	ch, cancel := s.Subscribe()
	defer cancel()

	_, err := s.CreateEntry(core.Entry{ClientID: "safran", Date: "2025-03-14", Hours: 1})
	require.NoError(t, err)

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("no tick after a successful save")
	}

	cancel()
	_, err = s.CreateEntry(core.Entry{ClientID: "safran", Date: "2025-03-15", Hours: 1})
	require.NoError(t, err)
	select {
	case <-ch:
		t.Fatal("tick received after cancel")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir, nil)
	require.NoError(t, err)

	_, err = s.CreateEntry(core.Entry{ClientID: "safran", Date: "2025-03-14", Hours: 1})
	require.NoError(t, err)

	// Simulate an external edit of the data file.
	doc := s.Document()
	doc.Entries = nil
	data, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, DataFileName), data, 0o644))

	ch, cancel := s.Subscribe()
	defer cancel()
	require.NoError(t, s.Reload())
	assert.Empty(t, s.Entries("safran", "2025-03"))

	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("reload should notify subscribers")
	}
}
