package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/pixil98/go-testutil"
)

// mockRecord is a minimal document value for testing DocumentStore
type mockRecord struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func writeDocument(t *testing.T, path string, doc map[string]mockRecord) {
	t.Helper()

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("failed to marshal test document: %v", err)
	}
	err = os.WriteFile(path, data, 0644)
	if err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
}

func TestOpenDocumentStore_MaterializesTemplate(t *testing.T) {
	tests := map[string]struct {
		template []byte
		expCount int
	}{
		"nil template creates empty document": {
			template: nil,
			expCount: 0,
		},
		"template content is used": {
			template: []byte(`{"a":{"name":"A","value":1}}`),
			expCount: 1,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "doc.json")

			store, err := OpenDocumentStore[mockRecord](path, tt.template)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			_, err = os.Stat(path)
			if err != nil {
				t.Fatalf("expected file to be created: %v", err)
			}
			testutil.AssertEqual(t, "record count", len(store.GetAll()), tt.expCount)
		})
	}
}

func TestOpenDocumentStore_ExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	writeDocument(t, path, map[string]mockRecord{
		"first":  {Name: "First", Value: 1},
		"second": {Name: "Second", Value: 2},
	})

	store, err := OpenDocumentStore[mockRecord](path, []byte(`{"ignored":{}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	testutil.AssertEqual(t, "record count", len(store.GetAll()), 2)

	first, ok := store.Get("first")
	testutil.AssertEqual(t, "found", ok, true)
	testutil.AssertEqual(t, "name", first.Name, "First")
	testutil.AssertEqual(t, "value", first.Value, 1)
}

func TestOpenDocumentStore_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	err := os.WriteFile(path, []byte(`{invalid json`), 0644)
	if err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	_, err = OpenDocumentStore[mockRecord](path, nil)
	testutil.AssertErrorContains(t, err, "unmarshalling doc.json")
}

func TestOpenDocumentStore_EmptyArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	err := os.WriteFile(path, []byte(" []\n"), 0644)
	if err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	store, err := OpenDocumentStore[mockRecord](path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "record count", len(store.GetAll()), 0)

	store.Set("first", mockRecord{Name: "First", Value: 1})
	err = store.Save()
	if err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}
}

func TestDocumentStore_GetOr(t *testing.T) {
	store, err := OpenDocumentStore[mockRecord](filepath.Join(t.TempDir(), "doc.json"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store.Set("present", mockRecord{Name: "Present"})

	tests := map[string]struct {
		key     string
		expName string
	}{
		"present key": {
			key:     "present",
			expName: "Present",
		},
		"absent key returns default": {
			key:     "absent",
			expName: "Default",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := store.GetOr(tt.key, mockRecord{Name: "Default"})
			testutil.AssertEqual(t, "name", got.Name, tt.expName)
		})
	}
}

func TestDocumentStore_Remove(t *testing.T) {
	store, err := OpenDocumentStore[mockRecord](filepath.Join(t.TempDir(), "doc.json"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store.Set("one", mockRecord{Name: "One"})

	testutil.AssertEqual(t, "existing removed", store.Remove("one"), true)
	testutil.AssertEqual(t, "missing removed", store.Remove("one"), false)
	testutil.AssertEqual(t, "record count", len(store.GetAll()), 0)
}

func TestDocumentStore_GetAllReturnsCopy(t *testing.T) {
	store, err := OpenDocumentStore[mockRecord](filepath.Join(t.TempDir(), "doc.json"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store.Set("one", mockRecord{Name: "One"})
	store.Set("two", mockRecord{Name: "Two"})

	all := store.GetAll()
	delete(all, "one")

	testutil.AssertEqual(t, "store count", len(store.GetAll()), 2)
}

func TestDocumentStore_Keys(t *testing.T) {
	store, err := OpenDocumentStore[mockRecord](filepath.Join(t.TempDir(), "doc.json"), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store.Set("zulu", mockRecord{})
	store.Set("alpha", mockRecord{})
	store.Set("mike", mockRecord{})

	keys := store.Keys()

	testutil.AssertEqual(t, "key count", len(keys), 3)
	testutil.AssertEqual(t, "first key", keys[0], "alpha")
	testutil.AssertEqual(t, "second key", keys[1], "mike")
	testutil.AssertEqual(t, "third key", keys[2], "zulu")
}

func TestDocumentStore_SaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	store, err := OpenDocumentStore[mockRecord](path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store.Set("item", mockRecord{Name: "Item", Value: 100})
	err = store.Save()
	if err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}

	reopened, err := OpenDocumentStore[mockRecord](path, nil)
	if err != nil {
		t.Fatalf("unexpected error reopening: %v", err)
	}

	item, ok := reopened.Get("item")
	testutil.AssertEqual(t, "found", ok, true)
	testutil.AssertEqual(t, "name", item.Name, "Item")
	testutil.AssertEqual(t, "value", item.Value, 100)

	_, err = os.Stat(path + ".tmp")
	testutil.AssertEqual(t, "temp file removed", os.IsNotExist(err), true)
}

func TestDocumentStore_SaveFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "doc.json")
	store, err := OpenDocumentStore[mockRecord](path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// A directory in place of the temp file makes the write fail
	err = os.Mkdir(path+".tmp", 0755)
	if err != nil {
		t.Fatalf("failed to create blocking dir: %v", err)
	}

	store.Set("item", mockRecord{Name: "Item"})
	err = store.Save()
	testutil.AssertErrorContains(t, err, "writing temp file")
}

func TestDocumentStore_Reload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	store, err := OpenDocumentStore[mockRecord](path, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	store.Set("own", mockRecord{Name: "Own"})
	err = store.Save()
	if err != nil {
		t.Fatalf("unexpected error saving: %v", err)
	}

	changed, err := store.Reload()
	if err != nil {
		t.Fatalf("unexpected error reloading: %v", err)
	}
	testutil.AssertEqual(t, "changed after own save", changed, false)

	writeDocument(t, path, map[string]mockRecord{"external": {Name: "External"}})

	changed, err = store.Reload()
	if err != nil {
		t.Fatalf("unexpected error reloading: %v", err)
	}
	testutil.AssertEqual(t, "changed after external edit", changed, true)

	_, ok := store.Get("own")
	testutil.AssertEqual(t, "own record dropped", ok, false)
	_, ok = store.Get("external")
	testutil.AssertEqual(t, "external record loaded", ok, true)
}

func TestTemplate(t *testing.T) {
	tests := map[string]struct {
		name   string
		expNil bool
	}{
		"removable texts":   {name: "ft.json"},
		"unremovable texts": {name: "uft.json"},
		"unknown file":      {name: "nope.json", expNil: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := Template(tt.name)
			testutil.AssertEqual(t, "nil", got == nil, tt.expNil)
		})
	}
}
