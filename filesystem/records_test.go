package filesystem

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ViniZap4/folio-server/domain"
)

func raws(t *testing.T, items ...string) []json.RawMessage {
	t.Helper()
	out := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		require.True(t, json.Valid([]byte(item)), item)
		out = append(out, json.RawMessage(item))
	}
	return out
}

func decodeAll(t *testing.T, items []json.RawMessage) []any {
	t.Helper()
	out := make([]any, 0, len(items))
	for _, item := range items {
		var v any
		require.NoError(t, json.Unmarshal(item, &v))
		out = append(out, v)
	}
	return out
}

func TestRecordStoreReadMissingDocument(t *testing.T) {
	store := NewRecordStore(NewMemStorage())

	items := store.Read(domain.Projects)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestRecordStoreReadCorruptDocumentIsEmpty(t *testing.T) {
	mem := NewMemStorage()
	require.NoError(t, mem.WriteAtomic("skills.json", []byte(`{"skills": [`)))
	store := NewRecordStore(mem)

	assert.Empty(t, store.Read(domain.Skills))
}

func TestRecordStoreReplaceRoundTrip(t *testing.T) {
	store := NewRecordStore(NewDirStorage(t.TempDir()))
	want := raws(t,
		`{"id":1,"title":"folio","description":"this site","link":"https://example.com","technologies":["go","fiber"]}`,
		`{"id":4,"title":"lumi","description":"notes","link":"","technologies":[]}`,
	)

	require.NoError(t, store.Replace(domain.Projects, want))

	got := store.Read(domain.Projects)
	if diff := cmp.Diff(decodeAll(t, want), decodeAll(t, got)); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordStoreReplaceKeepsSiblings(t *testing.T) {
	mem := NewMemStorage()
	require.NoError(t, mem.WriteAtomic("education.json", []byte(`{
  "education": [{"id": 1, "institution": "MIT"}],
  "certificates": [{"id": 7, "name": "CKA"}],
  "meta": {"owner": "me"}
}`)))
	store := NewRecordStore(mem)

	require.NoError(t, store.Replace(domain.Education, raws(t, `{"id":2,"institution":"ETH"}`)))
	certs := decodeAll(t, store.Read(domain.Certificates))
	assert.Equal(t, []any{map[string]any{"id": float64(7), "name": "CKA"}}, certs)

	require.NoError(t, store.Replace(domain.Certificates, raws(t)))
	edu := decodeAll(t, store.Read(domain.Education))
	assert.Equal(t, []any{map[string]any{"id": float64(2), "institution": "ETH"}}, edu)

	data, err := mem.Read("education.json")
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, map[string]any{"owner": "me"}, doc["meta"])
	assert.Equal(t, []any{}, doc["certificates"])
}

func TestRecordStoreWritesTwoSpaceIndent(t *testing.T) {
	mem := NewMemStorage()
	store := NewRecordStore(mem)

	require.NoError(t, store.Replace(domain.Skills, raws(t, `{"id":1,"name":"Go","level":90,"category":"lang"}`)))

	data, err := mem.Read("skills.json")
	require.NoError(t, err)
	assert.Equal(t, `{
  "skills": [
    {
      "id": 1,
      "name": "Go",
      "level": 90,
      "category": "lang"
    }
  ]
}`, string(data))
}

func TestRecordStoreReplaceRefusesCorruptDocument(t *testing.T) {
	mem := NewMemStorage()
	require.NoError(t, mem.WriteAtomic("projects.json", []byte(`not json`)))
	store := NewRecordStore(mem)

	err := store.Replace(domain.Projects, raws(t, `{"id":1}`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrStorage))
	assert.Equal(t, "failed to save projects", domain.Message(err))

	data, _ := mem.Read("projects.json")
	assert.Equal(t, "not json", string(data))
}

func TestRecordStoreUpdateAbortsOnError(t *testing.T) {
	mem := NewMemStorage()
	store := NewRecordStore(mem)
	boom := domain.Invalid("nope")

	err := store.Update(domain.Projects, func([]json.RawMessage) ([]json.RawMessage, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)

	ok, _ := mem.Exists("projects.json")
	assert.False(t, ok)
}

func TestRecordStoreConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	store := NewRecordStore(NewMemStorage())

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := store.Update(domain.Skills, func(items []json.RawMessage) ([]json.RawMessage, error) {
				return append(items, json.RawMessage(`{"id":0}`)), nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, store.Read(domain.Skills), 20)
}
