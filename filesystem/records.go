// server/filesystem/records.go
package filesystem

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/rs/zerolog/log"

	"github.com/ViniZap4/folio-server/domain"
)

// RecordStore keeps each portfolio collection as a named array inside a
// JSON document. Sibling keys of a document survive every write.
type RecordStore struct {
	storage Storage
	locks   *KeyedMutex
}

func NewRecordStore(storage Storage) *RecordStore {
	return &RecordStore{storage: storage, locks: NewKeyedMutex()}
}

// Read returns the array stored under c. A missing document, a missing key
// or an unparsable document all read as an empty collection.
func (s *RecordStore) Read(c domain.Collection) []json.RawMessage {
	doc, err := s.load(c.Document())
	if err != nil {
		log.Warn().Err(err).Str("collection", string(c)).Msg("unreadable collection document, serving empty collection")
		return []json.RawMessage{}
	}
	return itemsOf(doc, c)
}

// Replace swaps the array under c for items and rewrites the document.
func (s *RecordStore) Replace(c domain.Collection, items []json.RawMessage) error {
	return s.Update(c, func([]json.RawMessage) ([]json.RawMessage, error) {
		return items, nil
	})
}

// Update runs fn on the current array of c and persists its result while
// holding the document lock. An error from fn aborts without writing.
func (s *RecordStore) Update(c domain.Collection, fn func(items []json.RawMessage) ([]json.RawMessage, error)) error {
	key := c.Document()
	unlock := s.locks.Lock(key)
	defer unlock()

	doc, err := s.load(key)
	if err != nil {
		log.Error().Err(err).Str("collection", string(c)).Msg("failed to read collection document")
		return domain.Storage(fmt.Sprintf("failed to save %s", c), err)
	}

	items, err := fn(itemsOf(doc, c))
	if err != nil {
		return err
	}
	if items == nil {
		items = []json.RawMessage{}
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return domain.Storage(fmt.Sprintf("failed to save %s", c), err)
	}
	doc[string(c)] = raw

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return domain.Storage(fmt.Sprintf("failed to save %s", c), err)
	}
	if err := s.storage.WriteAtomic(key, out); err != nil {
		log.Error().Err(err).Str("collection", string(c)).Msg("failed to write collection document")
		return domain.Storage(fmt.Sprintf("failed to save %s", c), err)
	}
	return nil
}

// load parses a whole document. A missing document is empty; a corrupt one
// is an error so writers never overwrite data they could not read.
func (s *RecordStore) load(key string) (map[string]json.RawMessage, error) {
	data, err := s.storage.Read(key)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}

	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", key, err)
	}
	if doc == nil {
		doc = map[string]json.RawMessage{}
	}
	return doc, nil
}

func itemsOf(doc map[string]json.RawMessage, c domain.Collection) []json.RawMessage {
	raw, ok := doc[string(c)]
	if !ok {
		return []json.RawMessage{}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		log.Warn().Err(err).Str("collection", string(c)).Msg("collection key is not an array, serving empty collection")
		return []json.RawMessage{}
	}
	if items == nil {
		items = []json.RawMessage{}
	}
	return items
}
