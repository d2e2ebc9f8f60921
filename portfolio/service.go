// server/portfolio/service.go
package portfolio

import (
	"encoding/json"
	"fmt"

	"github.com/ViniZap4/folio-server/domain"
	"github.com/ViniZap4/folio-server/filesystem"
	"github.com/ViniZap4/folio-server/schema"
)

// Service validates admin payloads per entity type before they reach the
// record store.
type Service struct {
	store *filesystem.RecordStore
}

func NewService(store *filesystem.RecordStore) *Service {
	return &Service{store: store}
}

// List returns the stored array for c as-is.
func (s *Service) List(c domain.Collection) []json.RawMessage {
	return s.store.Read(c)
}

// Replace swaps the whole collection for body, which must be a JSON array
// of valid records with positive, unique ids.
func (s *Service) Replace(c domain.Collection, body []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(body, &items); err != nil || items == nil {
		return domain.Invalid("Invalid data format. Expected an array of %s.", c)
	}

	records := make([]json.RawMessage, 0, len(items))
	seen := make(map[int]bool, len(items))
	for i, item := range items {
		rec, err := decode(c, item)
		if err != nil {
			return domain.Invalid("item %d: %s", i, domain.Message(err))
		}
		id := rec.RecordID()
		if id < 1 {
			return domain.Invalid("item %d: id must be a positive integer", i)
		}
		if seen[id] {
			return domain.Invalid("item %d: duplicate id %d", i, id)
		}
		seen[id] = true

		raw, err := json.Marshal(rec)
		if err != nil {
			return domain.Invalid("item %d: %v", i, err)
		}
		records = append(records, raw)
	}

	return s.store.Replace(c, records)
}

// Create appends body to c under the next free id and returns the stored
// record. Any id in body is ignored.
func (s *Service) Create(c domain.Collection, body []byte) (domain.Record, error) {
	rec, err := decode(c, body)
	if err != nil {
		return nil, err
	}

	err = s.store.Update(c, func(items []json.RawMessage) ([]json.RawMessage, error) {
		existing, err := decodeStored(c, items)
		if err != nil {
			return nil, err
		}
		rec.SetRecordID(domain.NextID(existing))

		raw, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}
		return append(items, raw), nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateItem replaces the record with the given id. The id in the path wins
// over any id in body.
func (s *Service) UpdateItem(c domain.Collection, id int, body []byte) (domain.Record, error) {
	rec, err := decode(c, body)
	if err != nil {
		return nil, err
	}
	rec.SetRecordID(id)

	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, domain.Invalid("%v", err)
	}

	err = s.store.Update(c, func(items []json.RawMessage) ([]json.RawMessage, error) {
		ids, err := storedIDs(items)
		if err != nil {
			return nil, err
		}
		for i, existing := range ids {
			if existing == id {
				items[i] = raw
				return items, nil
			}
		}
		return nil, domain.NotFound("%s record %d not found", c, id)
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteItem filters id out of c. Deleting an absent id succeeds.
func (s *Service) DeleteItem(c domain.Collection, id int) error {
	return s.store.Update(c, func(items []json.RawMessage) ([]json.RawMessage, error) {
		ids, err := storedIDs(items)
		if err != nil {
			return nil, err
		}
		kept := make([]json.RawMessage, 0, len(items))
		for i, item := range items {
			if ids[i] != id {
				kept = append(kept, item)
			}
		}
		return kept, nil
	})
}

func decode(c domain.Collection, raw json.RawMessage) (domain.Record, error) {
	if err := schema.Validate(c, raw); err != nil {
		return nil, err
	}
	rec := c.New()
	if err := json.Unmarshal(raw, rec); err != nil {
		return nil, domain.Invalid("invalid %s record: %v", c, err)
	}
	return rec, nil
}

// decodeStored reads records already on disk without schema checks; stored
// data may predate the schemas.
func decodeStored(c domain.Collection, items []json.RawMessage) ([]domain.Record, error) {
	out := make([]domain.Record, 0, len(items))
	for i, item := range items {
		rec := c.New()
		if err := json.Unmarshal(item, rec); err != nil {
			return nil, domain.Storage("failed to save "+string(c), fmt.Errorf("stored item %d: %w", i, err))
		}
		out = append(out, rec)
	}
	return out, nil
}

func storedIDs(items []json.RawMessage) ([]int, error) {
	ids := make([]int, len(items))
	for i, item := range items {
		var probe struct {
			ID int `json:"id"`
		}
		if err := json.Unmarshal(item, &probe); err != nil {
			return nil, domain.Storage("failed to read stored records", fmt.Errorf("stored item %d: %w", i, err))
		}
		ids[i] = probe.ID
	}
	return ids, nil
}
