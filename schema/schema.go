// server/schema/schema.go
package schema

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/ViniZap4/folio-server/domain"
)

//go:embed schemas/*.json
var files embed.FS

var (
	compileOnce sync.Once
	compiled    map[domain.Collection]*gojsonschema.Schema
	compileErr  error
)

func load() (map[domain.Collection]*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiled = make(map[domain.Collection]*gojsonschema.Schema, len(domain.Collections))
		for _, c := range domain.Collections {
			data, err := files.ReadFile("schemas/" + string(c) + ".json")
			if err != nil {
				compileErr = fmt.Errorf("schema for %s: %w", c, err)
				return
			}
			s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(data))
			if err != nil {
				compileErr = fmt.Errorf("compile schema for %s: %w", c, err)
				return
			}
			compiled[c] = s
		}
	})
	return compiled, compileErr
}

// Check compiles every embedded schema; main calls it at startup.
func Check() error {
	_, err := load()
	return err
}

// Validate checks a single record of collection c against its schema.
func Validate(c domain.Collection, record json.RawMessage) error {
	schemas, err := load()
	if err != nil {
		return err
	}
	s, ok := schemas[c]
	if !ok {
		return domain.NotFound("unknown collection %q", c)
	}

	res, err := s.Validate(gojsonschema.NewBytesLoader(record))
	if err != nil {
		return domain.Invalid("invalid %s record: %v", c, err)
	}
	if res.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return domain.Invalid("invalid %s record: %s", c, strings.Join(msgs, "; "))
}
