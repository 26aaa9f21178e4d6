package engine

import (
	"encoding/json"
	"strings"
)

// stripMarker removes the completion marker's own output line from the
// accumulated stdout buffer and returns the remainder, which is the
// submitted statement's actual output. When the marker is absent (forced
// resolution paths) the whole buffer is returned trimmed.
func stripMarker(out, marker string) string {
	idx := strings.Index(out, marker)
	if idx < 0 {
		return strings.TrimSpace(out)
	}
	lineStart := strings.LastIndexByte(out[:idx], '\n') + 1
	return strings.TrimSpace(out[:lineStart])
}

// parseRows decodes one engine output document into rows. The document is
// normally a JSON array of records; a single bare record is accepted as a
// one-row result. Numbers are kept as json.Number so integer values survive
// undamaged. An empty payload is a valid empty result.
func parseRows(payload string) ([]map[string]any, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err == nil {
		return rows, nil
	}

	dec = json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	var row map[string]any
	if err := dec.Decode(&row); err != nil {
		return nil, err
	}
	return []map[string]any{row}, nil
}
