package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/openharvest/harvester/internal/record"
)

// WriteCollection serializes records as a pretty-printed UTF-8 JSON array
// at path. Marshaling happens before the file is touched, so a fatal
// error never leaves a partially-written artifact behind.
func WriteCollection(path string, records []record.Dataset) error {
	if records == nil {
		records = []record.Dataset{}
	}
	payload, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o600); err != nil {
		return fmt.Errorf("write collection %s: %w", path, err)
	}
	return nil
}
