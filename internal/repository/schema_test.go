package repository

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
)

// Columns the repositories write via json.Marshal and scan via json.Unmarshal.
// They must stay JSONB: an array type would reject the JSON literal on write
// and hand Postgres array syntax to the decoder on read.
func TestSchemaJSONColumnsAreJSONB(t *testing.T) {
	schema, err := os.ReadFile(filepath.Join("..", "..", "migrations", "001_initial_schema.sql"))
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}

	columns := []string{
		"messages",
		"curated_sites",
		"knowledge_base_files",
		"config_json",
	}

	for _, col := range columns {
		t.Run(col, func(t *testing.T) {
			re := regexp.MustCompile(`(?m)^\s*` + col + `\s+JSONB\b`)
			if !re.Match(schema) {
				t.Errorf("column %s must be declared JSONB", col)
			}
		})
	}
}
