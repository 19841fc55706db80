package archive

import (
	"strings"
	"testing"
)

func TestEmbeddedSchemaLoads(t *testing.T) {
	body, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(body), "CREATE TABLE IF NOT EXISTS investigations") {
		t.Fatalf("expected schema to define the investigations table")
	}
	if !strings.Contains(string(body), "investigation_artifacts") {
		t.Fatalf("expected schema to define the investigation_artifacts table")
	}
}
