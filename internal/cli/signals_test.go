package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/example/levelup/internal/core/journey"
)

func TestPrintSignal(t *testing.T) {
	catalog, err := journey.ParseSignalCatalog([]byte(`{"signals":[
		{"id":"ownership","name":"Ownership","description":"Drives outcomes end to end","roles":["ic","em"]},
		{"id":"craft","name":"Craft","roles":["ic"]}
	]}`))
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	if err := printSignal(&out, catalog, "ownership"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Ownership (ownership)", "Drives outcomes end to end", "roles: ic, em"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q: %s", want, out.String())
		}
	}

	err = printSignal(&out, catalog, "telepathy")
	if err == nil {
		t.Fatal("expected error for unknown signal")
	}
	if !strings.Contains(err.Error(), "known: ownership, craft") {
		t.Errorf("error should list known signals: %v", err)
	}
}
