// Package harness runs launch scenarios inside tests and compares
// their traces against golden files.
package harness

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/tapwake/tapwake/internal/scenario"
)

// Run executes a scenario against a temp-file store and returns its
// trace, failing the test on execution errors.
func Run(t *testing.T, sc scenario.Scenario) *scenario.Result {
	t.Helper()

	res, err := scenario.Exec(sc, filepath.Join(t.TempDir(), sc.Name+".db"))
	if err != nil {
		t.Fatalf("scenario %q: %v", sc.Name, err)
	}
	return res
}

// RunWithGolden executes a scenario and compares the trace against a
// golden file at testdata/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, sc scenario.Scenario) {
	t.Helper()

	res := Run(t, sc)

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		t.Fatalf("scenario %q: marshal trace: %v", sc.Name, err)
	}
	data = append(data, '\n')

	g := goldie.New(t)
	g.Assert(t, sc.Name, data)
}
