package cmd

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freight-sim/freight-sim/sim/trace"
)

const testScenarioYAML = `
name: cli-line
ports:
  - id: A
    berths: 2
  - id: B
    berths: 1
lanes:
  - from: A
    to: B
    distance: 5
fleets:
  - id: f1
    policy: eager
    vessels:
      - id: v1
        capacity: 100
        speed: 1
        start_port: A
demand:
  mode: scripted
  orders:
    - id: c1
      origin: A
      destination: B
      volume: 50
      available: 0
`

func writeTestScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testScenarioYAML), 0o644))
	return path
}

// execute runs the CLI with args, capturing stdout. The shared flag
// variables are reset first so one test's flags cannot leak into the
// next invocation.
func execute(t *testing.T, args ...string) string {
	t.Helper()
	outPath, emitDemandPath, demandPath, replayLogPath = "", "", "", ""
	runs = 1

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	rootCmd.SetArgs(args)
	execErr := rootCmd.Execute()

	_ = w.Close()
	os.Stdout = old
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	require.NoError(t, execErr)
	return buf.String()
}

func TestRunCommand_PrintsSummaryAndWritesLog(t *testing.T) {
	// GIVEN a scenario file and a log output path
	scenario := writeTestScenario(t)
	logPath := filepath.Join(t.TempDir(), "run.jsonl")

	// WHEN the run command executes
	out := execute(t, "run",
		"--scenario", scenario,
		"--seed", "42",
		"--horizon", "100",
		"--out", logPath,
	)

	// THEN the summary reaches stdout and the log file parses back
	assert.Contains(t, out, "Simulation Summary")
	assert.Contains(t, out, "Delivered")

	f, err := os.Open(logPath)
	require.NoError(t, err)
	defer f.Close()
	l, err := trace.ReadJSONL(f)
	require.NoError(t, err)
	assert.NotEmpty(t, l.Records)

	delivered := 0
	for _, rec := range l.Records {
		if rec.Outcome == trace.OutcomeDelivered {
			delivered++
		}
	}
	assert.Equal(t, 1, delivered)
}

func TestRunCommand_MonteCarloBatch(t *testing.T) {
	scenario := writeTestScenario(t)

	out := execute(t, "run",
		"--scenario", scenario,
		"--seed", "42",
		"--horizon", "100",
		"--runs", "3",
	)

	assert.Contains(t, out, "3 replications")
	assert.Contains(t, out, "Simulation Summary")
}

func TestReplayCommand_ReconstructsSummary(t *testing.T) {
	// GIVEN a recorded run log
	scenario := writeTestScenario(t)
	logPath := filepath.Join(t.TempDir(), "run.jsonl")
	execute(t, "run",
		"--scenario", scenario,
		"--seed", "42",
		"--horizon", "100",
		"--out", logPath,
		"--runs", "1",
	)

	// WHEN the log is replayed
	out := execute(t, "replay",
		"--scenario", scenario,
		"--seed", "42",
		"--horizon", "100",
		"--run-log", logPath,
	)

	// THEN the replayed summary matches the recorded outcomes
	assert.Contains(t, out, "Simulation Summary")
	assert.Contains(t, out, "Delivered            : 1 cargoes")
}

func TestRunCommand_EmitAndReplayDemand(t *testing.T) {
	// GIVEN a run that records its generated demand
	scenario := writeTestScenario(t)
	demandPath := filepath.Join(t.TempDir(), "demand.jsonl")
	first := execute(t, "run",
		"--scenario", scenario,
		"--seed", "42",
		"--horizon", "100",
		"--emit-demand", demandPath,
	)

	// WHEN the demand file is replayed
	second := execute(t, "run",
		"--scenario", scenario,
		"--seed", "42",
		"--horizon", "100",
		"--demand-file", demandPath,
	)

	// THEN both runs report the same outcomes
	assert.Contains(t, first, "Simulation Summary")
	assert.Contains(t, second, "Delivered            : 1 cargoes")
}
