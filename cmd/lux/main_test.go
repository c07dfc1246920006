package main

import (
	"bytes"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const carsCSV = `name,cylinders,mpg,imported
chevelle,8,18.0,false
skylark,8,15.0,false
satellite,8,18.5,false
rebel,8,16.0,false
torino,8,17.0,false
corolla,4,31.0,true
civic,4,33.5,true
pinto,4,25.0,false
maverick,6,21.0,false
hornet,6,19.5,false
beetle,4,26.0,true
dart,6,22.0,false
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

// runInProcess executes the CLI with args and returns stdout, stderr and the
// exit code.
func runInProcess(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, &out, &errOut)
	return out.String(), errOut.String(), code
}

func TestInfer_TextReport(t *testing.T) {
	t.Parallel()

	csvPath := writeFile(t, t.TempDir(), "cars.csv", carsCSV)

	stdout, stderr, code := runInProcess(t, "infer", "--log-level", "error", csvPath)
	require.Equal(t, 0, code, "stderr: %s", stderr)

	assert.Contains(t, stdout, "table=cars")
	assert.Contains(t, stdout, "rows=12")

	lines := map[string]string{}
	for _, l := range strings.Split(stdout, "\n") {
		fields := strings.Fields(l)
		if len(fields) == 5 {
			lines[fields[0]] = strings.Join(fields[3:], " ")
		}
	}
	assert.Equal(t, "quantitative measure", lines["mpg"])
	assert.Equal(t, "nominal dimension", lines["cylinders"])
	assert.Equal(t, "nominal dimension", lines["name"])
	assert.Equal(t, "- -", lines["imported"])
	assert.Contains(t, stdout, `unclassified column "imported"`)
}

func TestInfer_JSONWithSchemaAndIntent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	csvPath := writeFile(t, dir, "cars.csv", carsCSV)
	schemaPath := writeFile(t, dir, "schema.json",
		`[{"cylinders": {"dataType": "quantitative"}}, {"imported": {"dataType": "nominal"}}]`)

	stdout, stderr, code := runInProcess(t,
		"infer", "--log-level", "error",
		"--schema", schemaPath,
		"--format", "json",
		"--intent", "?:measure",
		"--intent", "name",
		csvPath,
	)
	require.Equal(t, 0, code, "stderr: %s", stderr)

	var got struct {
		Table           string              `json:"table"`
		DataTypeLookup  map[string]string   `json:"dataTypeLookup"`
		DataModel       map[string][]string `json:"dataModel"`
		ResolvedContext [][]string          `json:"resolvedContext"`
		Errors          []string            `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))

	assert.Equal(t, "cars", got.Table)
	assert.Equal(t, "quantitative", got.DataTypeLookup["cylinders"])
	assert.Equal(t, "nominal", got.DataTypeLookup["imported"])
	assert.Equal(t, []string{"cylinders", "mpg"}, got.DataModel["measure"])
	assert.Equal(t, [][]string{{"cylinders", "mpg"}, {"name"}}, got.ResolvedContext)
	assert.Empty(t, got.Errors)
}

func TestInfer_ThresholdFlag(t *testing.T) {
	t.Parallel()

	csvPath := writeFile(t, t.TempDir(), "cars.csv", carsCSV)

	stdout, stderr, code := runInProcess(t,
		"infer", "--log-level", "error", "--format", "json", "--threshold", "2", csvPath)
	require.Equal(t, 0, code, "stderr: %s", stderr)

	var got struct {
		DataTypeLookup map[string]string `json:"dataTypeLookup"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, "quantitative", got.DataTypeLookup["cylinders"])
}

func TestInfer_TextContextAndCombinations(t *testing.T) {
	t.Parallel()

	csvPath := writeFile(t, t.TempDir(), "cars.csv", carsCSV)

	stdout, stderr, code := runInProcess(t,
		"infer", "--log-level", "error", "--intent", "?:dimension", "--intent", "mpg", csvPath)
	require.Equal(t, 0, code, "stderr: %s", stderr)

	assert.Contains(t, stdout, "context:")
	assert.Contains(t, stdout, "combinations: 2")
	assert.Contains(t, stdout, "  name, mpg")
	assert.Contains(t, stdout, "  cylinders, mpg")
}

func TestRun_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	csvPath := writeFile(t, dir, "cars.csv", carsCSV)

	tests := []struct {
		name      string
		args      []string
		wantInErr string
	}{
		{
			name:      "bad_intent",
			args:      []string{"infer", "--intent", "?:sideways", csvPath},
			wantInErr: "--intent",
		},
		{
			name:      "unknown_output_format",
			args:      []string{"infer", "--format", "yaml", csvPath},
			wantInErr: "output.format",
		},
		{
			name:      "missing_file",
			args:      []string{"infer", filepath.Join(dir, "nope.csv")},
			wantInErr: "nope.csv",
		},
		{
			name:      "unguessable_kind",
			args:      []string{"infer", filepath.Join(dir, "data.bin")},
			wantInErr: "cannot guess kind",
		},
		{
			name:      "database_without_query",
			args:      []string{"infer", "--kind", "sqlite", "--dsn", ":memory:"},
			wantInErr: "source.query",
		},
		{
			name:      "too_many_args",
			args:      []string{"infer", csvPath, csvPath},
			wantInErr: "accepts at most 1 arg",
		},
		{
			name:      "missing_schema",
			args:      []string{"infer", "--schema", filepath.Join(dir, "none.json"), csvPath},
			wantInErr: "read schema",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			stdout, stderr, code := runInProcess(t, tt.args...)
			assert.Equal(t, 1, code)
			assert.Empty(t, stdout)
			assert.Contains(t, stderr, tt.wantInErr)
		})
	}
}

func TestInfer_SQLite(t *testing.T) {
	t.Parallel()

	stdout, stderr, code := runInProcess(t,
		"infer", "--log-level", "error",
		"--kind", "sqlite", "--dsn", ":memory:",
		"--query", "SELECT 1 AS id, 'a' AS label UNION ALL SELECT 2, 'b'",
		"--name", "pairs",
	)
	require.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Contains(t, stdout, "table=pairs")
	assert.Contains(t, stdout, "rows=2")
}

func TestValidateAndVersion(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	good := writeFile(t, dir, "lux.yaml", "inference:\n  nominal_cardinality: 5\noutput:\n  format: json\n")
	bad := writeFile(t, dir, "bad.yaml", "inference:\n  nominal_cardinality: 0\n")

	stdout, _, code := runInProcess(t, "validate", "--config", good)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "configuration is valid")

	_, stderr, code := runInProcess(t, "validate", "--config", bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "error: inference.nominal_cardinality")
	assert.Contains(t, stderr, "configuration is invalid")

	stdout, _, code = runInProcess(t, "version")
	assert.Equal(t, 0, code)
	assert.True(t, strings.HasPrefix(stdout, "lux "+version))
}

// TestHelperProcess is a subprocess entrypoint used by tests.
//
// The parent test runs the current test binary with
//
//	-test.run=TestHelperProcess
//
// and sets GO_WANT_HELPER_PROCESS=1. Arguments after a literal "--" are the
// CLI arguments.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	i := 0
	for ; i < len(args); i++ {
		if args[i] == "--" {
			break
		}
	}
	if i < len(args) {
		os.Args = append([]string{args[0]}, args[i+1:]...)
	} else {
		os.Args = []string{args[0]}
	}

	main()
	os.Exit(0)
}

// runCmd executes main() in a subprocess and returns stdout, stderr and the
// exit code.
func runCmd(t *testing.T, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	cmdArgs := append([]string{"-test.run=TestHelperProcess", "--"}, args...)
	cmd := exec.Command(os.Args[0], cmdArgs...)
	cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	if err == nil {
		return outBuf.String(), errBuf.String(), 0
	}
	if ee, ok := err.(*exec.ExitError); ok {
		return outBuf.String(), errBuf.String(), ee.ExitCode()
	}
	t.Fatalf("unexpected run error: %T: %v", err, err)
	return "", "", 1
}

func TestMain_StrictExitCode(t *testing.T) {
	t.Parallel()

	csvPath := writeFile(t, t.TempDir(), "cars.csv", carsCSV)

	stdout, stderr, code := runCmd(t, "infer", "--log-level", "error", csvPath)
	assert.Equal(t, 0, code, "stderr: %s", stderr)
	assert.Contains(t, stdout, "metadata report:")

	stdout, stderr, code = runCmd(t, "infer", "--log-level", "error", "--strict", csvPath)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, `unclassified column "imported"`)
	assert.NotContains(t, stderr, "lux: metadata has errors")
}

func TestMain_EnvOverride(t *testing.T) {
	t.Parallel()

	csvPath := writeFile(t, t.TempDir(), "cars.csv", carsCSV)

	cmd := exec.Command(os.Args[0], "-test.run=TestHelperProcess", "--", "infer", csvPath)
	cmd.Env = append(os.Environ(),
		"GO_WANT_HELPER_PROCESS=1",
		"LUX_OUTPUT_FORMAT=json",
		"LUX_LOG_LEVEL=error",
	)
	var out bytes.Buffer
	cmd.Stdout = &out
	require.NoError(t, cmd.Run())

	var got map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "cars", got["table"])
}
