package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSuggest_Defaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "none.toml")

	out, err := execute(t, "suggest", "--config", missing, "--glucose", "210", "--carbs", "30")
	require.NoError(t, err)
	assert.Contains(t, out, "carb ratio:     10 g/U")
	assert.Contains(t, out, "suggestion:     5.0 U")
}

func TestSuggest_ConfigAndFlagOverride(t *testing.T) {
	cfg := writeFile(t, "config.toml", "[dosing]\ncarb_ratio = 15\nglucose_ratio = \"0\"\n")

	out, err := execute(t, "suggest", "--config", cfg, "-g", "110", "-c", "45")
	require.NoError(t, err)
	assert.Contains(t, out, "carb ratio:     15 g/U")
	// invalid file value falls back to the default
	assert.Contains(t, out, "glucose ratio:  50 mg/dL/U")
	assert.Contains(t, out, "suggestion:     3.0 U")

	out, err = execute(t, "suggest", "--config", cfg, "-g", "110", "-c", "45", "--carb-ratio", "9")
	require.NoError(t, err)
	assert.Contains(t, out, "suggestion:     5.0 U")
}

func TestSuggest_NoCorrection(t *testing.T) {
	out, err := execute(t, "suggest", "--config", filepath.Join(t.TempDir(), "x.toml"), "-g", "90")
	require.NoError(t, err)
	assert.Contains(t, out, "no correction needed")
}

func TestSuggest_Errors(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "x.toml")

	_, err := execute(t, "suggest", "--config", cfg)
	assert.Error(t, err)

	_, err = execute(t, "suggest", "--config", cfg, "-g", "abc")
	assert.Error(t, err)

	_, err = execute(t, "suggest", "--config", cfg, "-g", "150", "-c", "-5")
	assert.Error(t, err)
}

func TestTrend(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	entries := writeFile(t, "entries.json", `[
		{"timestamp": `+itoa(day.Add(8*time.Hour).UnixMilli())+`, "bloodGlucose": 100, "carbsGrams": 30},
		{"timestamp": `+itoa(day.Add(12*time.Hour).UnixMilli())+`, "bloodGlucose": 201, "insulinUnits": 4},
		{"timestamp": `+itoa(day.Add(-time.Hour).UnixMilli())+`, "bloodGlucose": 300}
	]`)
	cfg := filepath.Join(t.TempDir(), "x.toml")

	out, err := execute(t, "trend", "--config", cfg, "-f", entries, "--day", "2024-03-01")
	require.NoError(t, err)
	assert.Contains(t, out, "readings: 2")
	assert.Contains(t, out, "average:  151 mg/dL")
	assert.Contains(t, out, "min/max:  100 / 201 mg/dL")
	assert.Contains(t, out, "trend:    ▁█")

	// one hour east the 23:00 reading moves into March 1st
	out, err = execute(t, "trend", "--config", cfg, "-f", entries, "--day", "2024-03-01", "--tz", "Europe/Berlin")
	require.NoError(t, err)
	assert.Contains(t, out, "readings: 3")

	out, err = execute(t, "trend", "--config", cfg, "-f", entries, "--day", "2024-02-01")
	require.NoError(t, err)
	assert.Contains(t, out, "no readings")
}

func TestTrend_Errors(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "x.toml")
	bad := writeFile(t, "bad.json", "{not json")

	_, err := execute(t, "trend", "--config", cfg, "-f", bad, "--day", "2024-03-01")
	assert.Error(t, err)

	_, err = execute(t, "trend", "--config", cfg, "-f", bad, "--day", "March 1")
	assert.Error(t, err)

	_, err = execute(t, "trend", "--config", cfg, "-f", bad, "--tz", "Mars/Olympus")
	assert.Error(t, err)
}

func TestConfig_Init(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	out, err := execute(t, "config", "--config", path, "--init")
	require.NoError(t, err)
	assert.FileExists(t, path)
	assert.Contains(t, out, "carb ratio:     10 g/U")
	assert.Contains(t, out, "timezone:       UTC")

	require.NoError(t, os.WriteFile(path, []byte("[dosing]\ncarb_ratio = 12.5\ntimezone = \"Asia/Tokyo\"\n"), 0o644))
	out, err = execute(t, "config", "--config", path, "--init")
	require.NoError(t, err)
	assert.Contains(t, out, "carb ratio:     12.5 g/U")
	assert.Contains(t, out, "timezone:       Asia/Tokyo")
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
