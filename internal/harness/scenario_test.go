package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/task_lifecycle.yaml")
	require.NoError(t, err)
	assert.Equal(t, "task_lifecycle", s.Name)
	assert.Equal(t, "lifecycle-run", s.RunToken)
	assert.Equal(t, filepath.Join("testdata", "scenarios", "..", "models"), s.Models)
	require.Len(t, s.Steps, 3)
	assert.Equal(t, OpCreate, s.Steps[0].Op)
	require.NotNil(t, s.Steps[0].Expect)
	assert.Equal(t, int64(1), s.Steps[0].Expect.ID)
	require.Len(t, s.Assertions, 3)
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario("testdata/scenarios/nope.yaml")
	require.Error(t, err)
}

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "unknown field"
models: models
step:
  - op: create
    model: Task
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse scenario")
}

func TestLoadScenarioValidation(t *testing.T) {
	modelsDir := t.TempDir()

	cases := []struct {
		name string
		body string
		want string
	}{
		{
			"missing name",
			"description: d\nmodels: " + modelsDir + "\nsteps:\n  - op: advance\n    duration: 1s\n",
			"name is required",
		},
		{
			"missing steps",
			"name: n\ndescription: d\nmodels: " + modelsDir + "\n",
			"steps list is required",
		},
		{
			"models dir missing",
			"name: n\ndescription: d\nmodels: " + modelsDir + "/nope\nsteps:\n  - op: advance\n    duration: 1s\n",
			"models directory not found",
		},
		{
			"create without model",
			"name: n\ndescription: d\nmodels: " + modelsDir + "\nsteps:\n  - op: create\n",
			"model is required for create",
		},
		{
			"update without attrs",
			"name: n\ndescription: d\nmodels: " + modelsDir + "\nsteps:\n  - op: update\n    model: Task\n    id: 1\n",
			"attrs is required for update",
		},
		{
			"advance with bad duration",
			"name: n\ndescription: d\nmodels: " + modelsDir + "\nsteps:\n  - op: advance\n    duration: soon\n",
			"invalid duration",
		},
		{
			"unknown op",
			"name: n\ndescription: d\nmodels: " + modelsDir + "\nsteps:\n  - op: destroy\n    model: Task\n",
			"unknown op",
		},
		{
			"unknown assertion type",
			"name: n\ndescription: d\nmodels: " + modelsDir + "\nsteps:\n  - op: advance\n    duration: 1s\nassertions:\n  - type: state_query\n",
			"unknown assertion type",
		},
		{
			"trace_count without op",
			"name: n\ndescription: d\nmodels: " + modelsDir + "\nsteps:\n  - op: advance\n    duration: 1s\nassertions:\n  - type: trace_count\n    count: 1\n",
			"op is required for trace_count",
		},
		{
			"final_attributes without expect",
			"name: n\ndescription: d\nmodels: " + modelsDir + "\nsteps:\n  - op: advance\n    duration: 1s\nassertions:\n  - type: final_attributes\n    model: Task\n    id: 1\n",
			"expect is required for final_attributes",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tc.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}
