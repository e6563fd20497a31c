package schema

import (
	"testing"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hashrec/internal/attr"
)

// compileModel compiles an inline CUE declaration for one model label.
func compileModel(t *testing.T, label, src string) (cue.Value, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return v.LookupPath(cue.ParsePath("model." + label)), nil
}

const taskCUE = `
model: Task: {
	qualified: "myapp.Task"
	attributes: {
		name:        "string"
		description: "string"
		status:      "string"
		priority:    "int"
	}
	machines: status: {
		attribute: "status"
		initial:   "created"
		states: ["created", "processed", "failed"]
	}
	expires_in: "2s"
}
`

func TestCompile_FullDeclaration(t *testing.T) {
	v, _ := compileModel(t, "Task", taskCUE)

	desc, err := Compile("Task", v)
	require.NoError(t, err)

	assert.Equal(t, "myapp.Task", desc.Name())
	assert.Equal(t, "tasks", desc.Namespace())
	assert.Equal(t, 2*time.Second, desc.ExpiresIn())

	assert.Equal(t, []string{"name", "description", "status", "priority"}, desc.Schema().Names())
	kind, ok := desc.Schema().Kind("priority")
	require.True(t, ok)
	assert.Equal(t, attr.KindInt, kind)

	m, ok := desc.Machines().MachineFor("status")
	require.True(t, ok)
	assert.Equal(t, "created", m.Initial)
	assert.Equal(t, []string{"created", "processed", "failed"}, m.States)
}

func TestCompile_QualifiedDefaultsToLabel(t *testing.T) {
	v, _ := compileModel(t, "Note", `model: Note: {attributes: {body: "string"}}`)

	desc, err := Compile("Note", v)
	require.NoError(t, err)
	assert.Equal(t, "Note", desc.Name())
	assert.Equal(t, "notes", desc.Namespace())
	assert.Equal(t, time.Duration(0), desc.ExpiresIn())
}

func TestCompile_MissingAttributes(t *testing.T) {
	v, _ := compileModel(t, "Bad", `model: Bad: {qualified: "x.Bad"}`)

	_, err := Compile("Bad", v)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "attributes", ce.Field)
}

func TestCompile_UnknownKind(t *testing.T) {
	v, _ := compileModel(t, "Bad", `model: Bad: {attributes: {score: "float"}}`)

	_, err := Compile("Bad", v)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "attributes.score", ce.Field)
	assert.Contains(t, ce.Message, "float")
}

func TestCompile_MachineMissingStates(t *testing.T) {
	v, _ := compileModel(t, "Bad", `
model: Bad: {
	attributes: {status: "string"}
	machines: status: {attribute: "status"}
}`)

	_, err := Compile("Bad", v)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "machines.status", ce.Field)
}

func TestCompile_MachineGovernsUndeclaredAttribute(t *testing.T) {
	v, _ := compileModel(t, "Bad", `
model: Bad: {
	attributes: {name: "string"}
	machines: status: {
		attribute: "status"
		states: ["a"]
	}
}`)

	_, err := Compile("Bad", v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not declared")
}

func TestCompile_InvalidDuration(t *testing.T) {
	v, _ := compileModel(t, "Bad", `
model: Bad: {
	attributes: {name: "string"}
	expires_in: "two seconds"
}`)

	_, err := Compile("Bad", v)
	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "expires_in", ce.Field)
}

func TestCompileError_FormatsPosition(t *testing.T) {
	err := &CompileError{Model: "Task", Field: "attributes", Message: "boom"}
	assert.Equal(t, "model Task: attributes: boom", err.Error())
}
