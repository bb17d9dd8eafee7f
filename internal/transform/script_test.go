package transform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dte/internal/value"
)

func TestScriptTransformIsProjective(t *testing.T) {
	tr, err := NewScript(`
function transform(row)
  return { id = row.id, shout = string.upper(row.name) }
end
`)
	require.NoError(t, err)
	defer tr.(*scriptTransformer).Close()

	row := value.NewRow(
		value.Field{Name: "id", Value: value.NewInteger(1)},
		value.Field{Name: "name", Value: value.NewString("ada")},
		value.Field{Name: "extra", Value: value.NewString("dropped")},
	)

	out, skipped, err := tr.Apply(row)
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Equal(t, []string{"id", "shout"}, out.Names())

	shout, _ := out.Get("shout")
	s, _ := shout.StringVal()
	assert.Equal(t, "ADA", s)
}

func TestScriptTransformDropsRowOnNil(t *testing.T) {
	tr, err := NewScript(`
function transform(row)
  if row.active == false then
    return nil
  end
  return { id = row.id }
end
`)
	require.NoError(t, err)
	defer tr.(*scriptTransformer).Close()

	row := value.NewRow(
		value.Field{Name: "id", Value: value.NewInteger(1)},
		value.Field{Name: "active", Value: value.NewBoolean(false)},
	)

	_, skipped, err := tr.Apply(row)
	require.NoError(t, err)
	assert.True(t, skipped)
}

func TestScriptTransformRejectsMissingFunction(t *testing.T) {
	_, err := NewScript(`x = 1`)
	assert.Error(t, err)
}

func TestScriptTransformHasNoIOAccess(t *testing.T) {
	compileOnly, err := NewScript(`
function transform(row)
  return { path = io.open("/etc/passwd") }
end
`)
	require.NoError(t, err) // compiles fine; io is simply nil at call time
	compileOnly.(*scriptTransformer).Close()

	tr, err := NewScript(`
function transform(row)
  return { path = tostring(io) }
end
`)
	require.NoError(t, err)
	defer tr.(*scriptTransformer).Close()

	out, skipped, err := tr.Apply(value.NewRow())
	require.NoError(t, err)
	assert.False(t, skipped)
	v, _ := out.Get("path")
	s, _ := v.StringVal()
	assert.Equal(t, "nil", s)
}
