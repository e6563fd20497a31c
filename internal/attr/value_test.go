package attr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKind_String(t *testing.T) {
	assert.Equal(t, "string", KindString.String())
	assert.Equal(t, "int", KindInt.String())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("string")
	require.NoError(t, err)
	assert.Equal(t, KindString, k)

	k, err = ParseKind("int")
	require.NoError(t, err)
	assert.Equal(t, KindInt, k)

	_, err = ParseKind("float")
	assert.Error(t, err, "only string and int kinds exist")
}

func TestString_Encode(t *testing.T) {
	v := String("processed")
	assert.Equal(t, "processed", v.Encode())
	assert.Equal(t, KindString, v.Kind())
	assert.False(t, v.IsEmpty())
	assert.True(t, String("").IsEmpty())
}

func TestInt_Encode(t *testing.T) {
	v := Int(42)
	assert.Equal(t, "42", v.Encode())
	assert.Equal(t, KindInt, v.Kind())
	assert.False(t, v.IsEmpty())
	assert.True(t, Int(0).IsEmpty())
	assert.Equal(t, "-7", Int(-7).Encode())
}

func TestDecode_String(t *testing.T) {
	v, err := Decode(KindString, "My name")
	require.NoError(t, err)
	assert.Equal(t, String("My name"), v)
}

func TestDecode_Int(t *testing.T) {
	v, err := Decode(KindInt, "42")
	require.NoError(t, err)
	assert.Equal(t, Int(42), v)
}

func TestDecode_Int_EmptyStringIsZero(t *testing.T) {
	v, err := Decode(KindInt, "")
	require.NoError(t, err)
	assert.True(t, v.IsEmpty())
}

func TestDecode_Int_Garbage(t *testing.T) {
	_, err := Decode(KindInt, "not-a-number")
	assert.Error(t, err)
}

func TestDecode_RoundTrip(t *testing.T) {
	for _, v := range []Value{String("x"), Int(123), Int(-5)} {
		decoded, err := Decode(v.Kind(), v.Encode())
		require.NoError(t, err)
		assert.Equal(t, v, decoded)
	}
}
