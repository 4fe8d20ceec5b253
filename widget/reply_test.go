package widget

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReply_Rendering(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string", `{"response":"hi"}`, "hi"},
		{"missing field", `{"error":"boom"}`, "undefined"},
		{"explicit null", `{"response":null}`, "null"},
		{"integer", `{"response":42}`, "42"},
		{"fraction", `{"response":0.5}`, "0.5"},
		{"large number", `{"response":1e21}`, "1e+21"},
		{"tiny number", `{"response":1.5e-7}`, "1.5e-7"},
		{"bool", `{"response":true}`, "true"},
		{"array", `{"response":["a",1,null,["b","c"]]}`, "a,1,,b,c"},
		{"object", `{"response":{"total":10}}`, "[object Object]"},
		{"top-level array", `["response"]`, "undefined"},
		{"top-level string", `"hi"`, "undefined"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			reply, err := ParseReply([]byte(tc.body))
			require.NoError(t, err)
			assert.Equal(t, tc.want, reply.String())
		})
	}
}

func TestParseReply_Errors(t *testing.T) {
	_, err := ParseReply([]byte("not json"))
	assert.Error(t, err)

	_, err = ParseReply([]byte(""))
	assert.Error(t, err)

	_, err = ParseReply([]byte("null"))
	assert.ErrorIs(t, err, ErrNullBody)
}

func TestReply_Defined(t *testing.T) {
	reply, err := ParseReply([]byte(`{"response":""}`))
	require.NoError(t, err)
	assert.True(t, reply.Defined())
	assert.Equal(t, "", reply.String())

	assert.False(t, Reply{}.Defined())
}

func TestTranscript_OnAppend(t *testing.T) {
	transcript := NewTranscript()
	var seen []string
	transcript.OnAppend(func(line string) { seen = append(seen, line) })

	transcript.Append("User: a")
	transcript.Append("Assistant: b")

	assert.Equal(t, []string{"User: a", "Assistant: b"}, seen)
	assert.Equal(t, "User: a\nAssistant: b", transcript.String())
}
