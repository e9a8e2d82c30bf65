package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allVariants() []Part {
	return []Part{
		TextPart{Text: "hello"},
		ThoughtPart{Thought: true},
		ExecutableCodePart{Code: "print(1)", Language: LanguagePython},
		CodeExecutionResultPart{Outcome: OutcomeOK, Output: "1\n"},
		FileDataPart{FileURI: "gs://bucket/a.pdf", MIMEType: "application/pdf"},
		InlineDataPart{Data: "aGVsbG8=", MIMEType: "text/plain"},
		FunctionCallPart{ID: "call-1", Name: "get_weather", Args: map[string]any{"city": "Rome", "days": float64(3)}},
		FunctionResponsePart{ID: "call-1", Name: "get_weather", Response: map[string]any{"temp": 21.5}},
		VideoMetadataPart{StartOffset: "1.5s", EndOffset: "10s"},
	}
}

func TestPartCodec_RoundTrip(t *testing.T) {
	for _, p := range allVariants() {
		raw, err := EncodePart(p)
		require.NoError(t, err, "%T", p)

		got, err := DecodePart(raw)
		require.NoError(t, err, "%T: %s", p, raw)
		assert.Equal(t, p, got)
	}
}

func TestPartCodec_ArgsDecodeInJSONForm(t *testing.T) {
	raw, err := EncodePart(FunctionCallPart{Name: "f", Args: map[string]any{"n": 1, "tags": []string{"a"}}})
	require.NoError(t, err)

	got, err := DecodePart(raw)
	require.NoError(t, err)
	assert.Equal(t, FunctionCallPart{Name: "f", Args: map[string]any{"n": float64(1), "tags": []any{"a"}}}, got)

	again, err := EncodePart(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(again))
}

func TestPartCodec_ZeroValuesRoundTrip(t *testing.T) {
	parts := []Part{
		TextPart{},
		ThoughtPart{},
		ExecutableCodePart{},
		CodeExecutionResultPart{},
		FunctionCallPart{},
		VideoMetadataPart{},
	}
	for _, p := range parts {
		raw, err := EncodePart(p)
		require.NoError(t, err)
		got, err := DecodePart(raw)
		require.NoError(t, err, "%s", raw)
		assert.Equal(t, p, got)
	}
}

func TestEncodePart_WireShape(t *testing.T) {
	raw, err := EncodePart(FileDataPart{FileURI: "u", MIMEType: "m"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"fileData":{"fileUri":"u","mimeType":"m"}}`, string(raw))

	raw, err = EncodePart(TextPart{Text: "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"hi"}`, string(raw))

	_, err = EncodePart(nil)
	assert.Error(t, err)
}

func TestDecodePart_Precedence(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Part
	}{
		{"text beats thought", `{"text":"a","thought":true}`, TextPart{Text: "a"}},
		{"thought beats code", `{"thought":false,"executableCode":{"code":"x"}}`, ThoughtPart{Thought: false}},
		{"code beats result", `{"executableCode":{"code":"x"},"codeExecutionResult":{"outcome":"OUTCOME_OK"}}`, ExecutableCodePart{Code: "x"}},
		{"function call beats response", `{"functionCall":{"name":"f"},"functionResponse":{"name":"g"}}`, FunctionCallPart{Name: "f"}},
		{"null text is absent", `{"text":null,"thought":true}`, ThoughtPart{Thought: true}},
		{"wrong typed text is skipped", `{"text":5,"fileData":{"fileUri":"u"}}`, FileDataPart{FileURI: "u"}},
		{"file data without uri falls through", `{"fileData":{"mimeType":"m"},"videoMetadata":{}}`, VideoMetadataPart{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodePart([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodePart_SnakeCaseKeys(t *testing.T) {
	got, err := DecodePart([]byte(`{"file_data":{"file_uri":"gs://x","mime_type":"image/png"}}`))
	require.NoError(t, err)
	assert.Equal(t, FileDataPart{FileURI: "gs://x", MIMEType: "image/png"}, got)

	got, err = DecodePart([]byte(`{"code_execution_result":{"outcome":"OUTCOME_FAILED","output":"boom"}}`))
	require.NoError(t, err)
	assert.Equal(t, CodeExecutionResultPart{Outcome: OutcomeFailed, Output: "boom"}, got)
}

func TestDecodePart_IgnoresUnknownSiblings(t *testing.T) {
	got, err := DecodePart([]byte(`{"text":"ok","thoughtSignature":"abc","partMetadata":{"k":1}}`))
	require.NoError(t, err)
	assert.Equal(t, TextPart{Text: "ok"}, got)
}

func TestDecodePart_Unrecognized(t *testing.T) {
	for _, raw := range []string{`{}`, `{"foo":1}`, `[1,2]`, `"text"`, `{"functionCall":{"args":{}}}`, `not json`} {
		_, err := DecodePart([]byte(raw))
		var upe *UnrecognizedPartError
		assert.True(t, errors.As(err, &upe), "raw=%s err=%v", raw, err)
	}

	_, err := DecodePart([]byte(`{"foo":1,"bar":2}`))
	var upe *UnrecognizedPartError
	require.ErrorAs(t, err, &upe)
	assert.Equal(t, []string{"foo", "bar"}, upe.Keys)
}

func TestPartText(t *testing.T) {
	s, ok := PartText(TextPart{Text: "x"})
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	_, ok = PartText(ThoughtPart{Thought: true})
	assert.False(t, ok)
}
