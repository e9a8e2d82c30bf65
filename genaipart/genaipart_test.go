package genaipart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/hupe1980/adkclient/core"
)

func TestRoundTrip(t *testing.T) {
	parts := []core.Part{
		core.TextPart{Text: "hello"},
		core.ThoughtPart{Thought: true},
		core.ExecutableCodePart{Code: "print(1)", Language: core.LanguagePython},
		core.CodeExecutionResultPart{Outcome: core.OutcomeOK, Output: "1"},
		core.FileDataPart{FileURI: "gs://b/o.pdf", MIMEType: "application/pdf"},
		core.InlineDataPart{Data: "aGVsbG8=", MIMEType: "text/plain"},
		core.FunctionCallPart{ID: "c1", Name: "get_weather", Args: map[string]any{"city": "Rome"}},
		core.FunctionResponsePart{ID: "c1", Name: "get_weather", Response: map[string]any{"temp": 21.5}},
		core.VideoMetadataPart{StartOffset: "1.5s", EndOffset: "90s"},
	}
	for _, p := range parts {
		gp, err := ToGenAI(p)
		require.NoError(t, err, "%T", p)
		back, err := FromGenAI(gp)
		require.NoError(t, err, "%T", p)
		assert.Equal(t, p, back)
	}
}

func TestToGenAI_Values(t *testing.T) {
	gp, err := ToGenAI(core.InlineDataPart{Data: "aGVsbG8=", MIMEType: "text/plain"})
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), gp.InlineData.Data)

	gp, err = ToGenAI(core.VideoMetadataPart{StartOffset: "1.5s", EndOffset: "1m"})
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, gp.VideoMetadata.StartOffset)
	assert.Equal(t, time.Minute, gp.VideoMetadata.EndOffset)
}

func TestToGenAI_Errors(t *testing.T) {
	_, err := ToGenAI(core.FunctionCallPart{Name: "f", Args: []any{1}})
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = ToGenAI(core.FunctionResponsePart{Name: "f", Response: "text"})
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = ToGenAI(core.InlineDataPart{Data: "***"})
	assert.Error(t, err)

	_, err = ToGenAI(core.VideoMetadataPart{StartOffset: "soon"})
	assert.Error(t, err)

	_, err = ToGenAI(nil)
	assert.Error(t, err)
}

func TestFromGenAI_Precedence(t *testing.T) {
	p, err := FromGenAI(&genai.Part{Text: "summary", Thought: true})
	require.NoError(t, err)
	assert.Equal(t, core.TextPart{Text: "summary"}, p)

	p, err = FromGenAI(&genai.Part{})
	require.NoError(t, err)
	assert.Equal(t, core.TextPart{}, p)

	_, err = FromGenAI(nil)
	assert.Error(t, err)
}

func TestContentConversion(t *testing.T) {
	c := core.Content{Role: core.RoleModel, Parts: []core.Part{
		core.TextPart{Text: "a"},
		core.FunctionCallPart{Name: "f"},
	}}
	gc, err := ContentToGenAI(c)
	require.NoError(t, err)
	assert.Equal(t, "model", gc.Role)
	require.Len(t, gc.Parts, 2)
	assert.Equal(t, "f", gc.Parts[1].FunctionCall.Name)

	back, err := ContentFromGenAI(gc)
	require.NoError(t, err)
	assert.Equal(t, c, back)

	fromSDK, err := ContentFromGenAI(genai.NewContentFromText("hi", genai.RoleUser))
	require.NoError(t, err)
	assert.Equal(t, core.NewUserContent("hi"), fromSDK)
}
