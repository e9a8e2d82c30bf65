package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRunRequest(t *testing.T) {
	s := Session{ID: "s1", AppName: "multi_tool_agent", UserID: "user_1", LastUpdateTime: 10}

	req, err := BuildRunRequest(s, "Tell me a story")
	require.NoError(t, err)
	assert.Equal(t, "multi_tool_agent", req.AppName)
	assert.Equal(t, "user_1", req.UserID)
	assert.Equal(t, "s1", req.SessionID)
	assert.False(t, req.Streaming)
	assert.Equal(t, NewUserContent("Tell me a story"), req.NewMessage)
	assert.NoError(t, req.Validate())

	raw, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"appName": "multi_tool_agent",
		"userId": "user_1",
		"sessionId": "s1",
		"newMessage": {"parts": [{"text": "Tell me a story"}], "role": "user"},
		"streaming": false
	}`, string(raw))
}

func TestBuildRunRequest_EmptySessionGuard(t *testing.T) {
	_, err := BuildRunRequest(EmptySession, "hello")
	assert.ErrorIs(t, err, ErrInvalidSession)

	_, err = BuildRunRequestWithContent(Session{AppName: "a", UserID: "u"}, NewUserContent("x"))
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestBuildRunRequest_EmptyTextAllowed(t *testing.T) {
	req, err := BuildRunRequest(Session{ID: "s", AppName: "a", UserID: "u"}, "")
	require.NoError(t, err)
	assert.Equal(t, []Part{TextPart{Text: ""}}, req.NewMessage.Parts)
}

func TestRunRequest_Validate(t *testing.T) {
	ok := RunRequest{AppName: "a", UserID: "u", SessionID: "s"}
	assert.NoError(t, ok.Validate())

	noSession := ok
	noSession.SessionID = ""
	assert.ErrorIs(t, noSession.Validate(), ErrInvalidSession)

	noUser := ok
	noUser.UserID = ""
	assert.Error(t, noUser.Validate())

	streaming := ok
	streaming.Streaming = true
	assert.ErrorIs(t, streaming.Validate(), ErrStreamingUnsupported)
}

func TestContent_JSON(t *testing.T) {
	c := Content{Role: RoleModel, Parts: []Part{
		TextPart{Text: "a"},
		FunctionCallPart{ID: "1", Name: "f", Args: map[string]any{"x": "y"}},
	}}
	raw, err := json.Marshal(c)
	require.NoError(t, err)

	var got Content
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, c, got)

	_, err = json.Marshal(Content{Parts: []Part{nil}})
	assert.Error(t, err)

	var empty Content
	require.NoError(t, json.Unmarshal([]byte(`{"role":"user"}`), &empty))
	assert.Equal(t, "user", empty.Role)
	assert.Empty(t, empty.Parts)
}
