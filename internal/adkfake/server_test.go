package adkfake

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/adkclient/core"
)

func do(t *testing.T, method, url, body string) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, b
}

func TestServer_SessionLifecycleAndRun(t *testing.T) {
	srv := New()
	base := srv.Start()
	defer srv.Close()

	status, body := do(t, http.MethodPost, base+"/apps/multi_tool_agent/users/user_1/sessions", "")
	require.Equal(t, http.StatusOK, status)
	var sess core.Session
	require.NoError(t, json.Unmarshal(body, &sess))
	require.True(t, sess.IsActive())
	assert.Equal(t, "multi_tool_agent", sess.AppName)

	run := `{"appName":"multi_tool_agent","userId":"user_1","sessionId":"` + sess.ID + `","newMessage":{"role":"user","parts":[{"text":"hello"}]},"streaming":false}`
	status, body = do(t, http.MethodPost, base+"/run", run)
	require.Equal(t, http.StatusOK, status)
	events, err := core.ParseRunResponse(body)
	require.NoError(t, err)
	assert.Equal(t, []string{"hello"}, core.ExtractText(events))

	stored, ok := srv.Session("multi_tool_agent", "user_1", sess.ID)
	require.True(t, ok)
	assert.Len(t, stored.Events, 2, "user event plus reply")

	status, _ = do(t, http.MethodDelete, base+"/apps/multi_tool_agent/users/user_1/sessions/"+sess.ID, "")
	assert.Equal(t, http.StatusNoContent, status)
	_, ok = srv.Session("multi_tool_agent", "user_1", sess.ID)
	assert.False(t, ok)

	assert.Len(t, srv.RequestsTo(RouteRun), 1)
}

func TestServer_CreateWithIDAndState(t *testing.T) {
	srv := New()
	base := srv.Start()
	defer srv.Close()

	status, body := do(t, http.MethodPost, base+"/apps/multi_tool_agent/users/u/sessions/fixed", `{"mood":"calm"}`)
	require.Equal(t, http.StatusOK, status)
	var sess core.Session
	require.NoError(t, json.Unmarshal(body, &sess))
	assert.Equal(t, "fixed", sess.ID)
	assert.Equal(t, map[string]any{"mood": "calm"}, sess.State)

	status, _ = do(t, http.MethodPost, base+"/apps/multi_tool_agent/users/u/sessions/fixed", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, http.MethodPost, base+"/apps/unknown/users/u/sessions", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_FailNextAndRaw(t *testing.T) {
	srv := New()
	base := srv.Start()
	defer srv.Close()

	srv.FailNext(RouteCreateSession, http.StatusInternalServerError, "boom")
	status, _ := do(t, http.MethodPost, base+"/apps/multi_tool_agent/users/u/sessions", "")
	assert.Equal(t, http.StatusInternalServerError, status)

	status, body := do(t, http.MethodPost, base+"/apps/multi_tool_agent/users/u/sessions", "")
	require.Equal(t, http.StatusOK, status)
	var sess core.Session
	require.NoError(t, json.Unmarshal(body, &sess))

	srv.RespondRaw("{not an array}")
	run := `{"appName":"multi_tool_agent","userId":"u","sessionId":"` + sess.ID + `","newMessage":{"role":"user","parts":[{"text":"x"}]}}`
	_, body = do(t, http.MethodPost, base+"/run", run)
	assert.Equal(t, "{not an array}", string(body))
}

func TestServer_ListAppsAndNotFound(t *testing.T) {
	srv := New(func(o *Options) { o.Apps = []string{"a", "b"} })
	base := srv.Start()
	defer srv.Close()

	status, body := do(t, http.MethodGet, base+"/list-apps", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `["a","b"]`, string(body))

	status, _ = do(t, http.MethodGet, base+"/nope", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServer_Artifacts(t *testing.T) {
	srv := New()
	base := srv.Start()
	defer srv.Close()

	_, ok := srv.PutArtifact("multi_tool_agent", "u", "s1", "a.txt", core.TextPart{Text: "x"})
	assert.False(t, ok, "unknown session")

	status, _ := do(t, http.MethodPost, base+"/apps/multi_tool_agent/users/u/sessions/s1", "")
	require.Equal(t, http.StatusOK, status)

	v, ok := srv.PutArtifact("multi_tool_agent", "u", "s1", "a.txt", core.TextPart{Text: "first"})
	require.True(t, ok)
	assert.Equal(t, 0, v)
	v, _ = srv.PutArtifact("multi_tool_agent", "u", "s1", "a.txt", core.TextPart{Text: "second"})
	assert.Equal(t, 1, v)

	prefix := base + "/apps/multi_tool_agent/users/u/sessions/s1/artifacts"
	status, body := do(t, http.MethodGet, prefix, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `["a.txt"]`, string(body))

	_, body = do(t, http.MethodGet, prefix+"/a.txt/versions", "")
	assert.JSONEq(t, `[0,1]`, string(body))

	_, body = do(t, http.MethodGet, prefix+"/a.txt", "")
	assert.JSONEq(t, `{"text":"second"}`, string(body))
	_, body = do(t, http.MethodGet, prefix+"/a.txt?version=0", "")
	assert.JSONEq(t, `{"text":"first"}`, string(body))

	status, _ = do(t, http.MethodGet, prefix+"/a.txt?version=7", "")
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = do(t, http.MethodGet, prefix+"/a.txt?version=x", "")
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	status, _ = do(t, http.MethodDelete, base+"/apps/multi_tool_agent/users/u/sessions/s1", "")
	require.Equal(t, http.StatusNoContent, status)
	_, body = do(t, http.MethodGet, prefix, "")
	assert.JSONEq(t, `[]`, string(body))
}
