package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestAuthScheme_PreservesUnknownKeys(t *testing.T) {
	raw := `{"type":"apiKey","description":"d","in":"query","name":"key","x-vendor":{"a":1},"flowsHint":"pkce"}`

	var scheme AuthScheme
	require.NoError(t, json.Unmarshal([]byte(raw), &scheme))
	assert.Equal(t, "apiKey", scheme.Type)
	assert.Equal(t, "query", scheme.In)
	assert.Equal(t, map[string]any{"x-vendor": map[string]any{"a": float64(1)}, "flowsHint": "pkce"}, scheme.Extensions)

	out, err := json.Marshal(scheme)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestAuthScheme_KnownFieldWinsOverExtension(t *testing.T) {
	scheme := AuthScheme{Type: "http", Extensions: map[string]any{"type": "shadow", "extra": true}}
	out, err := json.Marshal(scheme)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"http","extra":true}`, string(out))
}

func TestRawAuthCredential_SnakeCaseAndNested(t *testing.T) {
	raw := `{
		"auth_type": "oauth2",
		"resource_ref": "ref-1",
		"oauth2": {
			"client_id": "cid",
			"client_secret": "secret",
			"redirect_uri": "http://localhost/cb",
			"access_token": "tok",
			"expires_at": 1700000000
		},
		"additionalProp1": {}
	}`

	var cred RawAuthCredential
	require.NoError(t, json.Unmarshal([]byte(raw), &cred))
	assert.Equal(t, AuthTypeOAuth2, cred.AuthType)
	assert.Equal(t, "ref-1", cred.ResourceRef)
	require.NotNil(t, cred.OAuth2)
	assert.Equal(t, "cid", cred.OAuth2.ClientID)
	assert.Equal(t, "tok", *cred.OAuth2.AccessToken)
	assert.Equal(t, map[string]any{"expires_at": float64(1700000000)}, cred.OAuth2.Extensions)
	assert.Equal(t, map[string]any{"additionalProp1": map[string]any{}}, cred.Extensions)
	assert.NoError(t, cred.Validate())

	out, err := json.Marshal(cred)
	require.NoError(t, err)

	var again RawAuthCredential
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, cred, again)
}

func TestRawAuthCredential_KindAndValidate(t *testing.T) {
	inferred := RawAuthCredential{HTTP: &HTTPAuth{Scheme: "bearer", Credentials: &HTTPCredentials{Token: strPtr("t")}}}
	assert.Equal(t, AuthTypeHTTP, inferred.Kind())
	assert.NoError(t, inferred.Validate())

	// apiKey precedes http when nothing is declared
	both := RawAuthCredential{APIKey: strPtr("k"), HTTP: &HTTPAuth{}}
	assert.Equal(t, AuthTypeAPIKey, both.Kind())
	assert.True(t, errors.Is(both.Validate(), ErrCredentialMismatch))

	mismatch := RawAuthCredential{AuthType: AuthTypeAPIKey, OAuth2: &OAuth2Auth{ClientID: "c"}}
	assert.ErrorIs(t, mismatch.Validate(), ErrCredentialMismatch)

	oidc := RawAuthCredential{AuthType: AuthTypeOpenIDConnect, OAuth2: &OAuth2Auth{ClientID: "c"}}
	assert.NoError(t, oidc.Validate())

	assert.Equal(t, AuthCredentialType(""), RawAuthCredential{}.Kind())
}

func TestServiceAccountCredential_KeyFileSpelling(t *testing.T) {
	raw := `{
		"type": "service_account",
		"project_id": "p",
		"private_key_id": "kid",
		"client_email": "sa@p.iam.gserviceaccount.com",
		"auth_provider_x509_cert_url": "https://www.googleapis.com/oauth2/v1/certs",
		"client_x509_cert_url": "https://example.com/cert"
	}`
	var sa ServiceAccountCredential
	require.NoError(t, json.Unmarshal([]byte(raw), &sa))
	assert.Equal(t, "p", sa.ProjectID)
	assert.Equal(t, "kid", sa.PrivateKeyID)
	assert.Equal(t, "https://www.googleapis.com/oauth2/v1/certs", sa.AuthProviderX509CertURL)
	assert.Equal(t, "https://example.com/cert", sa.ClientX509CertURL)
	assert.Nil(t, sa.Extensions)
}

func TestAuthConfig_Decode(t *testing.T) {
	raw := `{
		"auth_scheme": {"type": "apiKey", "in": "header", "name": "X-Key"},
		"raw_auth_credential": {"auth_type": "apiKey", "resource_ref": "r", "api_key": "secret"},
		"exchanged_auth_credential": {"authType": "apiKey", "apiKey": "exchanged"}
	}`
	var cfg AuthConfig
	require.NoError(t, json.Unmarshal([]byte(raw), &cfg))
	assert.Equal(t, "header", cfg.AuthScheme.In)
	assert.Equal(t, "secret", *cfg.RawAuthCredential.APIKey)
	require.NotNil(t, cfg.ExchangedAuthCredential)
	assert.Equal(t, "exchanged", *cfg.ExchangedAuthCredential.APIKey)

	out, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"rawAuthCredential"`)
	assert.Contains(t, string(out), `"apiKey":"secret"`)
	assert.Nil(t, cfg.Extensions)
}

func TestAuthConfig_KeepsCredentialKey(t *testing.T) {
	raw := `{"authScheme":{"type":"apiKey","x":1},"rawAuthCredential":{"authType":"apiKey","apiKey":"k"},"credentialKey":"ck"}`
	var cfg AuthConfig
	require.NoError(t, json.Unmarshal([]byte(raw), &cfg))
	assert.Equal(t, map[string]any{"credentialKey": "ck"}, cfg.Extensions)
	assert.Equal(t, map[string]any{"x": float64(1)}, cfg.AuthScheme.Extensions)

	out, err := json.Marshal(cfg)
	require.NoError(t, err)
	assert.JSONEq(t, raw, string(out))
}

func TestAuthScheme_ExtensionKeysNeedingEscape(t *testing.T) {
	scheme := AuthScheme{Type: "http", Extensions: map[string]any{"x.vendor": "a", "7": 1, "what?": nil}}
	out, err := json.Marshal(scheme)
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"http","x.vendor":"a","7":1,"what?":null}`, string(out))

	var back AuthScheme
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, map[string]any{"x.vendor": "a", "7": float64(1), "what?": nil}, back.Extensions)
}
