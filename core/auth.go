package core

import "fmt"

// AuthCredentialType identifies the kind of a RawAuthCredential.
type AuthCredentialType string

const (
	AuthTypeAPIKey         AuthCredentialType = "apiKey"
	AuthTypeHTTP           AuthCredentialType = "http"
	AuthTypeServiceAccount AuthCredentialType = "serviceAccount"
	AuthTypeOAuth2         AuthCredentialType = "oauth2"
	AuthTypeOpenIDConnect  AuthCredentialType = "openIdConnect"
)

// The auth structures below are open records: fields the client does not
// know are kept in Extensions on decode and written back on encode.

// AuthScheme is an OpenAPI security scheme.
type AuthScheme struct {
	Type             string         `json:"type"`
	Description      string         `json:"description,omitempty"`
	In               string         `json:"in,omitempty"`
	Name             string         `json:"name,omitempty"`
	Scheme           string         `json:"scheme,omitempty"`
	BearerFormat     string         `json:"bearerFormat,omitempty"`
	Flows            map[string]any `json:"flows,omitempty"`
	OpenIDConnectURL string         `json:"openIdConnectUrl,omitempty"`
	Extensions       map[string]any `json:"-"`
}

type authSchemeFields AuthScheme

var authSchemeSchema = schemaOf[authSchemeFields]()

// MarshalJSON writes the known fields followed by Extensions.
func (a AuthScheme) MarshalJSON() ([]byte, error) {
	return authSchemeSchema.encode(authSchemeFields(a), a.Extensions)
}

// UnmarshalJSON keeps keys outside the known fields in Extensions.
func (a *AuthScheme) UnmarshalJSON(data []byte) error {
	var f authSchemeFields
	ext, err := authSchemeSchema.decode(data, &f)
	if err != nil {
		return err
	}
	*a = AuthScheme(f)
	a.Extensions = ext
	return nil
}

// HTTPCredentials are the secrets of an HTTP auth credential.
type HTTPCredentials struct {
	Username   *string        `json:"username,omitempty"`
	Password   *string        `json:"password,omitempty"`
	Token      *string        `json:"token,omitempty"`
	Extensions map[string]any `json:"-"`
}

type httpCredentialsFields HTTPCredentials

var httpCredentialsSchema = schemaOf[httpCredentialsFields]()

// MarshalJSON writes the known fields followed by Extensions.
func (c HTTPCredentials) MarshalJSON() ([]byte, error) {
	return httpCredentialsSchema.encode(httpCredentialsFields(c), c.Extensions)
}

// UnmarshalJSON keeps keys outside the known fields in Extensions.
func (c *HTTPCredentials) UnmarshalJSON(data []byte) error {
	var f httpCredentialsFields
	ext, err := httpCredentialsSchema.decode(data, &f)
	if err != nil {
		return err
	}
	*c = HTTPCredentials(f)
	c.Extensions = ext
	return nil
}

// HTTPAuth is an HTTP scheme (basic, bearer, ...) credential.
type HTTPAuth struct {
	Scheme      string           `json:"scheme,omitempty"`
	Credentials *HTTPCredentials `json:"credentials,omitempty"`
	Extensions  map[string]any   `json:"-"`
}

type httpAuthFields HTTPAuth

var httpAuthSchema = schemaOf[httpAuthFields]()

// MarshalJSON writes the known fields followed by Extensions.
func (h HTTPAuth) MarshalJSON() ([]byte, error) {
	return httpAuthSchema.encode(httpAuthFields(h), h.Extensions)
}

// UnmarshalJSON keeps keys outside the known fields in Extensions.
func (h *HTTPAuth) UnmarshalJSON(data []byte) error {
	var f httpAuthFields
	ext, err := httpAuthSchema.decode(data, &f)
	if err != nil {
		return err
	}
	*h = HTTPAuth(f)
	h.Extensions = ext
	return nil
}

// ServiceAccountCredential mirrors a Google service account key file.
type ServiceAccountCredential struct {
	Type                    string         `json:"type"`
	ProjectID               string         `json:"projectId,omitempty"`
	PrivateKeyID            string         `json:"privateKeyId,omitempty"`
	PrivateKey              string         `json:"privateKey,omitempty"`
	ClientEmail             string         `json:"clientEmail,omitempty"`
	ClientID                string         `json:"clientId,omitempty"`
	AuthURI                 string         `json:"authUri,omitempty"`
	TokenURI                string         `json:"tokenUri,omitempty"`
	AuthProviderX509CertURL string         `json:"authProviderX509CertUrl,omitempty"`
	ClientX509CertURL       string         `json:"clientX509CertUrl,omitempty"`
	UniverseDomain          string         `json:"universeDomain,omitempty"`
	Extensions              map[string]any `json:"-"`
}

type serviceAccountCredentialFields ServiceAccountCredential

// key files spell these with an underscore before x509
var serviceAccountCredentialSchema = schemaOf[serviceAccountCredentialFields]().
	withAlias("auth_provider_x509_cert_url", "authProviderX509CertUrl").
	withAlias("client_x509_cert_url", "clientX509CertUrl")

// MarshalJSON writes the known fields followed by Extensions.
func (s ServiceAccountCredential) MarshalJSON() ([]byte, error) {
	return serviceAccountCredentialSchema.encode(serviceAccountCredentialFields(s), s.Extensions)
}

// UnmarshalJSON keeps keys outside the known fields in Extensions.
func (s *ServiceAccountCredential) UnmarshalJSON(data []byte) error {
	var f serviceAccountCredentialFields
	ext, err := serviceAccountCredentialSchema.decode(data, &f)
	if err != nil {
		return err
	}
	*s = ServiceAccountCredential(f)
	s.Extensions = ext
	return nil
}

// ServiceAccount is a service account auth credential.
type ServiceAccount struct {
	ServiceAccountCredential *ServiceAccountCredential `json:"serviceAccountCredential,omitempty"`
	Scopes                   []string                  `json:"scopes,omitempty"`
	UseDefaultCredential     *bool                     `json:"useDefaultCredential,omitempty"`
	Extensions               map[string]any            `json:"-"`
}

type serviceAccountFields ServiceAccount

var serviceAccountSchema = schemaOf[serviceAccountFields]()

// MarshalJSON writes the known fields followed by Extensions.
func (s ServiceAccount) MarshalJSON() ([]byte, error) {
	return serviceAccountSchema.encode(serviceAccountFields(s), s.Extensions)
}

// UnmarshalJSON keeps keys outside the known fields in Extensions.
func (s *ServiceAccount) UnmarshalJSON(data []byte) error {
	var f serviceAccountFields
	ext, err := serviceAccountSchema.decode(data, &f)
	if err != nil {
		return err
	}
	*s = ServiceAccount(f)
	s.Extensions = ext
	return nil
}

// OAuth2Auth is an OAuth2 client configuration plus the tokens obtained so far.
type OAuth2Auth struct {
	ClientID        string         `json:"clientId,omitempty"`
	ClientSecret    string         `json:"clientSecret,omitempty"`
	AuthURI         string         `json:"authUri,omitempty"`
	State           *string        `json:"state,omitempty"`
	RedirectURI     string         `json:"redirectUri,omitempty"`
	AuthResponseURI *string        `json:"authResponseUri,omitempty"`
	AuthCode        *string        `json:"authCode,omitempty"`
	AccessToken     *string        `json:"accessToken,omitempty"`
	RefreshToken    *string        `json:"refreshToken,omitempty"`
	Extensions      map[string]any `json:"-"`
}

type oauth2AuthFields OAuth2Auth

var oauth2AuthSchema = schemaOf[oauth2AuthFields]()

// MarshalJSON writes the known fields followed by Extensions.
func (o OAuth2Auth) MarshalJSON() ([]byte, error) {
	return oauth2AuthSchema.encode(oauth2AuthFields(o), o.Extensions)
}

// UnmarshalJSON keeps keys outside the known fields in Extensions.
func (o *OAuth2Auth) UnmarshalJSON(data []byte) error {
	var f oauth2AuthFields
	ext, err := oauth2AuthSchema.decode(data, &f)
	if err != nil {
		return err
	}
	*o = OAuth2Auth(f)
	o.Extensions = ext
	return nil
}

// RawAuthCredential is a credential of one declared kind. At most the field
// matching AuthType should be populated.
type RawAuthCredential struct {
	AuthType       AuthCredentialType `json:"authType"`
	ResourceRef    string             `json:"resourceRef,omitempty"`
	APIKey         *string            `json:"apiKey,omitempty"`
	HTTP           *HTTPAuth          `json:"http,omitempty"`
	ServiceAccount *ServiceAccount    `json:"serviceAccount,omitempty"`
	OAuth2         *OAuth2Auth        `json:"oauth2,omitempty"`
	Extensions     map[string]any     `json:"-"`
}

type rawAuthCredentialFields RawAuthCredential

var rawAuthCredentialSchema = schemaOf[rawAuthCredentialFields]()

// MarshalJSON writes the known fields followed by Extensions.
func (r RawAuthCredential) MarshalJSON() ([]byte, error) {
	return rawAuthCredentialSchema.encode(rawAuthCredentialFields(r), r.Extensions)
}

// UnmarshalJSON keeps keys outside the known fields in Extensions.
func (r *RawAuthCredential) UnmarshalJSON(data []byte) error {
	var f rawAuthCredentialFields
	ext, err := rawAuthCredentialSchema.decode(data, &f)
	if err != nil {
		return err
	}
	*r = RawAuthCredential(f)
	r.Extensions = ext
	return nil
}

// populated lists the credential kinds with a non-nil field, in the fixed
// inference order apiKey, http, serviceAccount, oauth2.
func (r RawAuthCredential) populated() []AuthCredentialType {
	var kinds []AuthCredentialType
	if r.APIKey != nil {
		kinds = append(kinds, AuthTypeAPIKey)
	}
	if r.HTTP != nil {
		kinds = append(kinds, AuthTypeHTTP)
	}
	if r.ServiceAccount != nil {
		kinds = append(kinds, AuthTypeServiceAccount)
	}
	if r.OAuth2 != nil {
		kinds = append(kinds, AuthTypeOAuth2)
	}
	return kinds
}

// Kind returns the declared AuthType or, when it is empty, the first
// populated credential field in the order apiKey, http, serviceAccount,
// oauth2. It returns "" for an empty credential.
func (r RawAuthCredential) Kind() AuthCredentialType {
	if r.AuthType != "" {
		return r.AuthType
	}
	if kinds := r.populated(); len(kinds) > 0 {
		return kinds[0]
	}
	return ""
}

// Validate reports ErrCredentialMismatch when a populated credential field
// does not match the credential kind.
// OpenID Connect credentials are carried in the oauth2 field.
func (r RawAuthCredential) Validate() error {
	kind := r.Kind()
	if kind == AuthTypeOpenIDConnect {
		kind = AuthTypeOAuth2
	}
	for _, k := range r.populated() {
		if k != kind {
			return fmt.Errorf("%w: declared %q, found %q", ErrCredentialMismatch, kind, k)
		}
	}
	return nil
}

// AuthConfig is a requested (and possibly exchanged) authorization.
type AuthConfig struct {
	AuthScheme              AuthScheme         `json:"authScheme"`
	RawAuthCredential       RawAuthCredential  `json:"rawAuthCredential"`
	ExchangedAuthCredential *RawAuthCredential `json:"exchangedAuthCredential,omitempty"`
	// Extensions holds keys such as credentialKey that must be echoed back.
	Extensions map[string]any `json:"-"`
}

type authConfigFields AuthConfig

var authConfigSchema = schemaOf[authConfigFields]()

// MarshalJSON writes the known fields followed by Extensions.
func (a AuthConfig) MarshalJSON() ([]byte, error) {
	return authConfigSchema.encode(authConfigFields(a), a.Extensions)
}

// UnmarshalJSON keeps keys outside the known fields in Extensions.
func (a *AuthConfig) UnmarshalJSON(data []byte) error {
	var f authConfigFields
	ext, err := authConfigSchema.decode(data, &f)
	if err != nil {
		return err
	}
	*a = AuthConfig(f)
	a.Extensions = ext
	return nil
}
