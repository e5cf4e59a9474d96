package ecoledirecte

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/domain/shared"
)

// testConfig keeps test output quiet and points the client at a local
// stand-in for the provider.
func testConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL: baseURL,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// capturedRequest records what the provider stand-in saw.
type capturedRequest struct {
	path        string
	query       string
	body        string
	header      http.Header
	contentType string
}

func captureServer(t *testing.T, response string, captured *[]capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		*captured = append(*captured, capturedRequest{
			path:        r.URL.Path,
			query:       r.URL.RawQuery,
			body:        string(body),
			header:      r.Header,
			contentType: r.Header.Get("Content-Type"),
		})
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSendPostsFormEncodedPayload(t *testing.T) {
	var seen []capturedRequest
	srv := captureServer(t, `{"code":200,"token":"tok","data":{"accounts":[]}}`, &seen)

	transport := NewTransport(testConfig(srv.URL))
	env, err := transport.Send(context.Background(), "", "login.awp?v=4.55.0", loginRequest{
		Identifiant: "jean",
		Motdepasse:  "secret",
	})

	require.NoError(t, err)
	assert.Equal(t, codeOK, env.StatusCode())
	assert.Equal(t, "tok", env.Token)

	require.Len(t, seen, 1)
	assert.Equal(t, "/login.awp", seen[0].path)
	assert.Equal(t, "v=4.55.0", seen[0].query)
	assert.Equal(t, `data={"identifiant":"jean","motdepasse":"secret","isRelogin":false}`, seen[0].body)
	assert.Equal(t, "application/x-www-form-urlencoded", seen[0].contentType)
}

func TestSendCarriesBrowserProfileHeaders(t *testing.T) {
	var seen []capturedRequest
	srv := captureServer(t, `{"code":200}`, &seen)

	transport := NewTransport(testConfig(srv.URL))
	_, err := transport.Send(context.Background(), "", "login.awp?v=4.55.0", nil)

	require.NoError(t, err)
	require.Len(t, seen, 1)
	header := seen[0].header
	assert.Contains(t, header.Get("User-Agent"), "Firefox")
	assert.Equal(t, "https://www.ecoledirecte.com", header.Get("Origin"))
	assert.Equal(t, "application/json, text/plain, */*", header.Get("Accept"))
	assert.Empty(t, header.Get("X-Token"))
}

func TestSendForwardsTokenHeader(t *testing.T) {
	var seen []capturedRequest
	srv := captureServer(t, `{"code":200,"data":{}}`, &seen)

	transport := NewTransport(testConfig(srv.URL))
	_, err := transport.Send(context.Background(), "session-token", "Eleves/1/cahierdetexte.awp?verbe=get&v=4.55.0", nil)

	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, "session-token", seen[0].header.Get("X-Token"))
}

func TestSendNilPayloadSendsEmptyForm(t *testing.T) {
	var seen []capturedRequest
	srv := captureServer(t, `{"code":200}`, &seen)

	transport := NewTransport(testConfig(srv.URL))
	_, err := transport.Send(context.Background(), "", "connexion/doubleauth.awp?verbe=get&v=4.55.0", nil)

	require.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, "data={}", seen[0].body)
}

func TestSendChallengeSignalPassesThrough(t *testing.T) {
	var seen []capturedRequest
	srv := captureServer(t, `{"code":250,"token":"temp","message":"Vous devez renseigner un code QCM"}`, &seen)

	transport := NewTransport(testConfig(srv.URL))
	env, err := transport.Send(context.Background(), "", "login.awp?v=4.55.0", nil)

	require.NoError(t, err)
	assert.Equal(t, codeChallengeRequired, env.StatusCode())
	assert.Equal(t, "temp", env.Token)
}

func TestSendChallengeCodeWithTokenIsError(t *testing.T) {
	var seen []capturedRequest
	srv := captureServer(t, `{"code":250,"message":"QCM requis"}`, &seen)

	transport := NewTransport(testConfig(srv.URL))
	env, err := transport.Send(context.Background(), "already-authenticated", "login.awp?v=4.55.0", nil)

	assert.Nil(t, env)
	assert.True(t, shared.IsTransport(err))
}

func TestSendProviderErrorCarriesMessage(t *testing.T) {
	var seen []capturedRequest
	srv := captureServer(t, `{"code":505,"message":"Identifiant et mot de passe invalides !"}`, &seen)

	transport := NewTransport(testConfig(srv.URL))
	env, err := transport.Send(context.Background(), "", "login.awp?v=4.55.0", nil)

	assert.Nil(t, env)
	require.Error(t, err)
	assert.True(t, shared.IsTransport(err))
	assert.Contains(t, err.Error(), "Identifiant et mot de passe invalides !")
	assert.Contains(t, err.Error(), "505")
}

func TestSendRejectsNonJSONBody(t *testing.T) {
	var seen []capturedRequest
	srv := captureServer(t, `<html>maintenance</html>`, &seen)

	transport := NewTransport(testConfig(srv.URL))
	env, err := transport.Send(context.Background(), "", "login.awp?v=4.55.0", nil)

	assert.Nil(t, env)
	assert.True(t, shared.IsTransport(err))
}

func TestSendRejectsEnvelopeWithoutCode(t *testing.T) {
	var seen []capturedRequest
	srv := captureServer(t, `{"token":"tok","data":{}}`, &seen)

	transport := NewTransport(testConfig(srv.URL))
	env, err := transport.Send(context.Background(), "", "login.awp?v=4.55.0", nil)

	assert.Nil(t, env)
	assert.True(t, shared.IsTransport(err))
}

func TestSendNetworkFailureIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	transport := NewTransport(testConfig(srv.URL))
	env, err := transport.Send(context.Background(), "", "login.awp?v=4.55.0", nil)

	assert.Nil(t, env)
	assert.True(t, shared.IsTransport(err))
}

func TestFormQuoteEncodesCredentialValues(t *testing.T) {
	assert.Equal(t, "mot%20de%20p%40sse%2B", formQuote("mot de p@sse+"))
	assert.Equal(t, "plain", formQuote("plain"))
	assert.Equal(t, "a%2Fb", formQuote("a/b"))
}

func TestEndpointLabelCollapsesDynamicSegments(t *testing.T) {
	assert.Equal(t, "login", endpointLabel("login.awp?gtk=1&v=4.55.0"))
	assert.Equal(t, "connexion/doubleauth", endpointLabel("connexion/doubleauth.awp?verbe=post&v=4.55.0"))
	assert.Equal(t, "Eleves/-/cahierdetexte", endpointLabel("Eleves/4242/cahierdetexte.awp?verbe=get&v=4.55.0"))
	assert.Equal(t, "Eleves/-/cahierdetexte/-", endpointLabel("Eleves/4242/cahierdetexte/2025-09-01.awp?verbe=get&v=4.55.0"))
	assert.Equal(t, "E/-/emploidutemps", endpointLabel("E/4242/emploidutemps.awp?verbe=get&v=4.55.0"))
}

func TestEnvelopeHasData(t *testing.T) {
	assert.False(t, (&Envelope{}).HasData())
	assert.False(t, (&Envelope{Data: []byte("null")}).HasData())
	assert.False(t, (&Envelope{Data: []byte("  null  ")}).HasData())
	assert.True(t, (&Envelope{Data: []byte(`{}`)}).HasData())
	assert.True(t, (&Envelope{Data: []byte(`[]`)}).HasData())
}
