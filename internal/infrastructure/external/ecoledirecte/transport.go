package ecoledirecte

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"golang.org/x/time/rate"

	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/domain/shared"
	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/infrastructure/metrics"
)

const (
	// codeOK is the provider's embedded success status.
	codeOK = 200

	// codeChallengeRequired signals that the device must pass the
	// security question before a session is issued.
	codeChallengeRequired = 250

	// emptyFormBody is what the provider expects when an endpoint takes
	// no parameters. An empty body is rejected.
	emptyFormBody = "data={}"

	domainName = "ecoledirecte"
)

// providerHeaders returns the fixed header set of every request. The
// provider fingerprints callers, the set mirrors a desktop Firefox profile
// byte for byte, including the original header name casing.
func providerHeaders(token shared.Token) http.Header {
	h := http.Header{
		"Accept":          {"application/json, text/plain, */*"},
		"Accept-language": {"fr,fr-FR;q=0.8,en-US;q=0.5,en;q=0.3"},
		"Connection":      {"keep-alive"},
		"Content-Type":    {"application/x-www-form-urlencoded"},
		"DNT":             {"1"},
		"Origin":          {"https://www.ecoledirecte.com"},
		"Referer":         {"https://www.ecoledirecte.com/"},
		"Sec-fetch-dest":  {"empty"},
		"Sec-fetch-mode":  {"cors"},
		"Sec-fetch-site":  {"same-site"},
		"Sec-GPC":         {"1"},
		"User-agent":      {"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:124.0) Gecko/20100101 Firefox/124.0"},
	}
	if !token.IsEmpty() {
		h.Set("X-Token", token.String())
	}
	return h
}

// formQuote escapes one credential value for transport inside the JSON
// form body. The provider form-decodes the body exactly once server-side,
// so values are percent-encoded with no safe characters beyond the
// unreserved set, which that decode restores verbatim.
func formQuote(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// endpointLabel reduces a request path to a low-cardinality metric label:
// the query is dropped, the .awp suffix is trimmed and segments carrying
// only an id or a date collapse to "-".
func endpointLabel(endpoint string) string {
	path, _, _ := strings.Cut(endpoint, "?")
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		seg = strings.TrimSuffix(seg, ".awp")
		if seg != "" && !strings.ContainsFunc(seg, unicode.IsLetter) {
			seg = "-"
		}
		segments[i] = seg
	}
	return strings.Join(segments, "/")
}

// snippet truncates a response body for inclusion in error messages.
func snippet(body []byte) string {
	const max = 200
	s := string(body)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// Transport performs single POST exchanges with the provider and applies
// the envelope rules. It is safe for concurrent use.
type Transport struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
	metrics    metrics.ClientMetrics
	debug      bool
}

// NewTransport creates a Transport from the client configuration.
func NewTransport(config ClientConfig) *Transport {
	config = config.withDefaults()
	return &Transport{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    config.limiter(),
		logger:     config.Logger,
		metrics:    config.Metrics,
		debug:      config.Debug,
	}
}

// Send posts one form-encoded request and decodes the provider envelope.
//
// The embedded code drives the result: 250 with no token supplied is the
// challenge-required signal and returns the envelope untouched, 200 returns
// the envelope, anything else is a transport-kind error carrying the
// provider's message. A body that is not JSON or has no code field is a
// transport-kind error as well, whatever the HTTP status said.
func (t *Transport) Send(ctx context.Context, token shared.Token, endpoint string, payload any) (*Envelope, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, shared.WrapError(domainName, "Send", shared.ErrRateLimited, "rate limiter wait aborted", err)
	}

	body := emptyFormBody
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, shared.WrapError(domainName, "Send", shared.ErrTransport, "encode form payload", err)
		}
		body = "data=" + string(encoded)
	}

	fullURL := t.baseURL + "/" + endpoint
	label := endpointLabel(endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, strings.NewReader(body))
	if err != nil {
		return nil, shared.WrapError(domainName, "Send", shared.ErrTransport, "create request", err)
	}
	req.Header = providerHeaders(token)

	if t.debug {
		t.logger.Debug("provider request", "url", fullURL, "payload", body)
	}

	start := time.Now()
	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.metrics.RecordRequest(label, "network_error", time.Since(start))
		return nil, shared.WrapError(domainName, "Send", shared.ErrTransport,
			fmt.Sprintf("request to %s failed", endpoint), err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		t.metrics.RecordRequest(label, "network_error", time.Since(start))
		return nil, shared.WrapError(domainName, "Send", shared.ErrTransport,
			fmt.Sprintf("read response from %s", endpoint), err)
	}
	duration := time.Since(start)

	var env Envelope
	if err := json.Unmarshal(respBody, &env); err != nil {
		t.metrics.RecordRequest(label, "decode_error", duration)
		return nil, shared.WrapError(domainName, "Send", shared.ErrTransport,
			fmt.Sprintf("response from %s is not JSON: %s", endpoint, snippet(respBody)), err)
	}

	if env.Code == nil {
		t.metrics.RecordRequest(label, "decode_error", duration)
		return nil, shared.NewDomainError(domainName, "Send", shared.ErrTransport,
			fmt.Sprintf("response from %s has no code field: %s", endpoint, snippet(respBody)))
	}

	if env.StatusCode() == codeChallengeRequired && token.IsEmpty() {
		t.metrics.RecordRequest(label, "challenge", duration)
		if t.debug {
			t.logger.Debug("provider response", "url", fullURL, "code", env.StatusCode())
		}
		return &env, nil
	}

	if env.StatusCode() != codeOK {
		t.metrics.RecordRequest(label, "provider_error", duration)
		return nil, shared.NewDomainError(domainName, "Send", shared.ErrTransport,
			fmt.Sprintf("%s answered code %d: %s", endpoint, env.StatusCode(), env.Message))
	}

	t.metrics.RecordRequest(label, "ok", duration)
	if t.debug {
		t.logger.Debug("provider response", "url", fullURL, "code", env.StatusCode())
	}
	return &env, nil
}
