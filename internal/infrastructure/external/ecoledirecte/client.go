// Package ecoledirecte implements the École Directe API client.
// This package handles the full provider conversation: the two-step login
// handshake with its security-question challenge, and the authenticated
// fetches for homework, grades and timetable data.
package ecoledirecte

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/domain/challenge"
	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/domain/schoolwork"
	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/domain/session"
	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/domain/shared"
	"github.com/ecoledirecte-hub/ecoledirecte-go/internal/infrastructure/metrics"
	"github.com/ecoledirecte-hub/ecoledirecte-go/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the École Directe API client.
type ClientConfig struct {
	// BaseURL is the provider API base URL
	BaseURL string

	// APIVersion is the value of the "v" query parameter every endpoint takes
	APIVersion string

	// Timeout is the HTTP request timeout
	Timeout time.Duration

	// RateLimit caps outbound calls per second. Zero or negative
	// disables pacing.
	RateLimit float64

	// RateLimitBurst is the token-bucket burst size when pacing is on
	RateLimitBurst int

	// Logger for structured logging
	Logger *slog.Logger

	// Metrics receives request and handshake outcome observations
	Metrics metrics.ClientMetrics

	// Sanitizer cleans provider rich-text fields before they reach the
	// host. Nil keeps the fields verbatim.
	Sanitizer *Sanitizer

	// Debug enables request/response payload logging
	Debug bool
}

// DefaultClientConfig returns sensible defaults pointing at the production
// provider endpoint.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:        "https://api.ecoledirecte.com/v3",
		APIVersion:     "4.55.0",
		Timeout:        120 * time.Second,
		RateLimit:      1,
		RateLimitBurst: 3,
		Sanitizer:      NewSanitizer(),
	}
}

// withDefaults fills in the zero-valued fields a caller left unset.
func (c ClientConfig) withDefaults() ClientConfig {
	if c.BaseURL == "" {
		c.BaseURL = "https://api.ecoledirecte.com/v3"
	}
	if c.APIVersion == "" {
		c.APIVersion = "4.55.0"
	}
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Metrics == nil {
		c.Metrics = metrics.NewNop()
	}
	return c
}

// limiter builds the outbound pacer. Pacing off means an always-ready
// limiter rather than a nil check at every call site.
func (c ClientConfig) limiter() *rate.Limiter {
	if c.RateLimit <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := c.RateLimitBurst
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(c.RateLimit), burst)
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// challengeRetryBudget is how many security-question attempts one login may
// spend before giving up and asking the operator to curate the answer store.
const challengeRetryBudget = 5

// Client is the high-level École Directe client. It owns a Transport for
// the wire conversation, a Mapper for decoding payloads, the challenge
// answer store, and the event bus new questions are announced on.
type Client struct {
	config    ClientConfig
	transport *Transport
	mapper    *Mapper
	store     challenge.Store
	bus       shared.EventPublisher
	logger    *slog.Logger
	metrics   metrics.ClientMetrics
}

// NewClient creates a Client. The store holds the curated answers for the
// provider's security questions; without one every challenged login fails.
// The bus may be nil when the host does not care about new questions.
func NewClient(config ClientConfig, store challenge.Store, bus shared.EventPublisher) *Client {
	config = config.withDefaults()
	return &Client{
		config:    config,
		transport: NewTransport(config),
		mapper:    NewMapper(config.Sanitizer),
		store:     store,
		bus:       bus,
		logger:    config.Logger,
		metrics:   config.Metrics,
	}
}

// endpoint appends the API version to a bare path.
func (c *Client) endpoint(path string) string {
	return path + "?v=" + c.config.APIVersion
}

// verbEndpoint appends the action verb and the API version to a bare path.
func (c *Client) verbEndpoint(path, verb string) string {
	return path + "?verbe=" + verb + "&v=" + c.config.APIVersion
}

// ══════════════════════════════════════════════════════════════════════════════
// AUTHENTICATION
// ══════════════════════════════════════════════════════════════════════════════

// Login authenticates against the provider and returns an established
// session listing the reachable students.
//
// A challenged login is resolved transparently from the answer store. Two
// failure kinds keep their identity because the host must react to them:
// challenge-kind (retry budget spent, the operator has to curate the store)
// and cache-kind (the store itself is unusable). Everything else, wrong
// password included, folds into a single unavailable-kind error.
func (c *Client) Login(ctx context.Context, username, password string) (*session.Session, error) {
	creds, err := shared.NewCredentials(username, password)
	if err != nil {
		c.metrics.RecordLogin("invalid_input")
		return nil, err
	}

	sess, err := c.login(ctx, creds)
	switch {
	case err == nil:
		c.metrics.RecordLogin("ok")
		c.logger.Info("login succeeded",
			"username", creds.Username,
			"students", len(sess.Students))
		return sess, nil
	case shared.IsChallenge(err):
		c.metrics.RecordLogin("challenge_unresolved")
		c.logger.Warn("login blocked by security question",
			"username", creds.Username,
			"error", err)
		return nil, err
	case shared.IsCache(err):
		c.metrics.RecordLogin("cache_error")
		c.logger.Error("challenge answer store unusable",
			"username", creds.Username,
			"error", err)
		return nil, err
	default:
		c.metrics.RecordLogin("unavailable")
		c.logger.Error("login failed",
			"username", creds.Username,
			"error", err)
		return nil, shared.WrapError(domainName, "Login", shared.ErrUnavailable,
			"authentication unavailable", err)
	}
}

// login runs the wire handshake: a first login call, challenge resolution
// when the provider demands it, then the second login call carrying the
// verification pair.
func (c *Client) login(ctx context.Context, creds shared.Credentials) (*session.Session, error) {
	payload := loginRequest{
		Identifiant: formQuote(creds.Username),
		Motdepasse:  formQuote(creds.Password),
	}

	env, err := c.transport.Send(ctx, "", c.endpoint("login.awp"), payload)
	if err != nil {
		return nil, err
	}

	if env.StatusCode() == codeChallengeRequired {
		pair, err := c.resolveChallenge(ctx, shared.Token(env.Token), creds.Username)
		if err != nil {
			return nil, err
		}
		payload.FA = []verificationTokens{*pair}
		env, err = c.transport.Send(ctx, "", c.endpoint("login.awp"), payload)
		if err != nil {
			return nil, err
		}
	}

	return c.mapper.SessionFromLogin(env)
}

// resolveChallenge answers the provider's security question from the
// persisted answer store and returns the verification pair to repeat the
// login with.
//
// Each pass through the loop burns one attempt from the retry budget,
// whatever happened during it. Three things can happen per pass: the store
// knows a confirmed answer and the provider accepts it (done), the provider
// rejects it or the store has the question without a confirmed answer
// (retry), or the question has never been seen, in which case its candidate
// answers are persisted and announced on the bus so the operator can pick
// one (retry). A spent budget is a challenge-kind error.
func (c *Client) resolveChallenge(ctx context.Context, token shared.Token, username string) (*verificationTokens, error) {
	if c.store == nil {
		return nil, shared.ErrAnswerStoreMissing
	}

	answers, err := c.store.Load(ctx)
	if err != nil {
		return nil, err
	}

	for remaining := challengeRetryBudget; remaining > 0; remaining-- {
		question, propositions, err := c.fetchChallenge(ctx, token)
		if err != nil {
			return nil, err
		}

		entry, known := answers.Lookup(question)
		switch {
		case known && entry.IsAnswered():
			pair, err := c.submitAnswer(ctx, token, challenge.EncodeAnswer(entry.Confirmed))
			if err != nil {
				return nil, err
			}
			if pair != nil {
				return pair, nil
			}
			c.metrics.RecordChallengeRejection()
			c.logger.Warn("provider rejected the stored answer",
				"question", question,
				"answer", entry.Confirmed,
				"remaining", remaining-1)

		case known:
			c.logger.Warn("question known but no answer confirmed yet",
				"question", question,
				"candidates", len(entry.Candidates),
				"remaining", remaining-1)

		default:
			if err := c.store.RecordCandidates(ctx, question, propositions); err != nil {
				return nil, err
			}
			answers[question] = challenge.Entry{Candidates: propositions}
			c.announceQuestion(username, question)
			c.metrics.RecordChallengePrompt()
			c.logger.Warn("new security question recorded, waiting for the operator to confirm an answer",
				"question", question,
				"remaining", remaining-1)
		}
	}

	return nil, shared.ErrRetryBudgetSpent
}

// fetchChallenge pulls the current security question and decodes it and its
// candidate answers from their base64 wrapping. A response without a
// question is a transport fault, the provider just told us one is pending.
func (c *Client) fetchChallenge(ctx context.Context, token shared.Token) (string, []string, error) {
	env, err := c.transport.Send(ctx, token, c.verbEndpoint("connexion/doubleauth.awp", "get"), nil)
	if err != nil {
		return "", nil, err
	}
	if !env.HasData() {
		return "", nil, shared.NewDomainError(domainName, "Login", shared.ErrTransport,
			"challenge fetch returned no question")
	}

	var dto challengeDTO
	if err := json.Unmarshal(env.Data, &dto); err != nil {
		return "", nil, shared.WrapError(domainName, "Login", shared.ErrTransport,
			"decode challenge payload", err)
	}

	question, err := challenge.DecodeText(dto.Question)
	if err != nil {
		return "", nil, shared.WrapError(domainName, "Login", shared.ErrTransport,
			"decode challenge question", err)
	}
	propositions := make([]string, 0, len(dto.Propositions))
	for _, proposition := range dto.Propositions {
		decoded, err := challenge.DecodeText(proposition)
		if err != nil {
			return "", nil, shared.WrapError(domainName, "Login", shared.ErrTransport,
				"decode challenge proposition", err)
		}
		propositions = append(propositions, decoded)
	}
	return question, propositions, nil
}

// submitAnswer posts one base64-encoded answer. A well-formed response
// without a complete cn/cv pair is not an error, it is the provider saying
// no; the caller treats nil as a rejection.
func (c *Client) submitAnswer(ctx context.Context, token shared.Token, encodedAnswer string) (*verificationTokens, error) {
	payload := challengeAnswer{Choix: encodedAnswer}
	env, err := c.transport.Send(ctx, token, c.verbEndpoint("connexion/doubleauth.awp", "post"), payload)
	if err != nil {
		return nil, err
	}
	if !env.HasData() {
		return nil, nil
	}

	var pair verificationTokens
	if err := json.Unmarshal(env.Data, &pair); err != nil {
		return nil, shared.WrapError(domainName, "Login", shared.ErrTransport,
			"decode verification tokens", err)
	}
	if pair.CN == "" || pair.CV == "" {
		return nil, nil
	}
	return &pair, nil
}

// announceQuestion publishes the new-question event so the host can surface
// it to the operator. Publishing is best effort, a broken bus must not
// abort a login that is otherwise proceeding.
func (c *Client) announceQuestion(username, question string) {
	if c.bus == nil {
		return
	}
	event := shared.NewChallengeQuestionEvent(username, question)
	if err := c.bus.Publish(event); err != nil {
		c.logger.Error("publish challenge question event",
			"question", question,
			"error", err)
	}
}

// CheckCredentials probes whether the credentials are accepted by the
// provider without needing an established session. A pending security
// question still counts as valid: the provider only challenges credentials
// it has already accepted. Cache-kind errors propagate unchanged, the host
// has to fix its configuration before any answer is meaningful.
func (c *Client) CheckCredentials(ctx context.Context, username, password string) (bool, error) {
	_, err := c.Login(ctx, username, password)
	switch {
	case err == nil:
		return true, nil
	case shared.IsChallenge(err):
		return true, nil
	case shared.IsCache(err):
		return false, err
	default:
		return false, nil
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SCHOOL DATA
// ══════════════════════════════════════════════════════════════════════════════

// GetHomeworksByDate returns the homework due on a single day.
func (c *Client) GetHomeworksByDate(ctx context.Context, sess *session.Session, student session.Student, date time.Time) ([]schoolwork.Homework, error) {
	const op = "GetHomeworksByDate"
	day := timeutil.FormatDate(date)
	path := fmt.Sprintf("Eleves/%d/cahierdetexte/%s.awp", student.ID, day)
	data, err := c.fetchData(ctx, op, sess, c.verbEndpoint(path, "get"), nil)
	if err != nil || data == nil {
		return nil, err
	}
	return c.mapper.HomeworksForDate(data, day)
}

// GetHomeworks returns every homework currently in the student's diary,
// whatever day it is due.
func (c *Client) GetHomeworks(ctx context.Context, sess *session.Session, student session.Student) ([]schoolwork.Homework, error) {
	const op = "GetHomeworks"
	path := fmt.Sprintf("Eleves/%d/cahierdetexte.awp", student.ID)
	data, err := c.fetchData(ctx, op, sess, c.verbEndpoint(path, "get"), nil)
	if err != nil || data == nil {
		return nil, err
	}
	return c.mapper.HomeworksFromDiary(data)
}

// GetGrades returns the grades recorded for a school year.
func (c *Client) GetGrades(ctx context.Context, sess *session.Session, student session.Student, year shared.SchoolYear) ([]schoolwork.Grade, error) {
	const op = "GetGrades"
	path := fmt.Sprintf("eleves/%d/notes.awp", student.ID)
	payload := gradesRequest{AnneeScolaire: year.String()}
	data, err := c.fetchData(ctx, op, sess, c.verbEndpoint(path, "get"), payload)
	if err != nil || data == nil {
		return nil, err
	}
	return c.mapper.GradesFromData(data)
}

// GetLessons returns the timetable entries for an inclusive day range.
func (c *Client) GetLessons(ctx context.Context, sess *session.Session, student session.Student, dates shared.DateRange) ([]schoolwork.Lesson, error) {
	const op = "GetLessons"
	path := fmt.Sprintf("E/%d/emploidutemps.awp", student.ID)
	payload := lessonsRequest{
		DateDebut: timeutil.FormatDate(dates.Start),
		DateFin:   timeutil.FormatDate(dates.End),
		AvecTrous: false,
	}
	data, err := c.fetchData(ctx, op, sess, c.verbEndpoint(path, "get"), payload)
	if err != nil || data == nil {
		return nil, err
	}
	return c.mapper.LessonsFromData(data)
}

// fetchData runs one authenticated round-trip and hands back the envelope's
// data field. A response without data is not a fault, the provider answers
// that way when there is simply nothing to report; the caller gets nil.
func (c *Client) fetchData(ctx context.Context, op string, sess *session.Session, endpoint string, payload any) (json.RawMessage, error) {
	if sess == nil || sess.Token.IsEmpty() {
		return nil, shared.NewDomainError(domainName, op, shared.ErrInvalidInput,
			"an established session is required")
	}

	env, err := c.transport.Send(ctx, sess.Token, endpoint, payload)
	if err != nil {
		return nil, err
	}
	if !env.HasData() {
		c.metrics.RecordEmptyResponse(op)
		c.logger.Warn("provider returned no data", "op", op)
		return nil, nil
	}
	return env.Data, nil
}
