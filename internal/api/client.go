// Package api is the typed gateway to the dictionary REST service. It issues
// the root, scheme and morphology calls and maps every failure onto the
// *Error taxonomy. Listing calls return the raw response body; shaping it into
// the display model is the normalize package's job.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/papapumpkin/sarf/internal/lexicon"
)

// DefaultTimeout bounds every request when the caller supplies none.
const DefaultTimeout = 30 * time.Second

// maxBody caps how much of a response is read.
const maxBody = 8 << 20

// Client talks to the service rooted at BaseURL.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// New creates a Client. A zero timeout means DefaultTimeout.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// BaseURL returns the service root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// SchemeInput is the body of an add-scheme call. Type defaults to CUSTOM.
type SchemeInput struct {
	Name        string             `json:"nom"`
	Type        lexicon.SchemeType `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`
}

// ListRoots fetches every root with its derivations.
func (c *Client) ListRoots(ctx context.Context) ([]byte, error) {
	return c.do(ctx, request{op: "list roots", method: http.MethodGet, path: "/racines"})
}

// ListSchemes fetches every scheme.
func (c *Client) ListSchemes(ctx context.Context) ([]byte, error) {
	return c.do(ctx, request{op: "list schemes", method: http.MethodGet, path: "/schemes"})
}

// AddRoot creates a root.
func (c *Client) AddRoot(ctx context.Context, root string) error {
	_, err := c.mutate(ctx, request{
		op: "add root", method: http.MethodPost, path: "/racines",
		body: map[string]string{"racine": root}, subject: root,
	})
	return err
}

// UpdateRoot renames root old to renamed.
func (c *Client) UpdateRoot(ctx context.Context, old, renamed string) error {
	if err := requireSegment("update root", old); err != nil {
		return err
	}
	_, err := c.mutate(ctx, request{
		op: "update root", method: http.MethodPut, path: "/racines/" + url.PathEscape(old),
		body: map[string]string{"racine": renamed}, subject: old, conflictSubject: renamed,
	})
	return err
}

// DeleteRoot removes a root and its derivations.
func (c *Client) DeleteRoot(ctx context.Context, root string) error {
	if err := requireSegment("delete root", root); err != nil {
		return err
	}
	_, err := c.mutate(ctx, request{
		op: "delete root", method: http.MethodDelete, path: "/racines/" + url.PathEscape(root),
		subject: root,
	})
	return err
}

// AddScheme creates a scheme.
func (c *Client) AddScheme(ctx context.Context, in SchemeInput) error {
	if strings.TrimSpace(in.Name) == "" {
		return &Error{Op: "add scheme", Kind: KindValidation, Message: "scheme name is required", BaseURL: c.baseURL}
	}
	if in.Type == "" {
		in.Type = lexicon.SchemeCustom
	}
	_, err := c.mutate(ctx, request{
		op: "add scheme", method: http.MethodPost, path: "/schemes",
		body: in, subject: in.Name,
	})
	return err
}

// UpdateScheme replaces the pattern of scheme old with newPattern.
func (c *Client) UpdateScheme(ctx context.Context, old, newPattern string) error {
	if err := requireSegment("update scheme", old); err != nil {
		return err
	}
	_, err := c.mutate(ctx, request{
		op: "update scheme", method: http.MethodPut, path: "/schemes/" + url.PathEscape(old),
		body: map[string]string{"newPattern": newPattern}, subject: old, conflictSubject: newPattern,
	})
	return err
}

// DeleteScheme removes a scheme.
func (c *Client) DeleteScheme(ctx context.Context, name string) error {
	if err := requireSegment("delete scheme", name); err != nil {
		return err
	}
	_, err := c.mutate(ctx, request{
		op: "delete scheme", method: http.MethodDelete, path: "/schemes/" + url.PathEscape(name),
		subject: name,
	})
	return err
}

type request struct {
	op      string
	method  string
	path    string
	body    any
	subject string
	// conflictSubject names the value a 409 is about when it differs from
	// subject, as with renames.
	conflictSubject string
}

func requireSegment(op, s string) error {
	if strings.TrimSpace(s) == "" {
		return &Error{Op: op, Kind: KindValidation, Message: "a name is required"}
	}
	return nil
}

// mutate is do plus the envelope check: a 2xx whose body says
// {"success": false} is a failure.
func (c *Client) mutate(ctx context.Context, req request) ([]byte, error) {
	body, err := c.do(ctx, req)
	if err != nil {
		return nil, err
	}
	if !gjson.ValidBytes(body) {
		return body, nil
	}
	env := gjson.ParseBytes(body)
	if ok := env.Get("success"); ok.Exists() && !ok.Bool() {
		return nil, &Error{
			Op: req.op, Kind: KindServer, Status: http.StatusOK, Subject: req.subject,
			Message: errorMessage(body), BaseURL: c.baseURL,
		}
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, req request) ([]byte, error) {
	var payload io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("%s: encoding request: %w", req.op, err)
		}
		payload = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, payload)
	if err != nil {
		return nil, &Error{Op: req.op, Kind: KindValidation, Subject: req.subject, BaseURL: c.baseURL, Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", req.method), zap.String("path", req.path),
			zap.Duration("elapsed", time.Since(start)), zap.Error(err))
		return nil, &Error{Op: req.op, Kind: KindNetwork, Subject: req.subject, BaseURL: c.baseURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	c.logger.Debug("request",
		zap.String("method", req.method), zap.String("path", req.path),
		zap.Int("status", resp.StatusCode), zap.Duration("elapsed", time.Since(start)))
	if err != nil {
		return nil, &Error{Op: req.op, Kind: KindNetwork, Status: resp.StatusCode, Subject: req.subject, BaseURL: c.baseURL, Err: err}
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}

	e := &Error{
		Op: req.op, Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode,
		Subject: req.subject, Message: errorMessage(body), BaseURL: c.baseURL,
	}
	if e.Kind == KindConflict && req.conflictSubject != "" {
		e.Subject = req.conflictSubject
	}
	return nil, e
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict:
		return KindConflict
	default:
		return KindServer
	}
}

// errorMessage pulls a human-readable message out of an error body.
func errorMessage(body []byte) string {
	if gjson.ValidBytes(body) {
		r := gjson.ParseBytes(body)
		for _, f := range []string{"message", "error", "data.message"} {
			if v := r.Get(f); v.Type == gjson.String && v.Str != "" {
				return v.Str
			}
		}
		return ""
	}
	return truncate(strings.TrimSpace(string(body)), maxMessageBytes)
}

// maxMessageBytes caps plain-text error bodies copied into an Error.
const maxMessageBytes = 200

// truncate shortens s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
