package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Validation is the service's verdict on whether a word derives from a root.
type Validation struct {
	Valid  bool   `json:"valid"`
	Scheme string `json:"scheme,omitempty"`
}

// Analysis is the service's decomposition of a word.
type Analysis struct {
	Found  bool   `json:"found"`
	Root   string `json:"root,omitempty"`
	Scheme string `json:"scheme,omitempty"`
}

// Generate applies scheme to root and returns the produced word.
func (c *Client) Generate(ctx context.Context, root, scheme string) (string, error) {
	const op = "generate word"
	body, err := c.do(ctx, request{
		op: op, method: http.MethodPost, path: "/morphology/generate",
		body: map[string]string{"racine": root, "scheme": scheme}, subject: root,
	})
	if err != nil {
		return "", err
	}

	if !gjson.ValidBytes(body) {
		if word := strings.TrimSpace(string(body)); word != "" {
			return word, nil
		}
		return "", c.unexpected(op, root)
	}

	r := gjson.ParseBytes(body)
	for _, level := range []gjson.Result{r, r.Get("data"), r.Get("data.data")} {
		if level.Type == gjson.String && level.Str != "" {
			return level.Str, nil
		}
		for _, f := range []string{"motGenere", "word", "result", "mot"} {
			if v := level.Get(f); v.Type == gjson.String && v.Str != "" {
				return v.Str, nil
			}
		}
	}
	return "", c.unexpected(op, root)
}

// Validate asks whether word derives from root.
func (c *Client) Validate(ctx context.Context, root, word string) (Validation, error) {
	body, err := c.do(ctx, request{
		op: "validate word", method: http.MethodPost, path: "/morphology/validate",
		body: map[string]string{"racine": root, "mot": word}, subject: word,
	})
	if err != nil {
		return Validation{}, err
	}
	r := payload(body, "valid")
	return Validation{
		Valid:  r.Get("valid").Bool(),
		Scheme: name(r.Get("scheme")),
	}, nil
}

// Analyze asks which root and scheme produce word.
func (c *Client) Analyze(ctx context.Context, word string) (Analysis, error) {
	body, err := c.do(ctx, request{
		op: "analyze word", method: http.MethodPost, path: "/morphology/analyze",
		body: map[string]string{"mot": word}, subject: word,
	})
	if err != nil {
		return Analysis{}, err
	}
	r := payload(body, "found")
	a := Analysis{
		Found:  r.Get("found").Bool(),
		Scheme: name(r.Get("scheme")),
	}
	for _, f := range []string{"racine", "root"} {
		if v := name(r.Get(f)); v != "" {
			a.Root = v
			break
		}
	}
	return a, nil
}

func (c *Client) unexpected(op, subject string) error {
	return &Error{
		Op: op, Kind: KindServer, Status: http.StatusOK, Subject: subject,
		Message: "unrecognized response", BaseURL: c.baseURL,
	}
}

// payload returns the object carrying field, looking through up to two
// levels of data envelopes.
func payload(body []byte, field string) gjson.Result {
	r := gjson.ParseBytes(body)
	for _, level := range []gjson.Result{r, r.Get("data"), r.Get("data.data")} {
		if level.Get(field).Exists() {
			return level
		}
	}
	return r
}

// name reads a value that is either a plain string or an object naming
// something with nom, name or racine.
func name(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.Str
	}
	if v.IsObject() {
		for _, f := range []string{"nom", "name", "racine"} {
			if s := v.Get(f); s.Type == gjson.String {
				return s.Str
			}
		}
	}
	return ""
}
