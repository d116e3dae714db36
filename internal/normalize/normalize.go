// Package normalize turns raw API payloads into the lexicon display model.
//
// The service answers in several shapes: a bare array, an object whose data
// field holds the array (possibly inside a {success, message, data}
// envelope), or a single record. The shape is resolved once here so that
// callers never probe optional fields themselves. Malformed shapes never
// produce an error; they produce an empty or partial collection.
package normalize

import (
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/papapumpkin/sarf/internal/lexicon"
)

// maxEnvelopeDepth bounds how many nested data fields are unwrapped.
const maxEnvelopeDepth = 3

// Field aliases, in lookup order.
var (
	rootTextFields   = []string{"racine", "root", "text"}
	derivationFields = []string{"derives", "derivations", "derivatives"}
	wordFields       = []string{"mot", "word", "motGenere"}
	schemeFields     = []string{"scheme", "schema", "pattern"}
	schemeNameFields = []string{"nom", "name"}
	idFields         = []string{"id", "_id"}
	createdAtFields  = []string{"createdAt", "created_at", "date"}
	usageCountFields = []string{"usageCount", "usage_count"}
)

// namespace seeds the name-based UUIDs given to records that arrive
// without an id.
var namespace = uuid.MustParse("6f1c2a4e-7b0d-5e93-9a1f-3c8d2b7e4a60")

// Classifier assigns a category to a scheme name.
type Classifier interface {
	Categorize(scheme string) lexicon.Category
}

// Normalizer converts payloads using a classifier and a clock. The clock
// supplies creation times for records that carry none.
type Normalizer struct {
	Classifier Classifier
	Now        func() time.Time
	Logger     *zap.Logger
}

// Result is a normalized root collection plus the count of records that
// were dropped because they could not satisfy the Root invariant.
type Result struct {
	Roots   []lexicon.Root
	Skipped int
}

// Roots normalizes a root listing. The order of the returned roots follows
// the payload and carries no meaning.
func (n *Normalizer) Roots(raw []byte) Result {
	var res Result
	records := records(raw)
	res.Roots = make([]lexicon.Root, 0, len(records))
	for _, rec := range records {
		root, ok := n.root(rec)
		if !ok {
			res.Skipped++
			continue
		}
		res.Roots = append(res.Roots, root)
	}
	if res.Skipped > 0 {
		n.logger().Warn("skipped malformed root records",
			zap.Int("skipped", res.Skipped), zap.Int("kept", len(res.Roots)))
	}
	return res
}

// Schemes normalizes a scheme listing. Records without a name are dropped.
func (n *Normalizer) Schemes(raw []byte) []lexicon.Scheme {
	recs := records(raw)
	out := make([]lexicon.Scheme, 0, len(recs))
	for _, rec := range recs {
		name := lexicon.Clean(firstString(rec, schemeNameFields...))
		if name == "" {
			continue
		}
		s := lexicon.Scheme{
			ID:          firstString(rec, idFields...),
			Name:        name,
			Pattern:     firstString(rec, "pattern"),
			Type:        lexicon.SchemeType(firstString(rec, "type")),
			Description: firstString(rec, "description"),
			UsageCount:  int(first(rec, usageCountFields...).Int()),
			CreatedAt:   n.timestamp(first(rec, createdAtFields...)),
			Category:    n.Classifier.Categorize(name),
		}
		if s.ID == "" {
			s.ID = uuid.NewSHA1(namespace, []byte("scheme/"+name)).String()
		}
		if s.Pattern == "" {
			s.Pattern = name
		}
		out = append(out, s)
	}
	return out
}

// Roots normalizes raw with the given classifier and the wall clock.
func Roots(raw []byte, c Classifier) []lexicon.Root {
	n := &Normalizer{Classifier: c, Now: time.Now}
	return n.Roots(raw).Roots
}

func (n *Normalizer) root(rec gjson.Result) (lexicon.Root, bool) {
	text, err := lexicon.ValidateRoot(firstString(rec, rootTextFields...))
	if err != nil {
		n.logger().Debug("dropping root record", zap.Error(err))
		return lexicon.Root{}, false
	}

	root := lexicon.Root{
		ID:        firstString(rec, idFields...),
		Text:      text,
		CreatedAt: n.timestamp(first(rec, createdAtFields...)),
	}
	if root.ID == "" {
		root.ID = uuid.NewSHA1(namespace, []byte("root/"+text)).String()
	}

	derivs := first(rec, derivationFields...)
	if derivs.IsArray() {
		items := derivs.Array()
		root.Derivations = make([]lexicon.Derivation, 0, len(items))
		for _, d := range items {
			if deriv, ok := n.derivation(text, d); ok {
				root.Derivations = append(root.Derivations, deriv)
			}
		}
	}
	return root, true
}

func (n *Normalizer) derivation(rootText string, rec gjson.Result) (lexicon.Derivation, bool) {
	if !rec.IsObject() {
		return lexicon.Derivation{}, false
	}
	word := lexicon.Clean(firstString(rec, wordFields...))
	if word == "" {
		return lexicon.Derivation{}, false
	}
	scheme := lexicon.Clean(schemeName(first(rec, schemeFields...)))

	d := lexicon.Derivation{
		ID:        firstString(rec, idFields...),
		Word:      word,
		Scheme:    scheme,
		CreatedAt: n.timestamp(first(rec, createdAtFields...)),
		Category:  n.Classifier.Categorize(scheme),
	}
	if d.ID == "" {
		d.ID = uuid.NewSHA1(namespace, []byte("derivation/"+rootText+"/"+word+"/"+scheme)).String()
	}
	return d, true
}

func (n *Normalizer) timestamp(v gjson.Result) time.Time {
	if t, ok := parseTime(v); ok {
		return t
	}
	if n.Now != nil {
		return n.Now()
	}
	return time.Now()
}

func (n *Normalizer) logger() *zap.Logger {
	if n.Logger == nil {
		return zap.NewNop()
	}
	return n.Logger
}

// records resolves the payload shape into a list of record objects.
func records(raw []byte) []gjson.Result {
	if !gjson.ValidBytes(raw) {
		return nil
	}
	return unwrap(gjson.ParseBytes(raw), 0)
}

func unwrap(v gjson.Result, depth int) []gjson.Result {
	switch {
	case v.IsArray():
		var out []gjson.Result
		for _, item := range v.Array() {
			if item.IsObject() {
				out = append(out, item)
			}
		}
		return out
	case v.IsObject():
		if data := v.Get("data"); data.Exists() && depth < maxEnvelopeDepth {
			return unwrap(data, depth+1)
		}
		if isEnvelope(v) {
			return nil
		}
		return []gjson.Result{v}
	default:
		return nil
	}
}

// isEnvelope reports whether v is a response wrapper with no payload, such
// as {"success": false, "message": "..."}.
func isEnvelope(v gjson.Result) bool {
	return v.Get("success").Exists() && !v.Get("data").Exists()
}

// schemeName accepts a scheme given as a string or as a scheme object.
func schemeName(v gjson.Result) string {
	if v.IsObject() {
		return firstString(v, schemeNameFields...)
	}
	if v.Type == gjson.String {
		return v.String()
	}
	return ""
}

func first(v gjson.Result, fields ...string) gjson.Result {
	for _, f := range fields {
		if r := v.Get(f); r.Exists() && r.Type != gjson.Null {
			return r
		}
	}
	return gjson.Result{}
}

func firstString(v gjson.Result, fields ...string) string {
	r := first(v, fields...)
	switch r.Type {
	case gjson.String, gjson.Number:
		return r.String()
	default:
		return ""
	}
}
