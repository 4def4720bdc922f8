package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"bilancio/internal/core"
)

const maxBodyBytes = 64 << 10

// errBadRequest marks malformed input, as opposed to well-formed but invalid data.
var errBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// flexString accepts a JSON string or number, so amount may be sent either way.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", data)
		}
		*f = flexString(n.String())
		return nil
	}
}

// draftBody is the JSON draft. A category that is absent or null is left
// alone; an empty one clears it.
type draftBody struct {
	ID       int64       `json:"id"`
	Date     flexString  `json:"date"`
	Amount   flexString  `json:"amount"`
	Type     flexString  `json:"type"`
	Category *flexString `json:"category"`
}

func (d draftBody) draft() core.Draft {
	out := core.Draft{
		ID:     d.ID,
		Date:   string(d.Date),
		Amount: string(d.Amount),
		Type:   string(d.Type),
	}
	if d.Category != nil {
		out.Category = core.StringPtr(sanitizeInput(string(*d.Category)))
	}
	return out
}

var draftFormKeys = map[string]bool{"id": true, "date": true, "amount": true, "type": true, "category": true}

// ParseDraft reads a draft from a JSON or form-encoded body. Unknown fields
// are rejected.
func ParseDraft(r *http.Request) (core.Draft, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		return parseDraftForm(r)
	}
	var body draftBody
	if err := decodeJSON(r, &body); err != nil {
		return core.Draft{}, err
	}
	return body.draft(), nil
}

func parseDraftForm(r *http.Request) (core.Draft, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return core.Draft{}, badRequest("invalid form: %v", err)
	}
	for key := range r.PostForm {
		if !draftFormKeys[key] {
			return core.Draft{}, badRequest("unknown field %q", key)
		}
	}
	form := r.PostForm
	d := core.Draft{
		Date:   strings.TrimSpace(form.Get("date")),
		Amount: strings.TrimSpace(form.Get("amount")),
		Type:   strings.TrimSpace(form.Get("type")),
	}
	if _, ok := form["category"]; ok {
		d.Category = core.StringPtr(sanitizeInput(form.Get("category")))
	}
	if v := strings.TrimSpace(form.Get("id")); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return core.Draft{}, badRequest("invalid id %q", v)
		}
		d.ID = id
	}
	return d, nil
}

// ParseCriteriaBody reads filter criteria from a JSON body.
func ParseCriteriaBody(r *http.Request) (core.Criteria, error) {
	var c core.Criteria
	if err := decodeJSON(r, &c); err != nil {
		return core.Criteria{}, err
	}
	if c.Type != "" {
		if err := c.Type.Validate(); err != nil {
			return core.Criteria{}, err
		}
	}
	return c, nil
}

// ParseQueryCriteria reads filter criteria from the query string. Bad values
// are a malformed request.
func ParseQueryCriteria(q url.Values) (core.Criteria, error) {
	c, err := core.ParseCriteria(q)
	if err != nil {
		return core.Criteria{}, badRequest("%v", err)
	}
	return c, nil
}

// decodeJSON decodes exactly one JSON value into v.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if core.IsValidation(err) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return badRequest("empty body")
		}
		return badRequest("invalid JSON: %v", err)
	}
	if dec.More() {
		return badRequest("unexpected data after JSON body")
	}
	return nil
}

// pathID parses the {id} wildcard.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid id %q", raw)
	}
	return id, nil
}
