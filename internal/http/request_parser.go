package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

// maxBodyBytes bounds form and JSON submissions.
const maxBodyBytes = 64 << 10

var errBadID = errors.New("invalid id")

// RequestBodyParser reads a submission sent either as a form (htmx default)
// or as a JSON object (hx-ext json-enc).
type RequestBodyParser struct {
	jsonData map[string]any
	formData url.Values
}

// ParseRequestBody reads and decodes r's body once.
func ParseRequestBody(r *http.Request) (*RequestBodyParser, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("body exceeds %d bytes", maxBodyBytes)
	}

	p := &RequestBodyParser{}
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") || strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		p.jsonData = make(map[string]any)
		if trimmed == "" {
			return p, nil
		}
		if err := json.Unmarshal(body, &p.jsonData); err != nil {
			return nil, fmt.Errorf("decode json: %w", err)
		}
		return p, nil
	}

	p.formData, err = url.ParseQuery(trimmed)
	if err != nil {
		return nil, fmt.Errorf("decode form: %w", err)
	}
	return p, nil
}

// Get returns the sanitized value of key, or "" when absent.
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	return sanitizeInput(p.formData.Get(key))
}

// Bool reads a checkbox. Unchecked boxes are not submitted at all.
func (p *RequestBodyParser) Bool(key string) bool {
	switch strings.ToLower(p.Get(key)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// IsJSON reports whether the body was a JSON object.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// pathID reads the {id} route variable.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, errBadID
	}
	return id, nil
}

// sanitizeInput trims s and removes control characters except tab and
// line breaks.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}
