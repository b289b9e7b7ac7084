package pbxapi

import (
	"bytes"
	"encoding/json"
)

// DefaultExcerptLimit bounds the diagnostic excerpt kept from non-JSON
// response bodies when no limit is configured.
const DefaultExcerptLimit = 200

// Document is the normalized result of a PBX API call. The API has no
// machine-readable schema, so JSON bodies are decoded generically into Body;
// bodies that are not JSON (HTML error pages from the embedded web server are
// the usual case) never fail decoding; they produce a Document with NonJSON
// set and a bounded Excerpt of the raw text for diagnostics.
type Document struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int `json:"status_code" yaml:"status_code"`
	// Body holds the decoded JSON value: map[string]interface{} for objects,
	// []interface{} for arrays, or a scalar. Nil for empty bodies.
	Body interface{} `json:"body,omitempty" yaml:"body,omitempty"`
	// NonJSON marks bodies that failed strict JSON decoding.
	NonJSON bool `json:"non_json,omitempty" yaml:"non_json,omitempty"`
	// Excerpt is a bounded prefix of a non-JSON body.
	Excerpt string `json:"excerpt,omitempty" yaml:"excerpt,omitempty"`
}

// DecodeDocument normalizes a raw response body. Decoding never fails: bodies
// that are not valid JSON degrade to a Document carrying the status code, the
// NonJSON marker, and an excerpt truncated to excerptLimit characters
// (DefaultExcerptLimit when excerptLimit is zero or negative).
func DecodeDocument(statusCode int, body []byte, excerptLimit int) *Document {
	doc := &Document{StatusCode: statusCode}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return doc
	}

	var value interface{}

	err := json.Unmarshal(trimmed, &value)
	if err != nil {
		if excerptLimit <= 0 {
			excerptLimit = DefaultExcerptLimit
		}

		doc.NonJSON = true
		doc.Excerpt = Truncate(string(body), excerptLimit)

		return doc
	}

	doc.Body = value

	return doc
}

// Object returns the body as a JSON object, or nil when the body is not one.
func (d *Document) Object() map[string]interface{} {
	obj, ok := d.Body.(map[string]interface{})
	if !ok {
		return nil
	}

	return obj
}

// Array returns the body as a JSON array, or nil when the body is not one.
func (d *Document) Array() []interface{} {
	arr, ok := d.Body.([]interface{})
	if !ok {
		return nil
	}

	return arr
}

// Records flattens the body into a slice of objects: an array body yields its
// object elements, an object body yields itself as the single record. Useful
// for rendering list and get responses uniformly.
func (d *Document) Records() []map[string]interface{} {
	switch body := d.Body.(type) {
	case []interface{}:
		records := make([]map[string]interface{}, 0, len(body))

		for _, item := range body {
			if obj, ok := item.(map[string]interface{}); ok {
				records = append(records, obj)
			}
		}

		return records
	case map[string]interface{}:
		return []map[string]interface{}{body}
	default:
		return nil
	}
}

// Field returns a top-level field of an object body, or nil.
func (d *Document) Field(key string) interface{} {
	obj := d.Object()
	if obj == nil {
		return nil
	}

	return obj[key]
}

// StringField returns a top-level string field of an object body, or "".
func (d *Document) StringField(key string) string {
	str, ok := d.Field(key).(string)
	if !ok {
		return ""
	}

	return str
}

// Truncate bounds s to max characters.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}

	return s[:max]
}
