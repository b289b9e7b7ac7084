package pbxapi

import (
	"net/url"
	"strings"
)

// QueryParams represents query options accepted by PBX read endpoints.
type QueryParams struct {
	// Fields restricts the attributes the server returns; it is sent as one
	// comma-joined "fields" parameter.
	Fields []string
	// Extra carries additional query parameters passed through untouched.
	Extra map[string][]string
}

// NewQueryParams creates an empty QueryParams.
func NewQueryParams() *QueryParams {
	return &QueryParams{
		Extra: make(map[string][]string),
	}
}

// WithFields appends attribute names to the field filter.
func (q *QueryParams) WithFields(fields ...string) *QueryParams {
	q.Fields = append(q.Fields, fields...)

	return q
}

// WithParam appends values for an arbitrary query parameter.
func (q *QueryParams) WithParam(key string, values ...string) *QueryParams {
	if q.Extra == nil {
		q.Extra = make(map[string][]string)
	}

	q.Extra[key] = append(q.Extra[key], values...)

	return q
}

// ToValues converts the parameters to url.Values.
func (q *QueryParams) ToValues() url.Values {
	values := url.Values{}

	if len(q.Fields) > 0 {
		values.Set("fields", strings.Join(q.Fields, ","))
	}

	for key, vals := range q.Extra {
		for _, val := range vals {
			values.Add(key, val)
		}
	}

	return values
}
