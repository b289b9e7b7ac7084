package pbxapi

import (
	"context"
	"regexp"
)

// Verb identifies one of the four conventional CRUD verbs.
type Verb string

// Conventional CRUD verbs.
const (
	VerbGet    Verb = "get"
	VerbCreate Verb = "create"
	VerbUpdate Verb = "update"
	VerbDelete Verb = "delete"
)

// Operation pairs a CRUD verb with a target resource name. The resource is
// whatever followed the verb prefix in the operation name; it is forwarded
// to the PBX as-is and never checked against a registry.
type Operation struct {
	Verb     Verb   `json:"verb"     yaml:"verb"`
	Resource string `json:"resource" yaml:"resource"`
}

// Name renders the operation back into its conventional form, e.g.
// "get_extensions".
func (o Operation) Name() string {
	return string(o.Verb) + "_" + o.Resource
}

var operationNamePattern = regexp.MustCompile(`^(get|create|update|delete)_(.+)$`)

// ParseOperation maps a conventional operation name such as "get_extensions"
// or "delete_trunks" onto an Operation. Names outside the <verb>_<resource>
// convention fail with UnknownOperationError rather than being forwarded, so
// genuine typos surface immediately instead of as puzzling HTTP errors.
func ParseOperation(name string) (Operation, error) {
	match := operationNamePattern.FindStringSubmatch(name)
	if match == nil {
		return Operation{}, &UnknownOperationError{Name: name}
	}

	return Operation{Verb: Verb(match[1]), Resource: match[2]}, nil
}

// Call carries the arguments of a resolved operation. Each verb reads the
// fields it conventionally accepts and ignores the rest: get uses ID (empty
// means list) and Fields; create uses Data and Reload; update uses ID, Data,
// and Reload; delete uses ID or IDs and Reload.
type Call struct {
	// ID addresses a single record.
	ID string
	// IDs addresses several records at once (delete only); they are joined
	// with commas into one path segment.
	IDs []string
	// Fields restricts the attributes returned by get.
	Fields []string
	// Data is the JSON payload for create and update.
	Data map[string]interface{}
	// Reload overrides the reload-after-mutation default (true) for create,
	// update, and delete.
	Reload *bool
}

// MutateOptions adjusts create, update, and delete behavior.
type MutateOptions struct {
	// Reload controls the follow-up reload request issued after a successful
	// mutation. Nil means reload.
	Reload *bool
}

// BoundOperation is a callable bound to a (verb, resource) pair by Resolve.
type BoundOperation func(ctx context.Context, call Call) (*Document, error)

// Bool returns a pointer to v. Convenient for MutateOptions and Call fields.
func Bool(v bool) *bool {
	return &v
}

// String returns a pointer to v.
func String(v string) *string {
	return &v
}

// BoolValue dereferences v, falling back to def when v is nil.
func BoolValue(v *bool, def bool) bool {
	if v == nil {
		return def
	}

	return *v
}
