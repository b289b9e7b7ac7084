package client

import (
	"context"

	"github.com/voipops-io/pbxapi-client/pkg/pbxapi"
)

// Do implements pbxapi.DynamicOperations.Do. It dispatches a parsed
// operation to the matching resource method:
//
//	get without id  -> List
//	get with id     -> Get
//	create          -> Create
//	update          -> Update
//	delete          -> Delete
func (c *Client) Do(ctx context.Context, op pbxapi.Operation, call pbxapi.Call) (*pbxapi.Document, error) {
	switch op.Verb {
	case pbxapi.VerbGet:
		if call.ID != "" {
			return c.Get(ctx, op.Resource, call.ID, fieldParams(call.Fields))
		}

		return c.List(ctx, op.Resource, fieldParams(call.Fields))
	case pbxapi.VerbCreate:
		return c.Create(ctx, op.Resource, call.Data, mutateOptions(call))
	case pbxapi.VerbUpdate:
		return c.Update(ctx, op.Resource, call.ID, call.Data, mutateOptions(call))
	case pbxapi.VerbDelete:
		return c.Delete(ctx, op.Resource, deleteIDs(call), mutateOptions(call))
	default:
		return nil, &pbxapi.UnknownOperationError{Name: op.Name()}
	}
}

// Resolve implements pbxapi.DynamicOperations.Resolve. The returned callable
// stays bound to the parsed verb and resource for its lifetime.
func (c *Client) Resolve(name string) (pbxapi.BoundOperation, error) {
	op, err := pbxapi.ParseOperation(name)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, call pbxapi.Call) (*pbxapi.Document, error) {
		return c.Do(ctx, op, call)
	}, nil
}

// fieldParams builds query parameters for a field filter.
func fieldParams(fields []string) *pbxapi.QueryParams {
	if len(fields) == 0 {
		return nil
	}

	return pbxapi.NewQueryParams().WithFields(fields...)
}

// mutateOptions carries an explicit reload flag through to the resource
// layer, leaving the default in place when the call does not set one.
func mutateOptions(call pbxapi.Call) *pbxapi.MutateOptions {
	if call.Reload == nil {
		return nil
	}

	return &pbxapi.MutateOptions{Reload: call.Reload}
}

// deleteIDs merges the single and multi id forms of a call.
func deleteIDs(call pbxapi.Call) []string {
	if len(call.IDs) > 0 {
		return call.IDs
	}

	if call.ID != "" {
		return []string{call.ID}
	}

	return nil
}
