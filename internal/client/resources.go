package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/voipops-io/pbxapi-client/internal/constants"
	"github.com/voipops-io/pbxapi-client/internal/http"
	"github.com/voipops-io/pbxapi-client/pkg/pbxapi"
)

// Get implements pbxapi.ResourceOperations.Get.
func (c *Client) Get(ctx context.Context, resource, id string, params *pbxapi.QueryParams) (*pbxapi.Document, error) {
	if resource == "" {
		return nil, pbxapi.ErrResourceRequired
	}

	if id == "" {
		return nil, pbxapi.ErrIDRequired
	}

	resp, err := c.httpClient.Get(ctx, resourcePath(resource, id), queryValues(params))
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", resource, err)
	}

	return c.document(resp), nil
}

// List implements pbxapi.ResourceOperations.List.
func (c *Client) List(ctx context.Context, resource string, params *pbxapi.QueryParams) (*pbxapi.Document, error) {
	if resource == "" {
		return nil, pbxapi.ErrResourceRequired
	}

	resp, err := c.httpClient.Get(ctx, resourcePath(resource), queryValues(params))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", resource, err)
	}

	return c.document(resp), nil
}

// Create implements pbxapi.ResourceOperations.Create. The mutated document
// is returned even when the follow-up reload fails; the error reports the
// reload failure without rolling anything back.
func (c *Client) Create(ctx context.Context, resource string, data map[string]interface{}, opts *pbxapi.MutateOptions) (*pbxapi.Document, error) {
	if resource == "" {
		return nil, pbxapi.ErrResourceRequired
	}

	if len(data) == 0 {
		return nil, pbxapi.ErrPayloadRequired
	}

	resp, err := c.httpClient.Post(ctx, resourcePath(resource), data)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", resource, err)
	}

	return c.reloadAfterMutation(ctx, resource, c.document(resp), opts)
}

// Update implements pbxapi.ResourceOperations.Update. Reload semantics match
// Create.
func (c *Client) Update(ctx context.Context, resource, id string, data map[string]interface{}, opts *pbxapi.MutateOptions) (*pbxapi.Document, error) {
	if resource == "" {
		return nil, pbxapi.ErrResourceRequired
	}

	if id == "" {
		return nil, pbxapi.ErrIDRequired
	}

	if len(data) == 0 {
		return nil, pbxapi.ErrPayloadRequired
	}

	resp, err := c.httpClient.Put(ctx, resourcePath(resource, id), data)
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", resource, err)
	}

	return c.reloadAfterMutation(ctx, resource, c.document(resp), opts)
}

// Delete implements pbxapi.ResourceOperations.Delete. Multiple ids are sent
// comma-joined in a single request. Reload semantics match Create.
func (c *Client) Delete(ctx context.Context, resource string, ids []string, opts *pbxapi.MutateOptions) (*pbxapi.Document, error) {
	if resource == "" {
		return nil, pbxapi.ErrResourceRequired
	}

	if len(ids) == 0 {
		return nil, pbxapi.ErrIDRequired
	}

	escaped := make([]string, 0, len(ids))

	for _, id := range ids {
		if id == "" {
			return nil, pbxapi.ErrIDRequired
		}

		escaped = append(escaped, url.PathEscape(id))
	}

	path := resourcePath(resource) + "/" + strings.Join(escaped, ",")

	resp, err := c.httpClient.Delete(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("deleting %s: %w", resource, err)
	}

	return c.reloadAfterMutation(ctx, resource, c.document(resp), opts)
}

// Search implements pbxapi.ResourceOperations.Search.
func (c *Client) Search(ctx context.Context, resource, term string, params *pbxapi.QueryParams) (*pbxapi.Document, error) {
	if resource == "" {
		return nil, pbxapi.ErrResourceRequired
	}

	if term == "" {
		return nil, pbxapi.ErrSearchTermRequired
	}

	path := resourcePath(resource) + "/" + constants.SearchPathSegment + "/" + url.PathEscape(term)

	resp, err := c.httpClient.Get(ctx, path, queryValues(params))
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", resource, err)
	}

	return c.document(resp), nil
}

// Reload implements pbxapi.ResourceOperations.Reload. The reload path comes
// from configuration; a "{resource}" placeholder in it is substituted with
// the given resource name.
func (c *Client) Reload(ctx context.Context, resource string) (*pbxapi.Document, error) {
	path := c.reloadPath
	if strings.Contains(path, constants.ReloadResourcePlaceholder) {
		if resource == "" {
			return nil, pbxapi.ErrResourceRequired
		}

		path = strings.ReplaceAll(path, constants.ReloadResourcePlaceholder, resource)
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{Method: c.reloadMethod, Path: path})
	if err != nil {
		return nil, fmt.Errorf("reloading configuration: %w", err)
	}

	return c.document(resp), nil
}

// reloadAfterMutation issues the follow-up reload request for a mutation
// that already succeeded. The mutation document is always returned; a
// failed reload is reported alongside it.
func (c *Client) reloadAfterMutation(ctx context.Context, resource string, doc *pbxapi.Document, opts *pbxapi.MutateOptions) (*pbxapi.Document, error) {
	if !reloadRequested(opts) {
		return doc, nil
	}

	if c.logger != nil {
		c.logger.Debug("reloading PBX configuration", map[string]interface{}{
			"resource": resource,
		})
	}

	_, err := c.Reload(ctx, resource)
	if err != nil {
		return doc, err
	}

	return doc, nil
}

// reloadRequested resolves the reload flag, defaulting to true.
func reloadRequested(opts *pbxapi.MutateOptions) bool {
	if opts == nil || opts.Reload == nil {
		return true
	}

	return *opts.Reload
}

// document normalizes a raw response into a Document.
func (c *Client) document(resp *http.Response) *pbxapi.Document {
	return pbxapi.DecodeDocument(resp.StatusCode, resp.Body, c.excerptLimit)
}

// queryValues renders optional query parameters.
func queryValues(params *pbxapi.QueryParams) url.Values {
	if params == nil {
		return nil
	}

	return params.ToValues()
}

// resourcePath builds a resource URL path with escaped trailing segments.
func resourcePath(resource string, segments ...string) string {
	path := "/" + resource

	for _, segment := range segments {
		path += "/" + url.PathEscape(segment)
	}

	return path
}
