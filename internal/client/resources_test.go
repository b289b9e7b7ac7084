package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voipops-io/pbxapi-client/pkg/pbxapi"
)

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_ResourceOperations(t *testing.T) {
	RunOperationTests(t, []TestOperation{
		{
			Name: "get extension by id",
			Invoke: func(ctx context.Context, c *Client) (*pbxapi.Document, error) {
				return c.Get(ctx, "extensions", "1001", nil)
			},
			ExpectedPath:   "/extensions/1001",
			ExpectedMethod: "GET",
			Response:       map[string]string{"extension": "1001", "name": "Front Desk"},
		},
		{
			Name: "get with field filter",
			Invoke: func(ctx context.Context, c *Client) (*pbxapi.Document, error) {
				return c.Get(ctx, "extensions", "1001", pbxapi.NewQueryParams().WithFields("extension", "name"))
			},
			ExpectedPath:   "/extensions/1001",
			ExpectedMethod: "GET",
			ExpectedQuery:  "fields=extension%2Cname",
			Response:       map[string]string{"extension": "1001", "name": "Front Desk"},
		},
		{
			Name: "list trunks",
			Invoke: func(ctx context.Context, c *Client) (*pbxapi.Document, error) {
				return c.List(ctx, "trunks", nil)
			},
			ExpectedPath:   "/trunks",
			ExpectedMethod: "GET",
			Response:       []map[string]string{{"trunk": "SIP/provider"}},
		},
		{
			Name: "create extension",
			Invoke: func(ctx context.Context, c *Client) (*pbxapi.Document, error) {
				return c.Create(ctx, "extensions", map[string]interface{}{
					"extension": "2000",
					"name":      "John",
				}, nil)
			},
			ExpectedPath:   "/extensions",
			ExpectedMethod: "POST",
			StatusCode:     http.StatusCreated,
			Response:       map[string]string{"status": "created"},
		},
		{
			Name: "update extension",
			Invoke: func(ctx context.Context, c *Client) (*pbxapi.Document, error) {
				return c.Update(ctx, "extensions", "2000", map[string]interface{}{
					"name": "John Doe",
				}, nil)
			},
			ExpectedPath:   "/extensions/2000",
			ExpectedMethod: "PUT",
			Response:       map[string]string{"status": "updated"},
		},
		{
			Name: "delete extension",
			Invoke: func(ctx context.Context, c *Client) (*pbxapi.Document, error) {
				return c.Delete(ctx, "extensions", []string{"2000"}, nil)
			},
			ExpectedPath:   "/extensions/2000",
			ExpectedMethod: "DELETE",
			Response:       map[string]string{"status": "deleted"},
		},
		{
			Name: "delete multiple ids in one request",
			Invoke: func(ctx context.Context, c *Client) (*pbxapi.Document, error) {
				return c.Delete(ctx, "extensions", []string{"2000", "2001", "2002"}, nil)
			},
			ExpectedPath:   "/extensions/2000,2001,2002",
			ExpectedMethod: "DELETE",
			Response:       map[string]string{"status": "deleted"},
		},
		{
			Name: "search queue members",
			Invoke: func(ctx context.Context, c *Client) (*pbxapi.Document, error) {
				return c.Search(ctx, "queues", "support", nil)
			},
			ExpectedPath:   "/queues/search/support",
			ExpectedMethod: "GET",
			Response:       []map[string]string{{"queue": "400", "name": "support"}},
		},
		{
			Name: "search term is path escaped",
			Invoke: func(ctx context.Context, c *Client) (*pbxapi.Document, error) {
				return c.Search(ctx, "extensions", "john smith", nil)
			},
			ExpectedPath:   "/extensions/search/john smith",
			ExpectedMethod: "GET",
			Response:       []map[string]string{},
		},
		{
			Name: "api error carries excerpt",
			Invoke: func(ctx context.Context, c *Client) (*pbxapi.Document, error) {
				return c.Get(ctx, "extensions", "9999", nil)
			},
			ExpectedPath: "/extensions/9999",
			StatusCode:   http.StatusNotFound,
			Response:     map[string]string{"error": "Extension not found"},
			WantErr:      true,
			ErrMessage:   "Extension not found",
		},
		{
			Name: "missing resource",
			Invoke: func(ctx context.Context, c *Client) (*pbxapi.Document, error) {
				return c.Get(ctx, "", "1001", nil)
			},
			WantErr:    true,
			ErrMessage: "resource name is required",
		},
		{
			Name: "missing id",
			Invoke: func(ctx context.Context, c *Client) (*pbxapi.Document, error) {
				return c.Get(ctx, "extensions", "", nil)
			},
			WantErr:    true,
			ErrMessage: "resource id is required",
		},
		{
			Name: "missing payload",
			Invoke: func(ctx context.Context, c *Client) (*pbxapi.Document, error) {
				return c.Create(ctx, "extensions", nil, nil)
			},
			WantErr:    true,
			ErrMessage: "payload is required",
		},
		{
			Name: "missing search term",
			Invoke: func(ctx context.Context, c *Client) (*pbxapi.Document, error) {
				return c.Search(ctx, "extensions", "", nil)
			},
			WantErr:    true,
			ErrMessage: "search term is required",
		},
	})
}

func TestClient_Get_NonJSONBody(t *testing.T) {
	RunOperationTests(t, []TestOperation{
		{
			Name: "html body becomes non-JSON document",
			Invoke: func(ctx context.Context, c *Client) (*pbxapi.Document, error) {
				doc, err := c.Get(ctx, "extensions", "1001", nil)
				if err != nil {
					return doc, err
				}

				if !doc.NonJSON {
					return doc, ErrTestSomeError
				}

				return doc, nil
			},
			ExpectedPath: "/extensions/1001",
			RawResponse:  "<html><body>Unexpected login redirect</body></html>",
		},
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_ReloadAfterMutation(t *testing.T) {
	t.Run("create issues exactly one reload", func(t *testing.T) {
		server := NewCountingServer(t, map[string]func(http.ResponseWriter, *http.Request){
			"/extensions": JSONHandler(http.StatusOK, map[string]string{"status": "created"}),
			"/reload":     JSONHandler(http.StatusOK, map[string]string{"status": "reloaded"}),
		})
		defer server.Close()

		client := NewTestClient(server.URL)

		doc, err := client.Create(context.Background(), "extensions", map[string]interface{}{"extension": "2000"}, nil)
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, 1, server.Count("/extensions"))
		assert.Equal(t, 1, server.Count("/reload"))
	})

	t.Run("explicit reload false skips the follow-up", func(t *testing.T) {
		server := NewCountingServer(t, map[string]func(http.ResponseWriter, *http.Request){
			"/extensions": JSONHandler(http.StatusOK, map[string]string{"status": "created"}),
		})
		defer server.Close()

		client := NewTestClient(server.URL)

		_, err := client.Create(context.Background(), "extensions", map[string]interface{}{"extension": "2000"},
			&pbxapi.MutateOptions{Reload: pbxapi.Bool(false)})
		require.NoError(t, err)
		assert.Equal(t, 0, server.Count("/reload"))
	})

	t.Run("failed mutation issues no reload", func(t *testing.T) {
		server := NewCountingServer(t, map[string]func(http.ResponseWriter, *http.Request){
			"/extensions": JSONHandler(http.StatusConflict, map[string]string{"error": "Extension already exists"}),
		})
		defer server.Close()

		client := NewTestClient(server.URL)

		_, err := client.Create(context.Background(), "extensions", map[string]interface{}{"extension": "2000"}, nil)
		require.Error(t, err)
		assert.True(t, pbxapi.IsAPIError(err))
		assert.Equal(t, 0, server.Count("/reload"))
	})

	t.Run("delete reloads by default", func(t *testing.T) {
		server := NewCountingServer(t, map[string]func(http.ResponseWriter, *http.Request){
			"/extensions/2000": JSONHandler(http.StatusOK, map[string]string{"status": "deleted"}),
			"/reload":          JSONHandler(http.StatusOK, map[string]string{"status": "reloaded"}),
		})
		defer server.Close()

		client := NewTestClient(server.URL)

		_, err := client.Delete(context.Background(), "extensions", []string{"2000"}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, server.Count("/reload"))
	})

	t.Run("reload failure reported with mutation document", func(t *testing.T) {
		server := NewCountingServer(t, map[string]func(http.ResponseWriter, *http.Request){
			"/extensions": JSONHandler(http.StatusOK, map[string]string{"status": "created"}),
			"/reload":     JSONHandler(http.StatusInternalServerError, map[string]string{"error": "reload failed"}),
		})
		defer server.Close()

		client := NewTestClient(server.URL)

		doc, err := client.Create(context.Background(), "extensions", map[string]interface{}{"extension": "2000"}, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "reloading configuration")

		// The change was applied; its document survives the reload failure.
		require.NotNil(t, doc)
		assert.Equal(t, "created", doc.StringField("status"))
	})

	t.Run("resource placeholder in reload path", func(t *testing.T) {
		server := NewCountingServer(t, map[string]func(http.ResponseWriter, *http.Request){
			"/extensions":        JSONHandler(http.StatusOK, map[string]string{"status": "created"}),
			"/reload/extensions": JSONHandler(http.StatusOK, map[string]string{"status": "reloaded"}),
		})
		defer server.Close()

		client := NewTestClient(server.URL)
		client.reloadPath = "reload/{resource}"

		_, err := client.Create(context.Background(), "extensions", map[string]interface{}{"extension": "2000"}, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, server.Count("/reload/extensions"))
	})

	t.Run("custom reload method", func(t *testing.T) {
		server := NewCountingServer(t, map[string]func(http.ResponseWriter, *http.Request){
			"/reload": func(writer http.ResponseWriter, request *http.Request) {
				assert.Equal(t, "GET", request.Method)
				JSONHandler(http.StatusOK, map[string]string{"status": "reloaded"})(writer, request)
			},
		})
		defer server.Close()

		client := NewTestClient(server.URL)
		client.reloadMethod = "GET"

		_, err := client.Reload(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, 1, server.Count("/reload"))
	})
}

func TestClient_Reload_PlaceholderRequiresResource(t *testing.T) {
	client := NewTestClient("http://pbx.invalid")
	client.reloadPath = "reload/{resource}"

	_, err := client.Reload(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, pbxapi.ErrResourceRequired)
}
