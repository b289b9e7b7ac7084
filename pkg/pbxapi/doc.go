// Package pbxapi provides types, interfaces, and helpers for working with the
// Issabel PBX REST API.
//
// # Overview
//
// The pbxapi package defines the client-facing surface of the SDK: the Client
// interface, configuration, the normalized Document response type, the
// operation resolver, query parameters, and the error taxonomy. A concrete
// implementation is provided by the pbxclient package, which wires
// configuration, transport, and session management. Most consumers should
// import pbxclient to construct a client and then interact with the
// interfaces exposed here.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/voipops-io/pbxapi-client/pkg/pbxapi"
//	  "github.com/voipops-io/pbxapi-client/pkg/pbxclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := pbxclient.New(&pbxapi.Config{BaseURL: "pbx.example.com"})
//	  if err != nil { log.Fatal(err) }
//
//	  if err := cli.Authenticate(ctx, "admin", "secret"); err != nil { log.Fatal(err) }
//
//	  // List all extensions
//	  doc, err := cli.List(ctx, "extensions", nil)
//	  if err != nil { log.Fatal(err) }
//	  _ = doc
//	}
//
// # Resources
//
// The PBX API exposes its ~40 configuration resources (extensions, trunks,
// queues, ivr, ...) under one uniform CRUD convention, so the client is
// generic: every operation takes the resource name as a string and the server
// is the sole arbiter of whether that name exists. KnownResources lists the
// names shipped by stock installations for discovery purposes only; nothing
// is validated against it.
//
// # Operations
//
// Besides the typed Get/List/Create/Update/Delete/Search/Reload methods,
// convention-named operations such as "get_extensions" or "delete_trunks"
// can be resolved at runtime:
//
//	call, err := cli.Resolve("create_extensions")
//	if err != nil { /* unknown operation */ }
//	doc, err := call(ctx, pbxapi.Call{Data: map[string]interface{}{
//	  "extension": "2000", "name": "John", "secret": "x",
//	}})
//
// Names outside the (get|create|update|delete)_<resource> convention fail
// with UnknownOperationError so that genuine typos stay visible.
//
// # Sessions
//
// Authenticate obtains an access/refresh token pair from the PBX. The client
// renews the access token lazily: before a request when the token is known to
// be expired, or once after a request comes back with an authentication
// failure, in which case the original request is retried exactly once. When
// the refresh token itself is rejected the client falls back to a fresh login
// if credentials were configured, otherwise SessionExpiredError is returned.
//
// # Errors
//
// Failures are represented by AuthError, SessionExpiredError, APIError,
// UnknownOperationError, and TransportError. Helpers such as IsAuthError,
// IsSessionExpired, and IsNotFound make it easy to branch on common cases.
//
// # Mutations and reload
//
// PBX configuration changes take effect only after a reload of the telephony
// engine. Create, Update, and Delete issue a follow-up reload request by
// default once the mutation succeeds; pass MutateOptions{Reload:
// pbxapi.Bool(false)} to batch several mutations and reload once at the end
// via Reload. A reload failure is reported but does not undo the mutation.
package pbxapi
