// Package pbxclient provides the main entry point for creating Issabel PBX
// API clients.
//
// The package wires together session management, transport, and the resource
// operations defined in pkg/pbxapi. Most programs only need one of the
// constructors here and the pbxapi.Client interface.
//
// # Quick start
//
//	client, err := pbxclient.NewWithPassword("pbx.example.com", "admin", "secret")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	doc, err := client.List(ctx, "extensions", pbxapi.NewQueryParams().WithFields("extension", "name"))
//	if err != nil {
//		log.Fatal(err)
//	}
//	for _, rec := range doc.Records() {
//		fmt.Println(rec["extension"], rec["name"])
//	}
//
// The endpoint may be a bare host ("pbx.example.com"), a host with scheme
// ("https://pbx.example.com"), or a full API root. The client normalizes it
// and appends /pbxapi when missing. Login happens lazily on the first
// request; call Authenticate explicitly when you want to fail fast or to
// read the session tokens for persistence.
//
// # Sessions and tokens
//
// NewWithTokens restores a saved session from an access/refresh token pair.
// The client renews the access token automatically when the PBX reports it
// expired, using the refresh token, and falls back to a fresh login when
// username and password are configured.
//
// # TLS
//
// Issabel installations commonly run with self-signed certificates. Set
// Config.SkipTLSVerify to accept them. Certificate verification stays on by
// default.
//
// # Helpers
//
// The pbxapi package provides error predicates (pbxapi.IsNotFound,
// pbxapi.IsAuthError), document accessors (Document.Records,
// Document.StringField), and query builders (pbxapi.NewQueryParams) for
// working with responses.
package pbxclient
