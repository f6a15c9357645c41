// Package api provides the webhook HTTP surface: endpoint verification,
// inbound message handling, and health.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// VerifyToken must match the hub.verify_token of webhook verification
	// requests. Verification is rejected when unset.
	VerifyToken string

	// BodyLimit caps inbound request bodies in bytes. Media arrives
	// base64-encoded in JSON, so this bounds attachment size too.
	BodyLimit int
}
