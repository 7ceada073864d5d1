// Package timeouts defines shared timeout constants used by the panel and the
// users API.
package timeouts

import "time"

// ProviderRequest caps a single data provider round-trip made while rendering
// the admin panel.
const ProviderRequest = 5 * time.Second

// StoreQuery caps a single users API storage call.
const StoreQuery = 2 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
