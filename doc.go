// Package backend provides the Glimpse API server.
//
// This package contains no code of its own; the entry points live under
// cmd/ and the implementation is organized into subpackages:
//
//   - internal/handlers: HTTP request handlers for all API endpoints
//   - internal/realtime: WebSocket hub, presence registry and event routing
//   - internal/models: Data models and database schemas
//   - internal/auth: Authentication with JWT session tokens
//   - internal/database: Database connection and migrations
//   - internal/middleware: HTTP middleware (auth, metrics, rate limiting)
//   - internal/cache: Redis connection used by the rate limiter
//   - internal/seed: Development database seeding
//
// See the individual package documentation for detailed API reference.
package backend
