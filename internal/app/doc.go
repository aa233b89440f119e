// Package app contains core application contracts, domain helpers, and
// use-case level orchestration that are independent of transport protocols.
//
// Responsibilities:
// - Define service ports/interfaces between domain logic and infrastructure.
// - Hold the subscriber connection registry and notification fanout.
// - Provide shared runtime/state abstractions used by adapters.
//
// Non-responsibilities:
// - JSON-RPC/HTTP protocol handling and endpoint-level mapping.
package app
