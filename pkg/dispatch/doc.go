// Package dispatch is the request rendering pipeline.
//
// A Dispatcher runs every page request through three stages in order:
//
//  1. classify: decide between the static client shell and a server render
//  2. resolve: fetch the shell template and the application entry point
//  3. render: stream the entry into the shell with head metadata injected
//
// ClientOnly requests stop after the first stage and receive the shell
// unmodified; the resolver and renderer are not called. A failure at any
// stage is passed to the ErrorHandler exactly once.
//
// # Observability
//
// With a prometheus.Registerer the dispatcher records:
//
//   - movieflair_render_decisions_total{decision}
//   - movieflair_render_duration_seconds{decision}
//   - movieflair_render_errors_total{stage,error_type}
//   - movieflair_shell_only_responses_total
//
// Each request gets a "movieflair.dispatch" span from the global
// OpenTelemetry tracer provider, with one child span per stage.
package dispatch
