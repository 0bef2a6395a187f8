// Package innerlife drives a simulated persona's inner life.
//
// The package has three cooperating parts:
//
//   - The event generator synthesizes hourly life events (work, social,
//     personal) from weighted template tables, so the persona has things
//     happening to her even when nobody is talking to her.
//   - The state engine turns those events into bounded trait changes
//     (mood, energy, stress, and the satisfaction traits), keeps an audit
//     trail of every change, and serves the aggregate state through a
//     TTL cache protected by a circuit breaker.
//   - The usage tracker remembers which events have already been mentioned
//     to which user, so the conversational layer never repeats the same
//     story to the same person within the retention window.
//
// Usage:
//
//	cfg, _ := innerlife.LoadConfig()
//	rt, _ := innerlife.NewRuntime(cfg, logger)
//	defer rt.Close()
//
//	rt.Start(ctx)                              // hourly generation + sweeps
//	state := rt.Engine.CurrentState(ctx)       // cached aggregate state
//	events := rt.Selection.ContextualEvents(ctx, userID, msg, 3)
//
// Everything is a library-level boundary: no network service is exposed,
// and both storage backends (SQLite for events/traits, Redis for usage
// records) degrade to in-process implementations when unconfigured.
package innerlife
