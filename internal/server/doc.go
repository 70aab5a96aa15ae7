// Package server exposes a resolver over HTTP so that a host that cannot load plugins in-process can
// still drive it.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # Bridge
//
// [Bridge] implements [Handler]. Each request is given a fresh query id, the resolver is asked to search
// or resolve, and the results the resolver delivers to its sink for that id are gathered by a [Collector]
// until the resolver reports the query finished. Routes:
//
//	GET /search?q=<query>
//	GET /resolve?artist=<a>&album=<b>&title=<c>
//	GET /config-ui
//	GET /health
//
// [Stream] serves the same resolver over a WebSocket at /ws. Clients send [StreamRequest] commands and
// receive an [Event] for every result list as it is delivered, then a done event per query id.
//
// Queries never fail with a structured error: a failed or timed-out search answers with empty lists,
// matching what an in-process host would observe.
package server
