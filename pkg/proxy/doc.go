// Package proxy implements Loupe's logging reverse proxy handler.
//
// Every inbound request is forwarded, unmodified, to a single fixed
// destination. Along the way the handler emits one request event and one
// response event through the logger, tagged with the same correlation id.
//
// # Request Flow
//
//  1. The body is drained once into a buffer (capture.Capture) and the
//     correlation id is taken from X-Request-ID or freshly generated.
//  2. The request event is rendered on its own goroutine while the forward
//     call runs; the handler joins it before logging anything else.
//  3. Forwarder.Forward sends the buffered body upstream in a single
//     attempt and captures the complete response.
//  4. The response event is emitted and the response is written back with
//     the upstream status, headers and body.
//
// # Failures
//
// Forward returns a *Failure classified by Kind. The handler maps it to a
// 500 response: KindTransport and KindInvalidDestination carry a JSON
// {"message": ...} body, KindOther has an empty body. Exactly one
// error-level log line is written per failure and no response event is
// emitted.
//
// If the client goes away before the upstream answers, the forward call is
// cancelled through the request context and nothing further is logged
// above debug level.
//
// # Headers
//
// Hop-by-hop headers, including any listed in Connection, are stripped in
// both directions. X-Forwarded-For, X-Forwarded-Host and X-Forwarded-Proto
// are set on the upstream request and the outbound Host is the destination
// host. Protocol upgrades are refused as KindOther.
//
// # Basic Usage
//
//	dest, _ := url.Parse("http://localhost:9000")
//	forwarder := proxy.NewForwarder(dest, proxy.NewTransport(cfg.Proxy))
//	handler := proxy.NewHandler(forwarder, opts, logger,
//	    proxy.WithMetrics(collector),
//	    proxy.WithTracer(tracer),
//	)
//	http.ListenAndServe(":8080", middleware.Chain(handler,
//	    middleware.RecoveryMiddleware(logger),
//	    middleware.RequestIDMiddleware,
//	))
package proxy
