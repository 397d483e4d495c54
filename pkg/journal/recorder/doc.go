// Package recorder writes journal exchanges in the background.
//
// The proxy handler calls Record once per completed exchange. Record hands
// the exchange to a bounded channel and returns immediately; a single worker
// goroutine writes to the storage backend with a per-write timeout. A full
// buffer drops the exchange (logged and counted in
// loupe_proxy_journal_dropped_total) instead of slowing the client.
//
// Close drains whatever is buffered before returning, so call it after the
// HTTP server has stopped accepting requests.
package recorder
