// Package capture takes immutable snapshots of HTTP requests and responses.
//
// A body stream is drained exactly once into an owned buffer. Everything that
// needs the body afterwards (the log formatter, the forwarder, the response
// writer) works from that buffer through fresh readers, never from the
// original stream.
//
// # Query Decoding
//
// DecodeQuery is deliberately forgiving: it never fails, skips empty items
// and splits each item on the first '=' only. It does not percent-decode,
// so the logged query matches what the client sent byte for byte.
//
//	DecodeQuery("a=1&&b=2&flag") // map[a:1 b:2 flag:]
package capture
