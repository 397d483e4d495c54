// Package format renders captured messages into log events.
//
// Two independent settings control the output:
//
//   - The outer envelope: a multi-line human-readable block, or a single
//     structured JSON line. Selected by PrintStyle and stored in
//     Options.Structured.
//   - Pretty fields: whether nested values (body, headers, query) are
//     pretty-printed. A body that parses as JSON is re-indented; anything
//     else is passed through as text.
//
// The envelope never changes the field set, only how it is laid out:
//
//	-----------------
//	RequestId: abc-123
//	Path: /orders
//	Query: map[status:open]
//	Method: GET
//	Version: HTTP/1.1
//	Headers: map[Accept:[*/*]]
//	Body:
//	-----------------
//
//	{"type":"request","requestId":"abc-123","path":"/orders","query":{"status":"open"},...}
//
// Formatting never mutates the captured message and never fails: bodies that
// are not valid UTF-8 are rendered as a quoted, escaped string.
package format
