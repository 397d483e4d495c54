// Package logging provides the proxy's log output.
//
// # Overview
//
// A Logger carries two kinds of output on one writer:
//   - Operational logs (startup, failures, access lines) through log/slog in
//     JSON or text form.
//   - Request and response events, pre-rendered by package format and
//     written verbatim at info level.
//
// Writes are serialized, so a multi-line event block is never split by a
// concurrent line.
//
// # Levels
//
// LOG_LEVEL values map onto slog levels:
//
//	critical  -> warn
//	normal    -> info
//	debug     -> debug
//	off       -> LevelOff (nothing is written)
//
// The level is held in a slog.LevelVar and can be changed at runtime with
// SetLevel; loggers derived with With share it.
//
// # Usage
//
//	logger, err := logging.New(logging.Config{Level: "normal", Format: "json"})
//	logger.Event(ctx, format.NewRequestEvent(id, msg, opts))
//	logger.ErrorContext(ctx, "forward failed", "error", err)
package logging
