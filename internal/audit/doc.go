// Package audit dispatches security events to pluggable sinks without
// blocking the authentication hot path.
//
// Events cover logins, logouts, session invalidation, and credential
// changes. The [Dispatcher] decouples emitters from sink latency with a
// buffered channel; [FileSink] appends JSON Lines for the operator-facing
// trail, [SlogSink] mirrors events into structured logs, and [ChannelSink]
// exists for tests.
package audit
