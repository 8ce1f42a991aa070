// Package jogger provides a buffered structured logger that renders a terse
// console line per call, queues a richer JSON record in memory, and
// periodically persists the queue to a rotating on-disk file.
//
// Features:
//   - Buffered logging with configurable capacity and overflow policy
//   - Immediate console output independent of file buffering
//   - Time-based flushing, caller-driven or via a background flusher
//   - Error fast path with call-chain capture and forced flush
//   - Unique timestamp-based log file naming
//   - On-demand gzip compaction of the active log file
//   - Age and size based retention sweep of the log directory
//   - Runtime-swappable redirect target with optional file suppression
//   - Injectable call-site resolver and record encoder
//   - Thread-safe operations
//
// Logging must never crash the host: write failures are reported through a
// settable error handler and otherwise dropped. Only the explicit maintenance
// operations CompressLogs and RemoveOldLogs return errors to the caller.
package jogger
