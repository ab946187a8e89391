// Package observability provides event logging, metrics calculation, and
// alerting for wbs. Every project mutation is appended to a JSON Lines
// (JSONL) event log; activity metrics are derived on demand from that log,
// and alerts combine it with the project's current EVM indicators.
package observability
