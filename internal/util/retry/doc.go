// Package retry provides exponential backoff retry logic for transient
// failures.
//
// The [Do] function retries an operation with configurable max attempts,
// initial delay, and maximum delay. It is used for notification channel
// wiring, where freshly created queues are briefly invisible to follow-up
// calls.
package retry
