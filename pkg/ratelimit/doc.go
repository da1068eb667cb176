// Package ratelimit paces outgoing requests.
//
// RandomDelay is the polite spacing applied after every saved download: a
// random whole number of seconds, counted down one second at a time so the
// console can show the remaining wait. TokenBucket is an optional ceiling on
// requests per period for the HTTP client. NoDelay is for tests.
package ratelimit
