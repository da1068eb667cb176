// Package downloader drives the sequential download pipeline: dispatch each
// link, pace after successes, and after failures record the URL and wait for
// connectivity.
package downloader
