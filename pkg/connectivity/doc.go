// Package connectivity holds the guard the download pipeline calls after a
// failed acquisition. The guard probes a well-known URL until it answers with
// a 2xx status, however long that takes, so a dropped connection pauses the
// run instead of turning every remaining link into a failure.
package connectivity
