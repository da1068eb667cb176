// Package fetch wraps net/http with the headers, pacing and error kinds the
// download strategies and the connectivity probe share.
//
// Transport failures are reported as errors.KindNetwork. Non-2xx responses
// from Fetch are mapped with errors.FromStatus so that a 404 becomes
// not_found and a 5xx becomes server_error.
package fetch
