// Package dispatch routes each candidate URL to the strategy that can
// acquire it.
//
// Strategies are tried in registration order and the first match wins:
//
//   - media: posts on the origin site, resolved by an external extractor
//     (yt-dlp by default) run in a scratch directory
//   - gallery: any URL mentioning the gallery host; every image on the page
//     is saved, and an empty gallery is not an error
//   - direct: everything else; the body is decoded as an image and saved as
//     PNG under a timestamp name
//
// Dispatcher.Acquire never returns an error. Failures, including panics
// inside a strategy, come back as an Outcome carrying an *errors.Error whose
// Kind says what went wrong.
package dispatch
