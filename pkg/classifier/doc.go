// Package classifier sorts downloaded images by aspect ratio.
//
// The width/height ratio line is split into three buckets with no gap and no
// overlap: mobile up to 0.7, square up to 1.3, landscape above. Each run
// rewrites mobile.txt, square.txt and landscape.txt from scratch, so
// classifying the same tree twice gives identical manifests. A Linker can
// additionally mirror the buckets as directories of hardlinks.
package classifier
