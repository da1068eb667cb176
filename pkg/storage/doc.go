// Package storage manages the wallpapers output directory.
//
// Every write goes to a temporary file first and is renamed into place, so a
// crash never leaves a truncated image behind. Names never overwrite an
// existing file: a numeric suffix is added instead.
//
// Usage:
//
//	manager, err := storage.NewManager("wallpapers")
//	if err != nil {
//	    return err
//	}
//
//	// Direct fetches are re-encoded as PNG under a timestamp name
//	path, err := manager.SaveImage(img)
//
//	// Extractor output is moved in from its scratch directory
//	paths, err := manager.Adopt(scratchDir)
package storage
