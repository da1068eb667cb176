package classifier

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// WriteManifests writes <bucket>.txt into dir for every bucket, replacing
// any previous manifest. Paths are newline-joined without a trailing newline.
func WriteManifests(dir string, r *Result) ([]string, error) {
	var written []string
	for _, b := range Buckets {
		path := filepath.Join(dir, string(b)+".txt")
		if err := os.WriteFile(path, []byte(strings.Join(r.Buckets[b], "\n")), 0644); err != nil {
			return written, fmt.Errorf("failed to write %s manifest: %w", b, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// Linker materializes buckets as directories of hardlinks
type Linker struct {
	root string
	now  func() time.Time
}

// NewLinker creates a linker that places bucket directories under root
func NewLinker(root string) *Linker {
	return &Linker{root: root, now: time.Now}
}

// Materialize hardlinks every classified file into root/<bucket>/. A name
// that is already taken by a different file gets a timestamp suffix. It
// returns the number of links created.
func (l *Linker) Materialize(r *Result) (int, error) {
	created := 0
	for _, b := range Buckets {
		dir := filepath.Join(l.root, string(b))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return created, fmt.Errorf("failed to create %s directory: %w", b, err)
		}

		for _, src := range r.Buckets[b] {
			linked, err := l.link(src, filepath.Join(dir, filepath.Base(src)))
			if err != nil {
				return created, err
			}
			if linked {
				created++
			}
		}
	}
	return created, nil
}

// link creates target, or a suffixed variant when target belongs to another
// file. It reports false when src is already linked there.
func (l *Linker) link(src, target string) (bool, error) {
	if sameFile(src, target) {
		return false, nil
	}
	if _, err := os.Lstat(target); err == nil {
		if linkedSibling(src, target) {
			return false, nil
		}
		target = l.suffixed(target)
	}
	if err := os.Link(src, target); err != nil {
		return false, fmt.Errorf("failed to link %s: %w", src, err)
	}
	return true, nil
}

func sameFile(a, b string) bool {
	ai, err := os.Stat(a)
	if err != nil {
		return false
	}
	bi, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ai, bi)
}

// linkedSibling reports whether an earlier run already linked src next to
// target under a suffixed name
func linkedSibling(src, target string) bool {
	dir := filepath.Dir(target)
	ext := filepath.Ext(target)
	prefix := strings.TrimSuffix(filepath.Base(target), ext) + "_"

	entries, err := os.ReadDir(dir)
	if err != nil {
		return false
	}
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		if sameFile(src, filepath.Join(dir, name)) {
			return true
		}
	}
	return false
}

func (l *Linker) suffixed(target string) string {
	ext := filepath.Ext(target)
	base := strings.TrimSuffix(target, ext)
	return fmt.Sprintf("%s_%d%s", base, l.now().UnixNano(), ext)
}
