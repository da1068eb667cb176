package storage

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TimestampLayout names images saved by SaveImage
const TimestampLayout = "2006-01-02_15-04-05.000000"

// Manager owns the wallpapers directory and writes every file into it atomically
type Manager struct {
	outputDir string
	files     map[string]bool
	now       func() time.Time
	mu        sync.RWMutex
}

// NewManager creates a new storage manager
func NewManager(outputDir string) (*Manager, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	manager := &Manager{
		outputDir: outputDir,
		files:     make(map[string]bool),
		now:       time.Now,
	}

	if err := manager.scanExistingFiles(); err != nil {
		return nil, fmt.Errorf("failed to scan existing files: %w", err)
	}

	return manager, nil
}

// scanExistingFiles records the files already in the output directory
func (m *Manager) scanExistingFiles() error {
	entries, err := os.ReadDir(m.outputDir)
	if err != nil {
		return fmt.Errorf("failed to read directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			m.files[entry.Name()] = true
		}
	}

	return nil
}

// Exists reports whether a file with the given name is in the output directory
func (m *Manager) Exists(name string) bool {
	m.mu.RLock()
	known := m.files[name]
	m.mu.RUnlock()
	if known {
		return true
	}

	if _, err := os.Stat(filepath.Join(m.outputDir, name)); err == nil {
		m.mu.Lock()
		m.files[name] = true
		m.mu.Unlock()
		return true
	}
	return false
}

// SaveImage re-encodes img as PNG under a timestamp name and returns its path
func (m *Manager) SaveImage(img image.Image) (string, error) {
	name := m.uniqueName(m.now().Format(TimestampLayout), ".png")
	path, err := m.writeAtomic(name, func(w io.Writer) error {
		return png.Encode(w, img)
	})
	if err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return path, nil
}

// Save copies r into the output directory under name, adding a suffix on collision
func (m *Manager) Save(r io.Reader, name string) (string, error) {
	ext := filepath.Ext(name)
	name = m.uniqueName(name[:len(name)-len(ext)], ext)
	return m.writeAtomic(name, func(w io.Writer) error {
		_, err := io.Copy(w, r)
		return err
	})
}

// Adopt moves every regular file in srcDir into the output directory
func (m *Manager) Adopt(srcDir string) ([]string, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var adopted []string
	for _, entry := range entries {
		if entry.IsDir() || !entry.Type().IsRegular() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		name := m.uniqueName(entry.Name()[:len(entry.Name())-len(ext)], ext)
		dst := filepath.Join(m.outputDir, name)

		if err := moveFile(filepath.Join(srcDir, entry.Name()), dst); err != nil {
			return adopted, err
		}
		adopted = append(adopted, dst)
	}

	return adopted, nil
}

// uniqueName reserves base+ext, or base_N+ext if it is taken
func (m *Manager) uniqueName(base, ext string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := base + ext
	for i := 1; m.files[name] || fileExists(filepath.Join(m.outputDir, name)); i++ {
		name = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
	m.files[name] = true
	return name
}

// writeAtomic writes through a temporary file and renames it into place
func (m *Manager) writeAtomic(name string, write func(io.Writer) error) (string, error) {
	filename := filepath.Join(m.outputDir, name)

	tempFile := filename + ".tmp"
	out, err := os.Create(tempFile)
	if err != nil {
		m.release(name)
		return "", fmt.Errorf("failed to create temporary file: %w", err)
	}

	err = write(out)
	closeErr := out.Close()

	if err != nil {
		os.Remove(tempFile)
		m.release(name)
		return "", fmt.Errorf("failed to write file data: %w", err)
	}

	if closeErr != nil {
		os.Remove(tempFile)
		m.release(name)
		return "", fmt.Errorf("failed to close file: %w", closeErr)
	}

	if err := os.Rename(tempFile, filename); err != nil {
		os.Remove(tempFile)
		m.release(name)
		return "", fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return filename, nil
}

func (m *Manager) release(name string) {
	m.mu.Lock()
	delete(m.files, name)
	m.mu.Unlock()
}

// moveFile renames src to dst, copying when they are on different filesystems
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy %s: %w", src, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return os.Remove(src)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// GetOutputDir returns the output directory path
func (m *Manager) GetOutputDir() string {
	return m.outputDir
}

// GetFileCount returns the number of files known to be in the output directory
func (m *Manager) GetFileCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files)
}
