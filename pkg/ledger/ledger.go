// Package ledger records the URLs that could not be acquired.
//
// Each entry is a single line appended to the ledger file and synced before
// Record returns, so the file reflects every failure even if the process is
// killed mid-run. The file is opened in append mode and never truncated.
package ledger

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Ledger is an append-only list of failed URLs
type Ledger struct {
	path string
	file *os.File
	mu   sync.Mutex
}

// Open opens path for appending, creating it if needed
func Open(path string) (*Ledger, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open failure ledger: %w", err)
	}
	return &Ledger{path: path, file: f}, nil
}

// Record appends url on its own line and flushes it to disk
func (l *Ledger) Record(url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return fmt.Errorf("failure ledger %s is closed", l.path)
	}
	if _, err := l.file.WriteString(url + "\n"); err != nil {
		return fmt.Errorf("failed to write failure ledger: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync failure ledger: %w", err)
	}
	return nil
}

// Path returns the ledger file location
func (l *Ledger) Path() string {
	return l.path
}

// Close closes the underlying file. It is safe to call more than once.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// ReadAll returns the URLs recorded in the ledger at path
func ReadAll(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var urls []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			urls = append(urls, line)
		}
	}
	return urls, scanner.Err()
}
