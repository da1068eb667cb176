package harvester

import (
	"fmt"
	"os"
	"strings"
)

// WriteLinks replaces the links cache at path with links, one per line
func WriteLinks(path string, links []string) error {
	if err := os.WriteFile(path, []byte(strings.Join(links, "\n")), 0644); err != nil {
		return fmt.Errorf("failed to write links cache: %w", err)
	}
	return nil
}

// ReadLinks loads the links cache, trimming each line and dropping blank ones
func ReadLinks(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("links cache %s does not exist", path)
		}
		return nil, fmt.Errorf("failed to read links cache: %w", err)
	}

	var links []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			links = append(links, line)
		}
	}
	return links, nil
}
