package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Source is one listing to harvest and the number of pages to walk
type Source struct {
	Name  string
	Pages int
}

// SourceError reports an unusable sources file. It is only produced during setup.
type SourceError struct {
	Path string
	Line string
	Err  error
}

func (e *SourceError) Error() string {
	if e.Line != "" {
		return fmt.Sprintf("sources file %s: line %q: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("sources file %s: %v", e.Path, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// LoadSources reads a sources file with one "name count" pair per line.
// Blank lines are ignored and file order is preserved.
func LoadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &SourceError{Path: path, Err: fmt.Errorf("does not exist")}
		}
		return nil, &SourceError{Path: path, Err: err}
	}
	defer f.Close()

	var sources []Source
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		name, count, _ := strings.Cut(line, " ")
		pages, err := strconv.Atoi(strings.TrimSpace(count))
		if err != nil {
			return nil, &SourceError{
				Path: path,
				Line: line,
				Err:  fmt.Errorf("could not interpret %q as an integer", count),
			}
		}
		if pages <= 0 {
			return nil, &SourceError{Path: path, Line: line, Err: fmt.Errorf("page count must be positive")}
		}

		sources = append(sources, Source{Name: strings.TrimSpace(name), Pages: pages})
	}
	if err := scanner.Err(); err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}

	return sources, nil
}
