package logging

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// FilterByDate returns the lines of the log file at path that contain date
// (yyyy-MM-dd). A missing file yields an error matching fs.ErrNotExist; a
// file without matching lines yields an empty slice.
func FilterByDate(path, date string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines := []string{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if line := sc.Text(); strings.Contains(line, date) {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("logging: read %q: %w", path, err)
	}
	return lines, nil
}

// FileSource serves the lines of one log file.
type FileSource struct {
	Path string
}

// FilterByDate returns the lines of the file that contain date.
func (s FileSource) FilterByDate(date string) ([]string, error) {
	return FilterByDate(s.Path, date)
}
