package util

import (
	"os"
	"sort"
	"strings"
)

// ListMatching returns the names of the regular entries in dir whose names
// end with suffix, sorted in ascending byte-wise order. Subdirectories are
// skipped and not descended into. An empty suffix matches every file.
func ListMatching(dir, suffix string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, ErrExpectedDirectory
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		names = append(names, e.Name())
	}
	// os.ReadDir already sorts by filename, but callers rely on the order
	// so it is made explicit here.
	sort.Strings(names)
	return names, nil
}

// FilterSuffix keeps the names ending with suffix, preserving their order.
func FilterSuffix(names []string, suffix string) []string {
	kept := make([]string, 0, len(names))
	for _, n := range names {
		if strings.HasSuffix(n, suffix) {
			kept = append(kept, n)
		}
	}
	return kept
}

// CountMatching counts the files ListMatching would return.
func CountMatching(dir, suffix string) (count int, err error) {
	var names []string
	names, err = ListMatching(dir, suffix)
	count = len(names)
	return
}
