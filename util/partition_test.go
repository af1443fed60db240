package util

import (
	"fmt"
	"reflect"
	"testing"
)

func fileNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%02d.csv", i)
	}
	return names
}

func TestPartition(t *testing.T) {
	tests := []struct {
		name   string
		total  int
		chunks int
		sizes  []int
	}{
		{name: "no chunking", total: 10, chunks: 0, sizes: []int{10}},
		{name: "remainder goes last", total: 10, chunks: 3, sizes: []int{3, 3, 4}},
		{name: "even split", total: 9, chunks: 3, sizes: []int{3, 3, 3}},
		{name: "single chunk", total: 7, chunks: 1, sizes: []int{7}},
		{name: "large remainder", total: 11, chunks: 4, sizes: []int{2, 2, 2, 5}},
		{name: "more chunks than files", total: 2, chunks: 4, sizes: []int{0, 0, 0, 2}},
		{name: "no files", total: 0, chunks: 2, sizes: []int{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files := fileNames(tt.total)
			groups, err := Partition(files, tt.chunks)
			if err != nil {
				t.Fatalf("Partition failed: %v", err)
			}
			if got := GroupSizes(groups); !reflect.DeepEqual(got, tt.sizes) {
				t.Errorf("Partition(%d files, %d) sizes = %v, expected %v", tt.total, tt.chunks, got, tt.sizes)
			}
			var joined []string
			for _, g := range groups {
				joined = append(joined, g...)
			}
			if len(joined) != len(files) {
				t.Fatalf("plan covers %d files, expected %d", len(joined), len(files))
			}
			for i := range files {
				if joined[i] != files[i] {
					t.Errorf("position %d: got %s, expected %s", i, joined[i], files[i])
				}
			}
		})
	}

	t.Run("negative chunks", func(t *testing.T) {
		if _, err := Partition(fileNames(3), -1); err != ErrInvalidChunks {
			t.Errorf("expected ErrInvalidChunks, got %v", err)
		}
	})
}
