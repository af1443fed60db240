package util

// Partition splits files into exactly chunks contiguous groups. The first
// chunks-1 groups hold len(files)/chunks files each and the last group holds
// everything left over, so it may be larger than the others. When chunks is
// larger than len(files) the leading groups are empty.
//
// A chunk count of zero yields a single group holding every file.
func Partition(files []string, chunks int) ([][]string, error) {
	if chunks < 0 {
		return nil, ErrInvalidChunks
	}
	if chunks == 0 {
		return [][]string{files}, nil
	}
	step := len(files) / chunks
	groups := make([][]string, 0, chunks)
	for i := 0; i < chunks-1; i++ {
		groups = append(groups, files[i*step:(i+1)*step])
	}
	groups = append(groups, files[(chunks-1)*step:])
	return groups, nil
}

// GroupSizes reports the number of files in each group of a plan.
func GroupSizes(groups [][]string) []int {
	sizes := make([]int, len(groups))
	for i, g := range groups {
		sizes[i] = len(g)
	}
	return sizes
}
