package notification

// Entry is one order line with its supplier already resolved.
type Entry struct {
	SupplierID   string
	SupplierName string
	Email        string
	Line         Line
	// Err marks a supplier that could not be resolved.
	Err error
}

// Group buckets entries by supplier in order of first appearance. Each
// bucket receives only its own supplier's note.
func Group(entries []Entry, notes map[string]string) []Bucket {
	index := make(map[string]int)
	var buckets []Bucket

	for _, e := range entries {
		i, ok := index[e.SupplierID]
		if !ok {
			i = len(buckets)
			index[e.SupplierID] = i
			buckets = append(buckets, Bucket{
				SupplierID:   e.SupplierID,
				SupplierName: e.SupplierName,
				Email:        e.Email,
				Note:         notes[e.SupplierID],
				Err:          e.Err,
			})
		}
		buckets[i].Lines = append(buckets[i].Lines, e.Line)
	}
	return buckets
}
