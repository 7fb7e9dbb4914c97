package pipeline

import "fmt"

// totalKey is reserved in the statistics record for the grand total.
const totalKey = "total"

// Stats maps source name to emitted-triple count. Each decoder contributes
// exactly one entry, added once after it completes; per-triple increments
// stay inside the decoders so sources cannot interfere with each other.
type Stats map[string]int

// Add records the final count for one source. A source may report once,
// and the reserved total key is rejected as a source name.
func (s Stats) Add(source string, count int) error {
	if source == totalKey {
		return fmt.Errorf("source name %q is reserved", totalKey)
	}
	if _, ok := s[source]; ok {
		return fmt.Errorf("duplicate statistics entry for %q", source)
	}
	if count < 0 {
		return fmt.Errorf("negative count %d for %q", count, source)
	}
	s[source] = count
	return nil
}

// Freeze returns the finished record with the derived total. The total
// always equals the sum of the per-source counts.
func (s Stats) Freeze() map[string]int {
	out := make(map[string]int, len(s)+1)
	total := 0
	for source, count := range s {
		out[source] = count
		total += count
	}
	out[totalKey] = total
	return out
}
