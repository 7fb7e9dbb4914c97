// Package sources holds the per-source decoders that normalize raw
// biomedical datasets into triples. Each decoder reads one already-opened
// stream, applies its source's filtering rules, and reports how many triples
// it emitted. Decoders share no state and never run concurrently.
package sources

import (
	"context"
	"io"

	"nsockg/internal/triple"
)

// Decoder turns one source's raw record stream into triples.
type Decoder interface {
	Name() string
	// Decode reads the whole stream, writing triples to sink, and returns
	// the number of triples emitted. Malformed rows are skipped and logged;
	// only structural problems (unreadable stream, missing required
	// columns) produce an error.
	Decode(ctx context.Context, r io.Reader, sink *triple.Writer) (int, error)
}

const progressEvery = 100000
