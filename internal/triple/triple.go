package triple

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Predicate is the fixed relation vocabulary of the graph.
type Predicate string

const (
	Modulates     Predicate = "modulates"
	Interacts     Predicate = "interacts"
	HomologyGroup Predicate = "homologyGroup"
	Associated    Predicate = "associated"
)

// Namespace prefixes used for subjects and objects.
const (
	NSInchikey   = "inchikey"
	NSNCBIGene   = "ncbigene"
	NSHomoloGene = "homologene"
	NSUMLS       = "umls"
)

// Triple is one normalized (subject, predicate, object) fact. Triples carry
// no identity beyond their tuple value; duplicates are permitted.
type Triple struct {
	Subject   string
	Predicate Predicate
	Object    string
}

// ID builds a namespaced identifier of the form prefix:local.
func ID(prefix, local string) string {
	return prefix + ":" + local
}

// ErrInvalid marks triples rejected by Validate. Decoders treat it as a
// per-row condition, not a stream failure.
var ErrInvalid = errors.New("invalid triple")

// Validate checks well-formedness: both identifiers contain exactly one
// namespace separator with non-empty prefix and local id, and the predicate
// belongs to the vocabulary.
func (t Triple) Validate() error {
	if !isPredicate(t.Predicate) {
		return fmt.Errorf("%w: unknown predicate %q", ErrInvalid, t.Predicate)
	}
	for _, id := range []string{t.Subject, t.Object} {
		prefix, local, ok := strings.Cut(id, ":")
		if !ok || prefix == "" || local == "" || strings.Contains(local, ":") {
			return fmt.Errorf("%w: malformed identifier %q", ErrInvalid, id)
		}
	}
	return nil
}

func isPredicate(p Predicate) bool {
	switch p {
	case Modulates, Interacts, HomologyGroup, Associated:
		return true
	default:
		return false
	}
}

// Writer appends triples to an output stream, one tab-separated line each.
type Writer struct {
	w     *bufio.Writer
	count int
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write validates t and appends it. Validation failures surface as
// ErrInvalid before any bytes are written.
func (w *Writer) Write(t Triple) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w.w, "%s\t%s\t%s\n", t.Subject, t.Predicate, t.Object); err != nil {
		return fmt.Errorf("write triple: %w", err)
	}
	w.count++
	return nil
}

// Count returns the number of triples written so far.
func (w *Writer) Count() int {
	return w.count
}

func (w *Writer) Flush() error {
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("flush triples: %w", err)
	}
	return nil
}
