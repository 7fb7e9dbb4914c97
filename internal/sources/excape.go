package sources

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"nsockg/internal/triple"
)

// Field positions in the ExCAPE-DB dump. The file is positional with a
// header row that is discarded; only the consumed columns are named here.
const (
	excapeColInchikey = 0
	excapeColGene     = 2
	excapeColActivity = 3
	excapeColTaxonomy = 7
)

// excapeActive marks active modulation rows; everything else ("N") is
// dropped.
const excapeActive = "A"

// humanTaxonomy is the NCBI taxonomy id for Homo sapiens.
const humanTaxonomy = "9606"

// ExCAPE decodes the ExCAPE-DB chemical modulation dump, a curated subset of
// ChEMBL and PubChem. Each active row emits
// (inchikey:<compound>, modulates, ncbigene:<target>).
//
// The reported count is the number of triples emitted. Rows removed by the
// activity or taxonomy filters, or failing the integer check on the target
// field, do not count.
type ExCAPE struct {
	HumanOnly bool
	Log       zerolog.Logger
}

func (ExCAPE) Name() string { return "excape" }

func (d ExCAPE) Decode(ctx context.Context, r io.Reader, sink *triple.Writer) (int, error) {
	_ = ctx
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	// Header row, discarded unconditionally.
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return 0, fmt.Errorf("read excape header: %w", err)
		}
		return 0, nil
	}

	count := 0
	for i := 0; sc.Scan(); i++ {
		fields := strings.Split(strings.TrimRight(sc.Text(), "\r"), "\t")
		if len(fields) <= excapeColTaxonomy {
			d.Log.Warn().Str("source", d.Name()).Int("row", i).Msg("short row skipped")
			continue
		}
		if d.HumanOnly && fields[excapeColTaxonomy] != humanTaxonomy {
			continue
		}
		if fields[excapeColActivity] != excapeActive {
			continue
		}
		if _, err := strconv.Atoi(fields[excapeColGene]); err != nil {
			d.Log.Warn().Str("source", d.Name()).Int("row", i).
				Str("target", fields[excapeColGene]).Msg("non-integer gene id skipped")
			continue
		}
		t := triple.Triple{
			Subject:   triple.ID(triple.NSInchikey, fields[excapeColInchikey]),
			Predicate: triple.Modulates,
			Object:    triple.ID(triple.NSNCBIGene, fields[excapeColGene]),
		}
		if err := sink.Write(t); err != nil {
			if errors.Is(err, triple.ErrInvalid) {
				d.Log.Warn().Str("source", d.Name()).Int("row", i).Err(err).Msg("row skipped")
				continue
			}
			return count, err
		}
		count++
		if count%progressEvery == 0 {
			d.Log.Debug().Str("source", d.Name()).Int("emitted", count).Msg("progress")
		}
	}
	if err := sc.Err(); err != nil {
		return count, fmt.Errorf("read excape: %w", err)
	}
	return count, nil
}
