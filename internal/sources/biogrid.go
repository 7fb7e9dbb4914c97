package sources

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"nsockg/internal/tabular"
	"nsockg/internal/triple"
)

// Header column names in BioGRID tab3 releases. Positions move between
// releases; the names are stable, so the schema is rebuilt per file.
const (
	biogridColGeneA     = "Entrez Gene Interactor A"
	biogridColGeneB     = "Entrez Gene Interactor B"
	biogridColOrganismA = "Organism Name Interactor A"
	biogridColOrganismB = "Organism Name Interactor B"
)

// humanOrganism is the organism-name literal BioGRID uses for human rows.
// Matching is exact, no normalization.
const humanOrganism = "Homo sapiens"

// BioGRID decodes the BioGRID protein-protein interaction table. Each row
// emits (ncbigene:<interactor a>, interacts, ncbigene:<interactor b>).
// With HumanOnly set, a row passes only when both organism columns equal
// the human literal.
type BioGRID struct {
	HumanOnly bool
	Log       zerolog.Logger
}

func (BioGRID) Name() string { return "biogrid" }

func (d BioGRID) Decode(ctx context.Context, r io.Reader, sink *triple.Writer) (int, error) {
	_ = ctx
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return 0, fmt.Errorf("read biogrid header: %w", err)
		}
		return 0, fmt.Errorf("biogrid: empty input, no header row")
	}
	header := strings.Split(strings.TrimRight(sc.Text(), "\r"), "\t")
	schema, err := tabular.NewSchema(header,
		biogridColGeneA, biogridColGeneB, biogridColOrganismA, biogridColOrganismB)
	if err != nil {
		return 0, fmt.Errorf("biogrid header: %w", err)
	}

	count := 0
	for i := 0; sc.Scan(); i++ {
		row := strings.Split(strings.TrimRight(sc.Text(), "\r"), "\t")
		if d.HumanOnly &&
			(schema.Field(row, biogridColOrganismA) != humanOrganism ||
				schema.Field(row, biogridColOrganismB) != humanOrganism) {
			continue
		}
		t := triple.Triple{
			Subject:   triple.ID(triple.NSNCBIGene, schema.Field(row, biogridColGeneA)),
			Predicate: triple.Interacts,
			Object:    triple.ID(triple.NSNCBIGene, schema.Field(row, biogridColGeneB)),
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
		return count, fmt.Errorf("read biogrid: %w", err)
	}
	return count, nil
}
