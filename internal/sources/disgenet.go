package sources

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"

	"nsockg/internal/tabular"
	"nsockg/internal/triple"
)

// Header column names in the DisGeNet curated associations export.
const (
	disgenetColGene    = "geneId"
	disgenetColDisease = "diseaseId"
)

// DisGeNet decodes the curated gene-disease association table. Every row
// emits (ncbigene:<gene>, associated, umls:<disease>). The gene id is kept
// as an opaque string, trimmed of surrounding whitespace, never parsed as a
// number.
type DisGeNet struct {
	Log zerolog.Logger
}

func (DisGeNet) Name() string { return "disgenet" }

func (d DisGeNet) Decode(ctx context.Context, r io.Reader, sink *triple.Writer) (int, error) {
	_ = ctx
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return 0, fmt.Errorf("read disgenet header: %w", err)
	}
	schema, err := tabular.NewSchema(header, disgenetColGene, disgenetColDisease)
	if err != nil {
		return 0, fmt.Errorf("disgenet header: %w", err)
	}

	count := 0
	for i := 0; ; i++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			d.Log.Warn().Str("source", d.Name()).Int("row", i).Err(err).Msg("row skipped")
			continue
		}
		if err != nil {
			return count, fmt.Errorf("read disgenet: %w", err)
		}
		t := triple.Triple{
			Subject:   triple.ID(triple.NSNCBIGene, strings.TrimSpace(schema.Field(row, disgenetColGene))),
			Predicate: triple.Associated,
			Object:    triple.ID(triple.NSUMLS, schema.Field(row, disgenetColDisease)),
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
	return count, nil
}
