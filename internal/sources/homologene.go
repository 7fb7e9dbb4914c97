package sources

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"nsockg/internal/tabular"
	"nsockg/internal/triple"
)

// HomoloGene column positions. The file carries six columns; only the
// homology-group id and the gene id are loaded.
const (
	homologeneColGroup = 0
	homologeneColGene  = 2
)

// HomoloGene decodes the NCBI orthology table. Every row emits
// (ncbigene:<gene>, homologyGroup, homologene:<group>); there is no
// filtering, so the count equals the row count.
type HomoloGene struct {
	Log zerolog.Logger
}

func (HomoloGene) Name() string { return "homologene" }

func (d HomoloGene) Decode(ctx context.Context, r io.Reader, sink *triple.Writer) (int, error) {
	_ = ctx
	rows := tabular.NewReader(r, homologeneColGroup, homologeneColGene)
	count := 0
	for i := 0; ; i++ {
		row, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			d.Log.Warn().Str("source", d.Name()).Int("row", i).Err(err).Msg("row skipped")
			continue
		}
		if err != nil {
			return count, fmt.Errorf("read homologene: %w", err)
		}
		t := triple.Triple{
			Subject:   triple.ID(triple.NSNCBIGene, row[1]),
			Predicate: triple.HomologyGroup,
			Object:    triple.ID(triple.NSHomoloGene, row[0]),
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
