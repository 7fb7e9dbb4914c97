// Package pipeline sequences the source decoders against one shared triple
// sink and materializes the run artifacts: triples.tsv and metadata.json.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"nsockg/internal/config"
	"nsockg/internal/fetch"
	"nsockg/internal/sources"
	"nsockg/internal/triple"
	"nsockg/internal/util"
)

// Upstream locations. BioGRID and HomoloGene URLs are version-parameterized;
// ExCAPE-DB and DisGeNet are fixed files.
const (
	excapeURL   = "https://zenodo.org/record/2543724/files/pubchem.chembl.dataset4publication_inchi_smiles_v2.tsv.xz"
	disgenetURL = "https://www.disgenet.org/static/disgenet_ap1/files/downloads/curated_gene_disease_associations.tsv.gz"
)

func biogridURL(version string) string {
	return fmt.Sprintf("https://downloads.thebiogrid.org/Download/BioGRID/Release-Archive/BIOGRID-%s/BIOGRID-ALL-%s.tab3.zip", version, version)
}

func biogridMember(version string) string {
	return fmt.Sprintf("BIOGRID-ALL-%s.tab3.txt", version)
}

func homologeneURL(version string) string {
	return fmt.Sprintf("https://ftp.ncbi.nih.gov/pub/HomoloGene/build%s/homologene.data", version)
}

// sourceOrder is the fixed decoder invocation order; triple-file content is
// append order, so this also fixes the output layout.
var sourceOrder = []string{"excape", "biogrid", "homologene", "disgenet"}

// Runner executes one full rebuild: resolve versions, decode every source
// into the shared sink, freeze statistics, write the metadata record.
type Runner struct {
	Config   config.Config
	Resolver fetch.Resolver
	Cache    *fetch.Cache
	Log      zerolog.Logger
	Now      func() time.Time // defaults to time.Now
}

// Result points at the artifacts of a completed run.
type Result struct {
	RunID        string
	TriplesPath  string
	MetadataPath string
	Metadata     Metadata
}

type plannedSource struct {
	name    string
	version string
	url     string
	member  string // zip member; when set, url names an archive
	decoder sources.Decoder
}

// Run executes the pipeline. Any decoder failure aborts the whole run: the
// staged triples file is discarded and no metadata is written, so a failed
// run is never mistakable for a successful one.
func (r *Runner) Run(ctx context.Context) (Result, error) {
	runID := uuid.NewString()
	log := r.Log.With().Str("run_id", runID).Logger()

	versions, err := r.resolveVersions(ctx)
	if err != nil {
		return Result{}, err
	}

	triplesPath := filepath.Join(r.Config.OutDir, "triples.tsv")
	out, err := util.NewAtomicFile(triplesPath)
	if err != nil {
		return Result{}, err
	}
	defer out.Discard()

	sink := triple.NewWriter(out)
	stats := Stats{}
	for _, src := range r.plan(versions) {
		count, err := r.decodeSource(ctx, src, sink)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", src.name, err)
		}
		if err := stats.Add(src.name, count); err != nil {
			return Result{}, err
		}
		log.Info().Str("source", src.name).Str("version", src.version).
			Int("triples", count).Msg("source decoded")
	}
	if err := sink.Flush(); err != nil {
		return Result{}, err
	}
	if err := out.Commit(); err != nil {
		return Result{}, err
	}

	now := r.Now
	if now == nil {
		now = time.Now
	}
	md := BuildMetadata(now().Format("2006-01-02"), r.Config.Exporter, versions, stats)
	metadataPath := filepath.Join(r.Config.OutDir, "metadata.json")
	if err := util.WriteJSONAtomic(metadataPath, md); err != nil {
		return Result{}, err
	}
	log.Info().Int("total", md.Statistics[totalKey]).Str("triples", triplesPath).Msg("run complete")

	return Result{
		RunID:        runID,
		TriplesPath:  triplesPath,
		MetadataPath: metadataPath,
		Metadata:     md,
	}, nil
}

// resolveVersions pins or resolves every source version before any output
// is opened; a resolution failure is fatal to the run.
func (r *Runner) resolveVersions(ctx context.Context) (map[string]string, error) {
	versions := make(map[string]string, len(sourceOrder))
	for _, name := range sourceOrder {
		if pinned := r.Config.Sources[name].Version; pinned != "" {
			versions[name] = pinned
			continue
		}
		v, err := r.Resolver.Version(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("resolve %s version: %w", name, err)
		}
		versions[name] = v
	}
	return versions, nil
}

func (r *Runner) plan(versions map[string]string) []plannedSource {
	srcCfg := r.Config.Sources
	pick := func(name, fallback string) string {
		if u := srcCfg[name].URL; u != "" {
			return u
		}
		return fallback
	}
	bv := versions["biogrid"]
	return []plannedSource{
		{
			name:    "excape",
			version: versions["excape"],
			url:     pick("excape", excapeURL),
			decoder: sources.ExCAPE{HumanOnly: srcCfg["excape"].HumanOnly, Log: r.Log},
		},
		{
			name:    "biogrid",
			version: bv,
			url:     pick("biogrid", biogridURL(bv)),
			member:  biogridMember(bv),
			decoder: sources.BioGRID{HumanOnly: srcCfg["biogrid"].HumanOnly, Log: r.Log},
		},
		{
			name:    "homologene",
			version: versions["homologene"],
			url:     pick("homologene", homologeneURL(versions["homologene"])),
			decoder: sources.HomoloGene{Log: r.Log},
		},
		{
			name:    "disgenet",
			version: versions["disgenet"],
			url:     pick("disgenet", disgenetURL),
			decoder: sources.DisGeNet{Log: r.Log},
		},
	}
}

// decodeSource fetches, opens, and fully decodes one source. The input is
// closed before returning, so the next decoder never observes an open
// predecessor.
func (r *Runner) decodeSource(ctx context.Context, src plannedSource, sink *triple.Writer) (int, error) {
	path, err := r.Cache.Fetch(ctx, src.name, src.version, src.url)
	if err != nil {
		return 0, err
	}
	var in io.ReadCloser
	if src.member != "" {
		in, err = fetch.OpenZipMember(path, src.member)
	} else {
		in, err = fetch.Open(path)
	}
	if err != nil {
		return 0, err
	}
	defer in.Close()
	return src.decoder.Decode(ctx, in, sink)
}
