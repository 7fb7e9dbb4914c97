package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"nsockg/internal/config"
	"nsockg/internal/fetch"
)

const testBiogridVersion = "4.4.200"

func biogridZip(t *testing.T, member, content string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create(member)
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// newFixtureServer serves one small raw file per source.
func newFixtureServer(t *testing.T, biogridContent string) *httptest.Server {
	t.Helper()
	excape := "Ambit_InchiKey\tOriginal_Entry_ID\tEntrez_ID\tActivity_Flag\tpXC50_type\tpXC50\tDB\tTax_ID\tSMILES\n" +
		"X\tCHEMBL0\t42\tA\tpXC50\t6.1\tentrez\t9606\tC\n" +
		"Y\tCHEMBL1\t1956\tN\tpXC50\t6.1\tentrez\t9606\tC\n" +
		"Z\tCHEMBL2\tEGFR\tA\tpXC50\t6.1\tentrez\t9606\tC\n"
	homologene := "10\t9606\t1956\tEGFR\t2827\tNP_005219\n" +
		"10\t9606\t7157\tTP53\t120407068\tNP_000537\n"
	disgenet := "geneId\tgeneSymbol\tdiseaseId\tdiseaseName\n" +
		" 1956 \tEGFR\tC0006142\tMalignant neoplasm of breast\n"
	archive := biogridZip(t, "BIOGRID-ALL-"+testBiogridVersion+".tab3.txt", biogridContent)

	mux := http.NewServeMux()
	mux.HandleFunc("/excape.tsv", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(excape)) })
	mux.HandleFunc("/biogrid.zip", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write(archive) })
	mux.HandleFunc("/homologene.data", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(homologene)) })
	mux.HandleFunc("/disgenet.tsv", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(disgenet)) })
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestRunner(t *testing.T, srv *httptest.Server) *Runner {
	t.Helper()
	cfg := config.Config{
		CacheRoot: filepath.Join(t.TempDir(), "cache"),
		OutDir:    filepath.Join(t.TempDir(), "out"),
		Exporter:  "tester",
		Sources: map[string]config.SourceConfig{
			"excape":     {Version: "v2", URL: srv.URL + "/excape.tsv"},
			"biogrid":    {URL: srv.URL + "/biogrid.zip"},
			"homologene": {URL: srv.URL + "/homologene.data"},
			"disgenet":   {URL: srv.URL + "/disgenet.tsv"},
		},
	}
	return &Runner{
		Config: cfg,
		Resolver: fetch.StaticResolver{
			"biogrid":    testBiogridVersion,
			"homologene": "68",
			"disgenet":   "7.0",
		},
		Cache: &fetch.Cache{Root: cfg.CacheRoot},
		Log:   zerolog.Nop(),
		Now:   func() time.Time { return time.Date(2021, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
}

const testBiogridContent = "#BioGRID Interaction ID\tEntrez Gene Interactor A\tEntrez Gene Interactor B\tOrganism Name Interactor A\tOrganism Name Interactor B\n" +
	"1\t1956\t7157\tHomo sapiens\tHomo sapiens\n"

func TestRunEndToEnd(t *testing.T) {
	srv := newFixtureServer(t, testBiogridContent)
	r := newTestRunner(t, srv)

	res, err := r.Run(context.Background())
	require.NoError(t, err)

	triples, err := os.ReadFile(res.TriplesPath)
	require.NoError(t, err)
	want := "inchikey:X\tmodulates\tncbigene:42\n" +
		"ncbigene:1956\tinteracts\tncbigene:7157\n" +
		"ncbigene:1956\thomologyGroup\thomologene:10\n" +
		"ncbigene:7157\thomologyGroup\thomologene:10\n" +
		"ncbigene:1956\tassociated\tumls:C0006142\n"
	require.Equal(t, want, string(triples), "append order must follow decoder order then row order")

	md := res.Metadata
	require.Equal(t, "2021-03-01", md.Date)
	require.Equal(t, "tester", md.Exporter)
	require.Equal(t, map[string]string{
		"excape":     "v2",
		"biogrid":    testBiogridVersion,
		"homologene": "68",
		"disgenet":   "7.0",
	}, md.Versions)
	require.Equal(t, 1, md.Statistics["excape"])
	require.Equal(t, 1, md.Statistics["biogrid"])
	require.Equal(t, 2, md.Statistics["homologene"])
	require.Equal(t, 1, md.Statistics["disgenet"])
	require.Equal(t, 5, md.Statistics["total"])

	sum := 0
	for source, n := range md.Statistics {
		if source != "total" {
			sum += n
		}
	}
	require.Equal(t, md.Statistics["total"], sum)

	_, err = os.Stat(res.MetadataPath)
	require.NoError(t, err)
}

func TestRunIdempotent(t *testing.T) {
	srv := newFixtureServer(t, testBiogridContent)
	r := newTestRunner(t, srv)

	first, err := r.Run(context.Background())
	require.NoError(t, err)
	a, err := os.ReadFile(first.TriplesPath)
	require.NoError(t, err)

	second, err := r.Run(context.Background())
	require.NoError(t, err)
	b, err := os.ReadFile(second.TriplesPath)
	require.NoError(t, err)

	require.Equal(t, string(a), string(b), "identical cached content must produce byte-identical triples")
	require.NotEqual(t, first.RunID, second.RunID)
}

func TestRunAbortsOnStructuralError(t *testing.T) {
	// BioGRID fixture missing a required column: the whole run fails and
	// neither artifact appears at its final path.
	broken := "#BioGRID Interaction ID\tEntrez Gene Interactor A\tOrganism Name Interactor A\tOrganism Name Interactor B\n" +
		"1\t1956\tHomo sapiens\tHomo sapiens\n"
	srv := newFixtureServer(t, broken)
	r := newTestRunner(t, srv)

	_, err := r.Run(context.Background())
	require.Error(t, err)

	_, statErr := os.Stat(filepath.Join(r.Config.OutDir, "triples.tsv"))
	require.True(t, os.IsNotExist(statErr), "failed run left a triples file")
	_, statErr = os.Stat(filepath.Join(r.Config.OutDir, "metadata.json"))
	require.True(t, os.IsNotExist(statErr), "failed run left a metadata file")
}

func TestRunFailsBeforeOutputOnUnresolvedVersion(t *testing.T) {
	srv := newFixtureServer(t, testBiogridContent)
	r := newTestRunner(t, srv)
	r.Resolver = fetch.StaticResolver{} // nothing resolvable

	_, err := r.Run(context.Background())
	require.Error(t, err)

	entries, readErr := os.ReadDir(r.Config.OutDir)
	if readErr == nil {
		require.Empty(t, entries, "no output may exist when version resolution fails")
	}
}
