package sources

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"nsockg/internal/triple"
)

// decode runs one decoder over an in-memory fixture and returns its count
// and the bytes it appended to the sink.
func decode(t *testing.T, d Decoder, input string) (int, string) {
	t.Helper()
	var buf bytes.Buffer
	sink := triple.NewWriter(&buf)
	n, err := d.Decode(context.Background(), strings.NewReader(input), sink)
	if err != nil {
		t.Fatalf("%s decode: %v", d.Name(), err)
	}
	if err := sink.Flush(); err != nil {
		t.Fatal(err)
	}
	return n, buf.String()
}

// excapeRow builds a tab-delimited activity row with the consumed fields in
// their real positions.
func excapeRow(inchikey, gene, activity, taxonomy string) string {
	return strings.Join([]string{inchikey, "CHEMBL0", gene, activity, "pXC50", "6.1", "entrez", taxonomy, "smiles"}, "\t")
}

const excapeHeader = "Ambit_InchiKey\tOriginal_Entry_ID\tEntrez_ID\tActivity_Flag\tpXC50_type\tpXC50\tDB\tTax_ID\tSMILES"
