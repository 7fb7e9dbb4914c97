package pipeline

// Metadata is the run report written next to the triples file. Written once
// at the end of a successful run, never mutated afterwards.
type Metadata struct {
	Date       string            `json:"date"`
	Exporter   string            `json:"exporter"`
	Versions   map[string]string `json:"versions"`
	Statistics map[string]int    `json:"statistics"`
}

// BuildMetadata assembles the run report. Date and exporter are supplied by
// the caller rather than self-sourced, which keeps the builder pure and the
// report deterministic in tests.
func BuildMetadata(date, exporter string, versions map[string]string, stats Stats) Metadata {
	v := make(map[string]string, len(versions))
	for source, version := range versions {
		v[source] = version
	}
	return Metadata{
		Date:       date,
		Exporter:   exporter,
		Versions:   v,
		Statistics: stats.Freeze(),
	}
}
