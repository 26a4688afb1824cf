package delimited

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ajitpratap0/tabula/pkg/dataset"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/json"
	"github.com/ajitpratap0/tabula/pkg/variable"
)

// Sidecar is the JSON document stored next to the primary file. It carries
// everything the text cells cannot: dataset fields and column kinds.
type Sidecar struct {
	Name        string                `json:"Name"`
	Author      string                `json:"Author"`
	Source      string                `json:"Source"`
	Description string                `json:"Description"`
	CreatedAt   *time.Time            `json:"CreatedAt"`
	Columns     []variable.Descriptor `json:"Columns"`
	// Compression of the primary file; empty means none
	Compression string `json:"Compression,omitempty"`
}

// SidecarPath returns path with its extension replaced by ".json".
func SidecarPath(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
}

func newSidecar(ds *dataset.DataSet, compression string) Sidecar {
	sc := Sidecar{
		Name:        ds.Name,
		Author:      ds.Author,
		Source:      ds.Source,
		Description: ds.Description,
		Columns:     make([]variable.Descriptor, 0, ds.ColumnCount()),
		Compression: compression,
	}
	if !ds.CreatedAt.IsZero() {
		t := ds.CreatedAt.UTC()
		sc.CreatedAt = &t
	}
	for _, v := range ds.Variables() {
		sc.Columns = append(sc.Columns, v.Descriptor())
	}
	return sc
}

// Variables converts the column descriptors.
func (sc Sidecar) Variables() ([]variable.Variable, error) {
	out := make([]variable.Variable, len(sc.Columns))
	for i, d := range sc.Columns {
		v, err := variable.FromDescriptor(d)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (sc Sidecar) apply(ds *dataset.DataSet) {
	ds.Name = sc.Name
	ds.Author = sc.Author
	ds.Source = sc.Source
	ds.Description = sc.Description
	ds.CreatedAt = time.Time{}
	if sc.CreatedAt != nil {
		ds.CreatedAt = sc.CreatedAt.UTC()
	}
}

func writeSidecar(path string, sc Sidecar) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644) //nolint:gosec // G302: data files are meant to be shared
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeWriteFailed, "failed to write metadata").
			WithDetail("path", path)
	}
	if err := json.NewEncoder(f, "  ").Encode(sc); err != nil {
		_ = f.Close()
		return errors.Wrap(err, errors.ErrorTypeWriteFailed, "failed to encode metadata").
			WithDetail("path", path)
	}
	if err := f.Close(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeWriteFailed, "failed to write metadata").
			WithDetail("path", path)
	}
	return nil
}

func readSidecar(path string) (Sidecar, error) {
	var sc Sidecar
	f, err := os.Open(path) //nolint:gosec // G304: path is chosen by the caller
	if err != nil {
		if os.IsNotExist(err) {
			return sc, errors.Wrap(err, errors.ErrorTypeMetadataMissing, "metadata file not found").
				WithDetail("path", path)
		}
		return sc, errors.Wrap(err, errors.ErrorTypeReadFailed, "failed to read metadata").
			WithDetail("path", path)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&sc); err != nil {
		return sc, errors.Wrap(err, errors.ErrorTypeSchemaMismatch, "invalid metadata file").
			WithDetail("path", path)
	}
	return sc, nil
}
