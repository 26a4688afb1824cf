package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/ajitpratap0/tabula/internal/demo"
	"github.com/ajitpratap0/tabula/pkg/errors"
	"github.com/ajitpratap0/tabula/pkg/formats"
)

// CodecSuite checks the behavior every codec shares: lossless round trips
// of the demo and all-kinds datasets, the empty dataset, and the error
// kinds of a missing file.
//
//	func TestCodecSuite(t *testing.T) {
//	    suite.Run(t, &testutil.CodecSuite{Ext: ".parquet", New: newParquet})
//	}
type CodecSuite struct {
	suite.Suite

	// Ext is the file extension used for saved files.
	Ext string
	// New builds the codec under test.
	New func(opts formats.Options) (formats.Codec, error)

	codec formats.Codec
	dir   string
}

// SetupTest builds a fresh codec and directory for each test.
func (s *CodecSuite) SetupTest() {
	c, err := s.New(Options(s.T(), 1))
	require.NoError(s.T(), err)
	s.codec = c
	s.dir = s.T().TempDir()
}

// CreateTempFile creates a file with content in the test directory.
func (s *CodecSuite) CreateTempFile(name string, content []byte) string {
	path := filepath.Join(s.dir, name)
	require.NoError(s.T(), os.WriteFile(path, content, 0o600))
	return path
}

// TestDemoRoundTrip checks the five column demo dataset.
func (s *CodecSuite) TestDemoRoundTrip() {
	ds, err := demo.Dataset(nil, demo.DefaultRows, 42)
	s.Require().NoError(err)
	back := RoundTrip(s.T(), s.codec, ds, "demo"+s.Ext)
	s.Equal(demo.DefaultRows, back.RowCount())
	AssertDatasetsEqual(s.T(), ds, back)
}

// TestAllKindsRoundTrip checks every kind with nulls and documentation.
func (s *CodecSuite) TestAllKindsRoundTrip() {
	ds, err := demo.AllKinds(nil)
	s.Require().NoError(err)
	AssertDatasetsEqual(s.T(), ds, RoundTrip(s.T(), s.codec, ds, "kinds"+s.Ext))
}

// TestEmptyRoundTrip checks a dataset with columns and no rows.
func (s *CodecSuite) TestEmptyRoundTrip() {
	ds, err := demo.Dataset(nil, 0, 1)
	s.Require().NoError(err)
	back := RoundTrip(s.T(), s.codec, ds, "empty"+s.Ext)
	s.Equal(0, back.RowCount())
	s.Equal(ds.ColumnCount(), back.ColumnCount())
}

// TestLoadMissing checks the error kind of a missing file.
func (s *CodecSuite) TestLoadMissing() {
	_, err := s.codec.Load(filepath.Join(s.dir, "absent"+s.Ext))
	s.True(errors.IsNotFound(err), "got %v", err)
}

// IntegrationTest marks a test as an integration test.
func IntegrationTest(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}
