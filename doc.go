// Package tabula keeps typed, documented tables in memory and moves them
// losslessly between on-disk formats.
//
// A dataset is an ordered set of equal length columns. Every column carries
// a logical kind (integer, fixed-point decimal, boolean, text, date,
// timestamp, category, ordinal category), its documentation (description,
// unit, derivation formula) and a materialized Arrow array with a parallel
// cache of decoded cells.
//
// # Quick Start
//
// Build a dataset, save it as Parquet and read it back:
//
//	import (
//	    "github.com/ajitpratap0/tabula/internal/demo"
//	    "github.com/ajitpratap0/tabula/pkg/formats"
//	    _ "github.com/ajitpratap0/tabula/pkg/formats/columnar"
//	)
//
//	ds, _ := demo.Dataset(nil, 400, 42)
//
//	codec, _ := formats.New(formats.Parquet, formats.DefaultOptions())
//	_ = codec.Save(ds, "demo.parquet")
//	back, _ := codec.Load("demo.parquet")
//
// Derive a new column:
//
//	value, _ := back.Column("Value")
//	smooth, _ := transform.RollingMean(value, 7)
//	_ = back.AddColumn(smooth)
//
// # Key Packages
//
//	pkg/variable            - Column schemas and their Arrow field encoding
//	pkg/vector              - Materialized columns, cell coercion and fillers
//	pkg/dataset             - Datasets, id allocation, Arrow records
//	pkg/transform           - Arithmetic, logic, scaling, rolling and date operations
//	pkg/formats             - Codec registry with logging and metrics
//	pkg/formats/delimited   - Delimited text with a JSON sidecar
//	pkg/formats/columnar    - Arrow IPC, Parquet and Avro
//	pkg/compression         - Stream compression for delimited files
//	pkg/config              - Configuration loading and validation
//	pkg/errors              - Structured error handling
//	pkg/logger              - Structured logging
//	pkg/metrics             - Prometheus collectors
//	pkg/tracing             - OpenTelemetry spans around codec calls
//	pkg/testutil            - Shared test helpers and the codec suite
//
// # Formats
//
// Available formats:
//   - delimited: ';'-separated text (.csv, .txt) plus a .json sidecar
//   - arrow: Arrow IPC file (.arrow, .ipc, .feather)
//   - parquet: self-describing Parquet with one row group per save
//   - avro: Avro object container with the column descriptors in its header
//
// # Configuration
//
// Configuration is read from YAML, JSON or TOML. Environment variables are
// supported with ${VAR_NAME} syntax and TABULA_* keys override the file.
//
// # Command Line
//
//	tabula formats
//	tabula generate --dir ./out --rows 1000
//	tabula convert --in data.csv --out data.parquet
//	tabula inspect --in data.parquet
//	tabula derive --in data.parquet --out scored.parquet --op normalize --column Value
//	tabula --trace convert --in data.avro --out data.arrow
package tabula
