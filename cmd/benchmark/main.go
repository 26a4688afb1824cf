// Command benchmark measures save and load throughput of every tabula codec
// on the demo dataset, optionally under CPU and heap profiling.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabula/internal/demo"
	"github.com/ajitpratap0/tabula/pkg/dataset"
	"github.com/ajitpratap0/tabula/pkg/formats"
	"github.com/ajitpratap0/tabula/pkg/json"

	// Register every codec
	_ "github.com/ajitpratap0/tabula/pkg/formats/columnar"
	_ "github.com/ajitpratap0/tabula/pkg/formats/delimited"
)

var (
	formatList = flag.String("formats", "", "Comma separated formats to benchmark (default: all registered)")
	rows       = flag.Int("rows", 100000, "Rows in the demo dataset")
	iterations = flag.Int("count", 3, "Number of iterations per format")
	outputDir  = flag.String("output", "benchmark-results", "Output directory for data files and results")
	report     = flag.Bool("report", true, "Write a JSON report")
	cpuFile    = flag.String("cpuprofile", "", "Write CPU profile to file")
	memFile    = flag.String("memprofile", "", "Write memory profile to file")
)

// Config describes one benchmark run.
type Config struct {
	Formats    []formats.Format
	Rows       int
	Iterations int
	Dir        string
}

// Result is the measurement for one format.
type Result struct {
	Format         formats.Format `json:"format"`
	Rows           int            `json:"rows"`
	Iterations     int            `json:"iterations"`
	FileBytes      int64          `json:"file_bytes"`
	SaveAvg        time.Duration  `json:"save_avg_ns"`
	LoadAvg        time.Duration  `json:"load_avg_ns"`
	SaveRowsPerSec float64        `json:"save_rows_per_sec"`
	LoadRowsPerSec float64        `json:"load_rows_per_sec"`
	// RSSBytes is the resident set size of the process after the last load
	RSSBytes uint64 `json:"rss_bytes"`
}

func main() {
	flag.Parse()

	if err := os.MkdirAll(*outputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	cfg, err := newConfig(*formatList, *rows, *iterations, *outputDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *cpuFile != "" {
		f, err := os.Create(*cpuFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
		fmt.Printf("CPU profiling enabled, writing to: %s\n", *cpuFile)
	}

	timestamp := time.Now().Format("20060102-150405")
	fmt.Println("=== Tabula Codec Benchmark ===")
	fmt.Printf("Timestamp: %s\n", timestamp)
	fmt.Printf("Rows: %d, iterations: %d\n\n", cfg.Rows, cfg.Iterations)

	results, err := run(cfg, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Benchmark failed: %v\n", err)
		os.Exit(1)
	}

	if *memFile != "" {
		if err := writeHeapProfile(*memFile); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write memory profile: %v\n", err)
		} else {
			fmt.Printf("Memory profile written to: %s\n", *memFile)
		}
	}

	if *report {
		path := filepath.Join(cfg.Dir, fmt.Sprintf("codec_report_%s.json", timestamp))
		if err := writeReport(path, results); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save JSON report: %v\n", err)
			return
		}
		fmt.Printf("\nJSON report saved to: %s\n", path)
	}
}

func newConfig(list string, rows, iterations int, dir string) (Config, error) {
	cfg := Config{Rows: rows, Iterations: iterations, Dir: dir}
	if cfg.Iterations < 1 {
		cfg.Iterations = 1
	}
	if strings.TrimSpace(list) == "" {
		for _, info := range formats.Registered() {
			cfg.Formats = append(cfg.Formats, info.Format)
		}
		return cfg, nil
	}
	for _, name := range strings.Split(list, ",") {
		f, err := formats.ParseFormat(name)
		if err != nil {
			return Config{}, err
		}
		cfg.Formats = append(cfg.Formats, f)
	}
	return cfg, nil
}

// run saves and loads the demo dataset cfg.Iterations times per format.
func run(cfg Config, out io.Writer) ([]Result, error) {
	ds, err := demo.Dataset(dataset.NewIDAllocator(1), cfg.Rows, 42)
	if err != nil {
		return nil, err
	}
	defer ds.Release()

	opts := formats.DefaultOptions()
	opts.Logger = zap.NewNop()
	opts.IDs = dataset.NewIDAllocator(1)

	proc, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(cfg.Formats))
	for _, f := range cfg.Formats {
		info, _ := formats.Info(f)
		codec, err := formats.New(f, opts)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(cfg.Dir, "bench"+info.Extensions[0])

		var save, load time.Duration
		for i := 0; i < cfg.Iterations; i++ {
			start := time.Now()
			if err := codec.Save(ds, path); err != nil {
				return nil, err
			}
			save += time.Since(start)

			start = time.Now()
			back, err := codec.Load(path)
			if err != nil {
				return nil, err
			}
			load += time.Since(start)
			if back.RowCount() != ds.RowCount() {
				back.Release()
				return nil, fmt.Errorf("%s: loaded %d rows, saved %d", f, back.RowCount(), ds.RowCount())
			}
			back.Release()
		}

		st, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		r := Result{
			Format:     f,
			Rows:       cfg.Rows,
			Iterations: cfg.Iterations,
			FileBytes:  st.Size(),
			SaveAvg:    save / time.Duration(cfg.Iterations),
			LoadAvg:    load / time.Duration(cfg.Iterations),
		}
		r.SaveRowsPerSec = rate(cfg.Rows, r.SaveAvg)
		r.LoadRowsPerSec = rate(cfg.Rows, r.LoadAvg)
		if mem, err := proc.MemoryInfo(); err == nil {
			r.RSSBytes = mem.RSS
		}
		results = append(results, r)

		fmt.Fprintf(out, "  %-10s save %10s (%12.0f records/sec)  load %10s (%12.0f records/sec)  %d bytes  rss %.1f MB\n",
			f, r.SaveAvg.Round(time.Microsecond), r.SaveRowsPerSec,
			r.LoadAvg.Round(time.Microsecond), r.LoadRowsPerSec, r.FileBytes, float64(r.RSSBytes)/(1<<20))
	}
	return results, nil
}

func rate(rows int, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return float64(rows) / d.Seconds()
}

func writeReport(path string, results []Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644) //nolint:gosec
}

func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	runtime.GC() // Get up-to-date statistics
	return pprof.WriteHeapProfile(f)
}
