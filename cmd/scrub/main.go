package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/wdm0006/scrub/pkg/config"
	"github.com/wdm0006/scrub/pkg/io/csvio"
	"github.com/wdm0006/scrub/pkg/io/jsonlio"
	"github.com/wdm0006/scrub/pkg/io/parquetio"
	"github.com/wdm0006/scrub/pkg/profile"
	"github.com/wdm0006/scrub/pkg/scrub"
	"github.com/wdm0006/scrub/pkg/store/sqlitestore"
)

var version = "0.1.0-dev"

func main() {
	showVersion := flag.Bool("version", false, "Print version and exit")
	configPath := flag.String("config", "", "Pipeline definition (.yaml/.yml/.toml)")
	input := flag.String("input", "", "Input file (csv, csv.gz, jsonl, parquet)")
	output := flag.String("output", "", "Output file (csv, csv.gz, jsonl, parquet)")
	noHeader := flag.Bool("no-header", false, "Treat CSV input as headerless")
	delimiter := flag.String("delimiter", ",", "CSV field delimiter")
	dbPath := flag.String("db", "", "SQLite database for table-to-table cleaning")
	fromTable := flag.String("from-table", "", "Source table in --db")
	toTable := flag.String("to-table", "", "Destination table in --db (empty skips saving)")
	doProfile := flag.Bool("profile", false, "Print a column profile of the result")
	profileJSON := flag.Bool("profile-json", false, "Emit the profile as JSON")
	verbose := flag.Bool("verbose", false, "Debug-level logging")
	flag.Parse()

	if *showVersion {
		fmt.Println("scrub", version)
		return
	}

	log := newLogger(*verbose)
	defer func() { _ = log.Sync() }()

	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "no pipeline provided; try --config <file> or --version")
		os.Exit(2)
	}

	pipe, err := config.Load(*configPath)
	if err != nil {
		log.Errorw("load pipeline", "path", *configPath, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	var result *scrub.Frame

	if *dbPath != "" {
		if *fromTable == "" {
			fmt.Fprintln(os.Stderr, "--db requires --from-table")
			os.Exit(2)
		}
		result, err = runStore(ctx, pipe, log, *dbPath, *fromTable, *toTable)
	} else {
		if *input == "" {
			fmt.Fprintln(os.Stderr, "provide --input or --db/--from-table")
			os.Exit(2)
		}
		result, err = runFiles(ctx, pipe, log, *input, *output, *noHeader, *delimiter)
	}
	if err != nil {
		log.Errorw("pipeline failed", "pipeline", pipe.Name, "error", err)
		os.Exit(1)
	}

	if *doProfile || *profileJSON {
		p := profile.Of(result, 10)
		if *profileJSON {
			b, _ := json.MarshalIndent(p, "", "  ")
			fmt.Println(string(b))
		} else {
			fmt.Print(p.Text())
		}
	}
}

func runStore(ctx context.Context, pipe *config.Pipeline, log *zap.SugaredLogger, dbPath, from, to string) (*scrub.Frame, error) {
	st, err := sqlitestore.Open(dbPath, log)
	if err != nil {
		return nil, err
	}
	defer func() { _ = st.Close() }()

	eng, err := pipe.Engine(scrub.WithLogger(log), scrub.WithStore(st))
	if err != nil {
		return nil, err
	}
	return eng.CleanFromStorage(ctx, from, to)
}

func runFiles(ctx context.Context, pipe *config.Pipeline, log *zap.SugaredLogger, input, output string, noHeader bool, delimiter string) (*scrub.Frame, error) {
	frame, err := readFrame(input, noHeader, delimiter)
	if err != nil {
		return nil, err
	}
	log.Infow("loaded input", "path", input, "rows", frame.Rows(), "columns", frame.Cols())

	eng, err := pipe.Engine(scrub.WithLogger(log))
	if err != nil {
		return nil, err
	}
	result, err := eng.Clean(ctx, frame)
	if err != nil {
		return nil, err
	}
	log.Infow("pipeline done", "pipeline", pipe.Name, "rows", result.Rows())

	if output != "" {
		if err := writeFrame(output, result, delimiter); err != nil {
			return nil, err
		}
		log.Infow("wrote output", "path", output)
	}
	return result, nil
}

func readFrame(path string, noHeader bool, delimiter string) (*scrub.Frame, error) {
	switch fileFormat(path) {
	case "jsonl":
		return jsonlio.Read(path)
	case "parquet":
		return parquetio.Read(path)
	default:
		delim := ','
		if delimiter != "" {
			delim = rune(delimiter[0])
		}
		return csvio.Read(path, csvio.Options{HasHeader: !noHeader, Delimiter: delim, SampleRows: 100})
	}
}

func writeFrame(path string, f *scrub.Frame, delimiter string) error {
	switch fileFormat(path) {
	case "jsonl":
		return jsonlio.Write(path, f)
	case "parquet":
		return parquetio.Write(path, f)
	default:
		delim := ','
		if delimiter != "" {
			delim = rune(delimiter[0])
		}
		return csvio.Write(path, f, csvio.Options{HasHeader: true, Delimiter: delim})
	}
}

func fileFormat(path string) string {
	p := strings.ToLower(path)
	p = strings.TrimSuffix(p, ".gz")
	switch filepath.Ext(p) {
	case ".jsonl", ".ndjson":
		return "jsonl"
	case ".parquet":
		return "parquet"
	default:
		return "csv"
	}
}

func newLogger(verbose bool) *zap.SugaredLogger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = ""
	l, err := cfg.Build()
	if err != nil {
		panic(err)
	}
	return l.Sugar()
}
