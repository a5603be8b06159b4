package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"runtime"
	"time"

	"github.com/wdm0006/scrub/pkg/scrub"
)

// generate builds a dirty frame: random values, a configurable share of
// nulls, padded mixed-case strings, and a sprinkle of extreme floats so
// outlier removal has something to do.
func generate(rows, fcols, icols, scols int, missp float64, rnd *rand.Rand) *scrub.Frame {
	var cols []scrub.ColumnSchema
	for i := 0; i < fcols; i++ {
		cols = append(cols, scrub.ColumnSchema{Name: fmt.Sprintf("f%d", i), Type: scrub.KindFloat, Nullable: true})
	}
	for i := 0; i < icols; i++ {
		cols = append(cols, scrub.ColumnSchema{Name: fmt.Sprintf("i%d", i), Type: scrub.KindInt, Nullable: true})
	}
	for i := 0; i < scols; i++ {
		cols = append(cols, scrub.ColumnSchema{Name: fmt.Sprintf("s%d", i), Type: scrub.KindString, Nullable: true})
	}

	words := []string{"  Alpha ", "beta", " GAMMA", "delta  ", " Epsilon"}
	f := scrub.NewFrame(scrub.Schema{Columns: cols})
	for r := 0; r < rows; r++ {
		f.AppendNullRow()
		for _, cs := range cols {
			if rnd.Float64() < missp {
				continue
			}
			switch cs.Type {
			case scrub.KindFloat:
				v := rnd.NormFloat64()*10 + 50
				if rnd.Float64() < 0.001 {
					v *= 100
				}
				_ = f.SetCell(r, cs.Name, v)
			case scrub.KindInt:
				_ = f.SetCell(r, cs.Name, int64(rnd.Intn(100)))
			case scrub.KindString:
				_ = f.SetCell(r, cs.Name, words[rnd.Intn(len(words))])
			}
		}
	}
	return f
}

func main() {
	var (
		rows    = flag.Int("rows", 1_000_000, "rows to generate")
		fcols   = flag.Int("float-cols", 4, "number of float columns")
		icols   = flag.Int("int-cols", 2, "number of int columns")
		scols   = flag.Int("string-cols", 2, "number of string columns")
		missp   = flag.Float64("missing", 0.05, "probability of a null in each cell")
		jsonOut = flag.Bool("json", false, "emit JSON summary")
		seed    = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()

	rules, err := scrub.NewRuleSet([]scrub.Rule{
		{Name: "fill floats", Operation: "fill_nulls", Columns: scrub.SelectPattern(`^f\d+$`), Parameters: scrub.Params{"strategy": "mean"}, Order: 1},
		{Name: "fill ints", Operation: "fill_nulls", Columns: scrub.SelectPattern(`^i\d+$`), Parameters: scrub.Params{"strategy": "median"}, Order: 2},
		{Name: "tidy strings", Operation: "trim_whitespace", Columns: scrub.SelectPattern(`^s\d+$`), Order: 3},
		{Name: "lower strings", Operation: "lowercase", Columns: scrub.SelectPattern(`^s\d+$`), Order: 4},
		{Name: "drop outliers", Operation: "remove_outliers", Columns: scrub.SelectPattern(`^f\d+$`), Parameters: scrub.Params{"method": "zscore", "threshold": 4.0}, Order: 5},
		{Name: "scale floats", Operation: "standardize", Columns: scrub.SelectPattern(`^f\d+$`), Order: 6},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	eng, err := scrub.New(rules)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rnd := rand.New(rand.NewSource(*seed))
	frame := generate(*rows, *fcols, *icols, *scols, *missp, rnd)

	runtime.GC()
	time.Sleep(100 * time.Millisecond)

	var msBefore, msAfter runtime.MemStats
	runtime.ReadMemStats(&msBefore)
	start := time.Now()
	out, err := eng.Clean(context.Background(), frame)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	elapsed := time.Since(start)
	runtime.ReadMemStats(&msAfter)

	rowsPerSec := float64(*rows) / elapsed.Seconds()
	summary := map[string]any{
		"rows_in":               *rows,
		"rows_out":              out.Rows(),
		"elapsed_ms":            elapsed.Milliseconds(),
		"rows_per_sec":          rowsPerSec,
		"mem_alloc_bytes":       msAfter.Alloc,
		"mem_total_alloc_bytes": msAfter.TotalAlloc - msBefore.TotalAlloc,
		"gc_num":                msAfter.NumGC - msBefore.NumGC,
		"cols":                  map[string]int{"float": *fcols, "int": *icols, "string": *scols},
		"missing_prob":          *missp,
	}

	if *jsonOut {
		b, _ := json.MarshalIndent(summary, "", "  ")
		fmt.Println(string(b))
		return
	}
	fmt.Printf("Rows in:  %d\n", *rows)
	fmt.Printf("Rows out: %d\n", out.Rows())
	fmt.Printf("Elapsed:  %s\n", elapsed)
	fmt.Printf("Throughput: %.0f rows/s\n", rowsPerSec)
	fmt.Printf("Current Alloc: %d MB\n", msAfter.Alloc/1024/1024)
	fmt.Printf("Total Alloc (delta): %d MB\n", (msAfter.TotalAlloc-msBefore.TotalAlloc)/1024/1024)
	fmt.Printf("GC cycles (delta): %d\n", msAfter.NumGC-msBefore.NumGC)
}
