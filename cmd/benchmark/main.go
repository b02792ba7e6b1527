package main

import (
	"context"
	"fmt"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/delaneyj/minivue/dom"
	"github.com/delaneyj/minivue/internal/logging"
	"github.com/delaneyj/minivue/reactive"
	"github.com/delaneyj/minivue/vm"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

const (
	itersKey   = "iters"
	profileKey = "profile"
)

var (
	ww = []int{1, 10, 100, 1_000}
	hh = []int{1, 10, 100}
)

func main() {
	log := logging.NewLogger("benchmark")

	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Measure write propagation and mount cost",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  itersKey,
				Usage: "samples per case",
				Value: 100,
			},
			&cli.StringFlag{
				Name:  profileKey,
				Usage: "write a cpu profile to this file",
				Value: "default.pgo",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if path := cmd.String(profileKey); path != "" {
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := pprof.StartCPUProfile(f); err != nil {
					return err
				}
				defer pprof.StopCPUProfile()
			}

			iters := int(cmd.Int(itersKey))
			log.Printf("warming up")
			benchmarkPropagate(iters, false)

			benchmarkPropagate(iters, true)
			benchmarkNested(iters)
			return benchmarkMount(iters)
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})
	return tbl
}

func appendCalc(tbl table.Writer, name string, calc *tachymeter.Metrics) {
	tbl.AppendRow(table.Row{
		name,
		calc.Time.Avg,
		calc.Time.Min,
		calc.Time.P75,
		calc.Time.P99,
		calc.Time.Max,
	})
}

// benchmarkPropagate writes w keys, each watched by h bindings.
func benchmarkPropagate(iters int, shouldRender bool) {
	tbl := newTable("Binding propagation")

	for _, w := range ww {
		for _, h := range hh {
			data := make(map[string]any, w)
			for i := 0; i < w; i++ {
				data[fmt.Sprintf("k%d", i)] = 0
			}
			store, err := reactive.NewStore(data)
			if err != nil {
				panic(err)
			}
			root := store.Root()

			updates := 0
			for i := 0; i < w; i++ {
				key := fmt.Sprintf("k%d", i)
				for j := 0; j < h; j++ {
					reactive.NewBinding(root, key, func(_, _ any) { updates++ })
				}
			}

			tach := tachymeter.New(&tachymeter.Config{Size: iters})
			for n := 1; n <= iters; n++ {
				start := time.Now()
				for i := 0; i < w; i++ {
					root.Set(fmt.Sprintf("k%d", i), n)
				}
				tach.AddTime(time.Since(start))
			}

			appendCalc(tbl, fmt.Sprintf("propagate: %s * %d (%s updates)",
				humanize.Comma(int64(w)), h, humanize.Comma(int64(updates))), tach.Calc())
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

// benchmarkNested writes the leaf of a path d objects deep.
func benchmarkNested(iters int) {
	tbl := newTable("Nested path writes")

	for _, d := range []int{1, 8, 64} {
		leaf := map[string]any{"v": 0}
		data := leaf
		parts := []string{"v"}
		for i := 0; i < d; i++ {
			data = map[string]any{"n": data}
			parts = append([]string{"n"}, parts...)
		}
		path := strings.Join(parts, ".")

		store, err := reactive.NewStore(data)
		if err != nil {
			panic(err)
		}
		root := store.Root()
		reactive.NewBinding(root, path, nil)

		tach := tachymeter.New(&tachymeter.Config{Size: iters})
		for n := 1; n <= iters; n++ {
			start := time.Now()
			root.Assign(path, n)
			tach.AddTime(time.Since(start))
		}
		appendCalc(tbl, fmt.Sprintf("assign: depth %d", d), tach.Calc())
	}

	tbl.Render()
}

// benchmarkMount parses and mounts a template with n interpolations and n
// model inputs.
func benchmarkMount(iters int) error {
	tbl := newTable("Mount")

	for _, n := range []int{10, 100, 1_000} {
		var sb strings.Builder
		sb.WriteString(`<div id="app">`)
		data := make(map[string]any, n)
		for i := 0; i < n; i++ {
			fmt.Fprintf(&sb, `<p>{{ k%d }}</p><input v-k%d>`, i, i)
			data[fmt.Sprintf("k%d", i)] = i
		}
		sb.WriteString(`</div>`)
		markup := sb.String()

		tach := tachymeter.New(&tachymeter.Config{Size: iters})
		for i := 0; i < iters; i++ {
			doc, err := dom.ParseString(markup)
			if err != nil {
				return err
			}
			start := time.Now()
			if _, err := vm.New(vm.Options{El: "#app", Document: doc, Data: data}); err != nil {
				return err
			}
			tach.AddTime(time.Since(start))
		}
		appendCalc(tbl, fmt.Sprintf("mount: %s sites", humanize.Comma(int64(2*n))), tach.Calc())
	}

	tbl.Render()
	return nil
}
