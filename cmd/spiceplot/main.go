package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/edp1096/spiceplot/internal/config"
	"github.com/edp1096/spiceplot/pkg/netlist"
	"github.com/edp1096/spiceplot/pkg/rawfile"
	"github.com/edp1096/spiceplot/pkg/simulator"
	"github.com/edp1096/spiceplot/pkg/util"
	"github.com/edp1096/spiceplot/pkg/waveform"
)

var (
	configPath  = flag.String("config", "", "YAML config file")
	backend     = flag.String("backend", "", "simulator backend: ngspice or builtin (overrides config)")
	ngspicePath = flag.String("ngspice", "", "ngspice binary (overrides config)")
	timeout     = flag.Duration("timeout", 0, "simulation timeout (overrides config)")
	normalize   = flag.Bool("normalize", false, "print the normalized netlist and exit")
	showLog     = flag.Bool("log", false, "print the simulator log")
	verbose     = flag.Bool("v", false, "include the circuit equations in the builtin log")
	pngPath     = flag.String("png", "", "write the waveform as png")
	svgPath     = flag.String("svg", "", "write the waveform as svg")
	htmlPath    = flag.String("html", "", "write the waveform as an interactive html page")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] <netlist_file>\n", os.Args[0])
	flag.PrintDefaults()
}

func printSeries(s *rawfile.Series) {
	fmt.Printf("\n%s (%d points)\n", s.PlotTitle, s.Len())
	fmt.Printf("%-16s %s\n", s.XLabel, s.YLabel)
	fmt.Println("------------------------------------------------")
	for i := range s.X {
		fmt.Printf("%-16s %s\n", util.FormatAxisValue(s.XLabel, s.X[i]), util.FormatAxisValue(s.YLabel, s.Y[i]))
	}

	sum, err := waveform.Summarize(s)
	if err != nil {
		return
	}
	fmt.Printf("\nmin %s, max %s at %s, mean %s\n",
		util.FormatAxisValue(s.YLabel, sum.YMin), util.FormatAxisValue(s.YLabel, sum.YMax),
		util.FormatAxisValue(s.XLabel, sum.XAtMax), util.FormatAxisValue(s.YLabel, sum.YMean))
}

func writeChart(path string, render func(f *os.File) error) {
	if path == "" {
		return
	}

	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("Error creating %s: %v", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		log.Fatalf("Error rendering %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("Error writing %s: %v", path, err)
	}
	fmt.Printf("Wrote %s\n", path)
}

func main() {
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	// 1. Read netlist
	content, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("Error reading netlist file: %v", err)
	}

	if *normalize {
		fmt.Println(netlist.Normalize(string(content), "output.raw"))
		return
	}

	// 2. Configure
	if err := config.LoadDotenv(".env"); err != nil {
		log.Fatalf("Error loading .env: %v", err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if *backend != "" {
		cfg.Backend = *backend
	}
	if *ngspicePath != "" {
		cfg.Ngspice = *ngspicePath
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Error in configuration: %v", err)
	}

	runner, err := simulator.NewRunner(cfg.Backend, cfg.Ngspice, cfg.Format())
	if err != nil {
		log.Fatalf("Error creating runner: %v", err)
	}
	if b, ok := runner.(*simulator.Builtin); ok {
		b.Verbose = *verbose
	}
	svc := simulator.NewService(runner, cfg.Timeout)
	svc.Labels = cfg.PlotLabels()

	// 3. Simulate
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	resp, err := svc.Simulate(ctx, string(content))
	if err != nil {
		log.Fatalf("Error running simulation: %v", err)
	}
	if *showLog || !resp.OK {
		fmt.Println(resp.Logs)
	}
	if !resp.OK {
		log.Fatalf("Simulation failed (%s backend)", cfg.Backend)
	}
	fmt.Printf("Simulation completed in %v\n", time.Since(start).Round(time.Millisecond))

	// 4. Print result
	printSeries(&resp.Series)

	// 5. Charts
	writeChart(*pngPath, func(f *os.File) error {
		return waveform.RenderImage(f, &resp.Series, "png", waveform.DefaultWidth, waveform.DefaultHeight)
	})
	writeChart(*svgPath, func(f *os.File) error {
		return waveform.RenderImage(f, &resp.Series, "svg", waveform.DefaultWidth, waveform.DefaultHeight)
	})
	writeChart(*htmlPath, func(f *os.File) error {
		return waveform.RenderHTML(f, &resp.Series)
	})
}
