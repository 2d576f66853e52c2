package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/edp1096/spiceplot/internal/config"
	"github.com/edp1096/spiceplot/internal/server"
	"github.com/edp1096/spiceplot/pkg/library"
	"github.com/edp1096/spiceplot/pkg/simulator"
)

func main() {
	configPath := flag.String("config", "", "YAML config file")
	envPath := flag.String("env", ".env", "dotenv file, skipped when missing")
	flag.Parse()

	if err := config.LoadDotenv(*envPath); err != nil {
		log.Fatalf("Error loading %s: %v", *envPath, err)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	runner, err := simulator.NewRunner(cfg.Backend, cfg.Ngspice, cfg.Format())
	if err != nil {
		log.Fatalf("Error creating runner: %v", err)
	}
	if b, ok := runner.(*simulator.Builtin); ok {
		b.Verbose = cfg.Verbose
	}
	svc := simulator.NewService(runner, cfg.Timeout)
	svc.Labels = cfg.PlotLabels()

	store, err := library.NewStore(cfg.LibraryDir)
	if err != nil {
		log.Fatalf("Error opening circuit library: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("spiceplotd: backend %s, library %s", cfg.Backend, cfg.LibraryDir)
	srv := server.New(svc, store, cfg.AllowedOrigin)
	if err := srv.ListenAndServe(ctx, cfg.Addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
