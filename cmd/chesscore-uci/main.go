package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/hailam/chesscore/internal/config"
	"github.com/hailam/chesscore/internal/storage"
	"github.com/hailam/chesscore/internal/uci"
)

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	cfg := config.Default()
	cfg.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	// Start CPU profiling if requested (via flag or environment variable)
	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	protocol := uci.New(cfg, os.Stdin, os.Stdout)

	if cfg.CacheEnabled {
		cache, err := openCache(cfg.DBPath)
		if err != nil {
			log.Printf("Warning: perft cache not available: %v", err)
		} else {
			defer cache.Close()
			protocol.SetCache(cache)
		}
	}

	if err := protocol.Run(); err != nil {
		log.Printf("input error: %v", err)
	}
}

func openCache(dir string) (*storage.PerftCache, error) {
	if dir == "" {
		return storage.NewPerftCache()
	}
	return storage.OpenPerftCache(dir)
}
