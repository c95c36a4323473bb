// Package main provides the battle simulator: it loads a scenario, runs an
// automated seeded battle and optionally saves the final state.
package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	var opts options
	envFile := flag.String("env", ".env", "dotenv file loaded before configuration")
	flag.StringVar(&opts.configPath, "config", "configs/dev.yaml", "path to configuration file")
	flag.StringVar(&opts.scenarioPath, "scenario", "scenarios/bridge.yaml", "path to battle scenario YAML")
	flag.Uint64Var(&opts.seed, "seed", 0, "random seed overriding battle.seed (0 = use config)")
	flag.IntVar(&opts.rounds, "rounds", 0, "rounds to play overriding battle.max_rounds (0 = use config)")
	flag.BoolVar(&opts.save, "save", false, "save the final battle state to the configured store")
	flag.StringVar(&opts.resume, "resume", "", "snapshot ID to continue instead of starting fresh")
	flag.BoolVar(&opts.list, "list", false, "list saved snapshots and exit")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("note: %s not loaded: %v", *envFile, err)
	}

	if err := run(context.Background(), opts, os.Stdout); err != nil {
		log.Fatalf("battlesim: %v", err)
	}
}
