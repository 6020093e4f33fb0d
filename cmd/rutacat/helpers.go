package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rutacat/rutacat/internal/config"
	"github.com/rutacat/rutacat/internal/regions"
	"github.com/rutacat/rutacat/internal/rules"
	"github.com/rutacat/rutacat/internal/schedule"
	"github.com/rutacat/rutacat/internal/store"
)

// openStore opens the sqlite store at the configured path, creating the
// data directory on first run.
func openStore() (*store.SQLite, error) {
	paths := config.GetPaths()
	if err := config.EnsureDir(paths.Data); err != nil {
		return nil, err
	}
	return store.New(paths.DB)
}

// loadGraph loads the comarca map from the configured data directory,
// falling back to the embedded topology when no comarques.json is there.
func loadGraph() (*regions.Graph, error) {
	if dir := config.Env().DataDir; dir != "" {
		path := filepath.Join(dir, "comarques.json")
		if _, err := os.Stat(path); err == nil {
			return regions.LoadFile(path)
		}
	}
	return regions.Default()
}

// loadCatalog loads rule definitions from the configured data directory,
// falling back to the embedded catalog when the directory holds none.
func loadCatalog() ([]rules.Definition, error) {
	dir := config.Env().DataDir
	if dir != "" {
		matches, err := filepath.Glob(filepath.Join(dir, "rules*.json"))
		if err == nil && len(matches) > 0 {
			return rules.LoadDir(dir)
		}
	}
	return rules.DefaultCatalog()
}

// newRunner assembles the schedule runner from configuration. The caller
// owns the returned store.
func newRunner() (*schedule.Runner, *store.SQLite, error) {
	st, err := openStore()
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	g, err := loadGraph()
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("load comarques: %w", err)
	}

	catalog, err := loadCatalog()
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("load rules: %w", err)
	}

	r := schedule.NewRunner(st, g, catalog)
	if n := config.Env().MinStops; n > 0 {
		r.SetMinStops(n)
	}
	return r, st, nil
}

// resolveMode maps a --mode flag to a difficulty, defaulting from env.
func resolveMode(id string) (rules.Mode, error) {
	if id == "" {
		id = config.Env().DefaultMode
	}
	mode, ok := rules.ModeByID(id)
	if !ok {
		return rules.Mode{}, fmt.Errorf("unknown mode %q", id)
	}
	return mode, nil
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		exitErr(err)
	}
	fmt.Println(string(b))
}

func exitErr(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
