package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/othex/othex/pkg/engine"
)

// Config is the flat JSON configuration file. Command line flags
// override whatever the file sets.
type Config struct {
	Threads      int    `json:"threads"`
	HashMB       int    `json:"hash_mb"`
	Depth        int    `json:"depth"`
	Selectivity  int    `json:"selectivity"`
	ProbcutDepth int    `json:"probcut_depth"`
	EvalFile     string `json:"eval_file"`
	BookDir      string `json:"book_dir"`
	BookMargin   int    `json:"book_margin"`
	Verbose      bool   `json:"verbose"`
}

func DefaultConfig() Config {
	return Config{
		Threads:      1,
		HashMB:       64,
		Depth:        21,
		Selectivity:  engine.NoSelectivity,
		ProbcutDepth: 9,
	}
}

func (c *Config) Load(path string) error {
	var data, err = os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err = json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}
