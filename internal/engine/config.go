package engine

import (
	"runtime"

	"github.com/hupe1980/vecrank/resource"
)

// DefaultMinRowsPerWorker is the smallest chunk of rows worth a goroutine.
const DefaultMinRowsPerWorker = 1024

// Config configures a Store.
type Config struct {
	// Workers caps the goroutines used by one Rank call.
	// 0 means GOMAXPROCS. 1 ranks on the calling goroutine only.
	Workers int

	// MinRowsPerWorker is the smallest number of rows handed to one worker.
	// 0 means DefaultMinRowsPerWorker.
	MinRowsPerWorker int

	// Controller, if set, accounts the store's buffers against a shared
	// memory budget and lends worker slots. nil means unlimited.
	Controller *resource.Controller
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	if c.MinRowsPerWorker <= 0 {
		c.MinRowsPerWorker = DefaultMinRowsPerWorker
	}
	return c
}
