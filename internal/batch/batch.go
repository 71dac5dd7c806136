// Package batch converts many OBJ files with a worker pool.
package batch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/objbench/internal/service"
	"github.com/Faultbox/objbench/pkg/encoding"
)

// ErrDuplicateOutput is reported for an input whose output path is
// already claimed by an earlier input in the same run.
var ErrDuplicateOutput = errors.New("output path already used by another input")

// Converter is the part of service.Service the pool needs.
type Converter interface {
	Convert(up service.Upload) (*service.Result, error)
}

// Config holds batch run settings.
type Config struct {
	OutputDir string
	Workers   int
	Progress  time.Duration // Interval between progress logs, 0 disables
}

// Result holds the outcome of converting one input file.
type Result struct {
	Input   string `json:"input"`
	Output  string `json:"output,omitempty"`
	Model   string `json:"model,omitempty"`
	Bytes   int    `json:"bytes,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Run converts every input path and returns results in input order.
func Run(conv Converter, cfg Config, inputs []string, log *zap.Logger) []Result {
	if log == nil {
		log = zap.NewNop()
	}
	workers := max(cfg.Workers, 1)

	total := len(inputs)
	results := make([]Result, total)
	var processed atomic.Int64
	start := time.Now()

	done := make(chan struct{})
	if cfg.Progress > 0 {
		go func() {
			ticker := time.NewTicker(cfg.Progress)
			defer ticker.Stop()
			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					log.Info("batch progress",
						zap.Int64("done", processed.Load()),
						zap.Int("total", total),
						zap.Duration("elapsed", time.Since(start)),
					)
				}
			}
		}()
	}

	outputs := make([]string, total)
	claimed := make(map[string]string, total)
	var queue []int
	for i, input := range inputs {
		outputs[i] = OutputPath(cfg.OutputDir, input)
		if first, ok := claimed[outputs[i]]; ok {
			results[i] = Result{Input: input, Error: errors.Wrapf(ErrDuplicateOutput, "%s (%s)", outputs[i], first).Error()}
			log.Warn("conversion skipped", zap.String("input", input), zap.String("error", results[i].Error))
			processed.Add(1)
			continue
		}
		claimed[outputs[i]] = input
		queue = append(queue, i)
	}

	jobs := make(chan int, workers*2)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = convertFile(conv, inputs[idx], outputs[idx])
				if !results[idx].Success {
					log.Warn("conversion failed", zap.String("input", inputs[idx]), zap.String("error", results[idx].Error))
				}
				processed.Add(1)
			}
		}()
	}

	for _, i := range queue {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	close(done)

	return results
}

// OutputPath returns where the JSON for input is written: <base>.json in
// outDir, or next to the input when outDir is empty.
func OutputPath(outDir, input string) string {
	dir := outDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, encoding.BaseName(filepath.Base(input))+".json")
}

func convertFile(conv Converter, input, path string) Result {
	res := Result{Input: input}

	data, err := os.ReadFile(input)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	out, err := conv.Convert(service.Upload{FileName: filepath.Base(input), Data: data})
	if err != nil {
		res.Error = err.Error()
		return res
	}

	if err := os.WriteFile(path, out.Content, 0644); err != nil {
		res.Error = err.Error()
		return res
	}

	res.Output = path
	res.Model = out.ModelName
	res.Bytes = len(out.Content)
	res.Success = true
	return res
}

// Summary counts successes and failures.
func Summary(results []Result) (ok, failed int) {
	for _, r := range results {
		if r.Success {
			ok++
		} else {
			failed++
		}
	}
	return ok, failed
}

// WriteManifest writes the results as indented JSON.
func WriteManifest(path string, results []Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding manifest")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "writing manifest %s", path)
}
