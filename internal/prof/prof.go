// Package prof wires runtime profilers around a CLI run. Mutex and block
// profiles show contention on per-file locks.
package prof

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"
	"sync"
)

// Config names the output file of each profiler; empty disables it.
type Config struct {
	CPU   string
	Heap  string
	Mutex string // contention on sync.Mutex and the file lock registry
	Block string // time goroutines spent blocked, e.g. waiting for a file lock
	Trace string // runtime execution trace
}

func (c Config) Enabled() bool {
	return c.CPU != "" || c.Heap != "" || c.Mutex != "" || c.Block != "" || c.Trace != ""
}

// Session is a running set of profilers.
type Session struct {
	cfg       Config
	cpuFile   *os.File
	traceFile *os.File
	once      sync.Once
	err       error
}

// Start enables the configured profilers. On error everything already
// started is stopped again.
func Start(cfg Config) (*Session, error) {
	s := &Session{cfg: cfg}
	if cfg.CPU != "" {
		f, err := os.Create(cfg.CPU)
		if err != nil {
			return nil, err
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		s.cpuFile = f
	}
	if cfg.Trace != "" {
		f, err := os.Create(cfg.Trace)
		if err != nil {
			s.stopCPU()
			return nil, err
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			s.stopCPU()
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		s.traceFile = f
	}
	if cfg.Mutex != "" {
		runtime.SetMutexProfileFraction(1)
	}
	if cfg.Block != "" {
		runtime.SetBlockProfileRate(1)
	}
	return s, nil
}

// Stop ends every profiler and writes the snapshot profiles. It is safe to
// call more than once; later calls return the first result.
func (s *Session) Stop() error {
	if s == nil {
		return nil
	}
	s.once.Do(func() {
		var errs []error
		if s.traceFile != nil {
			trace.Stop()
			errs = append(errs, s.traceFile.Close())
		}
		errs = append(errs, s.stopCPU())
		if s.cfg.Heap != "" {
			runtime.GC()
			errs = append(errs, writeProfile("heap", s.cfg.Heap))
		}
		if s.cfg.Mutex != "" {
			errs = append(errs, writeProfile("mutex", s.cfg.Mutex))
			runtime.SetMutexProfileFraction(0)
		}
		if s.cfg.Block != "" {
			errs = append(errs, writeProfile("block", s.cfg.Block))
			runtime.SetBlockProfileRate(0)
		}
		s.err = errors.Join(errs...)
	})
	return s.err
}

func (s *Session) stopCPU() error {
	if s.cpuFile == nil {
		return nil
	}
	pprof.StopCPUProfile()
	err := s.cpuFile.Close()
	s.cpuFile = nil
	return err
}

func writeProfile(name, path string) (err error) {
	p := pprof.Lookup(name)
	if p == nil {
		return fmt.Errorf("no %s profile", name)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return p.WriteTo(f, 0)
}
