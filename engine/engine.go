// Package engine executes cached runtime modules under a WASI sandbox.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
)

var (
	// ErrModuleLoad means the cached module could not be read or re-parsed.
	// It is distinct from install-time validation: the cache file may have
	// been tampered with after it was committed.
	ErrModuleLoad = errors.New("cannot load runtime module")
	// ErrScriptNotFound means the script path is not a readable file.
	ErrScriptNotFound = errors.New("script not found")
	// ErrTrap means the module faulted on an illegal operation.
	ErrTrap = errors.New("module trapped")
)

// TrapExitCode is the exit code reported when a module traps instead of
// returning or calling proc_exit.
const TrapExitCode = 1

// Outcome describes how a module run ended.
type Outcome struct {
	ExitCode int
	Trapped  bool
}

// Engine instantiates runtime modules with WASI preview1 and the host
// process's standard streams.
type Engine struct {
	runtime wazero.Runtime
	cache   wazero.CompilationCache
	cfg     config
	log     zerolog.Logger
}

// New creates an Engine. Close must be called to release resources.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	ctx := context.Background()

	var cache wazero.CompilationCache
	var err error
	if cfg.cacheDir != "" {
		cache, err = wazero.NewCompilationCacheWithDir(cfg.cacheDir)
		if err != nil {
			return nil, fmt.Errorf("create compilation cache: %w", err)
		}
	}

	rtConfig := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if cache != nil {
		rtConfig = rtConfig.WithCompilationCache(cache)
	}
	if cfg.memoryLimitPages > 0 {
		rtConfig = rtConfig.WithMemoryLimitPages(cfg.memoryLimitPages)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, rtConfig)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		if cache != nil {
			cache.Close(ctx)
		}
		rt.Close(ctx)
		return nil, fmt.Errorf("instantiate WASI: %w", err)
	}

	return &Engine{runtime: rt, cache: cache, cfg: cfg, log: cfg.logger}, nil
}

// Execute runs the module at modulePath with scriptPath as its program
// argument. The script's directory is preopened read-only at / so the
// interpreter can open it through WASI, and the configured standard
// streams are passed through byte for byte.
//
// It blocks until the module returns, calls proc_exit, or traps; there is
// no internal timeout. A normal return maps to exit code 0, proc_exit to
// its requested code, and a trap to TrapExitCode with Trapped set and an
// error wrapping ErrTrap. Traps never propagate as host faults.
func (e *Engine) Execute(ctx context.Context, modulePath, scriptPath string) (Outcome, error) {
	raw, err := os.ReadFile(modulePath)
	if err != nil {
		return Outcome{ExitCode: 1}, fmt.Errorf("%w: %v", ErrModuleLoad, err)
	}

	info, err := os.Stat(scriptPath)
	if err != nil || info.IsDir() {
		return Outcome{ExitCode: 1}, fmt.Errorf("%w: %s", ErrScriptNotFound, scriptPath)
	}

	compiled, err := e.runtime.CompileModule(ctx, raw)
	if err != nil {
		return Outcome{ExitCode: 1}, fmt.Errorf("%w: %v", ErrModuleLoad, err)
	}
	defer compiled.Close(ctx)

	scriptAbs, err := filepath.Abs(scriptPath)
	if err != nil {
		return Outcome{ExitCode: 1}, fmt.Errorf("%w: %v", ErrScriptNotFound, err)
	}
	scriptDir := filepath.Dir(scriptAbs)
	guestScript := "/" + filepath.Base(scriptAbs)

	moduleConfig := wazero.NewModuleConfig().
		WithStdin(e.cfg.stdin).
		WithStdout(e.cfg.stdout).
		WithStderr(e.cfg.stderr).
		WithArgs(filepath.Base(modulePath), guestScript).
		WithFSConfig(wazero.NewFSConfig().WithReadOnlyDirMount(scriptDir, "/")).
		WithName("")

	e.log.Debug().Str("module", modulePath).Str("script", scriptAbs).Msg("starting module")

	_, err = e.runtime.InstantiateModule(ctx, compiled, moduleConfig)
	if err == nil {
		return Outcome{ExitCode: 0}, nil
	}

	var exitErr *sys.ExitError
	if errors.As(err, &exitErr) {
		code := int(exitErr.ExitCode())
		e.log.Debug().Int("exit_code", code).Msg("module exited")
		return Outcome{ExitCode: code}, nil
	}

	e.log.Debug().Err(err).Msg("module trapped")
	return Outcome{ExitCode: TrapExitCode, Trapped: true}, fmt.Errorf("%w: %v", ErrTrap, err)
}

// Close releases the WASM runtime and compilation cache.
func (e *Engine) Close() error {
	ctx := context.Background()

	err := e.runtime.Close(ctx)
	if e.cache != nil {
		if cerr := e.cache.Close(ctx); err == nil {
			err = cerr
		}
	}
	return err
}
