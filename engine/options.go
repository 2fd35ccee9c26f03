package engine

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Option configures the Engine at creation time.
type Option func(*config)

type config struct {
	stdin            io.Reader
	stdout           io.Writer
	stderr           io.Writer
	cacheDir         string
	memoryLimitPages uint32 // 0 = wazero default (4GB)
	logger           zerolog.Logger
}

func defaultConfig() config {
	return config{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: zerolog.Nop(),
	}
}

// WithStdio replaces the standard streams handed to modules. The defaults
// are the host process's own streams.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(c *config) {
		c.stdin = stdin
		c.stdout = stdout
		c.stderr = stderr
	}
}

// WithCompilationCache enables a persistent compilation cache in dir for
// faster startup on repeated runs of the same runtime.
func WithCompilationCache(dir string) Option {
	return func(c *config) {
		c.cacheDir = dir
	}
}

// WithMemoryLimit caps module memory at the given number of 64KB pages.
func WithMemoryLimit(pages uint32) Option {
	return func(c *config) {
		c.memoryLimitPages = pages
	}
}

// WithLogger sets the engine's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(c *config) {
		c.logger = log
	}
}

// Memory limit constants for convenience.
const (
	MemoryLimit16MB  uint32 = 256
	MemoryLimit64MB  uint32 = 1024
	MemoryLimit256MB uint32 = 4096
	MemoryLimit1GB   uint32 = 16384
)
