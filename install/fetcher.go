package install

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// WasmerFetcher downloads registry packages by invoking the wasmer CLI.
type WasmerFetcher struct {
	// Bin is the wasmer executable to invoke. Empty means "wasmer" on PATH.
	Bin string
}

// Fetch downloads the package named by ref into a temporary file via
// `wasmer package download` and returns its bytes. A missing wasmer binary
// is ErrRegistryUnavailable; a wasmer failure or empty package is
// ErrPackageFetch.
func (f *WasmerFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	bin := f.Bin
	if bin == "" {
		bin = "wasmer"
	}

	tmpDir, err := os.MkdirTemp("", "rchidrun-pkg-")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPackageFetch, err)
	}
	defer os.RemoveAll(tmpDir)

	out := filepath.Join(tmpDir, "runtime.wasm")
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, "package", "download", ref, "-o", out)
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: install it from https://wasmer.io", ErrRegistryUnavailable)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, fmt.Errorf("%w: wasmer exited %d: %s",
				ErrPackageFetch, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%w: %v", ErrPackageFetch, err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("%w: wasmer produced no package: %v", ErrPackageFetch, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: wasmer produced an empty package", ErrPackageFetch)
	}
	return raw, nil
}
