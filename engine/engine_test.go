package engine_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/RochdiFERjaoui1234/rchidrun/engine"
	"github.com/RochdiFERjaoui1234/rchidrun/internal/wasmtest"
)

// writeModule places module bytes at a runtime.wasm path like the store
// would, plus a script file for the run to reference.
func writeModule(t *testing.T, module []byte) (modulePath, scriptPath string) {
	t.Helper()
	dir := t.TempDir()

	modulePath = filepath.Join(dir, "runtime.wasm")
	if err := os.WriteFile(modulePath, module, 0o644); err != nil {
		t.Fatal(err)
	}

	scriptPath = filepath.Join(dir, "script.txt")
	if err := os.WriteFile(scriptPath, []byte("print('hi')\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return modulePath, scriptPath
}

func newEngine(t *testing.T, opts ...engine.Option) *engine.Engine {
	t.Helper()
	eng, err := engine.New(opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { eng.Close() })
	return eng
}

func TestExecuteNormalReturn(t *testing.T) {
	eng := newEngine(t)
	modulePath, scriptPath := writeModule(t, wasmtest.Nop())

	outcome, err := eng.Execute(context.Background(), modulePath, scriptPath)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if outcome.ExitCode != 0 || outcome.Trapped {
		t.Errorf("outcome = %+v, want exit 0, not trapped", outcome)
	}
}

func TestExecuteStdoutPassthrough(t *testing.T) {
	var stdout, stderr bytes.Buffer
	eng := newEngine(t, engine.WithStdio(strings.NewReader(""), &stdout, &stderr))
	modulePath, scriptPath := writeModule(t, wasmtest.Print("hello\n"))

	outcome, err := eng.Execute(context.Background(), modulePath, scriptPath)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if outcome.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", outcome.ExitCode)
	}
	if stdout.String() != "hello\n" {
		t.Errorf("stdout = %q, want %q", stdout.String(), "hello\n")
	}
}

func TestExecuteExplicitExit(t *testing.T) {
	eng := newEngine(t)
	modulePath, scriptPath := writeModule(t, wasmtest.Exit(7))

	outcome, err := eng.Execute(context.Background(), modulePath, scriptPath)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if outcome.ExitCode != 7 || outcome.Trapped {
		t.Errorf("outcome = %+v, want exit 7, not trapped", outcome)
	}
}

func TestExecuteExplicitExitZero(t *testing.T) {
	eng := newEngine(t)
	modulePath, scriptPath := writeModule(t, wasmtest.Exit(0))

	outcome, err := eng.Execute(context.Background(), modulePath, scriptPath)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if outcome.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", outcome.ExitCode)
	}
}

func TestExecuteTrap(t *testing.T) {
	eng := newEngine(t)
	modulePath, scriptPath := writeModule(t, wasmtest.Trap())

	outcome, err := eng.Execute(context.Background(), modulePath, scriptPath)
	if !errors.Is(err, engine.ErrTrap) {
		t.Fatalf("Execute error = %v, want ErrTrap", err)
	}
	if !outcome.Trapped {
		t.Error("outcome not marked trapped")
	}
	if outcome.ExitCode == 0 {
		t.Error("trapped outcome has exit code 0")
	}
}

func TestExecuteMissingScript(t *testing.T) {
	eng := newEngine(t)
	modulePath, _ := writeModule(t, wasmtest.Nop())

	_, err := eng.Execute(context.Background(), modulePath, filepath.Join(t.TempDir(), "absent.py"))
	if !errors.Is(err, engine.ErrScriptNotFound) {
		t.Fatalf("Execute error = %v, want ErrScriptNotFound", err)
	}
}

func TestExecuteMissingModule(t *testing.T) {
	eng := newEngine(t)
	_, scriptPath := writeModule(t, wasmtest.Nop())

	_, err := eng.Execute(context.Background(), filepath.Join(t.TempDir(), "runtime.wasm"), scriptPath)
	if !errors.Is(err, engine.ErrModuleLoad) {
		t.Fatalf("Execute error = %v, want ErrModuleLoad", err)
	}
}

func TestExecuteCorruptModule(t *testing.T) {
	// Defense in depth: a cache file overwritten after install must fail
	// to load, not crash.
	eng := newEngine(t)
	modulePath, scriptPath := writeModule(t, wasmtest.Invalid())

	_, err := eng.Execute(context.Background(), modulePath, scriptPath)
	if !errors.Is(err, engine.ErrModuleLoad) {
		t.Fatalf("Execute error = %v, want ErrModuleLoad", err)
	}
}

func TestExecuteWithCompilationCache(t *testing.T) {
	cacheDir := t.TempDir()
	eng := newEngine(t, engine.WithCompilationCache(cacheDir))
	modulePath, scriptPath := writeModule(t, wasmtest.Nop())

	for i := 0; i < 2; i++ {
		outcome, err := eng.Execute(context.Background(), modulePath, scriptPath)
		if err != nil || outcome.ExitCode != 0 {
			t.Fatalf("Execute = %+v, %v", outcome, err)
		}
	}
}
