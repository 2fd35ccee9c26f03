// Package install acquires runtime modules, validates them, and commits
// them to the store.
//
// Modules come from two kinds of source: a wasmer registry package,
// fetched through a [PackageFetcher], or a direct URL. Either way the
// bytes are validated as a well-formed WASM module exporting the WASI
// _start entry point before anything is written to the cache.
package install

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/tetratelabs/wazero"

	"github.com/RochdiFERjaoui1234/rchidrun/language"
	"github.com/RochdiFERjaoui1234/rchidrun/store"
)

var (
	// ErrRegistryUnavailable means the wasmer CLI could not be invoked at all.
	ErrRegistryUnavailable = errors.New("wasmer not found")
	// ErrPackageFetch means wasmer ran but produced no usable package.
	ErrPackageFetch = errors.New("package fetch failed")
	// ErrDownload means a direct URL fetch failed or returned an empty body.
	ErrDownload = errors.New("download failed")
	// ErrInvalidModule means the fetched bytes are not a well-formed module.
	ErrInvalidModule = errors.New("not a valid WASM module")
	// ErrMissingEntryPoint means the module lacks a WASI _start export.
	ErrMissingEntryPoint = errors.New("module does not export _start")
)

// PackageFetcher acquires a runtime module from a package registry given a
// package reference like "wasmer/python".
type PackageFetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// Installer fetches, validates, and caches runtime modules.
type Installer struct {
	store   *store.Store
	fetcher PackageFetcher
	client  *http.Client
	log     zerolog.Logger
}

// Option configures an Installer.
type Option func(*Installer)

// WithHTTPClient sets the client used for direct URL downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(i *Installer) {
		i.client = client
	}
}

// WithLogger sets the installer's logger.
func WithLogger(log zerolog.Logger) Option {
	return func(i *Installer) {
		i.log = log
	}
}

// New returns an Installer committing into st and fetching registry
// packages through fetcher.
func New(st *store.Store, fetcher PackageFetcher, opts ...Option) *Installer {
	inst := &Installer{
		store:   st,
		fetcher: fetcher,
		client:  http.DefaultClient,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(inst)
	}
	return inst
}

// Install acquires the runtime module for lang from src, validates it, and
// commits it to the store, returning the cached path. Validation happens
// strictly before the commit; an invalid module never becomes visible in
// the cache.
func (i *Installer) Install(ctx context.Context, lang string, src language.Source) (string, error) {
	var raw []byte
	var err error

	if ref, ok := src.Registry(); ok {
		i.log.Debug().Str("language", lang).Str("package", ref).Msg("fetching from registry")
		raw, err = i.fetcher.Fetch(ctx, ref)
	} else if url, ok := src.Remote(); ok {
		i.log.Debug().Str("language", lang).Str("url", url).Msg("downloading runtime")
		raw, err = i.download(ctx, url)
	} else {
		return "", fmt.Errorf("no source for language %q", lang)
	}
	if err != nil {
		return "", err
	}

	if err := Validate(raw); err != nil {
		return "", err
	}

	path, err := i.store.Commit(lang, raw)
	if err != nil {
		return "", err
	}
	i.log.Debug().Str("language", lang).Str("path", path).Msg("runtime installed")
	return path, nil
}

func (i *Installer) download(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownload, err)
	}

	resp, err := i.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrDownload, rawURL, resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDownload, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty response from %s", ErrDownload, rawURL)
	}
	return raw, nil
}

// Validate checks that raw is a well-formed WASM module exporting a WASI
// _start entry point (no parameters, no results). It uses the wazero
// interpreter so no machine code is generated for a module that may be
// rejected.
func Validate(raw []byte) error {
	ctx := context.Background()
	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfigInterpreter())
	defer rt.Close(ctx)

	compiled, err := rt.CompileModule(ctx, raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidModule, err)
	}
	defer compiled.Close(ctx)

	start, ok := compiled.ExportedFunctions()["_start"]
	if !ok {
		return ErrMissingEntryPoint
	}
	if len(start.ParamTypes()) != 0 || len(start.ResultTypes()) != 0 {
		return fmt.Errorf("%w: _start has a non-command signature", ErrMissingEntryPoint)
	}
	return nil
}
