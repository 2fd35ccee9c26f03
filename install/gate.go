package install

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/RochdiFERjaoui1234/rchidrun/language"
	"github.com/RochdiFERjaoui1234/rchidrun/store"
)

var (
	// ErrAborted means the user declined the install prompt.
	ErrAborted = errors.New("installation aborted")
	// ErrInvalidURL means the user supplied an empty or malformed runtime URL.
	ErrInvalidURL = errors.New("invalid runtime URL")
)

// Prompter asks the invoking user a question and returns their answer.
// Implementations block until input arrives; there is no timeout.
type Prompter interface {
	Ask(question string) (string, error)
}

// PrompterFunc adapts a function to the Prompter interface.
type PrompterFunc func(question string) (string, error)

// Ask calls f.
func (f PrompterFunc) Ask(question string) (string, error) {
	return f(question)
}

// Gate ensures a language has an installed runtime before execution. On a
// cache miss it asks the user for consent (predefined languages) or for a
// runtime URL (everything else) and delegates to the Installer.
type Gate struct {
	store     *store.Store
	installer *Installer
	prompter  Prompter
	log       zerolog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithGateLogger sets the gate's logger.
func WithGateLogger(log zerolog.Logger) GateOption {
	return func(g *Gate) {
		g.log = log
	}
}

// NewGate returns a Gate checking st and installing through installer,
// using prompter for the consent exchange.
func NewGate(st *store.Store, installer *Installer, prompter Prompter, opts ...GateOption) *Gate {
	g := &Gate{
		store:     st,
		installer: installer,
		prompter:  prompter,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Ensure returns the cached runtime module path for lang, installing one
// on a miss. A hit returns immediately: no prompt, no network access,
// nothing beyond the existence check.
func (g *Gate) Ensure(ctx context.Context, lang string) (string, error) {
	if path, ok := g.store.Lookup(lang); ok {
		g.log.Debug().Str("language", lang).Str("path", path).Msg("runtime cached")
		return path, nil
	}

	src, predefined := language.Resolve(lang)
	if predefined {
		pkg, _ := src.Registry()
		answer, err := g.prompter.Ask(fmt.Sprintf(
			"No runtime found for %q. Install %s via wasmer? (y/n): ", lang, pkg))
		if err != nil {
			return "", fmt.Errorf("read answer: %w", err)
		}
		if !affirmative(answer) {
			return "", fmt.Errorf("%w: declined install of %s", ErrAborted, pkg)
		}
		return g.installer.Install(ctx, lang, src)
	}

	answer, err := g.prompter.Ask(fmt.Sprintf(
		"Language %q is not predefined. URL of its WASM runtime: ", lang))
	if err != nil {
		return "", fmt.Errorf("read answer: %w", err)
	}
	src, err = parseRuntimeURL(answer)
	if err != nil {
		return "", err
	}
	return g.installer.Install(ctx, lang, src)
}

// affirmative treats anything but an explicit yes as a decline.
func affirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func parseRuntimeURL(raw string) (language.Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return language.Source{}, fmt.Errorf("%w: no URL given", ErrInvalidURL)
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return language.Source{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return language.Source{}, fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}
	return language.URLSource(raw), nil
}
