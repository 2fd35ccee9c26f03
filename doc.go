// Package rchidrun runs scripts in arbitrary languages by executing a
// cached WebAssembly interpreter module for each language under a WASI
// sandbox.
//
// # Overview
//
// A "runtime" is a WASM module that interprets a language (e.g. a Python
// interpreter compiled to WASM). Runtimes are fetched on demand, either
// from the wasmer registry for predefined languages or from a user-supplied
// URL for anything else, then validated and cached at
// $HOME/.rchidrun/plugins/<language>/runtime.wasm. Execution binds the
// process's standard streams to the module and maps its outcome (normal
// return, explicit exit, or trap) to a process exit code.
//
// # Basic Usage
//
//	rchidrun run python script.py
//	rchidrun sdk list
//	rchidrun sdk install ruby
//
// See the [language], [store], [install], and [engine] packages for the
// resolver, cache, installer, and execution engine respectively.
package rchidrun
