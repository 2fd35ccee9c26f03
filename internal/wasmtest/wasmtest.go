// Package wasmtest builds minimal WASI modules used as test fixtures.
//
// The modules are hand-encoded so tests need no embedded interpreter
// binaries or a toolchain. Every length in these fixtures fits a
// single-byte LEB128, which keeps the encoding helpers trivial.
package wasmtest

const (
	secType     = 0x01
	secImport   = 0x02
	secFunction = 0x03
	secMemory   = 0x05
	secExport   = 0x07
	secCode     = 0x0A
	secData     = 0x0B
)

const (
	kindFunc   = 0x00
	kindMemory = 0x02
)

var header = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

func section(id byte, body []byte) []byte {
	return append([]byte{id, byte(len(body))}, body...)
}

func vec(items ...[]byte) []byte {
	out := []byte{byte(len(items))}
	for _, item := range items {
		out = append(out, item...)
	}
	return out
}

func name(s string) []byte {
	return append([]byte{byte(len(s))}, s...)
}

func export(field string, kind, index byte) []byte {
	return append(name(field), kind, index)
}

// funcBody encodes a code entry with no locals.
func funcBody(instrs ...byte) []byte {
	code := append([]byte{0x00}, instrs...)
	return append([]byte{byte(len(code))}, code...)
}

func module(sections ...[]byte) []byte {
	out := append([]byte{}, header...)
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}

var (
	typeVoid     = []byte{0x60, 0x00, 0x00}                               // () -> ()
	typeProcExit = []byte{0x60, 0x01, 0x7F, 0x00}                         // (i32) -> ()
	typeFdWrite  = []byte{0x60, 0x04, 0x7F, 0x7F, 0x7F, 0x7F, 0x01, 0x7F} // (i32,i32,i32,i32) -> i32
)

func wasiImport(field string, typeIndex byte) []byte {
	imp := append(name("wasi_snapshot_preview1"), name(field)...)
	return append(imp, kindFunc, typeIndex)
}

// Nop returns a module whose _start does nothing and returns normally.
func Nop() []byte {
	return module(
		section(secType, vec(typeVoid)),
		section(secFunction, vec([]byte{0x00})),
		section(secExport, vec(export("_start", kindFunc, 0))),
		section(secCode, vec(funcBody(0x0B))), // end
	)
}

// Trap returns a module whose _start executes an unreachable instruction.
func Trap() []byte {
	return module(
		section(secType, vec(typeVoid)),
		section(secFunction, vec([]byte{0x00})),
		section(secExport, vec(export("_start", kindFunc, 0))),
		section(secCode, vec(funcBody(0x00, 0x0B))), // unreachable, end
	)
}

// Exit returns a module whose _start calls proc_exit with the given code.
// The code must be below 64 so the i32.const operand fits one signed LEB
// byte.
func Exit(code byte) []byte {
	if code >= 64 {
		panic("wasmtest: exit code must be below 64")
	}
	return module(
		section(secType, vec(typeProcExit, typeVoid)),
		section(secImport, vec(wasiImport("proc_exit", 0))),
		section(secFunction, vec([]byte{0x01})),
		section(secExport, vec(export("_start", kindFunc, 1))),
		section(secCode, vec(funcBody(
			0x41, code, // i32.const code
			0x10, 0x00, // call proc_exit
			0x0B, // end
		))),
	)
}

// Print returns a module whose _start writes s to stdout via fd_write and
// returns normally. s must be at most 24 bytes so the fixed memory layout
// (iovec at 0, string at 8, nwritten at 40) holds.
func Print(s string) []byte {
	if len(s) > 24 {
		panic("wasmtest: print string too long for fixture layout")
	}

	// iovec{ptr: 8, len: len(s)} as two little-endian u32, then the string.
	data := []byte{0x08, 0x00, 0x00, 0x00, byte(len(s)), 0x00, 0x00, 0x00}
	data = append(data, s...)
	segment := append([]byte{0x00, 0x41, 0x00, 0x0B, byte(len(data))}, data...)

	return module(
		section(secType, vec(typeFdWrite, typeVoid)),
		section(secImport, vec(wasiImport("fd_write", 0))),
		section(secFunction, vec([]byte{0x01})),
		section(secMemory, vec([]byte{0x00, 0x01})), // min 1 page
		section(secExport, vec(
			export("memory", kindMemory, 0),
			export("_start", kindFunc, 1),
		)),
		section(secCode, vec(funcBody(
			0x41, 0x01, // i32.const 1 (stdout)
			0x41, 0x00, // i32.const 0 (iovs)
			0x41, 0x01, // i32.const 1 (iovs_len)
			0x41, 0x28, // i32.const 40 (nwritten)
			0x10, 0x00, // call fd_write
			0x1A, // drop
			0x0B, // end
		))),
		section(secData, vec(segment)),
	)
}

// NoEntry returns a well-formed module that exports no _start function.
func NoEntry() []byte {
	return module(
		section(secType, vec(typeVoid)),
		section(secFunction, vec([]byte{0x00})),
		section(secExport, vec(export("run", kindFunc, 0))),
		section(secCode, vec(funcBody(0x0B))),
	)
}

// WrongSignature returns a module whose _start takes a parameter, which
// violates the WASI command convention.
func WrongSignature() []byte {
	return module(
		section(secType, vec(typeProcExit)),
		section(secFunction, vec([]byte{0x00})),
		section(secExport, vec(export("_start", kindFunc, 0))),
		section(secCode, vec(funcBody(0x0B))),
	)
}

// Invalid returns bytes that are not a WASM module at all.
func Invalid() []byte {
	return []byte("definitely not a wasm module")
}
