// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"errors"

	"github.com/gogpu/naga"
)

// Compiler turns stage source into backend code. A rejected source must
// produce an error whose text is the diagnostic log.
type Compiler interface {
	Compile(source string) ([]uint32, error)
}

// CompilerFunc adapts a function to the Compiler interface.
type CompilerFunc func(source string) ([]uint32, error)

// Compile calls f(source).
func (f CompilerFunc) Compile(source string) ([]uint32, error) { return f(source) }

// NagaCompiler validates WGSL and emits SPIR-V through naga.
type NagaCompiler struct{}

// Compile compiles WGSL source to SPIR-V words.
func (NagaCompiler) Compile(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, err
	}
	if len(spirvBytes) == 0 || len(spirvBytes)%4 != 0 {
		return nil, errors.New("naga produced a truncated SPIR-V module")
	}

	// SPIR-V is little-endian 32-bit words
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}
	return words, nil
}
