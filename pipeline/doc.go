// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package pipeline compiles shading stages, links them into programs and
// hands out named parameter slots.
//
// # Lifecycle
//
// A Manager walks a small state machine:
//
//	Empty -> StagesCompiled -> Linked -> Active
//	   \__________\______________\______> Failed (terminal)
//
// CompileStage validates WGSL source with naga, reflects its interface
// and binds the Go kernel registered for its entry point. Link checks that
// the pixel stage only reads what the position stage writes and merges the
// uniform tables of both stages. Activate selects the one program that
// draws consult.
//
// Any compile or link failure moves the Manager to Failed and releases the
// stages involved. The failure is returned as a *CompileError or
// *LinkError carrying the diagnostic log; callers are expected to abort
// start-up rather than continue with a half-built pipeline.
//
// # Parameter Slots
//
// ResolveSlot never fails. A name the program does not declare, or
// declares but never reads, resolves to an absent Slot whose writes are
// silently dropped.
//
// # Kernels
//
// The software backend executes stages with Go functions registered by
// entry point name (see RegisterPosition and RegisterPixel). The WGSL
// source remains the contract: its interface is what Link validates and
// its uniforms are what slots address.
//
// A Manager and the programs it creates are not safe for concurrent use.
// Uniforms snapshots are immutable and may be shared across goroutines.
package pipeline
