/*
 * synavm - Execution context: memory + registers + stack + PC
 *
 * Copyright 2024, Richard Cornwell
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in
 * all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package vm unifies memory and registers behind one address-mapped value
// space, and owns the stack and program counter. The Interpreter borrows a
// *Machine mutably for the duration of one step; nothing else touches it
// concurrently.
package vm

import (
	"errors"
	"fmt"

	"github.com/mharlow/synavm/internal/memory"
)

// Word is the machine's native 16-bit value.
type Word = uint16

const (
	// NumRegisters is the register file size.
	NumRegisters = 8
	// RegisterBase is the first address that names a register rather than
	// a memory cell.
	RegisterBase Word = memory.Size
	// MaxAddress is one past the last valid register address; raws at or
	// above this are invalid.
	MaxAddress Word = RegisterBase + NumRegisters
)

// ErrAddressRange is returned when a raw operand or address falls outside
// 0x0000..0x8007.
var ErrAddressRange = errors.New("vm: address out of range")

// ErrOverflowRegister is returned by StoreRegister when a destination
// operand that must name a register does not (a literal, or a raw at or
// above 0x8008); Register holds that raw operand. It is kept distinct from
// ErrAddressRange so callers can tell a bad destination from a bad source.
type ErrOverflowRegister struct {
	Register int
}

func (e *ErrOverflowRegister) Error() string {
	return fmt.Sprintf("vm: register %d out of range", e.Register)
}

// ErrEmptyStack is returned by Pop when the stack has nothing on it.
var ErrEmptyStack = errors.New("vm: pop from empty stack")

// Machine is the Synacor execution context: memory, registers, stack and PC.
type Machine struct {
	mem       *memory.Memory
	registers [NumRegisters]Word
	stack     []Word
	pc        Word
}

// New returns a Machine with zeroed memory, registers, an empty stack and
// PC at 0.
func New() *Machine {
	return &Machine{mem: memory.New()}
}

// LoadImage installs a program image into memory without otherwise
// resetting the machine.
func (m *Machine) LoadImage(words []Word) error {
	return m.mem.LoadData(words)
}

// PC returns the current program counter.
func (m *Machine) PC() Word {
	return m.pc
}

// Jump sets the program counter directly (branch instructions).
func (m *Machine) Jump(pc Word) {
	m.pc = pc
}

// Advance moves the program counter forward by n words (non-branching
// instructions).
func (m *Machine) Advance(n Word) {
	m.pc += n
}

// Register returns the raw contents of register n without bounds checking
// beyond the array itself; callers that accept arbitrary indices should use
// Fetch/Store instead. It exists for the shell's register dump.
func (m *Machine) Register(n int) Word {
	return m.registers[n]
}

// isRegisterAddr reports whether addr names a register rather than memory,
// and if so which one.
func isRegisterAddr(addr Word) (int, bool) {
	if addr >= RegisterBase && addr < MaxAddress {
		return int(addr - RegisterBase), true
	}
	return 0, false
}

// Fetch reads the value named by a raw address: a memory cell for
// 0x0000..0x7FFF, a register for 0x8000..0x8007, and ErrAddressRange for
// anything else.
func (m *Machine) Fetch(addr Word) (Word, error) {
	if reg, ok := isRegisterAddr(addr); ok {
		return m.registers[reg], nil
	}
	if addr < RegisterBase {
		return m.mem.Read(addr)
	}
	return 0, ErrAddressRange
}

// Store writes the value named by a RAW destination: a destination operand
// like 0x8003 is decoded to register 3 here, at write time.
func (m *Machine) Store(addr, value Word) (Word, error) {
	if reg, ok := isRegisterAddr(addr); ok {
		old := m.registers[reg]
		m.registers[reg] = value
		return old, nil
	}
	if addr < RegisterBase {
		return m.mem.Write(addr, value)
	}
	return 0, ErrAddressRange
}

// StoreRegister writes the register named by the raw destination operand,
// failing with ErrOverflowRegister rather than ErrAddressRange when raw is
// not in 0x8000..0x8007 (a literal or an invalid raw). Used by opcodes whose
// destination operand must itself be a register reference (set, add, eq, ...).
func (m *Machine) StoreRegister(raw Word, value Word) error {
	reg, ok := isRegisterAddr(raw)
	if !ok {
		return &ErrOverflowRegister{Register: int(raw)}
	}
	m.registers[reg] = value
	return nil
}

// Resolve maps a raw operand to its effective value: literals return
// themselves (this never fails on a literal, by construction — it is the
// coercion every arithmetic opcode applies to a source operand before use),
// register references return the register's contents, and anything at or
// above 0x8008 fails.
func (m *Machine) Resolve(raw Word) (Word, error) {
	if raw < RegisterBase {
		return raw, nil
	}
	if reg, ok := isRegisterAddr(raw); ok {
		return m.registers[reg], nil
	}
	return 0, ErrAddressRange
}

// Push places a value on top of the stack.
func (m *Machine) Push(v Word) {
	m.stack = append(m.stack, v)
}

// Pop removes and returns the top of the stack, or ErrEmptyStack.
func (m *Machine) Pop() (Word, error) {
	if len(m.stack) == 0 {
		return 0, ErrEmptyStack
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

// StackEmpty reports whether the stack currently holds nothing — used by
// ret, which halts rather than errors when there is nothing to return to.
func (m *Machine) StackEmpty() bool {
	return len(m.stack) == 0
}

// StackDepth returns the number of values currently on the stack, for
// diagnostics.
func (m *Machine) StackDepth() int {
	return len(m.stack)
}
