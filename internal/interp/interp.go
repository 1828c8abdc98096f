/*
 * synavm - Fetch/decode/execute core
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

// Package interp implements the Synacor instruction set: one step of
// fetch, decode and dispatch per call, over a fixed opcode table indexed
// by opcode number, the same shape this codebase uses elsewhere for
// dense-integer opcode dispatch.
package interp

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mharlow/synavm/internal/vm"
)

// Opcode numbers, unchanged from the challenge's own numbering.
const (
	OpHalt = 0
	OpSet  = 1
	OpPush = 2
	OpPop  = 3
	OpEq   = 4
	OpGt   = 5
	OpJmp  = 6
	OpJt   = 7
	OpJf   = 8
	OpAdd  = 9
	OpMult = 10
	OpMod  = 11
	OpAnd  = 12
	OpOr   = 13
	OpNot  = 14
	OpRmem = 15
	OpWmem = 16
	OpCall = 17
	OpRet  = 18
	OpOut  = 19
	OpIn   = 20
	OpNoop = 21

	numOpcodes = 22
)

var opcodeNames = [numOpcodes]string{
	OpHalt: "halt", OpSet: "set", OpPush: "push", OpPop: "pop",
	OpEq: "eq", OpGt: "gt", OpJmp: "jmp", OpJt: "jt", OpJf: "jf",
	OpAdd: "add", OpMult: "mult", OpMod: "mod", OpAnd: "and", OpOr: "or",
	OpNot: "not", OpRmem: "rmem", OpWmem: "wmem", OpCall: "call", OpRet: "ret",
	OpOut: "out", OpIn: "in", OpNoop: "noop",
}

// Outcome reports what a Step did.
type Outcome int

const (
	// Continue means the PC was updated and execution should keep going.
	Continue Outcome = iota
	// Halted means opcode 0, or ret from an empty stack, ended execution.
	// This is not an error.
	Halted
)

func (o Outcome) String() string {
	if o == Halted {
		return "halted"
	}
	return "continue"
}

// ErrDivideByZero is returned by mod when the divisor resolves to zero.
// See DESIGN.md / SPEC_FULL.md §10 for why this is a hard error rather than
// a silently defined result.
var ErrDivideByZero = errors.New("interp: division by zero")

// UnknownOpCodeError names an opcode that isn't one of the 22 defined ones.
type UnknownOpCodeError struct {
	Opcode  vm.Word
	Address vm.Word
}

func (e *UnknownOpCodeError) Error() string {
	return fmt.Sprintf("interp: unknown opcode %d at address %#04x", e.Opcode, e.Address)
}

// Interpreter executes one instruction at a time against a *vm.Machine. It
// is stateless with respect to the program other than the host I/O streams
// and the opt-in trace logger; all program state lives in the Machine.
type Interpreter struct {
	out   *bufio.Writer
	in    *bufio.Reader
	trace *slog.Logger
}

// New builds an Interpreter writing opcode 19's bytes to out and reading
// opcode 20's bytes from in. trace may be nil, in which case tracing is
// disabled.
func New(out io.Writer, in io.Reader, trace *slog.Logger) *Interpreter {
	if trace == nil {
		trace = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Interpreter{
		out:   bufio.NewWriter(out),
		in:    bufio.NewReader(in),
		trace: trace,
	}
}

// stepFunc decodes and executes exactly the opcode it's registered for. It
// is responsible for advancing or branching the PC itself.
type stepFunc func(ip *Interpreter, m *vm.Machine) (Outcome, error)

var dispatch = buildDispatch()

// operand reads the raw word at m.PC()+n, the same unified address-mapped
// fetch used everywhere else — this is what makes operand decode near the
// top of memory spill into register space instead of erroring outright,
// per SPEC_FULL.md §9's boundary case.
func operand(m *vm.Machine, n vm.Word) (vm.Word, error) {
	return m.Fetch(m.PC() + n)
}

// Step decodes and executes the instruction at the current PC. A fetch
// error on an operand a given opcode never consumes must never surface:
// each stepFunc only reads the operands its own opcode needs.
func (ip *Interpreter) Step(m *vm.Machine) (Outcome, error) {
	opWord, err := m.Fetch(m.PC())
	if err != nil {
		return Continue, err
	}

	if int(opWord) >= numOpcodes || dispatch[opWord] == nil {
		return Continue, &UnknownOpCodeError{Opcode: opWord, Address: m.PC()}
	}

	ip.traceInstruction(m, opWord)

	return dispatch[opWord](ip, m)
}

func (ip *Interpreter) traceInstruction(m *vm.Machine, opcode vm.Word) {
	if !ip.trace.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	ip.trace.Debug("step", "pc", m.PC(), "opcode", opcodeNames[opcode])
}

func buildDispatch() [numOpcodes]stepFunc {
	var t [numOpcodes]stepFunc

	t[OpHalt] = func(ip *Interpreter, m *vm.Machine) (Outcome, error) {
		return Halted, nil
	}

	t[OpSet] = func(ip *Interpreter, m *vm.Machine) (Outcome, error) {
		araw, braw, err := operands2(m)
		if err != nil {
			return Continue, err
		}
		b, err := m.Resolve(braw)
		if err != nil {
			return Continue, err
		}
		if err := m.StoreRegister(araw, b); err != nil {
			return Continue, err
		}
		m.Advance(3)
		return Continue, nil
	}

	t[OpPush] = func(ip *Interpreter, m *vm.Machine) (Outcome, error) {
		araw, err := operand(m, 1)
		if err != nil {
			return Continue, err
		}
		a, err := m.Resolve(araw)
		if err != nil {
			return Continue, err
		}
		m.Push(a)
		m.Advance(2)
		return Continue, nil
	}

	t[OpPop] = func(ip *Interpreter, m *vm.Machine) (Outcome, error) {
		araw, err := operand(m, 1)
		if err != nil {
			return Continue, err
		}
		v, err := m.Pop()
		if err != nil {
			return Continue, err
		}
		if err := m.StoreRegister(araw, v); err != nil {
			return Continue, err
		}
		m.Advance(2)
		return Continue, nil
	}

	t[OpEq] = arith3(func(b, c vm.Word) (vm.Word, error) {
		if b == c {
			return 1, nil
		}
		return 0, nil
	})

	t[OpGt] = arith3(func(b, c vm.Word) (vm.Word, error) {
		if b > c {
			return 1, nil
		}
		return 0, nil
	})

	t[OpJmp] = func(ip *Interpreter, m *vm.Machine) (Outcome, error) {
		araw, err := operand(m, 1)
		if err != nil {
			return Continue, err
		}
		a, err := m.Resolve(araw)
		if err != nil {
			return Continue, err
		}
		m.Jump(a)
		return Continue, nil
	}

	t[OpJt] = jumpIf(func(cond vm.Word) bool { return cond != 0 })
	t[OpJf] = jumpIf(func(cond vm.Word) bool { return cond == 0 })

	t[OpAdd] = arith3(func(b, c vm.Word) (vm.Word, error) {
		return (b + c) & 0x7FFF, nil
	})

	t[OpMult] = arith3(func(b, c vm.Word) (vm.Word, error) {
		return vm.Word((uint32(b) * uint32(c)) & 0x7FFF), nil
	})

	t[OpMod] = arith3(func(b, c vm.Word) (vm.Word, error) {
		if c == 0 {
			return 0, ErrDivideByZero
		}
		return b % c, nil
	})

	t[OpAnd] = arith3(func(b, c vm.Word) (vm.Word, error) { return b & c, nil })
	t[OpOr] = arith3(func(b, c vm.Word) (vm.Word, error) { return b | c, nil })

	t[OpNot] = func(ip *Interpreter, m *vm.Machine) (Outcome, error) {
		araw, braw, err := operands2(m)
		if err != nil {
			return Continue, err
		}
		b, err := m.Resolve(braw)
		if err != nil {
			return Continue, err
		}
		if err := m.StoreRegister(araw, (^b)&0x7FFF); err != nil {
			return Continue, err
		}
		m.Advance(3)
		return Continue, nil
	}

	t[OpRmem] = func(ip *Interpreter, m *vm.Machine) (Outcome, error) {
		araw, braw, err := operands2(m)
		if err != nil {
			return Continue, err
		}
		addr, err := m.Resolve(braw)
		if err != nil {
			return Continue, err
		}
		v, err := m.Fetch(addr)
		if err != nil {
			return Continue, err
		}
		if err := m.StoreRegister(araw, v); err != nil {
			return Continue, err
		}
		m.Advance(3)
		return Continue, nil
	}

	t[OpWmem] = func(ip *Interpreter, m *vm.Machine) (Outcome, error) {
		araw, braw, err := operands2(m)
		if err != nil {
			return Continue, err
		}
		addr, err := m.Resolve(araw)
		if err != nil {
			return Continue, err
		}
		value, err := m.Resolve(braw)
		if err != nil {
			return Continue, err
		}
		if _, err := m.Store(addr, value); err != nil {
			return Continue, err
		}
		m.Advance(3)
		return Continue, nil
	}

	t[OpCall] = func(ip *Interpreter, m *vm.Machine) (Outcome, error) {
		araw, err := operand(m, 1)
		if err != nil {
			return Continue, err
		}
		target, err := m.Resolve(araw)
		if err != nil {
			return Continue, err
		}
		m.Push(m.PC() + 2)
		m.Jump(target)
		return Continue, nil
	}

	t[OpRet] = func(ip *Interpreter, m *vm.Machine) (Outcome, error) {
		if m.StackEmpty() {
			return Halted, nil
		}
		target, err := m.Pop()
		if err != nil {
			return Continue, err
		}
		m.Jump(target)
		return Continue, nil
	}

	t[OpOut] = func(ip *Interpreter, m *vm.Machine) (Outcome, error) {
		araw, err := operand(m, 1)
		if err != nil {
			return Continue, err
		}
		a, err := m.Resolve(araw)
		if err != nil {
			return Continue, err
		}
		if err := ip.out.WriteByte(byte(a % 256)); err != nil {
			return Continue, err
		}
		if err := ip.out.Flush(); err != nil {
			return Continue, err
		}
		m.Advance(2)
		return Continue, nil
	}

	t[OpIn] = func(ip *Interpreter, m *vm.Machine) (Outcome, error) {
		araw, err := operand(m, 1)
		if err != nil {
			return Continue, err
		}
		b, err := ip.in.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return Halted, nil
			}
			return Continue, err
		}
		if err := m.StoreRegister(araw, vm.Word(b)); err != nil {
			return Continue, err
		}
		m.Advance(2)
		return Continue, nil
	}

	t[OpNoop] = func(ip *Interpreter, m *vm.Machine) (Outcome, error) {
		m.Advance(1)
		return Continue, nil
	}

	return t
}

// operands2 reads the two raw operand words following the opcode, for the
// large family of instructions shaped (a, b).
func operands2(m *vm.Machine) (a, b vm.Word, err error) {
	if a, err = operand(m, 1); err != nil {
		return 0, 0, err
	}
	if b, err = operand(m, 2); err != nil {
		return 0, 0, err
	}
	return a, b, nil
}

// arith3 builds a stepFunc for the (a, b, c) shaped opcodes whose
// destination a is always a register reference: a <- op(resolve(b),
// resolve(c)). The destination check happens only once the result is known
// and is the last thing that can fail, so a literal destination never
// leaves a partial side effect behind.
func arith3(op func(b, c vm.Word) (vm.Word, error)) stepFunc {
	return func(ip *Interpreter, m *vm.Machine) (Outcome, error) {
		araw, err := operand(m, 1)
		if err != nil {
			return Continue, err
		}
		braw, err := operand(m, 2)
		if err != nil {
			return Continue, err
		}
		craw, err := operand(m, 3)
		if err != nil {
			return Continue, err
		}
		b, err := m.Resolve(braw)
		if err != nil {
			return Continue, err
		}
		c, err := m.Resolve(craw)
		if err != nil {
			return Continue, err
		}
		result, err := op(b, c)
		if err != nil {
			return Continue, err
		}
		if err := m.StoreRegister(araw, result); err != nil {
			return Continue, err
		}
		m.Advance(4)
		return Continue, nil
	}
}

// jumpIf builds a stepFunc for jt/jf: if cond(resolve(a)) then PC <-
// resolve(b), else advance past both operands.
func jumpIf(cond func(vm.Word) bool) stepFunc {
	return func(ip *Interpreter, m *vm.Machine) (Outcome, error) {
		araw, braw, err := operands2(m)
		if err != nil {
			return Continue, err
		}
		a, err := m.Resolve(araw)
		if err != nil {
			return Continue, err
		}
		if !cond(a) {
			m.Advance(3)
			return Continue, nil
		}
		b, err := m.Resolve(braw)
		if err != nil {
			return Continue, err
		}
		m.Jump(b)
		return Continue, nil
	}
}
