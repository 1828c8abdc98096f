package interp

/*
 * synavm - Fetch/decode/execute core test cases
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

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/mharlow/synavm/internal/vm"
)

func reg(n vm.Word) vm.Word { return vm.RegisterBase + n }

func newMachine(t *testing.T, program []vm.Word) *vm.Machine {
	t.Helper()
	m := vm.New()
	if err := m.LoadImage(program); err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	return m
}

func runToHalt(t *testing.T, ip *Interpreter, m *vm.Machine) {
	t.Helper()
	for i := 0; i < 10000; i++ {
		outcome, err := ip.Step(m)
		if err != nil {
			t.Fatalf("Step failed at pc=%#04x: %v", m.PC(), err)
		}
		if outcome == Halted {
			return
		}
	}
	t.Fatalf("program did not halt within 10000 steps")
}

func TestHaltStops(t *testing.T) {
	m := newMachine(t, []vm.Word{OpHalt})
	ip := New(&bytes.Buffer{}, strings.NewReader(""), nil)
	outcome, err := ip.Step(m)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if outcome != Halted {
		t.Errorf("outcome got: %v expected: %v", outcome, Halted)
	}
}

func TestSetAndOutPrintsValue(t *testing.T) {
	// set r0 85; out r0; halt
	m := newMachine(t, []vm.Word{OpSet, reg(0), 85, OpOut, reg(0), OpHalt})
	var out bytes.Buffer
	ip := New(&out, strings.NewReader(""), nil)
	runToHalt(t, ip, m)

	if out.String() != "U" {
		t.Errorf("output got: %q expected: %q", out.String(), "U")
	}
}

func TestSetRejectsLiteralDestination(t *testing.T) {
	// set 5 1  -- destination is a literal, must fail before any write
	m := newMachine(t, []vm.Word{OpSet, 5, 1, OpHalt})
	ip := New(&bytes.Buffer{}, strings.NewReader(""), nil)
	if _, err := ip.Step(m); err == nil {
		t.Errorf("expected error for literal destination, got nil")
	}
}

func TestAddWraps(t *testing.T) {
	// add r0 32758 15: two literals whose sum 32773 wraps to 5
	m := newMachine(t, []vm.Word{OpAdd, reg(0), 32758, 15, OpOut, reg(0), OpHalt})
	ip := New(&bytes.Buffer{}, strings.NewReader(""), nil)
	outcome, err := ip.Step(m)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if outcome != Continue {
		t.Fatalf("outcome got: %v expected: %v", outcome, Continue)
	}
	if got := m.Register(0); got != 5 {
		t.Errorf("r0 got: %d expected: 5", got)
	}
}

func TestModByZeroIsHardError(t *testing.T) {
	m := newMachine(t, []vm.Word{OpMod, reg(0), 10, 0, OpHalt})
	ip := New(&bytes.Buffer{}, strings.NewReader(""), nil)
	if _, err := ip.Step(m); !errors.Is(err, ErrDivideByZero) {
		t.Errorf("Step error got: %v expected: %v", err, ErrDivideByZero)
	}
}

func TestJtBranchesOnNonzero(t *testing.T) {
	// jt 1 6; out 'N'; halt; out 'Y'; halt
	m := newMachine(t, []vm.Word{
		OpJt, 1, 6,
		OpOut, 'N', OpHalt,
		OpOut, 'Y', OpHalt,
	})
	var out bytes.Buffer
	ip := New(&out, strings.NewReader(""), nil)
	runToHalt(t, ip, m)
	if out.String() != "Y" {
		t.Errorf("output got: %q expected: %q", out.String(), "Y")
	}
}

func TestCallAndRet(t *testing.T) {
	// call 3; halt; out 'Z'; ret
	m := newMachine(t, []vm.Word{
		OpCall, 3, OpHalt,
		OpOut, 'Z', OpRet,
	})
	var out bytes.Buffer
	ip := New(&out, strings.NewReader(""), nil)
	runToHalt(t, ip, m)
	if out.String() != "Z" {
		t.Errorf("output got: %q expected: %q", out.String(), "Z")
	}
}

func TestRetOnEmptyStackHalts(t *testing.T) {
	m := newMachine(t, []vm.Word{OpRet})
	ip := New(&bytes.Buffer{}, strings.NewReader(""), nil)
	outcome, err := ip.Step(m)
	if err != nil {
		t.Fatalf("Step failed: %v", err)
	}
	if outcome != Halted {
		t.Errorf("outcome got: %v expected: %v", outcome, Halted)
	}
}

func TestInReadsByteAtATime(t *testing.T) {
	// in r0; out r0; in r0; out r0; halt
	m := newMachine(t, []vm.Word{OpIn, reg(0), OpOut, reg(0), OpIn, reg(0), OpOut, reg(0), OpHalt})
	var out bytes.Buffer
	ip := New(&out, strings.NewReader("AB"), nil)
	runToHalt(t, ip, m)
	if out.String() != "AB" {
		t.Errorf("output got: %q expected: %q", out.String(), "AB")
	}
}

func TestInHaltsGracefullyOnEOF(t *testing.T) {
	m := newMachine(t, []vm.Word{OpIn, reg(0), OpHalt})
	ip := New(&bytes.Buffer{}, strings.NewReader(""), nil)
	outcome, err := ip.Step(m)
	if err != nil {
		t.Fatalf("Step returned error on EOF, expected graceful halt: %v", err)
	}
	if outcome != Halted {
		t.Errorf("outcome got: %v expected: %v", outcome, Halted)
	}
}

func TestUnknownOpcodeError(t *testing.T) {
	m := newMachine(t, []vm.Word{200})
	ip := New(&bytes.Buffer{}, strings.NewReader(""), nil)
	_, err := ip.Step(m)
	var unknown *UnknownOpCodeError
	if !errors.As(err, &unknown) {
		t.Fatalf("Step error got: %v expected: *UnknownOpCodeError", err)
	}
	if unknown.Opcode != 200 {
		t.Errorf("Opcode got: %d expected: 200", unknown.Opcode)
	}
}

// TestHaltNearTopOfMemoryNeverFetchesOperands exercises the PC=0x7FFF
// boundary: halt consumes no operands, so it must succeed even though
// PC+1/PC+2/PC+3 would spill into register space.
func TestHaltNearTopOfMemoryNeverFetchesOperands(t *testing.T) {
	m := vm.New()
	if err := m.LoadImage(make([]vm.Word, 0x8000)); err != nil {
		t.Fatalf("LoadImage failed: %v", err)
	}
	if _, err := m.Store(0x7FFF, OpHalt); err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	m.Jump(0x7FFF)

	ip := New(&bytes.Buffer{}, strings.NewReader(""), nil)
	outcome, err := ip.Step(m)
	if err != nil {
		t.Fatalf("Step at top of memory failed: %v", err)
	}
	if outcome != Halted {
		t.Errorf("outcome got: %v expected: %v", outcome, Halted)
	}
}

func TestPushPopRoundTrip(t *testing.T) {
	// push 19; set r0 0; pop r0; out r0; halt
	m := newMachine(t, []vm.Word{
		OpPush, 19,
		OpSet, reg(0), 0,
		OpPop, reg(0),
		OpOut, reg(0),
		OpHalt,
	})
	var out bytes.Buffer
	ip := New(&out, strings.NewReader(""), nil)
	runToHalt(t, ip, m)
	if out.String() != "\x13" {
		t.Errorf("output got: %q expected: %q", out.String(), "\x13")
	}
}

func TestWmemAndRmemRoundTrip(t *testing.T) {
	// wmem 100 1234; rmem r0 100; out r0... r0 holds 1234 which isn't
	// printable, so just check the register instead.
	m := newMachine(t, []vm.Word{
		OpWmem, 100, 1234,
		OpRmem, reg(0), 100,
		OpHalt,
	})
	ip := New(&bytes.Buffer{}, strings.NewReader(""), nil)
	runToHalt(t, ip, m)
	if got := m.Register(0); got != 1234 {
		t.Errorf("r0 got: %d expected: 1234", got)
	}
}

// The following cover the six worked end-to-end scenarios, literal
// program images included, from the distilled spec's design notes.

func TestScenarioS1SelfTestPrelude(t *testing.T) {
	// 9 32768 32769 4 19 32768 0
	m := newMachine(t, []vm.Word{9, 32768, 32769, 4, 19, 32768, 0})
	if err := m.StoreRegister(32769, 65); err != nil {
		t.Fatalf("preloading r1 failed: %v", err)
	}
	var out bytes.Buffer
	ip := New(&out, strings.NewReader(""), nil)
	runToHalt(t, ip, m)

	if out.String() != "E" {
		t.Errorf("output got: %q expected: %q", out.String(), "E")
	}
	if got := m.Register(0); got != 69 {
		t.Errorf("r0 got: %d expected: 69", got)
	}
}

func TestScenarioS2Hello(t *testing.T) {
	// 19 72 19 105 19 10 0
	m := newMachine(t, []vm.Word{19, 72, 19, 105, 19, 10, 0})
	var out bytes.Buffer
	ip := New(&out, strings.NewReader(""), nil)
	runToHalt(t, ip, m)

	if out.String() != "Hi\n" {
		t.Errorf("output got: %q expected: %q", out.String(), "Hi\n")
	}
}

// S3's literal word list in the distilled spec ("7 1 6 0 19 89 0 19 78
// 0") encodes jt's first operand as the bare literal 1, which is always
// truthy regardless of r1 and so cannot produce the documented
// Setup-r1=0-gives-N behavior under any reading of the addressing rules
// used by every other scenario (S1, S5, S6 all address registers as
// 32768+n). The two sub-cases below instead address r1 directly, which
// is the only encoding that realizes the scenario's documented Setup and
// Expected columns.
func TestScenarioS3ConditionalBranch(t *testing.T) {
	program := []vm.Word{7, 32769, 6, 19, 78, 0, 19, 89, 0}

	t.Run("r1=1 branches to Y", func(t *testing.T) {
		m := newMachine(t, program)
		if err := m.StoreRegister(32769, 1); err != nil {
			t.Fatalf("preloading r1 failed: %v", err)
		}
		var out bytes.Buffer
		ip := New(&out, strings.NewReader(""), nil)
		runToHalt(t, ip, m)
		if out.String() != "Y" {
			t.Errorf("output got: %q expected: %q", out.String(), "Y")
		}
	})

	t.Run("r1=0 falls through to N", func(t *testing.T) {
		m := newMachine(t, program)
		if err := m.StoreRegister(32769, 0); err != nil {
			t.Fatalf("preloading r1 failed: %v", err)
		}
		var out bytes.Buffer
		ip := New(&out, strings.NewReader(""), nil)
		runToHalt(t, ip, m)
		if out.String() != "N" {
			t.Errorf("output got: %q expected: %q", out.String(), "N")
		}
	})
}

func TestScenarioS4CallRet(t *testing.T) {
	// 17 5 19 33 0 19 72 18
	m := newMachine(t, []vm.Word{17, 5, 19, 33, 0, 19, 72, 18})
	var out bytes.Buffer
	ip := New(&out, strings.NewReader(""), nil)
	runToHalt(t, ip, m)

	if out.String() != "H!" {
		t.Errorf("output got: %q expected: %q", out.String(), "H!")
	}
}

func TestScenarioS5StackDiscipline(t *testing.T) {
	// 2 10 2 20 2 30 3 32768 3 32769 3 32770 0
	m := newMachine(t, []vm.Word{2, 10, 2, 20, 2, 30, 3, 32768, 3, 32769, 3, 32770, 0})
	ip := New(&bytes.Buffer{}, strings.NewReader(""), nil)
	runToHalt(t, ip, m)

	if got := m.Register(0); got != 30 {
		t.Errorf("r0 got: %d expected: 30", got)
	}
	if got := m.Register(1); got != 20 {
		t.Errorf("r1 got: %d expected: 20", got)
	}
	if got := m.Register(2); got != 10 {
		t.Errorf("r2 got: %d expected: 10", got)
	}
}

func TestScenarioS6ArithmeticModulus(t *testing.T) {
	// 9 32768 32767 1 10 32769 32767 32767 14 32770 0 0
	m := newMachine(t, []vm.Word{9, 32768, 32767, 1, 10, 32769, 32767, 32767, 14, 32770, 0, 0})
	ip := New(&bytes.Buffer{}, strings.NewReader(""), nil)
	runToHalt(t, ip, m)

	if got := m.Register(0); got != 0 {
		t.Errorf("r0 got: %d expected: 0", got)
	}
	if got := m.Register(1); got != 1 {
		t.Errorf("r1 got: %d expected: 1", got)
	}
	if got := m.Register(2); got != 32767 {
		t.Errorf("r2 got: %d expected: 32767", got)
	}
}
