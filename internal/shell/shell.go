/*
 * synavm - Interactive shell driver
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

// Package shell drives a Machine and Interpreter interactively: step,
// run-to-completion, run-until-address, and a register dump, reached
// through a small line-oriented command set.
package shell

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mharlow/synavm/internal/interp"
	"github.com/mharlow/synavm/internal/vm"
)

// Driver couples a Machine with the Interpreter stepping it.
type Driver struct {
	machine *vm.Machine
	interp  *interp.Interpreter
}

// New returns a Driver for m, stepped by ip.
func New(m *vm.Machine, ip *interp.Interpreter) *Driver {
	return &Driver{machine: m, interp: ip}
}

// Step executes exactly one instruction.
func (d *Driver) Step() (interp.Outcome, error) {
	return d.interp.Step(d.machine)
}

// Run steps until the program halts or an error occurs.
func (d *Driver) Run() error {
	for {
		outcome, err := d.Step()
		if err != nil {
			return err
		}
		if outcome == interp.Halted {
			return nil
		}
	}
}

// RunUntil steps until the program counter reaches target, the program
// halts, or an error occurs. Halting before reaching target is not an
// error: it is reported to the caller as outcome == interp.Halted.
func (d *Driver) RunUntil(target vm.Word) (interp.Outcome, error) {
	for d.machine.PC() != target {
		outcome, err := d.Step()
		if err != nil {
			return outcome, err
		}
		if outcome == interp.Halted {
			return outcome, nil
		}
	}
	return interp.Continue, nil
}

// CurrentPC returns the machine's program counter.
func (d *Driver) CurrentPC() vm.Word {
	return d.machine.PC()
}

// DumpRegisters formats all eight registers and the stack depth on one line.
func (d *Driver) DumpRegisters() string {
	parts := make([]string, 0, vm.NumRegisters+1)
	for i := 0; i < vm.NumRegisters; i++ {
		parts = append(parts, fmt.Sprintf("r%d=%04x", i, d.machine.Register(i)))
	}
	parts = append(parts, fmt.Sprintf("stack=%d", d.machine.StackDepth()))
	return strings.Join(parts, " ")
}

// commandNames lists the exact command words ProcessCommand recognises,
// for the REPL's line completer.
var commandNames = []string{"exit", "quit", "regs", "where", "run", "until "}

func cmdExit(d *Driver) (bool, string, error) {
	return true, "", nil
}

func cmdRegs(d *Driver) (bool, string, error) {
	return false, d.DumpRegisters(), nil
}

func cmdWhere(d *Driver) (bool, string, error) {
	pc := d.CurrentPC()
	return false, fmt.Sprintf("pc=%04x (%d)", pc, pc), nil
}

func cmdRun(d *Driver) (bool, string, error) {
	if err := d.Run(); err != nil {
		return false, "", err
	}
	return false, "halted", nil
}

func cmdUntil(d *Driver, arg string) (bool, string, error) {
	target, err := parseAddress(arg)
	if err != nil {
		return false, "", err
	}
	outcome, err := d.RunUntil(target)
	if err != nil {
		return false, "", err
	}
	if outcome == interp.Halted {
		return false, "halted", nil
	}
	return false, fmt.Sprintf("pc=%04x", d.CurrentPC()), nil
}

func cmdStep(d *Driver) (bool, string, error) {
	outcome, err := d.Step()
	if err != nil {
		return false, "", err
	}
	if outcome == interp.Halted {
		return false, "halted", nil
	}
	return false, fmt.Sprintf("pc=%04x", d.CurrentPC()), nil
}

// parseAddress accepts a decimal number or a 0x-prefixed hex address.
func parseAddress(s string) (vm.Word, error) {
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	n, err := strconv.ParseUint(s, base, 16)
	if err != nil {
		return 0, fmt.Errorf("shell: bad address %q: %w", s, err)
	}
	return vm.Word(n), nil
}

// ProcessCommand executes one entered line against d. The five command
// names match exactly, "until " is recognised by prefix to take its
// address argument, and everything else (an unrecognised word, a typed
// prefix of a command name, or the empty line) performs a single step.
func ProcessCommand(commandLine string, d *Driver) (quit bool, output string, err error) {
	line := strings.TrimRight(commandLine, "\r\n")
	switch line {
	case "exit", "quit":
		return cmdExit(d)
	case "regs":
		return cmdRegs(d)
	case "where":
		return cmdWhere(d)
	case "run":
		return cmdRun(d)
	default:
		if strings.HasPrefix(line, "until ") {
			return cmdUntil(d, strings.TrimPrefix(line, "until "))
		}
		return cmdStep(d)
	}
}
