/*
 * synavm - Low level memory
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

// Package memory implements the fixed 32,768-word linear store the Synacor
// machine addresses directly. It knows nothing about registers or the stack;
// those live one layer up, in package vm.
package memory

import "errors"

// Size is the number of addressable words. The high bit of an address is
// reserved for register references, so memory only ever occupies the low
// half of the 16-bit address space.
const Size = 0x8000

// ErrAddressRange is returned by Read/Write when addr >= Size.
var ErrAddressRange = errors.New("memory: address out of range")

// ErrDataTooLarge is returned by LoadData when the source is bigger than
// the machine can hold.
var ErrDataTooLarge = errors.New("memory: data too large to load")

// Memory is a fixed 32,768-word array, zero-initialised.
type Memory struct {
	cells [Size]uint16
}

// New returns a freshly zeroed Memory.
func New() *Memory {
	return &Memory{}
}

// LoadData replaces the prefix of memory with src. Cells beyond len(src)
// keep their previous value. Fails without modifying memory when src is
// too large to fit.
func (m *Memory) LoadData(src []uint16) error {
	if len(src) > Size {
		return ErrDataTooLarge
	}
	copy(m.cells[:], src)
	return nil
}

// Read returns the cell at addr.
func (m *Memory) Read(addr uint16) (uint16, error) {
	if int(addr) >= Size {
		return 0, ErrAddressRange
	}
	return m.cells[addr], nil
}

// Write replaces the cell at addr and returns its prior value.
func (m *Memory) Write(addr, value uint16) (uint16, error) {
	if int(addr) >= Size {
		return 0, ErrAddressRange
	}
	old := m.cells[addr]
	m.cells[addr] = value
	return old, nil
}
