/*
 * synavm - Program image loader
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

// Package image turns a little-endian byte stream into words and installs
// them into a machine's memory. It is treated as a simple external
// collaborator: pure byte-pair assembly, nothing the core interpreter's
// invariants depend on.
package image

import (
	"errors"
	"os"

	"github.com/mharlow/synavm/internal/memory"
	"github.com/mharlow/synavm/internal/vm"
)

// ErrCannotLoadFile means the image file does not exist.
var ErrCannotLoadFile = errors.New("image: cannot load file")

// ErrGeneralError wraps any other I/O failure reading the image file.
var ErrGeneralError = errors.New("image: general error reading file")

// Decode pairs bytes little-endian into words. An odd trailing byte forms
// a final word whose high byte is zero.
func Decode(data []byte) []vm.Word {
	words := make([]vm.Word, 0, (len(data)+1)/2)
	for i := 0; i < len(data); i += 2 {
		lo := data[i]
		var hi byte
		if i+1 < len(data) {
			hi = data[i+1]
		}
		words = append(words, vm.Word(hi)<<8|vm.Word(lo))
	}
	return words
}

// Load decodes data and installs it at address 0 of m. A decoded image
// longer than memory.Size fails with memory.ErrDataTooLarge and leaves m
// unchanged.
func Load(m *vm.Machine, data []byte) error {
	return m.LoadImage(Decode(data))
}

// LoadFile reads path and loads it into m, translating a missing file into
// ErrCannotLoadFile and any other read failure into ErrGeneralError.
func LoadFile(m *vm.Machine, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrCannotLoadFile
		}
		return ErrGeneralError
	}
	return Load(m, data)
}

// MaxWords is the largest image, in words, that Load will accept.
const MaxWords = memory.Size
