package image

/*
 * synavm - Program image loader test cases
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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mharlow/synavm/internal/vm"
)

func TestDecodeEvenBytes(t *testing.T) {
	words := Decode([]byte{0x01, 0x02, 0x03, 0x04})
	want := []vm.Word{0x0201, 0x0403}
	if len(words) != len(want) {
		t.Fatalf("Decode length got: %d expected: %d", len(words), len(want))
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("word %d got: %#04x expected: %#04x", i, words[i], want[i])
		}
	}
}

func TestDecodeOddTrailingByte(t *testing.T) {
	words := Decode([]byte{0x01, 0x02, 0x05})
	want := []vm.Word{0x0201, 0x0005}
	if len(words) != len(want) {
		t.Fatalf("Decode length got: %d expected: %d", len(words), len(want))
	}
	for i := range want {
		if words[i] != want[i] {
			t.Errorf("word %d got: %#04x expected: %#04x", i, words[i], want[i])
		}
	}
}

func TestLoadInstallsAtZero(t *testing.T) {
	m := vm.New()
	if err := Load(m, []byte{9, 0, 0, 0}); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	v, err := m.Fetch(0)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if v != 9 {
		t.Errorf("cell 0 got: %d expected: 9", v)
	}
}

func TestLoadFileMissing(t *testing.T) {
	m := vm.New()
	err := LoadFile(m, filepath.Join(t.TempDir(), "does-not-exist.bin"))
	if !errors.Is(err, ErrCannotLoadFile) {
		t.Errorf("LoadFile error got: %v expected: %v", err, ErrCannotLoadFile)
	}
}

func TestLoadFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")
	if err := os.WriteFile(path, []byte{21, 0}, 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	m := vm.New()
	if err := LoadFile(m, path); err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	v, err := m.Fetch(0)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if v != 21 {
		t.Errorf("cell 0 got: %d expected: 21", v)
	}
}
