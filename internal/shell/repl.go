/*
 * synavm - Liner front end for the shell
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

package shell

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/peterh/liner"
)

// Console reads lines from the terminal, via liner, and drives d until the
// user quits or the line source is exhausted. A halted program does not end
// the loop: each further step or run reports "halted" again. Errors from a
// command, including VM errors, are printed and the prompt returns.
func Console(d *Driver) {
	line := liner.NewLiner()
	defer line.Close()

	line.SetCtrlCAborts(true)
	line.SetCompleter(func(partial string) []string {
		return completions(partial, commandNames)
	})

	for {
		command, err := line.Prompt("synavm> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			slog.Error("shell: error reading line", "error", err)
			return
		}

		line.AppendHistory(command)
		quit, output, err := ProcessCommand(command, d)
		if err != nil {
			fmt.Println("error: " + err.Error())
			continue
		}
		if output != "" {
			fmt.Println(output)
		}
		if quit {
			return
		}
	}
}

// completions returns the entries of names that start with partial.
func completions(partial string, names []string) []string {
	var out []string
	for _, n := range names {
		if len(n) >= len(partial) && n[:len(partial)] == partial {
			out = append(out, n)
		}
	}
	return out
}
