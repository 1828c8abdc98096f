/*
 * synavm - Main process.
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

package main

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	getopt "github.com/pborman/getopt/v2"

	"github.com/mharlow/synavm/internal/image"
	"github.com/mharlow/synavm/internal/interp"
	"github.com/mharlow/synavm/internal/logx"
	"github.com/mharlow/synavm/internal/shell"
	"github.com/mharlow/synavm/internal/vm"
)

var Logger *slog.Logger

func main() {
	optImage := getopt.StringLong("image", 'i', "challenge.bin", "Program image to load")
	optLogFile := getopt.StringLong("log", 'l', "", "Log file")
	optBreak := getopt.StringLong("break", 'b', "", "Breakpoint address (decimal or 0x hex): run to it, then enter the shell")
	optRun := getopt.BoolLong("run", 'r', "Run to completion instead of entering the shell")
	optHelp := getopt.BoolLong("help", 'h', "Help")
	getopt.Parse()

	if *optHelp {
		getopt.Usage()
		os.Exit(0)
	}

	var file *os.File
	if optLogFile != nil && *optLogFile != "" {
		var err error
		file, err = os.Create(*optLogFile)
		if err != nil {
			slog.Error("synavm: cannot create log file", "path", *optLogFile, "error", err)
			os.Exit(1)
		}
	}
	programLevel := logx.LevelFromEnv("SYNAVM_LOG")
	Logger = slog.New(logx.NewHandler(file, &slog.HandlerOptions{Level: programLevel}, false))
	slog.SetDefault(Logger)

	machine := vm.New()
	if err := image.LoadFile(machine, *optImage); err != nil {
		Logger.Error("synavm: cannot load image", "path", *optImage, "error", err)
		os.Exit(1)
	}

	interpreter := interp.New(os.Stdout, os.Stdin, Logger)
	driver := shell.New(machine, interpreter)

	if *optBreak != "" {
		target, err := parseBreak(*optBreak)
		if err != nil {
			Logger.Error("synavm: bad breakpoint", "value", *optBreak, "error", err)
			os.Exit(1)
		}
		if _, err := driver.RunUntil(target); err != nil {
			Logger.Error("synavm: execution error", "error", err,
				"pc", driver.CurrentPC(), "registers", driver.DumpRegisters())
			os.Exit(1)
		}
		shell.Console(driver)
		return
	}

	if *optRun {
		if err := driver.Run(); err != nil {
			Logger.Error("synavm: execution error", "error", err,
				"pc", driver.CurrentPC(), "registers", driver.DumpRegisters())
			os.Exit(1)
		}
		return
	}

	shell.Console(driver)
}

func parseBreak(s string) (vm.Word, error) {
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s, base = s[2:], 16
	}
	n, err := strconv.ParseUint(s, base, 16)
	if err != nil {
		return 0, err
	}
	return vm.Word(n), nil
}
