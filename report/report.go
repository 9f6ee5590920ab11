// Package report prints user-facing status messages
package report

import (
	"os"

	"github.com/pterm/pterm"
)

func Success(format string, a ...any) {
	pterm.Success.Printfln(format, a...)
}

func Info(format string, a ...any) {
	pterm.Info.Printfln(format, a...)
}

func Warn(format string, a ...any) {
	pterm.Warning.Printfln(format, a...)
}

func Error(err error) {
	pterm.Error.Println(err)
}

// Quit prints err and exits with a non-zero status.
func Quit(err error) {
	pterm.Error.Println(err)
	os.Exit(1)
}
