package msg

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var (
	mu  sync.Mutex
	out io.Writer = os.Stdout
)

// SetOutput redirects every message; it returns the previous writer
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	return prev
}

// printTagged writes "<tag>: <message>\n" in one write so messages from
// concurrent compile jobs never interleave
func printTagged(tag, format string, a ...any) {
	line := tag + ": " + fmt.Sprintf(format, a...) + "\n"
	mu.Lock()
	defer mu.Unlock()
	io.WriteString(out, line)
}

func Error(format string, a ...any) {
	printTagged(color.HiRedString("error"), format, a...)
}

func Warn(format string, a ...any) {
	printTagged(color.YellowString("warn"), format, a...)
}

func Fatal(format string, a ...any) {
	printTagged(color.RedString("fatal"), format, a...)
	os.Exit(1)
}

func Info(format string, a ...any) {
	printTagged(color.HiGreenString("info"), format, a...)
}

// Status prints a progress line such as "   Compiling src/main.c"
func Status(verb, format string, a ...any) {
	pad := strings.Repeat(" ", max(12-len(verb), 0))
	line := pad + color.HiGreenString(verb) + " " + fmt.Sprintf(format, a...) + "\n"
	mu.Lock()
	defer mu.Unlock()
	io.WriteString(out, line)
}
