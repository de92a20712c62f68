package observability

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/term"
)

const (
	colorReset    = "\033[0m"
	colorNeonCyan = "\033[96m"
)

// termMu synchronizes all terminal output so structured log events never
// interleave with the interactive prompt mid-line.
var termMu sync.Mutex

func termWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return 80
	}
	return w
}

// Interactive reports whether stdin is a terminal (REPL mode) rather than
// a pipe (one-shot mode).
func Interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

type termWriter struct{}

func (tw termWriter) Write(p []byte) (n int, err error) {
	termMu.Lock()
	defer termMu.Unlock()
	return os.Stderr.Write(p)
}

// NewTermWriter returns an io.Writer suitable for log.SetOutput() and the
// event logger, serialized with prompt rendering via termMu.
func NewTermWriter() *termWriter {
	return &termWriter{}
}

// PrintBanner renders the startup banner centered to the terminal width.
// Skipped automatically when stdout is not a terminal.
func PrintBanner(appName string) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return
	}

	banner := `
   __  ______  ____  _  ______________
  / / / / __ )/ __ \/ |/ / ____/ __ \
 / / / / __  / / / /    / / __/ / / /
/ /_/ / /_/ / /_/ / /|  / /_/ / /_/ /
\____/_____/\____/_/ |_/\____/\____/

  >> ` + strings.ToUpper(appName) + ` — NATURAL LANGUAGE CONSOLE <<
`

	width := termWidth()
	for _, l := range strings.Split(banner, "\n") {
		padding := (width - len(l)) / 2
		if padding < 0 {
			padding = 0
		}
		fmt.Printf("%s%s%s\n", strings.Repeat(" ", padding), colorNeonCyan+l, colorReset)
	}
}
