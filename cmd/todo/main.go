package main

import (
	"os"
	"strings"

	"todo-app/internal/cli"
)

func isRoute(s string) bool {
	switch strings.TrimSpace(s) {
	case "/", "/active", "/completed":
		return true
	}
	return false
}

// rewriteRouteArgs lets `todo /active` open the TUI like `todo --route /active`.
//
// Cobra treats the first non-flag token as a subcommand, so the route is moved into a flag before
// parsing. Persistent flags may come first (e.g. `todo --dir ./x /completed`).
func rewriteRouteArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--dir":       true,
		"--config":    true,
		"--backend":   true,
		"--log-level": true,
		"--route":     true,
		"--format":    true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++
			}
			continue
		}

		// First positional token.
		if isRoute(a) {
			out := make([]string, 0, len(argv)+1)
			out = append(out, argv[:i]...)
			out = append(out, "--route", a)
			out = append(out, argv[i+1:]...)
			return out
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteRouteArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
