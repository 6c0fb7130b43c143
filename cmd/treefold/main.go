package main

import (
	"os"
	"strings"

	"treefold-cli/internal/cli"
)

func looksLikeDocument(s string) bool {
	s = strings.TrimSpace(s)
	return strings.HasSuffix(s, ".md") ||
		strings.HasSuffix(s, ".markdown") ||
		strings.HasSuffix(s, ".org")
}

// rewriteDirectOpenArgs makes `treefold notes.md` behave like
// `treefold open notes.md`.
//
// Cobra treats the first non-flag token as a subcommand, so argv is rewritten
// before parsing. Persistent flags may come first (`treefold --format table
// notes.md`), so the first positional token is what matters, not argv[1].
func rewriteDirectOpenArgs(argv []string) []string {
	if len(argv) < 2 {
		return argv
	}

	// Minimal persistent-flag awareness: skip value flags together with
	// their value so the value is never mistaken for the first positional.
	valueFlags := map[string]bool{
		"--format": true,
		"--log":    true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			// Flag parsing stops here; next token is the first positional.
			if i+1 < len(argv) && looksLikeDocument(argv[i+1]) {
				out := make([]string, 0, len(argv)+1)
				out = append(out, argv[:i+1]...)
				out = append(out, "open")
				out = append(out, argv[i+1:]...)
				return out
			}
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if strings.Contains(a, "=") {
				continue
			}
			if valueFlags[a] {
				i++ // skip value if present
				continue
			}
			continue
		}

		// First positional token.
		if looksLikeDocument(a) {
			out := make([]string, 0, len(argv)+1)
			out = append(out, argv[:i]...)
			out = append(out, "open")
			out = append(out, argv[i:]...)
			return out
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteDirectOpenArgs(os.Args)

	cmd := cli.NewRootCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
