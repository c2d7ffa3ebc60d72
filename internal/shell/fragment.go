package shell

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var aliasNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.-]*$`)

// DefaultAliases returns the alias set applied when the profile does
// not override it.
func DefaultAliases() map[string]string {
	return map[string]string{
		"d":   "docker",
		"dc":  "docker compose",
		"dps": "docker ps",
	}
}

// RenderFragment builds the managed-block body for a shell: one alias
// per line in stable order, then a completion hook. Alias names are
// validated and values are single-quoted, so profile-supplied strings
// cannot break out of their own line.
func RenderFragment(shell ShellType, aliases map[string]string) (string, error) {
	if err := ValidateShell(shell); err != nil {
		return "", err
	}

	names := make([]string, 0, len(aliases))
	for name := range aliases {
		if !aliasNameRegex.MatchString(name) {
			return "", fmt.Errorf("invalid alias name %q", name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		value := singleQuote(aliases[name])
		switch shell {
		case ShellFish:
			fmt.Fprintf(&b, "alias %s %s\n", name, value)
		default:
			fmt.Fprintf(&b, "alias %s=%s\n", name, value)
		}
	}

	switch shell {
	case ShellFish:
		b.WriteString("command -q docker; and docker completion fish | source\n")
	default:
		fmt.Fprintf(&b, "command -v docker >/dev/null 2>&1 && source <(docker completion %s)\n", shell)
	}

	return b.String(), nil
}

// singleQuote wraps s in single quotes, escaping embedded quotes the
// POSIX way.
func singleQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
