package profile

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/dockstrap/dockstrap/internal/platform"
	lua "github.com/yuin/gopher-lua"
)

// Parser evaluates host profiles with platform detection.
type Parser struct {
	detector platform.Detector
}

// NewParser creates a profile parser with the given platform detector.
// A nil detector skips platform table injection, which is only useful
// in tests.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector}
}

// ParseFile evaluates the profile at path.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	return p.ParseString(ctx, string(data))
}

// ParseString evaluates a profile from a string.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Options, error) {
	L := newSandboxedVM()
	defer L.Close()

	if p.detector != nil {
		info, err := p.detector.Detect(ctx)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, info); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	return extractOptions(L)
}

// ParseError represents a profile parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractOptions extracts the options from a Lua state.
// It expects a global "provision" table with the profile structure.
func extractOptions(L *lua.LState) (*Options, error) {
	provisionTable := L.GetGlobal("provision")
	if provisionTable.Type() != lua.LTTable {
		return nil, &ParseError{
			Message: "missing or invalid 'provision' table",
			Detail:  fmt.Sprintf("expected table, got %s", provisionTable.Type()),
		}
	}

	opts := DefaultOptions()
	table := provisionTable.(*lua.LTable)

	if channelVal := table.RawGetString("channel"); channelVal.Type() == lua.LTString {
		opts.Channel = channelVal.String()
	}

	if pkgsVal := table.RawGetString("extra_packages"); pkgsVal.Type() == lua.LTTable {
		opts.ExtraPackages = extractPackages(pkgsVal.(*lua.LTable))
	}

	if shellVal := table.RawGetString("shell"); shellVal.Type() == lua.LTTable {
		shellTable := shellVal.(*lua.LTable)
		if aliasesVal := shellTable.RawGetString("aliases"); aliasesVal.Type() == lua.LTBool {
			opts.ShellAliases = bool(aliasesVal.(lua.LBool))
		}
	}

	if groupVal := table.RawGetString("docker_group"); groupVal.Type() == lua.LTBool {
		opts.DockerGroup = bool(groupVal.(lua.LBool))
	}

	if err := opts.Validate(); err != nil {
		return nil, &ParseError{
			Message: "profile validation failed",
			Detail:  err.Error(),
		}
	}

	return &opts, nil
}

// extractPackages extracts the extra package list from a Lua table.
// It filters out holes left by platform conditionals.
func extractPackages(table *lua.LTable) []string {
	var pkgs []string

	table.ForEach(func(key, value lua.LValue) {
		// Skip nil values (from conditionals like: platform.is_debian_family and "pkg" or nil)
		if value.Type() == lua.LTNil {
			return
		}

		// Skip non-string values
		if value.Type() != lua.LTString {
			return
		}

		pkgs = append(pkgs, value.String())
	})

	return pkgs
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	if parseErr, ok := err.(*ParseError); ok {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
