// Package shader loads WGSL source files, checks them with the naga front end
// and creates GPU shader modules from them.
package shader

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/wgpu"

	"github.com/gogpu/beany/internal/asset"
	"github.com/gogpu/beany/internal/logging"
)

// Default entry point names.
const (
	DefaultVertexEntry   = "vs_main"
	DefaultFragmentEntry = "fs_main"
)

// Sentinel errors.
var (
	ErrRead       = errors.New("shader: cannot read source")
	ErrInvalid    = errors.New("shader: invalid WGSL")
	ErrEntryPoint = errors.New("shader: missing entry point")
)

// Error describes a WGSL source rejected by the front end.
type Error struct {
	// Path is the source file, empty for in-memory sources.
	Path string

	// Phase is the front-end phase that failed: "parse", "lower" or "validate".
	Phase string

	// Details holds the diagnostics reported by that phase.
	Details []string
}

func (e *Error) Error() string {
	where := e.Path
	if where == "" {
		where = "<source>"
	}
	return fmt.Sprintf("shader: %s: %s failed: %s", where, e.Phase, strings.Join(e.Details, "; "))
}

// Unwrap makes errors.Is(err, ErrInvalid) hold.
func (e *Error) Unwrap() error { return ErrInvalid }

// ModuleCreator creates shader modules. *wgpu.Device satisfies it.
type ModuleCreator interface {
	CreateShaderModule(desc *wgpu.ShaderModuleDescriptor) (*wgpu.ShaderModule, error)
}

// Config selects the entry points a source must expose.
type Config struct {
	VertexEntry   string
	FragmentEntry string
	Logger        *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.VertexEntry == "" {
		c.VertexEntry = DefaultVertexEntry
	}
	if c.FragmentEntry == "" {
		c.FragmentEntry = DefaultFragmentEntry
	}
	return c
}

// Module is a compiled shader module together with its checked entry points.
type Module struct {
	*wgpu.ShaderModule

	VertexEntry   string
	FragmentEntry string
}

// Load reads the WGSL file at path, checks it and creates a shader module on
// device. The device is not touched when the file is missing or invalid.
func Load(device ModuleCreator, path string, cfg Config) (*Module, error) {
	cfg = cfg.withDefaults()
	log := logging.Or(cfg.Logger)

	src, err := asset.ReadText(path)
	if err != nil {
		log.Error("shader: failed to read source", "path", path, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrRead, err)
	}

	if err := Check(src, cfg.VertexEntry, cfg.FragmentEntry); err != nil {
		var se *Error
		if errors.As(err, &se) {
			se.Path = path
		}
		log.Error("shader: rejected", "path", path, "err", err)
		return nil, err
	}

	sm, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: path,
		WGSL:  src,
	})
	if err != nil {
		return nil, fmt.Errorf("shader: create module %q: %w", path, err)
	}
	log.Debug("shader: module created", "path", path,
		"vertex", cfg.VertexEntry, "fragment", cfg.FragmentEntry)

	return &Module{
		ShaderModule:  sm,
		VertexEntry:   cfg.VertexEntry,
		FragmentEntry: cfg.FragmentEntry,
	}, nil
}

// Check parses, lowers and validates src, then verifies that it declares a
// vertex entry point named vertex and a fragment entry point named fragment.
func Check(src, vertex, fragment string) error {
	ast, err := naga.Parse(src)
	if err != nil {
		return &Error{Phase: "parse", Details: []string{err.Error()}}
	}
	mod, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return &Error{Phase: "lower", Details: []string{err.Error()}}
	}
	verrs, err := naga.Validate(mod)
	if err != nil {
		return &Error{Phase: "validate", Details: []string{err.Error()}}
	}
	if len(verrs) > 0 {
		details := make([]string, len(verrs))
		for i := range verrs {
			details[i] = verrs[i].Error()
		}
		return &Error{Phase: "validate", Details: details}
	}

	if !hasEntryPoint(mod, vertex, ir.StageVertex) {
		return fmt.Errorf("%w: vertex %q", ErrEntryPoint, vertex)
	}
	if !hasEntryPoint(mod, fragment, ir.StageFragment) {
		return fmt.Errorf("%w: fragment %q", ErrEntryPoint, fragment)
	}
	return nil
}

func hasEntryPoint(mod *ir.Module, name string, stage ir.ShaderStage) bool {
	for i := range mod.EntryPoints {
		if ep := &mod.EntryPoints[i]; ep.Name == name && ep.Stage == stage {
			return true
		}
	}
	return false
}
