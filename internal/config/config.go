// Package config loads amplifier network configuration written in CUE.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaCUE string

// Network is a decoded network configuration.
type Network struct {
	Program  string `json:"program"`
	Stages   int    `json:"stages"`
	Feedback bool   `json:"feedback"`
	Workers  int    `json:"workers"`
	DB       string `json:"db,omitempty"`

	// Dir is the directory of the file the configuration was loaded from.
	// Relative paths resolve against it.
	Dir string `json:"-"`
}

// ProgramPath returns the program path resolved against Dir.
func (n *Network) ProgramPath() string {
	return n.resolve(n.Program)
}

// DBPath returns the database path resolved against Dir, or "" if none is
// configured.
func (n *Network) DBPath() string {
	if n.DB == "" {
		return ""
	}
	return n.resolve(n.DB)
}

func (n *Network) resolve(p string) string {
	if filepath.IsAbs(p) || n.Dir == "" {
		return p
	}
	return filepath.Join(n.Dir, p)
}

// Error is a configuration error with its position in the source, when
// CUE reports one.
type Error struct {
	Message string
	Pos     token.Pos
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Message)
	}
	return e.Message
}

// Load reads a CUE file and validates it against the #Network schema.
func Load(path string) (*Network, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	cfg.Dir = filepath.Dir(path)
	return cfg, nil
}

// Parse validates CUE source against the #Network schema and decodes it.
// filename is used in error positions only.
func Parse(src []byte, filename string) (*Network, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Network"))

	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	v = def.Unify(v)
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	var cfg Network
	if err := v.Decode(&cfg); err != nil {
		return nil, formatCUEError(err)
	}
	return &cfg, nil
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &Error{Message: err.Error()}
	}

	first := errs[0]
	e := &Error{Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		e.Pos = positions[0]
	}
	return e
}
