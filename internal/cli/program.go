package cli

import (
	"errors"
	"io/fs"

	"github.com/ceranco/intcode/internal/intcode"
)

// loadProgram reads a program file, reporting failures through f.
func loadProgram(f *OutputFormatter, path string) (intcode.Memory, error) {
	image, err := intcode.Load(path)
	if err == nil {
		return image, nil
	}

	var perr *intcode.ParseError
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, f.Fail(ExitCommandError, ErrCodeNotFound, "program file not found: "+path, err)
	case errors.As(err, &perr):
		return nil, f.Fail(ExitCommandError, ErrCodeParse, "program does not parse", err)
	default:
		return nil, f.Fail(ExitCommandError, ErrCodeGeneric, "failed to load program", err)
	}
}
