package intcode

import (
	"fmt"
	"io"
	"strings"
)

// Disassemble writes a linear listing of image to w, one instruction per
// line. Cells that do not decode, or whose parameters run past the end of
// memory, are listed as data.
func Disassemble(w io.Writer, image Memory) error {
	for pc := 0; pc < len(image); {
		ins, err := Decode(image[pc])
		if err != nil || pc+ins.Width() > len(image) {
			if _, err := fmt.Fprintf(w, "%04d  data %d\n", pc, image[pc]); err != nil {
				return err
			}
			pc++
			continue
		}

		params := make([]string, 0, ins.Width()-1)
		for k := 0; k < ins.Width()-1; k++ {
			v := image[pc+1+k]
			if k < ins.Reads() && ins.Modes[k] == Immediate {
				params = append(params, fmt.Sprintf("#%d", v))
			} else {
				params = append(params, fmt.Sprintf("[%d]", v))
			}
		}

		line := fmt.Sprintf("%04d  %s", pc, ins.Op)
		if len(params) > 0 {
			line += " " + strings.Join(params, ", ")
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
		pc += ins.Width()
	}
	return nil
}
