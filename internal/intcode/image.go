package intcode

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Memory is a machine's fixed-length memory image.
type Memory []int64

// Clone returns a copy of m that shares no storage with it.
func (m Memory) Clone() Memory {
	if m == nil {
		return nil
	}
	c := make(Memory, len(m))
	copy(c, m)
	return c
}

// String returns the canonical comma-separated text form of m.
func (m Memory) String() string {
	var b strings.Builder
	for i, v := range m {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(v, 10))
	}
	return b.String()
}

// Hash returns the hex SHA-256 of the canonical text form of m.
func (m Memory) Hash() string {
	sum := sha256.Sum256([]byte(m.String()))
	return hex.EncodeToString(sum[:])
}

// Parse decodes a program written as comma-separated base-10 integers.
//
// Surrounding whitespace (typically a trailing newline) is ignored and the
// text is NFKC-normalized first. An empty program is an error.
func Parse(text string) (Memory, error) {
	text = strings.TrimSpace(norm.NFKC.String(text))
	if text == "" {
		return nil, errors.New("empty program")
	}

	fields := strings.Split(text, ",")
	mem := make(Memory, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return nil, &ParseError{Index: i, Text: f, Err: err}
		}
		mem[i] = v
	}
	return mem, nil
}

// Load reads and parses the program file at path.
func Load(path string) (Memory, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("program file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("program file: %s is a directory", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read program: %w", err)
	}
	mem, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return mem, nil
}
