package intcode

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by FindNounVerb when no pair produces the target.
var ErrNotFound = errors.New("no noun and verb produce the target output")

// AlarmNoun and AlarmVerb restore a program to the "1202 program alarm"
// state.
const (
	AlarmNoun = 12
	AlarmVerb = 2
)

// NounVerbRange bounds the noun and verb search, exclusive.
const NounVerbRange = 100

// RunNounVerb runs a copy of image with the given noun and verb and returns
// the resulting Memory[0].
func RunNounVerb(ctx context.Context, image Memory, noun, verb int64) (int64, error) {
	m := New(image.Clone(), nil, nil)
	if err := m.Set(noun, verb); err != nil {
		return 0, err
	}
	mem, err := m.RunOnce(ctx)
	if err != nil {
		return 0, err
	}
	return mem[0], nil
}

// FindNounVerb searches nouns and verbs in [0, NounVerbRange) for the first
// pair, noun-major, whose run leaves target in Memory[0]. Pairs that fault
// are skipped.
func FindNounVerb(ctx context.Context, image Memory, target int64) (noun, verb int64, err error) {
	if len(image) < 3 {
		return 0, 0, fmt.Errorf("program too short for noun and verb: %d cells", len(image))
	}

	m := New(image.Clone(), nil, nil)
	for noun = 0; noun < NounVerbRange; noun++ {
		for verb = 0; verb < NounVerbRange; verb++ {
			if err := ctx.Err(); err != nil {
				return 0, 0, err
			}
			if err := m.Set(noun, verb); err != nil {
				return 0, 0, err
			}
			mem, runErr := m.Run(ctx)
			if runErr != nil {
				continue
			}
			if mem[0] == target {
				return noun, verb, nil
			}
		}
	}
	return 0, 0, ErrNotFound
}
