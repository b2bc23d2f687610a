package intcode

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/ceranco/intcode/internal/stream"
)

// State is the execution state of a machine.
type State int32

const (
	// Running is the initial state and the state between instructions.
	Running State = iota
	// Blocked means the machine is waiting in Pull on its input stream.
	Blocked
	// Halted is the terminal state reached by the Terminate instruction.
	Halted
	// Faulted is the terminal state reached by any fault.
	Faulted
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Blocked:
		return "blocked"
	case Halted:
		return "halted"
	case Faulted:
		return "faulted"
	}
	return "unknown"
}

// Machine is one Intcode interpreter instance.
//
// A machine exclusively owns its memory. It is driven by a single goroutine
// calling RunOnce or Run; State may be read from any goroutine.
type Machine struct {
	mem    Memory
	pc     int
	in     stream.Stream
	out    stream.Stream
	name   string
	logger *slog.Logger

	state atomic.Int32
	spent atomic.Bool
	steps atomic.Int64
}

// Option configures a Machine.
type Option func(*Machine)

// WithLogger sets the logger used for halt and fault events.
// The default logger discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithName labels the machine in log output.
func WithName(name string) Option {
	return func(m *Machine) { m.name = name }
}

// New creates a machine over image, reading from in and writing to out.
//
// The machine takes ownership of image; callers that need to keep the image
// pass image.Clone(). Either stream may be nil for programs that never use
// the corresponding instruction.
func New(image Memory, in, out stream.Stream, opts ...Option) *Machine {
	m := &Machine{
		mem:    image,
		in:     in,
		out:    out,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.state.Store(int32(Running))
	return m
}

// State returns the current execution state.
func (m *Machine) State() State {
	return State(m.state.Load())
}

// Steps returns the number of instructions executed by the last run.
func (m *Machine) Steps() int64 {
	return m.steps.Load()
}

// Memory returns a copy of the machine's memory.
func (m *Machine) Memory() Memory {
	return m.mem.Clone()
}

// Set writes the noun and verb into memory addresses 1 and 2.
func (m *Machine) Set(noun, verb int64) error {
	if len(m.mem) < 3 {
		return newAddressOutOfBounds(0, 2)
	}
	m.mem[1] = noun
	m.mem[2] = verb
	return nil
}

// Run executes a fresh copy of the machine's memory, leaving the machine
// itself untouched, so the same image can be replayed with different seeds.
// The copy shares the machine's streams.
func (m *Machine) Run(ctx context.Context) (Memory, error) {
	c := &Machine{
		mem:    m.mem.Clone(),
		in:     m.in,
		out:    m.out,
		name:   m.name,
		logger: m.logger,
	}
	c.state.Store(int32(Running))
	mem, err := c.RunOnce(ctx)
	m.steps.Store(c.steps.Load())
	return mem, err
}

// RunOnce executes the program in place until it halts or faults.
//
// The machine is consumed: a second call returns ErrSpent. The final memory
// is returned in both the halted and the faulted case; the error is a
// *FaultError when the machine faulted.
func (m *Machine) RunOnce(ctx context.Context) (Memory, error) {
	if !m.spent.CompareAndSwap(false, true) {
		return nil, ErrSpent
	}

	for {
		if err := ctx.Err(); err != nil {
			return m.fault(&FaultError{Code: ErrCodeCanceled, PC: m.pc, Err: err})
		}

		halted, err := m.step(ctx)
		if err != nil {
			var fe *FaultError
			if !errors.As(err, &fe) {
				fe = &FaultError{Code: ErrCodeCanceled, PC: m.pc, Err: err}
			}
			return m.fault(fe)
		}
		if halted {
			m.state.Store(int32(Halted))
			m.logger.Debug("machine halted",
				"machine", m.name,
				"pc", m.pc,
				"steps", m.steps.Load(),
			)
			return m.mem, nil
		}
	}
}

func (m *Machine) fault(fe *FaultError) (Memory, error) {
	m.state.Store(int32(Faulted))
	m.logger.Debug("machine faulted",
		"machine", m.name,
		"code", string(fe.Code),
		"pc", fe.PC,
		"error", fe.Error(),
	)
	return m.mem, fe
}

// step executes one instruction. It reports true when Terminate ran.
func (m *Machine) step(ctx context.Context) (bool, error) {
	pc := m.pc
	if pc < 0 || pc >= len(m.mem) {
		return false, newAddressOutOfBounds(pc, int64(pc))
	}

	ins, err := Decode(m.mem[pc])
	if err != nil {
		var fe *FaultError
		if errors.As(err, &fe) {
			fe.PC = pc
		}
		return false, err
	}
	m.steps.Add(1)

	switch ins.Op {
	case OpAdd, OpMultiply, OpLessThan, OpEquals:
		a, err := m.read(ins, 0)
		if err != nil {
			return false, err
		}
		b, err := m.read(ins, 1)
		if err != nil {
			return false, err
		}

		var v int64
		switch ins.Op {
		case OpAdd:
			v = a + b
		case OpMultiply:
			v = a * b
		case OpLessThan:
			v = boolCell(a < b)
		case OpEquals:
			v = boolCell(a == b)
		}
		if err := m.write(2, v); err != nil {
			return false, err
		}

	case OpInput:
		v, err := m.pull(ctx)
		if err != nil {
			return false, err
		}
		if err := m.write(0, v); err != nil {
			return false, err
		}

	case OpOutput:
		v, err := m.read(ins, 0)
		if err != nil {
			return false, err
		}
		if m.out == nil {
			return false, &FaultError{Code: ErrCodeOutputRejected, PC: pc, Err: errors.New("no output stream")}
		}
		if err := m.out.Push(v); err != nil {
			return false, &FaultError{Code: ErrCodeOutputRejected, PC: pc, Err: err}
		}

	case OpJumpIfTrue, OpJumpIfFalse:
		cond, err := m.read(ins, 0)
		if err != nil {
			return false, err
		}
		target, err := m.read(ins, 1)
		if err != nil {
			return false, err
		}
		if (cond != 0) == (ins.Op == OpJumpIfTrue) {
			if target < 0 || target >= int64(len(m.mem)) {
				return false, newAddressOutOfBounds(pc, target)
			}
			m.pc = int(target)
			return false, nil
		}

	case OpTerminate:
		return true, nil
	}

	m.pc += ins.Width()
	return false, nil
}

// param returns the raw cell of parameter k (0-based) of the current
// instruction.
func (m *Machine) param(k int) (int64, error) {
	addr := m.pc + 1 + k
	if addr >= len(m.mem) {
		return 0, newAddressOutOfBounds(m.pc, int64(addr))
	}
	return m.mem[addr], nil
}

// read resolves read parameter k according to its mode.
func (m *Machine) read(ins Instruction, k int) (int64, error) {
	raw, err := m.param(k)
	if err != nil {
		return 0, err
	}
	if ins.Modes[k] == Immediate {
		return raw, nil
	}
	if raw < 0 || raw >= int64(len(m.mem)) {
		return 0, newAddressOutOfBounds(m.pc, raw)
	}
	return m.mem[raw], nil
}

// write stores v at the position-mode destination held in parameter k.
func (m *Machine) write(k int, v int64) error {
	addr, err := m.param(k)
	if err != nil {
		return err
	}
	if addr < 0 || addr >= int64(len(m.mem)) {
		return newAddressOutOfBounds(m.pc, addr)
	}
	m.mem[addr] = v
	return nil
}

// pull blocks on the input stream. This is the machine's only suspension
// point.
func (m *Machine) pull(ctx context.Context) (int64, error) {
	if m.in == nil {
		return 0, &FaultError{Code: ErrCodeInputExhausted, PC: m.pc, Err: errors.New("no input stream")}
	}

	m.state.Store(int32(Blocked))
	v, err := m.in.Pull(ctx)
	m.state.Store(int32(Running))
	if err == nil {
		return v, nil
	}

	var lit *stream.LiteralError
	switch {
	case errors.As(err, &lit):
		return 0, &FaultError{Code: ErrCodeMalformedInput, PC: m.pc, Text: lit.Text, Err: err}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return 0, &FaultError{Code: ErrCodeCanceled, PC: m.pc, Err: err}
	default:
		return 0, &FaultError{Code: ErrCodeInputExhausted, PC: m.pc, Err: err}
	}
}

func boolCell(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
