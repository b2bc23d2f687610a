// Package intcode implements the Intcode virtual machine.
//
// A program is a flat array of signed integers that doubles as the
// machine's memory. Each instruction is an opcode cell followed by its
// parameters; the opcode cell also encodes, in its higher decimal digits,
// whether each read parameter is an address (Position) or a literal
// (Immediate). Write destinations are always addresses.
//
// Execution is a plain fetch/decode/execute loop over memory owned by a
// single Machine. Input and Output instructions talk to a stream.Stream;
// Input is the only instruction that can block.
//
// Every fault (unknown opcode, out-of-range address, exhausted or malformed
// input) is fatal to the machine and reported as a *FaultError.
package intcode
