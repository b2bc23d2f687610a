// Package stream provides the integer streams that connect an Intcode
// machine to the outside world.
//
// A Stream is a unidirectional FIFO of int64 values with exactly one
// consumer. Two backends exist and the set is closed:
//
//   - Channel: an in-memory unbounded queue used to wire machines together.
//     Push never blocks; Pull blocks until a value arrives, the channel is
//     closed and drained, or the context is done.
//   - Console: line-oriented text I/O over an io.Reader/io.Writer pair,
//     stdin/stdout by default.
//
// The only suspension point of a machine is Pull on an empty stream.
package stream
