// Package amplifier wires Intcode machines into a pipeline of amplifier
// stages and searches phase settings for the largest pipeline output.
//
// # Topology
//
// Each stage owns one input stream and writes into exactly one other
// stream: the next stage's input, or the network's terminal output. A
// Chain is an open line; a Ring closes the line by feeding the last stage
// back into stage 0. Cycles are found with Tarjan's strongly connected
// components over the stage graph, and decide how a network runs:
//
//   - Open chain: stages run one after another on the calling goroutine.
//     Stage i+1 never feeds stage i, so its input is complete before it
//     starts.
//   - Feedback loop: every stage runs on its own goroutine and the stages
//     exchange values across several rounds until they all halt.
//
// # Search
//
// Phase settings are drawn from [0, n) for a chain and [n, 2n) for a ring.
// Search evaluates every permutation, in lexicographic order, and keeps the
// largest output. A permutation whose evaluation faults is recorded and
// skipped; it never stops the search.
//
// # Hangs
//
// A program that waits for input nobody will ever send blocks its stage
// until the context ends. Halted stages close their output streams, and a
// fault in a ring cancels its siblings, so the only remaining hang is a
// ring in which every stage waits on another.
package amplifier
