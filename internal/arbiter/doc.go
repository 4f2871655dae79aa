// Package arbiter is the arbitration engine. It owns the single event
// worker that consumes profile signals off the event bus in publication
// order, classifies them, runs the priority resolver over the owned
// arbitration state, and dispatches the resulting role reassignments to the
// profile collaborators.
//
// All arbitration state (connection stacks, active roles, audio mode,
// hearing-aid marks) is mutated exclusively by the worker goroutine.
// External readers get copies through Snapshot and ActiveDevice.
package arbiter
