// Package event defines the inbound signal vocabulary and the broadcast bus
// that carries signals from their producers (profile collaborators, the audio
// routing service, the wired-jack monitor) into the arbitration engine.
//
// Producers publish Signal values onto per-source topics; the engine holds the
// only subscription, so the bus channel doubles as the serialized event queue
// that makes arbitration deterministic.
package event
