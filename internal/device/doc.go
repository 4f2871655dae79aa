// Package device defines the shared vocabulary for audio endpoints: Bluetooth
// addresses, profile membership, audio roles, and profile groups.
//
// The arbitration engine never owns devices; it only references them by
// address. Profile membership is derived from inbound connect/disconnect
// signals and is the sole mutable attribute a device carries.
package device
