// Package profiles defines the collaborator services the arbitration engine
// commands, one per routable profile group, and the BlueZ adapter that backs
// them on Linux.
//
// The engine only ever talks to the interfaces in this package. The BlueZ
// adapter translates bus traffic in both directions: D-Bus property changes
// become inbound signals on the event bus, and engine commands become D-Bus
// calls against the device objects. Tests substitute recording fakes.
package profiles
