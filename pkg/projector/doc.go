// Package projector implements the client session for controlling
// BenQ projectors.
//
// # Session
//
// A Session owns a transport connection, the protocol engine on top
// of it and the device state learned from the projector. Sessions are
// created for a serial port, a network address or any
// transport.Connection, then driven through Connect:
//
//	session, err := projector.NewSerial("/dev/ttyUSB0", 115200, projector.Config{})
//	if err != nil { ... }
//	if err := session.Connect(); err != nil { ... }
//	defer session.Disconnect()
//
// Connect opens the transport, detects whether the connection uses a
// command prompt, reads the power state and model name, resolves the
// model's capability table and primes the device state.
//
// # Command serialization
//
// The protocol is half duplex with a single outstanding exchange.
// The session serializes all senders through a capacity-one
// semaphore; an exchange that cannot acquire it within the lock
// timeout fails with TooBusyError. The background poller checks Busy
// and skips its cycle instead of queueing behind user commands.
//
// # Power state
//
// Projectors report only "on" and "off" while the physical warm-up
// and cool-down take minutes. The session tracks a five-state power
// status and holds PoweringOn/PoweringOff until the model's settle
// time has passed, debouncing the raw reports in between.
//
// # Monitoring
//
// AddListener registers a callback for state changes. With a poll
// interval configured, a background poller refreshes power, volume,
// mute and video source (plus any subscribed commands) and notifies
// listeners of changes only.
package projector
