// Package simulator implements a DUT simulator for local development and
// end-to-end testing.
//
// A Simulator behaves like one device: it answers "ID;" probes with its
// model and serial, acknowledges TEST;CMD=START commands, emits periodic
// STATUS telemetry at the requested rate for the requested duration, and
// finishes the cycle with the STATUS;STATE=IDLE sentinel. Telemetry is a
// seeded noisy ramp, so runs are reproducible when a seed is supplied.
//
// The simulator listens on a unicast UDP port for commands and can
// additionally join the discovery multicast group, which is how real
// devices hear probes. Tests skip the group and probe the unicast port
// directly.
package simulator
