// Package discovery finds DUT simulators on the local network.
//
// Discovery broadcasts the literal probe "ID;" to a UDP multicast group
// (default 224.3.11.15:31115) and collects responses for a bounded
// window. Each device answers with its identity:
//
//	ID;MODEL=M001;SERIAL=SN0123457;
//
// Responses that fail to decode or are missing MODEL or SERIAL are logged
// and dropped, so one misbehaving responder never hides the rest: the
// result is always a best-effort list. An empty network simply yields an
// empty list after the window elapses, not an error.
//
// # Usage Example
//
//	devices, err := discovery.Discover(discovery.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	discovery.Sort(devices)
//	for _, d := range devices {
//	    fmt.Println(d)
//	}
//
// The returned list carries no ordering guarantee; Sort orders it by
// (model, serial) for presentation.
package discovery
