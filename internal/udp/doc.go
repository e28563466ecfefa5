// Package udp provides the two UDP transport primitives the DUT protocol
// needs: a connected point-to-point client for test sessions, and a
// multicast broadcast-and-collect exchange for discovery.
//
// Both primitives block only at receive points, and every receive is
// bounded by an explicit timeout. Timeouts are surfaced as ErrTimeout so
// callers can treat them as control flow: the end of a discovery window,
// or the end of a test session's sample stream. A socket belongs to
// exactly one exchange and is closed before control returns to the
// caller, so independent exchanges can run on separate goroutines without
// coordination.
//
// # Usage Example
//
//	client, err := udp.Dial("192.168.0.10", 6062, time.Second)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	if err := client.Send(payload); err != nil {
//	    return err
//	}
//	for {
//	    raw, err := client.Recv()
//	    if errors.Is(err, udp.ErrTimeout) {
//	        break // peer went silent
//	    }
//	    ...
//	}
package udp
