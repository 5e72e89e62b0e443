// Package link drives a symmetry frame link over a byte transport.
package link

// A Link owns one connection: the receive parser, the outgoing message
// buffer, the heartbeat timers and the counters. It is polled, never
// blocks and starts no goroutines.
//
// Poll must not be called reentrantly or from more than one goroutine, and
// neither may any send method while a Poll is in progress. Hosts with several
// goroutines hand work to the polling goroutine (see framework.Loop.Post).
