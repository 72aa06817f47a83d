// Package discovery interprets decoded messages and drives the peer
// directory.
//
// A Scan is answered with a unicast ScanResponse to its sender and the
// sender is recorded. A ScanResponse is only recorded and never answered,
// so two nodes cannot keep replying to each other. A Disconnect removes the
// sender's address for the family it arrived on, and a Cleartext message is
// passed to the configured MessageHandler together with the sender's
// identifier when it is known.
//
// The Dispatcher, like the directory it owns, is meant to be driven from a
// single goroutine.
package discovery
