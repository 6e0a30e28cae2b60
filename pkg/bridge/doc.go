// Package bridge connects a real browser to the location abstraction.
//
// A Session speaks the urlsync wire protocol over a websocket: outbound
// location patches (URL push/replace, scroll restoration) and inbound
// location events (the hello handshake, popstate, scroll reports). The
// Session implements location.Port, so a param store created over it drives
// the connected browser's address bar and follows its back/forward
// navigation.
//
// All session state is confined to a single run loop goroutine, matching
// the cooperative single-threaded model of the browser side: port methods
// must be called on the loop, either from a popstate callback or from a
// task posted with Do/Defer. Patches queued during one loop turn are
// flushed as a single frame at the end of the turn.
package bridge
