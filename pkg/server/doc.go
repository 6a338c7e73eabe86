// Package server serves the station board.
//
// The browser runs a small thin client that owns nothing but the address
// bar. All view state lives in a per-connection Session, which holds a
// router.Router, the stores and the widgets. The protocol is JSON over a
// WebSocket:
//
//	client -> server   {"type":"hello","hash":"#RHEIN?amount=50"}
//	server -> client   {"type":"history","mode":"replace","hash":"#RHEIN?amount=50"}
//	server -> client   {"type":"view","view":{"path":"#RHEIN","table":{...},...}}
//
// # Session Lifecycle
//
// The first message of a connection must be hello with the hash the page
// was opened with. Every later message is handled on the read loop, one at
// a time: the session applies it to its router or widgets, sends the hash
// writes the router made as history messages, then renders and sends a
// fresh view. Back/forward navigation in the browser arrives as hashchange.
//
// # HTTP Routes
//
//	GET /                                  thin client page
//	GET /ws                                session socket
//	GET /api/stations/{water}              one table page as JSON
//	GET /api/stations/{water}/{id}?path=   raw station details
//	GET /metrics                           Prometheus metrics
//	GET /healthz                           liveness
package server
