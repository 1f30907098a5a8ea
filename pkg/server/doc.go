// Package server exposes named string histories over HTTP.
//
// Each history is a history.Store[string] guarded by its own mutex; the
// server is the single owner that serializes every operation on it.
// Clients can watch a history over a WebSocket and receive its state after
// every change.
//
// Routes:
//
//	GET    /histories                 list history names
//	GET    /histories/{name}          current state
//	PUT    /histories/{name}          write {"value": "..."}, creating the history if needed
//	POST   /histories/{name}/undo
//	POST   /histories/{name}/redo
//	POST   /histories/{name}/goto/{index}
//	POST   /histories/{name}/reset    replace the timeline with {"value": "..."}
//	DELETE /histories/{name}
//	GET    /histories/{name}/ws       state stream
package server
