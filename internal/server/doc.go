// Package server is the connection gateway of the chat service.
//
// A Hub owns every websocket connection and implements chat.Gateway. Frames
// read from clients are decoded into join, sendMessage and sendLocation
// requests and handed to a Protocol (the chat dispatcher) from the hub's
// single event loop. Outbound events are queued per connection without
// blocking; a client whose queue fills up is disconnected.
//
// The HTTP surface is served by echo: a liveness route, the websocket
// endpoint and a small test page.
package server
