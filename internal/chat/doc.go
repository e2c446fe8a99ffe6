// Package chat implements room membership and the join/send/disconnect
// broadcast protocol of the chat service.
//
// The Registry owns every Session. The Dispatcher validates inbound requests,
// mutates the Registry and fans events out through a Gateway, which is the
// transport's concern. Failures come back as *Error values whose Message is
// meant to be shown to the requesting client.
package chat
