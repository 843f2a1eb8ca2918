// Package connector serves the loopback ingestion protocol used by the
// browser capture helper. The framing is deliberately minimal HTTP: each
// connection carries exactly one request, buffered until the blank line and
// the Content-Length body have fully arrived, answered, and closed. No
// keep-alive, no chunked transfer, no TLS; the listener binds loopback only
// and the protocol is unauthenticated by design.
package connector
