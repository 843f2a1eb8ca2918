package connector

import (
	"bytes"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// request is one framed connector request.
type request struct {
	Method string
	Path   string
	Body   []byte
}

var headerSep = []byte("\r\n\r\n")

const maxRequestBytes = 64 << 20 // generous; attachments arrive base64-inline

// readRequest buffers bytes until the header block is complete, parses
// Content-Length case-insensitively, then keeps reading until the full body
// has arrived. The idle deadline resets on every read so a stalled peer
// cannot pin the connection forever.
func readRequest(conn net.Conn, idleTimeout time.Duration) (*request, error) {
	var buffer []byte
	chunk := make([]byte, 32*1024)

	headerEnd := -1
	for {
		if idleTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(idleTimeout)); err != nil {
				return nil, fmt.Errorf("set read deadline: %w", err)
			}
		}
		n, err := conn.Read(chunk)
		if n > 0 {
			buffer = append(buffer, chunk[:n]...)
			if len(buffer) > maxRequestBytes {
				return nil, errors.New("request too large")
			}
		}
		if headerEnd = bytes.Index(buffer, headerSep); headerEnd >= 0 {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read headers: %w", err)
		}
	}

	header := buffer[:headerEnd]
	contentLength := parseContentLength(header)
	bodyStart := headerEnd + len(headerSep)

	for len(buffer)-bodyStart < contentLength {
		if idleTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(idleTimeout)); err != nil {
				return nil, fmt.Errorf("set read deadline: %w", err)
			}
		}
		n, err := conn.Read(chunk)
		if n > 0 {
			buffer = append(buffer, chunk[:n]...)
			if len(buffer) > maxRequestBytes {
				return nil, errors.New("request too large")
			}
		}
		if err != nil && len(buffer)-bodyStart < contentLength {
			return nil, fmt.Errorf("read body: %w", err)
		}
	}

	lines := strings.Split(string(header), "\n")
	requestLine := strings.TrimSpace(lines[0])
	parts := strings.Split(requestLine, " ")
	if len(parts) < 2 {
		return nil, fmt.Errorf("malformed request line %q", requestLine)
	}

	return &request{
		Method: parts[0],
		Path:   parts[1],
		Body:   buffer[bodyStart : bodyStart+contentLength],
	}, nil
}

// parseContentLength scans header lines for Content-Length, ignoring case.
// Absent or unparsable lengths mean an empty body.
func parseContentLength(header []byte) int {
	for _, line := range strings.Split(string(header), "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) < len("content-length:") {
			continue
		}
		if !strings.EqualFold(trimmed[:len("content-length:")], "content-length:") {
			continue
		}
		value := strings.TrimSpace(trimmed[len("content-length:"):])
		length, err := strconv.Atoi(value)
		if err != nil || length < 0 {
			return 0
		}
		return length
	}
	return 0
}

func writeResponse(conn net.Conn, status string, body []byte) {
	var b strings.Builder
	b.WriteString("HTTP/1.1 ")
	b.WriteString(status)
	b.WriteString("\r\nContent-Type: application/json\r\nContent-Length: ")
	b.WriteString(strconv.Itoa(len(body)))
	b.WriteString("\r\n\r\n")
	b.Write(body)
	_, _ = conn.Write([]byte(b.String()))
}
