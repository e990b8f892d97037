// Package testclient drives scripted telnet connections against a
// running proxy. The smoke-test runner uses it; it has no place in the
// daemons themselves.
package testclient

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"
)

// TestClient represents a scripted client connection to the proxy.
type TestClient struct {
	Name   string
	conn   net.Conn
	reader *bufio.Reader
	writer *bufio.Writer
	output strings.Builder
	mu     sync.Mutex
	done   chan struct{}
}

// Credentials holds login information for an existing account.
type Credentials struct {
	Username string
	Password string
}

// newClientConnection creates a basic client connection without
// authentication.
func newClientConnection(address string) (*TestClient, error) {
	conn, err := net.Dial("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	client := &TestClient{
		conn:   conn,
		reader: bufio.NewReader(conn),
		writer: bufio.NewWriter(conn),
		done:   make(chan struct{}),
	}

	// Start reading messages in background
	go client.readMessages()

	return client, nil
}

// NewTestClient creates a new test client by registering a fresh
// account named after the client. Each client gets a unique account.
func NewTestClient(name string, address string) (*TestClient, error) {
	client, err := newClientConnection(address)
	if err != nil {
		return nil, err
	}
	client.Name = name

	if !client.WaitForMessage("Enter choice:", 2*time.Second) {
		client.Close()
		return nil, fmt.Errorf("never saw the connect menu")
	}

	password := name + "pass123"
	script := []string{"c", name, password, password, ""}
	for _, line := range script {
		if err := client.SendCommand(line); err != nil {
			client.Close()
			return nil, fmt.Errorf("registration failed at %q: %w", line, err)
		}
		time.Sleep(100 * time.Millisecond)
	}

	if !client.WaitForMessage("Welcome, "+name+"!", 2*time.Second) {
		messages := client.GetMessages()
		client.Close()
		return nil, fmt.Errorf("failed to enter game, messages: %v", messages)
	}

	return client, nil
}

// NewTestClientWithLogin creates a test client by logging into an
// existing account.
func NewTestClientWithLogin(creds Credentials, address string) (*TestClient, error) {
	client, err := newClientConnection(address)
	if err != nil {
		return nil, err
	}
	client.Name = creds.Username

	if !client.WaitForMessage("Enter choice:", 2*time.Second) {
		client.Close()
		return nil, fmt.Errorf("never saw the connect menu")
	}

	for _, line := range []string{"l", creds.Username, creds.Password} {
		if err := client.SendCommand(line); err != nil {
			client.Close()
			return nil, fmt.Errorf("login failed at %q: %w", line, err)
		}
		time.Sleep(100 * time.Millisecond)
	}

	return client, nil
}

// NewTestClientRaw creates a raw client connection without any
// authentication. Use this for testing the auth flow itself.
func NewTestClientRaw(address string) (*TestClient, error) {
	client, err := newClientConnection(address)
	if err != nil {
		return nil, err
	}
	client.Name = "RawClient"

	// Wait for welcome prompt
	time.Sleep(200 * time.Millisecond)

	return client, nil
}

// readMessages continuously reads server output. Raw bytes are
// accumulated rather than lines, because prompts arrive without a
// trailing newline.
func (c *TestClient) readMessages() {
	buf := make([]byte, 4096)
	for {
		select {
		case <-c.done:
			return
		default:
			n, err := c.reader.Read(buf)
			if n > 0 {
				c.mu.Lock()
				c.output.Write(buf[:n])
				c.mu.Unlock()
			}
			if err != nil {
				return
			}
		}
	}
}

// SendCommand sends a command to the server
func (c *TestClient) SendCommand(cmd string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.writer.WriteString(cmd + "\n")
	if err != nil {
		return err
	}
	return c.writer.Flush()
}

// GetMessages returns all complete lines received so far.
func (c *TestClient) GetMessages() []string {
	c.mu.Lock()
	raw := c.output.String()
	c.mu.Unlock()

	lines := make([]string, 0)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ClearMessages clears the output buffer
func (c *TestClient) ClearMessages() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.output.Reset()
}

// WaitForMessage waits for output containing the specified text (with
// timeout).
func (c *TestClient) WaitForMessage(text string, timeout time.Duration) bool {
	deadline := time.Now().Add(deadlineSlack(timeout))

	for time.Now().Before(deadline) {
		if c.HasMessage(text) {
			return true
		}
		time.Sleep(50 * time.Millisecond)
	}

	return false
}

// HasMessage checks if the output so far contains the specified text
func (c *TestClient) HasMessage(text string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Contains(c.output.String(), text)
}

// Close closes the client connection
func (c *TestClient) Close() error {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func deadlineSlack(timeout time.Duration) time.Duration {
	if timeout <= 0 {
		return 2 * time.Second
	}
	return timeout
}
