package screenshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	"github.com/workpulse/workpulse/internal"
)

// Relay forwards a capture request to the desktop agent at a known address
// and returns the captured image bytes.
type Relay interface {
	RequestCapture(ctx context.Context, address string, employeeID int64) ([]byte, error)
}

// AgentRelay talks to the desktop agent's local HTTP listener. Each request
// carries a hard timeout and no retry; a refused, unreachable, or timed-out
// agent is reported as a final failure.
type AgentRelay struct {
	client *http.Client
	port   int
}

func NewAgentRelay(port int, timeout time.Duration) *AgentRelay {
	if timeout <= 0 {
		timeout = internal.DefaultRelayTimeout
	}
	return &AgentRelay{
		client: &http.Client{Timeout: timeout},
		port:   port,
	}
}

type captureRequest struct {
	EmployeeID int64 `json:"employee_id"`
}

type agentError struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (r *AgentRelay) RequestCapture(ctx context.Context, address string, employeeID int64) ([]byte, error) {
	body, err := json.Marshal(captureRequest{EmployeeID: employeeID})
	if err != nil {
		return nil, internal.NewInternalError("failed to encode capture request", err)
	}

	url := fmt.Sprintf("http://%s/screenshot", net.JoinHostPort(address, fmt.Sprintf("%d", r.port)))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, internal.NewInternalError("failed to build capture request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyAgentError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, internal.ErrAgentOffline.WithCause(err)
	}
	return data, nil
}

// classifyTransportError maps dial and round-trip failures onto the relay
// failure taxonomy: refused means the agent process is not running,
// unreachable means the machine is off the network, and anything that ran
// out the clock is a timeout.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return internal.ErrAgentTimeout.WithCause(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return internal.ErrAgentTimeout.WithCause(err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return internal.ErrAgentNotRunning.WithCause(err)
	}
	if errors.Is(err, syscall.EHOSTUNREACH) || errors.Is(err, syscall.ENETUNREACH) {
		return internal.ErrAgentOffline.WithCause(err)
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return internal.ErrAgentOffline.WithCause(err)
	}
	return internal.ErrAgentOffline.WithCause(err)
}

// classifyAgentError maps an agent-side JSON error response onto the
// matching sentinel so callers see the same code the agent reported.
func classifyAgentError(resp *http.Response) error {
	var ae agentError
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&ae); err != nil {
		return internal.ErrAgentOffline
	}

	switch internal.ErrorCode(ae.Code) {
	case internal.ErrCodeEmployeeMismatch:
		return internal.ErrEmployeeMismatch
	case internal.ErrCodeNoActiveSession:
		return internal.ErrNoActiveSession
	case internal.ErrCodeCaptureDenied:
		return internal.ErrCaptureDenied
	default:
		return internal.NewUnavailableError(ae.Error, internal.ErrCodeAgentOffline)
	}
}
