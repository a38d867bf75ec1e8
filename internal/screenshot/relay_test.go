package screenshot_test

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/workpulse/workpulse/internal"
	"github.com/workpulse/workpulse/internal/screenshot"
)

// agentStub serves the agent's /screenshot endpoint on a loopback port and
// hands back a relay pointed at it.
func agentStub(handler http.HandlerFunc, timeout time.Duration) (*screenshot.AgentRelay, string, func()) {
	server := httptest.NewServer(handler)
	host, portStr, err := net.SplitHostPort(server.Listener.Addr().String())
	Expect(err).NotTo(HaveOccurred())
	port, err := strconv.Atoi(portStr)
	Expect(err).NotTo(HaveOccurred())
	return screenshot.NewAgentRelay(port, timeout), host, server.Close
}

var _ = Describe("AgentRelay", func() {
	ctx := context.Background()

	It("returns the image bytes on a successful capture", func() {
		image := testPNG(16, 16)
		relay, host, closeStub := agentStub(func(w http.ResponseWriter, r *http.Request) {
			defer r.Body.Close()
			var req struct {
				EmployeeID int64 `json:"employee_id"`
			}
			Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
			Expect(req.EmployeeID).To(Equal(int64(9)))
			w.Header().Set("Content-Type", "image/png")
			w.Write(image)
		}, time.Second)
		defer closeStub()

		data, err := relay.RequestCapture(ctx, host, 9)
		Expect(err).NotTo(HaveOccurred())
		Expect(data).To(Equal(image))
	})

	DescribeTable("maps agent error codes to sentinels",
		func(code string, status int, expected error) {
			relay, host, closeStub := agentStub(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(status)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "agent rejected capture",
					"code":  code,
				})
			}, time.Second)
			defer closeStub()

			_, err := relay.RequestCapture(ctx, host, 1)
			Expect(err).To(MatchError(expected))
		},
		Entry("wrong employee bound", "EMPLOYEE_MISMATCH", http.StatusForbidden, internal.ErrEmployeeMismatch),
		Entry("no clocked-in session", "NO_ACTIVE_SESSION", http.StatusConflict, internal.ErrNoActiveSession),
		Entry("OS denied capture", "CAPTURE_PERMISSION_DENIED", http.StatusForbidden, internal.ErrCaptureDenied),
	)

	It("treats an unrecognized agent error as the agent being unavailable", func() {
		relay, host, closeStub := agentStub(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(map[string]string{"error": "disk full", "code": "DISK_FULL"})
		}, time.Second)
		defer closeStub()

		_, err := relay.RequestCapture(ctx, host, 1)
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeAgentOffline))
	})

	It("reports a refused connection as the agent not running", func() {
		// Grab a port the OS just released so nothing is listening on it.
		listener, err := net.Listen("tcp", "127.0.0.1:0")
		Expect(err).NotTo(HaveOccurred())
		port := listener.Addr().(*net.TCPAddr).Port
		listener.Close()

		relay := screenshot.NewAgentRelay(port, time.Second)
		_, err = relay.RequestCapture(ctx, "127.0.0.1", 1)
		Expect(err).To(MatchError(internal.ErrAgentNotRunning))
	})

	It("reports an agent that never answers as a timeout", func() {
		relay, host, closeStub := agentStub(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(500 * time.Millisecond)
		}, 50*time.Millisecond)
		defer closeStub()

		_, err := relay.RequestCapture(ctx, host, 1)
		Expect(err).To(MatchError(internal.ErrAgentTimeout))
	})
})
