package agent_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/workpulse/workpulse/internal/agent"
	"github.com/workpulse/workpulse/pkg/logger"
)

func TestAgent(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Agent Server Suite")
}

type stubCapturer struct {
	image []byte
	err   error
	calls int
}

func (c *stubCapturer) Capture() ([]byte, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.image, nil
}

func postJSON(handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	payload, err := json.Marshal(body)
	Expect(err).NotTo(HaveOccurred())
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeError(rec *httptest.ResponseRecorder) (message, code string) {
	var body struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	Expect(json.NewDecoder(rec.Body).Decode(&body)).To(Succeed())
	return body.Error, body.Code
}

var _ = Describe("Agent Server", func() {
	var (
		session  *agent.Session
		capturer *stubCapturer
		handler  http.Handler
	)

	BeforeEach(func() {
		session = agent.NewSession()
		capturer = &stubCapturer{image: []byte("png-bytes")}
		handler = agent.NewServer(session, capturer, logger.L()).Routes()
	})

	Describe("POST /screenshot", func() {
		It("rejects a capture when nobody is signed in", func() {
			rec := postJSON(handler, "/screenshot", map[string]int64{"employee_id": 1})
			Expect(rec.Code).To(Equal(http.StatusConflict))
			_, code := decodeError(rec)
			Expect(code).To(Equal("NO_ACTIVE_SESSION"))
			Expect(capturer.calls).To(BeZero())
		})

		It("rejects a capture aimed at a different employee", func() {
			session.Bind(2, nil)
			rec := postJSON(handler, "/screenshot", map[string]int64{"employee_id": 1})
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			_, code := decodeError(rec)
			Expect(code).To(Equal("EMPLOYEE_MISMATCH"))
			Expect(capturer.calls).To(BeZero())
		})

		It("returns the captured image for the signed-in employee", func() {
			session.Bind(1, nil)
			rec := postJSON(handler, "/screenshot", map[string]int64{"employee_id": 1})
			Expect(rec.Code).To(Equal(http.StatusOK))
			Expect(rec.Header().Get("Content-Type")).To(Equal("image/png"))
			Expect(rec.Body.Bytes()).To(Equal(capturer.image))
		})

		It("reports an OS capture denial", func() {
			session.Bind(1, nil)
			capturer.err = errors.New("screen recording not permitted")
			rec := postJSON(handler, "/screenshot", map[string]int64{"employee_id": 1})
			Expect(rec.Code).To(Equal(http.StatusForbidden))
			_, code := decodeError(rec)
			Expect(code).To(Equal("CAPTURE_PERMISSION_DENIED"))
		})

		It("rejects a malformed body", func() {
			req := httptest.NewRequest(http.MethodPost, "/screenshot", bytes.NewReader([]byte("{")))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("session binding", func() {
		It("binds and clears the signed-in employee", func() {
			logID := int64(11)
			rec := postJSON(handler, "/set-employee", map[string]interface{}{
				"employee_id": 5,
				"time_log_id": logID,
			})
			Expect(rec.Code).To(Equal(http.StatusOK))

			current, bound := session.Current()
			Expect(bound).To(BeTrue())
			Expect(current).To(Equal(int64(5)))
			Expect(session.TimeLogID()).To(HaveValue(Equal(logID)))

			req := httptest.NewRequest(http.MethodDelete, "/set-employee", nil)
			clearRec := httptest.NewRecorder()
			handler.ServeHTTP(clearRec, req)
			Expect(clearRec.Code).To(Equal(http.StatusOK))

			_, bound = session.Current()
			Expect(bound).To(BeFalse())
			Expect(session.TimeLogID()).To(BeNil())
		})

		It("requires an employee id", func() {
			rec := postJSON(handler, "/set-employee", map[string]int64{"employee_id": 0})
			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("GET /health", func() {
		It("reports whether a session is active", func() {
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			Expect(rec.Code).To(Equal(http.StatusOK))

			var body struct {
				Status        string `json:"status"`
				SessionActive bool   `json:"session_active"`
			}
			Expect(json.NewDecoder(rec.Body).Decode(&body)).To(Succeed())
			Expect(body.Status).To(Equal("ok"))
			Expect(body.SessionActive).To(BeFalse())
		})
	})
})
