package screenshot_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/workpulse/workpulse/internal"
	"github.com/workpulse/workpulse/internal/employee"
	"github.com/workpulse/workpulse/internal/screenshot"
	"github.com/workpulse/workpulse/internal/storage"
	"github.com/workpulse/workpulse/internal/timelog"
	"github.com/workpulse/workpulse/pkg/logger"
)

func TestScreenshot(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Screenshot Service Suite")
}

// testPNG renders a small image so the optimizer has real pixels to work on.
func testPNG(width, height int) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

type mockDirectory struct {
	employees map[int64]*employee.Employee
}

func (m *mockDirectory) GetByID(id int64) (*employee.Employee, error) {
	emp, ok := m.employees[id]
	if !ok {
		return nil, internal.ErrEmployeeNotFound
	}
	return emp, nil
}

type mockLedger struct {
	openByEmployee map[int64]*timelog.TimeLog
	attached       map[int64][]int64
}

func newMockLedger() *mockLedger {
	return &mockLedger{
		openByEmployee: make(map[int64]*timelog.TimeLog),
		attached:       make(map[int64][]int64),
	}
}

func (m *mockLedger) GetOpenByEmployee(employeeID int64) (*timelog.TimeLog, error) {
	return m.openByEmployee[employeeID], nil
}

func (m *mockLedger) AttachScreenshot(timeLogID, screenshotID int64) error {
	m.attached[timeLogID] = append(m.attached[timeLogID], screenshotID)
	return nil
}

type mockRepo struct {
	mu     sync.Mutex
	shots  []*screenshot.Screenshot
	nextID int64
}

func (m *mockRepo) Create(s *screenshot.Screenshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	s.ID = m.nextID
	m.shots = append(m.shots, s)
	return nil
}

func (m *mockRepo) GetByEmployee(employeeID int64) ([]*screenshot.Screenshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*screenshot.Screenshot
	for _, s := range m.shots {
		if s.EmployeeID == employeeID {
			out = append(out, s)
		}
	}
	return out, nil
}

// mockRelay answers per-employee and tracks how many requests run at once.
type mockRelay struct {
	mu            sync.Mutex
	responses     map[int64]error
	image         []byte
	calls         []int64
	inFlight      int
	peakInFlight  int
	blockDelivery chan struct{}
}

func newMockRelay(img []byte) *mockRelay {
	return &mockRelay{
		responses: make(map[int64]error),
		image:     img,
	}
}

func (m *mockRelay) RequestCapture(_ context.Context, _ string, employeeID int64) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, employeeID)
	m.inFlight++
	if m.inFlight > m.peakInFlight {
		m.peakInFlight = m.inFlight
	}
	block := m.blockDelivery
	m.mu.Unlock()

	if block != nil {
		<-block
	}

	m.mu.Lock()
	m.inFlight--
	err := m.responses[employeeID]
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return m.image, nil
}

var _ = Describe("ScreenshotService", func() {
	var (
		repo      *mockRepo
		directory *mockDirectory
		ledger    *mockLedger
		relay     *mockRelay
		uploader  *storage.MemoryUploader
		service   *screenshot.Service
		ctx       context.Context
	)

	const maxFanOut = 3

	BeforeEach(func() {
		repo = &mockRepo{}
		directory = &mockDirectory{employees: map[int64]*employee.Employee{
			1: {ID: 1, Email: "one@example.com", LastKnownIP: "10.0.0.1"},
			2: {ID: 2, Email: "two@example.com", LastKnownIP: "10.0.0.2"},
			3: {ID: 3, Email: "three@example.com"},
			4: {ID: 4, Email: "four@example.com", LastKnownIP: "10.0.0.4"},
			5: {ID: 5, Email: "five@example.com", LastKnownIP: "10.0.0.5"},
			6: {ID: 6, Email: "six@example.com", LastKnownIP: "10.0.0.6"},
		}}
		ledger = newMockLedger()
		relay = newMockRelay(testPNG(64, 48))
		uploader = storage.NewMemoryUploader()
		ctx = context.Background()
		service = screenshot.NewService(repo, directory, ledger, relay, uploader, nil, maxFanOut, logger.L())
	})

	Describe("Capture", func() {
		It("fails with AddressUnavailable and never touches the network when no address is stored", func() {
			_, err := service.Capture(ctx, 3, nil)
			Expect(err).To(MatchError(internal.ErrAddressUnavailable))
			Expect(relay.calls).To(BeEmpty())
		})

		It("uploads the image and persists the metadata record", func() {
			shot, err := service.Capture(ctx, 1, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(shot.EmployeeID).To(Equal(int64(1)))
			Expect(shot.Width).To(Equal(64))
			Expect(shot.Height).To(Equal(48))
			Expect(shot.Format).NotTo(BeEmpty())
			Expect(shot.CompressionRatio).To(BeNumerically(">", 0))
			Expect(shot.PermissionGranted).To(BeTrue())
			Expect(shot.CloudURL).NotTo(BeEmpty())
			Expect(uploader.Len()).To(Equal(1))
		})

		It("links the capture to the employee's open time log", func() {
			ledger.openByEmployee[1] = &timelog.TimeLog{ID: 42, EmployeeID: 1}

			shot, err := service.Capture(ctx, 1, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(shot.TimeLogID).To(HaveValue(Equal(int64(42))))
			Expect(ledger.attached[42]).To(ContainElement(shot.ID))
		})

		It("surfaces relay failures unchanged", func() {
			relay.responses[1] = internal.ErrAgentNotRunning

			_, err := service.Capture(ctx, 1, nil)
			Expect(err).To(MatchError(internal.ErrAgentNotRunning))
			Expect(repo.shots).To(BeEmpty())
		})

		It("reports a failed upload distinctly from a failed capture", func() {
			uploader.FailNext = errors.New("bucket unavailable")

			_, err := service.Capture(ctx, 1, nil)
			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeUploadFailed))
			Expect(repo.shots).To(BeEmpty())
		})
	})

	Describe("CaptureMany", func() {
		It("collects per-employee outcomes without aborting on failures", func() {
			relay.responses[2] = internal.ErrAgentOffline

			result := service.CaptureMany(ctx, []int64{1, 2, 3}, nil)
			Expect(result.Outcomes).To(HaveLen(3))
			Expect(result.Succeeded).To(Equal(1))
			Expect(result.Failed).To(Equal(2))

			byEmployee := make(map[int64]screenshot.CaptureOutcome)
			for _, o := range result.Outcomes {
				byEmployee[o.EmployeeID] = o
			}
			Expect(byEmployee[1].Success).To(BeTrue())
			Expect(byEmployee[2].Success).To(BeFalse())
			Expect(byEmployee[2].Error).NotTo(BeEmpty())
			Expect(byEmployee[3].Success).To(BeFalse())
		})

		It("never runs more requests at once than the fan-out cap", func() {
			release := make(chan struct{})
			relay.blockDelivery = release

			done := make(chan *screenshot.BatchResult)
			go func() {
				done <- service.CaptureMany(ctx, []int64{1, 2, 4, 5, 6}, nil)
			}()

			Eventually(func() int {
				relay.mu.Lock()
				defer relay.mu.Unlock()
				return relay.inFlight
			}).Should(Equal(maxFanOut))

			close(release)
			result := <-done
			Expect(result.Succeeded).To(Equal(5))

			relay.mu.Lock()
			peak := relay.peakInFlight
			relay.mu.Unlock()
			Expect(peak).To(BeNumerically("<=", maxFanOut))
		})
	})

	Describe("Ingest", func() {
		It("stores an agent-uploaded image like a relayed capture", func() {
			logID := int64(7)
			ledger.openByEmployee[1] = &timelog.TimeLog{ID: logID, EmployeeID: 1}

			shot, err := service.Ingest(ctx, 1, nil, testPNG(32, 32))
			Expect(err).NotTo(HaveOccurred())
			Expect(shot.TimeLogID).To(HaveValue(Equal(logID)))
			Expect(relay.calls).To(BeEmpty())
		})

		It("rejects an empty upload", func() {
			_, err := service.Ingest(ctx, 1, nil, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Process", func() {
		It("re-encodes large flat PNGs as smaller JPEGs and keeps dimensions", func() {
			processed, err := screenshot.Process(testPNG(640, 480))
			Expect(err).NotTo(HaveOccurred())
			Expect(processed.Width).To(Equal(640))
			Expect(processed.Height).To(Equal(480))
			Expect(processed.CompressionRatio).To(BeNumerically(">", 0))
			Expect(processed.CompressionRatio).To(BeNumerically("<=", 1))
		})

		It("rejects bytes that are not an image", func() {
			_, err := screenshot.Process([]byte("not an image"))
			Expect(err).To(HaveOccurred())
		})
	})
})
