package project_test

import (
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/workpulse/workpulse/internal"
	"github.com/workpulse/workpulse/internal/project"
	"github.com/workpulse/workpulse/pkg/logger"
)

func TestProject(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Project Service Suite")
}

type mockProjectRepo struct {
	projects map[int64]*project.Project
	nextID   int64
}

func newMockProjectRepo() *mockProjectRepo {
	return &mockProjectRepo{projects: make(map[int64]*project.Project), nextID: 1}
}

func (m *mockProjectRepo) Create(p *project.Project) error {
	p.ID = m.nextID
	m.nextID++
	m.projects[p.ID] = p
	return nil
}

func (m *mockProjectRepo) GetByID(id int64) (*project.Project, error) {
	p, ok := m.projects[id]
	if !ok {
		return nil, errors.New("project not found")
	}
	cp := *p
	return &cp, nil
}

func (m *mockProjectRepo) GetAll() ([]*project.Project, error) {
	out := make([]*project.Project, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProjectRepo) Update(p *project.Project) error {
	m.projects[p.ID] = p
	return nil
}

func (m *mockProjectRepo) Delete(id int64) error {
	delete(m.projects, id)
	return nil
}

func (m *mockProjectRepo) UpdateTaskIDs(id int64, taskIDs []int64) error {
	p, ok := m.projects[id]
	if !ok {
		return errors.New("project not found")
	}
	p.TaskIDs = taskIDs
	return nil
}

type mockTaskGraph struct {
	cascaded []int64
	failWith error
}

func (m *mockTaskGraph) CascadeDeleteForProject(projectID int64) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.cascaded = append(m.cascaded, projectID)
	return nil
}

var _ = Describe("Project Service", func() {
	var (
		repo  *mockProjectRepo
		tasks *mockTaskGraph
		svc   *project.Service
	)

	BeforeEach(func() {
		repo = newMockProjectRepo()
		tasks = &mockTaskGraph{}
		svc = project.NewService(repo, tasks, logger.L())
	})

	Describe("Create", func() {
		It("creates a project with an empty task list", func() {
			p, err := svc.Create(project.CreateProjectDTO{Name: "Website Redesign", Description: "Q4 launch"})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.ID).To(BeNumerically(">", 0))
			Expect(p.TaskIDs).To(BeEmpty())
			Expect(p.CreatedAt).NotTo(BeZero())
		})

		It("rejects an empty name", func() {
			_, err := svc.Create(project.CreateProjectDTO{Description: "no name"})
			Expect(err).To(HaveOccurred())

			var appErr *internal.AppError
			Expect(errors.As(err, &appErr)).To(BeTrue())
			Expect(appErr.Type).To(Equal(internal.ErrorTypeValidation))
		})
	})

	Describe("Update", func() {
		var id int64

		BeforeEach(func() {
			p, err := svc.Create(project.CreateProjectDTO{Name: "Website Redesign", Description: "Q4 launch"})
			Expect(err).NotTo(HaveOccurred())
			id = p.ID
		})

		It("applies only the fields provided", func() {
			desc := "moved to Q1"
			p, err := svc.Update(id, project.UpdateProjectDTO{Description: &desc})
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Name).To(Equal("Website Redesign"))
			Expect(p.Description).To(Equal("moved to Q1"))
		})

		It("returns not found for an unknown project", func() {
			name := "renamed"
			_, err := svc.Update(99, project.UpdateProjectDTO{Name: &name})
			Expect(err).To(MatchError(internal.ErrProjectNotFound))
		})
	})

	Describe("Delete", func() {
		var id int64

		BeforeEach(func() {
			p, err := svc.Create(project.CreateProjectDTO{Name: "Website Redesign"})
			Expect(err).NotTo(HaveOccurred())
			id = p.ID
		})

		It("cascades to the project's tasks before removing the project", func() {
			Expect(svc.Delete(id)).To(Succeed())
			Expect(tasks.cascaded).To(Equal([]int64{id}))

			_, err := svc.GetByID(id)
			Expect(err).To(MatchError(internal.ErrProjectNotFound))
		})

		It("keeps the project when the task cascade fails", func() {
			tasks.failWith = errors.New("task store unavailable")

			err := svc.Delete(id)
			Expect(err).To(HaveOccurred())

			p, getErr := svc.GetByID(id)
			Expect(getErr).NotTo(HaveOccurred())
			Expect(p.ID).To(Equal(id))
		})

		It("returns not found without cascading for an unknown project", func() {
			Expect(svc.Delete(99)).To(MatchError(internal.ErrProjectNotFound))
			Expect(tasks.cascaded).To(BeEmpty())
		})
	})
})
