package postgres_test

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/workpulse/workpulse/internal/employee"
	employeePostgres "github.com/workpulse/workpulse/internal/employee/postgres"
)

func TestEmployeePostgres(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Employee Postgres Suite")
}

var _ = Describe("Employee Repository", func() {
	var (
		db   *gorm.DB
		repo *employeePostgres.EmployeeRepository
	)

	BeforeEach(func() {
		var err error
		db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
		Expect(err).NotTo(HaveOccurred())

		err = db.AutoMigrate(&employee.Employee{})
		Expect(err).NotTo(HaveOccurred())

		repo = employeePostgres.NewEmployeeRepository(db)
	})

	newEmployee := func(email string) *employee.Employee {
		return &employee.Employee{
			FirstName: "Ava",
			LastName:  "Admin",
			Email:     email,
			IsActive:  true,
		}
	}

	Describe("Create", func() {
		It("assigns an id and timestamps", func() {
			emp := newEmployee("ava@workpulse.local")
			Expect(repo.Create(emp)).To(Succeed())
			Expect(emp.ID).To(BeNumerically(">", 0))
			Expect(emp.CreatedAt).NotTo(BeZero())
		})

		It("rejects a duplicate email", func() {
			Expect(repo.Create(newEmployee("ava@workpulse.local"))).To(Succeed())
			Expect(repo.Create(newEmployee("ava@workpulse.local"))).NotTo(Succeed())
		})
	})

	Describe("GetByID and GetByEmail", func() {
		It("round-trips a stored employee", func() {
			emp := newEmployee("sam@workpulse.local")
			emp.LastKnownIP = "192.168.1.40"
			Expect(repo.Create(emp)).To(Succeed())

			byID, err := repo.GetByID(emp.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(byID.Email).To(Equal("sam@workpulse.local"))
			Expect(byID.LastKnownIP).To(Equal("192.168.1.40"))

			byEmail, err := repo.GetByEmail("sam@workpulse.local")
			Expect(err).NotTo(HaveOccurred())
			Expect(byEmail.ID).To(Equal(emp.ID))
		})

		It("returns record-not-found for an unknown id", func() {
			_, err := repo.GetByID(404)
			Expect(err).To(MatchError(gorm.ErrRecordNotFound))
		})
	})

	Describe("task id set", func() {
		It("persists assigned task ids through the json column", func() {
			emp := newEmployee("sam@workpulse.local")
			Expect(repo.Create(emp)).To(Succeed())

			Expect(repo.UpdateTaskIDs(emp.ID, []int64{3, 1, 7})).To(Succeed())

			ids, err := repo.GetTaskIDs(emp.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(Equal([]int64{3, 1, 7}))
		})

		It("clears the set when given an empty list", func() {
			emp := newEmployee("sam@workpulse.local")
			emp.TaskIDs = []int64{5}
			Expect(repo.Create(emp)).To(Succeed())

			Expect(repo.UpdateTaskIDs(emp.ID, []int64{})).To(Succeed())

			ids, err := repo.GetTaskIDs(emp.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(ids).To(BeEmpty())
		})
	})

	Describe("Update", func() {
		It("saves changes and bumps updated_at", func() {
			emp := newEmployee("sam@workpulse.local")
			Expect(repo.Create(emp)).To(Succeed())
			originalUpdatedAt := emp.UpdatedAt

			time.Sleep(10 * time.Millisecond)
			emp.IsActive = false
			emp.LastKnownIP = "10.1.2.3"
			Expect(repo.Update(emp)).To(Succeed())

			stored, err := repo.GetByID(emp.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.IsActive).To(BeFalse())
			Expect(stored.LastKnownIP).To(Equal("10.1.2.3"))
			Expect(stored.UpdatedAt).To(BeTemporally(">", originalUpdatedAt))
		})
	})

	Describe("GetAll", func() {
		It("lists employees oldest first", func() {
			first := newEmployee("first@workpulse.local")
			first.CreatedAt = time.Now().Add(-time.Hour)
			second := newEmployee("second@workpulse.local")
			Expect(repo.Create(first)).To(Succeed())
			Expect(repo.Create(second)).To(Succeed())

			all, err := repo.GetAll()
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(2))
			Expect(all[0].Email).To(Equal("first@workpulse.local"))
		})
	})
})
