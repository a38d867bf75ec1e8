package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/workpulse/workpulse/internal/employee"
	"github.com/workpulse/workpulse/internal/project"
	"github.com/workpulse/workpulse/internal/task"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with sample data for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init ORM: %v", err)
		}

		if clearData {
			for _, table := range []string{"screenshots", "time_logs", "tasks", "projects", "verification_tokens", "password_reset_tokens", "activation_tokens", "employees"} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		hash, _ := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)

		admin := &employee.Employee{
			FirstName:     "Ava",
			LastName:      "Admin",
			Email:         "admin@workpulse.local",
			PasswordHash:  string(hash),
			IsAdmin:       true,
			IsActive:      true,
			EmailVerified: true,
		}
		seedEmployee(db, admin)

		worker := &employee.Employee{
			FirstName:     "Sam",
			LastName:      "Worker",
			Email:         "sam@workpulse.local",
			PasswordHash:  string(hash),
			IsActive:      true,
			EmailVerified: true,
		}
		seedEmployee(db, worker)

		proj := &project.Project{
			Name:        "Onboarding",
			Description: "Sample project seeded for development",
		}
		var existing project.Project
		if err := db.Where("name = ?", proj.Name).First(&existing).Error; err == nil {
			fmt.Println("project already exists:", proj.Name)
			return
		}
		if err := db.Create(proj).Error; err != nil {
			log.Fatalf("failed to seed project: %v", err)
		}

		t := &task.Task{
			ProjectID:   proj.ID,
			Name:        "Set up workstation",
			Description: "Install tooling and sign in to the tracker",
			EmployeeIDs: []int64{worker.ID},
		}
		if err := db.Create(t).Error; err != nil {
			log.Fatalf("failed to seed task: %v", err)
		}

		proj.TaskIDs = []int64{t.ID}
		if err := db.Save(proj).Error; err != nil {
			log.Fatalf("failed to link task to project: %v", err)
		}

		worker.TaskIDs = []int64{t.ID}
		worker.UpdatedAt = time.Now()
		if err := db.Save(worker).Error; err != nil {
			log.Fatalf("failed to link task to employee: %v", err)
		}

		fmt.Println("Seeded sample data")
	},
}

func seedEmployee(db *gorm.DB, emp *employee.Employee) {
	var existing employee.Employee
	if err := db.Where("email = ?", emp.Email).First(&existing).Error; err == nil {
		fmt.Println("employee already exists:", emp.Email)
		*emp = existing
		return
	}
	if err := db.Create(emp).Error; err != nil {
		log.Fatalf("failed to seed employee %s: %v", emp.Email, err)
	}
	fmt.Println("Seeded employee:", emp.Email)
}
