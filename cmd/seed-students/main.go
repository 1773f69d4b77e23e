package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sritlabs/sat-backend/internal/config"
	"github.com/sritlabs/sat-backend/internal/database"
	"github.com/sritlabs/sat-backend/internal/logger"
	"github.com/sritlabs/sat-backend/internal/model"
	"github.com/sritlabs/sat-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	studentRepo := repository.NewStudentRepository(pool)

	fmt.Println("=== Seeding 50 Students (CSE, year 3) ===")

	// One shared hash keeps the seed fast; every account gets the same
	// throwaway password.
	hash, err := bcrypt.GenerateFromPassword([]byte("Satportal1"), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash seed password")
	}

	names := []string{
		"Aarav Sharma", "Ananya Reddy", "Arjun Patel", "Bhavana Rao", "Chetan Kumar",
		"Divya Nair", "Eshwar Prasad", "Farhan Khan", "Gayathri Iyer", "Harsha Vardhan",
		"Indira Devi", "Jayanth Kumar", "Kavya Krishnan", "Lakshmi Priya", "Manoj Gupta",
		"Nandini Shetty", "Omkar Joshi", "Pooja Hegde", "Qadir Ahmed", "Ramya Sree",
		"Sanjay Verma", "Tanvi Desai", "Uday Kiran", "Vaishnavi Rao", "Wasim Akram",
		"Yamini Reddy", "Zara Begum", "Abhishek Singh", "Bhargav Ram", "Chandana Latha",
		"Deepak Chahar", "Esha Gupta", "Ganesh Babu", "Harini Priya", "Imran Ali",
		"Jyothi Lakshmi", "Karthik Raja", "Lavanya Devi", "Mahesh Babu", "Nikhil Varma",
		"Padma Priya", "Raghu Ram", "Sneha Reddy", "Tejaswi Rao", "Uma Maheshwari",
		"Varun Tej", "Yashwanth Sai", "Zoya Khan", "Akhil Raj", "Bhuvana Chandra",
	}

	sections := []string{"A", "B"}
	genders := []model.Gender{model.GenderMale, model.GenderFemale}

	successCount := 0
	for i, name := range names {
		student := &model.Student{
			RollNumber:   fmt.Sprintf("20CS3%05d", i+1),
			Name:         name,
			Email:        fmt.Sprintf("student%d@srit.ac.in", i+1),
			Phone:        fmt.Sprintf("98765%05d", i+1),
			Gender:       genders[i%2],
			Branch:       "CSE",
			Section:      sections[i%2],
			Year:         3,
			PasswordHash: string(hash),
		}

		if err := studentRepo.Create(ctx, student); err != nil {
			fmt.Printf("Error creating student %s (%s): %v\n", student.Name, student.RollNumber, err)
			continue
		}
		successCount++
		if successCount%10 == 0 {
			fmt.Printf("Created %d students...\n", successCount)
		}
	}

	fmt.Printf("\nSeed completed! Successfully added %d/%d students.\n", successCount, len(names))
}
