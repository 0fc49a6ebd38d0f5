package db

import (
	"log"
	"os"

	"inkwell/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func Init() {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=inkwell port=5432 sslmode=disable"
	}

	var err error
	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	log.Println("Database connection established")

	// Auto Migrate
	err = DB.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Post{},
		&models.Comment{},
		&models.PostClap{},
		&models.Notification{},
		&models.MagicLink{},
	)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed")

	seedTags()
}

func seedTags() {
	var count int64
	DB.Model(&models.Tag{}).Count(&count)
	if count > 0 {
		log.Println("Tags already seeded, skipping")
		return
	}

	tags := []models.Tag{
		{Name: "general", Description: "Anything that fits nowhere else"},
		{Name: "tech", Description: "Programming, tools and engineering notes"},
		{Name: "life", Description: "Everyday writing and personal essays"},
		{Name: "show", Description: "Projects and work you want to show off"},
	}

	for _, tag := range tags {
		if err := DB.Create(&tag).Error; err != nil {
			log.Printf("Failed to create tag %s: %v", tag.Name, err)
		}
	}
	log.Println("Initial tags created successfully")
}
