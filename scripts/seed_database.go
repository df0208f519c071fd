package main

import (
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/config"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/models"
	"github.com/reosmzreo0410-netizen/reiwa-no-tora-screening/internal/services"
)

var seedQuestions = []models.Question{
	{
		QuestionText:       "なぜSNS版「令和の虎」に応募したのですか？",
		OrderNumber:        1,
		IsRequired:         true,
		MaxDurationSeconds: 180,
	},
	{
		QuestionText:       "あなたの事業プランについて、具体的に教えてください。",
		OrderNumber:        2,
		IsRequired:         true,
		MaxDurationSeconds: 300,
	},
	{
		QuestionText:       "その事業でどのような未来を見据えていますか？",
		OrderNumber:        3,
		IsRequired:         true,
		MaxDurationSeconds: 180,
	},
	{
		QuestionText:       "今、SNS運営で最も苦戦していることは何ですか？",
		OrderNumber:        4,
		IsRequired:         true,
		MaxDurationSeconds: 180,
	},
	{
		QuestionText:       "あなたの強みと、それを事業にどう活かすかを教えてください。",
		OrderNumber:        5,
		IsRequired:         true,
		MaxDurationSeconds: 180,
	},
}

func main() {
	cfg := config.Load()

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	log.Println("Seeding database...")

	for i := range seedQuestions {
		seedQuestions[i].ID = uuid.New()
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"question_text"}),
	}).Create(&seedQuestions).Error; err != nil {
		log.Fatalf("❌ Failed to seed questions: %v", err)
	}
	log.Println("✅ Questions seeded")

	passwordHash, err := services.HashPassword("admin123")
	if err != nil {
		log.Fatalf("❌ Failed to hash admin password: %v", err)
	}
	admin := models.AdminUser{
		ID:           uuid.New(),
		Username:     "admin",
		PasswordHash: passwordHash,
		Email:        "admin@reiwa-no-tora.com",
	}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "username"}},
		DoUpdates: clause.AssignmentColumns([]string{"email"}),
	}).Create(&admin).Error; err != nil {
		log.Fatalf("❌ Failed to seed admin user: %v", err)
	}
	log.Println("✅ Admin user seeded (username: admin)")

	log.Println("Seeding completed")
}
