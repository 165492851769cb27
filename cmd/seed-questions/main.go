package main

import (
	"context"
	"fmt"
	"time"

	"github.com/uzmath/mathtest-backend/internal/config"
	"github.com/uzmath/mathtest-backend/internal/database"
	"github.com/uzmath/mathtest-backend/internal/logger"
	"github.com/uzmath/mathtest-backend/internal/model"
	"github.com/uzmath/mathtest-backend/internal/repository"
)

// Seeds a small approved question bank across every category so a dev
// environment can start mock sessions immediately.
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

	questionRepo := repository.NewQuestionRepository(pool)

	fmt.Println("=== Seeding Question Bank ===")

	type seed struct {
		text    string
		a, b    string
		c, d    string
		correct string
		topic   string
		latex   string
		explain string
	}

	banks := map[model.Category][]seed{
		model.CategoryAlgebra: {
			{"3x + 5 = 20 tenglamada x ni toping.", "3", "5", "7", "15", "B", "chiziqli tenglamalar", "3x + 5 = 20", "3x = 15, demak x = 5."},
			{"(x + 2)(x - 2) ifodani soddalashtiring.", "x² - 4", "x² + 4", "x² - 2", "4 - x²", "A", "qisqa ko'paytirish formulalari", "(x+2)(x-2)", "Kvadratlar ayirmasi formulasi."},
			{"2⁵ ning qiymati nechaga teng?", "16", "25", "32", "64", "C", "darajalar", "2^5", "2 ni besh marta ko'paytiramiz: 32."},
		},
		model.CategoryGeometry: {
			{"Tomoni 6 sm bo'lgan kvadratning yuzi nechaga teng?", "12 sm²", "24 sm²", "36 sm²", "18 sm²", "C", "yuzalar", "S = a^2", "S = 6² = 36 sm²."},
			{"Uchburchak ichki burchaklarining yig'indisi nechaga teng?", "90°", "180°", "270°", "360°", "B", "uchburchaklar", "", "Har qanday uchburchakda 180°."},
		},
		model.CategoryTrigonometry: {
			{"sin 30° ning qiymati nechaga teng?", "1/2", "√2/2", "√3/2", "1", "A", "trigonometrik qiymatlar", "\\sin 30^\\circ", "Jadval qiymati: 1/2."},
			{"cos 0° ning qiymati nechaga teng?", "0", "1/2", "√3/2", "1", "D", "trigonometrik qiymatlar", "\\cos 0^\\circ", "cos 0° = 1."},
		},
		model.CategoryFunctions: {
			{"f(x) = 2x + 3 bo'lsa, f(4) ni toping.", "8", "11", "14", "10", "B", "funksiya qiymati", "f(x) = 2x + 3", "f(4) = 2·4 + 3 = 11."},
		},
		model.CategoryEquations: {
			{"x² - 9 = 0 tenglamaning ildizlarini toping.", "x = ±3", "x = 3", "x = ±9", "x = 9", "A", "kvadrat tenglamalar", "x^2 - 9 = 0", "x² = 9, demak x = ±3."},
		},
		model.CategoryProbability: {
			{"Tanga bir marta tashlanganda gerb tushish ehtimoli qancha?", "1/4", "1/3", "1/2", "1", "C", "klassik ehtimollik", "", "Ikkita teng imkoniyatdan bittasi."},
		},
		model.CategoryLogic: {
			{"2, 4, 8, 16, ... ketma-ketlikning keyingi hadi qaysi?", "24", "30", "32", "64", "C", "ketma-ketliklar", "", "Har bir had ikki baravar ortadi."},
		},
	}

	successCount := 0
	for category, seeds := range banks {
		for _, s := range seeds {
			q := &model.Question{
				QuestionText: s.text,
				OptionA:      s.a,
				OptionB:      s.b,
				OptionC:      s.c,
				OptionD:      s.d,
				CorrectLabel: s.correct,
				Category:     category,
				Topic:        s.topic,
				Difficulty:   model.DifficultyEasy,
				Points:       1,
				Language:     model.LanguageUzbek,
				Latex:        s.latex,
				Explanation:  s.explain,
				Status:       model.QuestionStatusApproved,
			}
			if err := questionRepo.Create(ctx, q); err != nil {
				log.Error().Err(err).Str("category", string(category)).Msg("Failed to seed question")
				continue
			}
			successCount++
		}
	}

	fmt.Printf("Seeded %d questions\n", successCount)
}
