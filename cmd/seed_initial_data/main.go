package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"quizdeck/cmd/seed_initial_data/internal/seedmodels"
	"quizdeck/internal/config"
	"quizdeck/internal/database"
	"quizdeck/internal/domain"
	"quizdeck/internal/logger"
	"quizdeck/internal/repository"

	"go.uber.org/zap"
)

const seedFilePath = "configs/seed_data/initial_quizzes.json"

func main() {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(cfg.Logger); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	log := logger.Get()

	log.Info("Starting initial data seeding")
	db, err := database.NewSQLXOracleDB(cfg.GetDSN())
	if err != nil {
		log.Fatal("Failed to connect to Oracle database", zap.Error(err))
	}
	defer db.Close()

	byteValue, err := os.ReadFile(seedFilePath)
	if err != nil {
		log.Fatal("Failed to read seed file", zap.String("path", seedFilePath), zap.Error(err))
	}

	var seedQuizzes []seedmodels.SeedQuiz
	if err := json.Unmarshal(byteValue, &seedQuizzes); err != nil {
		log.Fatal("Failed to unmarshal seed data", zap.Error(err))
	}
	log.Info("Loaded seed data", zap.Int("quizzes", len(seedQuizzes)))

	quizRepo := repository.NewSQLXQuizRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	existing, err := quizRepo.ListQuizzes(ctx)
	if err != nil {
		log.Fatal("Failed to list existing quizzes", zap.Error(err))
	}
	existingTitles := make(map[string]bool, len(existing))
	for _, q := range existing {
		existingTitles[q.Title] = true
	}

	for _, sq := range seedQuizzes {
		if existingTitles[sq.Title] {
			log.Info("Quiz exists, skipping", zap.String("title", sq.Title))
			continue
		}
		if err := seedQuiz(ctx, txManager, quizRepo, sq); err != nil {
			log.Error("Error seeding quiz, transaction rolled back",
				zap.String("title", sq.Title), zap.Error(err))
			continue
		}
		log.Info("Seeded quiz", zap.String("title", sq.Title))
	}
	log.Info("Initial data seeding completed")
}

// seedQuiz inserts one quiz with all its questions and options in a single
// transaction.
func seedQuiz(
	ctx context.Context,
	txManager domain.TransactionManager,
	quizRepo domain.QuizRepository,
	sq seedmodels.SeedQuiz,
) error {
	quiz := domain.NewQuiz(sq.Title, sq.Description, sq.TimeMinutes, sq.Difficulty, sq.IconName)
	for i, q := range sq.Questions {
		question := domain.Question{Text: q.Text, Position: i + 1}
		for _, o := range q.Options {
			question.Options = append(question.Options, domain.Option{
				Text:      o.Text,
				IsCorrect: o.Correct,
			})
		}
		quiz.Questions = append(quiz.Questions, question)
	}
	if err := quiz.Validate(); err != nil {
		return fmt.Errorf("invalid seed quiz %q: %w", sq.Title, err)
	}

	return txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		return quizRepo.SaveQuiz(txCtx, quiz)
	})
}
