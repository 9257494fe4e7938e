package dal

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
)

type (
	BankWordFilter struct {
		Topic      string
		Difficulty string
		MinLength  int
		MaxLength  int
		Exclude    []string
	}

	UsersRepository interface {
		CreateUser(ctx context.Context, username, passwordHash string, registeredAt time.Time) (*User, error)
		FindUserByID(ctx context.Context, id int64) (*User, error)
		FindUserByUsername(ctx context.Context, username string) (*User, error)
		FindProfile(ctx context.Context, userID int64) (*Profile, error)
		UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
		UpdateUserStats(ctx context.Context, userID int64, stats UserStats) error
		ApplyGameResult(ctx context.Context, userID int64, res GameResult) error
		AdjustScore(ctx context.Context, userID int64, delta int) error
		FindLeaderboard(ctx context.Context, limit uint64) (*Leaderboard, error)
	}

	SettingsRepository interface {
		FindSettings(ctx context.Context, userID int64) (*Settings, error)
		SaveSettings(ctx context.Context, settings Settings) error
	}

	AchievementsRepository interface {
		FindAchievements(ctx context.Context) ([]Achievement, error)
		FindUserAchievements(ctx context.Context, userID int64) ([]UserAchievement, error)
		// AwardAchievement returns ErrAlreadyExists when the user owns it already.
		AwardAchievement(ctx context.Context, userID int64, achievementID string, at time.Time) error
	}

	WordsRepository interface {
		SaveWord(ctx context.Context, word, hint string, at time.Time) (*Word, error)
		FindWords(ctx context.Context, limit uint64) ([]Word, error)
		FindRecentWords(ctx context.Context, limit uint64) ([]string, error)
		DeleteWords(ctx context.Context) error
		RecordWordPlay(ctx context.Context, userID, wordID int64, guessedCorrectly bool, at time.Time) error
		FindWordHistory(ctx context.Context, userID int64, limit uint64) ([]WordPlay, error)
	}

	QuestionsRepository interface {
		InsertQuestion(ctx context.Context, userID int64, question, response string, at time.Time) (*Question, error)
		FindQuestions(ctx context.Context, userID int64, limit uint64) ([]Question, error)
		DeleteQuestions(ctx context.Context, userID int64) error
	}

	WordBankRepository interface {
		AddBankWord(ctx context.Context, word BankWord) error
		FindRandomBankWord(ctx context.Context, filter BankWordFilter) (*BankWord, error)
		CountBankWords(ctx context.Context) (int, error)
	}

	Repository interface {
		Transact(ctx context.Context, txFunc func(r Repository) error) error
		UsersRepository
		SettingsRepository
		AchievementsRepository
		WordsRepository
		QuestionsRepository
		WordBankRepository
	}
)
