package play

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Roma7-7-7/readyword/internal/dal"
	"github.com/Roma7-7-7/readyword/internal/game"
	"github.com/Roma7-7-7/readyword/internal/wordsource"
)

const (
	recentWordsLimit = 50
	maxWordAttempts  = 3
)

var ErrUnknownTopic = errors.New("unknown topic")

type (
	NewGameParams struct {
		Topic      string
		Difficulty game.Difficulty
	}

	// Service starts sessions with words from a word source and serves the
	// educational facts shown after a session ends.
	Service struct {
		repo    dal.Repository
		source  wordsource.Source
		manager *Manager
		rng     game.Rand
		log     *slog.Logger
	}
)

func NewService(repo dal.Repository, source wordsource.Source, manager *Manager, rng game.Rand, log *slog.Logger) *Service {
	if rng == nil {
		rng = game.DefaultRand
	}
	return &Service{
		repo:    repo,
		source:  source,
		manager: manager,
		rng:     rng,
		log:     log,
	}
}

func (s *Service) Manager() *Manager {
	return s.manager
}

func (s *Service) NewGame(ctx context.Context, userID int64, params NewGameParams) (Snapshot, error) {
	topic := params.Topic
	switch {
	case topic == "" || strings.EqualFold(topic, "random"):
		topic = wordsource.RandomTopic(s.rng)
	case !wordsource.IsTopic(topic):
		return Snapshot{}, fmt.Errorf("%w: %s", ErrUnknownTopic, topic)
	}

	difficulty, err := s.difficulty(ctx, userID, params.Difficulty)
	if err != nil {
		return Snapshot{}, err
	}

	word, err := s.pickWord(ctx, topic, difficulty)
	if err != nil {
		return Snapshot{}, err
	}

	stored, err := s.repo.SaveWord(ctx, strings.ToLower(word.Word), word.Hint, time.Now().UTC())
	if err != nil {
		return Snapshot{}, fmt.Errorf("save word: %w", err)
	}

	// The previous session's hint spend and any finished outcome must reach
	// the store before score and streak are read.
	if err = s.manager.DiscardCurrent(ctx, userID); err != nil {
		return Snapshot{}, fmt.Errorf("settle previous session: %w", err)
	}

	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return Snapshot{}, fmt.Errorf("find user: %w", err)
	}

	if word.Topic == "" {
		word.Topic = topic
	}
	return s.manager.Start(ctx, userID, stored.ID, game.StartParams{
		Word:         word.Word,
		Hint:         word.Hint,
		Topic:        word.Topic,
		Difficulty:   difficulty,
		PointBalance: user.Score,
		WinStreak:    user.WinStreak,
	})
}

func (s *Service) difficulty(ctx context.Context, userID int64, requested game.Difficulty) (game.Difficulty, error) {
	if requested != "" {
		if !requested.Valid() {
			return "", game.ErrUnknownDifficulty
		}
		return requested, nil
	}

	settings, err := s.repo.FindSettings(ctx, userID)
	if errors.Is(err, dal.ErrNotFound) {
		return game.DefaultDifficulty, nil
	}
	if err != nil {
		return "", fmt.Errorf("find settings: %w", err)
	}

	d, err := game.ParseDifficulty(settings.Difficulty)
	if err != nil {
		s.log.WarnContext(ctx, "stored difficulty is invalid, using default", "userID", userID, "difficulty", settings.Difficulty)
		return game.DefaultDifficulty, nil
	}
	return d, nil
}

// pickWord asks the source for a word not used recently. After
// maxWordAttempts duplicates the last word is accepted.
func (s *Service) pickWord(ctx context.Context, topic string, difficulty game.Difficulty) (wordsource.Word, error) {
	avoid, err := s.repo.FindRecentWords(ctx, recentWordsLimit)
	if err != nil {
		return wordsource.Word{}, fmt.Errorf("find recent words: %w", err)
	}

	var word wordsource.Word
	for attempt := 1; attempt <= maxWordAttempts; attempt++ {
		word, err = s.source.Generate(ctx, wordsource.Request{
			Topic:      topic,
			Difficulty: difficulty,
			Avoid:      avoid,
		})
		if err != nil {
			return wordsource.Word{}, fmt.Errorf("generate word: %w", err)
		}

		lower := strings.ToLower(word.Word)
		if !slices.Contains(avoid, lower) {
			return word, nil
		}
		s.log.DebugContext(ctx, "word source repeated a recent word", "word", lower, "attempt", attempt)
		avoid = append(avoid, lower)
	}

	s.log.WarnContext(ctx, "no fresh word after retries, reusing", "word", word.Word, "topic", topic)
	return word, nil
}

// Fact returns an educational paragraph about the word of a finished session.
// Paragraphs with real trivia are kept in the user's question history.
func (s *Service) Fact(ctx context.Context, userID int64, id string) (string, error) {
	return s.manager.Fact(userID, id, func(word string) (string, error) {
		fact, err := s.source.Fact(ctx, word)
		if err != nil {
			return "", fmt.Errorf("fetch fact: %w", err)
		}

		if wordsource.ContainsTrivia(fact) {
			if _, err = s.repo.InsertQuestion(ctx, userID, wordsource.FactPrompt(word), fact, time.Now().UTC()); err != nil {
				s.log.ErrorContext(ctx, "failed to store fact in question history", "userID", userID, "error", err)
			}
		}
		return fact, nil
	})
}
