package progress_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/Roma7-7-7/readyword/internal/dal"
	dalsql "github.com/Roma7-7-7/readyword/internal/dal/sql"
	"github.com/Roma7-7-7/readyword/internal/game"
	"github.com/Roma7-7-7/readyword/internal/play"
	"github.com/Roma7-7-7/readyword/internal/progress"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRepo(t *testing.T) *dalsql.Repository {
	t.Helper()
	ctx := context.Background()

	db, err := dalsql.Open(ctx, dal.DBTypeSQLite, filepath.Join(t.TempDir(), "progress.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = dalsql.Migrate(ctx, db, dal.DBTypeSQLite, discard()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	return dalsql.NewRepository(db, dal.DBTypeSQLite, discard())
}

// playOut runs a session to completion by guessing the letters in order.
func playOut(t *testing.T, p game.StartParams, guesses string) game.Outcome {
	t.Helper()
	s, err := game.Start(p)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	for _, r := range guesses {
		s, _ = s.GuessLetter(r)
	}
	o, ok := s.Outcome()
	if !ok {
		t.Fatalf("session with guesses %q did not finish", guesses)
	}
	return o
}

func TestRecorder_Finished(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	rec := progress.NewRecorder(repo, 3, time.Millisecond, discard())

	user, err := repo.CreateUser(ctx, "alice", "hash", time.Now().UTC())
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if err = repo.AdjustScore(ctx, user.ID, 10); err != nil {
		t.Fatalf("AdjustScore() error = %v", err)
	}
	word, err := repo.SaveWord(ctx, "dam", "barrier", time.Now().UTC())
	if err != nil {
		t.Fatalf("SaveWord() error = %v", err)
	}

	// Hard win with a reveal: +5 -3, first_win, perfect_game, hard_mode.
	s, _ := game.Start(game.StartParams{Word: "DAM", Difficulty: game.DifficultyHard, PointBalance: 10})
	s, _, err = s.RevealLetter(firstRand{})
	if err != nil {
		t.Fatalf("RevealLetter() error = %v", err)
	}
	for _, r := range "dam" {
		s, _ = s.GuessLetter(r)
	}
	first, ok := s.Outcome()
	if !ok {
		t.Fatal("session did not finish")
	}
	rec.Finished(ctx, play.Finished{SessionID: "s1", UserID: user.ID, WordID: word.ID, Outcome: first})

	second := playOut(t, game.StartParams{Word: "DAM", Difficulty: game.DifficultyEasy, WinStreak: 1}, "dam")
	rec.Finished(ctx, play.Finished{SessionID: "s2", UserID: user.ID, WordID: word.ID, Outcome: second})

	got, err := repo.FindUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindUserByID() error = %v", err)
	}
	if got.Score != 13 || got.TotalGames != 2 || got.Wins != 2 || got.WinStreak != 2 {
		t.Errorf("unexpected counters %+v", got)
	}

	owned, err := repo.FindUserAchievements(ctx, user.ID)
	if err != nil {
		t.Fatalf("FindUserAchievements() error = %v", err)
	}
	ids := make(map[string]bool, len(owned))
	for _, a := range owned {
		ids[a.ID] = true
	}
	for _, want := range []string{game.AchievementFirstWin, game.AchievementPerfectGame, game.AchievementHardMode} {
		if !ids[want] {
			t.Errorf("achievement %s not awarded, got %v", want, ids)
		}
	}
	if len(owned) != 3 {
		t.Errorf("len(achievements) = %d, want 3", len(owned))
	}

	history, err := repo.FindWordHistory(ctx, user.ID, 10)
	if err != nil {
		t.Fatalf("FindWordHistory() error = %v", err)
	}
	if len(history) != 2 {
		t.Errorf("len(history) = %d, want 2", len(history))
	}
}

func TestRecorder_StreakFromStore(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	rec := progress.NewRecorder(repo, 1, 0, discard())

	user, _ := repo.CreateUser(ctx, "erin", "hash", time.Now().UTC())

	// every session started before the previous one was stored
	for i := range 3 {
		won := playOut(t, game.StartParams{Word: "DAM", Difficulty: game.DifficultyEasy}, "xdam")
		rec.Finished(ctx, play.Finished{SessionID: string(rune('a' + i)), UserID: user.ID, Outcome: won})
	}

	got, _ := repo.FindUserByID(ctx, user.ID)
	if got.WinStreak != 3 || got.Wins != 3 {
		t.Errorf("unexpected counters %+v", got)
	}
	owned, _ := repo.FindUserAchievements(ctx, user.ID)
	if !slices.ContainsFunc(owned, func(a dal.UserAchievement) bool { return a.ID == game.AchievementStreak3 }) {
		t.Errorf("streak achievement not awarded, got %+v", owned)
	}
}

func TestRecorder_LossResetsStreak(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	rec := progress.NewRecorder(repo, 1, 0, discard())

	user, _ := repo.CreateUser(ctx, "bob", "hash", time.Now().UTC())
	if err := repo.UpdateUserStats(ctx, user.ID, dal.UserStats{Score: 4, TotalGames: 3, Wins: 3, WinStreak: 3}); err != nil {
		t.Fatalf("UpdateUserStats() error = %v", err)
	}

	lost := playOut(t, game.StartParams{Word: "DAM", Difficulty: game.DifficultyHard, WinStreak: 3}, "xyzq")
	rec.Finished(ctx, play.Finished{SessionID: "s", UserID: user.ID, Outcome: lost})

	got, _ := repo.FindUserByID(ctx, user.ID)
	if got.Score != 4 || got.TotalGames != 4 || got.Wins != 3 || got.WinStreak != 0 {
		t.Errorf("unexpected counters %+v", got)
	}
	owned, _ := repo.FindUserAchievements(ctx, user.ID)
	if len(owned) != 0 {
		t.Errorf("loss awarded achievements %+v", owned)
	}
}

func TestRecorder_Abandoned(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	rec := progress.NewRecorder(repo, 1, 0, discard())

	user, _ := repo.CreateUser(ctx, "carol", "hash", time.Now().UTC())
	_ = repo.AdjustScore(ctx, user.ID, 8)

	rec.Abandoned(ctx, play.Abandoned{SessionID: "s", UserID: user.ID, PointsSpent: game.EliminateCost})

	got, _ := repo.FindUserByID(ctx, user.ID)
	if got.Score != 6 || got.TotalGames != 0 {
		t.Errorf("unexpected counters %+v", got)
	}
}

type flakyRepo struct {
	dal.Repository
	failures int
	calls    int
}

func (r *flakyRepo) Transact(ctx context.Context, fn func(dal.Repository) error) error {
	r.calls++
	if r.calls <= r.failures {
		return errors.New("database is locked")
	}
	return r.Repository.Transact(ctx, fn)
}

func TestRecorder_RetriesTransientFailures(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	user, _ := repo.CreateUser(ctx, "dave", "hash", time.Now().UTC())

	tests := []struct {
		name      string
		failures  int
		wantCalls int
		wantGames int
	}{
		{name: "recovers", failures: 2, wantCalls: 3, wantGames: 1},
		{name: "gives up", failures: 5, wantCalls: 3, wantGames: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flaky := &flakyRepo{Repository: repo, failures: tt.failures}
			rec := progress.NewRecorder(flaky, 3, time.Millisecond, discard())

			lost := playOut(t, game.StartParams{Word: "DAM", Difficulty: game.DifficultyHard}, "xyzq")
			rec.Finished(ctx, play.Finished{SessionID: tt.name, UserID: user.ID, Outcome: lost})

			if flaky.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", flaky.calls, tt.wantCalls)
			}
			got, _ := repo.FindUserByID(ctx, user.ID)
			if got.TotalGames != tt.wantGames {
				t.Errorf("total games = %d, want %d", got.TotalGames, tt.wantGames)
			}
		})
	}
}

type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }
