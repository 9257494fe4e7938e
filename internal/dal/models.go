package dal

import "time"

type (
	User struct {
		ID           int64
		Username     string
		PasswordHash string
		Score        int
		TotalGames   int
		Wins         int
		WinStreak    int
		RegisterDate time.Time
		LastLogin    *time.Time
	}

	// UserStats are the counters a client may overwrite directly.
	UserStats struct {
		Score      int
		TotalGames int
		Wins       int
		WinStreak  int
	}

	// GameResult is applied to the user's counters when a session finishes.
	GameResult struct {
		ScoreDelta  int
		PointsSpent int
		Won         bool
	}

	Settings struct {
		UserID       int64
		DarkMode     bool
		SoundEnabled bool
		MusicEnabled bool
		MusicTrack   string
		Difficulty   string
	}

	Achievement struct {
		ID          string
		Title       string
		Description string
		Icon        string
	}

	UserAchievement struct {
		Achievement
		DateAwarded time.Time
	}

	Word struct {
		ID       int64
		Word     string
		Hint     string
		DateUsed time.Time
	}

	WordPlay struct {
		WordID           int64
		Word             string
		Hint             string
		GuessedCorrectly bool
		DatePlayed       time.Time
	}

	Question struct {
		ID        int64
		UserID    int64
		Question  string
		Response  string
		Timestamp time.Time
	}

	LeaderboardEntry struct {
		UserID   int64
		Username string
		Score    int
		Wins     int
	}

	Leaderboard struct {
		Entries      []LeaderboardEntry
		TotalPlayers int
	}

	BankWord struct {
		Word       string
		Hint       string
		Topic      string
		Difficulty string
	}

	Profile struct {
		User         User
		Settings     Settings
		Achievements []UserAchievement
	}
)

// DefaultSettings are stored for every new user.
func DefaultSettings(userID int64) Settings {
	return Settings{
		UserID:       userID,
		DarkMode:     false,
		SoundEnabled: true,
		MusicEnabled: true,
		MusicTrack:   "default",
		Difficulty:   "medium",
	}
}
