package game

const (
	AchievementFirstWin    = "first_win"
	AchievementPerfectGame = "perfect_game"
	AchievementStreak3     = "streak_3"
	AchievementHintMaster  = "hint_master"
	AchievementHardMode    = "hard_mode"

	streakGoal = 3
)

type Achievement struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

var achievements = []Achievement{ //nolint:gochecknoglobals // static catalog
	{ID: AchievementFirstWin, Title: "First Victory", Description: "Win your first game", Icon: "🏆"},
	{ID: AchievementPerfectGame, Title: "Perfect Game", Description: "Win without any wrong guesses", Icon: "⭐"},
	{ID: AchievementStreak3, Title: "Winning Streak", Description: "Win 3 games in a row", Icon: "🔥"},
	{ID: AchievementHintMaster, Title: "Hint Master", Description: "Use both hint types in a winning game", Icon: "💡"},
	{ID: AchievementHardMode, Title: "Challenge Accepted", Description: "Win a game on hard difficulty", Icon: "🔨"},
}

// Achievements returns a copy of the catalog.
func Achievements() []Achievement {
	res := make([]Achievement, len(achievements))
	copy(res, achievements)
	return res
}

func LookupAchievement(id string) (Achievement, bool) {
	for _, a := range achievements {
		if a.ID == id {
			return a, true
		}
	}
	return Achievement{}, false
}

// Eligible returns the ids of every achievement the record qualifies for,
// regardless of what the player already owns. Losses qualify for nothing.
func Eligible(e Eligibility) []string {
	if !e.WonGame {
		return nil
	}

	res := []string{AchievementFirstWin}
	if e.WasPerfect {
		res = append(res, AchievementPerfectGame)
	}
	if e.WinStreakAfter >= streakGoal {
		res = append(res, AchievementStreak3)
	}
	if e.HintTypesUsed.Has(HintReveal) && e.HintTypesUsed.Has(HintEliminate) {
		res = append(res, AchievementHintMaster)
	}
	if e.Difficulty == DifficultyHard {
		res = append(res, AchievementHardMode)
	}
	return res
}
