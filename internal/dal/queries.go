package dal

import (
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
)

const (
	DBTypeSQLite   DBType = "sqlite"
	DBTypePostgres DBType = "postgres"
	DBTypeMySQL    DBType = "mysql"
)

type (
	DBType string

	// Queries builds statements for one SQL dialect.
	Queries struct {
		dbType DBType
		sb     squirrel.StatementBuilderType
	}
)

var userColumns = []string{ //nolint:gochecknoglobals // shared column list
	"id", "username", "password_hash", "score", "total_games", "wins", "win_streak", "register_date", "last_login",
}

func ParseDBType(s string) (DBType, error) {
	switch t := DBType(strings.ToLower(s)); t {
	case DBTypeSQLite, DBTypePostgres, DBTypeMySQL:
		return t, nil
	default:
		return "", fmt.Errorf("unsupported database type %q", s)
	}
}

func NewQueries(dbType DBType) *Queries {
	var format squirrel.PlaceholderFormat = squirrel.Question
	if dbType == DBTypePostgres {
		format = squirrel.Dollar
	}
	return &Queries{
		dbType: dbType,
		sb:     squirrel.StatementBuilder.PlaceholderFormat(format),
	}
}

func (q *Queries) DBType() DBType {
	return q.dbType
}

func (q *Queries) Builder() squirrel.StatementBuilderType {
	return q.sb
}

// SupportsReturning reports whether inserts can return generated ids inline.
func (q *Queries) SupportsReturning() bool {
	return q.dbType != DBTypeMySQL
}

// IgnoreConflicts turns an insert into one that silently skips unique violations.
func (q *Queries) IgnoreConflicts(b squirrel.InsertBuilder) squirrel.InsertBuilder {
	if q.dbType == DBTypeMySQL {
		return b.Options("IGNORE")
	}
	return b.Suffix("ON CONFLICT DO NOTHING")
}

// ReturningID appends RETURNING id where the dialect supports it.
func (q *Queries) ReturningID(b squirrel.InsertBuilder) squirrel.InsertBuilder {
	if !q.SupportsReturning() {
		return b
	}
	return b.Suffix("RETURNING id")
}

func (q *Queries) upsert(b squirrel.InsertBuilder, key string, columns ...string) squirrel.InsertBuilder {
	sets := make([]string, len(columns))
	if q.dbType == DBTypeMySQL {
		for i, c := range columns {
			sets[i] = fmt.Sprintf("%s = VALUES(%s)", c, c)
		}
		return b.Suffix("ON DUPLICATE KEY UPDATE " + strings.Join(sets, ", "))
	}
	for i, c := range columns {
		sets[i] = fmt.Sprintf("%s = EXCLUDED.%s", c, c)
	}
	return b.Suffix(fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", key, strings.Join(sets, ", ")))
}

func (q *Queries) random() string {
	if q.dbType == DBTypeMySQL {
		return "RAND()"
	}
	return "RANDOM()"
}

func (q *Queries) length(column string) string {
	if q.dbType == DBTypeMySQL {
		return "CHAR_LENGTH(" + column + ")"
	}
	return "LENGTH(" + column + ")"
}

// InsertUserQuery builds an insert for a new user that skips duplicate usernames
func (q *Queries) InsertUserQuery(username, passwordHash string, registeredAt time.Time) squirrel.InsertBuilder {
	return q.ReturningID(q.IgnoreConflicts(q.sb.Insert("users").
		Columns("username", "password_hash", "score", "total_games", "wins", "win_streak", "register_date").
		Values(username, passwordHash, 0, 0, 0, 0, registeredAt)))
}

// FindUserQuery builds a query to find a single user by the given predicate
func (q *Queries) FindUserQuery(where squirrel.Eq) squirrel.Sqlizer {
	return q.sb.Select(userColumns...).
		From("users").
		Where(where)
}

// UpdateLastLoginQuery builds a query to store the last login time
func (q *Queries) UpdateLastLoginQuery(userID int64, at time.Time) squirrel.Sqlizer {
	return q.sb.Update("users").
		Set("last_login", at).
		Where(squirrel.Eq{"id": userID})
}

// UpdateUserStatsQuery builds a query to overwrite user counters
func (q *Queries) UpdateUserStatsQuery(userID int64, stats UserStats) squirrel.Sqlizer {
	return q.sb.Update("users").
		Set("score", stats.Score).
		Set("total_games", stats.TotalGames).
		Set("wins", stats.Wins).
		Set("win_streak", stats.WinStreak).
		Where(squirrel.Eq{"id": userID})
}

// ApplyGameResultQuery builds a query to fold a finished game into user counters.
// The streak grows from the stored value, so results applied in any order
// never overwrite each other.
func (q *Queries) ApplyGameResultQuery(userID int64, res GameResult) squirrel.Sqlizer {
	update := q.sb.Update("users").
		Set("score", squirrel.Expr("score + ?", res.ScoreDelta-res.PointsSpent)).
		Set("total_games", squirrel.Expr("total_games + 1"))
	if res.Won {
		update = update.
			Set("wins", squirrel.Expr("wins + 1")).
			Set("win_streak", squirrel.Expr("win_streak + 1"))
	} else {
		update = update.Set("win_streak", 0)
	}
	return update.Where(squirrel.Eq{"id": userID})
}

// AdjustScoreQuery builds a query to add delta to the user score
func (q *Queries) AdjustScoreQuery(userID int64, delta int) squirrel.Sqlizer {
	return q.sb.Update("users").
		Set("score", squirrel.Expr("score + ?", delta)).
		Where(squirrel.Eq{"id": userID})
}

// TopScoresQuery builds a query for the leaderboard
func (q *Queries) TopScoresQuery(limit uint64) squirrel.Sqlizer {
	return q.sb.Select("id", "username", "score", "wins").
		From("users").
		OrderBy("score DESC", "wins DESC", "id").
		Limit(limit)
}

// CountUsersQuery builds a query to count registered users
func (q *Queries) CountUsersQuery() squirrel.Sqlizer {
	return q.sb.Select("COUNT(*)").From("users")
}

// FindSettingsQuery builds a query to find user settings
func (q *Queries) FindSettingsQuery(userID int64) squirrel.Sqlizer {
	return q.sb.Select("user_id", "dark_mode", "sound_enabled", "music_enabled", "music_track", "difficulty").
		From("user_settings").
		Where(squirrel.Eq{"user_id": userID})
}

// UpsertSettingsQuery builds a query to insert or update user settings
func (q *Queries) UpsertSettingsQuery(s Settings) squirrel.Sqlizer {
	return q.upsert(q.sb.Insert("user_settings").
		Columns("user_id", "dark_mode", "sound_enabled", "music_enabled", "music_track", "difficulty").
		Values(s.UserID, s.DarkMode, s.SoundEnabled, s.MusicEnabled, s.MusicTrack, s.Difficulty),
		"user_id", "dark_mode", "sound_enabled", "music_enabled", "music_track", "difficulty")
}

// FindAchievementsQuery builds a query for the achievement catalog
func (q *Queries) FindAchievementsQuery() squirrel.Sqlizer {
	return q.sb.Select("name", "title", "description", "icon").
		From("achievements").
		OrderBy("name")
}

// FindUserAchievementsQuery builds a query for achievements awarded to a user
func (q *Queries) FindUserAchievementsQuery(userID int64) squirrel.Sqlizer {
	return q.sb.Select("a.name", "a.title", "a.description", "a.icon", "ua.date_awarded").
		From("user_achievements ua").
		Join("achievements a ON a.name = ua.achievement_id").
		Where(squirrel.Eq{"ua.user_id": userID}).
		OrderBy("ua.date_awarded", "a.name")
}

// InsertUserAchievementQuery builds an insert that skips already awarded achievements
func (q *Queries) InsertUserAchievementQuery(userID int64, achievementID string, at time.Time) squirrel.Sqlizer {
	return q.IgnoreConflicts(q.sb.Insert("user_achievements").
		Columns("user_id", "achievement_id", "date_awarded").
		Values(userID, achievementID, at))
}

// FindWordByTextQuery builds a query to find a served word
func (q *Queries) FindWordByTextQuery(word string) squirrel.Sqlizer {
	return q.sb.Select("id", "word", "hint", "date_used").
		From("words").
		Where(squirrel.Eq{"word": word})
}

// InsertWordQuery builds an insert for a served word
func (q *Queries) InsertWordQuery(word, hint string, at time.Time) squirrel.InsertBuilder {
	return q.ReturningID(q.IgnoreConflicts(q.sb.Insert("words").
		Columns("word", "hint", "date_used").
		Values(word, hint, at)))
}

// TouchWordQuery builds a query to refresh the last use of a word
func (q *Queries) TouchWordQuery(id int64, at time.Time) squirrel.Sqlizer {
	return q.sb.Update("words").
		Set("date_used", at).
		Where(squirrel.Eq{"id": id})
}

// FindWordsQuery builds a query for served words, most recent first
func (q *Queries) FindWordsQuery(limit uint64) squirrel.Sqlizer {
	return q.sb.Select("id", "word", "hint", "date_used").
		From("words").
		OrderBy("date_used DESC", "id DESC").
		Limit(limit)
}

// DeleteWordsQuery builds a query to clear the served word list
func (q *Queries) DeleteWordsQuery() squirrel.Sqlizer {
	return q.sb.Delete("words")
}

// DeleteAllWordPlaysQuery builds a query to clear every user's word history
func (q *Queries) DeleteAllWordPlaysQuery() squirrel.Sqlizer {
	return q.sb.Delete("user_words")
}

// InsertWordPlayQuery builds an insert for a user's word history
func (q *Queries) InsertWordPlayQuery(userID, wordID int64, guessedCorrectly bool, at time.Time) squirrel.Sqlizer {
	return q.sb.Insert("user_words").
		Columns("user_id", "word_id", "guessed_correctly", "date_played").
		Values(userID, wordID, guessedCorrectly, at)
}

// FindWordHistoryQuery builds a query for a user's played words
func (q *Queries) FindWordHistoryQuery(userID int64, limit uint64) squirrel.Sqlizer {
	return q.sb.Select("w.id", "w.word", "w.hint", "uw.guessed_correctly", "uw.date_played").
		From("user_words uw").
		Join("words w ON w.id = uw.word_id").
		Where(squirrel.Eq{"uw.user_id": userID}).
		OrderBy("uw.date_played DESC", "uw.id DESC").
		Limit(limit)
}

// InsertQuestionQuery builds an insert for a question history entry
func (q *Queries) InsertQuestionQuery(userID int64, question, response string, at time.Time) squirrel.InsertBuilder {
	return q.ReturningID(q.sb.Insert("user_questions").
		Columns("user_id", "question", "response", "timestamp").
		Values(userID, question, response, at))
}

// FindQuestionsQuery builds a query for a user's question history
func (q *Queries) FindQuestionsQuery(userID int64, limit uint64) squirrel.Sqlizer {
	return q.sb.Select("id", "user_id", "question", "response", "timestamp").
		From("user_questions").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("timestamp DESC", "id DESC").
		Limit(limit)
}

// DeleteQuestionsQuery builds a query to clear a user's question history
func (q *Queries) DeleteQuestionsQuery(userID int64) squirrel.Sqlizer {
	return q.sb.Delete("user_questions").
		Where(squirrel.Eq{"user_id": userID})
}

// UpsertBankWordQuery builds a query to add or update a curated word
func (q *Queries) UpsertBankWordQuery(w BankWord) squirrel.Sqlizer {
	return q.upsert(q.sb.Insert("word_bank").
		Columns("word", "hint", "topic", "difficulty").
		Values(w.Word, w.Hint, w.Topic, w.Difficulty),
		"word", "hint", "topic", "difficulty")
}

// FindRandomBankWordQuery builds a query to pick a random curated word
func (q *Queries) FindRandomBankWordQuery(filter BankWordFilter) squirrel.Sqlizer {
	query := q.sb.Select("word", "hint", "topic", "difficulty").
		From("word_bank")

	if filter.Topic != "" {
		query = query.Where(squirrel.Eq{"topic": filter.Topic})
	}
	if filter.Difficulty != "" {
		query = query.Where(squirrel.Or{
			squirrel.Eq{"difficulty": filter.Difficulty},
			squirrel.Eq{"difficulty": ""},
		})
	}
	if filter.MinLength > 0 {
		query = query.Where(q.length("word")+" >= ?", filter.MinLength)
	}
	if filter.MaxLength > 0 {
		query = query.Where(q.length("word")+" <= ?", filter.MaxLength)
	}
	if len(filter.Exclude) > 0 {
		query = query.Where(squirrel.NotEq{"word": filter.Exclude})
	}

	return query.OrderBy(q.random()).Limit(1)
}

// CountBankWordsQuery builds a query to count curated words
func (q *Queries) CountBankWordsQuery() squirrel.Sqlizer {
	return q.sb.Select("COUNT(*)").From("word_bank")
}
