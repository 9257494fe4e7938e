package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Roma7-7-7/readyword/internal/api"
	"github.com/Roma7-7-7/readyword/internal/config"
	"github.com/Roma7-7-7/readyword/internal/dal"
	dalsql "github.com/Roma7-7-7/readyword/internal/dal/sql"
	"github.com/Roma7-7-7/readyword/internal/play"
	"github.com/Roma7-7-7/readyword/internal/progress"
	"github.com/Roma7-7-7/readyword/internal/wordsource"
)

type scriptedSource struct {
	mu    sync.Mutex
	words []wordsource.Word
	fact  string
}

func (s *scriptedSource) Generate(context.Context, wordsource.Request) (wordsource.Word, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.words) == 0 {
		return wordsource.Word{}, wordsource.ErrNoWord
	}
	w := s.words[0]
	s.words = s.words[1:]
	return w, nil
}

func (s *scriptedSource) Fact(context.Context, string) (string, error) {
	if s.fact == "" {
		return "", wordsource.ErrNoFact
	}
	return s.fact, nil
}

type firstRand struct{}

func (firstRand) IntN(int) int { return 0 }

// stoppedTicker never fires, so sessions only end through guesses.
func stoppedTicker(time.Duration) (<-chan time.Time, func()) {
	return make(chan time.Time), func() {}
}

type testServer struct {
	handler http.Handler
	repo    *dalsql.Repository
}

func newTestServer(t *testing.T, source wordsource.Source) *testServer {
	t.Helper()
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	db, err := dalsql.Open(ctx, dal.DBTypeSQLite, filepath.Join(t.TempDir(), "api.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err = dalsql.Migrate(ctx, db, dal.DBTypeSQLite, log); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	repo := dalsql.NewRepository(db, dal.DBTypeSQLite, log)

	recorder := progress.NewRecorder(repo, 1, 0, log)
	manager := play.NewManager(recorder, log, play.WithRand(firstRand{}), play.WithTicker(stoppedTicker))
	t.Cleanup(manager.Close)
	games := play.NewService(repo, source, manager, firstRand{}, log)

	conf := &config.API{
		HTTP: config.HTTP{
			ProcessTimeout: 5 * time.Second,
			RateLimit:      1000,
			LeaderboardTTL: time.Minute,
			CORS:           config.CORS{AllowOrigins: []string{"http://localhost:3000"}},
			Cookie:         config.Cookie{Path: "/", AccessExpiresIn: time.Hour},
		},
		JWT: config.JWT{Issuer: "readyword-test", Audience: []string{"readyword"}, Secret: "test-secret"},
	}

	return &testServer{
		handler: api.NewRouter(ctx, conf, api.Dependencies{
			Repo:   repo,
			DB:     db,
			Games:  games,
			Logger: log,
		}),
		repo: repo,
	}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

type loginResult struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
	Settings    struct {
		Difficulty string `json:"difficulty"`
	} `json:"settings"`
}

func (s *testServer) register(t *testing.T, username string) loginResult {
	t.Helper()
	body := fmt.Sprintf(`{"username":%q,"password":"secret-pass"}`, username)
	if rec := s.do(t, http.MethodPost, "/api/register", "", body); rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec := s.do(t, http.MethodPost, "/api/login", "", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var res loginResult
	decode(t, rec, &res)
	return res
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, &scriptedSource{})

	user := s.register(t, "alice")
	if user.AccessToken == "" {
		t.Fatal("login returned empty access token")
	}
	if user.Settings.Difficulty != "medium" {
		t.Errorf("default difficulty = %s, want medium", user.Settings.Difficulty)
	}

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		want   int
	}{
		{name: "duplicate username", method: http.MethodPost, path: "/api/register", body: `{"username":"alice","password":"secret-pass"}`, want: http.StatusConflict},
		{name: "short password", method: http.MethodPost, path: "/api/register", body: `{"username":"bob","password":"123"}`, want: http.StatusBadRequest},
		{name: "wrong password", method: http.MethodPost, path: "/api/login", body: `{"username":"alice","password":"wrong-pass"}`, want: http.StatusUnauthorized},
		{name: "unknown user", method: http.MethodPost, path: "/api/login", body: `{"username":"nobody","password":"secret-pass"}`, want: http.StatusUnauthorized},
		{name: "missing credentials", method: http.MethodPost, path: "/api/login", body: `{"username":"alice"}`, want: http.StatusBadRequest},
		{name: "me without token", method: http.MethodGet, path: "/api/me", want: http.StatusUnauthorized},
		{name: "me with garbage token", method: http.MethodGet, path: "/api/me", token: "garbage", want: http.StatusUnauthorized},
		{name: "me", method: http.MethodGet, path: "/api/me", token: user.AccessToken, want: http.StatusOK},
		{name: "ping", method: http.MethodGet, path: "/api/ping", want: http.StatusOK},
		{name: "health", method: http.MethodGet, path: "/health", want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.token, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d, body = %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestUsers_SelfOnly(t *testing.T) {
	s := newTestServer(t, &scriptedSource{})
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")

	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "own profile", path: fmt.Sprintf("/api/users/%d", alice.ID), want: http.StatusOK},
		{name: "own settings", path: fmt.Sprintf("/api/users/%d/settings", alice.ID), want: http.StatusOK},
		{name: "other profile", path: fmt.Sprintf("/api/users/%d", bob.ID), want: http.StatusForbidden},
		{name: "other questions", path: fmt.Sprintf("/api/users/%d/questions", bob.ID), want: http.StatusForbidden},
		{name: "bad id", path: "/api/users/abc/settings", want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, tt.path, alice.AccessToken, "")
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d, body = %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestUsers_UpdateSettings(t *testing.T) {
	s := newTestServer(t, &scriptedSource{})
	alice := s.register(t, "alice")
	path := fmt.Sprintf("/api/users/%d/settings", alice.ID)

	rec := s.do(t, http.MethodPut, path, alice.AccessToken, `{"dark_mode":true,"difficulty":"hard"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var settings api.Settings
	decode(t, rec, &settings)
	if !settings.DarkMode || settings.Difficulty != "hard" || !settings.SoundEnabled {
		t.Errorf("settings = %+v, want dark mode, hard and sound untouched", settings)
	}

	rec = s.do(t, http.MethodPut, path, alice.AccessToken, `{"difficulty":"extreme"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid difficulty status = %d, want 400", rec.Code)
	}
}

func TestAchievements_Award(t *testing.T) {
	s := newTestServer(t, &scriptedSource{})
	alice := s.register(t, "alice")
	path := fmt.Sprintf("/api/users/%d/achievements", alice.ID)

	if rec := s.do(t, http.MethodGet, "/api/achievements", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("catalog status = %d", rec.Code)
	}

	steps := []struct {
		body string
		want int
	}{
		{body: `{"achievement_id":"unknown"}`, want: http.StatusNotFound},
		{body: `{"achievement_id":"first_win"}`, want: http.StatusCreated},
		{body: `{"achievement_id":"first_win"}`, want: http.StatusConflict},
		{body: `{}`, want: http.StatusBadRequest},
	}
	for _, step := range steps {
		if rec := s.do(t, http.MethodPost, path, alice.AccessToken, step.body); rec.Code != step.want {
			t.Errorf("award %s status = %d, want %d", step.body, rec.Code, step.want)
		}
	}

	rec := s.do(t, http.MethodGet, path, alice.AccessToken, "")
	var owned []api.UserAchievement
	decode(t, rec, &owned)
	if len(owned) != 1 || owned[0].ID != "first_win" {
		t.Errorf("owned = %+v, want first_win only", owned)
	}
}

func TestLeaderboard(t *testing.T) {
	s := newTestServer(t, &scriptedSource{})
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")

	body := `{"score":42,"total_games":5,"wins":4,"win_streak":2}`
	if rec := s.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d/score", bob.ID), bob.AccessToken, body); rec.Code != http.StatusOK {
		t.Fatalf("update score status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec := s.do(t, http.MethodGet, "/api/leaderboard", "", "")
	var board api.Leaderboard
	decode(t, rec, &board)
	if board.TotalPlayers != 2 || len(board.Players) != 2 {
		t.Fatalf("board = %+v, want 2 players", board)
	}
	if board.Players[0].Username != "bob" || board.Players[0].Score != 42 {
		t.Errorf("leader = %+v, want bob with 42", board.Players[0])
	}

	// cached until the next direct score update
	if err := s.repo.AdjustScore(context.Background(), alice.ID, 100); err != nil {
		t.Fatalf("AdjustScore() error = %v", err)
	}
	rec = s.do(t, http.MethodGet, "/api/leaderboard", "", "")
	decode(t, rec, &board)
	if board.Players[0].Username != "bob" {
		t.Errorf("leader = %s, want cached bob", board.Players[0].Username)
	}

	body = `{"score":43,"total_games":6,"wins":5}`
	s.do(t, http.MethodPut, fmt.Sprintf("/api/users/%d/score", bob.ID), bob.AccessToken, body)
	rec = s.do(t, http.MethodGet, "/api/leaderboard", "", "")
	decode(t, rec, &board)
	if board.Players[0].Username != "alice" {
		t.Errorf("leader = %s, want alice after invalidation", board.Players[0].Username)
	}
}

type gameView struct {
	ID            string `json:"id"`
	Masked        string `json:"masked"`
	Word          string `json:"word"`
	Status        string `json:"status"`
	WrongGuesses  int    `json:"wrong_guesses"`
	PointBalance  int    `json:"point_balance"`
	LastEffect    string `json:"last_effect"`
	TimeRemaining int    `json:"time_remaining"`
}

func TestGames_Flow(t *testing.T) {
	source := &scriptedSource{
		words: []wordsource.Word{{Word: "flood", Hint: "Rising water"}},
		fact:  "Floods are the most common natural disaster in the United States of America.",
	}
	s := newTestServer(t, source)
	alice := s.register(t, "alice")

	rec := s.do(t, http.MethodPost, "/api/games", alice.AccessToken, `{"topic":"Flood Response","difficulty":"easy"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("new game status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var g gameView
	decode(t, rec, &g)
	if g.Masked != "_____" || g.Status != "active" || g.Word != "" || g.TimeRemaining != 90 {
		t.Fatalf("new game = %+v", g)
	}
	gamePath := "/api/games/" + g.ID

	steps := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{name: "reveal without points", method: http.MethodPost, path: gamePath + "/hints/reveal", want: http.StatusPaymentRequired},
		{name: "fact while active", method: http.MethodGet, path: gamePath + "/fact", want: http.StatusConflict},
		{name: "two letters", method: http.MethodPost, path: gamePath + "/guess", body: `{"letter":"ab"}`, want: http.StatusBadRequest},
		{name: "unknown game", method: http.MethodGet, path: "/api/games/missing", want: http.StatusNotFound},
		{name: "current", method: http.MethodGet, path: "/api/games/current", want: http.StatusOK},
	}
	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			rec := s.do(t, step.method, step.path, alice.AccessToken, step.body)
			if rec.Code != step.want {
				t.Errorf("status = %d, want %d, body = %s", rec.Code, step.want, rec.Body.String())
			}
		})
	}

	for _, letter := range []string{"x", "F", "l", "o", "d"} {
		rec = s.do(t, http.MethodPost, gamePath+"/guess", alice.AccessToken, fmt.Sprintf(`{"letter":%q}`, letter))
		if rec.Code != http.StatusOK {
			t.Fatalf("guess %s status = %d, body = %s", letter, rec.Code, rec.Body.String())
		}
	}
	decode(t, rec, &g)
	if g.Status != "won" || g.Word != "flood" || g.WrongGuesses != 1 {
		t.Errorf("final game = %+v", g)
	}

	rec = s.do(t, http.MethodPost, gamePath+"/guess", alice.AccessToken, `{"letter":"z"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("guess after end status = %d, want 200 with ignored effect", rec.Code)
	}

	bob := s.register(t, "bob")
	if rec = s.do(t, http.MethodGet, gamePath, bob.AccessToken, ""); rec.Code != http.StatusForbidden {
		t.Errorf("other user status = %d, want 403", rec.Code)
	}

	rec = s.do(t, http.MethodGet, gamePath+"/fact", alice.AccessToken, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("fact status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var fact api.Fact
	decode(t, rec, &fact)
	if fact.Fact != source.fact {
		t.Errorf("fact = %s, want %s", fact.Fact, source.fact)
	}

	if rec = s.do(t, http.MethodDelete, gamePath, alice.AccessToken, ""); rec.Code != http.StatusNoContent {
		t.Errorf("discard status = %d, want 204", rec.Code)
	}
	if rec = s.do(t, http.MethodGet, gamePath, alice.AccessToken, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get discarded status = %d, want 404", rec.Code)
	}
}

func TestGames_Errors(t *testing.T) {
	s := newTestServer(t, &scriptedSource{})
	alice := s.register(t, "alice")

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "unknown topic", body: `{"topic":"Volcano Karaoke"}`, want: http.StatusBadRequest},
		{name: "unknown difficulty", body: `{"difficulty":"extreme"}`, want: http.StatusBadRequest},
		{name: "source exhausted", body: `{"topic":"Fire Safety"}`, want: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/games", alice.AccessToken, tt.body)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d, body = %s", rec.Code, tt.want, rec.Body.String())
			}
		})
	}
}

func TestWordsAndQuestions(t *testing.T) {
	s := newTestServer(t, &scriptedSource{})
	alice := s.register(t, "alice")

	rec := s.do(t, http.MethodPost, "/api/words", alice.AccessToken, `{"word":"Shelter","hint":"A safe place"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("save word status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var word api.Word
	decode(t, rec, &word)
	if word.Word != "shelter" {
		t.Errorf("word = %s, want lowercased shelter", word.Word)
	}

	playBody := fmt.Sprintf(`{"word_id":%d,"guessed_correctly":true}`, word.ID)
	if rec = s.do(t, http.MethodPost, fmt.Sprintf("/api/users/%d/words", alice.ID), alice.AccessToken, playBody); rec.Code != http.StatusCreated {
		t.Fatalf("record play status = %d, body = %s", rec.Code, rec.Body.String())
	}
	rec = s.do(t, http.MethodGet, fmt.Sprintf("/api/users/%d/words/history?limit=5", alice.ID), alice.AccessToken, "")
	var history []api.WordPlay
	decode(t, rec, &history)
	if len(history) != 1 || !history[0].GuessedCorrectly || history[0].Word != "shelter" {
		t.Errorf("history = %+v", history)
	}

	if rec = s.do(t, http.MethodGet, "/api/words?limit=1000", alice.AccessToken, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("oversized limit status = %d, want 400", rec.Code)
	}

	questionsPath := fmt.Sprintf("/api/users/%d/questions", alice.ID)
	if rec = s.do(t, http.MethodPost, questionsPath, alice.AccessToken, `{"question":"Why?"}`); rec.Code != http.StatusBadRequest {
		t.Errorf("missing response status = %d, want 400", rec.Code)
	}
	if rec = s.do(t, http.MethodPost, questionsPath, alice.AccessToken, `{"question":"Why?","response":"Because."}`); rec.Code != http.StatusCreated {
		t.Fatalf("save question status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if rec = s.do(t, http.MethodDelete, questionsPath, alice.AccessToken, ""); rec.Code != http.StatusOK {
		t.Errorf("delete questions status = %d", rec.Code)
	}
	rec = s.do(t, http.MethodGet, questionsPath, alice.AccessToken, "")
	var questions []api.Question
	decode(t, rec, &questions)
	if len(questions) != 0 {
		t.Errorf("questions = %+v, want none", questions)
	}
}

func dialStream(t *testing.T, srv *httptest.Server, id, token string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/games/" + id + "/stream"
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)
	if resp != nil && resp.Body != nil {
		t.Cleanup(func() { _ = resp.Body.Close() })
	}
	return conn, resp, err
}

func readSnapshot(t *testing.T, conn *websocket.Conn) gameView {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var g gameView
	if err := conn.ReadJSON(&g); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	return g
}

func TestGames_Stream(t *testing.T) {
	source := &scriptedSource{words: []wordsource.Word{{Word: "flood", Hint: "Rising water"}}}
	s := newTestServer(t, source)
	srv := httptest.NewServer(s.handler)
	t.Cleanup(srv.Close)
	alice := s.register(t, "alice")
	bob := s.register(t, "bob")

	rec := s.do(t, http.MethodPost, "/api/games", alice.AccessToken, `{"difficulty":"easy"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("new game status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var g gameView
	decode(t, rec, &g)

	t.Run("rejected before upgrade", func(t *testing.T) {
		tests := []struct {
			name  string
			id    string
			token string
			want  int
		}{
			{name: "unknown game", id: "missing", token: alice.AccessToken, want: http.StatusNotFound},
			{name: "foreign game", id: g.ID, token: bob.AccessToken, want: http.StatusForbidden},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				conn, resp, err := dialStream(t, srv, tt.id, tt.token)
				if conn != nil {
					_ = conn.Close()
				}
				if !errors.Is(err, websocket.ErrBadHandshake) {
					t.Fatalf("Dial() error = %v, want bad handshake", err)
				}
				if resp.StatusCode != tt.want {
					t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
				}
			})
		}
	})

	conn, _, err := dialStream(t, srv, g.ID, alice.AccessToken)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	if initial := readSnapshot(t, conn); initial.ID != g.ID || initial.Masked != "_____" || initial.Status != "active" {
		t.Fatalf("initial snapshot = %+v", initial)
	}

	if rec = s.do(t, http.MethodPost, "/api/games/"+g.ID+"/guess", alice.AccessToken, `{"letter":"o"}`); rec.Code != http.StatusOK {
		t.Fatalf("guess status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if next := readSnapshot(t, conn); next.Masked != "__oo_" || next.LastEffect != "hit" {
		t.Errorf("snapshot after guess = %+v", next)
	}

	for _, letter := range []string{"f", "l", "d"} {
		rec = s.do(t, http.MethodPost, "/api/games/"+g.ID+"/guess", alice.AccessToken, fmt.Sprintf(`{"letter":%q}`, letter))
		if rec.Code != http.StatusOK {
			t.Fatalf("guess %s status = %d, body = %s", letter, rec.Code, rec.Body.String())
		}
	}

	var final gameView
	for {
		_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				t.Fatalf("ReadMessage() error = %v, want normal closure", err)
			}
			break
		}
		if err = json.Unmarshal(data, &final); err != nil {
			t.Fatalf("Unmarshal() error = %v", err)
		}
	}
	if final.Status != "won" || final.Word != "flood" {
		t.Errorf("last snapshot = %+v", final)
	}
}
