package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	s, err := Open(dsn)
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func seedUser(t *testing.T, s *Store, name string) *User {
	t.Helper()
	u := &User{
		Username:     name,
		Email:        name + "@example.com",
		PasswordHash: "hash",
		Preferences:  DefaultPreferences(),
	}
	if err := s.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func seedSubject(t *testing.T, s *Store, name string) *Subject {
	t.Helper()
	sub := &Subject{Name: name, Description: name + " basics"}
	if err := s.Subjects().Create(context.Background(), sub); err != nil {
		t.Fatalf("create subject: %v", err)
	}
	return sub
}

func seedQuestion(t *testing.T, s *Store, subjectID int64, text string, difficulty int) *Question {
	t.Helper()
	q := &Question{
		SubjectID:     subjectID,
		Text:          text,
		Answer:        "B",
		Explanation:   "because",
		Difficulty:    difficulty,
		Options:       &Options{A: "1", B: "2", C: "3", D: "4"},
		CorrectOption: "B",
	}
	if err := s.Questions().Create(context.Background(), q); err != nil {
		t.Fatalf("create question: %v", err)
	}
	return q
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	dsn := "file:idempotent?mode=memory&cache=shared"
	first, err := Open(dsn)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	defer first.Close()

	second, err := Open(dsn)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	second.Close()
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.db

	tests := []struct {
		pragma string
		want   string
	}{
		// journal_mode stays "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		if err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestUserCreateAndLookup(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "ada")

	if u.ID == 0 {
		t.Fatal("expected ID to be set")
	}

	byEmail, err := s.Users().GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != u.ID || byEmail.Username != "ada" {
		t.Errorf("GetByEmail = %+v, want id %d", byEmail, u.ID)
	}
	if !byEmail.DisplayExplanations || byEmail.QuestionMode != ModeMultipleChoice || byEmail.InteractiveMode {
		t.Errorf("preferences = %+v, want defaults", byEmail.Preferences)
	}
	if !byEmail.LastLogin.IsZero() {
		t.Errorf("LastLogin = %v, want zero", byEmail.LastLogin)
	}

	if _, err := s.Users().GetByUsername(ctx, "ada"); err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}

	_, err = s.Users().Get(ctx, 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) err = %v, want ErrNotFound", err)
	}
}

func TestUserDuplicateIsConflict(t *testing.T) {
	s := openTestStore(t)
	seedUser(t, s, "ada")

	dup := &User{Username: "ada", Email: "other@example.com", PasswordHash: "x", Preferences: DefaultPreferences()}
	err := s.Users().Create(context.Background(), dup)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate username err = %v, want ErrConflict", err)
	}

	dup = &User{Username: "grace", Email: "ada@example.com", PasswordHash: "x", Preferences: DefaultPreferences()}
	err = s.Users().Create(context.Background(), dup)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate email err = %v, want ErrConflict", err)
	}
}

func TestUserPreferencesAndLastLogin(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "ada")

	prefs := Preferences{DisplayExplanations: false, QuestionMode: ModeFreeRecall, InteractiveMode: true}
	if err := s.Users().UpdatePreferences(ctx, u.ID, prefs); err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}
	at := time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	if err := s.Users().TouchLastLogin(ctx, u.ID, at); err != nil {
		t.Fatalf("TouchLastLogin: %v", err)
	}

	got, err := s.Users().Get(ctx, u.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Preferences != prefs {
		t.Errorf("Preferences = %+v, want %+v", got.Preferences, prefs)
	}
	if !got.LastLogin.Equal(at) {
		t.Errorf("LastLogin = %v, want %v", got.LastLogin, at)
	}

	bad := Preferences{QuestionMode: "essay"}
	if err := s.Users().UpdatePreferences(ctx, u.ID, bad); err == nil {
		t.Error("expected error for invalid question mode")
	}
	if err := s.Users().UpdatePreferences(ctx, 9999, prefs); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdatePreferences(missing) err = %v, want ErrNotFound", err)
	}
}

func TestSubjects(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	seedSubject(t, s, "Python")
	algebra := seedSubject(t, s, "Algebra")

	err := s.Subjects().Create(ctx, &Subject{Name: "Python"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate subject err = %v, want ErrConflict", err)
	}

	list, err := s.Subjects().List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Algebra" || list[1].Name != "Python" {
		t.Errorf("List = %+v, want [Algebra Python]", list)
	}

	got, err := s.Subjects().GetByName(ctx, "Algebra")
	if err != nil {
		t.Fatalf("GetByName: %v", err)
	}
	if got.ID != algebra.ID || got.Description != "Algebra basics" {
		t.Errorf("GetByName = %+v", got)
	}
}

func TestQuestionRoundTripWithAndWithoutOptions(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	sub := seedSubject(t, s, "Python")

	mc := seedQuestion(t, s, sub.ID, "What is 1+1?", 1)
	got, err := s.Questions().Get(ctx, mc.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Options == nil || got.Options.B != "2" || got.CorrectOption != "B" {
		t.Errorf("multiple choice question = %+v", got)
	}

	free := &Question{SubjectID: sub.ID, Text: "Name a mutable type.", Answer: "list", Difficulty: 2}
	if err := s.Questions().Create(ctx, free); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err = s.Questions().Get(ctx, free.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Options != nil || got.CorrectOption != "" {
		t.Errorf("free recall question has options: %+v", got)
	}

	half := &Question{SubjectID: sub.ID, Text: "x", Answer: "x", Difficulty: 1, CorrectOption: "A"}
	if err := s.Questions().Create(ctx, half); err == nil {
		t.Error("expected error when correct option is set without options")
	}
}

func TestQuestionRecentTexts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	py := seedSubject(t, s, "Python")
	other := seedSubject(t, s, "Go")

	for i := 1; i <= 4; i++ {
		seedQuestion(t, s, py.ID, fmt.Sprintf("q%d", i), 1)
	}
	seedQuestion(t, s, other.ID, "unrelated", 1)

	texts, err := s.Questions().RecentTexts(ctx, py.ID, 3)
	if err != nil {
		t.Fatalf("RecentTexts: %v", err)
	}
	want := []string{"q4", "q3", "q2"}
	if len(texts) != len(want) {
		t.Fatalf("RecentTexts = %v, want %v", texts, want)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("texts[%d] = %q, want %q", i, texts[i], want[i])
		}
	}
}

func TestAnswersAreListedOldestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "ada")
	sub := seedSubject(t, s, "Python")
	q := seedQuestion(t, s, sub.ID, "q", 1)

	for i, correct := range []bool{true, false, true} {
		a := &Answer{
			UserID: u.ID, QuestionID: q.ID, UserResponse: "B", IsCorrect: correct,
			ResponseTime: float64(i + 1), Mode: ModeMultipleChoice, DifficultyAtTime: i + 1,
		}
		if err := s.Answers().Create(ctx, a); err != nil {
			t.Fatalf("Create answer: %v", err)
		}
	}

	list, err := s.Answers().ListByUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("len = %d, want 3", len(list))
	}
	for i, a := range list {
		if a.DifficultyAtTime != i+1 {
			t.Errorf("list[%d].DifficultyAtTime = %d, want %d", i, a.DifficultyAtTime, i+1)
		}
	}
	if list[1].IsCorrect {
		t.Error("list[1] should be incorrect")
	}

	bad := &Answer{UserID: u.ID, QuestionID: 9999, UserResponse: "A", Mode: ModeMultipleChoice, DifficultyAtTime: 1}
	if err := s.Answers().Create(ctx, bad); err == nil {
		t.Error("expected foreign key error for unknown question")
	}
}

func TestUserStatsAndRecentActivity(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "ada")
	other := seedUser(t, s, "grace")
	py := seedSubject(t, s, "Python")
	gosub := seedSubject(t, s, "Go")
	q1 := seedQuestion(t, s, py.ID, "py question", 1)
	q2 := seedQuestion(t, s, gosub.ID, "go question", 2)

	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	answers := []Answer{
		{UserID: u.ID, QuestionID: q1.ID, IsCorrect: true, ResponseTime: 2, DifficultyAtTime: 1, CreatedAt: now.AddDate(0, 0, -40)},
		{UserID: u.ID, QuestionID: q1.ID, IsCorrect: false, ResponseTime: 4, DifficultyAtTime: 1, CreatedAt: now.AddDate(0, 0, -1)},
		{UserID: u.ID, QuestionID: q2.ID, IsCorrect: true, ResponseTime: 6, DifficultyAtTime: 2, CreatedAt: now},
		{UserID: other.ID, QuestionID: q2.ID, IsCorrect: true, ResponseTime: 1, DifficultyAtTime: 3, CreatedAt: now},
	}
	for i := range answers {
		answers[i].UserResponse = "B"
		answers[i].Mode = ModeMultipleChoice
		if err := s.Answers().Create(ctx, &answers[i]); err != nil {
			t.Fatalf("Create answer: %v", err)
		}
	}

	st, err := s.Stats().UserStats(ctx, u.ID, now.AddDate(0, 0, -29))
	if err != nil {
		t.Fatalf("UserStats: %v", err)
	}
	if st.Total != 3 || st.Correct != 2 {
		t.Errorf("totals = %d/%d, want 2/3", st.Correct, st.Total)
	}
	if st.AvgResponseTime != 4 {
		t.Errorf("AvgResponseTime = %v, want 4", st.AvgResponseTime)
	}
	if st.ByDifficulty[1] != 2 || st.ByDifficulty[2] != 1 || st.ByDifficulty[3] != 0 {
		t.Errorf("ByDifficulty = %v", st.ByDifficulty)
	}
	if len(st.BySubject) != 2 || st.BySubject[0].Name != "Go" || st.BySubject[1].Total != 2 {
		t.Errorf("BySubject = %+v", st.BySubject)
	}
	if len(st.Daily) != 2 || st.Daily[0].Date != "2025-03-09" || st.Daily[1].Date != "2025-03-10" {
		t.Errorf("Daily = %+v", st.Daily)
	}

	acts, err := s.Stats().RecentActivity(ctx, u.ID, 2)
	if err != nil {
		t.Fatalf("RecentActivity: %v", err)
	}
	if len(acts) != 2 {
		t.Fatalf("len(acts) = %d, want 2", len(acts))
	}
	if acts[0].QuestionText != "go question" || acts[0].Subject != "Go" || !acts[0].IsCorrect {
		t.Errorf("acts[0] = %+v", acts[0])
	}
	if !acts[0].AnsweredAt.Equal(now) {
		t.Errorf("acts[0].AnsweredAt = %v, want %v", acts[0].AnsweredAt, now)
	}
}

func TestUserStatsDailyBucketAndActivityOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "ada")
	py := seedSubject(t, s, "Python")
	q1 := seedQuestion(t, s, py.ID, "first", 1)
	q2 := seedQuestion(t, s, py.ID, "second", 1)

	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	answers := []Answer{
		{UserID: u.ID, QuestionID: q1.ID, IsCorrect: true, CreatedAt: day.Add(1 * time.Hour)},
		{UserID: u.ID, QuestionID: q1.ID, IsCorrect: false, CreatedAt: day.Add(23 * time.Hour)},
		{UserID: u.ID, QuestionID: q2.ID, IsCorrect: true, CreatedAt: day.Add(23 * time.Hour)},
	}
	for i := range answers {
		answers[i].UserResponse = "A"
		answers[i].Mode = ModeMultipleChoice
		answers[i].DifficultyAtTime = 1
		if err := s.Answers().Create(ctx, &answers[i]); err != nil {
			t.Fatalf("Create answer: %v", err)
		}
	}

	st, err := s.Stats().UserStats(ctx, u.ID, day)
	if err != nil {
		t.Fatalf("UserStats: %v", err)
	}
	if len(st.Daily) != 1 {
		t.Fatalf("Daily = %+v, want one bucket", st.Daily)
	}
	if st.Daily[0].Date != "2025-03-10" || st.Daily[0].Total != 3 || st.Daily[0].Correct != 2 {
		t.Errorf("Daily[0] = %+v", st.Daily[0])
	}

	acts, err := s.Stats().RecentActivity(ctx, u.ID, 0)
	if err != nil {
		t.Fatalf("RecentActivity: %v", err)
	}
	if len(acts) != 3 {
		t.Fatalf("len(acts) = %d, want 3", len(acts))
	}
	// Same timestamp: the later insert comes first.
	if acts[0].QuestionText != "second" || acts[1].QuestionText != "first" || acts[1].IsCorrect {
		t.Errorf("acts = %+v", acts)
	}
}

func TestUserStatsEmpty(t *testing.T) {
	s := openTestStore(t)
	u := seedUser(t, s, "ada")

	st, err := s.Stats().UserStats(context.Background(), u.ID, time.Now().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("UserStats: %v", err)
	}
	if st.Total != 0 || st.Correct != 0 || st.AvgResponseTime != 0 || len(st.Daily) != 0 {
		t.Errorf("empty stats = %+v", st)
	}
}

func TestLLMEvents(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	repo := s.EventRepo()

	events := []LLMRequestEventData{
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "question-gen", InputTokens: 100, OutputTokens: 50, LatencyMs: 200, Success: true},
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "answer-eval", InputTokens: 20, OutputTokens: 1, LatencyMs: 100, Success: true},
		{Provider: "gemini", Model: "gemini-2.0-flash", Purpose: "question-gen", InputTokens: 0, OutputTokens: 0, LatencyMs: 400, Success: false, ErrorMessage: "boom"},
	}
	for _, e := range events {
		if err := repo.AppendLLMRequest(ctx, e); err != nil {
			t.Fatalf("AppendLLMRequest: %v", err)
		}
	}

	all, err := repo.QueryLLMEvents(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("QueryLLMEvents: %v", err)
	}
	if len(all) != 3 || all[0].ErrorMessage != "boom" {
		t.Fatalf("QueryLLMEvents = %+v", all)
	}

	gen, err := repo.QueryLLMEvents(ctx, QueryOpts{Purpose: "question-gen", Limit: 1})
	if err != nil {
		t.Fatalf("QueryLLMEvents(purpose): %v", err)
	}
	if len(gen) != 1 || gen[0].Success {
		t.Errorf("filtered = %+v", gen)
	}

	one, err := repo.GetLLMEvent(ctx, all[2].ID)
	if err != nil {
		t.Fatalf("GetLLMEvent: %v", err)
	}
	if one.InputTokens != 100 || one.Timestamp.IsZero() {
		t.Errorf("GetLLMEvent = %+v", one)
	}
	if _, err := repo.GetLLMEvent(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetLLMEvent(missing) err = %v, want ErrNotFound", err)
	}

	usage, err := repo.LLMUsageByPurpose(ctx)
	if err != nil {
		t.Fatalf("LLMUsageByPurpose: %v", err)
	}
	if len(usage) != 2 || usage[0].Key != "question-gen" || usage[0].Calls != 2 || usage[0].AvgLatencyMs != 300 {
		t.Errorf("usage by purpose = %+v", usage)
	}

	byModel, err := repo.LLMUsageByModel(ctx)
	if err != nil {
		t.Fatalf("LLMUsageByModel: %v", err)
	}
	if len(byModel) != 1 || byModel[0].InputTokens != 120 || byModel[0].OutputTokens != 51 {
		t.Errorf("usage by model = %+v", byModel)
	}
}
