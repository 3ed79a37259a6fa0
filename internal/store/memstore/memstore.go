// Package memstore is an in-memory implementation of the store
// repositories, used in tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/abhisek/adaptiq/internal/store"
)

// Store holds all entities in slices guarded by one mutex.
type Store struct {
	mu        sync.Mutex
	users     []store.User
	subjects  []store.Subject
	questions []store.Question
	answers   []store.Answer
	events    []store.LLMRequestEvent

	// Now stamps created rows. Defaults to time.Now.
	Now func() time.Time
}

var _ store.Repos = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	return &Store{Now: time.Now}
}

func (s *Store) Users() store.UserRepo         { return users{s} }
func (s *Store) Subjects() store.SubjectRepo   { return subjects{s} }
func (s *Store) Questions() store.QuestionRepo { return questions{s} }
func (s *Store) Answers() store.AnswerRepo     { return answers{s} }
func (s *Store) Stats() store.StatsRepo        { return stats{s} }
func (s *Store) EventRepo() store.EventRepo    { return events{s} }

func (s *Store) stamp(t time.Time) time.Time {
	if !t.IsZero() {
		return t.UTC().Truncate(time.Second)
	}
	return s.Now().UTC().Truncate(time.Second)
}

func notFound(what string) error {
	return fmt.Errorf("get %s: %w", what, store.ErrNotFound)
}

type users struct{ s *Store }

func (r users) Create(_ context.Context, u *store.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return fmt.Errorf("create user: %w", store.ErrConflict)
		}
	}
	if !u.QuestionMode.Valid() {
		u.QuestionMode = store.ModeMultipleChoice
	}
	u.ID = int64(len(r.s.users) + 1)
	u.CreatedAt = r.s.stamp(u.CreatedAt)
	r.s.users = append(r.s.users, *u)
	return nil
}

func (r users) find(match func(*store.User) bool) (*store.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.users {
		if match(&r.s.users[i]) {
			u := r.s.users[i]
			return &u, nil
		}
	}
	return nil, notFound("user")
}

func (r users) Get(_ context.Context, id int64) (*store.User, error) {
	return r.find(func(u *store.User) bool { return u.ID == id })
}

func (r users) GetByEmail(_ context.Context, email string) (*store.User, error) {
	return r.find(func(u *store.User) bool { return u.Email == email })
}

func (r users) GetByUsername(_ context.Context, username string) (*store.User, error) {
	return r.find(func(u *store.User) bool { return u.Username == username })
}

func (r users) update(id int64, fn func(*store.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.users {
		if r.s.users[i].ID == id {
			fn(&r.s.users[i])
			return nil
		}
	}
	return fmt.Errorf("update user: %w", store.ErrNotFound)
}

func (r users) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	return r.update(id, func(u *store.User) { u.LastLogin = at.UTC().Truncate(time.Second) })
}

func (r users) UpdatePreferences(_ context.Context, id int64, prefs store.Preferences) error {
	if !prefs.QuestionMode.Valid() {
		return fmt.Errorf("update preferences: invalid question mode %q", prefs.QuestionMode)
	}
	return r.update(id, func(u *store.User) { u.Preferences = prefs })
}

type subjects struct{ s *Store }

func (r subjects) Create(_ context.Context, sub *store.Subject) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.subjects {
		if existing.Name == sub.Name {
			return fmt.Errorf("create subject: %w", store.ErrConflict)
		}
	}
	sub.ID = int64(len(r.s.subjects) + 1)
	sub.CreatedAt = r.s.stamp(sub.CreatedAt)
	r.s.subjects = append(r.s.subjects, *sub)
	return nil
}

func (r subjects) Get(_ context.Context, id int64) (*store.Subject, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if sub := r.s.subjectByID(id); sub != nil {
		out := *sub
		return &out, nil
	}
	return nil, notFound("subject")
}

func (r subjects) GetByName(_ context.Context, name string) (*store.Subject, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, sub := range r.s.subjects {
		if sub.Name == name {
			return &sub, nil
		}
	}
	return nil, notFound("subject")
}

func (r subjects) List(_ context.Context) ([]store.Subject, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := append([]store.Subject(nil), r.s.subjects...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) subjectByID(id int64) *store.Subject {
	for i := range s.subjects {
		if s.subjects[i].ID == id {
			return &s.subjects[i]
		}
	}
	return nil
}

func (s *Store) questionByID(id int64) *store.Question {
	for i := range s.questions {
		if s.questions[i].ID == id {
			return &s.questions[i]
		}
	}
	return nil
}

type questions struct{ s *Store }

func (r questions) Create(_ context.Context, q *store.Question) error {
	if (q.Options == nil) != (q.CorrectOption == "") {
		return fmt.Errorf("create question: options and correct option must be set together")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.subjectByID(q.SubjectID) == nil {
		return fmt.Errorf("create question: unknown subject %d", q.SubjectID)
	}
	q.ID = int64(len(r.s.questions) + 1)
	q.CreatedAt = r.s.stamp(q.CreatedAt)
	cp := *q
	if q.Options != nil {
		opts := *q.Options
		cp.Options = &opts
	}
	r.s.questions = append(r.s.questions, cp)
	return nil
}

func (r questions) Get(_ context.Context, id int64) (*store.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if q := r.s.questionByID(id); q != nil {
		out := *q
		return &out, nil
	}
	return nil, notFound("question")
}

func (r questions) RecentTexts(_ context.Context, subjectID int64, limit int) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []string
	for i := len(r.s.questions) - 1; i >= 0; i-- {
		if r.s.questions[i].SubjectID != subjectID {
			continue
		}
		out = append(out, r.s.questions[i].Text)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

type answers struct{ s *Store }

func (r answers) Create(_ context.Context, a *store.Answer) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.questionByID(a.QuestionID) == nil {
		return fmt.Errorf("create answer: unknown question %d", a.QuestionID)
	}
	a.ID = int64(len(r.s.answers) + 1)
	a.CreatedAt = r.s.stamp(a.CreatedAt)
	r.s.answers = append(r.s.answers, *a)
	return nil
}

func (r answers) ListByUser(_ context.Context, userID int64) ([]store.Answer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []store.Answer
	for _, a := range r.s.answers {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

type stats struct{ s *Store }

func (r stats) UserStats(_ context.Context, userID int64, since time.Time) (*store.UserStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := &store.UserStats{ByDifficulty: make(map[int]int)}
	bySubject := map[string]*store.SubjectTally{}
	byDay := map[string]*store.DailyTally{}
	var totalTime float64

	for _, a := range r.s.answers {
		if a.UserID != userID {
			continue
		}
		st.Total++
		if a.IsCorrect {
			st.Correct++
		}
		totalTime += a.ResponseTime
		st.ByDifficulty[a.DifficultyAtTime]++

		name := r.s.subjectByID(r.s.questionByID(a.QuestionID).SubjectID).Name
		t := bySubject[name]
		if t == nil {
			t = &store.SubjectTally{Name: name}
			bySubject[name] = t
		}
		t.Total++

		var d *store.DailyTally
		if !a.CreatedAt.Before(since.UTC().Truncate(time.Second)) {
			day := a.CreatedAt.UTC().Format("2006-01-02")
			d = byDay[day]
			if d == nil {
				d = &store.DailyTally{Date: day}
				byDay[day] = d
			}
			d.Total++
		}
		if a.IsCorrect {
			t.Correct++
			if d != nil {
				d.Correct++
			}
		}
	}
	if st.Total > 0 {
		st.AvgResponseTime = totalTime / float64(st.Total)
	}

	for _, t := range bySubject {
		st.BySubject = append(st.BySubject, *t)
	}
	sort.Slice(st.BySubject, func(i, j int) bool { return st.BySubject[i].Name < st.BySubject[j].Name })
	for _, d := range byDay {
		st.Daily = append(st.Daily, *d)
	}
	sort.Slice(st.Daily, func(i, j int) bool { return st.Daily[i].Date < st.Daily[j].Date })
	return st, nil
}

func (r stats) RecentActivity(_ context.Context, userID int64, limit int) ([]store.Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var mine []store.Answer
	for _, a := range r.s.answers {
		if a.UserID == userID {
			mine = append(mine, a)
		}
	}
	sort.SliceStable(mine, func(i, j int) bool {
		if !mine[i].CreatedAt.Equal(mine[j].CreatedAt) {
			return mine[i].CreatedAt.After(mine[j].CreatedAt)
		}
		return mine[i].ID > mine[j].ID
	})
	if len(mine) > limit {
		mine = mine[:limit]
	}

	out := make([]store.Activity, 0, len(mine))
	for _, a := range mine {
		q := r.s.questionByID(a.QuestionID)
		out = append(out, store.Activity{
			QuestionText: q.Text,
			Subject:      r.s.subjectByID(q.SubjectID).Name,
			IsCorrect:    a.IsCorrect,
			AnsweredAt:   a.CreatedAt,
			Difficulty:   a.DifficultyAtTime,
			ResponseTime: a.ResponseTime,
		})
	}
	return out, nil
}

type events struct{ s *Store }

func (r events) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.events = append(r.s.events, store.LLMRequestEvent{
		ID:                  int64(len(r.s.events) + 1),
		Timestamp:           r.s.stamp(time.Time{}),
		LLMRequestEventData: data,
	})
	return nil
}

func (r events) QueryLLMEvents(_ context.Context, opts store.QueryOpts) ([]store.LLMRequestEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []store.LLMRequestEvent
	for i := len(r.s.events) - 1; i >= 0; i-- {
		e := r.s.events[i]
		if opts.Purpose != "" && e.Purpose != opts.Purpose {
			continue
		}
		if !opts.From.IsZero() && e.Timestamp.Before(opts.From) {
			continue
		}
		if !opts.To.IsZero() && e.Timestamp.After(opts.To) {
			continue
		}
		out = append(out, e)
		if opts.Limit > 0 && len(out) == opts.Limit {
			break
		}
	}
	return out, nil
}

func (r events) GetLLMEvent(_ context.Context, id int64) (*store.LLMRequestEvent, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.events {
		if e.ID == id {
			return &e, nil
		}
	}
	return nil, notFound("LLM event")
}

func (r events) LLMUsageByPurpose(ctx context.Context) ([]store.LLMUsage, error) {
	return r.usage(func(e store.LLMRequestEvent) string { return e.Purpose }), nil
}

func (r events) LLMUsageByModel(ctx context.Context) ([]store.LLMUsage, error) {
	return r.usage(func(e store.LLMRequestEvent) string { return e.Model }), nil
}

func (r events) usage(key func(store.LLMRequestEvent) string) []store.LLMUsage {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	agg := map[string]*store.LLMUsage{}
	latency := map[string]int64{}
	for _, e := range r.s.events {
		k := key(e)
		u := agg[k]
		if u == nil {
			u = &store.LLMUsage{Key: k}
			agg[k] = u
		}
		u.Calls++
		u.InputTokens += e.InputTokens
		u.OutputTokens += e.OutputTokens
		latency[k] += e.LatencyMs
	}
	out := make([]store.LLMUsage, 0, len(agg))
	for k, u := range agg {
		u.AvgLatencyMs = latency[k] / int64(u.Calls)
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Calls != out[j].Calls {
			return out[i].Calls > out[j].Calls
		}
		return strings.Compare(out[i].Key, out[j].Key) < 0
	})
	return out
}
