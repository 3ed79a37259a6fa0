// Package learning runs the question and answer flow for a session.
package learning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/adaptiq/internal/auth"
	"github.com/abhisek/adaptiq/internal/difficulty"
	"github.com/abhisek/adaptiq/internal/evaluate"
	"github.com/abhisek/adaptiq/internal/followup"
	"github.com/abhisek/adaptiq/internal/questions"
	"github.com/abhisek/adaptiq/internal/store"
)

var (
	// ErrInteractiveDisabled is returned by FollowUp when the user has not
	// enabled interactive mode.
	ErrInteractiveDisabled = errors.New("interactive mode is not enabled")

	// ErrSubjectNameRequired is returned by CreateSubject for a blank name.
	ErrSubjectNameRequired = errors.New("subject name is required")

	// ErrInvalidResponseTime is returned for a negative response time.
	ErrInvalidResponseTime = errors.New("response_time must not be negative")
)

// Deps are the collaborators of a Service. Source, Evaluator and
// FollowUp default to mock behavior when nil; a zero Policy means
// difficulty.DefaultPolicy.
type Deps struct {
	Subjects  store.SubjectRepo
	Questions store.QuestionRepo
	Answers   store.AnswerRepo

	Policy    difficulty.Policy
	Source    questions.Source
	Evaluator *evaluate.Evaluator
	FollowUp  followup.Responder

	// DedupLimit is how many recent question texts are passed to the
	// source. Zero disables deduplication.
	DedupLimit int

	Logger *slog.Logger
}

// Service implements the learning flow.
type Service struct {
	subjects     store.SubjectRepo
	questionRepo store.QuestionRepo
	answers      store.AnswerRepo

	policy     difficulty.Policy
	source     questions.Source
	evaluator  *evaluate.Evaluator
	followUp   followup.Responder
	dedupLimit int
	logger     *slog.Logger
}

// New creates a Service.
func New(d Deps) *Service {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Policy == (difficulty.Policy{}) {
		d.Policy = difficulty.DefaultPolicy()
	}
	if d.Source == nil {
		d.Source = questions.MockSource{}
	}
	if d.Evaluator == nil {
		d.Evaluator = evaluate.New(nil, d.Logger)
	}
	if d.FollowUp == nil {
		d.FollowUp = followup.Mock{}
	}
	return &Service{
		subjects:     d.Subjects,
		questionRepo: d.Questions,
		answers:      d.Answers,
		policy:       d.Policy,
		source:       d.Source,
		evaluator:    d.Evaluator,
		followUp:     d.FollowUp,
		dedupLimit:   d.DedupLimit,
		logger:       d.Logger,
	}
}

// ListSubjects returns all subjects by name.
func (s *Service) ListSubjects(ctx context.Context) ([]store.Subject, error) {
	return s.subjects.List(ctx)
}

// Subject returns a subject by id.
func (s *Service) Subject(ctx context.Context, id int64) (*store.Subject, error) {
	return s.subjects.Get(ctx, id)
}

// CreateSubject returns the subject with the given name, creating it if
// needed. created reports whether a new row was inserted.
func (s *Service) CreateSubject(ctx context.Context, name, description string) (sub *store.Subject, created bool, err error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, false, ErrSubjectNameRequired
	}

	existing, err := s.subjects.GetByName(ctx, name)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, err
	}

	sub = &store.Subject{Name: name, Description: strings.TrimSpace(description)}
	if err := s.subjects.Create(ctx, sub); err != nil {
		// Lost a race with a concurrent create of the same name.
		if errors.Is(err, store.ErrConflict) {
			existing, gerr := s.subjects.GetByName(ctx, name)
			if gerr == nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}
	s.logger.Info("subject created", "subject_id", sub.ID, "name", sub.Name)
	return sub, true, nil
}

// NextDifficulty estimates the difficulty of the user's next question
// from their full answer history.
func (s *Service) NextDifficulty(ctx context.Context, userID int64) (int, error) {
	history, err := s.answers.ListByUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("load answer history: %w", err)
	}
	outcomes := make([]bool, len(history))
	for i, a := range history {
		outcomes[i] = a.IsCorrect
	}
	return s.policy.Estimate(outcomes), nil
}

// QuestionView is a question as shown to the learner, without its answer.
type QuestionView struct {
	ID         int64          `json:"id"`
	Text       string         `json:"text"`
	Options    *store.Options `json:"options,omitempty"`
	Difficulty int            `json:"difficulty"`
}

// Project hides the answer of q. Options are only shown in multiple-choice
// mode.
func Project(q *store.Question, mode store.QuestionMode) *QuestionView {
	v := &QuestionView{ID: q.ID, Text: q.Text, Difficulty: q.Difficulty}
	if mode == store.ModeMultipleChoice && q.Options != nil {
		opts := *q.Options
		v.Options = &opts
	}
	return v
}

// GenerateQuestion produces, stores and projects a new question for the
// session's user. Source failures are returned as is.
func (s *Service) GenerateQuestion(ctx context.Context, sess *auth.Session, subjectID int64) (*QuestionView, error) {
	subject, err := s.subjects.Get(ctx, subjectID)
	if err != nil {
		return nil, err
	}

	level, err := s.NextDifficulty(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	input := questions.Input{
		Subject:    subject.Name,
		Difficulty: level,
		Mode:       questions.Mode(sess.Preferences.QuestionMode),
	}
	if s.dedupLimit > 0 {
		prior, err := s.questionRepo.RecentTexts(ctx, subject.ID, s.dedupLimit)
		if err != nil {
			return nil, fmt.Errorf("load recent questions: %w", err)
		}
		input.PriorQuestions = prior
	}

	gen, err := s.source.Generate(ctx, input)
	if err != nil {
		return nil, err
	}

	q := &store.Question{
		SubjectID:     subject.ID,
		Text:          gen.Text,
		Answer:        gen.Answer,
		Explanation:   gen.Explanation,
		Difficulty:    level,
		Options:       &store.Options{A: gen.Options.A, B: gen.Options.B, C: gen.Options.C, D: gen.Options.D},
		CorrectOption: gen.CorrectOption,
	}
	if err := s.questionRepo.Create(ctx, q); err != nil {
		return nil, err
	}

	s.logger.Debug("question generated",
		"question_id", q.ID, "subject", subject.Name, "difficulty", level, "user_id", sess.UserID)
	return Project(q, sess.Preferences.QuestionMode), nil
}

// Submission is a learner's answer to a question.
type Submission struct {
	QuestionID   int64   `json:"question_id"`
	UserResponse string  `json:"user_response"`
	ResponseTime float64 `json:"response_time"`
}

// Result is returned to the learner after a submission. Explanation is
// only set when the user displays explanations.
type Result struct {
	IsCorrect     bool    `json:"is_correct"`
	CorrectAnswer string  `json:"correct_answer"`
	Explanation   *string `json:"explanation,omitempty"`
}

// SubmitAnswer evaluates and records one answer.
func (s *Service) SubmitAnswer(ctx context.Context, sess *auth.Session, sub Submission) (*Result, error) {
	if sub.ResponseTime < 0 {
		return nil, ErrInvalidResponseTime
	}

	q, err := s.questionRepo.Get(ctx, sub.QuestionID)
	if err != nil {
		return nil, err
	}

	mode := sess.Preferences.QuestionMode
	verdict := s.evaluator.Evaluate(ctx, q, sub.UserResponse, mode)

	a := &store.Answer{
		UserID:           sess.UserID,
		QuestionID:       q.ID,
		UserResponse:     sub.UserResponse,
		IsCorrect:        verdict.Correct,
		ResponseTime:     sub.ResponseTime,
		Mode:             mode,
		DifficultyAtTime: q.Difficulty,
	}
	if err := s.answers.Create(ctx, a); err != nil {
		return nil, err
	}

	res := &Result{IsCorrect: verdict.Correct, CorrectAnswer: verdict.CorrectAnswer}
	if sess.Preferences.DisplayExplanations {
		explanation := q.Explanation
		res.Explanation = &explanation
	}
	return res, nil
}

// FollowUp answers a learner's follow-up query about a question.
func (s *Service) FollowUp(ctx context.Context, sess *auth.Session, questionID int64, query string) (string, error) {
	if !sess.Preferences.InteractiveMode {
		return "", ErrInteractiveDisabled
	}
	q, err := s.questionRepo.Get(ctx, questionID)
	if err != nil {
		return "", err
	}
	return s.followUp.Respond(ctx, q.Text, query)
}
