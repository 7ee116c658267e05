package app

import (
	"context"
	"errors"

	"github.com/atenjiha/MAHSA-LEARN/internal/metrics"
	"github.com/atenjiha/MAHSA-LEARN/internal/model"
	"github.com/atenjiha/MAHSA-LEARN/internal/player"
	"github.com/atenjiha/MAHSA-LEARN/internal/progress"
	"github.com/atenjiha/MAHSA-LEARN/internal/sessions"
)

type PlayerView struct {
	SessionID   string       `json:"sessionId"`
	CourseID    string       `json:"courseId"`
	CourseTitle string       `json:"courseTitle"`
	SlideIndex  int          `json:"slideIndex"`
	SlideCount  int          `json:"slideCount"`
	Slide       *model.Slide `json:"slide,omitempty"`
	Closed      bool         `json:"closed"`
	EarnedXP    int          `json:"earnedXp"`
}

type AnswerResult struct {
	Player  PlayerView        `json:"player"`
	Attempt model.QuizAttempt `json:"attempt"`
}

type NextResult struct {
	Player     PlayerView           `json:"player"`
	Completed  bool                 `json:"completed"`
	Completion *progress.Completion `json:"-"`
}

func viewOf(sessionID string, p *player.Player) PlayerView {
	course := p.Course()
	view := PlayerView{
		SessionID:   sessionID,
		CourseID:    course.ID,
		CourseTitle: course.Title,
		SlideIndex:  p.SlideIndex(),
		SlideCount:  course.SlideCount(),
		Closed:      p.Closed(),
		EarnedXP:    p.EarnedXP(),
	}
	if slide, err := p.Slide(); err == nil {
		view.Slide = &slide
	}
	return view
}

// StartCourse opens a fresh playthrough at the first slide. Replays always
// restart from the beginning.
func (s *Service) StartCourse(ctx context.Context, userID, courseID string) (PlayerView, error) {
	if _, err := s.repo.GetUser(ctx, userID); err != nil {
		return PlayerView{}, storeError(err, CodeUserNotFound)
	}
	course, err := s.repo.GetCourse(ctx, courseID)
	if err != nil {
		return PlayerView{}, storeError(err, CodeCourseNotFound)
	}
	p, err := player.Open(course)
	if err != nil {
		return PlayerView{}, fail(CodeEmptyCourse, err)
	}
	session := sessions.Session{
		ID:        s.newID(),
		UserID:    userID,
		Course:    course,
		State:     p.State(),
		StartedAt: model.Millis(s.now()),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return PlayerView{}, fail(CodeStoreUnavailable, err)
	}
	metrics.PlayerSessions.Inc()
	return viewOf(session.ID, p), nil
}

func (s *Service) loadPlayer(ctx context.Context, userID, sessionID string) (sessions.Session, *player.Player, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, sessions.ErrNotFound) {
		return sessions.Session{}, nil, fail(CodeSessionNotFound, err)
	}
	if err != nil {
		return sessions.Session{}, nil, fail(CodeStoreUnavailable, err)
	}
	if session.UserID != userID {
		return sessions.Session{}, nil, fail(CodeSessionNotFound, nil)
	}
	p, err := player.Resume(session.Course, session.State)
	if err != nil {
		return sessions.Session{}, nil, fail(CodeServerError, err)
	}
	return session, p, nil
}

func (s *Service) PlayerState(ctx context.Context, userID, sessionID string) (PlayerView, error) {
	_, p, err := s.loadPlayer(ctx, userID, sessionID)
	if err != nil {
		return PlayerView{}, err
	}
	return viewOf(sessionID, p), nil
}

// AnswerQuiz grades option on the current quiz slide and appends the attempt
// to the user's log right away, whether or not the course is later finished.
func (s *Service) AnswerQuiz(ctx context.Context, userID, sessionID string, option int) (AnswerResult, error) {
	session, p, err := s.loadPlayer(ctx, userID, sessionID)
	if err != nil {
		return AnswerResult{}, err
	}
	attempt, err := p.AnswerQuiz(option, s.now())
	if err != nil {
		return AnswerResult{}, playerError(err)
	}
	// The first-answer mark is saved before the attempt so a retry after a
	// failed session write cannot score twice.
	session.State = p.State()
	if err := s.sessions.Save(ctx, session); err != nil {
		return AnswerResult{}, fail(CodeStoreUnavailable, err)
	}
	if _, err := s.RecordQuizAttempt(ctx, userID, attempt); err != nil {
		return AnswerResult{}, err
	}
	return AnswerResult{Player: viewOf(sessionID, p), Attempt: attempt}, nil
}

// Next advances the player. Leaving the last slide applies the completion
// with the server-side score; if that write fails the session stays on the
// last slide so the call can be retried.
func (s *Service) Next(ctx context.Context, userID, sessionID string) (NextResult, error) {
	session, p, err := s.loadPlayer(ctx, userID, sessionID)
	if err != nil {
		return NextResult{}, err
	}
	step, err := p.Next()
	if err != nil {
		return NextResult{}, playerError(err)
	}
	if !step.Completed {
		session.State = p.State()
		if err := s.sessions.Save(ctx, session); err != nil {
			return NextResult{}, fail(CodeStoreUnavailable, err)
		}
		return NextResult{Player: viewOf(sessionID, p)}, nil
	}

	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return NextResult{}, storeError(err, CodeUserNotFound)
	}
	completion, err := s.applyCompletion(ctx, user, session.Course, step.Completion.EarnedXP)
	if err != nil {
		return NextResult{}, err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return NextResult{}, fail(CodeStoreUnavailable, err)
	}
	return NextResult{Player: viewOf(sessionID, p), Completed: true, Completion: &completion}, nil
}

// ClosePlayer abandons the playthrough without crediting anything.
func (s *Service) ClosePlayer(ctx context.Context, userID, sessionID string) error {
	if _, _, err := s.loadPlayer(ctx, userID, sessionID); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fail(CodeStoreUnavailable, err)
	}
	return nil
}

func playerError(err error) error {
	switch {
	case errors.Is(err, player.ErrClosed):
		return fail(CodePlayerClosed, err)
	case errors.Is(err, player.ErrNotQuiz):
		return fail(CodeNotAQuizSlide, err)
	case model.IsValidationError(err):
		return fail(CodeValidationFailed, err)
	default:
		return fail(CodeServerError, err)
	}
}
