package player

import (
	"errors"
	"fmt"
	"time"

	"github.com/atenjiha/MAHSA-LEARN/internal/model"
	"github.com/atenjiha/MAHSA-LEARN/internal/progress"
)

var (
	ErrClosed      = errors.New("player closed")
	ErrEmptyCourse = errors.New("course has no slides")
	ErrNotQuiz     = errors.New("current slide is not a quiz")
)

// State is the resumable part of a playthrough. Slide position lives only
// here and is never written back to the course or user documents. Answers
// holds the first answer per quiz slide, keyed by slide index.
type State struct {
	SlideIndex int          `json:"slideIndex"`
	Closed     bool         `json:"closed"`
	Answers    map[int]bool `json:"answers"`
}

type Completion struct {
	CourseID string
	EarnedXP int
}

type Step struct {
	Completed  bool
	Completion Completion
}

type Player struct {
	course model.Course
	state  State
}

func Open(course model.Course) (*Player, error) {
	if course.SlideCount() == 0 {
		return nil, ErrEmptyCourse
	}
	return &Player{
		course: course,
		state:  State{Answers: map[int]bool{}},
	}, nil
}

// Resume rebuilds a player from a saved state.
func Resume(course model.Course, state State) (*Player, error) {
	if course.SlideCount() == 0 {
		return nil, ErrEmptyCourse
	}
	if !state.Closed && (state.SlideIndex < 0 || state.SlideIndex >= course.SlideCount()) {
		return nil, fmt.Errorf("slide index %d out of range", state.SlideIndex)
	}
	if state.Answers == nil {
		state.Answers = map[int]bool{}
	}
	return &Player{course: course, state: state}, nil
}

func (p *Player) Course() model.Course {
	return p.course
}

func (p *Player) State() State {
	answers := make(map[int]bool, len(p.state.Answers))
	for k, v := range p.state.Answers {
		answers[k] = v
	}
	out := p.state
	out.Answers = answers
	return out
}

func (p *Player) Closed() bool {
	return p.state.Closed
}

func (p *Player) SlideIndex() int {
	return p.state.SlideIndex
}

func (p *Player) Slide() (model.Slide, error) {
	if p.state.Closed {
		return model.Slide{}, ErrClosed
	}
	return p.course.Slides[p.state.SlideIndex], nil
}

func (p *Player) IsLastSlide() bool {
	return p.state.SlideIndex == p.course.SlideCount()-1
}

// EarnedXP scores the playthrough: XPPerSlide for every quiz slide whose
// first answer was correct.
func (p *Player) EarnedXP() int {
	correct := 0
	for _, ok := range p.state.Answers {
		if ok {
			correct++
		}
	}
	return correct * progress.XPPerSlide
}

// Next advances one slide. On the last slide it reports a completion and
// closes the player instead.
func (p *Player) Next() (Step, error) {
	if p.state.Closed {
		return Step{}, ErrClosed
	}
	if !p.IsLastSlide() {
		p.state.SlideIndex++
		return Step{}, nil
	}
	completion := Completion{CourseID: p.course.ID, EarnedXP: p.EarnedXP()}
	p.state.Closed = true
	return Step{Completed: true, Completion: completion}, nil
}

// AnswerQuiz grades option against the current quiz slide. Every call
// yields an attempt; only the first answer per slide counts toward EarnedXP.
func (p *Player) AnswerQuiz(option int, now time.Time) (model.QuizAttempt, error) {
	slide, err := p.Slide()
	if err != nil {
		return model.QuizAttempt{}, err
	}
	if slide.Type != model.SlideQuiz || slide.QuizData == nil {
		return model.QuizAttempt{}, ErrNotQuiz
	}
	quiz := slide.QuizData
	if option < 0 || option >= len(quiz.Options) {
		return model.QuizAttempt{}, &model.ValidationError{Field: "selectedOption", Message: "must index into options"}
	}
	correct := option == quiz.CorrectIndex
	if _, seen := p.state.Answers[p.state.SlideIndex]; !seen {
		p.state.Answers[p.state.SlideIndex] = correct
	}
	return model.QuizAttempt{
		CourseID:       p.course.ID,
		SlideID:        slide.ID,
		Question:       quiz.Question,
		SelectedOption: quiz.Options[option],
		IsCorrect:      correct,
		Timestamp:      model.Millis(now),
	}, nil
}

// Close discards the playthrough. Attempts already returned stay durable.
func (p *Player) Close() {
	p.state.Closed = true
}
