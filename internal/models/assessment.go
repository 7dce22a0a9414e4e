package models

import (
	"fmt"
	"time"
)

// QuestionType is the input kind of an assessment question.
type QuestionType string

// Question types.
const (
	QuestionShort  QuestionType = "short"
	QuestionLong   QuestionType = "long"
	QuestionSingle QuestionType = "single"
	QuestionMulti  QuestionType = "multi"
	QuestionNumber QuestionType = "number"
	QuestionFile   QuestionType = "file"
)

// IsChoice reports whether the type selects from a fixed option list.
func (t QuestionType) IsChoice() bool {
	return t == QuestionSingle || t == QuestionMulti
}

// minChoiceOptions is the floor enforced on single/multi option lists.
const minChoiceOptions = 4

// Condition gates a question's visibility on another question's answer.
type Condition struct {
	QuestionID string `json:"questionId"`
	Value      string `json:"value"`
}

// Question is one entry in an assessment section. Choice questions carry
// at least four options after normalization; non-choice questions carry
// none.
type Question struct {
	ID        string       `json:"id"`
	Label     string       `json:"label"`
	Type      QuestionType `json:"type"`
	Required  bool         `json:"required"`
	Options   []string     `json:"options,omitempty"`
	Condition *Condition   `json:"condition,omitempty"`
}

// Section groups an ordered run of questions.
type Section struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Questions []Question `json:"questions"`
}

// Assessment is the form definition attached to a job.
type Assessment struct {
	JobID    string    `json:"jobId"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
}

// Response is one submitted fill-out of an assessment, keyed locally by
// jobId and submission time.
type Response struct {
	JobID    string            `json:"jobId"`
	At       time.Time         `json:"at"`
	Answers  map[string]string `json:"answers"`
	StoredAt time.Time         `json:"storedAt,omitempty"`
}

// Normalize enforces the option invariants in place: single/multi
// questions are padded to at least four options (existing options kept
// in order), and any options on non-choice questions are dropped.
func (a *Assessment) Normalize() {
	for si := range a.Sections {
		qs := a.Sections[si].Questions
		for qi := range qs {
			q := &qs[qi]
			if !q.Type.IsChoice() {
				q.Options = nil
				continue
			}
			for len(q.Options) < minChoiceOptions {
				q.Options = append(q.Options, fmt.Sprintf("Option %d", len(q.Options)+1))
			}
		}
	}
}

// VisibleQuestions returns the questions of a section that are currently
// visible given the answers so far: a question with a condition shows
// only when the referenced question's answer equals the condition value
// (string comparison).
func VisibleQuestions(sec Section, answers map[string]string) []Question {
	out := make([]Question, 0, len(sec.Questions))
	for _, q := range sec.Questions {
		if q.Condition != nil && answers[q.Condition.QuestionID] != q.Condition.Value {
			continue
		}
		out = append(out, q)
	}
	return out
}
