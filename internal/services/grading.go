package services

import (
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/SAP-F-2025/quizer-service/internal/models"
)

// randomSource is satisfied by *rand.Rand so tests can inject a seeded generator
type randomSource interface {
	Perm(n int) []int
	Shuffle(n int, swap func(i, j int))
}

// globalRand uses the goroutine safe top level math/rand/v2 functions
type globalRand struct{}

func (globalRand) Perm(n int) []int                  { return rand.Perm(n) }
func (globalRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }

// sampleQuestions picks k distinct questions uniformly. The caller guarantees k <= len(pool).
func sampleQuestions(rng randomSource, pool []*models.Question, k int) []*models.Question {
	perm := rng.Perm(len(pool))
	out := make([]*models.Question, 0, k)
	for _, idx := range perm[:k] {
		out = append(out, pool[idx])
	}
	return out
}

// shuffleOptions returns a shuffled copy; the stored question is never mutated
func shuffleOptions(rng randomSource, options []models.Option) []models.Option {
	out := make([]models.Option, len(options))
	copy(out, options)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// buildAnswerKey shuffles the options of each sampled question and returns the
// student view alongside the answer key, both keyed by 1-based position.
func buildAnswerKey(rng randomSource, sampled []*models.Question) ([]models.PresentedQuestion, map[string]models.AnswerKeyEntry) {
	presented := make([]models.PresentedQuestion, 0, len(sampled))
	key := make(map[string]models.AnswerKeyEntry, len(sampled))

	for i, q := range sampled {
		position := strconv.Itoa(i + 1)
		options := shuffleOptions(rng, q.Options)

		texts := make([]string, 0, len(options))
		right := make([]string, 0, q.RequiredAnswers)
		for _, o := range options {
			texts = append(texts, o.Text)
			if o.IsCorrect {
				right = append(right, o.Text)
			}
		}

		presented = append(presented, models.PresentedQuestion{
			Position:        position,
			QuestionID:      q.ID,
			Formulation:     q.Formulation,
			RequiredAnswers: q.RequiredAnswers,
			Multiselect:     q.Multiselect,
			WithImages:      q.WithImages,
			Options:         texts,
		})
		key[position] = models.AnswerKeyEntry{
			QuestionID:   q.ID,
			Formulation:  q.Formulation,
			RightAnswers: right,
		}
	}

	return presented, key
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func sameSet(selected, expected []string) bool {
	if len(selected) != len(expected) {
		return false
	}
	want := make(map[string]struct{}, len(expected))
	for _, e := range expected {
		want[e] = struct{}{}
	}
	for _, s := range selected {
		if _, ok := want[s]; !ok {
			return false
		}
	}
	return true
}

// gradeAnswers scores each position of the key. A position counts when the set of
// submitted options equals the expected set; order and duplicates are ignored.
// Submitted positions that are not in the key are ignored.
func gradeAnswers(attempt *models.RunningAttempt, submitted map[string][]string) ([]models.GradedAnswer, int) {
	graded := make([]models.GradedAnswer, 0, attempt.TasksNum())
	right := 0

	for _, position := range attempt.Positions() {
		entry := attempt.AnswerKey[position]
		selected := dedupe(submitted[position])
		expected := dedupe(entry.RightAnswers)

		correct := sameSet(selected, expected)
		if correct {
			right++
		}

		graded = append(graded, models.GradedAnswer{
			Position:    position,
			QuestionID:  entry.QuestionID,
			Formulation: entry.Formulation,
			Selected:    selected,
			Expected:    entry.RightAnswers,
			Correct:     correct,
		})
	}

	return graded, right
}

// gradedResult grades a submission against the attempt's answer key. Elapsed time
// comes from the stored start; the client's figure is only recorded.
func gradedResult(attempt *models.RunningAttempt, submitted map[string][]string, reportedElapsed *int, now time.Time) *models.RunResult {
	answers, right := gradeAnswers(attempt, submitted)
	elapsed := now.Sub(attempt.StartedAt)
	if elapsed < 0 {
		elapsed = 0
	}

	return &models.RunResult{
		UserID:                 attempt.UserID,
		Username:               attempt.Username,
		RightAnswers:           right,
		TasksNum:               attempt.TasksNum(),
		Answers:                answers,
		StartedAt:              attempt.StartedAt,
		SubmittedAt:            now,
		ElapsedSeconds:         int64(elapsed / time.Second),
		Duration:               attempt.Duration,
		ReportedElapsedMinutes: reportedElapsed,
		Late:                   now.After(attempt.Deadline()),
	}
}

// forcedResult is the zero credit result for an attempt that was abandoned.
// Its elapsed time is the full allotted duration.
func forcedResult(attempt *models.RunningAttempt, now time.Time) *models.RunResult {
	answers, _ := gradeAnswers(attempt, nil)
	for i := range answers {
		answers[i].Correct = false
	}

	return &models.RunResult{
		UserID:         attempt.UserID,
		Username:       attempt.Username,
		RightAnswers:   0,
		TasksNum:       attempt.TasksNum(),
		Answers:        answers,
		StartedAt:      attempt.StartedAt,
		SubmittedAt:    now,
		ElapsedSeconds: int64(attempt.Duration) * 60,
		Duration:       attempt.Duration,
		Forced:         true,
	}
}
