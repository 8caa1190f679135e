package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/atiaron/taskflow/internal/logger"
	"github.com/atiaron/taskflow/internal/models"
)

const (
	NoDataYet = "לא נאספו נתונים עדיין"

	procrastinationThreshold = 24 * time.Hour
	relationshipWindow       = time.Hour
	topProductiveHours       = 3
)

// PatternMemory is the caller-owned cache of learned patterns and user preferences.
type PatternMemory struct {
	mu          sync.RWMutex
	patterns    *models.PatternSet
	preferences *models.Preferences
}

func NewPatternMemory() *PatternMemory {
	return &PatternMemory{}
}

func (m *PatternMemory) Patterns() (models.PatternSet, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.patterns == nil {
		return models.PatternSet{}, false
	}
	return *m.patterns, true
}

func (m *PatternMemory) storePatterns(p models.PatternSet) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = &p
}

func (m *PatternMemory) Preferences() (models.Preferences, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.preferences == nil {
		return models.Preferences{}, false
	}
	return *m.preferences, true
}

func (m *PatternMemory) SetPreferences(p models.Preferences) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preferences = &p
}

// Reset forgets everything learned so far.
func (m *PatternMemory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = nil
	m.preferences = nil
}

type AnalyzerOption func(*BehaviorAnalyzer)

func WithAnalyzerClock(now func() time.Time) AnalyzerOption {
	return func(a *BehaviorAnalyzer) { a.now = now }
}

func WithAnalyzerLocation(loc *time.Location) AnalyzerOption {
	return func(a *BehaviorAnalyzer) {
		if loc != nil {
			a.loc = loc
		}
	}
}

func WithDefaultUserName(name string) AnalyzerOption {
	return func(a *BehaviorAnalyzer) {
		if name != "" {
			a.defaultUserName = name
		}
	}
}

// BehaviorAnalyzer mines task history for habits and turns them into prompt context.
type BehaviorAnalyzer struct {
	now             func() time.Time
	loc             *time.Location
	defaultUserName string
	logger          *logger.Log
}

func NewBehaviorAnalyzer(opts ...AnalyzerOption) *BehaviorAnalyzer {
	a := &BehaviorAnalyzer{
		now:             time.Now,
		loc:             time.Local,
		defaultUserName: "atiaron",
		logger:          logger.New().With(zap.String("component", "patterns")),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// LearnUserPatterns derives a PatternSet and stores it in mem.
func (a *BehaviorAnalyzer) LearnUserPatterns(mem *PatternMemory, tasks []models.Task, interactions []models.Interaction) models.PatternSet {
	patterns := models.PatternSet{
		ProductiveHours:         a.productiveHours(tasks),
		RealTaskDurations:       taskDurations(tasks),
		PhrasePatterns:          phrasePatterns(interactions),
		ProcrastinationPatterns: procrastinationPatterns(tasks, a.now()),
		TaskRelationships:       taskRelationships(tasks),
	}

	if mem != nil {
		mem.storePatterns(patterns)
	}
	a.logger.Debug(fmt.Sprintf("learned patterns from %d tasks and %d interactions", len(tasks), len(interactions)))
	return patterns
}

type rankedKey[K comparable] struct {
	key   K
	count int
}

// rankByCount orders keys by descending count; ties keep first-seen order.
func rankByCount[K comparable](keys []K) []rankedKey[K] {
	index := make(map[K]int)
	var ranked []rankedKey[K]
	for _, k := range keys {
		if i, ok := index[k]; ok {
			ranked[i].count++
			continue
		}
		index[k] = len(ranked)
		ranked = append(ranked, rankedKey[K]{key: k, count: 1})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].count > ranked[j].count })
	return ranked
}

func (a *BehaviorAnalyzer) productiveHours(tasks []models.Task) string {
	var hours []int
	for _, t := range tasks {
		if at, ok := t.CompletionTime(); ok {
			hours = append(hours, at.In(a.loc).Hour())
		}
	}

	ranked := rankByCount(hours)
	if len(ranked) == 0 {
		return NoDataYet
	}
	if len(ranked) > topProductiveHours {
		ranked = ranked[:topProductiveHours]
	}

	ranges := make([]string, 0, len(ranked))
	for _, r := range ranked {
		ranges = append(ranges, fmt.Sprintf("%d:00-%d:00", r.key, r.key+1))
	}
	return "הכי פרודקטיבי בשעות: " + strings.Join(ranges, ", ")
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func taskDurations(tasks []models.Task) map[string]int {
	samples := make(map[string][]int)
	for _, t := range tasks {
		completedAt, ok := t.CompletionTime()
		if !ok || t.CreatedAt.IsZero() {
			continue
		}
		minutes := roundHalfUp(completedAt.Sub(t.CreatedAt).Minutes())
		category := Categorize(t.Title)
		samples[category] = append(samples[category], minutes)
	}

	averages := make(map[string]int, len(samples))
	for category, times := range samples {
		sum := 0
		for _, m := range times {
			sum += m
		}
		averages[category] = roundHalfUp(float64(sum) / float64(len(times)))
	}
	return averages
}

func phrasePatterns(interactions []models.Interaction) map[string][]string {
	phrases := make(map[string][]string)
	for _, in := range interactions {
		if in.Type != models.InteractionTaskCreation {
			continue
		}
		category := Categorize(in.Content)
		phrases[category] = append(phrases[category], in.Content)
	}
	return phrases
}

// procrastinationPatterns ranks categories of open tasks overdue by more than a day.
func procrastinationPatterns(tasks []models.Task, now time.Time) []string {
	var categories []string
	for _, t := range tasks {
		if t.Completed || t.DueDate == nil {
			continue
		}
		if now.Sub(*t.DueDate) > procrastinationThreshold {
			categories = append(categories, Categorize(t.Title))
		}
	}

	ranked := rankByCount(categories)
	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.key)
	}
	return out
}

// taskRelationships links each completion to the next one when they are less
// than an hour apart. Repeated edges are kept.
func taskRelationships(tasks []models.Task) map[string][]string {
	type completion struct {
		at       time.Time
		category string
	}

	var done []completion
	for _, t := range tasks {
		if at, ok := t.CompletionTime(); ok {
			done = append(done, completion{at: at, category: Categorize(t.Title)})
		}
	}
	sort.SliceStable(done, func(i, j int) bool { return done[i].at.Before(done[j].at) })

	relationships := make(map[string][]string)
	for i := 0; i+1 < len(done); i++ {
		current, next := done[i], done[i+1]
		if next.at.Sub(current.at) < relationshipWindow {
			relationships[current.category] = append(relationships[current.category], next.category)
		}
	}
	return relationships
}
