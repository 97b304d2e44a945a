// Package analytics builds the insights screen: mood distribution,
// spending by mood, medication adherence and wellbeing averages over a
// rolling window, plus personalized tips.
//
// Results are memoized per day in a datacache.Cache for a few minutes.
// The "correlation" figures are cosmetic estimates drawn from a random
// source; they are flagged as such and are not statistics.
package analytics

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/HendryAvila/moodmate/internal/datacache"
	"github.com/HendryAvila/moodmate/internal/finance"
	"github.com/HendryAvila/moodmate/internal/health"
	"github.com/HendryAvila/moodmate/internal/mood"
	"github.com/HendryAvila/moodmate/internal/profile"
	"github.com/HendryAvila/moodmate/internal/rules"
	"go.uber.org/zap"
)

const (
	// CacheTTL is how long one day's insights stay memoized.
	CacheTTL = 5 * time.Minute

	// DefaultWindow is the look-back period.
	DefaultWindow = 30 * 24 * time.Hour

	keyPrefix = "analytics:"
)

// Random is the source of the cosmetic estimates. Insights may compute
// concurrently, so implementations must be safe for concurrent use.
type Random interface {
	Float64() float64
}

// globalRandom draws from the math/rand/v2 top-level source, which is
// safe for concurrent use.
type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }

// Correlation is a cosmetic estimate shown on the insights screen.
type Correlation struct {
	Label      string  `json:"label"`
	Value      float64 `json:"value"`      // 0..1
	Confidence float64 `json:"confidence"` // percent
	Estimated  bool    `json:"estimated"`
}

// WellbeingSummary averages the wellbeing check-ins in the window.
type WellbeingSummary struct {
	Count      int     `json:"count"`
	SleepHours float64 `json:"sleepHours"`
	Energy     float64 `json:"energy"`
	Anxiety    float64 `json:"anxiety"`
	Focus      float64 `json:"focus"`
}

// Insights is everything the analytics screen shows.
type Insights struct {
	Day            string                `json:"day"`
	From           time.Time             `json:"from"`
	To             time.Time             `json:"to"`
	CheckIns       int                   `json:"checkIns"`
	MoodCounts     map[mood.Mood]int     `json:"moodCounts"`
	DominantMood   mood.Mood             `json:"dominantMood,omitempty"`
	AverageEnergy  float64               `json:"averageEnergy"`
	TotalSpent     float64               `json:"totalSpent"`
	SpendByMood    map[mood.Mood]float64 `json:"spendByMood"`
	ImpulsiveRatio float64               `json:"impulsiveRatio"` // 0..1
	Adherence      []health.Adherence    `json:"adherence"`
	Wellbeing      WellbeingSummary      `json:"wellbeing"`
	Tips           []string              `json:"tips"`
	Correlations   []Correlation         `json:"correlations"`
}

// Deps are the stores insights are computed from.
type Deps struct {
	Moods   *mood.Store
	Finance *finance.Store
	Health  *health.Store
	Profile *profile.Store
	Cache   *datacache.Cache
}

// Option configures a Service.
type Option func(*Service)

// WithRandom replaces the estimate source.
func WithRandom(r Random) Option { return func(s *Service) { s.rand = r } }

// WithWindow replaces the look-back period.
func WithWindow(d time.Duration) Option { return func(s *Service) { s.window = d } }

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.log = l } }

// Service computes and memoizes insights.
type Service struct {
	deps   Deps
	rand   Random
	window time.Duration
	log    *zap.Logger
}

// New creates a Service.
func New(deps Deps, opts ...Option) *Service {
	s := &Service{
		deps:   deps,
		rand:   globalRandom{},
		window: DefaultWindow,
		log:    zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// CacheKey is the datacache key for the insights of now's day.
func CacheKey(now time.Time) string {
	return keyPrefix + now.Format("2006-01-02")
}

// Insights returns the insights for the day containing now, computing
// them on a cache miss.
func (s *Service) Insights(ctx context.Context, now time.Time) (Insights, error) {
	key := CacheKey(now)
	in, err := datacache.GetOrSet(ctx, s.deps.Cache, key, func(ctx context.Context) (Insights, error) {
		s.log.Debug("analytics: computing", zap.String("key", key))
		return s.compute(ctx, now)
	}, CacheTTL)
	if err != nil {
		return Insights{}, fmt.Errorf("analytics: insights: %w", err)
	}
	return in, nil
}

// Invalidate drops the memoized insights for now's day.
func (s *Service) Invalidate(now time.Time) {
	s.deps.Cache.Delete(CacheKey(now))
}

func (s *Service) compute(ctx context.Context, now time.Time) (Insights, error) {
	if err := ctx.Err(); err != nil {
		return Insights{}, err
	}
	from := now.Add(-s.window)
	in := Insights{
		Day:         now.Format("2006-01-02"),
		From:        from,
		To:          now,
		MoodCounts:  map[mood.Mood]int{},
		SpendByMood: map[mood.Mood]float64{},
		Adherence:   []health.Adherence{},
	}

	s.moodStats(&in, from)
	s.spendStats(&in, from, now)
	s.healthStats(&in, from, now)

	p := s.deps.Profile.Get()
	in.Tips = rules.AnalyticsTips(p.Chronotype, p.Challenges)
	in.Correlations = s.estimates()
	return in, nil
}

func (s *Service) moodStats(in *Insights, from time.Time) {
	entries := s.deps.Moods.Since(from)
	in.CheckIns = len(entries)
	var energySum, energyN int
	for _, e := range entries {
		in.MoodCounts[e.Mood]++
		if e.Energy > 0 {
			energySum += e.Energy
			energyN++
		}
	}
	if energyN > 0 {
		in.AverageEnergy = float64(energySum) / float64(energyN)
	}
	best := 0
	for _, m := range mood.All {
		if n := in.MoodCounts[m]; n > best {
			best = n
			in.DominantMood = m
		}
	}
}

func (s *Service) spendStats(in *Insights, from, now time.Time) {
	var impulsive int
	var n int
	for _, e := range s.deps.Finance.List(time.Time{}) {
		if e.Date.Before(from) || e.Date.After(now) {
			continue
		}
		n++
		in.TotalSpent += e.Amount
		m := e.Mood
		if m == "" {
			m = mood.Normal
		}
		in.SpendByMood[m] += e.Amount
		if e.Impulsive {
			impulsive++
		}
	}
	if n > 0 {
		in.ImpulsiveRatio = float64(impulsive) / float64(n)
	}
}

func (s *Service) healthStats(in *Insights, from, now time.Time) {
	for _, m := range s.deps.Health.Medications() {
		if !m.Active {
			continue
		}
		in.Adherence = append(in.Adherence, s.deps.Health.Adherence(m.ID, from, now))
	}
	sort.SliceStable(in.Adherence, func(i, j int) bool { return in.Adherence[i].Rate < in.Adherence[j].Rate })

	ws := s.deps.Health.Wellbeing(from)
	w := WellbeingSummary{Count: len(ws)}
	for _, e := range ws {
		w.SleepHours += e.SleepHours
		w.Energy += float64(e.Energy)
		w.Anxiety += float64(e.Anxiety)
		w.Focus += float64(e.Focus)
	}
	if w.Count > 0 {
		n := float64(w.Count)
		w.SleepHours /= n
		w.Energy /= n
		w.Anxiety /= n
		w.Focus /= n
	}
	in.Wellbeing = w
}

var estimateLabels = []string{
	"Humeur et dépenses",
	"Sommeil et énergie",
	"Médicaments et concentration",
}

func (s *Service) estimates() []Correlation {
	out := make([]Correlation, 0, len(estimateLabels))
	for _, l := range estimateLabels {
		out = append(out, Correlation{
			Label:      l,
			Value:      0.3 + s.rand.Float64()*0.5,
			Confidence: 60 + s.rand.Float64()*30,
			Estimated:  true,
		})
	}
	return out
}
