package scoring

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/campusfind/internal/domain"
)

const (
	DefaultTimeTolerance = 6 * time.Hour
	DefaultTypoTolerance = 1
)

// Weights are the base weights of the evidence dimensions. Weights of absent
// dimensions are redistributed proportionally among the present ones.
type Weights struct {
	Answers  float64
	Location float64
	Time     float64
}

var DefaultWeights = Weights{Answers: 0.6, Location: 0.25, Time: 0.15}

type Config struct {
	Weights Weights
	// TimeTolerance is the offset at which the time score reaches zero.
	TimeTolerance time.Duration
	// TypoTolerance is the maximum edit distance for two tokens to count as
	// shared. Zero means exact token matches only.
	TypoTolerance int
}

func DefaultConfig() Config {
	return Config{
		Weights:       DefaultWeights,
		TimeTolerance: DefaultTimeTolerance,
		TypoTolerance: DefaultTypoTolerance,
	}
}

// Scorer implements domain.Scorer.
type Scorer struct {
	cfg Config
}

var _ domain.Scorer = (*Scorer)(nil)

// NewScorer creates a scorer. Unset weights and a non-positive time tolerance
// fall back to the defaults.
func NewScorer(cfg Config) *Scorer {
	if cfg.Weights == (Weights{}) {
		cfg.Weights = DefaultWeights
	}
	if cfg.TimeTolerance <= 0 {
		cfg.TimeTolerance = DefaultTimeTolerance
	}
	if cfg.TypoTolerance < 0 {
		cfg.TypoTolerance = 0
	}
	return &Scorer{cfg: cfg}
}

// Score computes the match breakdown for a claim against an item and its
// question set. It never fails; missing optional evidence only changes weighting.
func (s *Scorer) Score(item domain.Item, questions []domain.VerificationQuestion, claim domain.Claim) domain.MatchResult {
	result := domain.MatchResult{
		AnswerScore: s.answerScore(questions, claim.Answers),
	}
	result.LocationScore, result.LocationUsed = s.locationScore(item.FoundLocation, claim.LostLocation)
	result.TimeScore, result.TimeUsed = s.timeScore(item.FoundAt, claim.LostTime)

	weighted := s.cfg.Weights.Answers * result.AnswerScore
	total := s.cfg.Weights.Answers
	if result.LocationUsed {
		weighted += s.cfg.Weights.Location * result.LocationScore
		total += s.cfg.Weights.Location
	}
	if result.TimeUsed {
		weighted += s.cfg.Weights.Time * result.TimeScore
		total += s.cfg.Weights.Time
	}

	if total > 0 {
		result.CompositeScore = clampScore(math.Round(weighted / total))
	}
	return result
}

// answerScore is the mean similarity over all questions in the set, so
// unanswered questions count as zero.
func (s *Scorer) answerScore(questions []domain.VerificationQuestion, answers []domain.Answer) float64 {
	if len(questions) == 0 {
		return 0
	}

	byQuestion := make(map[uuid.UUID]string, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a.Text
	}

	var sum float64
	for _, q := range questions {
		text, ok := byQuestion[q.ID]
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		sum += 100 * similarity(text, q.ExpectedAnswer, s.cfg.TypoTolerance)
	}
	return sum / float64(len(questions))
}

// locationScore is 100 when either normalized location contains the other,
// the token overlap otherwise. An absent lost location is excluded from weighting.
func (s *Scorer) locationScore(found, lost string) (float64, bool) {
	nl := normalize(lost)
	if nl == "" {
		return 0, false
	}
	nf := normalize(found)
	if nf == "" {
		return 0, true
	}
	if strings.Contains(nf, nl) || strings.Contains(nl, nf) {
		return 100, true
	}
	return 100 * similarity(found, lost, s.cfg.TypoTolerance), true
}

// timeScore decays linearly from 100 at zero offset to 0 at the tolerance.
// An absent lost time is excluded from weighting.
func (s *Scorer) timeScore(foundAt time.Time, lostTime *time.Time) (float64, bool) {
	if lostTime == nil || lostTime.IsZero() {
		return 0, false
	}
	offset := foundAt.Sub(*lostTime)
	if offset < 0 {
		offset = -offset
	}
	if offset >= s.cfg.TimeTolerance {
		return 0, true
	}
	return 100 * (1 - float64(offset)/float64(s.cfg.TimeTolerance)), true
}

func clampScore(v float64) int {
	switch {
	case math.IsNaN(v), v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return int(v)
	}
}
