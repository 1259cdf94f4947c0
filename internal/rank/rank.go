// Package rank scores classified items and produces the final diversity-capped
// ordering for the digest.
package rank

import (
	"math"
	"sort"
	"time"

	"github.com/deusflow/ainews/internal/feed"
	"github.com/deusflow/ainews/internal/filter"
)

// Component weights of the relevance score. They sum to 1.0.
const (
	weightAuthority = 0.30
	weightSemantic  = 0.25
	weightEvent     = 0.15
	weightRecency   = 0.15
	weightNovelty   = 0.10
	weightDiversity = 0.05
)

const (
	// DefaultSourceCap bounds how many items one source may place in the output.
	DefaultSourceCap = 2
	// DefaultTopN is the target output size.
	DefaultTopN = 10

	recencyScaleHours = 7 * 24 // exp(-ageHours/168) decay
	semanticSaturation = 3.0   // entity count where the semantic signal maxes out
)

var eventWeights = map[feed.EventType]float64{
	feed.EventPolicySafety:     1.0,
	feed.EventProductLaunch:    0.9,
	feed.EventFundingMajor:     0.85,
	feed.EventResearchSOTA:     0.85,
	feed.EventSecurityIncident: 0.8,
	feed.EventLawsuit:          0.8,
	feed.EventChipInfra:        0.8,
	feed.EventFundingMinor:     0.6,
	feed.EventOpinion:          0.5,
	feed.EventUnknown:          0.3,
}

// Ranker scores and orders items. The now function is injectable for tests.
type Ranker struct {
	sources   *filter.Filter
	sourceCap int
	topN      int
	now       func() time.Time
}

func New(sources *filter.Filter, sourceCap, topN int) *Ranker {
	if sourceCap <= 0 {
		sourceCap = DefaultSourceCap
	}
	if topN <= 0 {
		topN = DefaultTopN
	}
	return &Ranker{sources: sources, sourceCap: sourceCap, topN: topN, now: time.Now}
}

// SetClock overrides the time source. Tests only.
func (r *Ranker) SetClock(now func() time.Time) { r.now = now }

// Score computes the weighted relevance score for one item.
//
//	0.30·authority/2 + 0.25·min(entities/3, 1) + 0.15·eventWeight +
//	0.15·exp(-ageHours/168) + 0.10·novelty + 0.05·diversity
//
// Novelty and diversity are fixed at 1.0: extension points reserved for
// dedup-against-history and cross-run diversity signals.
func (r *Ranker) Score(item feed.ClassifiedItem) float64 {
	authorityNorm := item.Authority / 2.0
	if authorityNorm > 1 {
		authorityNorm = 1
	}

	semantic := float64(len(item.Entities)) / semanticSaturation
	if semantic > 1 {
		semantic = 1
	}

	ageHours := r.now().Sub(item.PublishedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	recency := math.Exp(-ageHours / recencyScaleHours)

	const novelty, diversity = 1.0, 1.0

	return weightAuthority*authorityNorm +
		weightSemantic*semantic +
		weightEvent*eventWeights[item.EventType] +
		weightRecency*recency +
		weightNovelty*novelty +
		weightDiversity*diversity
}

// Rank scores everything, sorts descending (stable, ties keep input order)
// and applies the per-source cap while filling up to topN items.
func (r *Ranker) Rank(items []feed.ClassifiedItem) []feed.ScoredItem {
	scored := make([]feed.ScoredItem, 0, len(items))
	for _, item := range items {
		if item.Authority == 0 && r.sources != nil {
			item.Authority = r.sources.Authority(item.CandidateItem)
		}
		scored = append(scored, feed.ScoredItem{
			ClassifiedItem: item,
			RelevanceScore: r.Score(item),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].RelevanceScore > scored[j].RelevanceScore
	})

	perSource := map[string]int{}
	out := make([]feed.ScoredItem, 0, r.topN)
	for _, item := range scored {
		if len(out) >= r.topN {
			break
		}
		if perSource[item.Source] >= r.sourceCap {
			continue
		}
		perSource[item.Source]++
		out = append(out, item)
	}
	return out
}
