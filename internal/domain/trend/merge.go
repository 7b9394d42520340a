// internal/domain/trend/merge.go

package trend

import (
	"fmt"
	"math"
	"sort"
)

// NoDataDescription is the sentiment description for records with no
// analyzed tweets behind their score.
const NoDataDescription = "No Data"

// LabelFunc maps a sentiment score in [-1, 1] to a human-readable
// description. It is only consulted when at least one tweet backs the score.
type LabelFunc func(score float64) string

// SentimentSample pairs an average sentiment score with the number of
// tweets it was computed over. The count is the sample's weight in a merge.
type SentimentSample struct {
	Score  float64
	Weight int64
}

// MergeSentiment combines two samples into a weighted average. A total
// weight of zero yields 0. Negative weights and non-finite scores are
// rejected, never coerced.
func MergeSentiment(existing, incoming SentimentSample) (float64, error) {
	for _, s := range [2]SentimentSample{existing, incoming} {
		if s.Weight < 0 {
			return 0, fmt.Errorf("negative sentiment weight %d", s.Weight)
		}
		if math.IsNaN(s.Score) || math.IsInf(s.Score, 0) {
			return 0, fmt.Errorf("non-finite sentiment score %v", s.Score)
		}
	}

	total := existing.Weight + incoming.Weight
	if total == 0 {
		return 0, nil
	}

	weighted := existing.Score*float64(existing.Weight) + incoming.Score*float64(incoming.Weight)
	return weighted / float64(total), nil
}

// MergeKeywords combines two keyword lists into one with a single entry per
// word. When a word appears in both lists the existing entry wins. The
// result is ordered by occurrence count, highest first, with ties keeping
// their input order (existing entries ahead of incoming ones), and is
// truncated to maxCount entries. A maxCount of zero or less yields an empty
// list. Neither input is modified.
func MergeKeywords(existing, incoming []Keyword, maxCount int) []Keyword {
	if maxCount <= 0 {
		return []Keyword{}
	}

	merged := make([]Keyword, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))

	for _, list := range [2][]Keyword{existing, incoming} {
		for _, kw := range list {
			if _, ok := seen[kw.Word]; ok {
				continue
			}
			seen[kw.Word] = struct{}{}
			merged = append(merged, kw)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Occurrences > merged[j].Occurrences
	})

	if len(merged) > maxCount {
		merged = merged[:maxCount]
	}

	return merged
}

// MergeRecord folds an observation into an existing record and returns the
// result as a new record. The sentiment score becomes the weighted average
// of the stored score and the window's score, weighted by their analyzed
// tweet counts; keywords are merged and bounded by maxKeywords; rank, tweets
// and articles are replaced by the observation's values wholesale. Neither
// input is modified. FirstSeen and LastUpdated are left for the store to
// stamp.
func MergeRecord(existing Record, obs Observation, maxKeywords int, label LabelFunc) (Record, error) {
	var window StreamStats
	if obs.Stream != nil {
		window = *obs.Stream
	}

	score, err := MergeSentiment(
		SentimentSample{Score: existing.SentimentScore, Weight: existing.TweetsAnalyzed},
		SentimentSample{Score: window.Sentiment, Weight: window.TweetsAnalyzed},
	)
	if err != nil {
		return Record{}, fmt.Errorf("merging sentiment: %w", err)
	}

	analyzed := existing.TweetsAnalyzed + window.TweetsAnalyzed
	description := NoDataDescription
	if analyzed > 0 {
		description = label(score)
	}

	return Record{
		Name:                 existing.Name,
		Rank:                 obs.Rank,
		SentimentScore:       score,
		SentimentDescription: description,
		TweetsAnalyzed:       analyzed,
		Keywords:             MergeKeywords(existing.Keywords, window.Keywords, maxKeywords),
		Tweets:               obs.Tweets,
		Articles:             obs.Articles,
		FirstSeen:            existing.FirstSeen,
	}, nil
}

// NewRecord builds the first record for a topic that has never been stored.
// It is a merge against an empty record: no prior weight and no prior
// keywords, so a topic without a tracking window comes out with a zero
// score, the NoDataDescription label and no keywords.
func NewRecord(obs Observation, maxKeywords int, label LabelFunc) (Record, error) {
	return MergeRecord(Record{Name: obs.Name}, obs, maxKeywords, label)
}
