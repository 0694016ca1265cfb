package civics

import (
	"math"
	"sort"
	"strings"

	"github.com/civix-app/civix-backend/internal/entity"
	"github.com/civix-app/civix-backend/internal/pkg/dotpath"
)

const (
	keywordWeight     = 0.4
	exactPhraseWeight = 0.3

	// fraction of a canonical question's words that must appear in the
	// user's question for a common-question match
	commonQuestionThreshold = 0.6
)

// Matcher scores free-text questions against a jurisdiction's topic index.
// All matching is deterministic string work; there is no model call on this
// path.
type Matcher struct {
	store *Store
}

func NewMatcher(store *Store) *Matcher {
	return &Matcher{store: store}
}

// FindMatchingTopics returns every topic whose keywords match the question,
// sorted by descending confidence. A keyword matches either as an exact
// phrase substring of the question, or when at least half of its words occur
// as whole words in the question. Topics whose detail data failed to load
// are excluded. Confidence is min(1, 0.4*matchedKeywords + 0.3*exactPhrases).
func (m *Matcher) FindMatchingTopics(jurisdiction, question string) ([]entity.TopicMatch, error) {
	index, err := m.store.Index(jurisdiction)
	if err != nil {
		return nil, err
	}

	questionLower := strings.ToLower(question)
	questionWords := strings.Fields(questionLower)

	var matches []entity.TopicMatch
	for _, topic := range index.Topics {
		var matched []string
		exactPhrases := 0

		for _, keyword := range topic.Keywords {
			keywordLower := strings.ToLower(keyword)
			if strings.Contains(questionLower, keywordLower) {
				matched = append(matched, keyword)
				exactPhrases++
				continue
			}

			keywordWords := strings.Fields(keywordLower)
			present := 0
			for _, w := range keywordWords {
				if containsWord(questionWords, w) {
					present++
				}
			}
			if present > 0 && float64(present) >= float64(len(keywordWords))*0.5 {
				matched = append(matched, keyword)
			}
		}

		if len(matched) == 0 {
			continue
		}

		data, ok := m.store.TopicData(jurisdiction, topic.ID)
		if !ok {
			continue
		}

		confidence := math.Min(1, keywordWeight*float64(len(matched))+exactPhraseWeight*float64(exactPhrases))
		matches = append(matches, entity.TopicMatch{
			Topic:           topic,
			Data:            data,
			MatchedKeywords: matched,
			Confidence:      confidence,
		})
	}

	// stable keeps index order among equal confidences
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})

	return matches, nil
}

// MatchCommonQuestion checks the question against the jurisdiction's
// canonical question list, in source order, and returns the first whose
// words are at least 60% covered by the input. Returns nil when nothing
// qualifies or the matched topic's data is unavailable.
func (m *Matcher) MatchCommonQuestion(jurisdiction, question string) (*entity.CommonQuestionMatch, error) {
	index, err := m.store.Index(jurisdiction)
	if err != nil {
		return nil, err
	}

	questionLower := strings.ToLower(question)

	for _, cq := range index.CommonQuestions {
		canonicalWords := strings.Fields(strings.ToLower(cq.Question))
		if len(canonicalWords) == 0 {
			continue
		}
		present := 0
		for _, w := range canonicalWords {
			if strings.Contains(questionLower, w) {
				present++
			}
		}
		if float64(present)/float64(len(canonicalWords)) < commonQuestionThreshold {
			continue
		}

		data, ok := m.store.TopicData(jurisdiction, cq.Topic)
		if !ok {
			continue
		}
		return &entity.CommonQuestionMatch{
			Topic:      cq.Topic,
			AnswerPath: cq.AnswerPath,
			Data:       data,
		}, nil
	}

	return nil, nil
}

// Answer resolves a common-question match's answer_path inside its topic
// data and renders it as text. The second return is false when the path
// does not resolve.
func Answer(match *entity.CommonQuestionMatch) (string, bool) {
	value, ok := dotpath.Lookup(match.Data, match.AnswerPath)
	if !ok {
		return "", false
	}
	return FormatValue(value), true
}

func containsWord(words []string, w string) bool {
	for _, candidate := range words {
		if candidate == w {
			return true
		}
	}
	return false
}
