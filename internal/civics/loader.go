// Package civics provides structured access to per-jurisdiction municipal
// rule files: a cached loader for topic indexes, deterministic keyword and
// common-question matchers, and answer formatting helpers.
package civics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/civix-app/civix-backend/internal/entity"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// loadedRules is the cached per-jurisdiction unit: the parsed index plus the
// detail data of every topic file that loaded cleanly. Topics whose detail
// file is missing or invalid are absent from Topics and excluded from
// matching.
type loadedRules struct {
	Index  entity.TopicIndex
	Topics map[string]map[string]any
}

// Store loads topic index files from data/rules/<slug>/ and caches them for
// the process lifetime. Loads on cache miss are idempotent; a racing double
// load wastes work but cannot corrupt state. Flush exists for test
// isolation.
type Store struct {
	rootDir string
	cache   *gocache.Cache
	logger  *zap.Logger
}

func NewStore(rootDir string, logger *zap.Logger) *Store {
	return &Store{
		rootDir: rootDir,
		cache:   gocache.New(gocache.NoExpiration, 0),
		logger:  logger,
	}
}

// trailing state token, e.g. "Cincinnati, OH" or "covington-ky"
var stateSuffixRe = regexp.MustCompile(`[,\s-]+[a-z]{2}$`)
var nonAlnumRe = regexp.MustCompile(`[^a-z0-9]`)

// slugFor normalizes the various jurisdiction spellings callers use
// ("cincinnati-oh", "Cincinnati, OH", "Cincinnati") to a rules directory
// name.
func slugFor(jurisdiction string) string {
	normalized := strings.ToLower(strings.TrimSpace(jurisdiction))
	normalized = stateSuffixRe.ReplaceAllString(normalized, "")
	return nonAlnumRe.ReplaceAllString(normalized, "")
}

func (s *Store) load(jurisdiction string) (*loadedRules, error) {
	key := slugFor(jurisdiction)
	if cached, ok := s.cache.Get(key); ok {
		return cached.(*loadedRules), nil
	}

	rulesDir := filepath.Join(s.rootDir, key)
	indexData, err := os.ReadFile(filepath.Join(rulesDir, "index.json"))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", entity.ErrJurisdictionNotFound, jurisdiction)
	}

	var index entity.TopicIndex
	if err := json.Unmarshal(indexData, &index); err != nil {
		return nil, fmt.Errorf("parse topic index for %s: %w", jurisdiction, err)
	}

	topics := make(map[string]map[string]any, len(index.Topics))
	for _, topic := range index.Topics {
		data, err := os.ReadFile(filepath.Join(rulesDir, topic.File))
		if err != nil {
			s.logger.Warn("topic detail file missing",
				zap.String("jurisdiction", key),
				zap.String("topic", topic.ID),
				zap.String("file", topic.File),
			)
			continue
		}
		var detail map[string]any
		if err := json.Unmarshal(data, &detail); err != nil {
			s.logger.Warn("topic detail file invalid",
				zap.String("jurisdiction", key),
				zap.String("topic", topic.ID),
				zap.Error(err),
			)
			continue
		}
		topics[topic.ID] = detail
	}

	loaded := &loadedRules{Index: index, Topics: topics}
	s.cache.Set(key, loaded, gocache.NoExpiration)
	return loaded, nil
}

// Index returns the parsed topic index for a jurisdiction, loading and
// caching it on first access.
func (s *Store) Index(jurisdiction string) (*entity.TopicIndex, error) {
	loaded, err := s.load(jurisdiction)
	if err != nil {
		return nil, err
	}
	return &loaded.Index, nil
}

// TopicData returns the detail data for one topic. The second return is
// false when the topic is unknown or its detail file failed to load.
func (s *Store) TopicData(jurisdiction, topicID string) (map[string]any, bool) {
	loaded, err := s.load(jurisdiction)
	if err != nil {
		return nil, false
	}
	data, ok := loaded.Topics[topicID]
	return data, ok
}

// AvailableJurisdictions scans the rules root and returns the jurisdiction
// identifiers of every directory with a parseable index.json.
func (s *Store) AvailableJurisdictions() []string {
	entries, err := os.ReadDir(s.rootDir)
	if err != nil {
		return nil
	}

	var jurisdictions []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.rootDir, entry.Name(), "index.json"))
		if err != nil {
			continue
		}
		var index entity.TopicIndex
		if err := json.Unmarshal(data, &index); err != nil {
			continue
		}
		jurisdictions = append(jurisdictions, index.Jurisdiction)
	}

	return jurisdictions
}

// Flush clears the cache. Tests use it for isolation between cases.
func (s *Store) Flush() {
	s.cache.Flush()
}
