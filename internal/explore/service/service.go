package service

import (
	"context"
	"fmt"

	"github.com/nkorchagin/datahub/internal/common/constants"
	"github.com/nkorchagin/datahub/internal/common/logger"
	"github.com/nkorchagin/datahub/internal/dataset/domain"
	datasetrepo "github.com/nkorchagin/datahub/internal/dataset/repository"
	"github.com/nkorchagin/datahub/internal/observability/metrics"
)

type ExploreService struct {
	repo datasetrepo.Repository
	log  *logger.Logger
}

func NewExploreService(repo datasetrepo.Repository, log *logger.Logger) *ExploreService {
	return &ExploreService{repo: repo, log: log}
}

// Filter reduces the raw request criteria to the allow-listed fields and
// queries the dataset store. Unknown keys and non-string values are dropped,
// never forwarded.
func (s *ExploreService) Filter(ctx context.Context, raw map[string]any) ([]domain.Dataset, error) {
	criteria := SanitizeCriteria(raw)

	datasets, err := s.repo.Filter(ctx, criteria)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "explore_filter_failed",
		}).Errorf("explore filter failed: %v", err)
		return nil, fmt.Errorf("failed to filter datasets: %w", err)
	}

	metrics.ExploreQueriesTotal.Inc()
	metrics.ExploreResultsReturned.Observe(float64(len(datasets)))

	return datasets, nil
}

// SanitizeCriteria maps allow-listed string fields out of a decoded JSON
// object into typed criteria.
func SanitizeCriteria(raw map[string]any) datasetrepo.Criteria {
	criteria := datasetrepo.Criteria{
		Query:    stringField(raw, "query"),
		Title:    stringField(raw, "title"),
		Category: stringField(raw, "category"),
		License:  stringField(raw, "license"),
		Tag:      stringField(raw, "tag"),
		Limit:    constants.DefaultExploreLimit,
	}

	if len(criteria.Query) > constants.MaxSearchQueryLength {
		criteria.Query = criteria.Query[:constants.MaxSearchQueryLength]
	}

	return criteria
}

func stringField(raw map[string]any, key string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
