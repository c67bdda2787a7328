package missions

import (
	"context"
	"fmt"

	"mission-workers/internal/common/errors"
	"mission-workers/internal/common/logger"
	"mission-workers/internal/models"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// Projections serves the read-only views over applications, submissions and portfolio.
type Projections struct {
	store     Store
	campaigns CampaignDirectory
	stats     StatsCache
	portfolio PortfolioIndex
	now       Clock
	logger    logger.Logger
}

func NewProjections(deps Dependencies) *Projections {
	return &Projections{
		store:     deps.Store,
		campaigns: deps.Campaigns,
		stats:     deps.Stats,
		portfolio: deps.Portfolio,
		now:       deps.clock(),
		logger:    deps.logger().WithFields(map[string]interface{}{"component": "projections"}),
	}
}

func (p *Projections) authorizeOwner(ctx context.Context, campaignID, requesterID string) error {
	campaign, err := p.campaigns.GetCampaign(ctx, campaignID)
	if err != nil {
		return err
	}
	if campaign.OwnerID != requesterID {
		return errors.NewForbiddenError(fmt.Sprintf("user %s does not own campaign %s", requesterID, campaignID))
	}
	return nil
}

// GetCampaignSubmissions lists every submission of the campaign with its revision history.
func (p *Projections) GetCampaignSubmissions(ctx context.Context, campaignID, requesterID string) ([]models.CampaignSubmission, error) {
	if err := p.authorizeOwner(ctx, campaignID, requesterID); err != nil {
		return nil, err
	}
	rows, err := p.store.ListCampaignSubmissions(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		for _, rev := range rows[i].Revisions {
			if rev.IsOpen() {
				rows[i].OpenRevision = true
				break
			}
		}
	}
	return rows, nil
}

// GetMyMissionHistory lists the influencer's selected and completed missions, newest first.
func (p *Projections) GetMyMissionHistory(ctx context.Context, influencerID string) ([]models.MissionHistoryItem, error) {
	if influencerID == "" {
		return nil, errors.NewValidationFailedError("influencer id is required")
	}
	return p.store.ListMissionHistory(ctx, influencerID)
}

// GetCampaignStatistics returns cached statistics when present, computing and caching them otherwise.
func (p *Projections) GetCampaignStatistics(ctx context.Context, campaignID, requesterID string) (*models.CampaignStatistics, error) {
	if err := p.authorizeOwner(ctx, campaignID, requesterID); err != nil {
		return nil, err
	}

	var generation int64
	if p.stats != nil {
		cached, gen, ok := p.stats.Get(ctx, campaignID)
		if ok {
			return cached, nil
		}
		generation = gen
	}

	stats, err := p.store.CampaignStatistics(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	stats.CampaignID = campaignID
	stats.ComputeCompletionRate()
	stats.GeneratedAt = p.now()

	if p.stats != nil {
		p.stats.Set(ctx, stats, generation)
	}
	return stats, nil
}

// SearchPortfolio searches public portfolio entries. Without a configured
// index it returns no results.
func (p *Projections) SearchPortfolio(ctx context.Context, query models.PortfolioQuery) ([]models.PortfolioEntry, error) {
	if query.Limit <= 0 {
		query.Limit = defaultSearchLimit
	}
	if query.Limit > maxSearchLimit {
		query.Limit = maxSearchLimit
	}
	if p.portfolio == nil {
		p.logger.Debug("portfolio index disabled", nil)
		return []models.PortfolioEntry{}, nil
	}
	return p.portfolio.Search(ctx, query)
}
