package missions

import (
	"mission-workers/internal/common/logger"
	"mission-workers/internal/platform"
)

// Dependencies wires the coordinators. Store and Campaigns are required; the
// gateways, caches and index are optional and skipped when nil.
type Dependencies struct {
	Store         Store
	Campaigns     CampaignDirectory
	Influencers   InfluencerDirectory
	Notifications NotificationGateway
	Emails        EmailGateway
	Stats         StatsCache
	Portfolio     PortfolioIndex
	Classifier    Classifier
	Clock         Clock
	Logger        logger.Logger
}

func (d Dependencies) logger() logger.Logger {
	if d.Logger == nil {
		return logger.NewNoOpLogger()
	}
	return d.Logger
}

func (d Dependencies) clock() Clock {
	if d.Clock == nil {
		return systemClock
	}
	return d.Clock
}

func (d Dependencies) classifier() Classifier {
	if d.Classifier == nil {
		return platform.NewClassifier()
	}
	return d.Classifier
}

func (d Dependencies) notifier(log logger.Logger) *notifier {
	return &notifier{
		notifications: d.Notifications,
		emails:        d.Emails,
		influencers:   d.Influencers,
		logger:        log,
	}
}

// Coordinators bundles every exposed operation.
type Coordinators struct {
	Selection   *SelectionCoordinator
	Submission  *SubmissionCoordinator
	Review      *ReviewCoordinator
	Projections *Projections
}

func NewCoordinators(deps Dependencies) *Coordinators {
	return &Coordinators{
		Selection:   NewSelectionCoordinator(deps),
		Submission:  NewSubmissionCoordinator(deps),
		Review:      NewReviewCoordinator(deps),
		Projections: NewProjections(deps),
	}
}
