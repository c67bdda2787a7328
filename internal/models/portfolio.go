// internal/models/portfolio.go
package models

import "time"

// PortfolioEntry is the durable snapshot of a completed mission.
type PortfolioEntry struct {
	ID               string    `json:"id"`
	ApplicationID    string    `json:"applicationId"`
	InfluencerID     string    `json:"influencerId"`
	CampaignID       string    `json:"campaignId"`
	CampaignTitle    string    `json:"campaignTitle"`
	CampaignCategory string    `json:"campaignCategory"`
	Platform         string    `json:"platform"`
	ContentURL       string    `json:"contentUrl"`
	CompletedAt      time.Time `json:"completedAt"`
	Rating           *int      `json:"rating,omitempty"`
	ReviewText       string    `json:"reviewText,omitempty"`
	IsPublic         bool      `json:"isPublic"`
	IsFeatured       bool      `json:"isFeatured"`
}

// PortfolioQuery filters a portfolio search. Only public entries are returned.
type PortfolioQuery struct {
	Text         string `json:"query,omitempty"`
	InfluencerID string `json:"influencerId,omitempty"`
	Platform     string `json:"platform,omitempty"`
	Category     string `json:"category,omitempty"`
	Limit        int    `json:"limit,omitempty"`
}
