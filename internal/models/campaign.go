// internal/models/campaign.go
package models

// CampaignSnapshot is the slice of a campaign this service reads: ownership
// for authorization, title and category for portfolio snapshots.
type CampaignSnapshot struct {
	ID       string `json:"id"`
	OwnerID  string `json:"ownerId"`
	Title    string `json:"title"`
	Category string `json:"category"`
}
