// internal/workers/reporting/search-portfolio/models.go
package searchportfolio

import "mission-workers/internal/models"

type Input struct {
	models.PortfolioQuery
}

type Output struct {
	Count   int                     `json:"count"`
	Entries []models.PortfolioEntry `json:"entries"`
}
