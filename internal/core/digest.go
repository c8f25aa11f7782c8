package core

import "time"

// InsightDigest is a stored snapshot of a generated insight bundle. The
// digest worker writes one after expense activity; the API lists them as
// insight history. Unlike the live insight response, digests persist.
type InsightDigest struct {
	ID              string    `json:"id"`
	Owner           string    `json:"-"`
	Month           Month     `json:"month"`
	Anomalies       string    `json:"anomalies"`
	Trends          string    `json:"trends"`
	Recommendations string    `json:"recommendations"`
	Savings         string    `json:"savings"`
	Provider        string    `json:"provider"`
	GeneratedAt     time.Time `json:"generatedAt"`
}
