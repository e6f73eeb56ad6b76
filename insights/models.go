package insights

import "time"

// Recap is a short narrated summary of a show's recent feed.
type Recap struct {
	ShowID      string    `json:"showId"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Headlines   []string  `json:"headlines"`
	Generated   bool      `json:"generated"` // false when built without the text service
	LastUpdated time.Time `json:"lastUpdated"`
}

type recapJSON struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
}
