package seedmodels

// SeedOption is one answer choice in the JSON seed file.
type SeedOption struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// SeedQuestion is one question in the JSON seed file.
type SeedQuestion struct {
	Text    string       `json:"text"`
	Options []SeedOption `json:"options"`
}

// SeedQuiz defines the structure for a quiz in the JSON seed file.
type SeedQuiz struct {
	Title       string         `json:"title"`
	Description string         `json:"description"`
	TimeMinutes int            `json:"time_minutes"`
	Difficulty  string         `json:"difficulty"`
	IconName    string         `json:"icon_name"`
	Questions   []SeedQuestion `json:"questions"`
}
