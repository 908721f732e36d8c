package domain

// Question is a single question posed to an undecided patron, together with
// the candidate answers the model suggested.
type Question struct {
	Question string   `json:"question"`
	Answers  []string `json:"answers"`
}

// QuestionSet maps an ordinal key ("1", "2", ...) to a question. The model
// is prompted to produce exactly this shape; a degraded extraction yields an
// empty set, which is still a valid record value.
type QuestionSet map[string]Question

// Preferences maps the ordinal key of a question to the patron's chosen
// answer. It is written once per job by the intake API, never by the
// pipeline.
type Preferences map[string]string

// Recommendation is a single dish suggestion with the model's rationale.
type Recommendation struct {
	DishName               string `json:"dish_name"`
	MatchReason            string `json:"match_reason"`
	AlternativesIfNotExact string `json:"alternatives_if_not_exact"`
}

// RecommendationSet is the terminal result of a job: dish recommendations
// matched against the patron's stated preferences.
type RecommendationSet struct {
	Recommendations []Recommendation `json:"recommendations"`
	Notes           string           `json:"notes"`
}
