package domain

// Employee is one staffing record as loaded from the data source.
// A nil slice or pointer means the field was absent in the source.
type Employee struct {
	Name            string   `json:"name" validate:"required"`
	ExperienceYears *int     `json:"experience_years" validate:"required,gte=0"`
	Skills          []string `json:"skills" validate:"required"`
	PastProjects    []string `json:"past_projects" validate:"required"`
	Availability    string   `json:"availability" validate:"required"`
}

// ScoredEmployee is a retrieval hit: the record, its position in the
// loaded collection and its squared L2 distance from the query.
type ScoredEmployee struct {
	Employee Employee `json:"employee"`
	Position int      `json:"position"`
	Distance float64  `json:"distance"`
}

// Years returns a pointer to n, for building records in code.
func Years(n int) *int {
	return &n
}
