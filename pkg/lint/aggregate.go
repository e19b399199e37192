package lint

// AggregatedResults is an ordered result list with running totals.
type AggregatedResults struct {
	Results []*Result `json:"results"`
	Counts
}

// NewAggregatedResults returns an empty result set.
func NewAggregatedResults() *AggregatedResults {
	return &AggregatedResults{Results: []*Result{}}
}

// Add appends r and folds its counts into the totals.
func (a *AggregatedResults) Add(r *Result) {
	a.Results = append(a.Results, r)
	a.Counts.Add(r.Counts)
}

// Len returns the number of results.
func (a *AggregatedResults) Len() int {
	return len(a.Results)
}
