package logger

// NewReport builds an empty aggregation.
func NewReport() *Report {
	return &Report{
		Outcomes: make(map[string]int),
		Programs: make(map[string]int),
	}
}

// Report summarizes an event log: how many lines were dispatched,
// which programs ran, and how their children terminated.
type Report struct {
	Entries    int `json:"entries"`
	Dispatches int `json:"dispatches"`
	Pipelines  int `json:"pipelines"`

	// Outcomes counts rendered exit reports, e.g.
	// "exited with status 0".
	Outcomes map[string]int `json:"outcomes"`

	// Programs counts launches per program path.
	Programs map[string]int `json:"programs"`
}

// Update folds one log entry into the report.
func (r *Report) Update(e *Entry) {
	r.Entries++

	d := e.Dispatch
	if d == nil {
		return
	}
	r.Dispatches++
	if len(d.Stages) > 1 {
		r.Pipelines++
	}
	for _, stage := range d.Stages {
		if len(stage.Argv) > 0 {
			r.Programs[stage.Argv[0]]++
		}
		r.Outcomes[stage.Report.String()]++
	}
}
