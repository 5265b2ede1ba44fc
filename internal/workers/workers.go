package workers

// Workers aggregates background workers so the agent can start them all with
// one call.
type Workers struct {
	workers []Worker
}

// NewWorkers bundles the given workers.
func NewWorkers(workers ...Worker) *Workers {
	return &Workers{workers: workers}
}

// Run starts every bundled worker.
func (w *Workers) Run() {
	for _, worker := range w.workers {
		worker.Run()
	}
}
