package gateway

import "linguachat/tools/safe"

type fanoutJob struct {
	conns   []*Client
	payload []byte
}

// Fanout is a fixed worker pool pushing one payload onto many send queues.
// A slow client is skipped rather than allowed to stall the job.
type Fanout struct {
	jobs chan fanoutJob
}

func NewFanout(workers, queue int) *Fanout {
	f := &Fanout{jobs: make(chan fanoutJob, queue)}
	for i := 0; i < workers; i++ {
		safe.Go(func() {
			for job := range f.jobs {
				for _, c := range job.conns {
					select {
					case <-c.done:
					case c.Send <- job.payload:
					default:
					}
				}
			}
		})
	}
	return f
}

func (f *Fanout) Broadcast(conns []*Client, payload []byte) {
	if len(conns) == 0 || len(payload) == 0 {
		return
	}
	f.jobs <- fanoutJob{conns: conns, payload: payload}
}
