// journal/journal.go
package journal

import (
	"github.com/rustyeddy/reserveflow/market"
)

// Recorder receives daily snapshots as a run produces them. Recorders
// are write-only: they export results, they are not a source of truth
// for the simulation itself.
type Recorder interface {
	RecordSnapshot(market.Snapshot) error
	Close() error
}

// RecordAll replays a full result table into a recorder.
func RecordAll(r Recorder, tbl market.Table) error {
	for _, snap := range tbl {
		if err := r.RecordSnapshot(snap); err != nil {
			return err
		}
	}
	return nil
}
