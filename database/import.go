package database

import (
	"bufio"
	"context"
	"encoding/json"
	"io"

	log "github.com/sirupsen/logrus"

	"seqrelay.dev/event"
	"seqrelay.dev/kind"
)

// Import reads JSON-line events from r and runs each through the normal
// retention pipeline, so duplicates, superseded versions and purge events
// behave the same as live submissions. Lines that fail to decode or are
// rejected are logged and skipped.
func (d *D) Import(c context.Context, r io.Reader) (err error) {
	scan := bufio.NewScanner(r)
	scan.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	var line int
	for scan.Scan() {
		line++
		b := scan.Bytes()
		if len(b) == 0 {
			continue
		}
		ev := event.New()
		if err := json.Unmarshal(b, ev); err != nil {
			log.WithError(err).WithField("line", line).
				Warn("skipping undecodable import line")
			continue
		}
		if kind.IsEphemeral(ev.Kind) {
			continue
		}
		if _, _, _, err := d.AcceptEvent(c, ev); err != nil {
			log.WithError(err).WithField("line", line).
				Warn("skipping rejected import event")
		}
	}
	return scan.Err()
}
