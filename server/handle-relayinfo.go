package server

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"seqrelay.dev/event"
	"seqrelay.dev/helpers"
	"seqrelay.dev/relayinfo"
	"seqrelay.dev/version"
)

// HandleRelayInfo serves the capability document.
func (s *S) HandleRelayInfo(w http.ResponseWriter, r *http.Request) {
	log.WithField("remote", helpers.GetRemoteFromReq(r)).
		Debug("handling relay info request")
	w.Header().Set("Content-Type", "application/json")
	info := &relayinfo.T{
		Name:        s.cfg.AppName,
		Description: version.Description,
		Software:    version.URL,
		Version:     version.V,
		Commands:    relayinfo.Commands,
		Limitation: relayinfo.Limits{
			MaxLimit:       s.maxLimit,
			MaxSubidLength: 64,
			CreatedAtUpper: event.MaxFutureSeconds,
		},
	}
	if err := json.NewEncoder(w).Encode(info); err != nil {
		log.WithError(err).Warn("failed to write relay info")
	}
}
