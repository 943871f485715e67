package socketapi

import (
	"encoding/json"

	"seqrelay.dev/envelopes/closeenvelope"
)

// HandleClose removes a subscription; silent if it does not exist.
func (a *A) HandleClose(lis *Listener, rest []json.RawMessage) (notice string) {
	env := closeenvelope.New()
	if err := env.Unmarshal(rest); err != nil {
		return err.Error()
	}
	a.Publisher().Unsubscribe(lis, env.Sub)
	return
}
