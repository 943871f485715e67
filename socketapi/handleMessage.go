package socketapi

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"seqrelay.dev/envelopes"
	"seqrelay.dev/envelopes/changesenvelope"
	"seqrelay.dev/envelopes/closeenvelope"
	"seqrelay.dev/envelopes/eventenvelope"
	"seqrelay.dev/envelopes/noticeenvelope"
	"seqrelay.dev/envelopes/reqenvelope"
)

// HandleMessage identifies one inbound frame and dispatches it. Malformed
// frames and unknown commands produce a NOTICE; the connection stays open.
func (a *A) HandleMessage(c context.Context, lis *Listener, msg []byte) {
	log.WithField("remote", lis.Remote()).Tracef("received %s", msg)
	var notice string
	label, rest, err := envelopes.Identify(msg)
	if err != nil {
		notice = err.Error()
	} else {
		switch label {
		case eventenvelope.L:
			notice = a.HandleEvent(c, lis, rest)
		case reqenvelope.L:
			notice = a.HandleReq(c, lis, rest)
		case closeenvelope.L:
			notice = a.HandleClose(lis, rest)
		case changesenvelope.L:
			notice = a.HandleChanges(c, lis, rest)
		case changesenvelope.LSeq:
			notice = a.HandleLastSeq(c, lis, rest)
		case changesenvelope.LSub:
			notice = a.HandleChangesSub(c, lis, rest)
		case changesenvelope.LUnsub:
			notice = a.HandleChangesUnsub(lis, rest)
		default:
			notice = fmt.Sprintf("unknown command %q", label)
		}
	}
	if notice != "" {
		log.WithField("remote", lis.Remote()).Debugf("notice-> %s", notice)
		if err = noticeenvelope.NewFrom(notice).Write(lis); err != nil {
			log.WithError(err).WithField("remote", lis.Remote()).
				Debug("failed to write notice")
		}
	}
}
