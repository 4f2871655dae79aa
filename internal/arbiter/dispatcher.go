package arbiter

import (
	"log/slog"

	"github.com/google/uuid"

	"btroute/internal/device"
	"btroute/internal/logging"
	"btroute/internal/profiles"
)

// dispatcher translates resolved commands into collaborator calls. Calls are
// fire and forget; a rejected call is logged and never retried, the next
// inbound event re-derives the desired state.
type dispatcher struct {
	svc    profiles.Services
	log    *slog.Logger
	dedupe bool
	// last remembers the most recent address sent per target, only consulted
	// when dedupe is on.
	last [numTargets]device.MacAddress
	sent [numTargets]bool
}

func newDispatcher(svc profiles.Services, dedupe bool, logger *slog.Logger) *dispatcher {
	return &dispatcher{
		svc:    svc,
		log:    logging.NewComponentLogger(logger, "dispatcher"),
		dedupe: dedupe,
	}
}

func (d *dispatcher) dispatch(eventID uuid.UUID, cmds []Command) {
	for _, cmd := range cmds {
		if d.dedupe && d.sent[cmd.Target] && d.last[cmd.Target] == cmd.Addr {
			continue
		}

		ok := true
		switch cmd.Target {
		case TargetClassicMedia:
			if d.svc.ClassicMedia == nil {
				continue
			}
			ok = d.svc.ClassicMedia.SetActive(cmd.Addr, cmd.SuppressNoise)
		case TargetClassicCall:
			if d.svc.ClassicCall == nil {
				continue
			}
			ok = d.svc.ClassicCall.SetActive(cmd.Addr)
		case TargetHearingAid:
			if d.svc.HearingAid == nil {
				continue
			}
			ok = d.svc.HearingAid.SetActive(cmd.Addr, cmd.SuppressNoise)
		case TargetLEAudio:
			if d.svc.LEAudio == nil {
				continue
			}
			ok = d.svc.LEAudio.SetActive(cmd.Addr, cmd.SuppressNoise)
		default:
			d.log.Warn("dropping command for unknown target",
				logging.String(logging.FieldEventID, eventID.String()))
			continue
		}

		d.last[cmd.Target] = cmd.Addr
		d.sent[cmd.Target] = true

		if !ok {
			d.log.Warn("collaborator rejected active device change",
				logging.String(logging.FieldEventID, eventID.String()),
				logging.String("target", cmd.Target.String()),
				logging.String(logging.FieldDevice, cmd.Addr.String()),
				logging.String(logging.FieldErrorHint, "collaborator may be shutting down or mid-connection"),
				logging.String(logging.FieldImpact, "routing re-derives on the next profile event"))
		}
	}
}
