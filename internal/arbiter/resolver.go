package arbiter

import (
	"context"
	"log/slog"

	"btroute/internal/audiomode"
	"btroute/internal/device"
	"btroute/internal/event"
	"btroute/internal/logging"
	"btroute/internal/profiles"
	"btroute/internal/stack"
)

// RecencyQuerier is the connectivity-database view the resolver needs for
// the cross-group fallback tie-break. A nil querier degrades to stack order.
type RecencyQuerier interface {
	MostRecentlyConnected(ctx context.Context, candidates []device.MacAddress) (device.MacAddress, bool, error)
}

// resolver owns the arbitration state and implements the priority decision
// table. It is driven exclusively by the manager's worker goroutine, so no
// field is locked.
type resolver struct {
	log *slog.Logger

	mode   audiomode.Mode
	active [device.NumRoles]device.MacAddress
	stacks map[device.Group]*stack.Stack
	marks  map[device.MacAddress]struct{}
	// caps tracks which profiles each device is currently connected on.
	caps map[device.MacAddress]device.Membership

	enabled [numTargets]bool
	svc     profiles.Services
	recent  RecencyQuerier
}

func newResolver(svc profiles.Services, recent RecencyQuerier, logger *slog.Logger) *resolver {
	r := &resolver{
		log: logging.NewComponentLogger(logger, "resolver"),
		stacks: map[device.Group]*stack.Stack{
			device.GroupHearingAid:       new(stack.Stack),
			device.GroupClassicMediaCall: new(stack.Stack),
			device.GroupLEAudio:          new(stack.Stack),
		},
		marks:  make(map[device.MacAddress]struct{}),
		caps:   make(map[device.MacAddress]device.Membership),
		svc:    svc,
		recent: recent,
	}
	r.enabled[TargetClassicMedia] = svc.ClassicMedia != nil
	r.enabled[TargetClassicCall] = svc.ClassicCall != nil
	r.enabled[TargetHearingAid] = svc.HearingAid != nil
	r.enabled[TargetLEAudio] = svc.LEAudio != nil
	return r
}

// resolve applies one classified event to the arbitration state and returns
// the outbound role reassignments it implies.
func (r *resolver) resolve(ev event.Event) []Command {
	switch ev.Kind {
	case event.KindConnected:
		return r.onConnected(ev)
	case event.KindDisconnected:
		return r.onDisconnected(ev)
	case event.KindActiveChanged:
		return r.onActiveChanged(ev)
	case event.KindAvailable:
		r.marks[ev.Addr] = struct{}{}
		return nil
	case event.KindUnavailable:
		delete(r.marks, ev.Addr)
		return nil
	case event.KindAudioModeChanged:
		return r.onAudioModeChanged(ev)
	case event.KindWiredAudioConnected:
		return r.onWiredAudio()
	default:
		r.log.Warn("dropping event with unknown kind",
			logging.String(logging.FieldEventID, ev.ID.String()))
		return nil
	}
}

func (r *resolver) marked(addr device.MacAddress) bool {
	_, ok := r.marks[addr]
	return ok
}

// hearingTierActive reports whether a Tier-0 arrangement holds: either the
// classic hearing aid role is occupied, or the active LE device carries the
// hearing-aid mark.
func (r *resolver) hearingTierActive() bool {
	if !r.active[device.RoleHearingAid].IsNil() {
		return true
	}
	le := r.active[device.RoleLEAudioMedia]
	return !le.IsNil() && r.marked(le)
}

func rolesForProfile(p device.Profile) []device.Role {
	switch p {
	case device.ProfileClassicMedia:
		return []device.Role{device.RoleClassicMedia}
	case device.ProfileClassicCall:
		return []device.Role{device.RoleClassicCall}
	case device.ProfileHearingAid:
		return []device.Role{device.RoleHearingAid}
	case device.ProfileLEAudio:
		return []device.Role{device.RoleLEAudioMedia, device.RoleLEAudioCall}
	default:
		return nil
	}
}

func (r *resolver) clearRoles(roles ...device.Role) {
	for _, role := range roles {
		r.active[role] = device.MacAddress{}
	}
}

// groupStillConnected reports whether the device remains connected on any
// profile of the group.
func (r *resolver) groupStillConnected(addr device.MacAddress, g device.Group) bool {
	m := r.caps[addr]
	for _, p := range []device.Profile{
		device.ProfileClassicMedia, device.ProfileClassicCall,
		device.ProfileHearingAid, device.ProfileLEAudio,
	} {
		if p.Group() == g && m.Has(p) {
			return true
		}
	}
	return false
}

func (r *resolver) onConnected(ev event.Event) []Command {
	addr := ev.Addr
	r.caps[addr] = r.caps[addr].With(ev.Profile)
	r.stacks[ev.Group].Push(addr)

	switch ev.Group {
	case device.GroupHearingAid:
		return r.takeoverHearingTier(TargetHearingAid, addr)

	case device.GroupLEAudio:
		if r.marked(addr) {
			// A marked LE device is a hearing aid and arbitrates at Tier 0.
			return r.takeoverHearingTier(TargetLEAudio, addr)
		}
		if r.hearingTierActive() {
			return nil
		}
		if r.active[device.RoleLEAudioMedia] == addr && r.active[device.RoleLEAudioCall] == addr {
			return nil
		}
		var cmds []Command
		if r.enabled[TargetLEAudio] {
			cmds = append(cmds, Command{Target: TargetLEAudio, Addr: addr})
		}
		cmds = append(cmds, r.clearClassicRoles(true)...)
		r.active[device.RoleLEAudioMedia] = addr
		r.active[device.RoleLEAudioCall] = addr
		return cmds

	case device.GroupClassicMediaCall:
		if r.hearingTierActive() {
			return nil
		}
		assign := audiomode.Assign(audiomode.Capabilities{
			Media: r.caps[addr].Has(device.ProfileClassicMedia),
			Call:  r.caps[addr].Has(device.ProfileClassicCall),
		}, r.mode)
		var cmds []Command
		activated := false
		if assign.Media && ev.Profile == device.ProfileClassicMedia && r.active[device.RoleClassicMedia] != addr {
			if r.enabled[TargetClassicMedia] {
				cmds = append(cmds, Command{Target: TargetClassicMedia, Addr: addr})
			}
			r.active[device.RoleClassicMedia] = addr
			activated = true
		}
		if assign.Call && ev.Profile == device.ProfileClassicCall && r.active[device.RoleClassicCall] != addr {
			if r.enabled[TargetClassicCall] {
				cmds = append(cmds, Command{Target: TargetClassicCall, Addr: addr})
			}
			r.active[device.RoleClassicCall] = addr
			activated = true
		}
		if activated && !r.active[device.RoleLEAudioMedia].IsNil() {
			if r.enabled[TargetLEAudio] {
				cmds = append(cmds, Command{Target: TargetLEAudio, SuppressNoise: true})
			}
			r.clearRoles(device.RoleLEAudioMedia, device.RoleLEAudioCall)
		}
		return cmds
	}
	return nil
}

// takeoverHearingTier activates a hearing-tier device (classic hearing aid,
// or a marked LE device) and clears every other routable target. The clears
// carry suppressNoise because the duty moves in the same instant.
func (r *resolver) takeoverHearingTier(target Target, addr device.MacAddress) []Command {
	switch target {
	case TargetHearingAid:
		if r.active[device.RoleHearingAid] == addr {
			return nil
		}
	case TargetLEAudio:
		if r.active[device.RoleLEAudioMedia] == addr {
			return nil
		}
	}

	var cmds []Command
	if r.enabled[target] {
		cmds = append(cmds, Command{Target: target, Addr: addr})
	}
	for _, t := range []Target{TargetClassicMedia, TargetClassicCall, TargetHearingAid, TargetLEAudio} {
		if t == target || !r.enabled[t] {
			continue
		}
		cmds = append(cmds, Command{Target: t, SuppressNoise: t != TargetClassicCall})
	}

	r.clearRoles(device.RoleClassicMedia, device.RoleClassicCall,
		device.RoleHearingAid, device.RoleLEAudioMedia, device.RoleLEAudioCall)
	if target == TargetHearingAid {
		r.active[device.RoleHearingAid] = addr
	} else {
		r.active[device.RoleLEAudioMedia] = addr
		r.active[device.RoleLEAudioCall] = addr
	}
	return cmds
}

// clearClassicRoles emits clears for whichever classic roles are occupied.
func (r *resolver) clearClassicRoles(suppress bool) []Command {
	var cmds []Command
	if !r.active[device.RoleClassicMedia].IsNil() {
		if r.enabled[TargetClassicMedia] {
			cmds = append(cmds, Command{Target: TargetClassicMedia, SuppressNoise: suppress})
		}
		r.clearRoles(device.RoleClassicMedia)
	}
	if !r.active[device.RoleClassicCall].IsNil() {
		if r.enabled[TargetClassicCall] {
			cmds = append(cmds, Command{Target: TargetClassicCall})
		}
		r.clearRoles(device.RoleClassicCall)
	}
	return cmds
}

func (r *resolver) onDisconnected(ev event.Event) []Command {
	addr := ev.Addr
	r.caps[addr] = r.caps[addr].Without(ev.Profile)
	if r.caps[addr] == 0 {
		delete(r.caps, addr)
	}
	if !r.groupStillConnected(addr, ev.Group) {
		r.stacks[ev.Group].Remove(addr)
	}

	switch ev.Group {
	case device.GroupHearingAid:
		if r.active[device.RoleHearingAid] != addr {
			return nil
		}
		if tail, ok := r.stacks[device.GroupHearingAid].Tail(); ok {
			r.active[device.RoleHearingAid] = tail
			if r.enabled[TargetHearingAid] {
				return []Command{{Target: TargetHearingAid, Addr: tail}}
			}
			return nil
		}
		return r.crossGroupFallback(TargetHearingAid)

	case device.GroupLEAudio:
		if r.active[device.RoleLEAudioMedia] != addr && r.active[device.RoleLEAudioCall] != addr {
			return nil
		}
		if tail, ok := r.stacks[device.GroupLEAudio].Tail(); ok {
			r.active[device.RoleLEAudioMedia] = tail
			r.active[device.RoleLEAudioCall] = tail
			if r.enabled[TargetLEAudio] {
				return []Command{{Target: TargetLEAudio, Addr: tail}}
			}
			return nil
		}
		return r.crossGroupFallback(TargetLEAudio)

	case device.GroupClassicMediaCall:
		switch ev.Profile {
		case device.ProfileClassicMedia:
			if r.active[device.RoleClassicMedia] != addr {
				return nil
			}
			if fb := r.classicMediaFallback(); !fb.IsNil() && fb != addr {
				r.active[device.RoleClassicMedia] = fb
				if r.enabled[TargetClassicMedia] {
					return []Command{{Target: TargetClassicMedia, Addr: fb}}
				}
				return nil
			}
			return r.crossGroupFallback(TargetClassicMedia)
		case device.ProfileClassicCall:
			if r.active[device.RoleClassicCall] != addr {
				return nil
			}
			if fb := r.classicCallFallback(); !fb.IsNil() && fb != addr {
				r.active[device.RoleClassicCall] = fb
				if r.enabled[TargetClassicCall] {
					return []Command{{Target: TargetClassicCall, Addr: fb}}
				}
				return nil
			}
			return r.crossGroupFallback(TargetClassicCall)
		}
	}
	return nil
}

func (r *resolver) classicMediaFallback() device.MacAddress {
	if r.svc.ClassicMedia == nil {
		return device.MacAddress{}
	}
	return r.svc.ClassicMedia.FallbackDevice()
}

func (r *resolver) classicCallFallback() device.MacAddress {
	if r.svc.ClassicCall == nil {
		return device.MacAddress{}
	}
	return r.svc.ClassicCall.FallbackDevice()
}

// markedLECandidate returns the most recently connected LE device carrying
// the hearing-aid mark.
func (r *resolver) markedLECandidate() (device.MacAddress, bool) {
	devs := r.stacks[device.GroupLEAudio].Devices()
	for i := len(devs) - 1; i >= 0; i-- {
		if r.marked(devs[i]) {
			return devs[i], true
		}
	}
	return device.MacAddress{}, false
}

// crossGroupFallback reassigns a lost role when its own group has no
// candidate left. Hearing-tier devices take over outright; otherwise the
// sibling Tier-1 group supplies the most recently connected device; failing
// everything, the role clears to none.
func (r *resolver) crossGroupFallback(lost Target) []Command {
	clearLost := func(suppress bool) Command {
		return Command{Target: lost, SuppressNoise: suppress && lost != TargetClassicCall}
	}
	clearLostState := func() {
		switch lost {
		case TargetClassicMedia:
			r.clearRoles(device.RoleClassicMedia)
		case TargetClassicCall:
			r.clearRoles(device.RoleClassicCall)
		case TargetHearingAid:
			r.clearRoles(device.RoleHearingAid)
		case TargetLEAudio:
			r.clearRoles(device.RoleLEAudioMedia, device.RoleLEAudioCall)
		}
	}

	if lost != TargetLEAudio && r.enabled[TargetLEAudio] {
		if m, ok := r.markedLECandidate(); ok {
			clearLostState()
			cmds := r.takeoverHearingTier(TargetLEAudio, m)
			return cmds
		}
	}
	if lost != TargetHearingAid && r.enabled[TargetHearingAid] {
		if tail, ok := r.stacks[device.GroupHearingAid].Tail(); ok {
			clearLostState()
			return r.takeoverHearingTier(TargetHearingAid, tail)
		}
	}

	var candidates []device.MacAddress
	switch lost {
	case TargetClassicMedia, TargetClassicCall:
		candidates = r.stacks[device.GroupLEAudio].Devices()
	case TargetLEAudio:
		candidates = r.stacks[device.GroupClassicMediaCall].Devices()
	case TargetHearingAid:
		candidates = append(r.stacks[device.GroupClassicMediaCall].Devices(),
			r.stacks[device.GroupLEAudio].Devices()...)
	}

	pick, ok := r.pickMostRecent(candidates)
	if !ok {
		clearLostState()
		if r.enabled[lost] {
			return []Command{clearLost(false)}
		}
		return nil
	}

	clearLostState()
	var cmds []Command
	if r.enabled[lost] {
		cmds = append(cmds, clearLost(true))
	}
	cmds = append(cmds, r.activateTier1(pick)...)
	return cmds
}

// activateTier1 activates a Tier-1 device in its own group for the duties it
// advertises under the current mode.
func (r *resolver) activateTier1(addr device.MacAddress) []Command {
	var cmds []Command
	if r.caps[addr].Has(device.ProfileLEAudio) {
		if r.enabled[TargetLEAudio] && r.active[device.RoleLEAudioMedia] != addr {
			cmds = append(cmds, Command{Target: TargetLEAudio, Addr: addr})
		}
		// An LE device covers both duties, so a classic sibling still holding
		// a role must yield it.
		cmds = append(cmds, r.clearClassicRoles(true)...)
		r.active[device.RoleLEAudioMedia] = addr
		r.active[device.RoleLEAudioCall] = addr
		return cmds
	}
	assign := audiomode.Assign(audiomode.Capabilities{
		Media: r.caps[addr].Has(device.ProfileClassicMedia),
		Call:  r.caps[addr].Has(device.ProfileClassicCall),
	}, r.mode)
	if assign.Media {
		if r.enabled[TargetClassicMedia] && r.active[device.RoleClassicMedia] != addr {
			cmds = append(cmds, Command{Target: TargetClassicMedia, Addr: addr})
		}
		r.active[device.RoleClassicMedia] = addr
	}
	if assign.Call {
		if r.enabled[TargetClassicCall] && r.active[device.RoleClassicCall] != addr {
			cmds = append(cmds, Command{Target: TargetClassicCall, Addr: addr})
		}
		r.active[device.RoleClassicCall] = addr
	}
	return cmds
}

// pickMostRecent chooses the most recently connected candidate, consulting
// the connectivity database when more than one is in play.
func (r *resolver) pickMostRecent(candidates []device.MacAddress) (device.MacAddress, bool) {
	switch len(candidates) {
	case 0:
		return device.MacAddress{}, false
	case 1:
		return candidates[0], true
	}
	if r.recent != nil {
		pick, ok, err := r.recent.MostRecentlyConnected(context.Background(), candidates)
		if err != nil {
			r.log.Warn("recency lookup failed, using connection order",
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the recency database file"),
				logging.String(logging.FieldImpact, "fallback tie-break degrades to stack order"))
		} else if ok {
			return pick, true
		}
	}
	// Stacks append on connect, so the last candidate is the freshest.
	return candidates[len(candidates)-1], true
}

func (r *resolver) onActiveChanged(ev event.Event) []Command {
	addr := ev.Addr
	roles := rolesForProfile(ev.Profile)
	if len(roles) == 0 {
		return nil
	}

	same := true
	for _, role := range roles {
		if r.active[role] != addr {
			same = false
			break
		}
	}
	if same {
		// Redundant acknowledgement of state the engine already holds.
		return nil
	}

	if addr.IsNil() {
		r.clearRoles(roles...)
		return nil
	}

	r.caps[addr] = r.caps[addr].With(ev.Profile)
	r.stacks[ev.Group].Push(addr)
	for _, role := range roles {
		r.active[role] = addr
	}

	// The owning group selected the device itself, so it is never
	// re-commanded; only the exclusivity consequences go out.
	var cmds []Command
	clear := func(t Target, roles ...device.Role) {
		occupied := false
		for _, role := range roles {
			if !r.active[role].IsNil() {
				occupied = true
			}
		}
		if !occupied {
			return
		}
		if r.enabled[t] {
			cmds = append(cmds, Command{Target: t, SuppressNoise: t != TargetClassicCall})
		}
		r.clearRoles(roles...)
	}

	switch ev.Group {
	case device.GroupHearingAid:
		clear(TargetClassicMedia, device.RoleClassicMedia)
		clear(TargetClassicCall, device.RoleClassicCall)
		clear(TargetLEAudio, device.RoleLEAudioMedia, device.RoleLEAudioCall)
	case device.GroupLEAudio:
		clear(TargetClassicMedia, device.RoleClassicMedia)
		clear(TargetClassicCall, device.RoleClassicCall)
		clear(TargetHearingAid, device.RoleHearingAid)
	case device.GroupClassicMediaCall:
		clear(TargetHearingAid, device.RoleHearingAid)
		clear(TargetLEAudio, device.RoleLEAudioMedia, device.RoleLEAudioCall)
	}
	return cmds
}

func (r *resolver) onAudioModeChanged(ev event.Event) []Command {
	if ev.Mode == r.mode {
		return nil
	}
	r.mode = ev.Mode
	if r.hearingTierActive() {
		// The hearing-aid role is mode-insensitive.
		return nil
	}

	cmAddr := r.classicCandidate(device.ProfileClassicMedia)
	ccAddr := r.classicCandidate(device.ProfileClassicCall)
	leAddr := r.active[device.RoleLEAudioMedia]
	if leAddr.IsNil() {
		leAddr, _ = r.stacks[device.GroupLEAudio].Tail()
	}

	red := audiomode.Redistribute(r.mode,
		!cmAddr.IsNil() && r.enabled[TargetClassicMedia],
		!ccAddr.IsNil() && r.enabled[TargetClassicCall],
		!leAddr.IsNil() && r.enabled[TargetLEAudio])

	var cmds []Command
	if red.ClearLEAudio && !r.active[device.RoleLEAudioMedia].IsNil() {
		cmds = append(cmds, Command{Target: TargetLEAudio, SuppressNoise: true})
		r.clearRoles(device.RoleLEAudioMedia, device.RoleLEAudioCall)
	}
	if red.ActivateClassicCall && r.active[device.RoleClassicCall] != ccAddr {
		cmds = append(cmds, Command{Target: TargetClassicCall, Addr: ccAddr})
		r.active[device.RoleClassicCall] = ccAddr
	}
	if red.ActivateClassicMedia && r.active[device.RoleClassicMedia] != cmAddr {
		cmds = append(cmds, Command{Target: TargetClassicMedia, Addr: cmAddr})
		r.active[device.RoleClassicMedia] = cmAddr
	}
	if red.ActivateLEAudio {
		cmds = append(cmds, r.clearClassicRoles(true)...)
		if r.active[device.RoleLEAudioMedia] != leAddr {
			cmds = append(cmds, Command{Target: TargetLEAudio, Addr: leAddr})
			r.active[device.RoleLEAudioMedia] = leAddr
			r.active[device.RoleLEAudioCall] = leAddr
		}
	}
	return cmds
}

// classicCandidate returns the device best placed to hold the classic role
// for the profile: the current holder, else the freshest connected device
// advertising the profile.
func (r *resolver) classicCandidate(p device.Profile) device.MacAddress {
	role := device.RoleClassicMedia
	if p == device.ProfileClassicCall {
		role = device.RoleClassicCall
	}
	if !r.active[role].IsNil() {
		return r.active[role]
	}
	devs := r.stacks[device.GroupClassicMediaCall].Devices()
	for i := len(devs) - 1; i >= 0; i-- {
		if r.caps[devs[i]].Has(p) {
			return devs[i]
		}
	}
	return device.MacAddress{}
}

// onWiredAudio yields the entire Bluetooth arrangement, no tier exempt.
func (r *resolver) onWiredAudio() []Command {
	var cmds []Command
	for _, t := range []Target{TargetClassicMedia, TargetClassicCall, TargetHearingAid, TargetLEAudio} {
		if r.enabled[t] {
			cmds = append(cmds, Command{Target: t})
		}
	}
	r.clearRoles(device.RoleClassicMedia, device.RoleClassicCall,
		device.RoleHearingAid, device.RoleLEAudioMedia, device.RoleLEAudioCall)
	return cmds
}
