package device

// Profile identifies a single audio profile an endpoint can connect on.
type Profile uint8

const (
	ProfileUnknown Profile = iota
	ProfileClassicMedia
	ProfileClassicCall
	ProfileHearingAid
	ProfileLEAudio
	ProfileLEHearingAid
)

var profileNames = map[Profile]string{
	ProfileUnknown:      "unknown",
	ProfileClassicMedia: "classic-media",
	ProfileClassicCall:  "classic-call",
	ProfileHearingAid:   "hearing-aid",
	ProfileLEAudio:      "le-audio",
	ProfileLEHearingAid: "le-hearing-aid",
}

func (p Profile) String() string {
	if name, ok := profileNames[p]; ok {
		return name
	}
	return "unknown"
}

// Group returns the profile group the profile belongs to for arbitration
// purposes. ProfileLEHearingAid is an availability channel rather than a
// routable group and maps to GroupLEAudio, where its marks take effect.
func (p Profile) Group() Group {
	switch p {
	case ProfileClassicMedia, ProfileClassicCall:
		return GroupClassicMediaCall
	case ProfileHearingAid:
		return GroupHearingAid
	case ProfileLEAudio, ProfileLEHearingAid:
		return GroupLEAudio
	default:
		return GroupUnknown
	}
}

// Membership is a profile bitset tracking which profiles a device is
// currently connected (or, for LE hearing aid capability, available) on.
type Membership uint8

// Bit returns the membership bit for a profile.
func (p Profile) Bit() Membership {
	switch p {
	case ProfileClassicMedia:
		return 1 << 0
	case ProfileClassicCall:
		return 1 << 1
	case ProfileHearingAid:
		return 1 << 2
	case ProfileLEAudio:
		return 1 << 3
	case ProfileLEHearingAid:
		return 1 << 4
	default:
		return 0
	}
}

// Has reports whether the membership includes the profile.
func (m Membership) Has(p Profile) bool { return m&p.Bit() != 0 }

// With returns the membership with the profile bit set.
func (m Membership) With(p Profile) Membership { return m | p.Bit() }

// Without returns the membership with the profile bit cleared.
func (m Membership) Without(p Profile) Membership { return m &^ p.Bit() }

// Group identifies a set of profiles that arbitrate as one unit.
type Group uint8

const (
	GroupUnknown Group = iota
	// GroupHearingAid is Tier 0: it preempts every Tier-1 group.
	GroupHearingAid
	// GroupClassicMediaCall pairs the classic media and call roles (Tier 1).
	GroupClassicMediaCall
	// GroupLEAudio carries unified LE media and call roles (Tier 1).
	GroupLEAudio
)

var groupNames = map[Group]string{
	GroupUnknown:          "unknown",
	GroupHearingAid:       "hearing-aid",
	GroupClassicMediaCall: "classic-media-call",
	GroupLEAudio:          "le-audio",
}

func (g Group) String() string {
	if name, ok := groupNames[g]; ok {
		return name
	}
	return "unknown"
}

// Tier returns the precedence level of the group. Lower preempts higher.
func (g Group) Tier() int {
	if g == GroupHearingAid {
		return 0
	}
	return 1
}

// Role is a single audio duty a device can be designated to carry.
// HearingAid is a combined media+call role; the Tier-1 groups split the duty
// into separate media and call roles.
type Role uint8

const (
	RoleClassicMedia Role = iota
	RoleClassicCall
	RoleHearingAid
	RoleLEAudioMedia
	RoleLEAudioCall

	// NumRoles is the number of distinct roles.
	NumRoles = int(RoleLEAudioCall) + 1
)

var roleNames = [NumRoles]string{
	RoleClassicMedia: "classic-media",
	RoleClassicCall:  "classic-call",
	RoleHearingAid:   "hearing-aid",
	RoleLEAudioMedia: "le-audio-media",
	RoleLEAudioCall:  "le-audio-call",
}

func (r Role) String() string {
	if int(r) < NumRoles {
		return roleNames[r]
	}
	return "unknown"
}

// ParseRole maps a role name back to its Role. Used by the CLI and IPC layer.
func ParseRole(s string) (Role, bool) {
	for i, name := range roleNames {
		if name == s {
			return Role(i), true
		}
	}
	return 0, false
}

// Group returns the group that serves the role.
func (r Role) Group() Group {
	switch r {
	case RoleClassicMedia, RoleClassicCall:
		return GroupClassicMediaCall
	case RoleHearingAid:
		return GroupHearingAid
	case RoleLEAudioMedia, RoleLEAudioCall:
		return GroupLEAudio
	default:
		return GroupUnknown
	}
}

// Roles lists every role, in stable order.
func Roles() [NumRoles]Role {
	return [NumRoles]Role{RoleClassicMedia, RoleClassicCall, RoleHearingAid, RoleLEAudioMedia, RoleLEAudioCall}
}
