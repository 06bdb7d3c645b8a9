package model

// InviteInfo is the usage metadata kept per invite code in a guild snapshot.
type InviteInfo struct {
	Code       string
	Uses       int
	MaxUses    int
	InviterID  string
	InviterTag string
	ChannelID  string
	Temporary  bool
	MaxAge     int
}

// JoinAttribution records which invite a member-join event was traced to.
// Code and InviterTag fall back to the "Unknown" sentinel when the diff
// produced no candidate.
type JoinAttribution struct {
	Code       string
	InviterID  string
	InviterTag string
}

const UnknownAttribution = "Unknown"

// VanityInviter is the inviter shown when a join is traced to the guild's
// vanity URL, which has no specific inviter.
const VanityInviter = "Vanity URL"

// UnknownJoin is the attribution used when no invite could be inferred.
func UnknownJoin() JoinAttribution {
	return JoinAttribution{Code: UnknownAttribution, InviterTag: UnknownAttribution}
}
