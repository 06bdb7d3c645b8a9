package invites

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moderation-bot/model"
)

type fakeLister struct {
	invites    []model.InviteInfo
	invitesErr error
	vanity     string
	vanityErr  error
}

func (f *fakeLister) GuildInvites(guildID string) ([]model.InviteInfo, error) {
	return f.invites, f.invitesErr
}

func (f *fakeLister) VanityURLCode(guildID string) (string, error) {
	return f.vanity, f.vanityErr
}

func invite(code string, uses int, inviterID, inviterTag string) model.InviteInfo {
	return model.InviteInfo{Code: code, Uses: uses, InviterID: inviterID, InviterTag: inviterTag}
}

func TestResolveJoinUsesIncrease(t *testing.T) {
	lister := &fakeLister{invites: []model.InviteInfo{
		invite("abc", 1, "inv1", "alice#0"),
		invite("def", 5, "inv2", "bob#0"),
	}}
	tr := NewTracker(lister, 0)
	require.NoError(t, tr.Refresh("g1"))

	lister.invites = []model.InviteInfo{
		invite("abc", 1, "inv1", "alice#0"),
		invite("def", 6, "inv2", "bob#0"),
	}

	a := tr.ResolveJoin("g1", "u1")
	assert.Equal(t, "def", a.Code)
	assert.Equal(t, "inv2", a.InviterID)
	assert.Equal(t, "bob#0", a.InviterTag)
}

func TestResolveJoinVanishedInvite(t *testing.T) {
	lister := &fakeLister{invites: []model.InviteInfo{
		invite("abc", 0, "inv1", "alice#0"),
	}}
	tr := NewTracker(lister, 0)
	require.NoError(t, tr.Refresh("g1"))

	// A single-use invite is consumed and disappears from the list.
	lister.invites = nil
	lister.vanityErr = errors.New("no vanity")

	a := tr.ResolveJoin("g1", "u1")
	assert.Equal(t, "abc", a.Code)
	assert.Equal(t, "inv1", a.InviterID)
}

func TestResolveJoinVanityFallback(t *testing.T) {
	lister := &fakeLister{vanity: "coolserver"}
	tr := NewTracker(lister, 0)
	require.NoError(t, tr.Refresh("g1"))

	a := tr.ResolveJoin("g1", "u1")
	assert.Equal(t, "coolserver", a.Code)
	assert.Equal(t, model.VanityInviter, a.InviterTag)
}

func TestResolveJoinUnknown(t *testing.T) {
	lister := &fakeLister{vanityErr: errors.New("no vanity")}
	tr := NewTracker(lister, 0)
	require.NoError(t, tr.Refresh("g1"))

	a := tr.ResolveJoin("g1", "u1")
	assert.Equal(t, model.UnknownJoin(), a)
}

func TestResolveJoinPrimesMissingSnapshot(t *testing.T) {
	lister := &fakeLister{
		invites:   []model.InviteInfo{invite("abc", 2, "inv1", "alice#0")},
		vanityErr: errors.New("no vanity"),
	}
	tr := NewTracker(lister, 0)

	// No Refresh beforehand: the same list is seen before and after, so the
	// join cannot be attributed.
	a := tr.ResolveJoin("g1", "u1")
	assert.Equal(t, model.UnknownJoin(), a)
}

func TestResolveJoinUpdatesSnapshot(t *testing.T) {
	lister := &fakeLister{invites: []model.InviteInfo{invite("abc", 1, "inv1", "alice#0")}}
	tr := NewTracker(lister, 0)
	require.NoError(t, tr.Refresh("g1"))

	lister.invites = []model.InviteInfo{invite("abc", 2, "inv1", "alice#0")}
	assert.Equal(t, "abc", tr.ResolveJoin("g1", "u1").Code)

	// The post-join list became the new baseline, so the next diff starts
	// from uses=2.
	lister.invites = []model.InviteInfo{invite("abc", 3, "inv1", "alice#0")}
	assert.Equal(t, "abc", tr.ResolveJoin("g1", "u2").Code)
}

func TestConsumeLeave(t *testing.T) {
	lister := &fakeLister{invites: []model.InviteInfo{invite("abc", 1, "inv1", "alice#0")}}
	tr := NewTracker(lister, 0)
	require.NoError(t, tr.Refresh("g1"))

	lister.invites = []model.InviteInfo{invite("abc", 2, "inv1", "alice#0")}
	tr.ResolveJoin("g1", "u1")

	a, ok := tr.ConsumeLeave("u1")
	require.True(t, ok)
	assert.Equal(t, "abc", a.Code)

	_, ok = tr.ConsumeLeave("u1")
	assert.False(t, ok)
}

func TestRefreshError(t *testing.T) {
	lister := &fakeLister{invitesErr: errors.New("boom")}
	tr := NewTracker(lister, 0)
	assert.Error(t, tr.Refresh("g1"))
}
