package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTrackingCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		code := NewTrackingCode()

		assert.True(t, strings.HasPrefix(code, TrackingPrefix), "code %q missing prefix", code)
		suffix := strings.TrimPrefix(code, TrackingPrefix)
		assert.Len(t, suffix, 8)
		for _, r := range suffix {
			assert.Contains(t, trackingAlphabet, string(r))
		}

		seen[code] = true
	}
	// 100 draws from a 36^8 space should never collide.
	assert.Len(t, seen, 100)
}

func TestStatusMessage(t *testing.T) {
	tests := []struct {
		status  IssueStatus
		message string
	}{
		{StatusPending, "Issue is pending review"},
		{StatusInProgress, "Issue is now in progress"},
		{StatusWorking, "Work on the issue has started"},
		{StatusResolved, "Issue marked as resolved"},
		{StatusClosed, "Issue has been closed"},
		{IssueStatus("escalated"), ""},
		{IssueStatus(""), ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.message, StatusMessage(tt.status), "status %q", tt.status)
	}
}

func TestActorPredicates(t *testing.T) {
	admin := Actor{Role: RoleAdminActor, Active: true}
	assert.True(t, admin.IsAdmin())
	assert.False(t, admin.IsActiveStaff())
	assert.Equal(t, "Admin", admin.TimelineLabel())

	staff := Actor{Role: RoleStaffActor, Active: true}
	assert.True(t, staff.IsActiveStaff())
	assert.False(t, staff.IsAdmin())
	assert.Equal(t, "Staff", staff.TimelineLabel())

	inactiveStaff := Actor{Role: RoleStaffActor, Active: false}
	assert.False(t, inactiveStaff.IsActiveStaff())

	citizen := Actor{Role: RoleCitizenActor, Active: true}
	assert.True(t, citizen.IsActiveCitizen())
	assert.Equal(t, "Citizen", citizen.TimelineLabel())

	blocked := Actor{Role: RoleCitizenActor, Active: false}
	assert.False(t, blocked.IsActiveCitizen())

	unknown := Actor{Role: RoleUnknownActor}
	assert.False(t, unknown.IsAdmin())
	assert.False(t, unknown.IsActiveStaff())
	assert.False(t, unknown.IsActiveCitizen())
}
