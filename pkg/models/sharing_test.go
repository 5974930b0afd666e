package models

import (
	"testing"
	"time"
)

func TestPermissionIsValid(t *testing.T) {
	for _, p := range []Permission{PermissionView, PermissionComment, PermissionEdit} {
		if !p.IsValid() {
			t.Fatalf("%q should be valid", p)
		}
	}
	for _, p := range []Permission{"", "admin", "owner"} {
		if p.IsValid() {
			t.Fatalf("%q should be invalid", p)
		}
	}
}

func TestInvitationIsPending(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name string
		inv  ShareInvitation
		want bool
	}{
		{"pending and live", ShareInvitation{Status: InvitationPending, ExpiresAt: now.Add(time.Hour)}, true},
		{"pending but expired", ShareInvitation{Status: InvitationPending, ExpiresAt: now.Add(-time.Hour)}, false},
		{"accepted", ShareInvitation{Status: InvitationAccepted, ExpiresAt: now.Add(time.Hour)}, false},
		{"declined", ShareInvitation{Status: InvitationDeclined, ExpiresAt: now.Add(time.Hour)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.inv.IsPending(); got != tt.want {
				t.Fatalf("IsPending() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShareLinkIsValid(t *testing.T) {
	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)
	two := 2

	tests := []struct {
		name string
		link ShareLink
		want bool
	}{
		{"active, no limits", ShareLink{IsActive: true}, true},
		{"inactive", ShareLink{IsActive: false}, false},
		{"not yet expired", ShareLink{IsActive: true, ExpiresAt: &future}, true},
		{"expired", ShareLink{IsActive: true, ExpiresAt: &past}, false},
		{"under use limit", ShareLink{IsActive: true, MaxUses: &two, CurrentUses: 1}, true},
		{"at use limit", ShareLink{IsActive: true, MaxUses: &two, CurrentUses: 2}, false},
		{"over use limit", ShareLink{IsActive: true, MaxUses: &two, CurrentUses: 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.link.IsValid(); got != tt.want {
				t.Fatalf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}
