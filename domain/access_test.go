package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEvaluate_Public_Room(t *testing.T) {
	req := require.New(t)
	room := Room{
		ID:      "room-1",
		OwnerID: "owner",
		Private: false,
		Members: []UserID{"owner", "member"},
	}

	// Existing members are admitted with no state change
	req.Equal(Admit, Evaluate(room, "owner"))
	req.Equal(Admit, Evaluate(room, "member"))

	// A stranger is admitted but must be recorded as a member
	req.Equal(AdmitAutoJoin, Evaluate(room, "stranger"))
}

func TestEvaluate_Private_Room(t *testing.T) {
	req := require.New(t)
	room := Room{
		ID:      "room-1",
		OwnerID: "owner",
		Private: true,
		Members: []UserID{"owner", "member"},
	}

	req.Equal(Admit, Evaluate(room, "member"))
	req.Equal(Deny, Evaluate(room, "stranger"))
}

func TestEvaluate_Owner_Is_Never_Denied(t *testing.T) {
	req := require.New(t)

	// The member set does not list the owner explicitly
	room := Room{
		ID:      "room-1",
		OwnerID: "owner",
		Private: true,
		Members: []UserID{"member"},
	}

	// The implicit owner membership admits without auto-join
	req.Equal(Admit, Evaluate(room, "owner"))
}
