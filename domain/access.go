package domain

// Decision is the outcome of an admission check for a (room, user) pair.
type Decision int

const (
	// Deny refuses admission. No state change.
	Deny Decision = iota
	// Admit grants admission. No state change.
	Admit
	// AdmitAutoJoin grants admission to a public room the user is not yet a
	// member of. The caller must add the user to the member set through an
	// atomic store-level add-to-set before completing the join.
	AdmitAutoJoin
)

// Evaluate decides admission for a user requesting to join a room.
// It is a pure function: the only mutation it can require is the
// auto-join signalled by AdmitAutoJoin.
func Evaluate(room Room, userID UserID) Decision {
	if room.IsMember(userID) {
		return Admit
	}
	if room.Private {
		return Deny
	}
	return AdmitAutoJoin
}
