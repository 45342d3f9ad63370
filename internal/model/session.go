package model

// UnknownID marks an id that has not been set. It appears only in Session
// snapshots; the credential store reports absent ids as ok == false.
const UnknownID int64 = -1

// Identity is the group of user fields written together on sign-in.
type Identity struct {
	UserID           int64
	Username         string
	RoleID           int64
	SubscriptionTier int
}

// Session is a point-in-time copy of the stored session record.
type Session struct {
	Token            string
	UserID           int64
	Username         string
	RoleID           int64
	SubscriptionTier int
}

// LoggedIn reports whether the snapshot carries a token.
func (s Session) LoggedIn() bool {
	return s.Token != ""
}

// LoggedOut returns the empty record.
func LoggedOut() Session {
	return Session{UserID: UnknownID, RoleID: UnknownID}
}
