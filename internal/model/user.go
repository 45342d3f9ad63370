package model

// Role ids as assigned by the backend.
const (
	RoleOwner    int64 = 1
	RoleSupplier int64 = 2
)

type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	RoleID       int64  `json:"roleId"`
	Subscription int    `json:"subscription"`
}

// Identity returns the fields the credential store keeps for u.
func (u User) Identity() Identity {
	return Identity{
		UserID:           u.ID,
		Username:         u.Username,
		RoleID:           u.RoleID,
		SubscriptionTier: u.Subscription,
	}
}

type Profile struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"userId"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Company  string `json:"businessName"`
	Ruc      string `json:"ruc"`
	ImageURL string `json:"profileImageUrl,omitempty"`
}
