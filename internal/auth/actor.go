package auth

import "fmt"

// Actor is whoever issues a request: a band owner signed in with a user
// account, or a band member holding an access token. The set of variants is
// closed; callers switch on the concrete type.
type Actor interface {
	actor()
	// Kind names the variant for logs and metrics.
	Kind() string
}

// Owner is a signed-in user. Owners have full access to the bands they own.
type Owner struct {
	UserID int64
}

// Member is a band member authenticated by token. Members may only read
// their own band.
type Member struct {
	MemberID string
	BandID   string
}

func (Owner) actor()  {}
func (Member) actor() {}

func (Owner) Kind() string  { return "owner" }
func (Member) Kind() string { return "member" }

func (o Owner) String() string  { return fmt.Sprintf("owner(%d)", o.UserID) }
func (m Member) String() string { return fmt.Sprintf("member(%s@%s)", m.MemberID, m.BandID) }

// OwnerID returns the user id when a is an Owner.
func OwnerID(a Actor) (int64, bool) {
	o, ok := a.(Owner)
	if !ok {
		return 0, false
	}
	return o.UserID, true
}
