package entity

// PrincipalKind distinguishes how a principal authenticated.
type PrincipalKind int

const (
	// LocalUser signed in with a username and password.
	LocalUser PrincipalKind = iota + 1
	// ExternalUser signed in through an OAuth2 provider.
	ExternalUser
)

func (k PrincipalKind) String() string {
	switch k {
	case LocalUser:
		return "local"
	case ExternalUser:
		return "external"
	default:
		return "unknown"
	}
}

// Principal is the result of a successful login.
type Principal struct {
	Kind PrincipalKind
	User *User
}

// NewLocalPrincipal wraps a user authenticated by password.
func NewLocalPrincipal(u *User) Principal {
	return Principal{Kind: LocalUser, User: u}
}

// NewExternalPrincipal wraps a user authenticated by a provider.
func NewExternalPrincipal(u *User) Principal {
	return Principal{Kind: ExternalUser, User: u}
}

func (p Principal) Username() string        { return p.User.Username }
func (p Principal) Email() string           { return p.User.Email }
func (p Principal) FullName() string        { return p.User.FullName }
func (p Principal) ProfileImageURL() string { return p.User.ProfileImage() }
