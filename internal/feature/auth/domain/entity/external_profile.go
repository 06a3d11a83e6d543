package entity

// ExternalProfile is the identity a provider vouched for after a successful code exchange.
type ExternalProfile struct {
	Provider  string
	Subject   string
	Email     string
	Name      string
	AvatarURL string
}
