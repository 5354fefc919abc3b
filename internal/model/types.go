package model

// SoftError is the renderable form of an upstream application-level failure.
// It is emitted as the command payload, with a zero exit code, so callers
// looping over wallets or venues can keep going.
type SoftError struct {
	Error string `json:"error"`
}

// Wallet is one address-book entry, unique by label.
type Wallet struct {
	Label   string `json:"label"`
	Address string `json:"address"`
}
