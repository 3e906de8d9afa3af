package domain

// KDFParams are the scrypt cost parameters used to stretch a passphrase.
type KDFParams struct {
	N int
	R int
	P int
}

// DefaultKDFParams is the cost envelopes are written with. Changing it makes
// previously stored envelopes undecryptable, since the parameters are not
// persisted per envelope.
var DefaultKDFParams = KDFParams{N: 16384, R: 8, P: 1}

// Validate rejects parameters scrypt would refuse.
func (p KDFParams) Validate() error {
	if p.N <= 1 || p.N&(p.N-1) != 0 {
		return ErrInvalidKDFParams
	}
	if p.R < 1 || p.P < 1 {
		return ErrInvalidKDFParams
	}
	return nil
}
