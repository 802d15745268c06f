package license

import "errors"

var (
	// ErrNotLicensed is returned by anything that needs an approved credential.
	ErrNotLicensed = errors.New("not licensed")
	// ErrLicenseRevoked means a previously approved credential was revoked or expired.
	ErrLicenseRevoked = errors.New("license revoked")

	ErrInvalidCredential     = errors.New("invalid credential")
	ErrAuthorityUnavailable  = errors.New("license authority unavailable")
	ErrRevocationUnavailable = errors.New("revocation store unavailable")
)
