package domain

import "time"

// OTPValidity is how long a generated code stays usable.
const OTPValidity = 10 * time.Minute

// OtpRecord is the single live one-time code for an email. A new code for the
// same email overwrites the previous record.
type OtpRecord struct {
	Email     string
	Code      string
	ExpiresAt time.Time
	Verified  bool
	CreatedAt time.Time
}

// Expired reports whether the record is no longer usable at now. The expiry
// instant itself already counts as expired.
func (o *OtpRecord) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
