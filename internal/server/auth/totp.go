package auth

import (
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTP parameters. Skew 2 accepts codes from two 30 s steps either side of
// now to absorb clock drift on the admin's device.
const (
	TOTPPeriod = 30
	TOTPSkew   = 2
)

// TOTPOpts are the validation options shared by the verifier and the admin tool.
func TOTPOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    TOTPPeriod,
		Skew:      TOTPSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// TOTPGenerateOpts are TOTPOpts without skew, for minting a code.
func TOTPGenerateOpts() totp.ValidateOpts {
	opts := TOTPOpts()
	opts.Skew = 0
	return opts
}

type TOTPVerifier struct {
	opts totp.ValidateOpts
}

func NewTOTPVerifier() *TOTPVerifier {
	return &TOTPVerifier{opts: TOTPOpts()}
}

// Verify reports whether code is valid for secret at the given time.
func (v *TOTPVerifier) Verify(code, secret string, at time.Time) bool {
	code = strings.ReplaceAll(strings.TrimSpace(code), " ", "")
	if len(code) != v.opts.Digits.Length() || secret == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, secret, at.UTC(), v.opts)
	return err == nil && ok
}
