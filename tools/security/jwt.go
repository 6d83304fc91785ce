package security

import (
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"linguachat/tools/errs"
)

// Options controls signing and TTL.
type Options struct {
	Secret []byte
	TTL    time.Duration // default 24h
}

func DefaultOptions(secret []byte) Options {
	return Options{Secret: secret, TTL: 24 * time.Hour}
}

// Generate signs an HS256 token whose subject is the stable user id the
// identity provider resolved.
func Generate(opts Options, userID string) (string, time.Time, error) {
	if opts.TTL <= 0 {
		opts.TTL = 24 * time.Hour
	}
	now := time.Now()
	exp := now.Add(opts.TTL)

	claims := jwtlib.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"nbf": now.Unix(),
		"exp": exp.Unix(),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(opts.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// Verify parses the token and returns the user id it vouches for. Only the
// HMAC family is accepted.
func Verify(opts Options, token string) (string, error) {
	parsed, err := jwtlib.Parse(token, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errs.ErrToken.WrapMsg("unexpected alg")
		}
		return opts.Secret, nil
	})
	if err != nil || !parsed.Valid {
		return "", errs.ErrToken
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errs.ErrToken
	}
	return sub, nil
}
