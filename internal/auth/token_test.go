package auth_test

import (
	"context"
	"strings"
	"time"

	"github.com/frahmantamala/motors-dealership/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TokenIssuer", func() {
	var (
		ctx    context.Context
		clock  *fakeClock
		issuer *auth.TokenIssuer
	)

	BeforeEach(func() {
		ctx = context.Background()
		clock = newFakeClock()
		issuer = auth.NewTokenIssuer(testSecret, time.Hour).WithClock(clock.Now)
	})

	It("round-trips the identity snapshot", func() {
		cred, err := issuer.Issue(ctx, jane)
		Expect(err).NotTo(HaveOccurred())
		Expect(cred.ExpiresAt).To(Equal(clock.Now().Add(time.Hour)))

		got, err := issuer.Validate(ctx, cred.Value)
		Expect(err).NotTo(HaveOccurred())
		Expect(*got).To(Equal(jane))
	})

	It("never embeds password material in the claims", func() {
		cred, err := issuer.Issue(ctx, jane)
		Expect(err).NotTo(HaveOccurred())

		claims := jwt.MapClaims{}
		_, _, err = jwt.NewParser().ParseUnverified(cred.Value, claims)
		Expect(err).NotTo(HaveOccurred())
		for key := range claims {
			Expect(strings.ToLower(key)).NotTo(ContainSubstring("password"))
		}
		Expect(claims).To(HaveKeyWithValue("email", "jane@example.com"))
	})

	It("reports expiry once the TTL has elapsed", func() {
		cred, err := issuer.Issue(ctx, jane)
		Expect(err).NotTo(HaveOccurred())

		clock.Advance(time.Hour + time.Second)
		_, err = issuer.Validate(ctx, cred.Value)
		Expect(err).To(MatchError(auth.ErrCredentialExpired))
	})

	It("distinguishes absent and tampered tokens", func() {
		_, err := issuer.Validate(ctx, "")
		Expect(err).To(MatchError(auth.ErrCredentialAbsent))

		cred, err := issuer.Issue(ctx, jane)
		Expect(err).NotTo(HaveOccurred())
		other := auth.NewTokenIssuer("ffffffffffffffffffffffffffffffff", time.Hour).WithClock(clock.Now)
		_, err = other.Validate(ctx, cred.Value)
		Expect(err).To(MatchError(auth.ErrCredentialInvalid))

		_, err = issuer.Validate(ctx, "garbage")
		Expect(err).To(MatchError(auth.ErrCredentialInvalid))
	})

	It("rejects tokens signed with another algorithm", func() {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
			"account_id": 1,
			"role":       "Admin",
			"exp":        clock.Now().Add(time.Hour).Unix(),
		})
		value, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		Expect(err).NotTo(HaveOccurred())

		_, err = issuer.Validate(ctx, value)
		Expect(err).To(MatchError(auth.ErrCredentialInvalid))
	})

	It("treats revoke as a no-op that leaves the token usable until expiry", func() {
		cred, err := issuer.Issue(ctx, jane)
		Expect(err).NotTo(HaveOccurred())
		Expect(issuer.Revoke(ctx, cred.Value)).To(Succeed())
		Expect(issuer.Revoke(ctx, cred.Value)).To(Succeed())

		_, err = issuer.Validate(ctx, cred.Value)
		Expect(err).NotTo(HaveOccurred())
		Expect(issuer.CookieName()).To(Equal("jwt"))
	})
})
