package auth_test

import (
	"context"
	"time"

	"github.com/frahmantamala/motors-dealership/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SessionIssuer", func() {
	var (
		ctx    context.Context
		clock  *fakeClock
		store  *MemorySessionStore
		issuer *auth.SessionIssuer
	)

	BeforeEach(func() {
		ctx = context.Background()
		clock = newFakeClock()
		store = NewMemorySessionStore()
		issuer = auth.NewSessionIssuer(store, time.Hour).WithClock(clock.Now)
	})

	It("stores only the hash of the opaque key", func() {
		cred, err := issuer.Issue(ctx, jane)
		Expect(err).NotTo(HaveOccurred())
		Expect(cred.Value).To(HaveLen(43))

		_, _, err = store.Find(ctx, cred.Value)
		Expect(err).To(MatchError(auth.ErrSessionNotFound))
		_, _, err = store.Find(ctx, auth.HashSessionKey(cred.Value))
		Expect(err).NotTo(HaveOccurred())
	})

	It("round-trips the identity snapshot", func() {
		cred, err := issuer.Issue(ctx, jane)
		Expect(err).NotTo(HaveOccurred())

		got, err := issuer.Validate(ctx, cred.Value)
		Expect(err).NotTo(HaveOccurred())
		Expect(*got).To(Equal(jane))
	})

	It("hands out a distinct key per login", func() {
		a, err := issuer.Issue(ctx, jane)
		Expect(err).NotTo(HaveOccurred())
		b, err := issuer.Issue(ctx, jane)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Value).NotTo(Equal(b.Value))
	})

	It("rejects expired sessions and drops them", func() {
		cred, err := issuer.Issue(ctx, jane)
		Expect(err).NotTo(HaveOccurred())

		clock.Advance(time.Hour)
		_, err = issuer.Validate(ctx, cred.Value)
		Expect(err).To(MatchError(auth.ErrCredentialExpired))
		Expect(store.Len()).To(BeZero())
	})

	It("treats unknown and absent keys as invalid", func() {
		_, err := issuer.Validate(ctx, "")
		Expect(err).To(MatchError(auth.ErrCredentialAbsent))
		_, err = issuer.Validate(ctx, "unknown")
		Expect(err).To(MatchError(auth.ErrCredentialInvalid))
	})

	It("revokes idempotently", func() {
		cred, err := issuer.Issue(ctx, jane)
		Expect(err).NotTo(HaveOccurred())

		Expect(issuer.Revoke(ctx, cred.Value)).To(Succeed())
		Expect(issuer.Revoke(ctx, cred.Value)).To(Succeed())
		Expect(issuer.Revoke(ctx, "")).To(Succeed())

		_, err = issuer.Validate(ctx, cred.Value)
		Expect(err).To(MatchError(auth.ErrCredentialInvalid))
		Expect(issuer.CookieName()).To(Equal("session_id"))
	})

	It("revokes every session of one account", func() {
		other := jane
		other.ID = jane.ID + 1
		first, err := issuer.Issue(ctx, jane)
		Expect(err).NotTo(HaveOccurred())
		_, err = issuer.Issue(ctx, jane)
		Expect(err).NotTo(HaveOccurred())
		kept, err := issuer.Issue(ctx, other)
		Expect(err).NotTo(HaveOccurred())

		var revoker auth.AccountRevoker = issuer
		Expect(revoker.RevokeAccount(ctx, jane.ID)).To(Succeed())

		Expect(store.Len()).To(Equal(1))
		_, err = issuer.Validate(ctx, first.Value)
		Expect(err).To(MatchError(auth.ErrCredentialInvalid))
		identity, err := issuer.Validate(ctx, kept.Value)
		Expect(err).NotTo(HaveOccurred())
		Expect(identity.ID).To(Equal(other.ID))
	})
})
