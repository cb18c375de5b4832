package auth_test

import (
	"github.com/frahmantamala/motors-dealership/internal/auth"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("BcryptHasher", func() {
	var hasher *auth.BcryptHasher

	BeforeEach(func() {
		hasher = auth.NewBcryptHasher(auth.DefaultBcryptCost)
	})

	It("produces a salted hash that verifies", func() {
		first, err := hasher.Hash("Abc123!@#x")
		Expect(err).NotTo(HaveOccurred())
		second, err := hasher.Hash("Abc123!@#x")
		Expect(err).NotTo(HaveOccurred())

		Expect(first).NotTo(Equal("Abc123!@#x"))
		Expect(first).NotTo(Equal(second))
		Expect(hasher.Verify("Abc123!@#x", first)).To(BeTrue())
		Expect(hasher.Verify("Abc123!@#y", first)).To(BeFalse())
	})

	It("fails closed on malformed hashes", func() {
		Expect(hasher.Verify("Abc123!@#x", "")).To(BeFalse())
		Expect(hasher.Verify("Abc123!@#x", "not-a-bcrypt-hash")).To(BeFalse())
	})

	It("falls back to the default cost for out of range values", func() {
		Expect(auth.NewBcryptHasher(1).Cost).To(Equal(auth.DefaultBcryptCost))
	})

	It("refuses empty passwords", func() {
		_, err := hasher.Hash("")
		Expect(err).To(HaveOccurred())
	})
})
