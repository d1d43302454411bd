package crypto_test

import (
	"bytes"
	"encoding/base64"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"galaxyco.ai/api-server/internal/crypto"
)

var _ = Describe("TokenCipher", func() {
	var cipher *crypto.TokenCipher

	key := bytes.Repeat([]byte{0x42}, 32)

	BeforeEach(func() {
		var err error
		cipher, err = crypto.NewTokenCipher(key)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewTokenCipher", func() {
		It("rejects keys that are not 32 bytes", func() {
			_, err := crypto.NewTokenCipher([]byte("short"))
			Expect(err).To(MatchError(crypto.ErrInvalidKey))

			_, err = crypto.NewTokenCipher(bytes.Repeat([]byte{0x01}, 64))
			Expect(err).To(MatchError(crypto.ErrInvalidKey))
		})
	})

	Describe("without a key", func() {
		It("refuses every call instead of panicking", func() {
			var unconfigured *crypto.TokenCipher

			_, err := unconfigured.Encrypt("access-token")
			Expect(err).To(MatchError(crypto.ErrNotConfigured))

			_, err = unconfigured.Decrypt("anything")
			Expect(err).To(MatchError(crypto.ErrNotConfigured))
		})
	})

	Describe("Encrypt", func() {
		It("round-trips arbitrary plaintexts", func() {
			for _, plaintext := range []string{
				"a",
				"access-token-xyz",
				"token with spaces and ünïcödé ⚡",
				string(bytes.Repeat([]byte("x"), 4096)),
			} {
				sealed, err := cipher.Encrypt(plaintext)
				Expect(err).NotTo(HaveOccurred())

				opened, err := cipher.Decrypt(sealed)
				Expect(err).NotTo(HaveOccurred())
				Expect(opened).To(Equal(plaintext))
			}
		})

		It("rejects empty plaintext", func() {
			_, err := cipher.Encrypt("")
			Expect(err).To(MatchError(crypto.ErrEmptyPlaintext))
		})

		It("produces a different payload for the same plaintext", func() {
			first, err := cipher.Encrypt("same-token")
			Expect(err).NotTo(HaveOccurred())
			second, err := cipher.Encrypt("same-token")
			Expect(err).NotTo(HaveOccurred())
			Expect(first).NotTo(Equal(second))
		})

		It("lays the payload out as IV, tag, ciphertext", func() {
			sealed, err := cipher.Encrypt("tok")
			Expect(err).NotTo(HaveOccurred())

			raw, err := base64.StdEncoding.DecodeString(sealed)
			Expect(err).NotTo(HaveOccurred())
			Expect(raw).To(HaveLen(12 + 16 + len("tok")))
		})
	})

	Describe("Decrypt", func() {
		It("fails on any single byte flip", func() {
			sealed, err := cipher.Encrypt("sensitive-token")
			Expect(err).NotTo(HaveOccurred())

			raw, err := base64.StdEncoding.DecodeString(sealed)
			Expect(err).NotTo(HaveOccurred())

			// Flip one byte in the IV, the tag, and the ciphertext regions.
			for _, i := range []int{0, 12, 12 + 16} {
				tampered := append([]byte(nil), raw...)
				tampered[i] ^= 0x01
				_, err := cipher.Decrypt(base64.StdEncoding.EncodeToString(tampered))
				Expect(err).To(MatchError(crypto.ErrDecryptionFailed), "byte %d", i)
			}
		})

		It("rejects payloads that are not base64", func() {
			_, err := cipher.Decrypt("!!! not base64 !!!")
			Expect(err).To(MatchError(crypto.ErrMalformedPayload))
		})

		It("rejects truncated payloads", func() {
			short := base64.StdEncoding.EncodeToString(make([]byte, 27))
			_, err := cipher.Decrypt(short)
			Expect(err).To(MatchError(crypto.ErrMalformedPayload))
		})

		It("fails with a different key", func() {
			sealed, err := cipher.Encrypt("cross-key-token")
			Expect(err).NotTo(HaveOccurred())

			other, err := crypto.NewTokenCipher(bytes.Repeat([]byte{0x43}, 32))
			Expect(err).NotTo(HaveOccurred())

			_, err = other.Decrypt(sealed)
			Expect(err).To(MatchError(crypto.ErrDecryptionFailed))
		})
	})
})
