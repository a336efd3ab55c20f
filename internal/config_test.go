package internal_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/school-platform/internal"
)

func validConfig() internal.Config {
	return internal.Config{
		Server:   internal.ServerConfig{ReadHeaderTimeout: time.Second, ReadTimeout: time.Second},
		Database: internal.DatabaseConfig{Source: "postgres://localhost/school", MaxOpenConns: 10, MaxIdleConns: 5},
		Security: internal.SecurityConfig{JWTSecret: "0123456789abcdef0123456789abcdef", BCryptCost: 10},
		Storage:  internal.StorageConfig{Bucket: "media", Region: "us-east-1"},
		Payment:  internal.PaymentConfig{SecretKey: "sk", EndpointSecret: "whsec", Currency: "usd"},
	}
}

var _ = Describe("Config", func() {
	It("accepts a complete configuration", func() {
		cfg := validConfig()
		Expect(cfg.Validate()).To(Succeed())
	})

	It("aggregates every section error", func() {
		cfg := validConfig()
		cfg.Security.JWTSecret = "short"
		cfg.Payment.EndpointSecret = ""

		err := cfg.Validate()
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("security config"))
		Expect(err.Error()).To(ContainSubstring("payment config"))
	})

	It("reports whether mail is configured", func() {
		Expect((&internal.MailConfig{}).MailEnabled()).To(BeFalse())
		Expect((&internal.MailConfig{Host: "smtp", From: "school@example.com"}).MailEnabled()).To(BeTrue())
	})

	Describe("LoadConfigFromEnv", func() {
		It("maps a dotenv file onto the config with defaults", func() {
			dir := GinkgoT().TempDir()
			path := filepath.Join(dir, ".env")
			Expect(os.WriteFile(path, []byte("DB_SOURCE=postgres://env/school\nSTRIPE_SECRET_KEY=sk_env\n"), 0o600)).To(Succeed())
			DeferCleanup(func() {
				_ = os.Unsetenv("DB_SOURCE")
				_ = os.Unsetenv("STRIPE_SECRET_KEY")
			})

			cfg, err := internal.LoadConfigFromEnv(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Database.Source).To(Equal("postgres://env/school"))
			Expect(cfg.Payment.SecretKey).To(Equal("sk_env"))
			Expect(cfg.Payment.Currency).To(Equal("usd"))
			Expect(cfg.Server.Port).To(Equal(8080))
			Expect(cfg.Redis.ReplayTTL).To(Equal(72 * time.Hour))
		})

		It("tolerates a missing dotenv file", func() {
			_, err := internal.LoadConfigFromEnv(filepath.Join(GinkgoT().TempDir(), "absent.env"))
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
