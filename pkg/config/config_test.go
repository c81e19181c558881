package config_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/papercomputeco/askbox/pkg/config"
)

var _ = Describe("Load", func() {
	var (
		tmpDir  string
		env     map[string]string
		opts    config.Options
		envFile string
		tomlCfg string
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		env = map[string]string{}
		envFile = filepath.Join(tmpDir, ".env")
		tomlCfg = filepath.Join(tmpDir, "config.toml")
		opts = config.Options{
			ConfigPath: tomlCfg,
			EnvFile:    envFile,
			Lookup: func(key string) (string, bool) {
				v, ok := env[key]
				return v, ok
			},
		}
	})

	write := func(path, content string) {
		Expect(os.WriteFile(path, []byte(content), 0o600)).To(Succeed())
	}

	It("treats missing secrets and files as a valid, unconfigured state", func() {
		cfg, err := config.Load(opts)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Credentials.Provider.Present()).To(BeFalse())
		Expect(cfg.Credentials.Telemetry.Present()).To(BeFalse())
		Expect(cfg.TracingEnabled()).To(BeFalse())
		Expect(cfg.Model).To(Equal(config.DefaultModel))
		Expect(cfg.ListenAddr).To(Equal(config.DefaultListenAddr))
		Expect(cfg.Timeout).To(Equal(config.DefaultTimeout))
		Expect(cfg.TelemetryEndpoint).To(Equal(config.DefaultTelemetryEndpoint))
		Expect(cfg.Files).To(BeEmpty())
	})

	It("reads both keys from the environment", func() {
		env[config.EnvProviderKey] = "google-key"
		env[config.EnvTelemetryKey] = "langsmith-key"

		cfg, err := config.Load(opts)
		Expect(err).NotTo(HaveOccurred())

		key, ok := cfg.Credentials.Provider.Get()
		Expect(ok).To(BeTrue())
		Expect(key).To(Equal("google-key"))
		Expect(cfg.TracingEnabled()).To(BeTrue())
	})

	It("treats an empty environment entry as absent", func() {
		env[config.EnvProviderKey] = ""

		cfg, err := config.Load(opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Credentials.Provider.Present()).To(BeFalse())
	})

	It("falls back to the .env file", func() {
		write(envFile, "# secrets\nGOOGLE_API_KEY=\"from-dotenv\"\nexport ASKBOX_TIMEOUT=30s\n")

		cfg, err := config.Load(opts)
		Expect(err).NotTo(HaveOccurred())

		key, _ := cfg.Credentials.Provider.Get()
		Expect(key).To(Equal("from-dotenv"))
		Expect(cfg.Timeout).To(Equal(30 * time.Second))
		Expect(cfg.Files).To(ConsistOf(envFile))
	})

	It("fails on a malformed .env file", func() {
		write(envFile, "GOOGLE_API_KEY=from-dotenv\nnot a pair\n")

		_, err := config.Load(opts)
		Expect(err).To(MatchError(ContainSubstring("parsing env file " + envFile)))
	})

	It("does not set the process environment from the .env file", func() {
		write(envFile, "ASKBOX_DOTENV_ONLY=1\n")

		_, err := config.Load(opts)
		Expect(err).NotTo(HaveOccurred())
		_, set := os.LookupEnv("ASKBOX_DOTENV_ONLY")
		Expect(set).To(BeFalse())
	})

	It("tracks an existing .env file even when it holds no keys", func() {
		write(envFile, "# add GOOGLE_API_KEY here\n")

		cfg, err := config.Load(opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Credentials.Provider.Present()).To(BeFalse())
		Expect(cfg.Files).To(ConsistOf(envFile))
	})

	It("prefers the environment over the .env file over the TOML file", func() {
		write(envFile, "GOOGLE_API_KEY=from-dotenv\nASKBOX_MODEL=dotenv-model\n")
		write(tomlCfg, `
provider_api_key = "from-toml"
model = "toml-model"
listen = ":9000"

[telemetry]
project = "askbox-dev"
`)
		env[config.EnvProviderKey] = "from-env"

		cfg, err := config.Load(opts)
		Expect(err).NotTo(HaveOccurred())

		key, _ := cfg.Credentials.Provider.Get()
		Expect(key).To(Equal("from-env"))
		Expect(cfg.Model).To(Equal("dotenv-model"))
		Expect(cfg.ListenAddr).To(Equal(":9000"))
		Expect(cfg.TelemetryProject).To(Equal("askbox-dev"))
		Expect(cfg.Files).To(ConsistOf(envFile, tomlCfg))
	})

	It("ignores an unparsable timeout", func() {
		env[config.EnvTimeout] = "soon"

		cfg, err := config.Load(opts)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Timeout).To(Equal(config.DefaultTimeout))
	})

	It("fails on a malformed TOML file", func() {
		write(tomlCfg, "model = [unterminated")

		_, err := config.Load(opts)
		Expect(err).To(MatchError(ContainSubstring("parsing config file")))
	})
})

var _ = Describe("Secret", func() {
	It("is absent by default", func() {
		var s config.Secret
		_, ok := s.Get()
		Expect(ok).To(BeFalse())
		Expect(s.String()).To(Equal("<unset>"))
	})

	It("masks the value when printed", func() {
		s := config.NewSecret("AIzaSyExampleKeyValue")
		Expect(s.String()).To(Equal("AIza****"))
		Expect(config.NewSecret("short").String()).To(Equal("****"))
	})
})

var _ = Describe("Watch", func() {
	It("warns when a watched file changes", func() {
		dir := GinkgoT().TempDir()
		envFile := filepath.Join(dir, ".env")
		Expect(os.WriteFile(envFile, []byte("GOOGLE_API_KEY=a\n"), 0o600)).To(Succeed())

		core, logs := observer.New(zap.WarnLevel)
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- config.Watch(ctx, []string{envFile}, zap.New(core)) }()

		Eventually(func() int {
			Expect(os.WriteFile(envFile, []byte("GOOGLE_API_KEY=b\n"), 0o600)).To(Succeed())
			return logs.FilterMessage("configuration file changed; restart askbox to apply").Len()
		}, 5*time.Second, 50*time.Millisecond).Should(BeNumerically(">", 0))

		Expect(os.WriteFile(filepath.Join(dir, "unrelated"), []byte("x"), 0o600)).To(Succeed())
		for _, entry := range logs.All() {
			Expect(entry.ContextMap()["path"]).To(Equal(envFile))
		}

		cancel()
		Eventually(done).Should(Receive(BeNil()))
	})
})
