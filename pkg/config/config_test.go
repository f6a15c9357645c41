package config_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/kin/pkg/config"
)

var _ = Describe("Config", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("loads defaults when no file exists", func() {
		v, err := config.InitViper(dir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.Load(v)
		Expect(err).NotTo(HaveOccurred())

		defaults := config.NewDefaultConfig()
		Expect(cfg.Chat.Model).To(Equal(defaults.Chat.Model))
		Expect(cfg.Memory.SimilarityThreshold).To(Equal(0.9))
		Expect(cfg.VectorStore.Collection).To(Equal("long_term_memory"))
		Expect(cfg.API.Listen).To(Equal(":8080"))
	})

	It("lets config.toml override defaults", func() {
		content := `
[api]
listen = ":9999"

[memory]
top_k = 3

[embedding]
dimensions = 768
`
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644)).To(Succeed())

		v, err := config.InitViper(dir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.Load(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.API.Listen).To(Equal(":9999"))
		Expect(cfg.Memory.TopK).To(Equal(3))
		Expect(cfg.Embedding.Dimensions).To(Equal(uint(768)))

		// Untouched sections keep their defaults.
		Expect(cfg.Chat.BaseURL).To(Equal(config.NewDefaultConfig().Chat.BaseURL))
	})

	It("lets environment variables override the file", func() {
		content := "[api]\nlisten = \":9999\"\n"
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644)).To(Succeed())

		GinkgoT().Setenv("KIN_API_LISTEN", ":7777")

		v, err := config.InitViper(dir)
		Expect(err).NotTo(HaveOccurred())

		cfg, err := config.Load(v)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.API.Listen).To(Equal(":7777"))
	})

	It("rejects malformed files", func() {
		Expect(os.WriteFile(filepath.Join(dir, "config.toml"), []byte("no toml here ["), 0o644)).To(Succeed())

		_, err := config.InitViper(dir)
		Expect(err).To(HaveOccurred())
	})
})
