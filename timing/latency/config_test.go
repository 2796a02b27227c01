package latency_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/archsim/tomasulo16/insts"
	"github.com/archsim/tomasulo16/timing/latency"
)

func TestLatency(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Latency Suite")
}

var _ = Describe("DefaultConfig", func() {
	It("matches spec.md's declared defaults", func() {
		cfg := latency.DefaultConfig()
		Expect(cfg.Class(insts.FULoad)).To(Equal(latency.ClassConfig{Latency: 6, StationCount: 2}))
		Expect(cfg.Class(insts.FUStore)).To(Equal(latency.ClassConfig{Latency: 6, StationCount: 2}))
		Expect(cfg.Class(insts.FUAddSub)).To(Equal(latency.ClassConfig{Latency: 2, StationCount: 4}))
		Expect(cfg.Class(insts.FUMul)).To(Equal(latency.ClassConfig{Latency: 10, StationCount: 2}))
		Expect(cfg.Class(insts.FUNor)).To(Equal(latency.ClassConfig{Latency: 1, StationCount: 2}))
		Expect(cfg.Class(insts.FUBeq)).To(Equal(latency.ClassConfig{Latency: 1, StationCount: 2}))
		Expect(cfg.Class(insts.FUCallRet)).To(Equal(latency.ClassConfig{Latency: 1, StationCount: 1}))
	})

	It("validates cleanly", func() {
		Expect(latency.DefaultConfig().Validate()).To(Succeed())
	})
})

var _ = Describe("Config JSON round trip", func() {
	It("saves and reloads an overridden class", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "fu.json")

		cfg := latency.DefaultConfig()
		cfg.AddSub.StationCount = 1
		Expect(cfg.SaveConfig(path)).To(Succeed())

		loaded, err := latency.LoadConfig(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Class(insts.FUAddSub)).To(Equal(latency.ClassConfig{Latency: 2, StationCount: 1}))
	})

	It("errors on a missing file", func() {
		_, err := latency.LoadConfig(filepath.Join(os.TempDir(), "does-not-exist.json"))
		Expect(err).To(HaveOccurred())
	})

	It("rejects a zero latency", func() {
		cfg := latency.DefaultConfig()
		cfg.Beq.Latency = 0
		Expect(cfg.Validate()).To(HaveOccurred())
	})
})
