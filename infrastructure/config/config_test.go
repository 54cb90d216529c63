package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
)

func testArgs(t *testing.T, args ...string) []string {
	dir := t.TempDir()
	return append([]string{
		"--configfile=" + filepath.Join(dir, "missing.conf"),
		"--appdir=" + filepath.Join(dir, "data"),
		"--logdir=" + filepath.Join(dir, "logs"),
	}, args...)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(testArgs(t))
	if err != nil {
		t.Fatalf("TestLoadConfigDefaults: %+v", err)
	}
	if cfg.NetParams().Name != chainconfig.MainnetParams.Name {
		t.Fatalf("TestLoadConfigDefaults: expected mainnet, got %s", cfg.NetParams().Name)
	}
	if cfg.MinFeeRate != defaultMinFeeRate || cfg.MaxOrphanTxs != defaultMaxOrphanTxs {
		t.Fatalf("TestLoadConfigDefaults: unexpected pool defaults %d %d", cfg.MinFeeRate, cfg.MaxOrphanTxs)
	}
	if cfg.BlockAssemblerLock != nil {
		t.Fatalf("TestLoadConfigDefaults: mainnet shouldn't have a default block assembler")
	}
	if filepath.Base(cfg.AppDir) != "mainnet" || filepath.Base(cfg.LogDir) != "mainnet" {
		t.Fatalf("TestLoadConfigDefaults: directories aren't namespaced by network: %s %s", cfg.AppDir, cfg.LogDir)
	}
}

func TestLoadConfigPoolFlags(t *testing.T) {
	cfg, err := loadConfig(testArgs(t,
		"--minfeerate=2000",
		"--maxtxpoolsize=1000000",
		"--maxorphantx=5",
		"--verifyworkers=3",
		"--inmemory",
	))
	if err != nil {
		t.Fatalf("TestLoadConfigPoolFlags: %+v", err)
	}
	if cfg.MinFeeRate != 2000 || cfg.MaxTxPoolSize != 1000000 || cfg.MaxOrphanTxs != 5 ||
		cfg.VerifyWorkers != 3 || !cfg.InMemory {

		t.Fatalf("TestLoadConfigPoolFlags: flags weren't applied: %+v", cfg.Flags)
	}
}

func TestLoadConfigFileAndCommandLine(t *testing.T) {
	dir := t.TempDir()
	configFile := filepath.Join(dir, "celld.conf")
	err := os.WriteFile(configFile, []byte("[Application Options]\nminfeerate=3000\nmaxorphantx=7\n"), 0600)
	if err != nil {
		t.Fatalf("TestLoadConfigFileAndCommandLine: %+v", err)
	}

	cfg, err := loadConfig([]string{
		"--configfile=" + configFile,
		"--appdir=" + filepath.Join(dir, "data"),
		"--logdir=" + filepath.Join(dir, "logs"),
		"--maxorphantx=9",
	})
	if err != nil {
		t.Fatalf("TestLoadConfigFileAndCommandLine: %+v", err)
	}
	if cfg.MinFeeRate != 3000 {
		t.Fatalf("TestLoadConfigFileAndCommandLine: config file value wasn't applied, got %d", cfg.MinFeeRate)
	}
	if cfg.MaxOrphanTxs != 9 {
		t.Fatalf("TestLoadConfigFileAndCommandLine: command line should take precedence, got %d", cfg.MaxOrphanTxs)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "multiple networks", args: []string{"--testnet", "--devnet"}},
		{name: "publicchain on devnet", args: []string{"--devnet", "--publicchain=false"}},
		{name: "malformed publicchain", args: []string{"--testnet", "--publicchain=maybe"}},
		{name: "chain params override on mainnet", args: []string{"--override-chain-params-file=params.json"}},
		{name: "zero pool size", args: []string{"--maxtxpoolsize=0"}},
		{name: "verify cycles above block cycles", args: []string{"--maxtxverifycycles=1000000000000"}},
		{name: "pool cycles below verify cycles", args: []string{"--maxtxpoolcycles=1"}},
		{name: "no verify workers", args: []string{"--verifyworkers=0"}},
		{name: "assembler args without code hash", args: []string{"--assemblerargs=00"}},
		{name: "unknown hash type", args: []string{
			"--assemblercodehash=" + strings.Repeat("11", externalapi.DomainHashSize), "--assemblerhashtype=other"}},
		{name: "malformed message", args: []string{"--assemblermessage=zz"}},
		{name: "privileged profile port", args: []string{"--profile=80"}},
	}
	for _, test := range tests {
		_, err := loadConfig(testArgs(t, test.args...))
		if err == nil {
			t.Fatalf("TestLoadConfigInvalid: %s: expected an error", test.name)
		}
	}
}

func TestPublicChainOverride(t *testing.T) {
	cfg, err := loadConfig(testArgs(t, "--testnet", "--publicchain=false"))
	if err != nil {
		t.Fatalf("TestPublicChainOverride: %+v", err)
	}
	if cfg.NetParams().IsPublicChain {
		t.Fatalf("TestPublicChainOverride: publicchain override wasn't applied")
	}
	if !chainconfig.TestnetParams.IsPublicChain {
		t.Fatalf("TestPublicChainOverride: the override leaked into the package level params")
	}
}

func TestOverrideChainParams(t *testing.T) {
	paramsFile := filepath.Join(t.TempDir(), "params.json")
	err := os.WriteFile(paramsFile, []byte(`{"maxBlockBytes": 1000, "epochLength": 10}`), 0600)
	if err != nil {
		t.Fatalf("TestOverrideChainParams: %+v", err)
	}

	cfg, err := loadConfig(testArgs(t, "--devnet", "--override-chain-params-file="+paramsFile))
	if err != nil {
		t.Fatalf("TestOverrideChainParams: %+v", err)
	}
	if cfg.NetParams().MaxBlockBytes != 1000 || cfg.NetParams().EpochLength != 10 {
		t.Fatalf("TestOverrideChainParams: overrides weren't applied")
	}
	if cfg.NetParams().MaxBlockCycles != chainconfig.DevnetParams.MaxBlockCycles {
		t.Fatalf("TestOverrideChainParams: fields missing from the file should keep their defaults")
	}

	err = os.WriteFile(paramsFile, []byte(`{"epochLength": 0}`), 0600)
	if err != nil {
		t.Fatalf("TestOverrideChainParams: %+v", err)
	}
	_, err = loadConfig(testArgs(t, "--devnet", "--override-chain-params-file="+paramsFile))
	if err == nil {
		t.Fatalf("TestOverrideChainParams: expected a zero epoch length to be rejected")
	}
}

func TestBlockAssembler(t *testing.T) {
	cfg, err := loadConfig(testArgs(t, "--devnet"))
	if err != nil {
		t.Fatalf("TestBlockAssembler: %+v", err)
	}
	if cfg.BlockAssemblerLock == nil || !cfg.BlockAssemblerLock.Equal(chainconfig.AlwaysSuccessLock()) {
		t.Fatalf("TestBlockAssembler: devnet should default to the always success lock")
	}

	codeHash := strings.Repeat("ab", externalapi.DomainHashSize)
	cfg, err = loadConfig(testArgs(t,
		"--assemblercodehash="+codeHash,
		"--assemblerhashtype=data1",
		"--assemblerargs=0102",
		"--assemblermessage=ff",
	))
	if err != nil {
		t.Fatalf("TestBlockAssembler: %+v", err)
	}
	lock := cfg.BlockAssemblerLock
	if lock == nil || lock.CodeHash.String() != codeHash || lock.HashType != externalapi.ScriptHashTypeData1 ||
		string(lock.Args) != "\x01\x02" {

		t.Fatalf("TestBlockAssembler: unexpected lock %+v", lock)
	}
	if string(cfg.BlockAssemblerMessage) != "\xff" {
		t.Fatalf("TestBlockAssembler: unexpected message %x", cfg.BlockAssemblerMessage)
	}
}
