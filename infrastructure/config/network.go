package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

// NetworkFlags holds the network configuration, that is which network is selected.
type NetworkFlags struct {
	Testnet                 bool   `long:"testnet" description:"Use the test network"`
	Devnet                  bool   `long:"devnet" description:"Use the development test network"`
	PublicChain             string `long:"publicchain" description:"Override whether block submission applies the public chain policy {true, false} (not allowed on devnet)"`
	OverrideChainParamsFile string `long:"override-chain-params-file" description:"Overrides chain params (allowed only on devnet)"`

	ActiveNetParams *chainconfig.Params
}

type overrideChainParamsConfig struct {
	MaxBlockBytes          *uint64 `json:"maxBlockBytes"`
	MaxBlockCycles         *uint64 `json:"maxBlockCycles"`
	MaxBlockProposalsLimit *uint64 `json:"maxBlockProposalsLimit"`
	MaxUnclesNum           *int    `json:"maxUnclesNum"`
	EpochLength            *uint64 `json:"epochLength"`
	MedianTimeBlockCount   *int    `json:"medianTimeBlockCount"`
	SkipProofOfWork        *bool   `json:"skipProofOfWork"`
}

// ResolveNetwork parses the network command line argument and sets NetParams accordingly.
// It returns error if more than one network was selected, nil otherwise.
func (networkFlags *NetworkFlags) ResolveNetwork(parser *flags.Parser) error {
	// The selected params are copied so overrides never touch the
	// package level definitions.
	params := chainconfig.MainnetParams
	// Multiple networks can't be selected simultaneously.
	numNets := 0
	if networkFlags.Testnet {
		numNets++
		params = chainconfig.TestnetParams
	}
	if networkFlags.Devnet {
		numNets++
		params = chainconfig.DevnetParams
	}
	if numNets > 1 {
		message := "Multiple networks parameters (testnet, devnet) cannot be used " +
			"together. Please choose only one network"
		err := errors.Errorf(message)
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		return err
	}
	networkFlags.ActiveNetParams = &params

	err := networkFlags.overridePublicChain()
	if err != nil {
		return err
	}
	return networkFlags.overrideChainParams()
}

// NetParams returns the ActiveNetParams
func (networkFlags *NetworkFlags) NetParams() *chainconfig.Params {
	return networkFlags.ActiveNetParams
}

func (networkFlags *NetworkFlags) overridePublicChain() error {
	if networkFlags.PublicChain == "" {
		return nil
	}

	if networkFlags.Devnet {
		return errors.Errorf("publicchain is not allowed when using devnet")
	}

	isPublicChain, err := strconv.ParseBool(networkFlags.PublicChain)
	if err != nil {
		return errors.Wrapf(err, "invalid publicchain value %q", networkFlags.PublicChain)
	}
	networkFlags.ActiveNetParams.IsPublicChain = isPublicChain
	return nil
}

func (networkFlags *NetworkFlags) overrideChainParams() error {

	if networkFlags.OverrideChainParamsFile == "" {
		return nil
	}

	if !networkFlags.Devnet {
		return errors.Errorf("override-chain-params-file is allowed only when using devnet")
	}

	overrideChainParamsFile, err := os.Open(networkFlags.OverrideChainParamsFile)
	if err != nil {
		return err
	}
	defer overrideChainParamsFile.Close()

	decoder := json.NewDecoder(overrideChainParamsFile)
	config := &overrideChainParamsConfig{}
	err = decoder.Decode(config)
	if err != nil {
		return err
	}

	if config.MaxBlockBytes != nil {
		networkFlags.ActiveNetParams.MaxBlockBytes = *config.MaxBlockBytes
	}

	if config.MaxBlockCycles != nil {
		networkFlags.ActiveNetParams.MaxBlockCycles = *config.MaxBlockCycles
	}

	if config.MaxBlockProposalsLimit != nil {
		networkFlags.ActiveNetParams.MaxBlockProposalsLimit = *config.MaxBlockProposalsLimit
	}

	if config.MaxUnclesNum != nil {
		networkFlags.ActiveNetParams.MaxUnclesNum = *config.MaxUnclesNum
	}

	if config.EpochLength != nil {
		if *config.EpochLength == 0 {
			return errors.Errorf("epochLength must be positive")
		}
		networkFlags.ActiveNetParams.EpochLength = *config.EpochLength
	}

	if config.MedianTimeBlockCount != nil {
		networkFlags.ActiveNetParams.MedianTimeBlockCount = *config.MedianTimeBlockCount
	}

	if config.SkipProofOfWork != nil {
		networkFlags.ActiveNetParams.SkipProofOfWork = *config.SkipProofOfWork
	}

	return nil
}
