// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/cellnetwork/celld/domain/chainconfig"
	"github.com/cellnetwork/celld/domain/consensus/model/externalapi"
	"github.com/cellnetwork/celld/infrastructure/logger"
	"github.com/cellnetwork/celld/version"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
)

const (
	defaultConfigFilename = "celld.conf"
	defaultDataDirname    = "data"
	defaultLogLevel       = "info"
	defaultLogDirname     = "logs"
	defaultLogFilename    = "celld.log"
	defaultErrLogFilename = "celld_err.log"

	defaultMinFeeRate        = 1_000
	defaultMaxTxPoolSize     = 180_000_000
	defaultMaxTxPoolCycles   = 200_000_000_000
	defaultMaxTxVerifyCycles = 70_000_000
	defaultMaxOrphanTxs      = 100
	defaultVerifyChunkCycles = 10_000_000
	defaultVerifyCacheSize   = 30_000
)

var (
	// DefaultAppDir is the default home directory for celld.
	DefaultAppDir = btcutil.AppDataDir("celld", false)

	defaultConfigFile = filepath.Join(DefaultAppDir, defaultConfigFilename)
	defaultDataDir    = filepath.Join(DefaultAppDir, defaultDataDirname)
	defaultLogDir     = filepath.Join(DefaultAppDir, defaultLogDirname)
)

// Flags defines the configuration options for celld.
//
// See loadConfig for details on the configuration load process.
type Flags struct {
	ShowVersion       bool   `short:"V" long:"version" description:"Display version information and exit"`
	ConfigFile        string `short:"C" long:"configfile" description:"Path to configuration file"`
	AppDir            string `short:"b" long:"appdir" description:"Directory to store data"`
	LogDir            string `long:"logdir" description:"Directory to log output."`
	InMemory          bool   `long:"inmemory" description:"Keep the chain in memory instead of on disk -- NOTE: all state is lost on shutdown"`
	DebugLevel        string `short:"d" long:"debuglevel" description:"Logging level for all subsystems {trace, debug, info, warn, error, critical} -- You may also specify <subsystem>=<level>,<subsystem2>=<level>,... to set the log level for individual subsystems -- Use show to list available subsystems"`
	MetricsListen     string `long:"metricslisten" description:"Serve prometheus metrics on the given interface/port (eg. 127.0.0.1:8100)"`
	Profile           string `long:"profile" description:"Enable HTTP profiling on given port -- NOTE port must be between 1024 and 65535"`
	MinFeeRate        uint64 `long:"minfeerate" description:"The minimum fee rate, in shannons per 1000 bytes, a transaction must pay to enter the pool"`
	MaxTxPoolSize     uint64 `long:"maxtxpoolsize" description:"Maximum total serialized size of pool transactions, in bytes"`
	MaxTxPoolCycles   uint64 `long:"maxtxpoolcycles" description:"Maximum total script cycles of pool transactions"`
	MaxTxVerifyCycles uint64 `long:"maxtxverifycycles" description:"Maximum script cycles of a single pool transaction"`
	MaxOrphanTxs      int    `long:"maxorphantx" description:"Max number of orphan transactions to keep in memory"`
	VerifyWorkers     int    `long:"verifyworkers" description:"Number of script verification workers (default: number of CPUs)"`
	VerifyChunkCycles uint64 `long:"verifychunkcycles" description:"Cycles a verification worker spends on one transaction before moving to the next queued one"`
	VerifyCacheSize   uint64 `long:"verifycachesize" description:"Number of transaction verification results to remember"`
	AssemblerCodeHash string `long:"assemblercodehash" description:"Code hash of the lock script block templates pay to, in hex"`
	AssemblerHashType string `long:"assemblerhashtype" description:"Hash type of the block assembler lock script {data, type, data1}"`
	AssemblerArgs     string `long:"assemblerargs" description:"Args of the block assembler lock script, in hex"`
	AssemblerMessage  string `long:"assemblermessage" description:"Message written into the cellbase witness of block templates, in hex"`
	NetworkFlags
}

// Config defines the configuration options for celld.
//
// See loadConfig for details on the configuration load process.
type Config struct {
	*Flags

	// BlockAssemblerLock is nil when no assembler is configured.
	BlockAssemblerLock    *externalapi.Script
	BlockAssemblerMessage []byte
}

// cleanAndExpandPath expands environment variables and leading ~ in the
// passed path, cleans the result, and returns it.
func cleanAndExpandPath(path string) string {
	// Expand initial ~ to OS specific home directory.
	if strings.HasPrefix(path, "~") {
		homeDir := filepath.Dir(DefaultAppDir)
		path = strings.Replace(path, "~", homeDir, 1)
	}

	// NOTE: The os.ExpandEnv doesn't work with Windows-style %VARIABLE%,
	// but they variables can still be expanded via POSIX-style $VARIABLE.
	return filepath.Clean(os.ExpandEnv(path))
}

func defaultFlags() *Flags {
	return &Flags{
		ConfigFile:        defaultConfigFile,
		DebugLevel:        defaultLogLevel,
		AppDir:            defaultDataDir,
		LogDir:            defaultLogDir,
		MinFeeRate:        defaultMinFeeRate,
		MaxTxPoolSize:     defaultMaxTxPoolSize,
		MaxTxPoolCycles:   defaultMaxTxPoolCycles,
		MaxTxVerifyCycles: defaultMaxTxVerifyCycles,
		MaxOrphanTxs:      defaultMaxOrphanTxs,
		VerifyWorkers:     runtime.NumCPU(),
		VerifyChunkCycles: defaultVerifyChunkCycles,
		VerifyCacheSize:   defaultVerifyCacheSize,
	}
}

// LoadConfig initializes and parses the config using a config file and command
// line options.
//
// The configuration proceeds as follows:
//  1. Start with a default config with sane settings
//  2. Pre-parse the command line to check for an alternative config file
//  3. Load configuration file overwriting defaults with any specified options
//  4. Parse CLI options and overwrite/add any specified options
//
// The above results in celld functioning properly without any config settings
// while still allowing the user to override settings with config files and
// command line options. Command line options always take precedence.
func LoadConfig() (*Config, error) {
	return loadConfig(os.Args[1:])
}

func loadConfig(args []string) (*Config, error) {
	cfgFlags := defaultFlags()

	// Pre-parse the command line options to see if an alternative config
	// file or the version flag was specified. Any errors aside from the
	// help message error can be ignored here since they will be caught by
	// the final parse below.
	preCfg := *cfgFlags
	preParser := flags.NewParser(&preCfg, flags.HelpFlag)
	_, err := preParser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stderr, err)
			return nil, err
		}
	}

	appName := filepath.Base(os.Args[0])
	appName = strings.TrimSuffix(appName, filepath.Ext(appName))
	usageMessage := fmt.Sprintf("Use %s -h to show usage", appName)
	if preCfg.ShowVersion {
		fmt.Println(appName, "version", version.Version())
		os.Exit(0)
	}

	// Load additional config from file. A missing config file is not an
	// error.
	parser := flags.NewParser(cfgFlags, flags.Default)
	err = flags.NewIniParser(parser).ParseFile(preCfg.ConfigFile)
	if err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			fmt.Fprintf(os.Stderr, "Error parsing config file: %s\n", err)
			fmt.Fprintln(os.Stderr, usageMessage)
			return nil, err
		}
	}

	// Parse command line options again to ensure they take precedence.
	_, err = parser.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if !errors.As(err, &flagsErr) || flagsErr.Type != flags.ErrHelp {
			fmt.Fprintln(os.Stderr, usageMessage)
		}
		return nil, err
	}

	cfg := &Config{Flags: cfgFlags}
	err = cfg.ResolveNetwork(parser)
	if err != nil {
		return nil, err
	}

	err = cfg.validate()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, err
	}

	// Namespace the data and log directories per network.
	cfg.AppDir = filepath.Join(cleanAndExpandPath(cfg.AppDir), cfg.NetParams().Name)
	cfg.LogDir = filepath.Join(cleanAndExpandPath(cfg.LogDir), cfg.NetParams().Name)

	// Special show command to list supported subsystems and exit.
	if cfg.DebugLevel == "show" {
		fmt.Println("Supported subsystems", logger.SupportedSubsystems())
		os.Exit(0)
	}

	// Parse, validate, and set debug log level(s).
	err = logger.ParseAndSetDebugLevels(cfg.DebugLevel)
	if err != nil {
		err = errors.Errorf("loadConfig: %s", err)
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, usageMessage)
		return nil, err
	}

	return cfg, nil
}

// validate checks the pool options and resolves the block assembler.
func (cfg *Config) validate() error {
	if cfg.MaxTxPoolSize == 0 {
		return errors.Errorf("maxtxpoolsize must be positive")
	}
	if cfg.MaxTxVerifyCycles == 0 {
		return errors.Errorf("maxtxverifycycles must be positive")
	}
	if cfg.MaxTxVerifyCycles > cfg.NetParams().MaxBlockCycles {
		return errors.Errorf("maxtxverifycycles %d is above the %d cycles a block may use",
			cfg.MaxTxVerifyCycles, cfg.NetParams().MaxBlockCycles)
	}
	if cfg.MaxTxPoolCycles < cfg.MaxTxVerifyCycles {
		return errors.Errorf("maxtxpoolcycles %d is below maxtxverifycycles %d",
			cfg.MaxTxPoolCycles, cfg.MaxTxVerifyCycles)
	}
	if cfg.MaxOrphanTxs < 0 {
		return errors.Errorf("maxorphantx must not be negative")
	}
	if cfg.VerifyWorkers < 1 {
		return errors.Errorf("verifyworkers must be at least 1")
	}
	if cfg.VerifyChunkCycles == 0 {
		return errors.Errorf("verifychunkcycles must be positive")
	}
	if cfg.VerifyCacheSize == 0 {
		return errors.Errorf("verifycachesize must be positive")
	}
	if cfg.Profile != "" {
		profilePort, err := strconv.Atoi(cfg.Profile)
		if err != nil || profilePort < 1024 || profilePort > 65535 {
			return errors.Errorf("the profile port must be between 1024 and 65535")
		}
	}

	var err error
	cfg.BlockAssemblerMessage, err = hex.DecodeString(cfg.AssemblerMessage)
	if err != nil {
		return errors.Wrap(err, "invalid assemblermessage")
	}
	cfg.BlockAssemblerLock, err = cfg.parseAssemblerLock()
	return err
}

// parseAssemblerLock returns the configured assembler lock. Devnet pays
// the always success lock when none is configured.
func (cfg *Config) parseAssemblerLock() (*externalapi.Script, error) {
	if cfg.AssemblerCodeHash == "" {
		if cfg.AssemblerHashType != "" || cfg.AssemblerArgs != "" {
			return nil, errors.Errorf("assemblerhashtype and assemblerargs require assemblercodehash")
		}
		if cfg.Devnet {
			return chainconfig.AlwaysSuccessLock(), nil
		}
		return nil, nil
	}

	codeHash, err := externalapi.NewDomainHashFromString(cfg.AssemblerCodeHash)
	if err != nil {
		return nil, errors.Wrap(err, "invalid assemblercodehash")
	}
	args, err := hex.DecodeString(cfg.AssemblerArgs)
	if err != nil {
		return nil, errors.Wrap(err, "invalid assemblerargs")
	}

	var hashType externalapi.ScriptHashType
	switch cfg.AssemblerHashType {
	case "", "type":
		hashType = externalapi.ScriptHashTypeType
	case "data":
		hashType = externalapi.ScriptHashTypeData
	case "data1":
		hashType = externalapi.ScriptHashTypeData1
	default:
		return nil, errors.Errorf("unknown assemblerhashtype %q", cfg.AssemblerHashType)
	}
	return &externalapi.Script{CodeHash: *codeHash, HashType: hashType, Args: args}, nil
}

// LogFile returns the path of the main log file
func (cfg *Config) LogFile() string {
	return filepath.Join(cfg.LogDir, defaultLogFilename)
}

// ErrLogFile returns the path of the error log file
func (cfg *Config) ErrLogFile() string {
	return filepath.Join(cfg.LogDir, defaultErrLogFilename)
}
