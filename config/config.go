package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cometbft/cometbft/config"
	"github.com/cometbft/cometbft/crypto"
	"github.com/cometbft/cometbft/p2p"
	"github.com/cometbft/cometbft/privval"
)

type BallotAppConfig struct {
	Home          string `mapstructure:"-"`
	TimeoutCommit uint64 `mapstructure:"-"`
}

func DefaultBallotAppConfig(home string) *BallotAppConfig {
	return &BallotAppConfig{
		Home: home,
	}

}
func NewBallotAppConfig(home string) *BallotAppConfig {
	return &BallotAppConfig{
		Home: home,
	}
}

type Config struct {
	*config.Config `mapstructure:",squash"`

	App *BallotAppConfig `mapstructure:"app"`
}

func DefaultConfig(home string) *Config {
	if len(home) == 0 {
		home = os.ExpandEnv("$HOME/.ballot")
	}
	config := &Config{
		DefaultBallotCometConfig(),
		NewBallotAppConfig(home),
	}
	config.RootDir = home
	_ = os.MkdirAll(home+"/config", 0755)
	return config
}

func NewBallotConfig(home string) *Config {
	if len(home) == 0 {
		home = os.ExpandEnv("$HOME/.ballot")
	}
	_ = os.MkdirAll(home+"/config", 0755)
	config := &Config{
		DefaultBallotCometConfig(),
		NewBallotAppConfig(home),
	}
	config.RootDir = home
	return config
}

func InitializeNodeValidatorFiles(config *Config, privKey crypto.PrivKey) (nodeID string, pk crypto.PubKey, err error) {
	nodeKey, err := p2p.LoadOrGenNodeKey(config.NodeKeyFile())
	if err != nil {
		return "", nil, err
	}
	nodeID = string(nodeKey.ID())

	pvKeyFile := config.PrivValidatorKeyFile()
	if err := os.MkdirAll(filepath.Dir(pvKeyFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvKeyFile), err)
	}

	pvStateFile := config.PrivValidatorStateFile()
	if err := os.MkdirAll(filepath.Dir(pvStateFile), 0o777); err != nil {
		return "", nil, fmt.Errorf("could not create directory %q: %w", filepath.Dir(pvStateFile), err)
	}

	var filePV *privval.FilePV
	if privKey == nil {
		filePV = privval.LoadOrGenFilePV(pvKeyFile, pvStateFile)
	} else {
		filePV = privval.NewFilePV(privKey, pvKeyFile, pvStateFile)
		filePV.Save()
	}
	pukey, err := filePV.GetPubKey()
	if err != nil {
		return "", nil, err
	}

	return nodeID, pukey, nil
}

func InitializeNodeOnly(config *Config) {
	_, err := p2p.LoadOrGenNodeKey(config.NodeKeyFile())
	if err != nil {
		return
	}

	pvKeyFile := config.PrivValidatorKeyFile()
	if err := os.MkdirAll(filepath.Dir(pvKeyFile), 0o777); err != nil {
		return
	}

	pvStateFile := config.PrivValidatorStateFile()
	if err := os.MkdirAll(filepath.Dir(pvStateFile), 0o777); err != nil {
		return
	}
	privval.LoadOrGenFilePV(pvKeyFile, pvStateFile)
	os.Remove(pvKeyFile)
}

func DefaultBallotCometConfig() *config.Config {
	cometConfig := config.DefaultConfig()
	cometConfig.Consensus.TimeoutPropose = time.Second * 10
	cometConfig.Consensus.TimeoutPrevote = time.Second * 1
	cometConfig.Consensus.TimeoutPrecommit = time.Second * 1
	cometConfig.Consensus.TimeoutCommit = time.Millisecond * 1200
	return cometConfig
}
