package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	internal "github.com/ZanzyTHEbar/vebtree/vebt"
	"github.com/ZanzyTHEbar/vebtree/vebt/layout"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// ConfigTestSuite tests the config package functionality
type ConfigTestSuite struct {
	suite.Suite
	tempDir string
	origDir string
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (suite *ConfigTestSuite) SetupTest() {
	var err error
	suite.origDir, err = os.Getwd()
	require.NoError(suite.T(), err)

	tempDir, err := os.MkdirTemp("", "vebt-config-test-*")
	require.NoError(suite.T(), err)
	suite.tempDir = tempDir

	// Run from an empty directory so no stray config.yaml is picked up
	err = os.Chdir(tempDir)
	require.NoError(suite.T(), err)
}

func (suite *ConfigTestSuite) TearDownTest() {
	if suite.origDir != "" {
		os.Chdir(suite.origDir)
	}
	if suite.tempDir != "" {
		os.RemoveAll(suite.tempDir)
	}
}

func (suite *ConfigTestSuite) writeConfig(content string) string {
	path := filepath.Join(suite.tempDir, "config.yaml")
	err := os.WriteFile(path, []byte(content), 0o644)
	require.NoError(suite.T(), err)
	return path
}

func (suite *ConfigTestSuite) TestLoadConfigWithDefaults() {
	cfg, err := LoadConfig("")

	require.NoError(suite.T(), err)
	require.NotNil(suite.T(), cfg)

	assert.Equal(suite.T(), runtime.NumCPU(), cfg.Layout.Workers)
	assert.Equal(suite.T(), layout.DefaultParallelThreshold, cfg.Layout.ParallelThreshold)
	assert.Equal(suite.T(), runtime.NumCPU(), cfg.Search.Workers)
	assert.Equal(suite.T(), layout.DefaultBatchSize, cfg.Search.BatchSize)
	assert.Equal(suite.T(), []int{4, 16, 64}, cfg.Analysis.BlockSizes)
	assert.Equal(suite.T(), internal.DefaultLogLevel, cfg.Log.Level)
	assert.Equal(suite.T(), "ABCDEFGHIJKLMNO", cfg.Demo.Keys)
	assert.Equal(suite.T(), "HDLBACFEGJIKNMOabc", cfg.Demo.Queries)
}

func (suite *ConfigTestSuite) TestLoadConfigWithFile() {
	configFile := suite.writeConfig(`
layout:
  workers: 3
  parallelThreshold: 100
search:
  workers: 2
  batchSize: 64
analysis:
  blockSizes: [8, 32]
log:
  level: debug
demo:
  keys: "abcdefg"
  queries: "dz"
`)

	cfg, err := LoadConfig(configFile)

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 3, cfg.Layout.Workers)
	assert.Equal(suite.T(), 100, cfg.Layout.ParallelThreshold)
	assert.Equal(suite.T(), 2, cfg.Search.Workers)
	assert.Equal(suite.T(), 64, cfg.Search.BatchSize)
	assert.Equal(suite.T(), []int{8, 32}, cfg.Analysis.BlockSizes)
	assert.Equal(suite.T(), "debug", cfg.Log.Level)
	assert.Equal(suite.T(), "abcdefg", cfg.Demo.Keys)
	assert.Equal(suite.T(), "dz", cfg.Demo.Queries)
}

func (suite *ConfigTestSuite) TestLoadConfigFromSearchPath() {
	suite.writeConfig("log:\n  level: warn\n")

	cfg, err := LoadConfig("")

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "warn", cfg.Log.Level)
}

func (suite *ConfigTestSuite) TestEnvironmentOverride() {
	suite.T().Setenv("VEBT_SEARCH_BATCHSIZE", "9")

	cfg, err := LoadConfig("")

	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), 9, cfg.Search.BatchSize)
}

func (suite *ConfigTestSuite) TestInvalidValuesRejected() {
	configFile := suite.writeConfig("search:\n  batchSize: 0\n")

	_, err := LoadConfig(configFile)
	assert.Error(suite.T(), err)

	configFile = suite.writeConfig("analysis:\n  blockSizes: [4, -1]\n")
	_, err = LoadConfig(configFile)
	assert.Error(suite.T(), err)
}

func (suite *ConfigTestSuite) TestMalformedFile() {
	configFile := suite.writeConfig("layout: [unterminated\n")

	_, err := LoadConfig(configFile)
	assert.Error(suite.T(), err)
	assert.Contains(suite.T(), err.Error(), "failed to read config file")
}

func (suite *ConfigTestSuite) TestLayoutOptionsBuildTree() {
	cfg, err := LoadConfig("")
	require.NoError(suite.T(), err)

	tree, err := layout.Build([]byte(cfg.Demo.Keys), cfg.LayoutOptions()...)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), "HDLBACFEGJIKNMO", string(tree.Layout()))
}
