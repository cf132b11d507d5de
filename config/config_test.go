package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
cache_location: /tmp/pulsecache
cache_max_bytes: 100000000
check_cache_every: 60
location_details:
  - location_name: TestDir
    location_type: localFile
    path: /data/pulses
  - location_name: archive
    location_type: minio
    minio_bucket: runs
    location: minio.example.com:9000
    minio_access_key: key
    minio_secret_key: secret
    minio_use_ssl: true
`

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pulse_config.yml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, testConfigYAML))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/pulsecache", cfg.CacheLocation)
	assert.Equal(t, int64(100000000), cfg.CacheMaxBytes)
	assert.Equal(t, 60, cfg.CheckCacheEvery)
	require.Len(t, cfg.LocationDetails, 2)

	local, ok := cfg.FindLocation("TestDir")
	require.True(t, ok)
	assert.Equal(t, "localFile", local.LocationType)
	assert.Equal(t, "/data/pulses", local.Path)

	remote, ok := cfg.FindLocation("archive")
	require.True(t, ok)
	assert.Equal(t, "minio", remote.LocationType)
	assert.Equal(t, "runs", remote.MinioBucket)
	assert.True(t, remote.MinioUseSSL)

	_, ok = cfg.FindLocation("nope")
	assert.False(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	assert.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	_, err := Load(writeConfig(t, "cache_location: [unclosed"))
	assert.Error(t, err)
}
