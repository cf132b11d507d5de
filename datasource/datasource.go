package datasource

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/Quantum-Si/qsi-pulse-reader/cache"
	"github.com/Quantum-Si/qsi-pulse-reader/config"
	"github.com/Quantum-Si/qsi-pulse-reader/pulsebin"
)

// OpenPulseFile resolves a location name from the configuration and opens
// the named pulses.bin file there. Local files are opened in place; minio
// objects are fetched into the local cache first so the reader gets
// random access to a real file.
func OpenPulseFile(
	configuration config.Configuration,
	logger *zap.Logger,
	locationName string,
	fileName string,
) (*pulsebin.Reader, error) {
	currentLocation, ok := configuration.FindLocation(locationName)
	if !ok {
		return nil, fmt.Errorf("unknown location %q", locationName)
	}

	switch currentLocation.LocationType {
	case "localFile":
		fullFilepath := filepath.Join(currentLocation.Path, fileName)
		logger.Info(
			"Reading local pulse file",
			zap.String("location_name", locationName),
			zap.String("filename", fileName),
			zap.String("path", fullFilepath),
		)
		return pulsebin.Open(fullFilepath)
	case "minio":
		localPath, err := fetchMinioObject(configuration, logger, currentLocation, fileName)
		if err != nil {
			return nil, err
		}
		return pulsebin.Open(localPath)
	default:
		logger.Error(
			"Unsupported location type",
			zap.String("location_type", currentLocation.LocationType),
		)
		return nil, fmt.Errorf("unsupported location type %q", currentLocation.LocationType)
	}
}

// fetchMinioObject returns a local path for the requested object, pulling
// it from minio into the cache unless a cached copy already exists.
func fetchMinioObject(
	configuration config.Configuration,
	logger *zap.Logger,
	currentLocation config.Location,
	fileName string,
) (string, error) {
	fullFilepath := filepath.Join(currentLocation.Path, fileName)
	cacheFileName := cache.PulseFileCacheName(currentLocation.MinioBucket, fullFilepath)
	fileCache := &cache.Cache{Location: configuration.CacheLocation}

	if cached, err := fileCache.GetItemFromCache(cacheFileName, cache.PulseFileSubDir); err == nil {
		cached.Close()
		return filepath.Join(configuration.CacheLocation, cache.PulseFileSubDir, cacheFileName), nil
	}
	logger.Info(
		"Pulse file not in local cache, fetching",
		zap.String("bucket", currentLocation.MinioBucket),
		zap.String("object", fullFilepath),
	)

	start := time.Now()
	minioClient, err := minio.New(currentLocation.Location, &minio.Options{
		Creds:  credentials.NewStaticV4(currentLocation.MinioAccessKey, currentLocation.MinioSecretKey, ""),
		Secure: currentLocation.MinioUseSSL,
	})
	if err != nil {
		return "", fmt.Errorf("error establishing connection to minio: %w", err)
	}

	object, err := minioClient.GetObject(
		context.Background(),
		currentLocation.MinioBucket,
		fullFilepath,
		minio.GetObjectOptions{},
	)
	if err != nil {
		return "", fmt.Errorf("error requesting object from minio: %w", err)
	}
	defer object.Close()

	fileData, err := io.ReadAll(object)
	if err != nil {
		return "", fmt.Errorf("error reading object from minio: %w", err)
	}
	localPath, err := fileCache.PutItemInCache(cacheFileName, cache.PulseFileSubDir, fileData)
	if err != nil {
		return "", fmt.Errorf("error caching object: %w", err)
	}
	logger.Info(
		"Fetched pulse file from minio",
		zap.String("object", fullFilepath),
		zap.Int("bytes", len(fileData)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return localPath, nil
}

// SetupCache creates the cache directory layout and kicks off the cache
// size monitor. Call once per process when remote locations are in use.
func SetupCache(configuration config.Configuration, logger *zap.Logger) error {
	pulsePath := filepath.Join(configuration.CacheLocation, cache.PulseFileSubDir)
	if err := os.MkdirAll(pulsePath, 0755); err != nil {
		logger.Error("Error creating cache directory", zap.String("path", pulsePath), zap.Error(err))
		return err
	}
	go cache.CheckCache(
		pulsePath,
		configuration.CheckCacheEvery,
		configuration.CacheMaxBytes,
	)
	return nil
}
