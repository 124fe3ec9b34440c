package config

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

const (
	portEnvVar          = "PORT"
	appNameVar          = "APP_NAME"
	mongoURIVar         = "MONGODB_URI"
	mongoDatabaseVar    = "MONGODB_DATABASE"
	cameraDeviceVar     = "CAMERA_DEVICE"
	defaultMongoDB      = "beyond_the_brush"
	defaultCameraDevice = "/dev/video0"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetPort() string {
	port := GetEnv(portEnvVar, "8080")
	if port != "" && port[0] != ':' {
		port = fmt.Sprintf(":%s", port)
	}
	return port
}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Beyond The Brush Portal")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func (EnvVars) GetCameraDevice() string {
	return GetEnv(cameraDeviceVar, defaultCameraDevice)
}

type Store struct{}

var _ StoreConfig = Store{}

func (Store) GetMongoURI() (string, error) {
	uri := os.Getenv(mongoURIVar)
	if uri == "" {
		return "", errors.Errorf("%s not set in environment", mongoURIVar)
	}
	return uri, nil
}

func (Store) GetMongoDatabase() string {
	return GetEnv(mongoDatabaseVar, defaultMongoDB)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
