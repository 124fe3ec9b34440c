package config

type Config interface {
	EnvConfig
	StoreConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetCameraDevice() string
}

// StoreConfig supplies the document store connection. A missing URI is a
// fatal startup condition, not a per-call error.
type StoreConfig interface {
	GetMongoURI() (string, error)
	GetMongoDatabase() string
}

type mainConfig struct {
	EnvVars
	Store
}

func New() Config {
	return mainConfig{}
}
