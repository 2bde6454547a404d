package config

// StoreConfig configures the JSON document store.
type StoreConfig struct {
	// DataDir is the directory holding document metadata and stage output.
	DataDir string
}

func loadStoreConfig() StoreConfig {
	return StoreConfig{
		DataDir: getEnv("PILLBOT_DATA_DIR", "data"),
	}
}
