package config

// PipelineConfig tunes pipeline-wide behaviour.
type PipelineConfig struct {
	// SchemaDir is the directory holding form schema JSON files.
	SchemaDir string

	// DefaultSchema is the schema used when the caller does not name one.
	DefaultSchema string

	// InferenceConcurrency bounds concurrent LLM inference calls during
	// form population. 1 means strictly sequential.
	InferenceConcurrency int
}

func loadPipelineConfig() PipelineConfig {
	return PipelineConfig{
		SchemaDir:            getEnv("PILLBOT_SCHEMA_DIR", "data"),
		DefaultSchema:        getEnv("PILLBOT_DEFAULT_SCHEMA", "InsureCo_Ozempic"),
		InferenceConcurrency: getEnvInt("PILLBOT_INFERENCE_CONCURRENCY", 1),
	}
}
