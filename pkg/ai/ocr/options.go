package ocr

// Options for OCR operations
type Options struct {
	// Model selection
	Model string

	// Whether to include base64 image data in the response
	IncludeImageBase64 bool

	// Specific pages to process (all pages when empty)
	Pages []int

	// Provider-specific
	ProviderOptions map[string]any
}

type Option func(*Options)

// WithModel sets the OCR model
func WithModel(model string) Option {
	return func(o *Options) { o.Model = model }
}

// WithImageBase64 requests embedded image data in the response
func WithImageBase64() Option {
	return func(o *Options) { o.IncludeImageBase64 = true }
}

// WithPages restricts processing to specific zero-indexed pages
func WithPages(pages ...int) Option {
	return func(o *Options) { o.Pages = pages }
}

// WithProviderOption sets a provider-specific option
func WithProviderOption(key string, value any) Option {
	return func(o *Options) {
		if o.ProviderOptions == nil {
			o.ProviderOptions = make(map[string]any)
		}
		o.ProviderOptions[key] = value
	}
}

func DefaultOptions() *Options {
	return &Options{
		ProviderOptions: make(map[string]any),
	}
}

func ApplyOptions(opts ...Option) *Options {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return options
}
