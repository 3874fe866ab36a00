package attitude

import "github.com/flohusson/attitude-emoi/internal/runtimeconfig"

var (
	ErrContentRootRequired       = runtimeconfig.ErrContentRootRequired
	ErrContentBackendUnknown     = runtimeconfig.ErrContentBackendUnknown
	ErrContentDSNRequired        = runtimeconfig.ErrContentDSNRequired
	ErrRedisURLRequired          = runtimeconfig.ErrRedisURLRequired
	ErrGeneratorProviderUnknown  = runtimeconfig.ErrGeneratorProviderUnknown
	ErrGeneratorMaxTokensInvalid = runtimeconfig.ErrGeneratorMaxTokensInvalid
	ErrLoggingProviderRequired   = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown    = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid       = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid      = runtimeconfig.ErrLoggingFormatInvalid
	ErrHTTPAddrRequired          = runtimeconfig.ErrHTTPAddrRequired
)

type (
	Config          = runtimeconfig.Config
	ContentConfig   = runtimeconfig.ContentConfig
	SiteConfig      = runtimeconfig.SiteConfig
	MarkdownConfig  = runtimeconfig.MarkdownConfig
	GeneratorConfig = runtimeconfig.GeneratorConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
	HTTPConfig      = runtimeconfig.HTTPConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a TOML file over the defaults. A missing file yields the
// defaults; exists reports whether it was found.
func LoadConfig(path string) (cfg Config, exists bool, err error) {
	return runtimeconfig.Load(path)
}
