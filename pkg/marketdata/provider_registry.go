package marketdata

import (
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/provider"
	"github.com/rxtech-lab/argo-intraday/pkg/schema"
)

// DownloadConfig is implemented by every provider's download configuration.
type DownloadConfig interface {
	Validate() error
	ToDownloadParams() (DownloadParams, error)
	ToClientConfig(dataPath string) ClientConfig
}

// GetDownloadProviders returns the providers that can download history to parquet.
func GetDownloadProviders() []string {
	return []string{string(provider.ProviderAlpaca), string(provider.ProviderPolygon)}
}

// GetDownloadConfigSchema returns the JSON schema for a provider's download configuration.
func GetDownloadConfigSchema(providerName string) (string, error) {
	switch provider.ProviderType(providerName) {
	case provider.ProviderPolygon:
		//nolint:exhaustruct // Empty struct is intentional for schema generation
		return schema.ToJSONSchema(PolygonDownloadConfig{})
	case provider.ProviderAlpaca:
		//nolint:exhaustruct // Empty struct is intentional for schema generation
		return schema.ToJSONSchema(AlpacaDownloadConfig{})
	default:
		return "", errors.Newf(errors.ErrCodeInvalidProvider, "unsupported download provider: %s", providerName)
	}
}

// GetDownloadKeychainFields returns the list of keychain field names for a provider's download configuration.
func GetDownloadKeychainFields(providerName string) ([]string, error) {
	switch provider.ProviderType(providerName) {
	case provider.ProviderPolygon:
		//nolint:exhaustruct // Empty struct is intentional for field introspection
		return schema.GetKeychainFields(PolygonDownloadConfig{}), nil
	case provider.ProviderAlpaca:
		//nolint:exhaustruct // Empty struct is intentional for field introspection
		return schema.GetKeychainFields(AlpacaDownloadConfig{}), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported download provider: %s", providerName)
	}
}

// ParseDownloadConfig parses a JSON configuration string for the given provider.
func ParseDownloadConfig(providerName string, jsonConfig string) (DownloadConfig, error) {
	switch provider.ProviderType(providerName) {
	case provider.ProviderPolygon:
		config, err := ParsePolygonConfig(jsonConfig)
		if err != nil {
			return nil, err
		}

		return config, nil
	case provider.ProviderAlpaca:
		config, err := ParseAlpacaConfig(jsonConfig)
		if err != nil {
			return nil, err
		}

		return config, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported download provider: %s", providerName)
	}
}
