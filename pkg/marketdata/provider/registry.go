package provider

import (
	"sort"

	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"github.com/rxtech-lab/argo-intraday/pkg/schema"
)

// ProviderInfo contains metadata about a market data provider.
type ProviderInfo struct {
	Name            string `json:"name"`
	DisplayName     string `json:"displayName"`
	Description     string `json:"description"`
	RequiresAuth    bool   `json:"requiresAuth"`
	SupportsStream  bool   `json:"supportsStream"`
	SupportsHistory bool   `json:"supportsHistory"`
}

var providerRegistry = map[ProviderType]ProviderInfo{
	ProviderPolygon: {
		Name:            string(ProviderPolygon),
		DisplayName:     "Polygon.io",
		Description:     "US equities minute aggregates over REST and websocket",
		RequiresAuth:    true,
		SupportsStream:  true,
		SupportsHistory: true,
	},
	ProviderAlpaca: {
		Name:            string(ProviderAlpaca),
		DisplayName:     "Alpaca Market Data",
		Description:     "US equities bars from the Alpaca data API (IEX or SIP feed)",
		RequiresAuth:    true,
		SupportsStream:  true,
		SupportsHistory: true,
	},
	ProviderFile: {
		Name:            string(ProviderFile),
		DisplayName:     "Local files",
		Description:     "Parquet or CSV files downloaded earlier, read through DuckDB",
		RequiresAuth:    false,
		SupportsStream:  false,
		SupportsHistory: true,
	},
}

// GetSupportedProviders returns the provider names in alphabetical order.
func GetSupportedProviders() []string {
	names := make([]string, 0, len(providerRegistry))
	for providerType := range providerRegistry {
		names = append(names, string(providerType))
	}

	sort.Strings(names)

	return names
}

// GetProviderInfo returns metadata for a specific provider.
func GetProviderInfo(providerName string) (ProviderInfo, error) {
	info, exists := providerRegistry[ProviderType(providerName)]
	if !exists {
		return ProviderInfo{}, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerName)
	}

	return info, nil
}

// GetConfigSchema returns the JSON schema for a provider's configuration.
func GetConfigSchema(providerName string) (string, error) {
	switch ProviderType(providerName) {
	case ProviderPolygon:
		//nolint:exhaustruct // Empty struct is intentional for schema generation
		return schema.ToJSONSchema(PolygonConfig{})
	case ProviderAlpaca:
		//nolint:exhaustruct // Empty struct is intentional for schema generation
		return schema.ToJSONSchema(AlpacaDataConfig{})
	case ProviderFile:
		//nolint:exhaustruct // Empty struct is intentional for schema generation
		return schema.ToJSONSchema(FileConfig{})
	default:
		return "", errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerName)
	}
}

// GetKeychainFields returns the names of the secret fields of a provider's configuration.
func GetKeychainFields(providerName string) ([]string, error) {
	switch ProviderType(providerName) {
	case ProviderPolygon:
		//nolint:exhaustruct // Empty struct is intentional for field introspection
		return schema.GetKeychainFields(PolygonConfig{}), nil
	case ProviderAlpaca:
		//nolint:exhaustruct // Empty struct is intentional for field introspection
		return schema.GetKeychainFields(AlpacaDataConfig{}), nil
	case ProviderFile:
		//nolint:exhaustruct // Empty struct is intentional for field introspection
		return schema.GetKeychainFields(FileConfig{}), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerName)
	}
}

// ParseProviderConfig parses a JSON configuration string for the given provider.
// The result is accepted by NewMarketDataProvider.
func ParseProviderConfig(providerName string, jsonConfig string) (any, error) {
	switch ProviderType(providerName) {
	case ProviderPolygon:
		return ParsePolygonConfig(jsonConfig)
	case ProviderAlpaca:
		return ParseAlpacaDataConfig(jsonConfig)
	case ProviderFile:
		return ParseFileConfig(jsonConfig)
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported market data provider: %s", providerName)
	}
}
