package config

import (
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"

	"github.com/rxtech-lab/argo-intraday/internal/logger"
	tradingprovider "github.com/rxtech-lab/argo-intraday/internal/trading/provider"
	"github.com/rxtech-lab/argo-intraday/pkg/errors"
	"github.com/rxtech-lab/argo-intraday/pkg/marketdata/provider"
	"go.uber.org/zap"
)

// Environment variables holding the credentials.
const (
	EnvPolygonAPIKey   = "POLYGON_API_KEY"
	EnvAlpacaKeyID     = "APCA_API_KEY_ID"
	EnvAlpacaSecretKey = "APCA_API_SECRET_KEY"
	EnvAlpacaPaperURL  = "APCA_PAPER_URL"
	EnvAlpacaLiveURL   = "APCA_LIVE_URL"
	EnvAlpacaDataFeed  = "APCA_DATA_FEED"
)

// Secrets are the credentials read from the environment. They never come from the YAML file.
type Secrets struct {
	PolygonAPIKey   string
	AlpacaKeyID     string
	AlpacaSecretKey string
	AlpacaPaperURL  string
	AlpacaLiveURL   string
	AlpacaDataFeed  string
}

// LoadSecrets loads the given .env files into the process environment, then
// reads the credentials. A missing .env file is not an error; variables
// already set in the environment win over the file.
func LoadSecrets(log *logger.Logger, envFiles ...string) Secrets {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil {
			log.Debug("No env file loaded", zap.String("file", file), zap.Error(err))
		}
	}

	return Secrets{
		PolygonAPIKey:   strings.TrimSpace(os.Getenv(EnvPolygonAPIKey)),
		AlpacaKeyID:     strings.TrimSpace(os.Getenv(EnvAlpacaKeyID)),
		AlpacaSecretKey: strings.TrimSpace(os.Getenv(EnvAlpacaSecretKey)),
		AlpacaPaperURL:  strings.TrimSpace(os.Getenv(EnvAlpacaPaperURL)),
		AlpacaLiveURL:   strings.TrimSpace(os.Getenv(EnvAlpacaLiveURL)),
		AlpacaDataFeed:  strings.TrimSpace(os.Getenv(EnvAlpacaDataFeed)),
	}
}

// RequireDataSource checks the credentials of a market data provider.
func (s Secrets) RequireDataSource(source string) error {
	switch provider.ProviderType(source) {
	case provider.ProviderPolygon:
		return require(map[string]string{EnvPolygonAPIKey: s.PolygonAPIKey})
	case provider.ProviderAlpaca:
		return require(map[string]string{EnvAlpacaKeyID: s.AlpacaKeyID, EnvAlpacaSecretKey: s.AlpacaSecretKey})
	default:
		return nil
	}
}

// RequireBroker checks the credentials of a broker.
func (s Secrets) RequireBroker(broker string) error {
	if tradingprovider.ProviderType(broker) != tradingprovider.ProviderAlpaca {
		return nil
	}

	return require(map[string]string{EnvAlpacaKeyID: s.AlpacaKeyID, EnvAlpacaSecretKey: s.AlpacaSecretKey})
}

func require(values map[string]string) error {
	missing := []string{}

	for name, value := range values {
		if value == "" {
			missing = append(missing, name)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	slices.Sort(missing)

	return errors.Newf(errors.ErrCodeMissingCredentials, "missing environment variables: %s", strings.Join(missing, ", "))
}
