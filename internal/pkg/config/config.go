package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ougirez/iodmap/internal/pkg/constants"
	"github.com/spf13/viper"
)

const DefaultBaseURL = "https://raw.githubusercontent.com/j-gillam/geographical_iod_analysis/main"

// Dataset ids understood by the datasource package.
const (
	DatasetEnglishLA             = "english_la"
	DatasetEnglishLSOA           = "english_lsoa"
	DatasetWelshLSOA             = "welsh_lsoa"
	DatasetEnglandWales          = "england_wales"
	DatasetLABoundaries          = "la_boundaries"
	DatasetEnglishLSOABoundaries = "english_lsoa_boundaries"
	DatasetWelshLSOABoundaries   = "welsh_lsoa_boundaries"
)

var defaultDatasets = map[string]string{
	DatasetEnglishLA:             "{base}/data/la_english_iod_2019.csv",
	DatasetEnglishLSOA:           "{base}/data/lsoa_english_iod_2019.csv",
	DatasetWelshLSOA:             "{base}/data/lsoa_welsh_iod_2019.csv",
	DatasetEnglandWales:          "{base}/data/england_wales_decile_comparison.csv",
	DatasetLABoundaries:          "{base}/shapefiles/la_clean_shapefiles_2019.geojson",
	DatasetEnglishLSOABoundaries: "{base}/shapefiles/lsoa_clean_shapefiles_2011_{region}_reduced.geojson",
	DatasetWelshLSOABoundaries:   "{base}/shapefiles/lsoa_clean_shapefiles_2011_wales.geojson",
}

var DefaultOverflowLAs = []string{
	"Brighton and Hove",
	"Medway",
	"Milton Keynes",
	"Southampton",
	"Portsmouth",
}

// Load registers defaults, reads the optional config file and binds IOD_* env vars.
func Load(path string) error {
	viper.SetDefault(constants.ViperServerAddr, ":8080")
	viper.SetDefault(constants.ViperServerAllowOrigins, []string{"http://localhost:3000"})
	viper.SetDefault(constants.ViperShutdownTimeout, 10*time.Second)
	viper.SetDefault(constants.ViperTrustedProxies, []string{})
	viper.SetDefault(constants.ViperLogMode, "development")

	viper.SetDefault(constants.ViperTokenTTL, 12*time.Hour)
	viper.SetDefault(constants.ViperAttemptsPerMinute, 10)
	viper.SetDefault(constants.ViperSessionIdleTTL, 2*time.Hour)

	viper.SetDefault(constants.ViperDataSource, constants.DataSourceHTTP)
	viper.SetDefault(constants.ViperDataBaseURL, DefaultBaseURL)
	viper.SetDefault(constants.ViperDataHTTPTimeout, 30*time.Second)
	viper.SetDefault(constants.ViperDataWarmOnStart, false)
	viper.SetDefault(constants.ViperPostgresMaxWait, 30*time.Second)

	viper.SetDefault(constants.ViperJoinKey, "code")
	viper.SetDefault(constants.ViperOverflowLAs, DefaultOverflowLAs)
	viper.SetDefault(constants.ViperRowCeiling, 5000)
	viper.SetDefault(constants.ViperComparisonMaxLAs, 5)

	viper.SetEnvPrefix("IOD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path == "" {
		return nil
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("viper.ReadInConfig: %w", err)
	}
	return nil
}

// DatasetURL resolves the URL of a dataset: data.datasets.<id> overrides the built-in
// template, and {base} is replaced by data.base_url.
func DatasetURL(id string) (string, error) {
	tmpl := viper.GetString(constants.ViperDataDatasets + "." + id)
	if tmpl == "" {
		var ok bool
		tmpl, ok = defaultDatasets[id]
		if !ok {
			return "", fmt.Errorf("unknown dataset %q", id)
		}
	}
	base := strings.TrimRight(viper.GetString(constants.ViperDataBaseURL), "/")
	return strings.ReplaceAll(tmpl, "{base}", base), nil
}

// Validate checks the settings that have no sane default.
func Validate() error {
	if viper.GetString(constants.ViperAccessPassword) == "" && viper.GetString(constants.ViperAccessPasswordHash) == "" {
		return errors.New("access.password or access.password_hash must be set")
	}
	if viper.GetString(constants.ViperSecretKey) == "" {
		return errors.New("access.token_secret must be set")
	}
	switch viper.GetString(constants.ViperDataSource) {
	case constants.DataSourceHTTP:
	case constants.DataSourcePostgres:
		if viper.GetString(constants.ViperPostgresDSN) == "" {
			return errors.New("postgres.dsn must be set when data.source=postgres")
		}
	default:
		return fmt.Errorf("unknown data.source %q", viper.GetString(constants.ViperDataSource))
	}
	switch viper.GetString(constants.ViperJoinKey) {
	case "code", "name":
	default:
		return fmt.Errorf("pipeline.join_key must be code or name, got %q", viper.GetString(constants.ViperJoinKey))
	}
	return nil
}
