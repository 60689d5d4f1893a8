package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ougirez/iodmap/internal/pkg/constants"
	"github.com/spf13/viper"
)

func TestDatasetURLUsesBaseAndOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	if err := Load(""); err != nil {
		t.Fatalf("Load: %v", err)
	}
	viper.Set(constants.ViperDataBaseURL, "http://example.test/root/")

	got, err := DatasetURL(DatasetEnglishLA)
	if err != nil {
		t.Fatalf("DatasetURL: %v", err)
	}
	if got != "http://example.test/root/data/la_english_iod_2019.csv" {
		t.Fatalf("url: got=%s", got)
	}

	viper.Set(constants.ViperDataDatasets+"."+DatasetWelshLSOA, "{base}/mirror/wales.csv")
	got, err = DatasetURL(DatasetWelshLSOA)
	if err != nil {
		t.Fatalf("DatasetURL: %v", err)
	}
	if got != "http://example.test/root/mirror/wales.csv" {
		t.Fatalf("override url: got=%s", got)
	}

	if _, err := DatasetURL("nope"); err == nil {
		t.Fatalf("unknown dataset: expected error")
	}
}

func TestLoadReadsFileAndValidate(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("access:\n  password: letmein\n  token_secret: s3cret\npipeline:\n  join_key: name\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if viper.GetInt(constants.ViperRowCeiling) != 5000 {
		t.Fatalf("row ceiling default: got=%d", viper.GetInt(constants.ViperRowCeiling))
	}
	if len(viper.GetStringSlice(constants.ViperOverflowLAs)) != 5 {
		t.Fatalf("overflow las default: got=%v", viper.GetStringSlice(constants.ViperOverflowLAs))
	}

	viper.Set(constants.ViperJoinKey, "postcode")
	if err := Validate(); err == nil {
		t.Fatalf("Validate: expected error for bad join key")
	}
}

func TestValidateRequiresSecret(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	if err := Load(""); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := Validate(); err == nil {
		t.Fatalf("Validate: expected error without password")
	}
}
