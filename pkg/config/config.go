package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"dario.cat/mergo"
	"github.com/Shopify/ejson"
	"github.com/caarlos0/env/v6"
	"github.com/ghodss/yaml"
	"k8s.io/klog"
)

const (
	DefaultConfigEnvVar = "BANKREPORT_CONFIG"
	EjsonKeyFileEnvVar  = "BANKREPORT_EJSON_SECRET_KEY"
	ejsonKeyDir         = "/opt/ejson/keys"
)

var config Config
var secrets Secrets

// Defaults holds the values used for anything the config file leaves empty.
func Defaults() Config {
	c := Config{
		Report: ReportConfig{
			CSVDelimiter: "auto",
			Sort:         SortNone,
			Format:       FormatText,
			Categories:   []string{},
		},
		Currency: CurrencyConfig{
			Target:    "RUB",
			Supported: []string{"USD", "EUR"},
		},
		UpdateFrequency: "@every 24h",
	}
	c.Export.SQL.Database = "bankreport"
	c.Export.SQL.Table = "transactions"
	c.Export.SQL.BatchSize = 500
	c.Export.Influx.Database = "bankreport"
	c.Export.Influx.Measurement = "transactions"
	return c
}

func ReadConfig(configEnvVar, configFile, secretsFile string) error {
	_, err := readConfig(configEnvVar, configFile)
	if err != nil {
		return err
	}

	_, err = readSecrets(secretsFile)
	if err != nil {
		return err
	}
	return nil
}

func CurrentConfig() *Config {
	return &config
}

func CurrentSecrets() *Secrets {
	return &secrets
}

func CurrentReportConfig() *ReportConfig {
	return &config.Report
}

func CurrentCurrencyConfig() *CurrencyConfig {
	return &config.Currency
}

func CurrentSqlSecrets() *SqlSecrets {
	return &secrets.SQL
}

// Validate checks the values that cannot be corrected by defaults.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Report.Sort) {
	case "", SortNone, SortAscending, SortDescending:
	default:
		return fmt.Errorf("report.sort must be one of %s, %s or %s, got %q", SortNone, SortAscending, SortDescending, c.Report.Sort)
	}

	switch strings.ToLower(c.Report.Format) {
	case "", FormatText, FormatJSON:
	default:
		return fmt.Errorf("report.format must be %s or %s, got %q", FormatText, FormatJSON, c.Report.Format)
	}

	for code, rate := range c.Currency.Conversions {
		if rate <= 0 {
			return fmt.Errorf("currency.conversions.%s must be positive, got %v", code, rate)
		}
	}

	return nil
}

func readConfig(envName, filename string) (*Config, error) {
	var raw []byte
	var err error

	rawEnv := os.Getenv(envName)
	if rawEnv != "" {
		klog.Infof("Reading config from environment variable %s", envName)
		raw = []byte(rawEnv)
	} else {
		raw, err = os.ReadFile(filename)
		if err != nil {
			return nil, err
		}
	}

	parsed := Config{}
	if err = yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}

	if err = mergo.Merge(&parsed, Defaults()); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}

	if err = parsed.Validate(); err != nil {
		return nil, err
	}

	config = parsed

	return &config, nil
}

func readSecrets(filename string) (*Secrets, error) {
	ejsonSecrets, ejsonErr := readEjsonSecrets(filename)

	envSecrets, envErr := readEnvSecrets()

	if ejsonErr == nil && envErr == nil {
		err := mergo.Merge(envSecrets, *ejsonSecrets)
		secrets = *envSecrets
		if err != nil {
			return nil, fmt.Errorf("failed to merge secrets: %w", err)
		}
	} else if ejsonErr != nil && envErr == nil {
		klog.Warningf("Error parsing ejson secrets, using environment only: %v", ejsonErr)
		secrets = *envSecrets
	} else if ejsonErr == nil && envErr != nil {
		klog.Warningf("Error parsing environment secrets, using ejson only: %v", envErr)
		secrets = *ejsonSecrets
	} else {
		return nil, fmt.Errorf("failed to parse secrets. Ejson error: %v. Env error: %v", ejsonErr, envErr)
	}

	return &secrets, nil
}

func readEjsonSecrets(filename string) (*Secrets, error) {
	ejsonSecrets := Secrets{}
	ejsonKeyFile := os.Getenv(EjsonKeyFileEnvVar)
	ejsonKey := []byte{}
	var err error

	if ejsonKeyFile != "" {
		ejsonKey, err = os.ReadFile(ejsonKeyFile)
		if err != nil {
			return nil, err
		}
	}
	raw, err := ejson.DecryptFile(filename, ejsonKeyDir, strings.TrimSpace(string(ejsonKey)))
	if err != nil {
		return nil, err
	}

	err = json.Unmarshal(raw, &ejsonSecrets)
	return &ejsonSecrets, err
}

func readEnvSecrets() (*Secrets, error) {
	envSecrets := Secrets{}
	err := env.Parse(&envSecrets)
	return &envSecrets, err
}
