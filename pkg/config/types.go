package config

type Config struct {
	Report   ReportConfig   `json:"report"`
	Currency CurrencyConfig `json:"currency"`
	Export   ExportConfig   `json:"export"`
	// Cron spec for the export task, for example "@every 1h"
	UpdateFrequency string `json:"updateFrequency"`
}

type Secrets struct {
	ExchangeRatesAPI ExchangeRatesAPISecrets `json:"exchangeRatesApi"`
	Influx           InfluxSecrets           `json:"influx"`
	SQL              SqlSecrets              `json:"sql"`

	// Alternative to the SQL struct, takes precedence when set
	DatabaseURL string `json:"databaseUrl" env:"DATABASE_URL"`
}

///////////////////////////////////////////////////////////////////////////////////////
// Report
///////////////////////////////////////////////////////////////////////////////////////

type ReportConfig struct {
	// Local path or gs://bucket/object of a .json, .csv or .xlsx file
	Source       string `json:"source"`
	Sheet        string `json:"sheet"`
	CSVDelimiter string `json:"csvDelimiter"`

	// Filters, empty values select everything
	Status   string `json:"status"`
	Currency string `json:"currency"`
	Search   string `json:"search"`
	Date     string `json:"date"`

	// One of none, asc, desc
	Sort       string   `json:"sort"`
	Categories []string `json:"categories"`

	// text or json
	Format string `json:"format"`
}

const (
	SortNone       = "none"
	SortAscending  = "asc"
	SortDescending = "desc"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

///////////////////////////////////////////////////////////////////////////////////////
// Currency
///////////////////////////////////////////////////////////////////////////////////////

type CurrencyConfig struct {
	Target      string             `json:"target"`
	Supported   []string           `json:"supported"`
	Conversions CurrencyConversion `json:"conversions"`
	Endpoint    string             `json:"endpoint"`
}

type CurrencyConversion map[string]float64

///////////////////////////////////////////////////////////////////////////////////////
// Export
///////////////////////////////////////////////////////////////////////////////////////

type ExportConfig struct {
	SQL struct {
		Database  string `json:"database"`
		Table     string `json:"table"`
		BatchSize int    `json:"batchSize"`
	} `json:"sql"`
	Influx struct {
		Database    string `json:"database"`
		Measurement string `json:"measurement"`
	} `json:"influx"`
}

type ExchangeRatesAPISecrets struct {
	APIKey string `json:"apiKey" env:"EXCHANGE_RATES_API_KEY"`
}

type InfluxSecrets struct {
	InfluxEndpoint string `json:"influxEndpoint" env:"INFLUX_ENDPOINT"`
	InfluxUsername string `json:"influxUsername" env:"INFLUX_USERNAME"`
	InfluxPassword string `json:"influxPassword" env:"INFLUX_PASSWORD"`
}

type SqlSecrets struct {
	SqlHost     string `json:"sqlHost" env:"SQL_HOST"`
	SqlUsername string `json:"sqlUsername" env:"SQL_USERNAME"`
	SqlPassword string `json:"sqlPassword" env:"SQL_PASSWORD"`
}
