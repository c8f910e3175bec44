package config

import (
	"github.com/IBM/sarama"
	"github.com/kelseyhightower/envconfig"
)

var singleConfig *Config = nil

type Config struct {
	Database *dbConfig
	Service  *svcConfig
	Pcap     *PcapConfig
	Storage  *StorageConfig
}

type dbConfig struct {
	Hostname string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	Name     string `envconfig:"DB_NAME" default:"pcap"`
	User     string `envconfig:"DB_USER" default:"admin"`
	Password string `envconfig:"DB_PASS" default:"adminpass"`
}

type svcConfig struct {
	Address  string `envconfig:"PCAP_QUERY_ADDRESS" default:":3443"`
	BaseUrl  string `envconfig:"PCAP_QUERY_BASE_URL" default:"https://localhost:3443"`
	LogLevel string `envconfig:"PCAP_QUERY_LOG_LEVEL" default:"info"`
	// MetricsAddress serves /metrics on its own listener.
	MetricsAddress string   `envconfig:"PCAP_QUERY_METRICS_ADDRESS" default:":8080"`
	CorsOrigins    []string `envconfig:"PCAP_QUERY_CORS_ORIGINS" default:"http://localhost:3000"`
	// Backend selects the execution backend. Only "river" is supported.
	Backend string `envconfig:"PCAP_QUERY_BACKEND" default:"river"`
	// EventSource is the cloudevents source of every job lifecycle event.
	EventSource string `envconfig:"PCAP_QUERY_EVENT_SOURCE" default:"pcap.query"`
	Kafka       kafkaConfig
	Auth    Auth
}

// PcapConfig holds the defaults applied to a fixed query when the caller leaves them unset.
type PcapConfig struct {
	BasePath              string `envconfig:"PCAP_BASE_PATH" default:"/apps/metron/pcap/input"`
	BaseInterimResultPath string `envconfig:"PCAP_BASE_INTERIM_RESULT_PATH" default:"/apps/metron/pcap/interim"`
	FinalOutputPath       string `envconfig:"PCAP_FINAL_OUTPUT_PATH" default:"/apps/metron/pcap/output"`
	NumReducers           int    `envconfig:"PCAP_NUM_REDUCERS" default:"10"`
	PageSize              int    `envconfig:"PCAP_PAGE_SIZE" default:"10"`
	PdmlScriptPath        string `envconfig:"PCAP_PDML_SCRIPT_PATH" default:"/usr/metron/bin/pcap_to_pdml.sh"`
}

type StorageConfig struct {
	// Type is one of "local" or "minio".
	Type      string `envconfig:"PCAP_STORAGE_TYPE" default:"local"`
	LocalRoot string `envconfig:"PCAP_STORAGE_LOCAL_ROOT" default:"/"`
	Endpoint  string `envconfig:"PCAP_STORAGE_ENDPOINT" default:"localhost:9000"`
	Bucket    string `envconfig:"PCAP_STORAGE_BUCKET" default:"pcap"`
	AccessKey string `envconfig:"PCAP_STORAGE_ACCESS_KEY" default:""`
	SecretKey string `envconfig:"PCAP_STORAGE_SECRET_KEY" default:""`
	UseSSL    bool   `envconfig:"PCAP_STORAGE_USE_SSL" default:"false"`
}

type kafkaConfig struct {
	Brokers  []string `envconfig:"PCAP_QUERY_KAFKA_BROKERS" default:""`
	Topic    string   `envconfig:"PCAP_QUERY_KAFKA_TOPIC" default:"pcap.query.events"`
	Version  string   `envconfig:"PCAP_QUERY_KAFKA_VERSION" default:"2.8.0"`
	ClientID string   `envconfig:"PCAP_QUERY_KAFKA_CLIENT_ID" default:"pcap-query"`
}

// SaramaConfig returns a producer configuration for the configured broker version.
func (k kafkaConfig) SaramaConfig() (*sarama.Config, error) {
	version, err := sarama.ParseKafkaVersion(k.Version)
	if err != nil {
		return nil, err
	}

	cfg := sarama.NewConfig()
	cfg.Version = version
	cfg.ClientID = k.ClientID
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	return cfg, nil
}

type Auth struct {
	AuthenticationType string `envconfig:"PCAP_QUERY_AUTH" default:""`
	JwkCertURL         string `envconfig:"PCAP_QUERY_JWK_URL" default:""`
	// LocalOwner owns every job when authentication is disabled.
	LocalOwner string `envconfig:"PCAP_QUERY_LOCAL_OWNER" default:"admin"`
}

func New() (*Config, error) {
	if singleConfig == nil {
		singleConfig = new(Config)
		if err := envconfig.Process("", singleConfig); err != nil {
			return nil, err
		}
	}
	return singleConfig, nil
}
