package config

import (
	"bytes"
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sinbandera-io/vehicular-control/internal/chains"
	"github.com/sinbandera-io/vehicular-control/internal/constants"
	"github.com/sinbandera-io/vehicular-control/internal/minting"
	"github.com/sinbandera-io/vehicular-control/internal/nftprogram"
)

//go:embed config.yaml
var EmbeddedConfigYAML []byte

const (
	configFileName = "config.yaml"
	envPrefix      = "VC"

	BackendIPFS = "ipfs"
	BackendS3   = "s3"
)

type NetworkConfig struct {
	chains.NetworkConfig `mapstructure:",squash"`
	MintCommitment       string        `mapstructure:"mintCommitment"`
	ConfirmTimeout       time.Duration `mapstructure:"confirmTimeout"`
	PollInterval         time.Duration `mapstructure:"pollInterval"`
	TxExplorer           string        `mapstructure:"txExplorer"`
	MintExplorer         string        `mapstructure:"mintExplorer"`
}

type IPFSConfig struct {
	PinningURL string        `mapstructure:"pinningUrl"`
	GatewayURL string        `mapstructure:"gatewayUrl"`
	Token      string        `mapstructure:"token"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type S3Config struct {
	Bucket          string `mapstructure:"bucket"`
	Region          string `mapstructure:"region"`
	Endpoint        string `mapstructure:"endpoint"`
	PublicBaseURL   string `mapstructure:"publicBaseUrl"`
	AccessKeyID     string `mapstructure:"accessKeyId"`
	SecretAccessKey string `mapstructure:"secretAccessKey"`
	KeyPrefix       string `mapstructure:"keyPrefix"`
}

type StorageConfig struct {
	Backend string     `mapstructure:"backend"`
	IPFS    IPFSConfig `mapstructure:"ipfs"`
	S3      S3Config   `mapstructure:"s3"`
}

type ServerSettings struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowedOrigins"`
	JWTSecret      string   `mapstructure:"jwtSecret"`
}

type ClientSettings struct {
	ServerURL    string        `mapstructure:"serverUrl"`
	Token        string        `mapstructure:"token"`
	KeystorePath string        `mapstructure:"keystorePath"`
	SessionPath  string        `mapstructure:"sessionPath"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type Config struct {
	Network    NetworkConfig            `mapstructure:"network"`
	Collection minting.CollectionConfig `mapstructure:"collection"`
	Storage    StorageConfig            `mapstructure:"storage"`
	Server     ServerSettings           `mapstructure:"server"`
	Client     ClientSettings           `mapstructure:"client"`
}

// DefaultPaths lists the directories searched for config.yaml, lowest precedence first.
func DefaultPaths() []string {
	home, _ := os.UserHomeDir()
	paths := []string{}
	if home != "" {
		paths = append(paths, filepath.Join(home, ".config", constants.AppName))
	}
	return append(paths, "config", ".")
}

func Load() (*Config, error) {
	return LoadFrom(DefaultPaths()...)
}

// LoadFrom layers the embedded defaults, any config.yaml found in paths and
// VC_* environment variables.
func LoadFrom(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(EmbeddedConfigYAML)); err != nil {
		return nil, errors.Wrap(err, "read embedded config")
	}

	for _, dir := range paths {
		file := filepath.Join(dir, configFileName)
		if _, err := os.Stat(file); err != nil {
			continue
		}
		v.SetConfigFile(file)
		if err := v.MergeInConfig(); err != nil {
			return nil, errors.Wrapf(err, "merge %s", file)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables already set. Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Wrapf(err, "load %s", f)
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if _, err := chains.Resolve(c.Network.NetworkConfig); err != nil {
		return errors.Wrap(err, "network")
	}
	if _, err := chains.ParseCommitment(c.Network.MintCommitment); err != nil {
		return errors.Wrap(err, "network.mintCommitment")
	}

	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	switch c.Storage.Backend {
	case BackendIPFS:
	case BackendS3:
		if strings.TrimSpace(c.Storage.S3.Bucket) == "" {
			return errors.New("storage.s3.bucket is required for the s3 backend")
		}
	default:
		return errors.Newf("invalid storage.backend %q (allowed: ipfs, s3)", c.Storage.Backend)
	}

	if c.Collection.SellerFeeBasisPoints > 10000 {
		return errors.Newf("collection.sellerFeeBasisPoints %d above 10000", c.Collection.SellerFeeBasisPoints)
	}
	if len(c.Collection.Symbol) > nftprogram.MaxSymbolLen {
		return errors.Newf("collection.symbol %q longer than %d bytes", c.Collection.Symbol, nftprogram.MaxSymbolLen)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.Newf("invalid server.port %d", c.Server.Port)
	}
	return nil
}

// PayerSecret reads the base58 payer key of the mint server.
func PayerSecret() string {
	return os.Getenv(constants.PayerKeyEnv)
}
