package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config is the assembled runtime configuration.
type Config struct {
	ListenAddr     string
	ForwardTimeout time.Duration
	DatabaseURL    string // empty means the in-memory ledger store
	KafkaBrokers   []string
	Participants   []Participant
}

// Participant describes one provisioned institution and its opening balance.
type Participant struct {
	BIC            string
	Name           string
	AccountNumber  string
	OpeningBalance decimal.Decimal
}

type configTmp struct {
	ListenAddr        string           `yaml:"listen_addr,omitempty"`
	ForwardTimeoutStr string           `yaml:"forward_timeout,omitempty"`
	Participants      []participantTmp `yaml:"participants"`
}

type participantTmp struct {
	BIC               string `yaml:"bic"`
	Name              string `yaml:"name"`
	Account           string `yaml:"account"`
	OpeningBalanceStr string `yaml:"opening_balance"`
}

// Get loads configuration: defaults, then the yaml file when path is
// non-empty, then environment overrides (a .env file is honored when
// present).
func Get(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		ListenAddr:     ":8080",
		ForwardTimeout: 3 * time.Second,
		Participants:   defaultParticipants(),
	}

	if path != "" {
		if err := applyYaml(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("FORWARD_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, errors.Wrap(err, "incorrect FORWARD_TIMEOUT")
		}
		cfg.ForwardTimeout = d
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.KafkaBrokers = strings.Split(v, ",")
	}

	return cfg, nil
}

func applyYaml(cfg *Config, path string) error {
	f, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var tmp configTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return err
	}

	if tmp.ListenAddr != "" {
		cfg.ListenAddr = tmp.ListenAddr
	}
	if tmp.ForwardTimeoutStr != "" {
		d, err := time.ParseDuration(tmp.ForwardTimeoutStr)
		if err != nil {
			return errors.Wrap(err, "incorrect 'forward_timeout' param in yaml config")
		}
		cfg.ForwardTimeout = d
	}

	if len(tmp.Participants) > 0 {
		participants := make([]Participant, 0, len(tmp.Participants))
		for _, p := range tmp.Participants {
			if p.BIC == "" {
				return errors.New("participant with empty 'bic' in yaml config")
			}
			balance, err := decimal.NewFromString(p.OpeningBalanceStr)
			if err != nil {
				return errors.Wrapf(err, "incorrect 'opening_balance' for participant %s", p.BIC)
			}
			if balance.IsNegative() {
				return errors.Errorf("negative 'opening_balance' for participant %s", p.BIC)
			}
			participants = append(participants, Participant{
				BIC:            p.BIC,
				Name:           p.Name,
				AccountNumber:  p.Account,
				OpeningBalance: balance,
			})
		}
		cfg.Participants = participants
	}

	return nil
}

func defaultParticipants() []Participant {
	return []Participant{
		{BIC: "RBIACATTXXX", Name: "Alice Robertson", AccountNumber: "100123456789", OpeningBalance: decimal.NewFromInt(5000)},
		{BIC: "NPCUCATTXXX", Name: "Michael Chen", AccountNumber: "200987654321", OpeningBalance: decimal.NewFromInt(7500)},
		{BIC: "MPLLCATTXXX", Name: "Sophia Khan", AccountNumber: "300555777111", OpeningBalance: decimal.NewFromInt(3000)},
		{BIC: "NTBKCATTXXX", Name: "Ethan McLeod", AccountNumber: "400333999888", OpeningBalance: decimal.NewFromInt(10000)},
	}
}
