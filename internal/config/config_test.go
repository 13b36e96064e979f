package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig(t *testing.T) {
	type want struct {
		address  string
		database string
		jwtTTL   time.Duration
		origins  []string
	}

	tests := []struct {
		name  string
		env   map[string]string
		flags []string
		want  want
	}{
		{
			name:  "defaults",
			env:   map[string]string{},
			flags: []string{},
			want: want{
				address:  ":8080",
				database: "healthref",
				jwtTTL:   24 * time.Hour,
				origins:  []string{"*"},
			},
		},
		{
			name: "env only",
			env: map[string]string{
				"API_PORT":       "9999",
				"MONGO_DATABASE": "envdb",
				"JWT_TTL":        "1h",
				"CORS_ORIGINS":   "http://a.test,http://b.test",
			},
			flags: []string{},
			want: want{
				address:  ":9999",
				database: "envdb",
				jwtTTL:   time.Hour,
				origins:  []string{"http://a.test", "http://b.test"},
			},
		},
		{
			name:  "flags only",
			env:   map[string]string{},
			flags: []string{"-a", "localhost:7777", "-db", "flagdb"},
			want: want{
				address:  "localhost:7777",
				database: "flagdb",
				jwtTTL:   24 * time.Hour,
				origins:  []string{"*"},
			},
		},
		{
			name: "env overrides flags",
			env: map[string]string{
				"API_PORT":       "9000",
				"MONGO_DATABASE": "envdb",
			},
			flags: []string{"-a", "flag:8000", "-db", "flagdb"},
			want: want{
				address:  ":9000",
				database: "envdb",
				jwtTTL:   24 * time.Hour,
				origins:  []string{"*"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Parse(tt.flags)
			require.NoError(t, err)

			assert.Equal(t, tt.want.address, cfg.Address)
			assert.Equal(t, tt.want.database, cfg.MongoDatabase)
			assert.Equal(t, tt.want.jwtTTL, cfg.JWTTTL)
			assert.Equal(t, tt.want.origins, cfg.CORSOrigins)
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			MongoURI:   "mongodb://localhost:27017",
			JWTSecret:  "secret",
			JWTTTL:     time.Hour,
			OTPChannel: "console",
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "ok", mutate: func(*Config) {}},
		{name: "missing mongo", mutate: func(c *Config) { c.MongoURI = "" }, wantErr: "MONGO_URI"},
		{name: "missing secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: "JWT_SECRET"},
		{name: "unknown channel", mutate: func(c *Config) { c.OTPChannel = "pigeon" }, wantErr: "OTP_CHANNEL"},
		{name: "whatsapp without api", mutate: func(c *Config) { c.OTPChannel = "whatsapp" }, wantErr: "WACHAT_API"},
		{name: "email without host", mutate: func(c *Config) { c.OTPChannel = "email" }, wantErr: "SMTP_HOST"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
