package config

import (
	"os"
	"strconv"
	"strings"
)

// ApplyEnv overrides store credentials from the environment. Unparsable
// numbers and booleans leave the current value.
func (c *Config) ApplyEnv() {
	envString(&c.Store.Postgres.DSN, "PROPOSALGEN_POSTGRES_DSN")

	ch := &c.Store.ClickHouse
	envString(&ch.Host, "PROPOSALGEN_CLICKHOUSE_HOST")
	envInt(&ch.Port, "PROPOSALGEN_CLICKHOUSE_PORT")
	envString(&ch.Database, "PROPOSALGEN_CLICKHOUSE_DATABASE")
	envString(&ch.Username, "PROPOSALGEN_CLICKHOUSE_USER")
	envString(&ch.Password, "PROPOSALGEN_CLICKHOUSE_PASSWORD")
	envBool(&ch.Debug, "PROPOSALGEN_CLICKHOUSE_DEBUG")

	s3 := &c.Store.S3
	envString(&s3.Bucket, "PROPOSALGEN_S3_BUCKET")
	envString(&s3.Region, "AWS_REGION")
	envString(&s3.Endpoint, "PROPOSALGEN_S3_ENDPOINT")
}

func envString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func envInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

func envBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			*dst = b
		}
	}
}
