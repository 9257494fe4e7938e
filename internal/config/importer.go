package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/Roma7-7-7/readyword/internal/dal"
)

type Import struct {
	Dev bool `envconfig:"DEV" default:"false"`
	DB  DB
}

func NewImport() (*Import, error) {
	res := &Import{}
	if err := envconfig.Process(EnvPrefix, res); err != nil {
		return nil, fmt.Errorf("parse import environment: %w", err)
	}

	var errs validationErrors
	if _, err := dal.ParseDBType(res.DB.Driver); err != nil {
		errs.add("%s", err)
	}
	if res.DB.URL == "" {
		errs.add("db url is required")
	}
	if err := errs.err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Import) DBType() dal.DBType {
	dbType, _ := dal.ParseDBType(c.DB.Driver)
	return dbType
}
