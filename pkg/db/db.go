package db

import "fmt"

type DBConfig struct {
	URI             string
	DBName          string
	Timeout         int
	MaxPoolSize     uint64
	IdleConnTimeout int
}

type DBConfigYaml struct {
	ConnectionStr    string `json:"connection_str" yaml:"connection_str"`
	Username         string `json:"username" yaml:"username"`
	Password         string `json:"password" yaml:"password"`
	ConnectionPrefix string `json:"connection_prefix" yaml:"connection_prefix"`
	DBName           string `json:"db_name" yaml:"db_name"`
	Timeout          int    `json:"timeout" yaml:"timeout"`
	IdleConnTimeout  int    `json:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxPoolSize      int    `json:"max_pool_size" yaml:"max_pool_size"`
}

func DBConfigFromYamlObj(y DBConfigYaml) DBConfig {
	uri := fmt.Sprintf("mongodb%s://%s:%s@%s", y.ConnectionPrefix, y.Username, y.Password, y.ConnectionStr)
	if y.Username == "" && y.Password == "" {
		uri = fmt.Sprintf("mongodb%s://%s", y.ConnectionPrefix, y.ConnectionStr)
	}

	return DBConfig{
		URI:             uri,
		DBName:          y.DBName,
		Timeout:         y.Timeout,
		MaxPoolSize:     uint64(y.MaxPoolSize),
		IdleConnTimeout: y.IdleConnTimeout,
	}
}
