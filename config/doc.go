// Package config loads service configuration from config.yml, .env files and
// the environment using Viper.
//
// # Usage
//
//	var cfg AppConfig
//	if err := config.LoadConfig("users", &cfg); err != nil {
//	    return err
//	}
//	cfg.ApplyDefaults()
//	if err := cfg.Validate(); err != nil {
//	    return err
//	}
//
// Every environment variable is bound under each nested key it could name,
// so SERVER_PORT fills both server_port and server.port.
package config
