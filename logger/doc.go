// Package logger provides structured logging built on zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers. The container, module layer and router each
// log through a named logger from the registry.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("di")
//	log.Debug("Instance created", logger.Fields("token", "Config", "scope", "root"))
package logger
