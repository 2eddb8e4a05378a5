package main

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/kbukum/crudify/di"
	"github.com/kbukum/crudify/logger"
	"github.com/kbukum/crudify/module"
	"github.com/kbukum/crudify/router"
)

var (
	ConfigKey = di.NewKey[*Config]("Config")
	LoggerKey = di.NewKey[Logger]("Logger")
	URLKey    = di.NewKey[*url.URL]("URL")
)

// Logger writes application messages under a prefix.
type Logger interface {
	Prefix() string
	Log(msg string, fields ...map[string]interface{})
}

type appLogger struct {
	cfg *Config
	log *logger.Logger
}

func newAppLogger(cfg *Config) *appLogger {
	return &appLogger{cfg: cfg, log: logger.Get("example")}
}

func (l *appLogger) Prefix() string { return "Logger(" + l.cfg.Log.Prefix + ")" }

func (l *appLogger) Log(msg string, fields ...map[string]interface{}) {
	l.log.WithFields(map[string]interface{}{"prefix": l.Prefix()}).Info(msg, fields...)
}

// requestLogger tags messages with the URL of the request being served.
type requestLogger struct {
	*appLogger
	url string
}

func (l *requestLogger) Prefix() string {
	return l.appLogger.Prefix() + " > RequestLogger(" + l.url + ")"
}

func (l *requestLogger) Log(msg string, fields ...map[string]interface{}) {
	l.log.WithFields(map[string]interface{}{"prefix": l.Prefix()}).Info(msg, fields...)
}

// configModule provides the configuration and the application Logger.
func configModule(cfg *Config) *module.Module {
	return &module.Module{
		Name: "config",
		Providers: []di.Provider{
			di.UseValue(ConfigKey, cfg),
			di.UseFactory(LoggerKey, []di.Token{ConfigKey}, di.Func1(func(cfg *Config) (Logger, error) {
				return newAppLogger(cfg), nil
			})),
		},
		Exports: []di.Token{ConfigKey, LoggerKey},
	}
}

// httpUtilModule adds the request URL and replaces Logger with a request
// logger in the router scope of every module importing it.
func httpUtilModule(config *module.Module) *module.Module {
	return &module.Module{
		Name:    "http-util",
		Imports: []*module.Module{config},
		Exports: []di.Token{ConfigKey, LoggerKey},
		RequestProviders: []di.Provider{
			di.UseFactory(URLKey, []di.Token{router.Request, ConfigKey}, di.Func2(requestURL)),
			di.UseFactory(LoggerKey, []di.Token{ConfigKey, URLKey}, di.Func2(func(cfg *Config, u *url.URL) (Logger, error) {
				return &requestLogger{appLogger: newAppLogger(cfg), url: u.String()}, nil
			})),
		},
	}
}

// requestURL resolves the request target against the configured origin, or
// against the forwarded host when proxies are trusted.
func requestURL(req *http.Request, cfg *Config) (*url.URL, error) {
	base, err := url.Parse(cfg.Origin)
	if err != nil {
		return nil, fmt.Errorf("parsing origin: %w", err)
	}
	if cfg.TrustProxy {
		if origin := forwardedOrigin(req); origin != nil {
			base = origin
		}
	}
	return base.ResolveReference(req.URL), nil
}

func forwardedOrigin(req *http.Request) *url.URL {
	host := req.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = req.Host
	}
	if host == "" {
		return nil
	}
	proto := req.Header.Get("X-Forwarded-Proto")
	if proto == "" {
		proto = "http"
	}
	return &url.URL{Scheme: proto, Host: host}
}

// appModule is the root of the example graph.
func appModule(cfg *Config) *module.Module {
	config := configModule(cfg)
	httpUtil := httpUtilModule(config)
	users := usersModule(httpUtil)
	return &module.Module{
		Name:        "app",
		Imports:     []*module.Module{users, config},
		Exports:     []di.Token{UsersServiceKey},
		Controllers: []*router.Controller{homeController},
	}
}
