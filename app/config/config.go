// Package config provides a go-simpler.org/env configuration table and
// helpers for printing it and loading overrides from a .env file.
package config

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	log "github.com/sirupsen/logrus"
	"go-simpler.org/env"

	"seqrelay.dev/version"
)

// C is the configuration of the relay. Values are read from the environment;
// if a .env file is found in the config directory it is read first and the
// environment overrides it.
type C struct {
	AppName  string `env:"SEQRELAY_APP_NAME" default:"seqrelay.dev"`
	Config   string `env:"SEQRELAY_CONFIG_DIR" usage:"location of the .env configuration file"`
	DbPath   string `env:"SEQRELAY_DB_PATH" usage:"path of the sqlite event store file"`
	Listen   string `env:"SEQRELAY_LISTEN" default:"0.0.0.0" usage:"network listen address"`
	Port     int    `env:"SEQRELAY_PORT" default:"3334" usage:"port to listen on"`
	LogLevel string `env:"SEQRELAY_LOG_LEVEL" default:"info" usage:"log level: panic fatal error warn info debug trace"`
	MaxLimit int    `env:"SEQRELAY_MAX_LIMIT" default:"512" usage:"cap on filter and change feed limits"`
	Pprof    bool   `env:"SEQRELAY_PPROF" default:"false" usage:"enable pprof on 127.0.0.1:6060"`
}

// New creates a new config.C from the environment and an optional .env file.
func New() (cfg *C, err error) {
	cfg = &C{}
	if err = env.Load(cfg, &env.Options{SliceSep: ","}); err != nil {
		return
	}
	if cfg.Config == "" {
		cfg.Config = filepath.Join(xdg.ConfigHome, cfg.AppName)
	}
	if cfg.DbPath == "" {
		cfg.DbPath = filepath.Join(xdg.DataHome, cfg.AppName, "events.db")
	}
	envPath := filepath.Join(cfg.Config, ".env")
	if _, serr := os.Stat(envPath); serr == nil {
		var src fileSource
		if src, err = readEnvFile(envPath); err != nil {
			return
		}
		if err = env.Load(
			cfg, &env.Options{SliceSep: ",", Source: src},
		); err != nil {
			return
		}
		log.WithField("path", envPath).Info("loaded configuration")
	}
	return
}

// fileSource is a .env file loaded as an env.Source.
type fileSource map[string]string

// LookupEnv implements env.Source.
func (f fileSource) LookupEnv(key string) (string, bool) {
	v, ok := f[key]
	return v, ok
}

// readEnvFile parses a KEY=value per line .env file. Blank lines and lines
// starting with # are skipped.
func readEnvFile(path string) (src fileSource, err error) {
	var fh *os.File
	if fh, err = os.Open(path); err != nil {
		return
	}
	defer fh.Close()
	src = make(fileSource)
	scan := bufio.NewScanner(fh)
	for scan.Scan() {
		line := strings.TrimSpace(scan.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		src[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	err = scan.Err()
	return
}

// HelpRequested returns true if any of the common types of help invocation
// are found as the first command line parameter.
func HelpRequested() (help bool) {
	if len(os.Args) > 1 {
		switch strings.ToLower(os.Args[1]) {
		case "help", "-h", "--h", "-help", "--help", "?":
			help = true
		}
	}
	return
}

// GetEnv returns true when the first command line parameter requests printing
// the current settings as environment variable key/values.
func GetEnv() (requested bool) {
	if len(os.Args) > 1 && strings.ToLower(os.Args[1]) == "env" {
		requested = true
	}
	return
}

// KV is a key/value pair.
type KV struct{ Key, Value string }

// EnvKV turns a struct with `env` tags into a key/value pair list. Note you
// must dereference a pointer type to use this.
func EnvKV(cfg any) (m []KV) {
	t := reflect.TypeOf(cfg)
	for i := 0; i < t.NumField(); i++ {
		k := t.Field(i).Tag.Get("env")
		if k == "" {
			continue
		}
		v := reflect.ValueOf(cfg).Field(i).Interface()
		m = append(m, KV{k, fmt.Sprint(v)})
	}
	return
}

// PrintEnv renders the key/values of a config.C to a provided io.Writer.
func PrintEnv(cfg *C, printer io.Writer) {
	kvs := EnvKV(*cfg)
	sort.Slice(kvs, func(i, j int) bool { return kvs[i].Key < kvs[j].Key })
	for _, v := range kvs {
		fmt.Fprintf(printer, "%s=%s\n", v.Key, v.Value)
	}
}

// PrintHelp outputs a help text listing the configuration options and their
// current values.
func PrintHelp(cfg *C, printer io.Writer) {
	fmt.Fprintf(printer, "%s %s\n\n", cfg.AppName, version.V)
	fmt.Fprintf(
		printer,
		"Environment variables that configure %s:\n\n", cfg.AppName,
	)
	env.Usage(cfg, printer, &env.Options{SliceSep: ","})
	fmt.Fprintf(
		printer,
		"\nCLI parameter 'help' also prints this information.\n"+
			"A .env file found at %s/.env is loaded before the environment.\n"+
			"Use the parameter 'env' to print the current configuration.\n\n",
		cfg.Config,
	)
	fmt.Fprintf(printer, "current configuration:\n\n")
	PrintEnv(cfg, printer)
	fmt.Fprintln(printer)
}
