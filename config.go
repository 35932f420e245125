// Package main (config.go) :
// These methods are for the settings given by options, environment variables and the config file.
package main

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/urfave/cli"
)

const envPrefix = "GOODVIDEOS"

// config : Structure for the settings
type config struct {
	URL         string
	Directory   string
	Credentials string
	Token       string
	MimeTypes   []string
	MaxDepth    int
	Delay       time.Duration
	LogFile     string
	LogFileSize int
	Yes         bool
	OverWrite   bool
	Skip        bool
	NoProgress  bool
	PDF         bool
	FileInf     bool
	Verbose     bool
}

var (
	stringOptions   = []string{"url", "directory", "credentials", "token", "mimetype", "logfile"}
	boolOptions     = []string{"yes", "overwrite", "skip", "NoProgress", "pdf", "fileinf", "verbose"}
	intOptions      = []string{"maxdepth", "logfilesize"}
	durationOptions = []string{"delay"}
)

// newViper : Create viper with the default values and environment variables.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault("credentials", "credentials.json")
	v.SetDefault("token", "token.json")
	v.SetDefault("maxdepth", -1)
	v.SetDefault("delay", defaultDelay)
	v.SetDefault("logfilesize", 10)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfig : Retrieve the settings. The options which were set have priority over the config file and environment variables.
func loadConfig(c *cli.Context) (*config, error) {
	v := newViper()
	if f := c.String("config"); f != "" {
		v.SetConfigFile(f)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file '%s': %w", f, err)
		}
	}
	for _, k := range stringOptions {
		if c.IsSet(k) {
			v.Set(k, c.String(k))
		}
	}
	for _, k := range boolOptions {
		if c.IsSet(k) {
			v.Set(k, c.Bool(k))
		}
	}
	for _, k := range intOptions {
		if c.IsSet(k) {
			v.Set(k, c.Int(k))
		}
	}
	for _, k := range durationOptions {
		if c.IsSet(k) {
			v.Set(k, c.Duration(k))
		}
	}
	return configFromViper(v), nil
}

// configFromViper : Convert the values of viper to config.
func configFromViper(v *viper.Viper) *config {
	return &config{
		URL:         strings.TrimSpace(v.GetString("url")),
		Directory:   v.GetString("directory"),
		Credentials: v.GetString("credentials"),
		Token:       v.GetString("token"),
		MimeTypes:   splitMimeTypes(v.GetString("mimetype")),
		MaxDepth:    v.GetInt("maxdepth"),
		Delay:       v.GetDuration("delay"),
		LogFile:     v.GetString("logfile"),
		LogFileSize: v.GetInt("logfilesize"),
		Yes:         v.GetBool("yes"),
		OverWrite:   v.GetBool("overwrite"),
		Skip:        v.GetBool("skip"),
		NoProgress:  v.GetBool("NoProgress"),
		PDF:         v.GetBool("pdf"),
		FileInf:     v.GetBool("fileinf"),
		Verbose:     v.GetBool("verbose"),
	}
}

func splitMimeTypes(mime string) []string {
	if mime = strings.TrimSpace(mime); mime != "" {
		return regexp.MustCompile(`\s*,\s*`).Split(mime, -1)
	}
	return nil
}
