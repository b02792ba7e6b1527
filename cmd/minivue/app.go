package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/delaneyj/minivue/dom"
	"github.com/delaneyj/minivue/internal/appconfig"
	"github.com/delaneyj/minivue/internal/logging"
	"github.com/delaneyj/minivue/surface"
	"github.com/delaneyj/minivue/vm"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const (
	templateKey = "template"
	dataKey     = "data"
	configKey   = "config"
	elKey       = "el"
	setKey      = "set"
	fireKey     = "fire"
)

var (
	errNoTemplate = errors.New("no template given")
	errBadSet     = errors.New("expected key=value")
	errBadFire    = errors.New("expected selector:event[=value]")
)

func appFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    configKey,
			Aliases: []string{"c"},
			Usage:   "app config file (yaml, toml or json)",
			Sources: cli.EnvVars("MINIVUE_CONFIG"),
		},
		&cli.StringFlag{
			Name:    templateKey,
			Aliases: []string{"t"},
			Usage:   "html template, overrides the config",
			Sources: cli.EnvVars("MINIVUE_TEMPLATE"),
		},
		&cli.StringFlag{
			Name:    dataKey,
			Aliases: []string{"d"},
			Usage:   "data file (yaml, toml or json), overrides the config",
			Sources: cli.EnvVars("MINIVUE_DATA"),
		},
		&cli.StringFlag{
			Name:    elKey,
			Usage:   "mount selector, overrides the config",
			Sources: cli.EnvVars("MINIVUE_EL"),
		},
		&cli.StringSliceFlag{
			Name:  setKey,
			Usage: "assign key=value after mounting, repeatable",
		},
		&cli.StringSliceFlag{
			Name:  fireKey,
			Usage: "dispatch selector:event[=value] after assignments, repeatable",
		},
	}
}

// app is a mounted view-model together with where it came from.
type app struct {
	cfg      *appconfig.Config
	doc      *dom.Document
	vm       *vm.VM
	dataFile string
	log      *logrus.Entry
}

func loadApp(cmd *cli.Command) (*app, error) {
	cfg := &appconfig.Config{}
	if path := cmd.String(configKey); path != "" {
		loaded, err := appconfig.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if v := cmd.String(templateKey); v != "" {
		cfg.Template = v
	}
	if v := cmd.String(dataKey); v != "" {
		cfg.DataFile = v
	}
	if v := cmd.String(elKey); v != "" {
		cfg.El = v
	}
	cfg.SetDefaults()
	logging.Configure(cfg.Logging)

	data, err := mergeData(cfg)
	if err != nil {
		return nil, err
	}
	doc, err := parseTemplate(cfg)
	if err != nil {
		return nil, err
	}

	log := logging.NewLoggerWithConfig("cli", cfg.Logging)
	m, err := vm.New(vm.Options{
		El:       cfg.El,
		Document: doc,
		Data:     data,
		Methods:  cfg.BuildMethods(),
		Logger:   logging.NewLoggerWithConfig("vm", cfg.Logging),
	})
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, doc: doc, vm: m, dataFile: cfg.DataFile, log: log}
	if err := a.apply(cmd.StringSlice(setKey), cmd.StringSlice(fireKey)); err != nil {
		return nil, err
	}
	return a, nil
}

// parseTemplate reads the template file as a full document, or the inline
// markup as a bare fragment.
func parseTemplate(cfg *appconfig.Config) (*dom.Document, error) {
	if cfg.Template == "" {
		if strings.TrimSpace(cfg.Markup) == "" {
			return nil, errNoTemplate
		}
		doc, err := dom.ParseMarkup(strings.NewReader(cfg.Markup))
		if err != nil {
			return nil, fmt.Errorf("parsing inline markup: %w", err)
		}
		return doc, nil
	}

	f, err := os.Open(cfg.Template)
	if err != nil {
		return nil, fmt.Errorf("opening template: %w", err)
	}
	defer f.Close()
	doc, err := dom.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", cfg.Template, err)
	}
	return doc, nil
}

// mergeData layers the data file over the inline data of the config.
func mergeData(cfg *appconfig.Config) (map[string]any, error) {
	data := make(map[string]any, len(cfg.Data))
	for k, v := range cfg.Data {
		data[k] = v
	}
	if cfg.DataFile == "" {
		return data, nil
	}
	fromFile, err := appconfig.LoadData(cfg.DataFile)
	if err != nil {
		return nil, err
	}
	for k, v := range fromFile {
		data[k] = v
	}
	return data, nil
}

func (a *app) apply(sets, fires []string) error {
	for _, s := range sets {
		key, value, err := parseSet(s)
		if err != nil {
			return err
		}
		a.log.WithField("key", key).Debug("set")
		a.vm.Set(key, value)
	}
	for _, s := range fires {
		f, err := parseFire(s)
		if err != nil {
			return err
		}
		if err := a.fire(f); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) fire(f fireSpec) error {
	n := a.doc.QueryNode(f.selector)
	if n == nil {
		return fmt.Errorf("fire %s: no element matches %q", f.event, f.selector)
	}
	a.log.WithFields(logrus.Fields{"selector": f.selector, "event": f.event}).Debug("fire")
	if f.hasValue {
		n.SetValue(f.value)
	}
	a.doc.Dispatch(n, surface.NewEvent(f.event))
	return nil
}

// parseSet splits key=value. The value is read as yaml so that numbers and
// booleans keep their type; anything yaml rejects stays a string.
func parseSet(s string) (string, any, error) {
	key, raw, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", nil, fmt.Errorf("--set %q: %w", s, errBadSet)
	}
	var value any
	if err := yaml.Unmarshal([]byte(raw), &value); err != nil {
		return key, raw, nil
	}
	switch value.(type) {
	case nil, string, bool, int, float64, map[string]any, []any:
		return key, value, nil
	}
	return key, raw, nil
}

type fireSpec struct {
	selector string
	event    string
	value    string
	hasValue bool
}

func parseFire(s string) (fireSpec, error) {
	head, value, hasValue := strings.Cut(s, "=")
	i := strings.LastIndex(head, ":")
	if i <= 0 || i == len(head)-1 {
		return fireSpec{}, fmt.Errorf("--fire %q: %w", s, errBadFire)
	}
	return fireSpec{
		selector: head[:i],
		event:    head[i+1:],
		value:    value,
		hasValue: hasValue,
	}, nil
}
