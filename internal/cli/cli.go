// Package cli implements steamctl, a one-shot command line front end for the
// steamapi accessors.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/samvad-hq/steamwatch/internal/config"
	"github.com/samvad-hq/steamwatch/pkg/httpclient"
	"github.com/samvad-hq/steamwatch/pkg/steamapi"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Exit codes.
const (
	ExitOK     = 0
	ExitLookup = 1
	ExitUsage  = 2
)

const usageText = `usage: steamctl [flags] <command> [args]

commands:
  profile <steamid>        player summary
  games <steamid>          owned games
  resolve <vanity>         resolve a vanity URL (--type 1|2|3)
  groups <steamid>         group memberships
  inventory <steamid>      CS inventory document
  asset <classid>          asset class info
  rsakey <username>        login RSA key
  login --param k=v ...    submit a login form

flags:
`

var errUsage = errors.New("usage")

type options struct {
	output     string
	apiKey     string
	baseURL    string
	userAgent  string
	timeout    time.Duration
	vanityType int
	params     map[string]string
}

// Run parses args, executes one command and returns the process exit code.
func Run(args []string, stdout, stderr io.Writer) int {
	return run(context.Background(), args, stdout, stderr, nil)
}

// run is Run with an injectable transport; nil selects the resty transport.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, transport httpclient.Client) int {
	opts, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitOK
		}
		fmt.Fprintf(stderr, "steamctl: %v\n", err)
		return ExitUsage
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fmt.Fprintln(stderr, "steamctl: missing command")
		fs.Usage()
		return ExitUsage
	}

	if transport == nil {
		transport = httpclient.NewRestyClientWithAgent(opts.timeout, opts.userAgent)
	}
	client, err := steamapi.New(opts.apiKey, transport, steamapi.WithBaseURL(opts.baseURL))
	if err != nil {
		fmt.Fprintf(stderr, "steamctl: %v\n", err)
		return ExitLookup
	}

	value, err := dispatch(ctx, client, opts, rest[0], rest[1:])
	switch {
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "steamctl: %v\n", err)
		fs.Usage()
		return ExitUsage
	case err != nil:
		if kind := steamapi.Kind(err); kind != "" {
			fmt.Fprintf(stderr, "steamctl: %s error: %v\n", kind, err)
		} else {
			fmt.Fprintf(stderr, "steamctl: %v\n", err)
		}
		return ExitLookup
	}

	if err := render(stdout, opts.output, value); err != nil {
		fmt.Fprintf(stderr, "steamctl: %v\n", err)
		return ExitLookup
	}
	return ExitOK
}

func parseFlags(args []string, stderr io.Writer) (options, *pflag.FlagSet, error) {
	defaults := loadDefaults()

	var opts options
	fs := pflag.NewFlagSet("steamctl", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.SetInterspersed(true)
	fs.StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")
	fs.StringVar(&opts.apiKey, "api-key", defaults.SteamAPIKey, "Steam Web API key (env STEAM_API_KEY)")
	fs.StringVar(&opts.baseURL, "base-url", defaults.SteamBaseURL, "Web API base URL")
	fs.StringVar(&opts.userAgent, "user-agent", defaults.SteamUserAgent, "HTTP User-Agent")
	fs.DurationVar(&opts.timeout, "timeout", defaults.HTTPTimeout, "request timeout")
	fs.IntVar(&opts.vanityType, "type", int(steamapi.VanityIndividual), "vanity namespace for resolve: 1 individual, 2 group, 3 game group")
	fs.StringToStringVar(&opts.params, "param", nil, "login form parameter k=v (repeatable)")
	fs.Usage = func() {
		fmt.Fprint(stderr, usageText)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return opts, fs, err
	}
	opts.output = strings.ToLower(strings.TrimSpace(opts.output))
	if opts.output != "json" && opts.output != "yaml" {
		return opts, fs, fmt.Errorf("unsupported output %q", opts.output)
	}
	if opts.vanityType < 1 || opts.vanityType > 3 {
		return opts, fs, fmt.Errorf("invalid --type %d", opts.vanityType)
	}
	return opts, fs, nil
}

// loadDefaults reads the shared config; invalid env values fall back to
// built-in defaults since every field can be overridden by a flag.
func loadDefaults() config.Config {
	cfg, err := config.Load()
	if err != nil || cfg == nil {
		return config.Config{
			SteamBaseURL:   steamapi.DefaultBaseURL,
			SteamUserAgent: "steamctl",
			HTTPTimeout:    15 * time.Second,
		}
	}
	return *cfg
}

func dispatch(ctx context.Context, client *steamapi.Client, opts options, cmd string, args []string) (any, error) {
	if cmd == "login" {
		if len(args) != 0 {
			return nil, fmt.Errorf("%w: login takes no positional arguments", errUsage)
		}
		if len(opts.params) == 0 {
			return nil, fmt.Errorf("%w: login requires at least one --param", errUsage)
		}
		return client.DoLogin(ctx, opts.params)
	}

	if len(args) != 1 || strings.TrimSpace(args[0]) == "" {
		return nil, fmt.Errorf("%w: %s requires exactly one argument", errUsage, cmd)
	}
	arg := args[0]

	switch cmd {
	case "profile":
		return client.GetUserProfile(ctx, arg)
	case "games":
		return client.GetOwnedGames(ctx, arg)
	case "resolve":
		return client.ResolveVanityURL(ctx, arg, steamapi.VanityType(opts.vanityType))
	case "groups":
		return client.GetUserGroups(ctx, arg)
	case "asset":
		return client.GetAssetClassInfo(ctx, arg)
	case "rsakey":
		return client.GetRSAKey(ctx, arg)
	case "inventory":
		raw, err := client.GetUserInventory(ctx, arg)
		if err != nil {
			return nil, err
		}
		var doc any
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			return nil, fmt.Errorf("decode inventory document: %w", err)
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("%w: unknown command %q", errUsage, cmd)
	}
}

func render(w io.Writer, format string, value any) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(yamlSafe(value)); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// yamlSafe converts json.Number leaves to int64/float64 so yaml prints them
// as plain scalars instead of quoted strings.
func yamlSafe(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = yamlSafe(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = yamlSafe(val)
		}
		return out
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}
