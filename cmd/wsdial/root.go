package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/frankli0324/go-wsdial"
	"github.com/frankli0324/go-wsdial/internal/config"
	"github.com/frankli0324/go-wsdial/internal/log"
)

type flags struct {
	configFile     string
	headers        []string
	proxy          string
	tlsEngine      string
	tlsParrot      string
	caFile         string
	insecure       bool
	subprotocols   []string
	maxMessageSize int64
	retries        int
	logLevel       string
	noColor        bool
}

func newRootCmd() *cobra.Command {
	return (&flags{}).command()
}

func (f *flags) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wsdial [url]",
		Short: "wsdial - an interactive WebSocket client",
		Long: `wsdial connects to a WebSocket server and forwards every line typed on
stdin as a text message. received messages are printed to stdout.

Examples:
  wsdial wss://echo.example.com/
  wsdial -H 'Origin: https://example.com' --subprotocol chat ws://127.0.0.1:8080/ws
  wsdial --proxy socks5://127.0.0.1:1080 --tls-parrot chrome wss://example.com/
  echo hello | wsdial ws://127.0.0.1:8080/echo`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd.Flags(), args)
			if err != nil {
				return err
			}
			return run(cmd, cfg, f.noColor)
		},
	}

	fs := cmd.Flags()
	fs.StringVarP(&f.configFile, "config", "c", "", "Config file path")
	fs.StringArrayVarP(&f.headers, "header", "H", nil, "Extra request header, 'Name: value' (repeatable)")
	fs.StringVar(&f.proxy, "proxy", "", "Proxy url (http, https, socks5), or 'env' for HTTP(S)_PROXY")
	fs.StringVar(&f.tlsEngine, "tls-engine", "", "TLS engine, see 'wsdial engines'")
	fs.StringVar(&f.tlsParrot, "tls-parrot", "", "utls ClientHello fingerprint: chrome/firefox/safari/ios/edge/randomized")
	fs.StringVar(&f.caFile, "ca-file", "", "PEM file with the trusted CA certificates")
	fs.BoolVarP(&f.insecure, "insecure", "k", false, "Skip certificate verification")
	fs.StringSliceVar(&f.subprotocols, "subprotocol", nil, "Requested subprotocols")
	fs.Int64Var(&f.maxMessageSize, "max-message-size", 0, "Maximum received message size in bytes, 0 is unlimited")
	fs.IntVar(&f.retries, "retries", 0, "Connection attempts to retry with exponential backoff")
	fs.StringVar(&f.logLevel, "log-level", "", "Log level: debug/info/warn/error")
	fs.BoolVar(&f.noColor, "no-color", false, "Disable colored output")

	cmd.AddCommand(newVersionCmd(), newEnginesCmd())
	return cmd
}

// load reads the config file, then applies the flags that were set explicitly.
func (f *flags) load(fs *pflag.FlagSet, args []string) (*config.Config, error) {
	cfg := config.Default()
	if f.configFile != "" {
		var err error
		if cfg, err = config.Load(f.configFile); err != nil {
			return nil, err
		}
	}
	if len(args) > 0 {
		cfg.URL = args[0]
	}

	header, err := parseHeaders(f.headers)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		if cfg.Headers == nil {
			cfg.Headers = map[string]string{}
		}
		cfg.Headers[k] = v
	}

	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("proxy", func() { cfg.Proxy = f.proxy })
	set("tls-engine", func() { cfg.TLS.Engine = f.tlsEngine })
	set("tls-parrot", func() { cfg.TLS.Parrot = f.tlsParrot })
	set("ca-file", func() { cfg.TLS.CAFile = f.caFile })
	set("insecure", func() { cfg.TLS.InsecureSkipVerify = f.insecure })
	set("subprotocol", func() { cfg.WebSocket.Subprotocols = f.subprotocols })
	set("max-message-size", func() { cfg.WebSocket.MaxMessageSize = f.maxMessageSize })
	set("retries", func() { cfg.Retries = f.retries })
	set("log-level", func() { cfg.Log.Level = f.logLevel })

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseHeaders(raw []string) (map[string]string, error) {
	header := make(map[string]string, len(raw))
	for _, h := range raw {
		k, v, ok := strings.Cut(h, ":")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid header %q, expected 'Name: value'", h)
		}
		header[http.CanonicalHeaderKey(k)] = strings.TrimSpace(v)
	}
	return header, nil
}

func run(cmd *cobra.Command, cfg *config.Config, noColor bool) error {
	logger, err := log.New(cfg.Log)
	if err != nil {
		return err
	}
	log.SetDefault(logger)

	tlsCfg, err := cfg.TLS.Build()
	if err != nil {
		return err
	}
	d, err := cfg.Dialer()
	if err != nil {
		return err
	}
	opts := &wsdial.Options{
		TLS:       tlsCfg,
		WebSocket: cfg.WebSocket.Build(),
		Dialer:    d,
		Logger:    logger,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conn, resp, err := dialWithRetry(ctx, cfg.Request(), opts, cfg.Retries, logger)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("%w (server answered %s)", err, resp.Status)
		}
		if errors.Is(err, wsdial.ErrEncryptionUnavailable) {
			return fmt.Errorf("%w, this binary was built without TLS support", err)
		}
		return err
	}

	in, out := newTerminal(cmd.OutOrStdout(), noColor)
	out.connected(conn, resp)
	return runSession(ctx, conn, in, out)
}
