package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GoCodeAlone/networking"
	"github.com/GoCodeAlone/networking/auth"
	"github.com/GoCodeAlone/networking/httpclient"
	"github.com/GoCodeAlone/networking/logging"
)

// Command line errors
var (
	ErrInvalidPair     = errors.New("expected key=value")
	ErrInvalidJSONData = errors.New("--data is not valid JSON; use --form for key=value data")
)

type sendOptions struct {
	configSource
	method  string
	path    string
	query   []string
	headers []string
	data    string
	form    bool
	token   string
	debug   bool
}

// NewSendCommand creates the send command
func NewSendCommand() *cobra.Command {
	opts := &sendOptions{}
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one HTTP call and print the response",
		Long: `Send one HTTP call through the networking pipeline and print the status,
headers and body of the response. Statuses outside the configured allowed
range are printed and reported as an error.`,
		Example: `  netcall send --config client.yaml -X POST --path /items -d '{"name":"x"}'
  netcall send --base-url https://api.example.com --path search -q term=a+b`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSend(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.file, "config", "c", "", "Configuration file (.yaml, .yml, .toml or .json)")
	f.StringVar(&opts.envPrefix, "env-prefix", "NETCALL", "Prefix of configuration environment variables")
	f.StringVar(&opts.baseURL, "base-url", "", "Override the configured base URL")
	f.DurationVar(&opts.timeout, "timeout", 0, "Override the configured request timeout")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "Log request and response dumps")
	f.BoolVar(&opts.debug, "debug", false, "Log every pipeline stage")
	f.StringVarP(&opts.method, "method", "X", string(networking.VerbGet), "HTTP method")
	f.StringVarP(&opts.path, "path", "p", "", "Request path relative to the base URL")
	f.StringArrayVarP(&opts.query, "query", "q", nil, "Query parameter as key=value (repeatable)")
	f.StringArrayVarP(&opts.headers, "header", "H", nil, "Header as key=value (repeatable)")
	f.StringVarP(&opts.data, "data", "d", "", "Request body: JSON, or key=value&... with --form")
	f.BoolVar(&opts.form, "form", false, "Send --data form encoded")
	f.StringVar(&opts.token, "token", "", "Bearer token sent in the Authorization header")

	return cmd
}

func runSend(cmd *cobra.Command, opts *sendOptions) error {
	cfg, err := loadConfig(&opts.configSource)
	if err != nil {
		return err
	}

	logger, flush := newLogger(opts.debug || cfg.Verbose)
	defer flush()

	transport, err := httpclient.New(&httpclient.Config{
		RequestTimeout: cfg.Timeout,
		Verbose:        cfg.Verbose,
	}, logger)
	if err != nil {
		return err
	}
	defer transport.Close()

	clientOpts := []networking.Option{
		networking.WithConfig(cfg),
		networking.WithTransport(transport),
		networking.WithLogger(logger),
		networking.WithPrerequestTransformer(networking.RequestIDTransformer{}),
	}
	tokenOpt, err := tokenOption(cmd, opts)
	if err != nil {
		return err
	}
	if tokenOpt != nil {
		clientOpts = append(clientOpts, tokenOpt)
	}

	var input any
	if opts.data != "" {
		if opts.form {
			values, err := url.ParseQuery(opts.data)
			if err != nil {
				return fmt.Errorf("invalid form data: %w", err)
			}
			clientOpts = append(clientOpts, networking.WithEncoder(networking.FormEncoder{}))
			input = values
		} else {
			if !json.Valid([]byte(opts.data)) {
				return ErrInvalidJSONData
			}
			input = json.RawMessage(opts.data)
		}
	}

	client, err := networking.NewClient(clientOpts...)
	if err != nil {
		return err
	}

	query, err := parsePairs(opts.query)
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	headers, err := parsePairs(opts.headers)
	if err != nil {
		return fmt.Errorf("header: %w", err)
	}
	req := networking.NewRequest(opts.path,
		networking.WithVerb(networking.Verb(opts.method)),
		networking.WithQuery(query),
		networking.WithRequestHeaders(headers),
	)

	resp, err := client.Send(cmd.Context(), req, input)
	var statusErr *networking.UnexpectedStatusCodeError
	if errors.As(err, &statusErr) {
		fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n\n%s\n", statusErr.StatusCode, statusText(statusErr.StatusCode), statusErr.Body)
		return err
	}
	if err != nil {
		return err
	}
	return printResponse(cmd.OutOrStdout(), resp)
}

func tokenOption(cmd *cobra.Command, opts *sendOptions) (networking.Option, error) {
	if opts.token != "" {
		return networking.WithAuthTokenProvider(auth.StaticTokenProvider(opts.token)), nil
	}
	oauthCfg, err := loadOAuthConfig(opts.envPrefix)
	if err != nil {
		return nil, err
	}
	if !oauthCfg.Enabled() {
		return nil, nil
	}
	provider, err := auth.NewClientCredentialsProvider(cmd.Context(), *oauthCfg)
	if err != nil {
		return nil, err
	}
	return networking.WithAuthTokenProvider(provider), nil
}

func newLogger(debug bool) (networking.Logger, func()) {
	if !debug {
		return networking.NopLogger(), func() {}
	}
	zl, err := zap.NewDevelopment()
	if err != nil {
		return networking.NopLogger(), func() {}
	}
	logger := logging.NewZapLogger(zl)
	return logging.NewMaskingLogger(logger), func() { _ = logger.Sync() }
}

func parsePairs(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("%w, got %q", ErrInvalidPair, p)
		}
		out[k] = v
	}
	return out, nil
}

func printResponse(w io.Writer, resp *networking.HTTPResponse) error {
	keys := make([]string, 0, len(resp.Headers))
	for k := range resp.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "%d %s\n", resp.StatusCode, statusText(resp.StatusCode))
	for _, k := range keys {
		fmt.Fprintf(&b, "%s: %s\n", k, resp.Headers[k])
	}
	b.WriteString("\n")
	b.Write(resp.Body)
	if len(resp.Body) > 0 && resp.Body[len(resp.Body)-1] != '\n' {
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func statusText(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return "Unknown Status"
}
