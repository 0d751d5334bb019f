package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/aleph-zero/linkstack/telemetry"
	"github.com/chzyer/readline"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	serviceName       = "linkstack-cli"
	serviceVersion    = "0.0.1"
	readlineConfigDir = ".config/linkstack"
)

var collectorURL = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")

var ErrUsage = errors.New("usage")

type Config struct {
	RemoteAddr string
	RemotePort int
}

type Option func(*Config)

func NewConfig(options ...Option) *Config {
	cfg := &Config{}
	for _, option := range options {
		option(cfg)
	}
	return cfg
}

func WithRemoteAddr(addr string) Option {
	return func(cfg *Config) {
		cfg.RemoteAddr = addr
	}
}

func WithRemotePort(port uint16) Option {
	return func(cfg *Config) {
		cfg.RemotePort = int(port)
	}
}

func (c *Config) baseURL() string {
	return fmt.Sprintf("http://%s:%d", c.RemoteAddr, c.RemotePort)
}

func newHTTPClient() http.Client {
	return http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   time.Second * 30,
	}
}

func Bootstrap(config *Config) {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rl, err := setupReadline()
	if err != nil {
		slog.Error("Error setting up readline config", "error", err)
		return
	}
	defer rl.Close()

	shutdown, err := telemetry.New(serviceName, serviceVersion, collectorURL)
	if err != nil {
		slog.Warn("Error initializing telemetry", "error", err)
	} else {
		defer shutdown()
	}

	client := newHTTPClient()
	base := config.baseURL()

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				break
			} else {
				continue
			}
		} else if err == io.EOF {
			break
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "help" {
			fmt.Print(usage)
			continue
		}

		command, err := ParseCommand(line)
		if err != nil {
			fmt.Println(err)
			continue
		}

		out, err := submit(ctx, client, base, command)
		if err != nil {
			slog.Error("Error submitting command", "command", command.Name, "error", err)
			continue
		}
		fmt.Println(out)
	}
}

// Command is a single REPL line translated into a request against the stacks api.
type Command struct {
	Name   string
	Method string
	Path   string
	Body   []byte
}

const usage = `commands:
  list
  create <stack>
  drop <stack>
  show <stack>
  text <stack>
  len <stack>
  peek <stack>
  last <stack>
  pop <stack>
  push <stack> <value>
  get <stack> <index>
  set <stack> <index> <value>
  contains <stack> <value>
  index <stack> <value>
  remove <stack> <value>
  removeat <stack> <index>
  removefirst <stack>
  removelast <stack>
  clear <stack>
  addall <stack> <from>
`

// ParseCommand translates a REPL line into the request that carries it out. Values
// are everything after the fixed arguments, so they may contain spaces.
func ParseCommand(line string) (Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty command", ErrUsage)
	}

	name := strings.ToLower(fields[0])
	if name == "list" {
		return Command{Name: name, Method: http.MethodGet, Path: "/stacks"}, nil
	}

	args := fields[1:]
	if len(args) == 0 {
		return Command{}, fmt.Errorf("%w: %s <stack> ...", ErrUsage, name)
	}
	prefix := "/stacks/" + url.PathEscape(args[0])
	rest := func(n int) (string, error) {
		if len(args) <= n {
			return "", fmt.Errorf("%w: %s is missing arguments", ErrUsage, name)
		}
		return strings.Join(args[n:], " "), nil
	}
	query := func(key, value string) string {
		return "?" + url.Values{key: {value}}.Encode()
	}

	switch name {
	case "create":
		return Command{Name: name, Method: http.MethodPut, Path: prefix}, nil
	case "drop":
		return Command{Name: name, Method: http.MethodDelete, Path: prefix}, nil
	case "show":
		return Command{Name: name, Method: http.MethodGet, Path: prefix}, nil
	case "text":
		return Command{Name: name, Method: http.MethodGet, Path: prefix + "/text"}, nil
	case "len":
		return Command{Name: name, Method: http.MethodGet, Path: prefix + "/length"}, nil
	case "peek":
		return Command{Name: name, Method: http.MethodGet, Path: prefix + "/first"}, nil
	case "last":
		return Command{Name: name, Method: http.MethodGet, Path: prefix + "/last"}, nil
	case "pop":
		return Command{Name: name, Method: http.MethodPost, Path: prefix + "/pop"}, nil
	case "removefirst":
		return Command{Name: name, Method: http.MethodPost, Path: prefix + "/remove-first"}, nil
	case "removelast":
		return Command{Name: name, Method: http.MethodPost, Path: prefix + "/remove-last"}, nil
	case "clear":
		return Command{Name: name, Method: http.MethodPost, Path: prefix + "/clear"}, nil
	case "push":
		value, err := rest(1)
		if err != nil {
			return Command{}, err
		}
		return Command{Name: name, Method: http.MethodPost, Path: prefix + "/push", Body: valueBody(value)}, nil
	case "contains", "index", "remove":
		value, err := rest(1)
		if err != nil {
			return Command{}, err
		}
		switch name {
		case "contains":
			return Command{Name: name, Method: http.MethodGet, Path: prefix + "/contains" + query("value", value)}, nil
		case "index":
			return Command{Name: name, Method: http.MethodGet, Path: prefix + "/index" + query("value", value)}, nil
		default:
			return Command{Name: name, Method: http.MethodDelete, Path: prefix + "/values" + query("value", value)}, nil
		}
	case "addall":
		if len(args) != 2 {
			return Command{}, fmt.Errorf("%w: addall <stack> <from>", ErrUsage)
		}
		return Command{Name: name, Method: http.MethodPost, Path: prefix + "/add-all" + query("from", args[1])}, nil
	case "get", "removeat":
		if len(args) != 2 {
			return Command{}, fmt.Errorf("%w: %s <stack> <index>", ErrUsage, name)
		}
		method := http.MethodGet
		if name == "removeat" {
			method = http.MethodDelete
		}
		return Command{Name: name, Method: method, Path: prefix + "/items/" + url.PathEscape(args[1])}, nil
	case "set":
		value, err := rest(2)
		if err != nil {
			return Command{}, err
		}
		return Command{Name: name, Method: http.MethodPut, Path: prefix + "/items/" + url.PathEscape(args[1]), Body: valueBody(value)}, nil
	}
	return Command{}, fmt.Errorf("%w: unknown command %q, try help", ErrUsage, name)
}

func valueBody(value string) []byte {
	data, _ := json.Marshal(map[string]string{"value": value})
	return data
}

// submit sends command and returns the body to show, indented when it is JSON.
func submit(ctx context.Context, client http.Client, base string, command Command) (string, error) {
	tr := otel.Tracer(serviceName)
	traceCtx, span := tr.Start(ctx, "client."+command.Name, trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("path", command.Path)))
	defer span.End()

	var body io.Reader
	if command.Body != nil {
		body = bytes.NewReader(command.Body)
	}

	req, err := http.NewRequestWithContext(traceCtx, command.Method, base+command.Path, body)
	if err != nil {
		return "", err
	}
	if command.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return "", err
	}

	out := string(data)
	var indented bytes.Buffer
	if json.Indent(&indented, data, "", "  ") == nil {
		out = indented.String()
	}
	if res.StatusCode == http.StatusNoContent {
		out = "ok"
	}
	if res.StatusCode >= http.StatusBadRequest {
		return fmt.Sprintf("%s: %s", res.Status, strings.TrimSpace(out)), nil
	}
	return strings.TrimRight(out, "\n"), nil
}

func setupReadline() (rl *readline.Instance, err error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(home, readlineConfigDir)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		return nil, err
	}

	return readline.NewEx(&readline.Config{
		Prompt:            "\033[31mlinkstack> \033[0m ",
		HistoryFile:       filepath.Join(dir, "linkstack.history"),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
}
