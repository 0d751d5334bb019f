package client

import (
    "bufio"
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "github.com/aleph-zero/linkstack/telemetry"
    "go.opentelemetry.io/otel"
    "go.opentelemetry.io/otel/attribute"
    "go.opentelemetry.io/otel/trace"
    "io"
    "net/http"
    "net/url"
    "os"
    "strings"
)

const batchSize = 3000

type LoaderConfig struct {
    ClientConfig *Config
    Stack        string
    Filename     string
}

type LoaderOption func(*LoaderConfig)

func NewLoaderConfig(options ...LoaderOption) *LoaderConfig {
    cfg := &LoaderConfig{}
    for _, option := range options {
        option(cfg)
    }
    return cfg
}

func WithStack(stack string) LoaderOption {
    return func(cfg *LoaderConfig) {
        cfg.Stack = stack
    }
}

func WithFilename(filename string) LoaderOption {
    return func(cfg *LoaderConfig) {
        cfg.Filename = filename
    }
}

func WithClientConfig(clientConfig *Config) LoaderOption {
    return func(cfg *LoaderConfig) {
        cfg.ClientConfig = clientConfig
    }
}

// BootstrapLoader pushes every non-blank line of the configured file onto the configured
// stack, in file order, so the last line ends up on top.
func BootstrapLoader(config *LoaderConfig) {
    ctx := context.Background()
    shutdown, _ := telemetry.New(serviceName, serviceVersion, collectorURL)
    defer shutdown()

    if config.Stack == "" {
        fmt.Println("A stack name is required")
        return
    }

    endpoint := fmt.Sprintf("%s/stacks/%s/bulk", config.ClientConfig.baseURL(), url.PathEscape(config.Stack))
    client := newHTTPClient()

    if _, err := os.Stat(config.Filename); os.IsNotExist(err) {
        fmt.Printf("Input file '%s' does not exist\n", config.Filename)
        return
    }

    file, err := os.Open(config.Filename)
    if err != nil {
        fmt.Printf("Error opening file '%s': %s\n", config.Filename, err)
        return
    }
    defer file.Close()

    err = readBatches(file, batchSize, func(batch []string, batchNum int) error {
        return submitBatch(ctx, endpoint, client, batch, batchNum)
    })
    if err != nil {
        fmt.Printf("Error loading file: %s\n", err)
    }
}

// readBatches hands every non-blank line of reader to fn in batches of at most size
// lines. Batch numbers start at 1. A failing batch is reported and loading continues.
func readBatches(reader io.Reader, size int, fn func(batch []string, batchNum int) error) error {
    scanner := bufio.NewScanner(reader)
    var batch []string
    batchNum := 1

    flush := func() {
        if err := fn(batch, batchNum); err != nil {
            fmt.Printf("Error sending batch %d: %s\n", batchNum, err)
        }
        batch = nil
        batchNum++
    }

    for scanner.Scan() {
        line := strings.TrimSpace(scanner.Text())
        if line == "" {
            continue
        }
        batch = append(batch, line)

        if len(batch) >= size {
            flush()
        }
    }

    if len(batch) > 0 {
        flush()
    }

    if err := scanner.Err(); err != nil {
        return fmt.Errorf("scanning file: %w", err)
    }
    return nil
}

func submitBatch(ctx context.Context, endpoint string, client http.Client, batch []string, batchNum int) error {
    tr := otel.Tracer(serviceName)
    traceCtx, span := tr.Start(ctx, "client.loader", trace.WithSpanKind(trace.SpanKindClient),
        trace.WithAttributes(attribute.Int("batch", batchNum), attribute.Int("size", len(batch))))
    defer span.End()

    values := make([]map[string]string, 0, len(batch))
    for _, v := range batch {
        values = append(values, map[string]string{"value": v})
    }

    data, err := json.Marshal(values)
    if err != nil {
        return err
    }

    req, err := http.NewRequestWithContext(traceCtx, http.MethodPost, endpoint, bytes.NewReader(data))
    if err != nil {
        return err
    }
    req.Header.Set("Content-Type", "application/json")

    resp, err := client.Do(req)
    if err != nil {
        return err
    }
    defer resp.Body.Close()

    if resp.StatusCode != http.StatusCreated {
        body, _ := io.ReadAll(resp.Body)
        return fmt.Errorf("batch %d rejected: %s: %s", batchNum, resp.Status, strings.TrimSpace(string(body)))
    }

    fmt.Printf("Batch %d sent; status received: %s\n", batchNum, resp.Status)
    return nil
}
