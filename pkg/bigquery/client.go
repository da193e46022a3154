package bigquery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/angelmondragon/orderdesk-backend/pkg/config"
	"github.com/angelmondragon/orderdesk-backend/pkg/logger"
)

const metadataCheckTimeout = 10 * time.Second

var (
	errProjectIDRequired    = errors.New("gcp project id is required")
	errDatasetRequired      = errors.New("bigquery dataset is required")
	errTableNameRequired    = errors.New("bigquery table name is required")
	errClientNotInitialized = errors.New("bigquery client not initialized")
	errUnknownTable         = errors.New("bigquery table not configured")
)

// Client streams rows into the tables of one dataset. Only tables that were
// verified at startup accept writes.
type Client struct {
	client  *bigquery.Client
	dataset *bigquery.Dataset
	tables  map[string]*bigquery.Table
}

// NewClient connects to the configured dataset and fails fast when the
// dataset or any configured table is missing.
func NewClient(ctx context.Context, gcp config.GCPConfig, cfg config.BigQueryConfig, logg *logger.Logger) (*Client, error) {
	projectID := strings.TrimSpace(gcp.ProjectID)
	if projectID == "" {
		return nil, errProjectIDRequired
	}
	datasetID := strings.TrimSpace(cfg.Dataset)
	if datasetID == "" {
		return nil, errDatasetRequired
	}
	names := ConfiguredTables(cfg)
	if len(names) == 0 {
		return nil, errTableNameRequired
	}

	bq, err := bigquery.NewClient(ctx, projectID, ClientOptions(gcp)...)
	if err != nil {
		return nil, fmt.Errorf("creating bigquery client: %w", err)
	}
	dataset := bq.Dataset(datasetID)
	client := &Client{client: bq, dataset: dataset, tables: make(map[string]*bigquery.Table, len(names))}
	for _, name := range names {
		client.tables[name] = dataset.Table(name)
	}
	if err := client.Ping(ctx); err != nil {
		_ = bq.Close()
		return nil, err
	}

	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{"project": projectID, "dataset": datasetID, "tables": names}), "bigquery.ready")
	}
	return client, nil
}

// ClientOptions maps the GCP credential settings to client options. Inline
// JSON wins over a file path; neither means ambient credentials.
func ClientOptions(gcp config.GCPConfig) []option.ClientOption {
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		return []option.ClientOption{option.WithCredentialsJSON([]byte(gcp.CredentialsJSON))}
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		return []option.ClientOption{option.WithCredentialsFile(gcp.ApplicationCredentials)}
	}
	return nil
}

func ConfiguredTables(cfg config.BigQueryConfig) []string {
	var tables []string
	if name := strings.TrimSpace(cfg.OrderEventsTable); name != "" {
		tables = append(tables, name)
	}
	return tables
}

// Ping checks dataset and table metadata.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.dataset == nil {
		return errClientNotInitialized
	}
	ctx, cancel := context.WithTimeout(ctx, metadataCheckTimeout)
	defer cancel()

	if _, err := c.dataset.Metadata(ctx); err != nil {
		return describeLookup("dataset", c.dataset.DatasetID, err)
	}
	for name, table := range c.tables {
		if _, err := table.Metadata(ctx); err != nil {
			return describeLookup("table", name, err)
		}
	}
	return nil
}

func describeLookup(kind, name string, err error) error {
	if IsNotFound(err) {
		return fmt.Errorf("%s %q does not exist", kind, name)
	}
	return fmt.Errorf("checking %s %q: %w", kind, name, err)
}

// InsertRows streams rows into table. Each row supplies its own insert id
// through Save, which lets BigQuery drop duplicates from redelivery.
func (c *Client) InsertRows(ctx context.Context, table string, rows []bigquery.ValueSaver) error {
	if c == nil || c.client == nil {
		return errClientNotInitialized
	}
	name := strings.TrimSpace(table)
	if name == "" {
		return errTableNameRequired
	}
	target, ok := c.tables[name]
	if !ok {
		return fmt.Errorf("%w: %s", errUnknownTable, name)
	}
	if len(rows) == 0 {
		return nil
	}
	return target.Inserter().Put(ctx, rows)
}

func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// IsNotFound reports whether err is a googleapi 404.
func IsNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr != nil && apiErr.Code == http.StatusNotFound
}
