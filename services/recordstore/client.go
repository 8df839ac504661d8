// Package recordstore is a core.RecordStore talking to the hosted backend-as-a-service record API.
package recordstore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/masomo/planner/core"
)

// auth headers expected by the hosted service
const (
	headerProjectID = "X-Apper-Project-Id"
	headerPublicKey = "X-Apper-Public-Key"
)

type Options struct {
	BaseURL    string
	ProjectID  string
	PublicKey  string
	Timeout    time.Duration
	Latency    time.Duration // artificial padding before each call
	HTTPClient *http.Client
}

type Client struct {
	baseURL   string
	projectID string
	publicKey string
	latency   time.Duration
	rest      *rest.Client
}

var _ core.RecordStore = (*Client)(nil)

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	return &Client{
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		projectID: opts.ProjectID,
		publicKey: opts.PublicKey,
		latency:   opts.Latency,
		rest:      &rest.Client{HTTPClient: httpClient},
	}
}

// NewFromConfig builds a Client from the store section of conf.
func NewFromConfig(conf *core.Config) *Client {
	return New(Options{
		BaseURL:   conf.Store.ApperURL,
		ProjectID: conf.Store.ApperProjectID,
		PublicKey: conf.Store.ApperPublicKey,
		Timeout:   conf.Store.Timeout,
		Latency:   conf.Store.Latency,
	})
}

func (c *Client) FetchRecords(ctx context.Context, table string, q core.Query) ([]core.Record, error) {
	env, err := c.send(ctx, rest.Post, c.tableURL(table, "records", "query"), newQueryParams(q))
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s records", table)
	}
	recs := make([]core.Record, 0)
	if !isNull(env.Data) {
		if err = decodeJSON(env.Data, &recs); err != nil {
			return nil, errors.Wrapf(err, "decoding %s records", table)
		}
	}
	return recs, nil
}

func (c *Client) GetRecordByID(ctx context.Context, table string, id int, q core.Query) (core.Record, error) {
	params := newQueryParams(core.Query{Fields: q.Fields})
	env, err := c.send(ctx, rest.Post, c.tableURL(table, "records", strconv.Itoa(id), "query"), params)
	if err != nil {
		return nil, errors.Wrapf(err, "getting %s record %d", table, id)
	}
	if isNull(env.Data) {
		return nil, nil
	}
	var rec core.Record
	if err = decodeJSON(env.Data, &rec); err != nil {
		return nil, errors.Wrapf(err, "decoding %s record %d", table, id)
	}
	return rec, nil
}

func (c *Client) CreateRecords(ctx context.Context, table string, records ...core.Record) ([]core.RecordResult, error) {
	env, err := c.send(ctx, rest.Post, c.tableURL(table, "records"), mutationParams{Records: records})
	if err != nil {
		return nil, errors.Wrapf(err, "creating %s records", table)
	}
	return env.results(), nil
}

func (c *Client) UpdateRecords(ctx context.Context, table string, records ...core.Record) ([]core.RecordResult, error) {
	env, err := c.send(ctx, rest.Patch, c.tableURL(table, "records"), mutationParams{Records: records})
	if err != nil {
		return nil, errors.Wrapf(err, "updating %s records", table)
	}
	return env.results(), nil
}

func (c *Client) DeleteRecords(ctx context.Context, table string, ids ...int) ([]core.RecordResult, error) {
	env, err := c.send(ctx, rest.Delete, c.tableURL(table, "records"), deleteParams{RecordIds: ids})
	if err != nil {
		return nil, errors.Wrapf(err, "deleting %s records", table)
	}
	return env.results(), nil
}

func (c *Client) tableURL(table string, parts ...string) string {
	segments := make([]string, 0, len(parts)+2)
	segments = append(segments, c.baseURL, "tables", url.PathEscape(table))
	segments = append(segments, parts...)
	return strings.Join(segments, "/")
}

// send issues one call & decodes the response envelope.
// An envelope reporting `success=false` is returned as a *core.RemoteError.
func (c *Client) send(ctx context.Context, method rest.Method, endpoint string, payload interface{}) (envelope, error) {
	var env envelope

	if err := c.wait(ctx); err != nil {
		return env, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return env, errors.Wrap(err, "encoding payload")
	}
	req := rest.Request{
		Method:  method,
		BaseURL: endpoint,
		Headers: map[string]string{
			"Content-Type":  "application/json",
			"Accept":        "application/json",
			headerProjectID: c.projectID,
			headerPublicKey: c.publicKey,
		},
		Body: body,
	}
	httpReq, err := rest.BuildRequestObject(req)
	if err != nil {
		return env, errors.Wrap(err, "building request")
	}
	httpResp, err := c.rest.MakeRequest(httpReq.WithContext(ctx))
	if err != nil {
		return env, errors.Wrap(err, "sending request")
	}
	resp, err := rest.BuildResponse(httpResp)
	if err != nil {
		return env, errors.Wrap(err, "reading response")
	}

	if err = decodeJSON([]byte(resp.Body), &env); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return env, errors.Errorf("unexpected status %d", resp.StatusCode)
		}
		return env, errors.Wrap(err, "decoding response envelope")
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return env, core.NewRemoteError(msg)
	}
	return env, nil
}

// wait pads the call with the configured latency.
func (c *Client) wait(ctx context.Context) error {
	if c.latency <= 0 {
		return nil
	}
	timer := time.NewTimer(c.latency)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
