// Package api is the client for the knowledge-base backend.
//
// Every backend response is wrapped in an envelope:
//
//	{"code": 0, "msg": "success", "data": {...}}
//
// A non-zero code is surfaced as an UPSTREAM_ERROR (or NOT_FOUND /
// UNAUTHORIZED for the codes the backend reserves for those).
package api

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kgview/pkg/errors"
	"github.com/matzehuels/kgview/pkg/graph"
	"github.com/matzehuels/kgview/pkg/httputil"
	"github.com/matzehuels/kgview/pkg/observability"
)

// Backend envelope codes with a dedicated meaning.
const (
	CodeOK           = 0
	CodeUnauthorized = 401
	CodeNotFound     = 404
)

// Envelope is the backend response wrapper.
type Envelope[T any] struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data T      `json:"data"`
}

// Err converts a non-zero envelope code to a coded error.
func (e Envelope[T]) Err() error {
	switch e.Code {
	case CodeOK:
		return nil
	case CodeNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s", e.msg())
	case CodeUnauthorized:
		return errors.New(errors.ErrCodeUnauthorized, "%s", e.msg())
	default:
		return errors.New(errors.ErrCodeUpstream, "backend code %d: %s", e.Code, e.msg())
	}
}

func (e Envelope[T]) msg() string {
	if e.Msg == "" {
		return "no message"
	}
	return e.Msg
}

// GraphResponse is the data of GET /knowledge/graph: the document
// processing counters of a knowledge base plus its extracted graph.
type GraphResponse struct {
	ProcessingCount int32          `json:"processingCount"`
	SuccessCount    int32          `json:"successCount"`
	FailCount       int32          `json:"failCount"`
	Total           int32          `json:"total"`
	Graph           *graph.Payload `json:"graph"`
}

// Ready reports whether every document of the knowledge base has finished
// processing.
func (r *GraphResponse) Ready() bool {
	return r.ProcessingCount == 0
}

// Client talks to the backend.
type Client struct {
	base   *url.URL
	http   *httputil.Client
	keyer  func(kbID string) string
	logger *log.Logger
}

// Options configures [New].
type Options struct {
	BaseURL string
	Token   string
	Timeout time.Duration
	Cache   *httputil.ResponseCache // nil disables response caching
	Logger  *log.Logger
	// CacheKey derives the response cache key; defaults to "graph:<kbID>".
	CacheKey func(kbID string) string
}

// New validates opts and returns a client.
func New(opts Options) (*Client, error) {
	if err := errors.ValidateURL(opts.BaseURL); err != nil {
		return nil, err
	}
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "api base url")
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	httpOpts := []httputil.ClientOption{httputil.WithLogger(logger)}
	if opts.Token != "" {
		httpOpts = append(httpOpts, httputil.WithHeader("Authorization", "Bearer "+opts.Token))
	}
	if opts.Cache != nil {
		httpOpts = append(httpOpts, httputil.WithCache(opts.Cache))
	}
	if opts.Timeout > 0 {
		httpOpts = append(httpOpts, httputil.WithTimeout(opts.Timeout))
	}
	hc := httputil.NewClient(httpOpts...)

	keyer := opts.CacheKey
	if keyer == nil {
		keyer = func(kbID string) string { return "graph:" + kbID }
	}
	return &Client{base: base, http: hc, keyer: keyer, logger: logger}, nil
}

// KnowledgeGraph fetches the graph of a knowledge base. refresh skips the
// response cache.
func (c *Client) KnowledgeGraph(ctx context.Context, kbID string, refresh bool) (*GraphResponse, error) {
	if err := errors.ValidateKnowledgeID(kbID); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnFetchStart(ctx, kbID)
	start := time.Now()

	u := c.endpoint("knowledge", "graph")
	q := u.Query()
	q.Set("knowledgeId", kbID)
	u.RawQuery = q.Encode()

	var env Envelope[GraphResponse]
	err := c.http.Cached(ctx, c.keyer(kbID), refresh, &env, func() error {
		env = Envelope[GraphResponse]{}
		if err := c.http.GetJSON(ctx, u.String(), &env); err != nil {
			return err
		}
		return env.Err()
	})
	if err == nil {
		err = env.Err()
	}

	nodes := 0
	if err == nil && env.Data.Graph != nil {
		nodes = len(env.Data.Graph.Nodes)
	}
	hooks.OnFetchComplete(ctx, kbID, nodes, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched knowledge graph", "kb", kbID, "nodes", nodes, "processing", env.Data.ProcessingCount)
	if env.Data.Graph == nil {
		env.Data.Graph = &graph.Payload{}
	}
	return &env.Data, nil
}

// DecodeEnvelope unwraps a raw envelope, e.g. one saved to disk with
// `curl`, into a graph response.
func DecodeEnvelope(data []byte) (*GraphResponse, error) {
	var env Envelope[GraphResponse]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPayload, err, "decode envelope")
	}
	if err := env.Err(); err != nil {
		return nil, err
	}
	if env.Data.Graph == nil {
		env.Data.Graph = &graph.Payload{}
	}
	return &env.Data, nil
}

func (c *Client) endpoint(parts ...string) *url.URL {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(parts, "/")
	return &u
}
