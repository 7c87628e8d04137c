// Package adapters provides data source connectors that retrieve raw time
// series from external systems and shape them into a common DataFrame.
//
// Adapters are intentionally lightweight. They focus on pulling raw data
// and leave normalization (package tsdata) and feature extraction to the
// upper layers.
package adapters

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"
)

// PrometheusAdapter fetches time series from the Prometheus HTTP API.
// It issues a /api/v1/query_range call and returns a long *DataFrame with
// rows of the form:
//
//	{"id": string, "kind": string, "ts": RFC3339 string, "value": float64}
//
// Series are told apart by the IDLabel label. Series that share an id value
// (or every series, when IDLabel is empty) are SUMMED per timestamp.
type PrometheusAdapter struct {
	// ServerURL is the base URL to Prometheus, e.g. http://prometheus.monitoring.svc:9090
	ServerURL string
	// Query is the PromQL expression to evaluate.
	Query string
	// Kind is the kind assigned to every row; defaults to "value".
	Kind string
	// IDLabel is the series label used as the row id, e.g. "pod".
	// When empty all series collapse into the single id "all".
	IDLabel string
	// StepSeconds controls the resolution (defaults to 60s if <= 0).
	StepSeconds int
	// HTTPClient is optional; if nil a default client with timeout is used.
	HTTPClient *http.Client
}

func (p *PrometheusAdapter) Name() string { return "prometheus" }

// Collect implements Adapter. It queries Prometheus for the last windowSeconds worth
// of data, at StepSeconds resolution, and returns a *DataFrame sorted by id and
// timestamp. It respects the provided context for cancellation and deadlines.
func (p *PrometheusAdapter) Collect(ctx context.Context, windowSeconds int) (*DataFrame, error) {
	if p.ServerURL == "" || p.Query == "" {
		return &DataFrame{}, errors.New("prometheus adapter: ServerURL and Query are required")
	}
	step := p.StepSeconds
	if step <= 0 {
		step = 60
	}
	now := time.Now().UTC().Truncate(time.Second)
	start := now.Add(-time.Duration(windowSeconds) * time.Second)

	u, err := url.Parse(p.ServerURL)
	if err != nil {
		return &DataFrame{}, fmt.Errorf("invalid ServerURL: %w", err)
	}
	u = u.JoinPath("/api/v1/query_range")

	q := u.Query()
	q.Set("query", p.Query)
	q.Set("start", strconv.FormatInt(start.Unix(), 10))
	q.Set("end", strconv.FormatInt(now.Unix(), 10))
	q.Set("step", strconv.Itoa(step))
	u.RawQuery = q.Encode()

	cli := p.HTTPClient
	if cli == nil {
		cli = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &DataFrame{}, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := cli.Do(req)
	if err != nil {
		return &DataFrame{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &DataFrame{}, fmt.Errorf("prometheus: status %d", resp.StatusCode)
	}

	var pr prometheusRangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return &DataFrame{}, fmt.Errorf("decode prometheus response: %w", err)
	}
	if pr.Status != "success" {
		return &DataFrame{}, fmt.Errorf("prometheus status: %s", pr.Status)
	}

	points, err := aggregateRangeResult(pr.Data.Result, p.IDLabel, step)
	if err != nil {
		return &DataFrame{}, err
	}

	kind := p.Kind
	if kind == "" {
		kind = "value"
	}
	rows := make([]Row, len(points))
	for i, pt := range points {
		rows[i] = Row{
			"id":    pt.id,
			"kind":  kind,
			"ts":    pt.ts.UTC().Format(time.RFC3339),
			"value": pt.value,
		}
	}
	return &DataFrame{Rows: rows}, nil
}

type prometheusRangeResponse struct {
	Status string              `json:"status"`
	Data   prometheusRangeData `json:"data"`
}

type prometheusRangeData struct {
	ResultType string                 `json:"resultType"`
	Result     []prometheusRangeSerie `json:"result"`
}

type prometheusRangeSerie struct {
	Metric map[string]string `json:"metric"`
	// Values is an array of [ <unix_time_float>, "<value_string>" ]
	Values [][]any `json:"values"`
}

type point struct {
	id    string
	ts    time.Time
	value float64
}

type pointKey struct {
	id string
	ts int64
}

func aggregateRangeResult(series []prometheusRangeSerie, idLabel string, stepSec int) ([]point, error) {
	acc := make(map[pointKey]float64)
	for _, s := range series {
		id := "all"
		if idLabel != "" {
			id = s.Metric[idLabel]
		}
		for _, pair := range s.Values {
			if len(pair) != 2 {
				return nil, fmt.Errorf("invalid value pair length: %d", len(pair))
			}

			var tsSec int64
			switch v := pair[0].(type) {
			case float64:
				tsSec = int64(v)
			case json.Number:
				f, _ := v.Float64()
				tsSec = int64(f)
			default:
				return nil, fmt.Errorf("unexpected timestamp type %T", v)
			}

			var val float64
			switch vv := pair[1].(type) {
			case string:
				f, err := strconv.ParseFloat(vv, 64)
				if err != nil {
					return nil, fmt.Errorf("parse value: %w", err)
				}
				val = f
			case float64:
				val = vv
			case json.Number:
				f, _ := vv.Float64()
				val = f
			default:
				return nil, fmt.Errorf("unexpected value type %T", vv)
			}

			aligned := AlignTimestamp(time.Unix(tsSec, 0), stepSec).Unix()
			acc[pointKey{id: id, ts: aligned}] += val
		}
	}

	points := make([]point, 0, len(acc))
	for k, v := range acc {
		points = append(points, point{id: k.id, ts: time.Unix(k.ts, 0).UTC(), value: v})
	}
	slices.SortFunc(points, func(a, b point) int {
		if c := cmp.Compare(a.id, b.id); c != 0 {
			return c
		}
		return a.ts.Compare(b.ts)
	})
	return points, nil
}
