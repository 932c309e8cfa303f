/*
PURPOSE:
  Pushes every result row to an InfluxDB v2 bucket so sweeps can be graphed
  over time next to other scan metrics.

REQUIREMENTS:
  Implementation-discovered:
  - One point per row; parameters are tags, rates and timings are fields.
  - The server must report a passing health check before the sweep starts.
  - Writes follow the run context so Ctrl-C does not wait out the timeout.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli (run, when influx.url is set)
  - Implements: RowWriter
  - Dependencies: github.com/influxdata/influxdb-client-go/v2

ERROR HANDLING:
  - Unreachable or unhealthy server fails NewInfluxWriter.
  - Write errors are returned; the runner logs them and continues.

USAGE:
  iw, err := output.NewInfluxWriter(ctx, "http://localhost:8086", token, org, bucket)
  iw.Write(result)

RELATED FILES:
  - internal/output/writer.go
*/

package output

import (
	"context"
	"fmt"
	"strconv"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/daryltucker/qr-bench/internal/model"
)

// Measurement is the InfluxDB measurement every result row is written to.
const Measurement = "qr_scan"

// InfluxWriter pushes result rows to an InfluxDB v2 bucket.
type InfluxWriter struct {
	ctx     context.Context
	client  influxdb2.Client
	write   api.WriteAPIBlocking
	timeout time.Duration
}

// NewInfluxWriter connects to url and checks the server is healthy.
// Writes are bound to ctx, so cancelling it aborts a pending write.
func NewInfluxWriter(ctx context.Context, url, token, org, bucket string) (*InfluxWriter, error) {
	client := influxdb2.NewClient(url, token)

	hctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	check, err := client.Health(hctx)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("influxdb at %s is unreachable: %w", url, err)
	}
	if check.Status != "pass" {
		client.Close()
		return nil, fmt.Errorf("influxdb at %s not ready: status %s", url, check.Status)
	}

	return &InfluxWriter{
		ctx:     ctx,
		client:  client,
		write:   client.WriteAPIBlocking(org, bucket),
		timeout: 5 * time.Second,
	}, nil
}

// Point converts a result row into an InfluxDB point.
func Point(r model.Result) *write.Point {
	tags := map[string]string{
		"run_id":       r.RunID,
		"background":   r.Background,
		"border_color": r.BorderColor,
		"box_size":     strconv.Itoa(r.BoxSize),
		"ec_level":     r.ECLevel.String(),
		"jpeg_quality": strconv.Itoa(r.Quality),
		"size":         r.Size.String(),
		"preprocess":   strconv.FormatBool(r.Preprocess),
	}
	fields := map[string]interface{}{
		"iterations":   r.Iterations,
		"successes":    r.Successes,
		"success_rate": r.SuccessRate(),
		"avg_read_s":   r.AvgReadTime().Seconds(),
	}
	return influxdb2.NewPoint(Measurement, tags, fields, r.Timestamp)
}

func (iw *InfluxWriter) Write(r model.Result) error {
	ctx, cancel := context.WithTimeout(iw.ctx, iw.timeout)
	defer cancel()
	return iw.write.WritePoint(ctx, Point(r))
}

func (iw *InfluxWriter) Close() error {
	iw.client.Close()
	return nil
}
