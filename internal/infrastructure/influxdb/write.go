package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WritePoint enqueues one point on the batched write path.
//
// Tags index the point and must stay low-cardinality (mode, host);
// fields carry the values. The write is non-blocking and silently
// dropped when the client is closed; async failures surface through
// the SetOnError callback. The metric helpers below all route through
// here, so custom measurements behave identically to the built-in ones.
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	c.writes.WritePoint(write.NewPoint(measurement, tags, fields, time.Now()))
}

// WriteDecisionMetric records one decision-pipeline run in the
// "decisions" measurement: how many actions the model proposed and the
// wall-clock time of the snapshot+prompt+completion+parse path, tagged
// by mode.
func (c *Client) WriteDecisionMetric(mode string, actionCount int, durationMS int64) {
	c.WritePoint("decisions",
		map[string]string{
			"mode": mode,
		},
		map[string]interface{}{
			"action_count": actionCount,
			"duration_ms":  durationMS,
		},
	)
}

// WriteExecutionMetric records one execution batch in the "executions"
// measurement: attempted/completed/failed counts, the success rate in
// percent, and the wall-clock time of the whole batch, tagged by mode.
func (c *Client) WriteExecutionMetric(mode string, total, successful, failed int, successRate float64, durationMS int64) {
	c.WritePoint("executions",
		map[string]string{
			"mode": mode,
		},
		map[string]interface{}{
			"total":        total,
			"successful":   successful,
			"failed":       failed,
			"success_rate": successRate,
			"duration_ms":  durationMS,
		},
	)
}
