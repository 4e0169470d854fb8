package telemetry

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RecordsWritten counts records that survived the transform and reached the
// registered output, labelled by task name. Nothing is added on a failed run.
var RecordsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "rowmill",
	Name:      "records_written_total",
	Help:      "Records written to the transform output.",
}, []string{"task"})

// Expose serves /metrics on the given port.
func Expose(port int) {
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		_ = http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
	}()
}
