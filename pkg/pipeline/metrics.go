package pipeline

import (
	"github.com/els0r/parzip/cmd/parzip/config"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	pipelineSubsystem = "pipeline"
)

var blocksProcessed = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: config.ServiceName,
	Subsystem: pipelineSubsystem,
	Name:      "blocks_processed_total",
	Help:      "Number of blocks written to the destination",
},
	[]string{"mode"},
)
var bytesRead = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: config.ServiceName,
	Subsystem: pipelineSubsystem,
	Name:      "bytes_read_total",
	Help:      "Number of bytes read from the source",
},
	[]string{"mode"},
)
var bytesWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: config.ServiceName,
	Subsystem: pipelineSubsystem,
	Name:      "bytes_written_total",
	Help:      "Number of bytes written to the destination",
},
	[]string{"mode"},
)
var pendingBlocks = prometheus.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: config.ServiceName,
	Subsystem: pipelineSubsystem,
	Name:      "pending_blocks",
	Help:      "Number of processed blocks waiting for their predecessors to be written",
},
	[]string{"mode"},
)
var runErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: config.ServiceName,
	Subsystem: pipelineSubsystem,
	Name:      "run_errors_total",
	Help:      "Number of failed runs",
},
	[]string{"mode"},
)

var runDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: config.ServiceName,
	Subsystem: pipelineSubsystem,
	Name:      "run_duration_seconds",
	Help:      "Total time taken to process a source",
	// covers small files up to multi-GiB sources on slow disks
	Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
},
	[]string{"mode"},
)

func init() {
	prometheus.MustRegister(
		blocksProcessed,
		bytesRead,
		bytesWritten,
		pendingBlocks,
		runErrors,
		runDuration,
	)
}
