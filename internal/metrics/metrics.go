package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRegistry 创建自定义 Prometheus Registry，并注册常用采集器
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler 返回 Prometheus 指标 HTTP 处理器
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// AppMetrics 自定义业务指标
type AppMetrics struct {
	BytesReceived  prometheus.Counter
	FrameTotal     *prometheus.CounterVec // labels: result=ok|bad_checksum
	FrameOversize  prometheus.Counter
	DispatchTotal  *prometheus.CounterVec // labels: msg
	NackTotal      *prometheus.CounterVec // labels: reason
	SampleTotal    *prometheus.CounterVec // labels: kind=rotation|accel
	ResponseErrors prometheus.Counter
}

// NewAppMetrics 注册并返回业务指标
func NewAppMetrics(reg *prometheus.Registry) *AppMetrics {
	m := &AppMetrics{
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "link_bytes_received_total",
			Help: "Total bytes received over the transport link.",
		}),
		FrameTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "frame_parse_total",
			Help: "Completed frame parse attempts.",
		}, []string{"result"}),
		FrameOversize: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "frame_oversize_drop_total",
			Help: "Frames dropped for declaring an oversized payload.",
		}),
		DispatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "dispatch_total",
			Help: "Dispatched requests by message id.",
		}, []string{"msg"}),
		NackTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nack_total",
			Help: "NACK responses by reason.",
		}, []string{"reason"}),
		SampleTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "sensor_sample_total",
			Help: "Sensor samples consumed by kind.",
		}, []string{"kind"}),
		ResponseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "response_write_errors_total",
			Help: "Responses that failed to be written to the link.",
		}),
	}
	reg.MustRegister(m.BytesReceived, m.FrameTotal, m.FrameOversize, m.DispatchTotal, m.NackTotal, m.SampleTotal, m.ResponseErrors)
	return m
}
