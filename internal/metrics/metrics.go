// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Drop reasons
const (
	DropRunt     = "runt"
	DropFiltered = "filtered"
	DropDecode   = "decode_error"
)

var (
	// FramesReceivedTotal counts frames read from the device
	FramesReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapwatch_frames_received_total",
			Help: "Total number of frames read from the TAP device",
		},
		[]string{"device"},
	)

	// BytesReceivedTotal counts frame bytes read from the device
	BytesReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapwatch_bytes_received_total",
			Help: "Total number of bytes read from the TAP device",
		},
		[]string{"device"},
	)

	// WouldBlockTotal counts reads that found no queued frame
	WouldBlockTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapwatch_would_block_total",
			Help: "Total number of non-blocking reads that returned no frame",
		},
		[]string{"device"},
	)

	// FramesDroppedTotal counts frames not decoded, by reason
	FramesDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapwatch_frames_dropped_total",
			Help: "Total number of frames dropped before or during decoding",
		},
		[]string{"device", "reason"},
	)

	// RecordErrorsTotal counts frames the pcap recorder failed to write
	RecordErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapwatch_record_errors_total",
			Help: "Total number of frames that could not be recorded",
		},
		[]string{"device"},
	)

	// EtherTypeTotal counts decoded frames by EtherType
	EtherTypeTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapwatch_ethertype_total",
			Help: "Total number of decoded frames by EtherType",
		},
		[]string{"device", "ethertype"},
	)

	// ARPOperationsTotal counts decoded ARP messages by operation
	ARPOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tapwatch_arp_operations_total",
			Help: "Total number of decoded ARP messages by operation",
		},
		[]string{"device", "operation"},
	)
)
