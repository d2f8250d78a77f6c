package dispatch

import (
	"time"

	"firestige.xyz/tapwatch/internal/core/decoder"
	"firestige.xyz/tapwatch/internal/log"
)

// LogReporter writes ARP traffic at info level and everything else at debug.
// Unrecognized EtherTypes are promoted to info when logUnknown is set.
type LogReporter struct {
	device     string
	logUnknown bool
}

func NewLogReporter(device string, logUnknown bool) *LogReporter {
	return &LogReporter{device: device, logUnknown: logUnknown}
}

func (r *LogReporter) Report(ts time.Time, pkt decoder.Packet) {
	logger := log.GetLogger().WithFields(map[string]interface{}{
		"device": r.device,
		"src":    pkt.Source.String(),
		"dst":    pkt.Destination.String(),
	})

	switch {
	case pkt.ARP != nil:
		fields := map[string]interface{}{
			"htype": pkt.ARP.HardwareType.String(),
			"ptype": pkt.ARP.ProtocolType.String(),
			"op":    pkt.ARP.Operation.String(),
		}
		if pkt.ARP.HasAddresses {
			fields["sender_mac"] = pkt.ARP.SourceMAC.String()
			fields["sender_ip"] = pkt.ARP.SourceIP.String()
			fields["target_mac"] = pkt.ARP.DestinationMAC.String()
			fields["target_ip"] = pkt.ARP.DestinationIP.String()
		}
		logger.WithFields(fields).Info(pkt.String())
	case pkt.EtherType == decoder.EtherTypeUnknown && r.logUnknown:
		logger.Infof("unrecognized ethertype 0x%04x, %d bytes", pkt.EtherTypeCode, pkt.Length)
	default:
		if logger.IsDebugEnabled() {
			logger.Debug(pkt.String())
		}
	}
}
