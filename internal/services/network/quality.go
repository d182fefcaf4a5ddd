package network

import (
	"context"
	"math"
	"net"
	"time"
)

type Quality struct {
	Ping       int     `json:"ping"`
	Jitter     int     `json:"jitter"`
	PacketLoss float64 `json:"packet_loss"`
}

type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

// MeasureQuality opens samples TCP connections to addr and derives ping (mean connect time),
// jitter (mean difference between consecutive connect times) and packet loss (percentage of
// failed attempts).
func MeasureQuality(ctx context.Context, dial DialFunc, addr string, samples int, timeout time.Duration) Quality {
	if samples <= 0 {
		return Quality{}
	}

	var rtts []time.Duration
	failed := 0

	for range samples {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		start := time.Now()
		conn, err := dial(attemptCtx, "tcp", addr)
		elapsed := time.Since(start)
		cancel()

		if err != nil {
			failed++
			continue
		}
		conn.Close()

		rtts = append(rtts, elapsed)
	}

	return qualityFromSamples(rtts, failed, samples)
}

func qualityFromSamples(rtts []time.Duration, failed, samples int) Quality {
	q := Quality{
		PacketLoss: math.Round(float64(failed)/float64(samples)*100*10) / 10,
	}
	if len(rtts) == 0 {
		return q
	}

	var sum time.Duration
	for _, rtt := range rtts {
		sum += rtt
	}
	q.Ping = int((sum / time.Duration(len(rtts))).Milliseconds())

	if len(rtts) > 1 {
		var diffs time.Duration
		for i := 1; i < len(rtts); i++ {
			d := rtts[i] - rtts[i-1]
			if d < 0 {
				d = -d
			}
			diffs += d
		}
		q.Jitter = int((diffs / time.Duration(len(rtts)-1)).Milliseconds())
	}

	return q
}
