package blkstore

import (
	"time"

	"github.com/tchajed/goose/machine/disk"
)

// slowDisk delays every block read and write, to simulate device latency.
type slowDisk struct {
	disk.Disk
	latency time.Duration
}

// WithLatency wraps d so that each Read and Write first sleeps lat. A zero
// latency returns d unchanged.
func WithLatency(d disk.Disk, lat time.Duration) disk.Disk {
	if lat <= 0 {
		return d
	}
	return slowDisk{Disk: d, latency: lat}
}

func (d slowDisk) Read(a uint64) disk.Block {
	time.Sleep(d.latency)
	return d.Disk.Read(a)
}

func (d slowDisk) Write(a uint64, v disk.Block) {
	time.Sleep(d.latency)
	d.Disk.Write(a, v)
}
