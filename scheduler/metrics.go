// SPDX-License-Identifier: EPL-2.0

package scheduler

// Metrics receives scheduler events. Implementations must be safe for
// concurrent use.
type Metrics interface {
	GrainTriggered()
	GrainFailed()
	VoicesChanged(delta int)
	VoicesEvicted(n int)
	Reconfigured()
}

type nopMetrics struct{}

func (nopMetrics) GrainTriggered()   {}
func (nopMetrics) GrainFailed()      {}
func (nopMetrics) VoicesChanged(int) {}
func (nopMetrics) VoicesEvicted(int) {}
func (nopMetrics) Reconfigured()     {}
