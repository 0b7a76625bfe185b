package trace

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// PortInfo carries the static port facts needed to turn occupancy deltas
// in the log into utilization figures.
type PortInfo struct {
	Berths          int
	InitialOccupied int
}

// Summary aggregates the observable outcomes of one run, derived purely
// from the run log plus the static scenario facts in PortInfo.
type Summary struct {
	DeliveredCount  int
	DeliveredVolume float64
	ExpiredCount    int
	ExpiredVolume   float64
	Faults          int

	// Transit time is measured loading-complete → unloading-complete.
	MeanTransitTime   float64
	StddevTransitTime float64

	// PortUtilization maps port ID to mean fraction of berths occupied
	// over the run.
	PortUtilization map[string]float64

	EndTime int64
}

// Summarize derives a Summary from a run log. horizon caps the
// utilization window; ports supplies berth counts and setup occupancy.
func Summarize(l *Log, horizon int64, ports map[string]PortInfo) Summary {
	s := Summary{PortUtilization: make(map[string]float64)}

	loadedAt := make(map[string]int64)
	var transit []float64

	occupied := make(map[string]int, len(ports))
	busy := make(map[string]int64, len(ports))
	last := make(map[string]int64, len(ports))
	for id, info := range ports {
		occupied[id] = info.InitialOccupied
	}
	accrue := func(port string, now int64) {
		if now > last[port] {
			busy[port] += int64(occupied[port]) * (now - last[port])
			last[port] = now
		}
	}

	for _, r := range l.Records {
		if r.Time > s.EndTime {
			s.EndTime = r.Time
		}
		if strings.HasPrefix(r.Outcome, FaultPrefix) {
			s.Faults++
			continue
		}
		switch r.Outcome {
		case OutcomeLoaded:
			loadedAt[r.Cargo] = r.Time
		case OutcomeDelivered:
			s.DeliveredCount++
			s.DeliveredVolume += r.Volume
			if t0, ok := loadedAt[r.Cargo]; ok {
				transit = append(transit, float64(r.Time-t0))
			}
		case OutcomeExpired:
			s.ExpiredCount++
			s.ExpiredVolume += r.Volume
		case OutcomeBerthed:
			accrue(r.Port, r.Time)
			occupied[r.Port]++
		case OutcomeDeparted:
			accrue(r.Port, r.Time)
			occupied[r.Port]--
		}
	}

	if s.EndTime > horizon {
		s.EndTime = horizon
	}
	if len(transit) > 0 {
		s.MeanTransitTime = stat.Mean(transit, nil)
		if len(transit) > 1 {
			s.StddevTransitTime = stat.StdDev(transit, nil)
		}
	}
	for id, info := range ports {
		accrue(id, s.EndTime)
		if info.Berths > 0 && s.EndTime > 0 {
			s.PortUtilization[id] = float64(busy[id]) / float64(int64(info.Berths)*s.EndTime)
		}
	}
	return s
}

// Print displays the summary at the end of a run.
func (s Summary) Print() {
	fmt.Println("=== Simulation Summary ===")
	fmt.Printf("Delivered            : %d cargoes, %.1f volume\n", s.DeliveredCount, s.DeliveredVolume)
	fmt.Printf("Expired              : %d cargoes, %.1f volume\n", s.ExpiredCount, s.ExpiredVolume)
	fmt.Printf("Faults               : %d\n", s.Faults)
	if s.DeliveredCount > 0 {
		fmt.Printf("Mean transit time    : %.2f ticks\n", s.MeanTransitTime)
		fmt.Printf("Stddev transit time  : %.2f ticks\n", s.StddevTransitTime)
	}
	ports := make([]string, 0, len(s.PortUtilization))
	for id := range s.PortUtilization {
		ports = append(ports, id)
	}
	sort.Strings(ports)
	for _, id := range ports {
		fmt.Printf("Utilization %-9s: %.1f%%\n", id, 100*s.PortUtilization[id])
	}
}

// Aggregate folds the summaries of a Monte-Carlo batch into mean figures
// across replications.
func Aggregate(batch []Summary) Summary {
	if len(batch) == 0 {
		return Summary{PortUtilization: map[string]float64{}}
	}
	delivered := make([]float64, len(batch))
	expired := make([]float64, len(batch))
	transit := make([]float64, len(batch))
	agg := Summary{PortUtilization: make(map[string]float64)}
	for i, s := range batch {
		delivered[i] = s.DeliveredVolume
		expired[i] = s.ExpiredVolume
		transit[i] = s.MeanTransitTime
		agg.DeliveredCount += s.DeliveredCount
		agg.ExpiredCount += s.ExpiredCount
		agg.Faults += s.Faults
		for id, u := range s.PortUtilization {
			agg.PortUtilization[id] += u / float64(len(batch))
		}
		if s.EndTime > agg.EndTime {
			agg.EndTime = s.EndTime
		}
	}
	agg.DeliveredVolume = stat.Mean(delivered, nil)
	agg.ExpiredVolume = stat.Mean(expired, nil)
	agg.MeanTransitTime = stat.Mean(transit, nil)
	if len(batch) > 1 {
		agg.StddevTransitTime = stat.StdDev(transit, nil)
	}
	return agg
}
