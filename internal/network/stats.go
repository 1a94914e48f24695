package network

import (
	"gonum.org/v1/gonum/stat"
)

// TierCounts holds one integer per tier.
type TierCounts struct {
	LongRange   int `json:"long_range"`
	MediumRange int `json:"medium_range"`
	ShortRange  int `json:"short_range"`
}

// TierCoverage is the percentage of online nodes per tier.
type TierCoverage struct {
	Tactical  float64 `json:"tactical"`
	Regional  float64 `json:"regional"`
	Strategic float64 `json:"strategic"`
}

// Coverage summarizes node availability.
type Coverage struct {
	TotalNodes    int          `json:"total_nodes"`
	OnlineNodes   int          `json:"online_nodes"`
	DegradedNodes int          `json:"degraded_nodes"`
	OfflineNodes  int          `json:"offline_nodes"`
	CoveragePct   float64      `json:"coverage_pct"`
	OnlineByTier  TierCounts   `json:"online_by_tier"`
	TierCoverage  TierCoverage `json:"tier_coverage"`
}

// Stats extends Coverage with performance figures.
type Stats struct {
	Coverage
	AvgCPU               float64 `json:"avg_cpu"`
	AvgSignalQuality     float64 `json:"avg_signal_quality"`
	TotalContactsTracked int     `json:"total_contacts_tracked"`
	NetworkLatencyMS     int     `json:"network_latency_ms"`
}

// CoverageMap counts nodes by status and tier. An empty tier reports 0%.
func (n *Network) CoverageMap() Coverage {
	var cov Coverage
	var total, online TierCounts
	for _, node := range n.nodes {
		cov.TotalNodes++
		switch node.Status {
		case StatusOnline:
			cov.OnlineNodes++
		case StatusDegraded:
			cov.DegradedNodes++
		case StatusOffline:
			cov.OfflineNodes++
		}
		t, o := tierSlot(&total, node.Tier), tierSlot(&online, node.Tier)
		*t++
		if node.Status == StatusOnline {
			*o++
		}
	}
	cov.OnlineByTier = online
	cov.CoveragePct = pct(cov.OnlineNodes, cov.TotalNodes)
	cov.TierCoverage = TierCoverage{
		Tactical:  pct(online.ShortRange, total.ShortRange),
		Regional:  pct(online.MediumRange, total.MediumRange),
		Strategic: pct(online.LongRange, total.LongRange),
	}
	return cov
}

// NetworkStats aggregates coverage and averages over nodes that are not offline.
func (n *Network) NetworkStats() Stats {
	st := Stats{Coverage: n.CoverageMap()}
	var cpu, signal []float64
	for _, node := range n.nodes {
		st.TotalContactsTracked += node.Metrics.ContactsTracked
		if node.Status == StatusOffline {
			continue
		}
		cpu = append(cpu, node.Metrics.CPULoad)
		signal = append(signal, node.Metrics.SignalQuality)
	}
	if len(cpu) > 0 {
		st.AvgCPU = stat.Mean(cpu, nil)
		st.AvgSignalQuality = stat.Mean(signal, nil)
	}
	st.NetworkLatencyMS = 10 + int(st.AvgCPU*0.5)
	return st
}

func tierSlot(tc *TierCounts, t Tier) *int {
	switch t {
	case LongRange:
		return &tc.LongRange
	case MediumRange:
		return &tc.MediumRange
	}
	return &tc.ShortRange
}

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}
