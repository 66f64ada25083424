// Package status implements spec.md §4.6's POST /status: a live snapshot
// of the Presence Registry, optionally enriched with a host memory/swap
// probe. No file in original_source/ survived filtering for the probe
// itself; its "%.2f GB"-formatted fields match the shape StatusSnapshot
// already documents from the original sysinfo-crate output.
package status

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/alpadrive/fleet-server/internal/domain/model"
	"github.com/alpadrive/fleet-server/internal/domain/registry"
)

// Service implements internal/handler/http's StatusService.
type Service struct {
	presence *registry.Presence
}

func NewService(presence *registry.Presence) *Service {
	return &Service{presence: presence}
}

func (s *Service) Snapshot(ctx context.Context, withSystemStat bool) model.StatusSnapshot {
	activeVehicles, activeSessions := s.presence.Snapshot()
	snapshot := model.StatusSnapshot{
		ActiveVehicles: activeVehicles,
		ActiveSessions: activeSessions,
		ActiveUsers:    activeSessions - activeVehicles,
	}
	if withSystemStat {
		snapshot.System = probe()
	}
	return snapshot
}

// probe reads host memory and swap usage. A probe failure degrades to a
// nil System field rather than failing the whole request: spec.md §4.6
// treats systemstat as best-effort enrichment, not a required field.
func probe() *model.SystemStat {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return nil
	}
	swap, err := mem.SwapMemory()
	if err != nil {
		return nil
	}
	return &model.SystemStat{
		MemoryAvailable: gigabytes(vm.Available),
		MemoryUsed:      gigabytes(vm.Used),
		TotalSwap:       gigabytes(swap.Total),
		SwapUsed:        gigabytes(swap.Used),
	}
}

func gigabytes(bytes uint64) string {
	return fmt.Sprintf("%.2f GB", float64(bytes)/(1024*1024*1024))
}
