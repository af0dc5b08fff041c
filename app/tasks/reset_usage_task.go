package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CyberPrince-glitch/TechPlus/app/quota"
)

// ResetUsageTask applies the daily quota rollover. The ledger operation is
// idempotent, so scheduling it every tick is safe: it only touches keys whose
// usage day has actually passed.
type ResetUsageTask struct {
	Task
	ledger *quota.Ledger
}

func NewResetUsageTask(ledger *quota.Ledger) *ResetUsageTask {
	return &ResetUsageTask{
		Task:   NewTask(TaskTypeResetUsage, "quota"),
		ledger: ledger,
	}
}

func (t *ResetUsageTask) Execute(ctx context.Context) error {
	reset, err := t.ledger.ResetDaily(ctx)
	if err != nil {
		return fmt.Errorf("failed to reset daily usage: %w", err)
	}

	if reset > 0 {
		slog.Info("Task completed", "type", "ResetUsage", "keys_reset", reset)
	}

	return nil
}
