package schedule

import (
	"context"
	"time"

	"contract-kit/config"

	"github.com/jasonlvhit/gocron"
)

// Task 立即执行一次余额检查，然后每 MonitorMinutes 分钟执行一次，直到 ctx 结束
func Task(ctx context.Context, monitor *BalanceMonitor, conf config.ThresholdConfig) error {
	minutes := conf.MonitorMinutes
	if minutes == 0 {
		minutes = 30
	}

	monitor.Monitor()

	s := gocron.NewScheduler()
	s.ChangeLoc(time.UTC)
	if err := s.Every(minutes).Minutes().From(gocron.NextTick()).Do(monitor.Monitor); err != nil {
		return err
	}
	stopped := s.Start()
	<-ctx.Done()
	stopped <- true
	s.Clear()
	return nil
}
