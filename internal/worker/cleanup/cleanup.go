// Package cleanup 은 관리자 감사 로그의 자동 삭제 잡을 제공한다.
// 보존 기간(기본 180일)을 초과한 admin_logs 문서를 일차 배치로 삭제한다.
// 세션은 MongoDB의 TTL 인덱스가 정리하므로 여기서 다루지 않는다.
package cleanup

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// LogPurger 는 보존 기간이 지난 감사 로그를 삭제하는 인터페이스.
// repository.AdminLogRepository의 부분집합으로 정의한다.
type LogPurger interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CleanupJob 은 보존 기간을 초과한 감사 로그의 자동 삭제 잡.
// 일차 실행의 배치 잡으로 설계되어 있으며 멱등하다.
type CleanupJob struct {
	logs          LogPurger
	logger        *slog.Logger
	RetentionDays int // 감사 로그의 보존 일수 (기본: 180)
}

// NewCleanupJob 은 새 CleanupJob을 생성한다.
// 기본 보존 일수는 180일.
func NewCleanupJob(logs LogPurger, logger *slog.Logger) *CleanupJob {
	return &CleanupJob{
		logs:          logs,
		logger:        logger,
		RetentionDays: 180,
	}
}

// Run 은 보존 기간을 초과한 감사 로그를 삭제한다.
// createdAt이 RetentionDays일 전보다 오래된 문서가 대상이다.
// 멱등: 삭제 대상이 없어도 에러가 되지 않는다.
func (j *CleanupJob) Run(ctx context.Context) error {
	start := time.Now()
	cutoff := start.AddDate(0, 0, -j.RetentionDays)

	deleted, err := j.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		j.logger.Error("audit log cleanup failed",
			slog.String("error", err.Error()),
			slog.Int("retention_days", j.RetentionDays),
		)
		return fmt.Errorf("failed to clean up audit logs: %w", err)
	}

	j.logger.Info("audit log cleanup completed",
		slog.Int64("deleted_count", deleted),
		slog.Int("retention_days", j.RetentionDays),
		slog.Float64("duration_ms", float64(time.Since(start).Milliseconds())),
	)
	return nil
}
