package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github-static-scout/internal/common"
	"github-static-scout/internal/domain"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// AnalysisRecord 表结构：一个仓库一行，仓库 updated_at 变化后视为过期
type AnalysisRecord struct {
	FullName      string    `gorm:"primaryKey;size:255"`
	RepoUpdatedAt time.Time `gorm:"index"`
	Snapshot      string    `gorm:"type:text"` // domain.AnalysisSnapshot 的 JSON
	Notified      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (AnalysisRecord) TableName() string { return "repo_analyses" }

// PostgresStore 实现了 port.AnalysisStore 接口
type PostgresStore struct {
	db *gorm.DB
}

// NewPostgresStore 初始化数据库连接并自动迁移表结构
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	// 1. 连接数据库
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "连接数据库失败", err)
	}

	// 2. 自动迁移
	if err := db.AutoMigrate(&AnalysisRecord{}); err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "数据库迁移失败", err)
	}

	return &PostgresStore{db: db}, nil
}

// Get 只返回与仓库当前 updated_at 一致的记录
func (s *PostgresStore) Get(ctx context.Context, fullName string, repoUpdatedAt time.Time) (*domain.AnalysisSnapshot, bool, error) {
	var rec AnalysisRecord
	err := s.db.WithContext(ctx).Where("full_name = ?", fullName).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, common.WrapError(common.ErrCodeDatabase, "查询分析缓存失败", err)
	}
	if !rec.RepoUpdatedAt.Equal(repoUpdatedAt) {
		return nil, false, nil
	}

	var snapshot domain.AnalysisSnapshot
	if err := json.Unmarshal([]byte(rec.Snapshot), &snapshot); err != nil {
		return nil, false, common.WrapError(common.ErrCodeDatabase, fmt.Sprintf("分析缓存 %s 已损坏", fullName), err)
	}
	return &snapshot, true, nil
}

// Save 保存或更新 (Upsert)，不会重置推送标记
func (s *PostgresStore) Save(ctx context.Context, fullName string, repoUpdatedAt time.Time, snapshot *domain.AnalysisSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return common.WrapError(common.ErrCodeInternal, "序列化分析结果失败", err)
	}

	rec := &AnalysisRecord{
		FullName:      fullName,
		RepoUpdatedAt: repoUpdatedAt,
		Snapshot:      string(data),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "full_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"repo_updated_at", "snapshot", "updated_at"}),
	}).Create(rec).Error
	if err != nil {
		return common.WrapError(common.ErrCodeDatabase, "保存分析缓存失败", err)
	}
	return nil
}

// MarkNotified 标记为已推送；返回 true 表示这是第一次标记
func (s *PostgresStore) MarkNotified(ctx context.Context, fullName string) (bool, error) {
	result := s.db.WithContext(ctx).Model(&AnalysisRecord{}).
		Where("full_name = ? AND notified = ?", fullName, false).
		Update("notified", true)
	if result.Error != nil {
		return false, common.WrapError(common.ErrCodeDatabase, "更新推送标记失败", result.Error)
	}
	return result.RowsAffected > 0, nil
}

// Close 关闭底层连接池
func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
