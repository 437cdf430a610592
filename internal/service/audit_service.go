package service

import (
	"context"

	"go-clinic-scheduler/internal/domain/entity"
	"go-clinic-scheduler/internal/domain/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type AuditService interface {
	// Log writes an audit entry on db. Callers write it after their own transaction commits.
	Log(ctx context.Context, db *gorm.DB, actor, action, title string, metadata entity.JSON) error
	// LogError records a failure. Title and message are truncated to fit their columns.
	LogError(ctx context.Context, tx *gorm.DB, actor, action, title, message string, metadata entity.JSON) error
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) Log(ctx context.Context, tx *gorm.DB, actor, action, title string, metadata entity.JSON) error {
	auditLog := &entity.AuditLog{
		Actor:    actor,
		Action:   action,
		Title:    entity.Truncate(title, entity.MaxErrorTitleLength),
		Metadata: metadata,
	}

	if err := s.auditRepo.Create(tx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	return nil
}

func (s *auditService) LogError(ctx context.Context, tx *gorm.DB, actor, action, title, message string, metadata entity.JSON) error {
	limit := entity.MaxErrorMessageLength
	if action == entity.AuditActionGenerateFailed {
		limit = entity.MaxTracebackLength
	}

	if metadata == nil {
		metadata = entity.JSON{}
	}
	metadata["error"] = entity.Truncate(message, limit)

	return s.Log(ctx, tx, actor, action, title, metadata)
}
