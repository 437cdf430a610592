package usecase

import (
	"context"
	"errors"
	"fmt"

	"go-clinic-scheduler/internal/delivery/dto"
	"go-clinic-scheduler/internal/domain/entity"
	"go-clinic-scheduler/internal/domain/repository"
	"go-clinic-scheduler/internal/infrastructure/database"
	"go-clinic-scheduler/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// DefaultBatchSize is how many doctors are processed between progress log lines.
const DefaultBatchSize = 10

type GenerateParams struct {
	Window        entity.GenerationWindow
	SkipProcessed bool
	BatchSize     int
	Actor         string
}

type SlotGenerationUsecase interface {
	// Generate fills every doctor's schedule for the window. Per-doctor failures are
	// reported in the summary; only a failure to load the doctor list is returned as an error.
	Generate(ctx context.Context, params GenerateParams) (*dto.GenerationSummary, error)
}

type slotGenerationUsecase struct {
	tx           database.TxManager
	log          *logrus.Logger
	doctorRepo   repository.DoctorRepository
	slotRepo     repository.ScheduleSlotRepository
	auditService service.AuditService
}

func NewSlotGenerationUsecase(
	tx database.TxManager,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	slotRepo repository.ScheduleSlotRepository,
	auditService service.AuditService,
) SlotGenerationUsecase {
	return &slotGenerationUsecase{
		tx:           tx,
		log:          log,
		doctorRepo:   doctorRepo,
		slotRepo:     slotRepo,
		auditService: auditService,
	}
}

func (u *slotGenerationUsecase) Generate(ctx context.Context, params GenerateParams) (*dto.GenerationSummary, error) {
	window := params.Window
	batchSize := params.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	doctors, err := u.doctorRepo.FindAll(u.tx.Conn(ctx))
	if err != nil {
		u.log.Errorf("Failed to load doctors for schedule generation: %+v", err)
		u.recordFailure(ctx, params.Actor, "Schedule generation failed", fmt.Sprintf("load doctors: %+v", err), nil)
		return nil, fmt.Errorf("load doctors: %w", err)
	}

	summary := &dto.GenerationSummary{
		WindowStart: entity.FormatDate(window.Start),
		WindowEnd:   entity.FormatDate(window.End),
		Errors:      []dto.DoctorGenerationError{},
	}

	if params.SkipProcessed {
		remaining := make([]entity.Doctor, 0, len(doctors))
		for _, doctor := range doctors {
			if doctor.GeneratedFrom(window.Start) {
				summary.DoctorsSkipped++
				continue
			}
			remaining = append(remaining, doctor)
		}
		u.log.Infof("Skipping already processed doctors. Remaining: %d", len(remaining))
		doctors = remaining
	}

	summary.DoctorsTotal = len(doctors)
	if len(doctors) == 0 {
		u.log.Warn("No doctors found for schedule generation")
		return summary, nil
	}

	u.log.Infof("Processing %d doctors for window %s (%d days)", len(doctors), window, window.Days())

	for idx := range doctors {
		doctor := &doctors[idx]
		entry := u.log.WithFields(logrus.Fields{
			"doctor":   doctor.FullName,
			"progress": fmt.Sprintf("%d/%d", idx+1, len(doctors)),
		})

		if err := ctx.Err(); err != nil {
			u.log.Warnf("Schedule generation interrupted after %d doctors: %+v", idx, err)
			return summary, fmt.Errorf("generation interrupted: %w", err)
		}

		if err := doctor.ValidateAvailability(); err != nil {
			entry.Infof("Skipping doctor: %v", err)
			summary.DoctorsSkipped++
			continue
		}

		added, err := u.generateForDoctor(ctx, doctor, window)
		if err != nil {
			message := entity.Truncate(err.Error(), entity.MaxErrorMessageLength)
			entry.Errorf("Error processing doctor: %s", message)
			summary.Errors = append(summary.Errors, dto.DoctorGenerationError{
				DoctorID: doctor.ID,
				Doctor:   doctor.FullName,
				Error:    message,
			})
			u.recordFailure(ctx, params.Actor, "Error for "+doctor.FullName, message, entity.JSON{
				"doctor_id": doctor.ID.String(),
				"window":    window.String(),
			})
			continue
		}

		summary.DoctorsProcessed++
		summary.SlotsAdded += added
		if added > 0 {
			entry.Infof("Added %d slots", added)
		} else {
			entry.Info("No new slots (already exist)")
		}

		if (idx+1)%batchSize == 0 {
			u.log.Infof("Progress: processed %d/%d doctors, %d slots added so far", idx+1, len(doctors), summary.SlotsAdded)
		}
	}

	u.log.Infof("Schedule generation completed. Processed %d doctors, total slots added: %d", summary.DoctorsProcessed, summary.SlotsAdded)

	if err := u.auditService.Log(ctx, u.tx.Conn(ctx), params.Actor, entity.AuditActionGenerate, "Schedule generation completed", entity.JSON{
		"window_start":      summary.WindowStart,
		"window_end":        summary.WindowEnd,
		"doctors_processed": summary.DoctorsProcessed,
		"doctors_skipped":   summary.DoctorsSkipped,
		"slots_added":       summary.SlotsAdded,
		"errors":            len(summary.Errors),
	}); err != nil {
		u.log.Warnf("Failed to record generation audit log: %+v", err)
	}

	return summary, nil
}

// generateForDoctor stages the missing slots for one doctor and persists them together with the
// window bookkeeping in a single transaction. Nothing is kept if any step fails.
func (u *slotGenerationUsecase) generateForDoctor(ctx context.Context, doctor *entity.Doctor, window entity.GenerationWindow) (int, error) {
	var added int

	err := u.tx.WithinTransaction(ctx, func(tx *gorm.DB) error {
		keys, err := u.slotRepo.FindKeysInRange(tx, doctor.ID, window.Start, window.End)
		if err != nil {
			return fmt.Errorf("load existing slots: %w", err)
		}

		existing := make(map[entity.SlotKey]struct{}, len(keys))
		for _, key := range keys {
			existing[key] = struct{}{}
		}

		slots, err := PlanSlots(doctor, window, existing)
		if err != nil {
			return err
		}

		if len(slots) > 0 {
			inserted, err := u.slotRepo.CreateBatch(tx, slots)
			if err != nil {
				return fmt.Errorf("insert slots: %w", err)
			}
			added = int(inserted)
		}

		if len(slots) > 0 || !doctor.HasWindow(window) {
			if err := u.doctorRepo.UpdateWindow(tx, doctor.ID, window.Start, window.End); err != nil {
				return fmt.Errorf("update window: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	start, end := window.Start, window.End
	doctor.FromDate, doctor.ToDate = &start, &end
	return added, nil
}

// recordFailure writes an error entry outside any doctor transaction, so it survives the rollback.
func (u *slotGenerationUsecase) recordFailure(ctx context.Context, actor, title, message string, metadata entity.JSON) {
	action := entity.AuditActionGenerateDoctorErr
	if metadata == nil {
		action = entity.AuditActionGenerateFailed
	}
	if err := u.auditService.LogError(ctx, u.tx.Conn(ctx), actor, action, title, message, metadata); err != nil {
		u.log.Errorf("Failed to record generation error (%s): %s", title, entity.Truncate(message, 200))
	}
}

// PlanSlots enumerates every (date, slot, mode) in the window the doctor is available for
// and returns those whose key is not in existing. Slots are ordered by date, slot time, mode.
// Staged keys are added to existing.
func PlanSlots(doctor *entity.Doctor, window entity.GenerationWindow, existing map[entity.SlotKey]struct{}) ([]entity.ScheduleSlot, error) {
	from, to, err := doctor.SlotRange()
	if err != nil {
		return nil, err
	}
	enabled := doctor.EnabledDays()
	if len(enabled) == 0 {
		return nil, entity.ErrNoEnabledDays
	}
	if doctor.PatientsPerSlot < 0 {
		return nil, errors.New("patients_per_slot must not be negative")
	}
	if existing == nil {
		existing = make(map[entity.SlotKey]struct{})
	}

	var slots []entity.ScheduleSlot
	for _, date := range window.Dates() {
		day := entity.WeekdayOf(date)
		if !enabled[day] {
			continue
		}
		dateKey := entity.FormatDate(date)

		for i := from; i <= to; i++ {
			slotTime := entity.AllSlotTimes[i]
			for _, mode := range entity.GeneratedModes {
				key := entity.SlotKey{Date: dateKey, Slot: slotTime, Mode: mode}
				if _, ok := existing[key]; ok {
					continue
				}
				// Guards against a key being staged twice within one run.
				existing[key] = struct{}{}

				slots = append(slots, entity.ScheduleSlot{
					ID:       uuid.New(),
					DoctorID: doctor.ID,
					Date:     date,
					Day:      day,
					Slot:     slotTime,
					Mode:     mode,
					Patients: doctor.PatientsPerSlot,
				})
			}
		}
	}
	return slots, nil
}
