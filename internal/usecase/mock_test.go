package usecase

import (
	"context"
	"errors"
	"io"
	"regexp"
	"sort"
	"time"

	"go-clinic-scheduler/internal/domain/entity"
	"go-clinic-scheduler/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// memStore backs the mock repositories. The fake transaction manager snapshots it
// before each transaction and restores the snapshot when the transaction fails.
type memStore struct {
	doctors       map[uuid.UUID]entity.Doctor
	slots         []entity.ScheduleSlot
	consultations []entity.Consultation
	audits        []entity.AuditLog

	findAllErr     error
	createBatchErr map[uuid.UUID]error
	deleteErr      map[uuid.UUID]error
	auditErr       error

	// Like Postgres, a failed statement inside a transaction aborts it and the commit fails.
	inTx    bool
	aborted bool
}

func newMemStore() *memStore {
	return &memStore{
		doctors:        make(map[uuid.UUID]entity.Doctor),
		createBatchErr: make(map[uuid.UUID]error),
		deleteErr:      make(map[uuid.UUID]error),
	}
}

func (s *memStore) snapshot() *memStore {
	cp := *s
	cp.doctors = make(map[uuid.UUID]entity.Doctor, len(s.doctors))
	for id, d := range s.doctors {
		cp.doctors[id] = d
	}
	cp.slots = append([]entity.ScheduleSlot(nil), s.slots...)
	cp.consultations = append([]entity.Consultation(nil), s.consultations...)
	cp.audits = append([]entity.AuditLog(nil), s.audits...)
	return &cp
}

func (s *memStore) restore(snap *memStore) {
	s.doctors = snap.doctors
	s.slots = snap.slots
	s.consultations = snap.consultations
	s.audits = snap.audits
}

func (s *memStore) auditsWithAction(action string) []entity.AuditLog {
	var out []entity.AuditLog
	for _, a := range s.audits {
		if a.Action == action {
			out = append(out, a)
		}
	}
	return out
}

func (s *memStore) slotsOf(doctorID uuid.UUID) []entity.ScheduleSlot {
	var out []entity.ScheduleSlot
	for _, slot := range s.slots {
		if slot.DoctorID == doctorID {
			out = append(out, slot)
		}
	}
	return out
}

// fakeTx

type fakeTx struct {
	store *memStore
}

func (f *fakeTx) Conn(ctx context.Context) *gorm.DB {
	return nil
}

var errTxAborted = errors.New("current transaction is aborted")

func (f *fakeTx) WithinTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	snap := f.store.snapshot()
	f.store.inTx, f.store.aborted = true, false
	err := fn(nil)
	f.store.inTx = false
	if err == nil && f.store.aborted {
		err = errTxAborted
	}
	if err != nil {
		f.store.restore(snap)
		return err
	}
	return nil
}

// doctors

type mockDoctorRepo struct {
	store *memStore
}

func (r *mockDoctorRepo) Create(db *gorm.DB, doctor *entity.Doctor) error {
	for _, d := range r.store.doctors {
		if d.FullName == doctor.FullName {
			return errors.New("duplicate key value violates unique constraint")
		}
	}
	r.store.doctors[doctor.ID] = *doctor
	return nil
}

func (r *mockDoctorRepo) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Doctor, error) {
	d, ok := r.store.doctors[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *mockDoctorRepo) FindAll(db *gorm.DB) ([]entity.Doctor, error) {
	if r.store.findAllErr != nil {
		return nil, r.store.findAllErr
	}
	doctors := make([]entity.Doctor, 0, len(r.store.doctors))
	for _, d := range r.store.doctors {
		doctors = append(doctors, d)
	}
	sort.Slice(doctors, func(i, j int) bool { return doctors[i].FullName < doctors[j].FullName })
	return doctors, nil
}

func (r *mockDoctorRepo) CountByNamePrefix(db *gorm.DB, fullName string) (int64, error) {
	variant := regexp.MustCompile(entity.NameVariantPattern(fullName))
	var n int64
	for _, d := range r.store.doctors {
		if d.FullName == fullName || variant.MatchString(d.FullName) {
			n++
		}
	}
	return n, nil
}

func (r *mockDoctorRepo) UpdateAvailability(db *gorm.DB, doctor *entity.Doctor) error {
	if _, ok := r.store.doctors[doctor.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.store.doctors[doctor.ID] = *doctor
	return nil
}

func (r *mockDoctorRepo) UpdateWindow(db *gorm.DB, doctorID uuid.UUID, fromDate, toDate time.Time) error {
	d, ok := r.store.doctors[doctorID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	d.FromDate, d.ToDate = &fromDate, &toDate
	r.store.doctors[doctorID] = d
	return nil
}

// slots

type mockSlotRepo struct {
	store *memStore
}

func (r *mockSlotRepo) CreateBatch(db *gorm.DB, slots []entity.ScheduleSlot) (int64, error) {
	var inserted int64
	for _, slot := range slots {
		if err := r.store.createBatchErr[slot.DoctorID]; err != nil {
			return inserted, err
		}
		duplicate := false
		for _, existing := range r.store.slots {
			if existing.DoctorID == slot.DoctorID && existing.Key() == slot.Key() {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}
		r.store.slots = append(r.store.slots, slot)
		inserted++
	}
	return inserted, nil
}

func (r *mockSlotRepo) FindKeysInRange(db *gorm.DB, doctorID uuid.UUID, start, end time.Time) ([]entity.SlotKey, error) {
	var keys []entity.SlotKey
	for _, slot := range r.store.slotsOf(doctorID) {
		if !slot.Date.Before(start) && !slot.Date.After(end) {
			keys = append(keys, slot.Key())
		}
	}
	return keys, nil
}

func (r *mockSlotRepo) FindByFilter(db *gorm.DB, filter *entity.SlotFilter) ([]entity.ScheduleSlot, error) {
	var out []entity.ScheduleSlot
	for _, slot := range r.store.slotsOf(filter.DoctorID) {
		if filter.StartDate != nil && slot.Date.Before(*filter.StartDate) {
			continue
		}
		if filter.EndDate != nil && slot.Date.After(*filter.EndDate) {
			continue
		}
		out = append(out, slot)
	}
	return out, nil
}

func (r *mockSlotRepo) FindByDate(db *gorm.DB, date time.Time, center string) ([]entity.ScheduleSlot, error) {
	var out []entity.ScheduleSlot
	for _, slot := range r.store.slots {
		if !slot.Date.Equal(date) {
			continue
		}
		doctor := r.store.doctors[slot.DoctorID]
		if center != "" && doctor.Center != center {
			continue
		}
		slot.Doctor = &doctor
		out = append(out, slot)
	}
	return out, nil
}

func (r *mockSlotRepo) FindByIDs(db *gorm.DB, ids []uuid.UUID) ([]entity.ScheduleSlot, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []entity.ScheduleSlot
	for _, slot := range r.store.slots {
		if want[slot.ID] {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (r *mockSlotRepo) FindForBookingLocked(db *gorm.DB, key entity.CapacityKey) ([]entity.ScheduleSlot, error) {
	var out []entity.ScheduleSlot
	for _, slot := range r.store.slots {
		if slot.CapacityKey() == key {
			out = append(out, slot)
		}
	}
	return out, nil
}

func (r *mockSlotRepo) DeleteByDoctorAndIDs(db *gorm.DB, doctorID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if err := r.store.deleteErr[doctorID]; err != nil {
		return 0, err
	}
	drop := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	var deleted int64
	kept := r.store.slots[:0:0]
	for _, slot := range r.store.slots {
		if slot.DoctorID == doctorID && drop[slot.ID] {
			deleted++
			continue
		}
		kept = append(kept, slot)
	}
	r.store.slots = kept
	return deleted, nil
}

// consultations

type mockConsultationRepo struct {
	store *memStore
}

func (r *mockConsultationRepo) Create(db *gorm.DB, consultation *entity.Consultation) error {
	r.store.consultations = append(r.store.consultations, *consultation)
	return nil
}

func (r *mockConsultationRepo) CountFrom(db *gorm.DB, doctorID uuid.UUID, from time.Time) (map[entity.CapacityKey]int, error) {
	counts := make(map[entity.CapacityKey]int)
	for _, c := range r.store.consultations {
		if c.DoctorID == doctorID && !c.Date.Before(from) {
			counts[c.CapacityKey()]++
		}
	}
	return counts, nil
}

func (r *mockConsultationRepo) CountOnDate(db *gorm.DB, date time.Time) (map[entity.CapacityKey]int, error) {
	counts := make(map[entity.CapacityKey]int)
	for _, c := range r.store.consultations {
		if c.Date.Equal(date) {
			counts[c.CapacityKey()]++
		}
	}
	return counts, nil
}

func (r *mockConsultationRepo) CountForSlot(db *gorm.DB, key entity.CapacityKey) (int64, error) {
	var n int64
	for _, c := range r.store.consultations {
		if c.CapacityKey() == key {
			n++
		}
	}
	return n, nil
}

// audit logs

type mockAuditLogRepo struct {
	store *memStore
}

func (r *mockAuditLogRepo) Create(db *gorm.DB, log *entity.AuditLog) error {
	if r.store.auditErr != nil {
		if r.store.inTx {
			r.store.aborted = true
		}
		return r.store.auditErr
	}
	log.ID = int64(len(r.store.audits) + 1)
	r.store.audits = append(r.store.audits, *log)
	return nil
}

func (r *mockAuditLogRepo) FindAll(db *gorm.DB, filter *entity.AuditLogFilter) ([]entity.AuditLog, error) {
	var out []entity.AuditLog
	for i := len(r.store.audits) - 1; i >= 0; i-- {
		a := r.store.audits[i]
		if filter != nil && filter.Action != "" && a.Action != filter.Action {
			continue
		}
		out = append(out, a)
		if filter != nil && filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// fixture wires every usecase to one memStore.
type fixture struct {
	store        *memStore
	tx           *fakeTx
	log          *logrus.Logger
	doctors      *mockDoctorRepo
	slots        *mockSlotRepo
	consults     *mockConsultationRepo
	auditRepo    *mockAuditLogRepo
	auditService service.AuditService
}

func newFixture() *fixture {
	store := newMemStore()
	log := logrus.New()
	log.SetOutput(io.Discard)

	auditRepo := &mockAuditLogRepo{store: store}
	return &fixture{
		store:        store,
		tx:           &fakeTx{store: store},
		log:          log,
		doctors:      &mockDoctorRepo{store: store},
		slots:        &mockSlotRepo{store: store},
		consults:     &mockConsultationRepo{store: store},
		auditRepo:    auditRepo,
		auditService: service.NewAuditService(log, auditRepo),
	}
}

func (f *fixture) addDoctor(name, from, to string, patients int, days ...entity.Weekday) entity.Doctor {
	d := entity.Doctor{
		ID:              uuid.New(),
		FullName:        name,
		FromSlot:        from,
		ToSlot:          to,
		PatientsPerSlot: patients,
	}
	d.SetEnabledDays(days)
	f.store.doctors[d.ID] = d
	return d
}

func (f *fixture) addSlot(doctorID uuid.UUID, date string, slot entity.SlotTime, mode entity.AppointmentMode, patients int) entity.ScheduleSlot {
	d, _ := entity.ParseDate(date)
	s := entity.ScheduleSlot{
		ID:       uuid.New(),
		DoctorID: doctorID,
		Date:     d,
		Day:      entity.WeekdayOf(d),
		Slot:     slot,
		Mode:     mode,
		Patients: patients,
	}
	f.store.slots = append(f.store.slots, s)
	return s
}

func (f *fixture) addConsultation(doctorID uuid.UUID, date string, slot entity.SlotTime, mode entity.AppointmentMode) {
	d, _ := entity.ParseDate(date)
	f.store.consultations = append(f.store.consultations, entity.Consultation{
		ID:       uuid.New(),
		DoctorID: doctorID,
		Patient:  "patient-" + uuid.NewString()[:8],
		Date:     d,
		Slot:     slot,
		Mode:     mode,
		Status:   entity.ConsultationStatusScheduled,
	})
}

func mustWindow(start, end string) entity.GenerationWindow {
	s, _ := entity.ParseDate(start)
	e, _ := entity.ParseDate(end)
	w, err := entity.NewWindow(s, e)
	if err != nil {
		panic(err)
	}
	return w
}
