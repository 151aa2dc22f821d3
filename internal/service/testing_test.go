package service

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/uniact/activity-api/internal/models"
	"github.com/uniact/activity-api/internal/repository"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

// fakeStore is an in-memory stand-in for the persistence collaborator. It
// mirrors the repository's capacity and version semantics so service tests
// exercise the same invariants without a database.
type fakeStore struct {
	registrations map[uint]*models.ActivityRegistration
	roles         map[uint]*models.ActivityRole
	activities    map[uint]*models.Activity
	students      map[uint]*models.Student
	semesters     map[uint]*models.Semester
	blocks        []models.ClassScheduleBlock
	nextID        uint

	// listErr simulates a per-student read failure in class aggregation.
	listErr map[uint]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		registrations: map[uint]*models.ActivityRegistration{},
		roles:         map[uint]*models.ActivityRole{},
		activities:    map[uint]*models.Activity{},
		students:      map[uint]*models.Student{},
		semesters:     map[uint]*models.Semester{},
		listErr:       map[uint]error{},
	}
}

func (f *fakeStore) id() uint {
	f.nextID++
	return f.nextID
}

func (f *fakeStore) addSemester(semester models.Semester) models.Semester {
	if semester.ID == 0 {
		semester.ID = f.id()
	}
	f.semesters[semester.ID] = &semester
	return semester
}

func (f *fakeStore) addStudent(student models.Student) models.Student {
	if student.ID == 0 {
		student.ID = f.id()
	}
	f.students[student.ID] = &student
	return student
}

func (f *fakeStore) addActivity(activity models.Activity) models.Activity {
	if activity.ID == 0 {
		activity.ID = f.id()
	}
	f.activities[activity.ID] = &activity
	return activity
}

func (f *fakeStore) addRole(role models.ActivityRole) models.ActivityRole {
	if role.ID == 0 {
		role.ID = f.id()
	}
	f.roles[role.ID] = &role
	return role
}

func (f *fakeStore) addRegistration(registration models.ActivityRegistration) models.ActivityRegistration {
	if registration.ID == 0 {
		registration.ID = f.id()
	}
	f.registrations[registration.ID] = &registration
	return registration
}

// materialize attaches role, activity and student snapshots the way the GORM
// preloads do.
func (f *fakeStore) materialize(registration models.ActivityRegistration) models.ActivityRegistration {
	if role, ok := f.roles[registration.RoleID]; ok {
		registration.Role = *role
		if activity, ok := f.activities[role.ActivityID]; ok {
			registration.Role.Activity = *activity
		}
	}
	if student, ok := f.students[registration.StudentID]; ok {
		registration.Student = *student
	}
	return registration
}

func (f *fakeStore) sortedRegistrations() []models.ActivityRegistration {
	all := make([]models.ActivityRegistration, 0, len(f.registrations))
	for _, registration := range f.registrations {
		all = append(all, *registration)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].RegisteredAt.Equal(all[j].RegisteredAt) {
			return all[i].ID < all[j].ID
		}
		return all[i].RegisteredAt.Before(all[j].RegisteredAt)
	})
	return all
}

func (f *fakeStore) countActive(roleID uint) int64 {
	var count int64
	for _, registration := range f.registrations {
		if registration.RoleID == roleID && registration.Active() {
			count++
		}
	}
	return count
}

// RegistrationRepository

func (f *fakeStore) GetByID(_ context.Context, id uint) (models.ActivityRegistration, error) {
	registration, ok := f.registrations[id]
	if !ok {
		return models.ActivityRegistration{}, gorm.ErrRecordNotFound
	}
	return f.materialize(*registration), nil
}

func (f *fakeStore) List(_ context.Context, filter repository.RegistrationFilter) ([]models.ActivityRegistration, error) {
	result := []models.ActivityRegistration{}
	for _, registration := range f.sortedRegistrations() {
		if filter.StudentID != nil && registration.StudentID != *filter.StudentID {
			continue
		}
		if filter.RoleID != nil && registration.RoleID != *filter.RoleID {
			continue
		}
		result = append(result, f.materialize(registration))
	}
	return result, nil
}

func (f *fakeStore) ListAttendedByStudent(_ context.Context, studentID uint) ([]models.ActivityRegistration, error) {
	if err, ok := f.listErr[studentID]; ok {
		return nil, err
	}
	result := []models.ActivityRegistration{}
	for _, registration := range f.sortedRegistrations() {
		if registration.StudentID == studentID && registration.Status == models.RegistrationStatusAttended {
			result = append(result, f.materialize(registration))
		}
	}
	return result, nil
}

func (f *fakeStore) ListActiveByStudent(_ context.Context, studentID uint) ([]models.ActivityRegistration, error) {
	result := []models.ActivityRegistration{}
	for _, registration := range f.sortedRegistrations() {
		if registration.StudentID == studentID && registration.Active() {
			result = append(result, f.materialize(registration))
		}
	}
	return result, nil
}

func (f *fakeStore) FindByActivityAndCode(_ context.Context, activityID uint, studentCode string) (models.ActivityRegistration, error) {
	var student *models.Student
	for _, candidate := range f.students {
		if candidate.Code == studentCode {
			student = candidate
			break
		}
	}
	if student == nil {
		return models.ActivityRegistration{}, gorm.ErrRecordNotFound
	}

	var found *models.ActivityRegistration
	for _, registration := range f.registrations {
		role, ok := f.roles[registration.RoleID]
		if !ok || role.ActivityID != activityID || registration.StudentID != student.ID {
			continue
		}
		if found == nil || registration.ID > found.ID {
			found = registration
		}
	}
	if found == nil {
		return models.ActivityRegistration{}, gorm.ErrRecordNotFound
	}
	return f.materialize(*found), nil
}

func (f *fakeStore) CreateWithCapacity(_ context.Context, registration *models.ActivityRegistration) error {
	role, ok := f.roles[registration.RoleID]
	if !ok {
		return gorm.ErrRecordNotFound
	}

	for _, existing := range f.registrations {
		if existing.StudentID == registration.StudentID && existing.RoleID == registration.RoleID && existing.Active() {
			return repository.ErrDuplicateActive
		}
	}

	if role.MaxSlots != nil && f.countActive(registration.RoleID) >= int64(*role.MaxSlots) {
		return repository.ErrCapacityExceeded
	}

	registration.ID = f.id()
	stored := *registration
	f.registrations[stored.ID] = &stored
	return nil
}

func (f *fakeStore) UpdateStatus(_ context.Context, id uint, expectedVersion int, status string) (models.ActivityRegistration, error) {
	registration, ok := f.registrations[id]
	if !ok {
		return models.ActivityRegistration{}, gorm.ErrRecordNotFound
	}
	if registration.Version != expectedVersion {
		return models.ActivityRegistration{}, repository.ErrStaleVersion
	}

	if models.ActiveStatus(status) && !registration.Active() {
		role, ok := f.roles[registration.RoleID]
		if !ok {
			return models.ActivityRegistration{}, gorm.ErrRecordNotFound
		}
		if role.MaxSlots != nil && f.countActive(registration.RoleID) >= int64(*role.MaxSlots) {
			return models.ActivityRegistration{}, repository.ErrCapacityExceeded
		}
	}

	registration.Status = status
	registration.Version++
	return f.materialize(*registration), nil
}

func (f *fakeStore) CountActiveByRole(_ context.Context, roleID uint) (int64, error) {
	return f.countActive(roleID), nil
}

// fakeStudentRepo serves student reads from the store.
type fakeStudentRepo struct{ store *fakeStore }

func (f *fakeStudentRepo) GetByID(_ context.Context, id uint) (models.Student, error) {
	student, ok := f.store.students[id]
	if !ok {
		return models.Student{}, gorm.ErrRecordNotFound
	}
	return *student, nil
}

func (f *fakeStudentRepo) GetByCode(_ context.Context, code string) (models.Student, error) {
	for _, student := range f.store.students {
		if student.Code == code {
			return *student, nil
		}
	}
	return models.Student{}, gorm.ErrRecordNotFound
}

func (f *fakeStudentRepo) ListByClass(_ context.Context, classID uint) ([]models.Student, error) {
	result := []models.Student{}
	for _, student := range f.store.students {
		if student.ClassID == classID {
			result = append(result, *student)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result, nil
}

// fakeSemesterRepo serves semester reads from the store.
type fakeSemesterRepo struct{ store *fakeStore }

func (f *fakeSemesterRepo) GetByID(_ context.Context, id uint) (models.Semester, error) {
	semester, ok := f.store.semesters[id]
	if !ok {
		return models.Semester{}, gorm.ErrRecordNotFound
	}
	return *semester, nil
}

func (f *fakeSemesterRepo) List(_ context.Context) ([]models.Semester, error) {
	result := []models.Semester{}
	for _, semester := range f.store.semesters {
		result = append(result, *semester)
	}
	return result, nil
}

// fakeScheduleRepo serves timetable blocks from the store.
type fakeScheduleRepo struct{ store *fakeStore }

func (f *fakeScheduleRepo) ListByClassAndSemester(_ context.Context, classID, semesterID uint) ([]models.ClassScheduleBlock, error) {
	result := []models.ClassScheduleBlock{}
	for _, block := range f.store.blocks {
		if block.ClassID == classID && block.SemesterID == semesterID {
			result = append(result, block)
		}
	}
	return result, nil
}

// fakeActivityRepo serves activity reads and writes from the store.
type fakeActivityRepo struct{ store *fakeStore }

func (f *fakeActivityRepo) GetByID(_ context.Context, id uint) (models.Activity, error) {
	activity, ok := f.store.activities[id]
	if !ok {
		return models.Activity{}, gorm.ErrRecordNotFound
	}
	result := *activity
	for _, role := range f.store.roles {
		if role.ActivityID == id {
			result.Roles = append(result.Roles, *role)
		}
	}
	sort.Slice(result.Roles, func(i, j int) bool { return result.Roles[i].ID < result.Roles[j].ID })
	return result, nil
}

func (f *fakeActivityRepo) List(_ context.Context, filter repository.ActivityFilter) ([]models.Activity, error) {
	result := []models.Activity{}
	for _, activity := range f.store.activities {
		if filter.SemesterID != nil && activity.SemesterID != *filter.SemesterID {
			continue
		}
		if filter.OwnerID != nil && activity.OwnerID != *filter.OwnerID {
			continue
		}
		result = append(result, *activity)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeActivityRepo) Create(_ context.Context, activity *models.Activity) error {
	activity.ID = f.store.id()
	stored := *activity
	f.store.activities[stored.ID] = &stored
	return nil
}

func (f *fakeActivityRepo) Update(_ context.Context, activity *models.Activity) error {
	stored := *activity
	f.store.activities[stored.ID] = &stored
	return nil
}

// fakeRoleRepo serves role reads and capacity-guarded writes from the store.
type fakeRoleRepo struct{ store *fakeStore }

func (f *fakeRoleRepo) GetByID(_ context.Context, id uint) (models.ActivityRole, error) {
	role, ok := f.store.roles[id]
	if !ok {
		return models.ActivityRole{}, gorm.ErrRecordNotFound
	}
	result := *role
	if activity, ok := f.store.activities[role.ActivityID]; ok {
		result.Activity = *activity
	}
	return result, nil
}

func (f *fakeRoleRepo) ListByActivity(_ context.Context, activityID uint) ([]models.ActivityRole, error) {
	result := []models.ActivityRole{}
	for _, role := range f.store.roles {
		if role.ActivityID == activityID {
			result = append(result, *role)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (f *fakeRoleRepo) Create(_ context.Context, role *models.ActivityRole) error {
	role.ID = f.store.id()
	stored := *role
	f.store.roles[stored.ID] = &stored
	return nil
}

func (f *fakeRoleRepo) UpdateMaxSlots(_ context.Context, id uint, maxSlots *int) (models.ActivityRole, error) {
	role, ok := f.store.roles[id]
	if !ok {
		return models.ActivityRole{}, gorm.ErrRecordNotFound
	}
	if maxSlots != nil && int64(*maxSlots) < f.store.countActive(id) {
		return models.ActivityRole{}, repository.ErrCapacityExceeded
	}
	role.MaxSlots = maxSlots
	return *role, nil
}

func (f *fakeRoleRepo) Delete(_ context.Context, id uint) error {
	if _, ok := f.store.roles[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	if f.store.countActive(id) > 0 {
		return repository.ErrActiveRegistrations
	}
	delete(f.store.roles, id)
	return nil
}

// fakeAuditRecorder captures recorded audit entries.
type fakeAuditRecorder struct {
	entries []AuditEntry
	err     error
}

func (f *fakeAuditRecorder) Record(_ context.Context, entry AuditEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, entry)
	return nil
}
