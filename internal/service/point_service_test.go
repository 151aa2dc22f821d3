package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/uniact/activity-api/internal/models"
)

func timePtr(t time.Time) *time.Time { return &t }

func newPointFixture() (*fakeStore, models.Semester, models.Student) {
	store := newFakeStore()
	semester := store.addSemester(models.Semester{
		Name:      "2025 Spring",
		StartDate: time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
	})
	student := store.addStudent(models.Student{Code: "S001", Name: "An Nguyen", ClassID: 12})
	return store, semester, student
}

func attend(store *fakeStore, student models.Student, activity models.Activity, pointType models.PointType, points int, registeredAt time.Time) models.ActivityRegistration {
	role := store.addRole(models.ActivityRole{
		ActivityID:    activity.ID,
		Name:          "Participant",
		PointsAwarded: points,
		PointType:     pointType,
	})
	return store.addRegistration(models.ActivityRegistration{
		StudentID:    student.ID,
		RoleID:       role.ID,
		Status:       models.RegistrationStatusAttended,
		RegisteredAt: registeredAt,
	})
}

func TestPointServiceTrainingSocialAsymmetry(t *testing.T) {
	store, semester, student := newPointFixture()

	// Training activity dated outside the queried semester.
	outside := store.addActivity(models.Activity{
		Title:      "Winter Camp",
		SemesterID: semester.ID,
		StartsAt:   timePtr(time.Date(2024, time.December, 10, 8, 0, 0, 0, time.UTC)),
		EndsAt:     timePtr(time.Date(2024, time.December, 10, 12, 0, 0, 0, time.UTC)),
	})
	attend(store, student, outside, models.PointTypeTraining, 10, time.Now().Add(-time.Hour))

	// Social activity dated anywhere still counts.
	social := store.addActivity(models.Activity{
		Title:      "Charity Run",
		SemesterID: semester.ID,
		StartsAt:   timePtr(time.Date(2024, time.November, 2, 6, 0, 0, 0, time.UTC)),
		EndsAt:     timePtr(time.Date(2024, time.November, 2, 10, 0, 0, 0, time.UTC)),
	})
	attend(store, student, social, models.PointTypeSocial, 4, time.Now())

	svc := NewPointService(store, &fakeStudentRepo{store}, &fakeSemesterRepo{store}, nil, time.Minute, testLogger())

	summary, err := svc.ComputeStudent(context.Background(), student.ID, &semester.ID)
	require.NoError(t, err)
	require.Equal(t, 0, summary.TotalTrainingPoints)
	require.Equal(t, 4, summary.TotalSocialPoints)
	require.Empty(t, summary.TrainingBreakdown)
	require.Len(t, summary.SocialBreakdown, 1)
}

func TestPointServiceExcludesActivitiesWithoutStart(t *testing.T) {
	store, semester, student := newPointFixture()

	unplanned := store.addActivity(models.Activity{Title: "TBD Workshop", SemesterID: semester.ID})
	attend(store, student, unplanned, models.PointTypeTraining, 7, time.Now())

	svc := NewPointService(store, &fakeStudentRepo{store}, &fakeSemesterRepo{store}, nil, time.Minute, testLogger())

	summary, err := svc.ComputeStudent(context.Background(), student.ID, &semester.ID)
	require.NoError(t, err)
	require.Equal(t, 0, summary.TotalTrainingPoints, "indeterminate start must be excluded, not counted as zero-dated")
	require.Empty(t, summary.TrainingBreakdown)
}

func TestPointServiceNoFilterKeepsAllTraining(t *testing.T) {
	store, semester, student := newPointFixture()

	outside := store.addActivity(models.Activity{
		Title:      "Winter Camp",
		SemesterID: semester.ID,
		StartsAt:   timePtr(time.Date(2024, time.December, 10, 8, 0, 0, 0, time.UTC)),
		EndsAt:     timePtr(time.Date(2024, time.December, 10, 12, 0, 0, 0, time.UTC)),
	})
	attend(store, student, outside, models.PointTypeTraining, 10, time.Now())

	svc := NewPointService(store, &fakeStudentRepo{store}, &fakeSemesterRepo{store}, nil, time.Minute, testLogger())

	summary, err := svc.ComputeStudent(context.Background(), student.ID, nil)
	require.NoError(t, err)
	require.Equal(t, 10, summary.TotalTrainingPoints)
	require.Nil(t, summary.SemesterID)
}

func TestPointServiceZeroRegistrationsIsNotAnError(t *testing.T) {
	store, semester, student := newPointFixture()

	svc := NewPointService(store, &fakeStudentRepo{store}, &fakeSemesterRepo{store}, nil, time.Minute, testLogger())

	summary, err := svc.ComputeStudent(context.Background(), student.ID, &semester.ID)
	require.NoError(t, err)
	require.Equal(t, 0, summary.TotalTrainingPoints)
	require.Equal(t, 0, summary.TotalSocialPoints)
	require.Empty(t, summary.TrainingBreakdown)
	require.Empty(t, summary.SocialBreakdown)
}

func TestPointServiceUnknownSemester(t *testing.T) {
	store, _, student := newPointFixture()

	svc := NewPointService(store, &fakeStudentRepo{store}, &fakeSemesterRepo{store}, nil, time.Minute, testLogger())

	missing := uint(999)
	_, err := svc.ComputeStudent(context.Background(), student.ID, &missing)
	require.ErrorIs(t, err, ErrSemesterNotFound)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPointServiceIdempotentReaggregation(t *testing.T) {
	store, semester, student := newPointFixture()

	inside := store.addActivity(models.Activity{
		Title:      "Orientation",
		SemesterID: semester.ID,
		StartsAt:   timePtr(time.Date(2025, time.March, 5, 8, 0, 0, 0, time.UTC)),
		EndsAt:     timePtr(time.Date(2025, time.March, 5, 11, 0, 0, 0, time.UTC)),
	})
	attend(store, student, inside, models.PointTypeTraining, 5, time.Now().Add(-2*time.Hour))
	attend(store, student, inside, models.PointTypeSocial, 3, time.Now())

	svc := NewPointService(store, &fakeStudentRepo{store}, &fakeSemesterRepo{store}, nil, time.Minute, testLogger())

	first, err := svc.ComputeStudent(context.Background(), student.ID, &semester.ID)
	require.NoError(t, err)
	second, err := svc.ComputeStudent(context.Background(), student.ID, &semester.ID)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestPointServiceBreakdownPreservesAttendanceOrder(t *testing.T) {
	store, semester, student := newPointFixture()

	base := time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)
	for i, title := range []string{"First", "Second", "Third"} {
		activity := store.addActivity(models.Activity{
			Title:      title,
			SemesterID: semester.ID,
			StartsAt:   timePtr(base.AddDate(0, 0, i)),
			EndsAt:     timePtr(base.AddDate(0, 0, i).Add(2 * time.Hour)),
		})
		attend(store, student, activity, models.PointTypeTraining, 2, base.Add(time.Duration(i)*time.Minute))
	}

	svc := NewPointService(store, &fakeStudentRepo{store}, &fakeSemesterRepo{store}, nil, time.Minute, testLogger())

	summary, err := svc.ComputeStudent(context.Background(), student.ID, &semester.ID)
	require.NoError(t, err)
	require.Len(t, summary.TrainingBreakdown, 3)
	require.Equal(t, "First", summary.TrainingBreakdown[0].ActivityTitle)
	require.Equal(t, "Second", summary.TrainingBreakdown[1].ActivityTitle)
	require.Equal(t, "Third", summary.TrainingBreakdown[2].ActivityTitle)
}

func TestPointServiceClassAggregationIsolatesFailures(t *testing.T) {
	store, semester, first := newPointFixture()
	second := store.addStudent(models.Student{Code: "S002", Name: "Binh Tran", ClassID: 12})
	broken := store.addStudent(models.Student{Code: "S003", Name: "Chi Le", ClassID: 12})
	store.listErr[broken.ID] = errors.New("connection reset")

	activity := store.addActivity(models.Activity{
		Title:      "Tree Planting",
		SemesterID: semester.ID,
		StartsAt:   timePtr(time.Date(2025, time.April, 1, 7, 0, 0, 0, time.UTC)),
		EndsAt:     timePtr(time.Date(2025, time.April, 1, 11, 0, 0, 0, time.UTC)),
	})
	attend(store, first, activity, models.PointTypeTraining, 6, time.Now())
	attend(store, second, activity, models.PointTypeSocial, 2, time.Now())

	svc := NewPointService(store, &fakeStudentRepo{store}, &fakeSemesterRepo{store}, nil, time.Minute, testLogger())

	response, err := svc.ComputeClass(context.Background(), 12, &semester.ID)
	require.NoError(t, err)
	require.Len(t, response.Students, 3)

	byCode := map[string]int{}
	for i, entry := range response.Students {
		byCode[entry.StudentCode] = i
	}

	require.NotNil(t, response.Students[byCode["S001"]].Summary)
	require.Equal(t, 6, response.Students[byCode["S001"]].Summary.TotalTrainingPoints)
	require.NotNil(t, response.Students[byCode["S002"]].Summary)
	require.Equal(t, 2, response.Students[byCode["S002"]].Summary.TotalSocialPoints)

	failed := response.Students[byCode["S003"]]
	require.Nil(t, failed.Summary)
	require.NotEmpty(t, failed.Error)
}

func TestPointServiceCachesSummaries(t *testing.T) {
	store, semester, student := newPointFixture()

	activity := store.addActivity(models.Activity{
		Title:      "Orientation",
		SemesterID: semester.ID,
		StartsAt:   timePtr(time.Date(2025, time.March, 5, 8, 0, 0, 0, time.UTC)),
		EndsAt:     timePtr(time.Date(2025, time.March, 5, 11, 0, 0, 0, time.UTC)),
	})
	attend(store, student, activity, models.PointTypeTraining, 5, time.Now())

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})

	svc := NewPointService(store, &fakeStudentRepo{store}, &fakeSemesterRepo{store}, client, time.Minute, testLogger())

	first, err := svc.ComputeStudent(context.Background(), student.ID, &semester.ID)
	require.NoError(t, err)
	require.Equal(t, 5, first.TotalTrainingPoints)

	// A new attendance is invisible until the TTL expires.
	attend(store, student, activity, models.PointTypeTraining, 9, time.Now())

	cached, err := svc.ComputeStudent(context.Background(), student.ID, &semester.ID)
	require.NoError(t, err)
	require.Equal(t, 5, cached.TotalTrainingPoints)

	server.FastForward(2 * time.Minute)

	fresh, err := svc.ComputeStudent(context.Background(), student.ID, &semester.ID)
	require.NoError(t, err)
	require.Equal(t, 14, fresh.TotalTrainingPoints)
}
