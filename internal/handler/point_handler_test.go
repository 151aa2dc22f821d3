package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/uniact/activity-api/internal/dto"
	"github.com/uniact/activity-api/internal/handler"
	"github.com/uniact/activity-api/internal/service"
)

type mockPointService struct {
	lastStudentID  uint
	lastSemesterID *uint
	summary        dto.PointSummaryResponse
	classSummary   dto.ClassPointSummaryResponse
	err            error
}

func (m *mockPointService) ComputeStudent(_ context.Context, studentID uint, semesterID *uint) (dto.PointSummaryResponse, error) {
	m.lastStudentID = studentID
	m.lastSemesterID = semesterID
	if m.err != nil {
		return dto.PointSummaryResponse{}, m.err
	}
	return m.summary, nil
}

func (m *mockPointService) ComputeClass(_ context.Context, classID uint, semesterID *uint) (dto.ClassPointSummaryResponse, error) {
	m.lastSemesterID = semesterID
	if m.err != nil {
		return dto.ClassPointSummaryResponse{}, m.err
	}
	return m.classSummary, nil
}

func decodeResponse(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, target))
}

func newPointApp(svc service.PointService) *fiber.App {
	app := fiber.New()
	handler.NewPointHandler(svc, zerolog.New(io.Discard)).Register(app.Group("/api/v1/points"))
	return app
}

func TestPointHandler_StudentSummary(t *testing.T) {
	svc := &mockPointService{summary: dto.PointSummaryResponse{
		StudentID:           7,
		TotalTrainingPoints: 12,
		TotalSocialPoints:   4,
	}}
	app := newPointApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/points/students/7?semester_id=3", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var response struct {
		Success bool                     `json:"success"`
		Data    dto.PointSummaryResponse `json:"data"`
	}
	decodeResponse(t, resp, &response)

	require.True(t, response.Success)
	require.Equal(t, 12, response.Data.TotalTrainingPoints)
	require.Equal(t, uint(7), svc.lastStudentID)
	require.NotNil(t, svc.lastSemesterID)
	require.Equal(t, uint(3), *svc.lastSemesterID)
}

func TestPointHandler_OmittedSemesterPassesNil(t *testing.T) {
	svc := &mockPointService{}
	app := newPointApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/points/students/7", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Nil(t, svc.lastSemesterID)
}

func TestPointHandler_ServiceErrors(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		statusCode int
	}{
		{name: "unknown student", err: service.ErrStudentNotFound, statusCode: fiber.StatusNotFound},
		{name: "unknown semester", err: service.ErrSemesterNotFound, statusCode: fiber.StatusNotFound},
		{name: "generic", err: io.ErrUnexpectedEOF, statusCode: fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newPointApp(&mockPointService{err: tc.err})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/points/students/7", nil))
			require.NoError(t, err)
			require.Equal(t, tc.statusCode, resp.StatusCode)
		})
	}
}

func TestPointHandler_InvalidStudentID(t *testing.T) {
	app := newPointApp(&mockPointService{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/points/students/abc", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}
