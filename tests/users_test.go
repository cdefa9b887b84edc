package tests

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAndUpdateProfile(t *testing.T) {
	user, token := newStudent(t, "ext-profile-1")

	resp, result := doRequest(t, "GET", "/api/users/profile/"+user.ExternalID, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	profile := result["user"].(map[string]interface{})
	assert.Equal(t, user.Email, profile["email"])

	resp, result = doRequest(t, "PUT", "/api/users/profile/"+user.ExternalID, token, map[string]string{
		"name":         "Renamed Student",
		"phone_number": "+91 9000000000",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	profile = result["user"].(map[string]interface{})
	assert.Equal(t, "Renamed Student", profile["name"])
	assert.Equal(t, "+91 9000000000", profile["phone_number"])

	resp, _ = doRequest(t, "GET", "/api/users/profile/ext-missing", token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetDashboard(t *testing.T) {
	courseID := createCourseViaAPI(t, sampleCourse("Dashboard Course"))
	user, token := newStudent(t, "ext-dashboard-1")
	enroll(t, token, courseID)

	resp, _ := doRequest(t, "POST", progressURL(user.ID, courseID)+"/video-complete", token,
		map[string]string{"video_id": "vid-1"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, result := doRequest(t, "GET", "/api/users/"+itoa(user.ID)+"/dashboard", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	stats := result["stats"].(map[string]interface{})
	assert.EqualValues(t, 1, stats["total_courses"])
	assert.EqualValues(t, 50, stats["average_progress"])
	// Half of one course at ten hours per course.
	assert.EqualValues(t, 5, stats["total_study_hours"])
	assert.EqualValues(t, 0, stats["tests_attempted"])

	assert.Len(t, result["enrolled_courses"].([]interface{}), 1)
	assert.Len(t, result["progress"].([]interface{}), 1)
}

func TestGetUserProgressList(t *testing.T) {
	courseA := createCourseViaAPI(t, sampleCourse("Multi Progress A"))
	courseB := createCourseViaAPI(t, sampleCourse("Multi Progress B"))
	user, token := newStudent(t, "ext-multi-1")
	enroll(t, token, courseA)
	enroll(t, token, courseB)

	resp, result := doRequest(t, "GET", "/api/users/"+itoa(user.ID)+"/progress", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, result["progress"].([]interface{}), 2)
}

func TestGetAllUsersAdminOnly(t *testing.T) {
	resp, _ := doRequest(t, "GET", "/api/users/", studentToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, result := doRequest(t, "GET", "/api/users/?role=admin", adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	users := result["users"].([]interface{})
	require.NotEmpty(t, users)
	for _, u := range users {
		assert.Equal(t, "admin", u.(map[string]interface{})["role"])
	}
}

func TestUpdateUserRole(t *testing.T) {
	user, _ := newStudent(t, "ext-role-1")

	resp, result := doRequest(t, "PUT", "/api/users/"+itoa(user.ID)+"/role", adminToken,
		map[string]string{"role": "instructor"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "instructor", result["user"].(map[string]interface{})["role"])

	resp, _ = doRequest(t, "PUT", "/api/users/"+itoa(user.ID)+"/role", adminToken,
		map[string]string{"role": "superuser"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, "PUT", "/api/users/"+itoa(user.ID)+"/role", studentToken,
		map[string]string{"role": "admin"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
