package tests

import (
	"testing"

	"github.com/Atri9Ghosh/thinkplus/backend/models"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTest(courseID uint) map[string]interface{} {
	return map[string]interface{}{
		"course_id":     courseID,
		"title":         "Mock Test 1",
		"description":   "Sectional mock",
		"duration":      60,
		"passing_marks": 2,
		"questions": []map[string]interface{}{
			{"question": "2+2?", "options": []string{"3", "4", "5"}, "correct_answer": 1},
			{"question": "Capital of France?", "options": []string{"Paris", "Lyon"}, "correct_answer": 0, "marks": 2},
		},
	}
}

func createTestViaAPI(t *testing.T, body map[string]interface{}) uint {
	t.Helper()

	resp, result := doRequest(t, "POST", "/api/tests", adminToken, body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, "create test: %v", result)

	test := result["test"].(map[string]interface{})
	return uint(test["ID"].(float64))
}

func TestCreateTestRequiresAdmin(t *testing.T) {
	resp, _ := doRequest(t, "POST", "/api/tests", studentToken, sampleTest(0))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestCreateTestDefaultsTotalMarks(t *testing.T) {
	courseID := createCourseViaAPI(t, sampleCourse("Marks Course"))
	testID := createTestViaAPI(t, sampleTest(courseID))

	var test models.Test
	require.NoError(t, db.First(&test, testID).Error)
	// 1 (default) + 2
	assert.Equal(t, 3, test.TotalMarks)
}

func TestCreateTestRejectsBadAnswerIndex(t *testing.T) {
	body := sampleTest(0)
	body["questions"] = []map[string]interface{}{
		{"question": "q", "options": []string{"a", "b"}, "correct_answer": 5},
	}
	resp, _ := doRequest(t, "POST", "/api/tests", adminToken, body)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestGetTestHidesAnswerKey(t *testing.T) {
	courseID := createCourseViaAPI(t, sampleCourse("Answer Key Course"))
	testID := createTestViaAPI(t, sampleTest(courseID))

	resp, result := doRequest(t, "GET", "/api/tests/"+itoa(testID), studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	test := result["test"].(map[string]interface{})
	questions := test["questions"].([]interface{})
	require.Len(t, questions, 2)
	for _, q := range questions {
		question := q.(map[string]interface{})
		assert.NotContains(t, question, "correct_answer")
		assert.NotContains(t, question, "explanation")
		assert.NotEmpty(t, question["options"])
	}
}

func TestGetCourseTestsListsActiveOnly(t *testing.T) {
	courseID := createCourseViaAPI(t, sampleCourse("Active Tests Course"))
	createTestViaAPI(t, sampleTest(courseID))

	inactive := sampleTest(courseID)
	inactive["title"] = "Retired Mock"
	inactive["is_active"] = false
	createTestViaAPI(t, inactive)

	resp, result := doRequest(t, "GET", "/api/tests/course/"+itoa(courseID), studentToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	tests := result["tests"].([]interface{})
	require.Len(t, tests, 1)
	listed := tests[0].(map[string]interface{})
	assert.Equal(t, "Mock Test 1", listed["title"])
	assert.NotContains(t, listed, "questions")
}

func TestSubmitTestFlow(t *testing.T) {
	courseID := createCourseViaAPI(t, sampleCourse("Submission Course"))
	testID := createTestViaAPI(t, sampleTest(courseID))
	user, token := newStudent(t, "ext-submit-1")
	enroll(t, token, courseID)

	resp, result := doRequest(t, "POST", "/api/tests/"+itoa(testID)+"/submit", token,
		map[string]interface{}{"answers": []int{1, 0}, "time_taken": 1200})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	assert.EqualValues(t, 3, result["score"])
	assert.EqualValues(t, 3, result["total_marks"])
	assert.EqualValues(t, 100, result["percentage"])
	assert.Equal(t, true, result["passed"])
	assert.Len(t, result["answers"].([]interface{}), 2)

	// The score is mirrored into the course progress ledger.
	var progress models.Progress
	require.NoError(t, db.Preload("QuizScores").
		Where("user_id = ? AND course_id = ?", user.ID, courseID).
		First(&progress).Error)
	require.Len(t, progress.QuizScores, 1)
	assert.Equal(t, 3, progress.QuizScores[0].Score)
	assert.EqualValues(t, testID, progress.QuizScores[0].QuizID)

	// A failing retake still records an attempt.
	resp, result = doRequest(t, "POST", "/api/tests/"+itoa(testID)+"/submit", token,
		map[string]interface{}{"answers": []int{0, 1}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, result["score"])
	assert.Equal(t, false, result["passed"])

	var attempts int64
	db.Model(&models.Attempt{}).Where("test_id = ? AND user_id = ?", testID, user.ID).Count(&attempts)
	assert.EqualValues(t, 2, attempts)
}

func TestSubmitUnknownTest(t *testing.T) {
	resp, _ := doRequest(t, "POST", "/api/tests/999999/submit", studentToken,
		map[string]interface{}{"answers": []int{0}})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetTestResults(t *testing.T) {
	courseID := createCourseViaAPI(t, sampleCourse("Results Course"))
	testID := createTestViaAPI(t, sampleTest(courseID))
	user, token := newStudent(t, "ext-results-1")
	enroll(t, token, courseID)

	resp, _ := doRequest(t, "POST", "/api/tests/"+itoa(testID)+"/submit", token,
		map[string]interface{}{"answers": []int{1, 0}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, result := doRequest(t, "GET", "/api/tests/results/"+itoa(user.ID)+"/"+itoa(testID), token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	attempt := result["attempt"].(map[string]interface{})
	assert.EqualValues(t, 3, attempt["score"])

	test := result["test"].(map[string]interface{})
	assert.Equal(t, "Mock Test 1", test["title"])
	for _, q := range test["questions"].([]interface{}) {
		assert.NotContains(t, q.(map[string]interface{}), "correct_answer")
	}

	// No attempt yet for another user.
	other, otherToken := newStudent(t, "ext-results-2")
	resp, _ = doRequest(t, "GET", "/api/tests/results/"+itoa(other.ID)+"/"+itoa(testID), otherToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetTestAnalytics(t *testing.T) {
	courseID := createCourseViaAPI(t, sampleCourse("Analytics Course"))
	testID := createTestViaAPI(t, sampleTest(courseID))

	// Admin gate.
	resp, _ := doRequest(t, "GET", "/api/tests/analytics/"+itoa(testID), studentToken, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, result := doRequest(t, "GET", "/api/tests/analytics/"+itoa(testID), adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, result["total_attempts"])
	assert.EqualValues(t, 0, result["average_score"])

	_, tokenA := newStudent(t, "ext-analytics-a")
	_, tokenB := newStudent(t, "ext-analytics-b")
	doRequest(t, "POST", "/api/tests/"+itoa(testID)+"/submit", tokenA,
		map[string]interface{}{"answers": []int{1, 0}})
	doRequest(t, "POST", "/api/tests/"+itoa(testID)+"/submit", tokenB,
		map[string]interface{}{"answers": []int{0, 1}})

	resp, result = doRequest(t, "GET", "/api/tests/analytics/"+itoa(testID), adminToken, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 2, result["total_attempts"])
	assert.EqualValues(t, 1.5, result["average_score"])
	assert.EqualValues(t, 1, result["pass_count"])
	assert.EqualValues(t, 50, result["pass_rate"])
}

func TestUpdateTestReplacesQuestions(t *testing.T) {
	courseID := createCourseViaAPI(t, sampleCourse("Rewrite Course"))
	testID := createTestViaAPI(t, sampleTest(courseID))

	resp, _ := doRequest(t, "PUT", "/api/tests/"+itoa(testID), adminToken, map[string]interface{}{
		"title": "Mock Test 1 (revised)",
		"questions": []map[string]interface{}{
			{"question": "Only question now", "options": []string{"a", "b"}, "correct_answer": 1},
		},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var questions int64
	db.Model(&models.Question{}).Where("test_id = ?", testID).Count(&questions)
	assert.EqualValues(t, 1, questions)

	var test models.Test
	require.NoError(t, db.First(&test, testID).Error)
	assert.Equal(t, "Mock Test 1 (revised)", test.Title)
}

func TestUpdateTestValidatesReplacementQuestions(t *testing.T) {
	courseID := createCourseViaAPI(t, sampleCourse("Strict Rewrite Course"))
	testID := createTestViaAPI(t, sampleTest(courseID))

	// An answer index outside the option list is rejected on update just
	// as it is on creation.
	resp, _ := doRequest(t, "PUT", "/api/tests/"+itoa(testID), adminToken, map[string]interface{}{
		"questions": []map[string]interface{}{
			{"question": "q", "options": []string{"a", "b"}, "correct_answer": 5},
		},
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = doRequest(t, "PUT", "/api/tests/"+itoa(testID), adminToken, map[string]interface{}{
		"questions": []map[string]interface{}{
			{"question": "q", "options": []string{"only one"}, "correct_answer": 0},
		},
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	// A rejected rewrite leaves the stored questions untouched.
	var questions int64
	db.Model(&models.Question{}).Where("test_id = ?", testID).Count(&questions)
	assert.EqualValues(t, 2, questions)

	// A valid rewrite without explicit total_marks recomputes the sum.
	resp, _ = doRequest(t, "PUT", "/api/tests/"+itoa(testID), adminToken, map[string]interface{}{
		"questions": []map[string]interface{}{
			{"question": "q1", "options": []string{"a", "b"}, "correct_answer": 0, "marks": 4},
			{"question": "q2", "options": []string{"a", "b"}, "correct_answer": 1},
		},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var test models.Test
	require.NoError(t, db.First(&test, testID).Error)
	assert.Equal(t, 5, test.TotalMarks)
}

func TestDeleteTest(t *testing.T) {
	courseID := createCourseViaAPI(t, sampleCourse("Delete Test Course"))
	testID := createTestViaAPI(t, sampleTest(courseID))

	resp, _ := doRequest(t, "DELETE", "/api/tests/"+itoa(testID), adminToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doRequest(t, "GET", "/api/tests/"+itoa(testID), studentToken, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
