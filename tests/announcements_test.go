package tests

import (
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createAnnouncementViaAPI(t *testing.T, body map[string]interface{}) uint {
	t.Helper()

	resp, result := doRequest(t, "POST", "/api/announcements", adminToken, body)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, "create announcement: %v", result)

	announcement := result["announcement"].(map[string]interface{})
	return uint(announcement["ID"].(float64))
}

func announcementTitles(result map[string]interface{}) []string {
	items := result["announcements"].([]interface{})
	titles := make([]string, 0, len(items))
	for _, item := range items {
		titles = append(titles, item.(map[string]interface{})["title"].(string))
	}
	return titles
}

func TestCreateAnnouncementRequiresAdmin(t *testing.T) {
	body := map[string]interface{}{"title": "Nope", "content": "nope"}

	resp, _ := doRequest(t, "POST", "/api/announcements", studentToken, body)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp, _ = doRequest(t, "POST", "/api/announcements", "", body)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCreateAnnouncementDefaults(t *testing.T) {
	id := createAnnouncementViaAPI(t, map[string]interface{}{
		"title":   "Maintenance window",
		"content": "The portal will be down on Sunday night.",
	})

	resp, result := doRequest(t, "GET", "/api/announcements/"+itoa(id), "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	announcement := result["announcement"].(map[string]interface{})
	assert.Equal(t, "all", announcement["target_audience"])
	assert.Equal(t, "medium", announcement["priority"])
	assert.Equal(t, true, announcement["is_active"])
	assert.EqualValues(t, adminUser.ID, announcement["created_by"])
}

func TestCreateAnnouncementValidation(t *testing.T) {
	resp, _ := doRequest(t, "POST", "/api/announcements", adminToken, map[string]interface{}{
		"title": "Missing content",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)

	resp, _ = doRequest(t, "POST", "/api/announcements", adminToken, map[string]interface{}{
		"title":    "Bad priority",
		"content":  "x",
		"priority": "urgent",
	})
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestGetAnnouncementsFiltering(t *testing.T) {
	createAnnouncementViaAPI(t, map[string]interface{}{
		"title":    "Visible notice",
		"content":  "x",
		"priority": "high",
	})

	expired := time.Now().Add(-time.Hour)
	createAnnouncementViaAPI(t, map[string]interface{}{
		"title":      "Expired notice",
		"content":    "x",
		"expires_at": expired,
	})

	createAnnouncementViaAPI(t, map[string]interface{}{
		"title":     "Disabled notice",
		"content":   "x",
		"is_active": false,
	})

	createAnnouncementViaAPI(t, map[string]interface{}{
		"title":           "Instructor notice",
		"content":         "x",
		"target_audience": "instructors",
	})

	resp, result := doRequest(t, "GET", "/api/announcements/", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	titles := announcementTitles(result)
	assert.Contains(t, titles, "Visible notice")
	assert.NotContains(t, titles, "Expired notice")
	assert.NotContains(t, titles, "Disabled notice")

	// Audience filter keeps "all" plus the requested audience.
	resp, result = doRequest(t, "GET", "/api/announcements/?targetAudience=students", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	titles = announcementTitles(result)
	assert.Contains(t, titles, "Visible notice")
	assert.NotContains(t, titles, "Instructor notice")

	// High priority sorts before medium.
	require.NotEmpty(t, titles)
	assert.Equal(t, "Visible notice", titles[0])
}

func TestUpdateAnnouncement(t *testing.T) {
	id := createAnnouncementViaAPI(t, map[string]interface{}{
		"title":   "Old title",
		"content": "x",
	})

	resp, result := doRequest(t, "PUT", "/api/announcements/"+itoa(id), adminToken, map[string]interface{}{
		"title":    "New title",
		"priority": "high",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	announcement := result["announcement"].(map[string]interface{})
	assert.Equal(t, "New title", announcement["title"])
	assert.Equal(t, "high", announcement["priority"])
	assert.Equal(t, "x", announcement["content"])
}

func TestDeleteAnnouncement(t *testing.T) {
	id := createAnnouncementViaAPI(t, map[string]interface{}{
		"title":   "Doomed notice",
		"content": "x",
	})

	resp, _ := doRequest(t, "DELETE", "/api/announcements/"+itoa(id), adminToken, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doRequest(t, "GET", "/api/announcements/"+itoa(id), "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
