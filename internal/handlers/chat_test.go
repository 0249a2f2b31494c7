package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/murmurchat/murmur/internal/database"
	"github.com/murmurchat/murmur/internal/middleware"
	"github.com/murmurchat/murmur/internal/models"
	ws "github.com/murmurchat/murmur/internal/websocket"
)

const testUserHeader = "X-Test-User"

// setupChatRouter собирает роуты чатов с подменой аутентификации:
// вызывающий передается заголовком вместо JWT
func setupChatRouter(d *database.Database) *gin.Engine {
	gin.SetMode(gin.TestMode)

	handler := NewChatHandler(d, ws.NewHub(nil))

	router := gin.New()
	router.Use(func(c *gin.Context) {
		userID, err := uuid.Parse(c.GetHeader(testUserHeader))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
			return
		}
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	})

	chats := router.Group("/chats")
	{
		chats.POST("", handler.CreateChat)
		chats.GET("", handler.GetMyChats)
		chats.GET("/:id", handler.GetChat)
		chats.PATCH("/:id", handler.UpdateChat)
		chats.DELETE("/:id", handler.DeleteChat)
		chats.GET("/:id/participants", handler.GetParticipants)
		chats.POST("/:id/participants", handler.AddParticipants)
		chats.DELETE("/:id/participants/:userId", handler.RemoveParticipant)
		chats.GET("/:id/messages", handler.GetChatMessages)
	}

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, caller uuid.UUID, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(testUserHeader, caller.String())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateDirectChat(t *testing.T) {
	d := newTestDatabase(t)
	router := setupChatRouter(d)

	a := createUser(t, d, "a")
	b := createUser(t, d, "b")

	w := doJSON(t, router, http.MethodPost, "/chats", a.ID, gin.H{
		"type":         models.ChatTypeDirect,
		"participants": []string{a.ID.String(), b.ID.String()},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Chat models.Chat `json:"chat"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, models.ChatTypeDirect, body.Chat.Type)
	require.Equal(t, a.ID.String()+"-"+b.ID.String(), body.Chat.Name)
	require.Nil(t, body.Chat.AdminID)
	require.Len(t, body.Chat.Participants, 2)
}

func TestCreateDirectChatRejectsBadShape(t *testing.T) {
	d := newTestDatabase(t)
	router := setupChatRouter(d)

	a := createUser(t, d, "a")
	b := createUser(t, d, "b")
	c := createUser(t, d, "c")

	cases := []struct {
		name string
		body gin.H
	}{
		{
			name: "three participants",
			body: gin.H{
				"type":         models.ChatTypeDirect,
				"participants": []string{a.ID.String(), b.ID.String(), c.ID.String()},
			},
		},
		{
			name: "explicit name",
			body: gin.H{
				"type":         models.ChatTypeDirect,
				"name":         "secret",
				"participants": []string{a.ID.String(), b.ID.String()},
			},
		},
		{
			name: "admin on direct",
			body: gin.H{
				"type":         models.ChatTypeDirect,
				"admin_id":     a.ID.String(),
				"participants": []string{a.ID.String(), b.ID.String()},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, router, http.MethodPost, "/chats", a.ID, tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestCreateGroupChatRequiresListedAdmin(t *testing.T) {
	d := newTestDatabase(t)
	router := setupChatRouter(d)

	a := createUser(t, d, "a")
	b := createUser(t, d, "b")
	c := createUser(t, d, "c")

	// Админ вне списка участников
	w := doJSON(t, router, http.MethodPost, "/chats", a.ID, gin.H{
		"type":         models.ChatTypeGroup,
		"name":         "team",
		"admin_id":     c.ID.String(),
		"participants": []string{a.ID.String(), b.ID.String()},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/chats", a.ID, gin.H{
		"type":         models.ChatTypeGroup,
		"name":         "team",
		"admin_id":     a.ID.String(),
		"participants": []string{a.ID.String(), b.ID.String(), c.ID.String()},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Chat models.Chat `json:"chat"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotNil(t, body.Chat.AdminID)
	require.Equal(t, a.ID, *body.Chat.AdminID)
}

func TestUpdateChatPermissions(t *testing.T) {
	d := newTestDatabase(t)
	router := setupChatRouter(d)

	a := createUser(t, d, "a")
	b := createUser(t, d, "b")
	group := createGroupChat(t, d, a, b)

	// Не-админ не может переименовать
	w := doJSON(t, router, http.MethodPatch, "/chats/"+group.ID.String(), b.ID, gin.H{"name": "renamed"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Админ может
	w = doJSON(t, router, http.MethodPatch, "/chats/"+group.ID.String(), a.ID, gin.H{"name": "renamed"})
	require.Equal(t, http.StatusOK, w.Code)

	chat, err := d.GetChat(group.ID)
	require.NoError(t, err)
	require.Equal(t, "renamed", chat.Name)
}

func TestUpdateDirectChatForbidden(t *testing.T) {
	d := newTestDatabase(t)
	router := setupChatRouter(d)

	a := createUser(t, d, "a")
	b := createUser(t, d, "b")

	chat := &models.Chat{Name: "a-b", Type: models.ChatTypeDirect}
	require.NoError(t, d.CreateChatWithParticipants(chat, []models.ChatParticipant{
		{UserID: a.ID, Role: models.RoleParticipant},
		{UserID: b.ID, Role: models.RoleParticipant},
	}))

	w := doJSON(t, router, http.MethodPatch, "/chats/"+chat.ID.String(), a.ID, gin.H{"name": "renamed"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestChatAccessRequiresMembership(t *testing.T) {
	d := newTestDatabase(t)
	router := setupChatRouter(d)

	a := createUser(t, d, "a")
	b := createUser(t, d, "b")
	outsider := createUser(t, d, "outsider")
	group := createGroupChat(t, d, a, b)

	paths := []string{
		"/chats/" + group.ID.String(),
		"/chats/" + group.ID.String() + "/participants",
		"/chats/" + group.ID.String() + "/messages",
	}
	for _, path := range paths {
		w := doJSON(t, router, http.MethodGet, path, outsider.ID, nil)
		require.Equal(t, http.StatusUnauthorized, w.Code, path)

		w = doJSON(t, router, http.MethodGet, path, b.ID, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestUnknownChatIsNotFound(t *testing.T) {
	d := newTestDatabase(t)
	router := setupChatRouter(d)

	a := createUser(t, d, "a")

	w := doJSON(t, router, http.MethodGet, "/chats/"+uuid.NewString(), a.ID, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "Chat not exists", body["message"])
}

func TestDeleteChatPermissions(t *testing.T) {
	d := newTestDatabase(t)
	router := setupChatRouter(d)

	a := createUser(t, d, "a")
	b := createUser(t, d, "b")
	group := createGroupChat(t, d, a, b)

	w := doJSON(t, router, http.MethodDelete, "/chats/"+group.ID.String(), b.ID, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/chats/"+group.ID.String(), a.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	_, err := d.GetChat(group.ID)
	require.Error(t, err)
}

func TestParticipantManagement(t *testing.T) {
	d := newTestDatabase(t)
	router := setupChatRouter(d)

	a := createUser(t, d, "a")
	b := createUser(t, d, "b")
	c := createUser(t, d, "c")
	group := createGroupChat(t, d, a, b)

	// Добавлять может только админ
	w := doJSON(t, router, http.MethodPost, "/chats/"+group.ID.String()+"/participants", b.ID, gin.H{
		"participant_ids": []string{c.ID.String()},
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/chats/"+group.ID.String()+"/participants", a.ID, gin.H{
		"participant_ids": []string{c.ID.String()},
	})
	require.Equal(t, http.StatusOK, w.Code)

	member, err := d.IsMember(group.ID, c.ID)
	require.NoError(t, err)
	require.True(t, member)

	w = doJSON(t, router, http.MethodDelete, "/chats/"+group.ID.String()+"/participants/"+c.ID.String(), a.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	member, err = d.IsMember(group.ID, c.ID)
	require.NoError(t, err)
	require.False(t, member)
}
