package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tdiessongo25/peakcrews-chat/internal/hub"
)

type healthzBody struct {
	Status string    `json:"status"`
	Hub    hub.Stats `json:"hub"`
}

func getHealthz(t *testing.T, router *gin.Engine) healthzBody {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body healthzBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := hub.NewHub(nil, nil, zap.NewNop())
	defer h.Stop()

	router := gin.New()
	router.GET("/healthz", NewStatusHandler(h).Healthz)

	// No connections yet: the relay reports itself idle.
	body := getHealthz(t, router)
	assert.Equal(t, "idle", body.Status)
	assert.Equal(t, 0, body.Hub.Connections)
	assert.Equal(t, 0, body.Hub.Rooms)

	// One live socket flips the status to healthy.
	srv := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial(strings.Replace(srv.URL, "http", "ws", 1), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool {
		return h.Stats().Connections == 1
	}, 2*time.Second, 10*time.Millisecond)

	body = getHealthz(t, router)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, 1, body.Hub.Connections)
}
