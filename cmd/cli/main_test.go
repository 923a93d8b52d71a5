package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"charhub/pkg/models"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func fakeProxy(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("status") == "Dead" {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"message":"failed to fetch characters","error":"boom"}`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":1,"name":"Rick Sanchez","status":"Alive","species":"Human","gender":"Male"}]`))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRunFilter(t *testing.T) {
	server := fakeProxy(t)
	ctx := context.Background()
	app, closeFn, err := buildApp(ctx, options{baseURL: server.URL, ephemeral: true, timeout: time.Second}, quietLogger())
	require.NoError(t, err)
	defer closeFn()

	var out bytes.Buffer
	require.NoError(t, run(ctx, app, "filter", []string{"-status", "Alive"}, &out))
	assert.Contains(t, out.String(), "Rick Sanchez")

	out.Reset()
	require.Error(t, run(ctx, app, "filter", []string{"-status", "Dead"}, &out))
	assert.Contains(t, out.String(), "HTTP 500")
	assert.Len(t, app.View(), 1, "failed filter keeps the previous view")
}

func TestRunCreateUpdateListPersists(t *testing.T) {
	ctx := context.Background()
	opts := options{
		baseURL: "http://127.0.0.1:0",
		dbPath:  filepath.Join(t.TempDir(), "data.db"),
		timeout: time.Second,
	}

	app, closeFn, err := buildApp(ctx, opts, quietLogger())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, run(ctx, app, "update", []string{"-id", "2", "-name", "Morty Smith", "-status", "Dead", "-species", "Human", "-gender", "Male"}, &out))
	assert.Contains(t, out.String(), "character updated")

	out.Reset()
	require.NoError(t, run(ctx, app, "update", []string{"-id", "999", "-name", "Nobody"}, &out))
	assert.Contains(t, out.String(), "character not found")

	out.Reset()
	require.NoError(t, run(ctx, app, "create", []string{"-name", "Summer Smith", "-status", "Alive", "-species", "Human", "-gender", "Female"}, &out))
	assert.Contains(t, out.String(), "character created")
	closeFn()

	// reopen: seed plus edits survive, no reseeding
	app, closeFn, err = buildApp(ctx, opts, quietLogger())
	require.NoError(t, err)
	defer closeFn()

	out.Reset()
	require.NoError(t, run(ctx, app, "list", nil, &out))
	var list []models.Character
	require.NoError(t, json.Unmarshal(out.Bytes(), &list))
	require.Len(t, list, 3)
	assert.Equal(t, "Rick Sanchez", list[0].Name)
	assert.Equal(t, "Dead", list[1].Status)
	assert.Equal(t, "Summer Smith", list[2].Name)
}

func TestRunUnknownCommand(t *testing.T) {
	ctx := context.Background()
	app, closeFn, err := buildApp(ctx, options{ephemeral: true}, quietLogger())
	require.NoError(t, err)
	defer closeFn()

	var out bytes.Buffer
	require.Error(t, run(ctx, app, "delete", nil, &out))
	assert.Contains(t, out.String(), "commands:")
}

func TestBuildAppRejectsUnknownSource(t *testing.T) {
	_, _, err := buildApp(context.Background(), options{ephemeral: true, source: "cloud"}, quietLogger())
	require.Error(t, err)
}

func TestWebsocketURL(t *testing.T) {
	u, err := websocketURL("http://localhost:3000", "/ws")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:3000/ws", u)

	u, err = websocketURL("https://charhub.example", "/ws")
	require.NoError(t, err)
	assert.Equal(t, "wss://charhub.example/ws", u)
}
