package control

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDriver records the order of Start/Pause calls.
type fakeDriver struct {
	mu    sync.Mutex
	calls []string
}

func (d *fakeDriver) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "start")
}

func (d *fakeDriver) Pause() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, "pause")
}

func (d *fakeDriver) sequence() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.calls...)
}

// controlServer is a stub agent API that records hits and can fail on demand.
type controlServer struct {
	*httptest.Server
	mu         sync.Mutex
	hits       map[string]int
	failing    bool
	lastUpload struct {
		field    string
		filename string
		body     string
	}
}

func newControlServer(t *testing.T) *controlServer {
	t.Helper()
	cs := &controlServer{hits: make(map[string]int)}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		cs.hits[r.URL.Path]++

		if r.URL.Path == "/api/upload_env" {
			file, header, err := r.FormFile("file")
			if err == nil {
				data, _ := io.ReadAll(file)
				file.Close()
				cs.lastUpload.field = "file"
				cs.lastUpload.filename = header.Filename
				cs.lastUpload.body = string(data)
			}
		}

		if cs.failing {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(cs.Close)
	return cs
}

func (cs *controlServer) setFailing(failing bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.failing = failing
}

func (cs *controlServer) hitCount(path string) int {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	return cs.hits[path]
}

func clientFor(t *testing.T, cs *controlServer, driver Pauser) *Client {
	t.Helper()
	u, err := url.Parse(cs.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)
	return New(u.Hostname(), port, driver)
}

func TestClient_Reset(t *testing.T) {
	t.Run("pauses then posts", func(t *testing.T) {
		cs := newControlServer(t)
		driver := &fakeDriver{}
		c := clientFor(t, cs, driver)

		require.NoError(t, c.Reset(context.Background()))
		assert.Equal(t, 1, cs.hitCount("/api/reset"))
		assert.Equal(t, []string{"pause"}, driver.sequence())
	})

	t.Run("pauses even when the request fails", func(t *testing.T) {
		cs := newControlServer(t)
		cs.setFailing(true)
		driver := &fakeDriver{}
		c := clientFor(t, cs, driver)

		err := c.Reset(context.Background())
		require.Error(t, err)
		assert.Equal(t, []string{"pause"}, driver.sequence(),
			"a failed reset must still leave autoplay off")
	})
}

func TestClient_Start(t *testing.T) {
	t.Run("optimistic start sticks on success", func(t *testing.T) {
		cs := newControlServer(t)
		driver := &fakeDriver{}
		c := clientFor(t, cs, driver)

		require.NoError(t, c.Start(context.Background()))
		assert.Equal(t, []string{"start"}, driver.sequence())
	})

	t.Run("rolls back on failure", func(t *testing.T) {
		cs := newControlServer(t)
		cs.setFailing(true)
		driver := &fakeDriver{}
		c := clientFor(t, cs, driver)

		err := c.Start(context.Background())
		require.Error(t, err)
		assert.Equal(t, []string{"start", "pause"}, driver.sequence(),
			"a refused start must not leave a phantom running state")
	})
}

func TestClient_Step(t *testing.T) {
	cs := newControlServer(t)
	driver := &fakeDriver{}
	c := clientFor(t, cs, driver)

	require.NoError(t, c.Step(context.Background()))
	assert.Equal(t, 1, cs.hitCount("/api/step"))
	assert.Empty(t, driver.sequence(), "step never touches the autoplay state")

	cs.setFailing(true)
	err := c.Step(context.Background())
	require.Error(t, err)
	assert.Empty(t, driver.sequence())
}

func TestClient_UploadEnvironment(t *testing.T) {
	t.Run("multipart field and pause on success", func(t *testing.T) {
		cs := newControlServer(t)
		driver := &fakeDriver{}
		c := clientFor(t, cs, driver)

		err := c.UploadEnvironment(context.Background(), "cave.txt", strings.NewReader("4\nP . . G\n"))
		require.NoError(t, err)

		cs.mu.Lock()
		upload := cs.lastUpload
		cs.mu.Unlock()
		assert.Equal(t, "file", upload.field)
		assert.Equal(t, "cave.txt", upload.filename)
		assert.Equal(t, "4\nP . . G\n", upload.body)
		assert.Equal(t, []string{"pause"}, driver.sequence())
	})

	t.Run("pause on failure too", func(t *testing.T) {
		cs := newControlServer(t)
		cs.setFailing(true)
		driver := &fakeDriver{}
		c := clientFor(t, cs, driver)

		err := c.UploadEnvironment(context.Background(), "cave.txt", strings.NewReader("x"))
		require.Error(t, err)
		assert.Equal(t, []string{"pause"}, driver.sequence())
	})
}

func TestClient_NilDriverIsSafe(t *testing.T) {
	cs := newControlServer(t)
	c := clientFor(t, cs, nil)

	require.NoError(t, c.Reset(context.Background()))
	require.NoError(t, c.Start(context.Background()))
	require.NoError(t, c.Step(context.Background()))
}
