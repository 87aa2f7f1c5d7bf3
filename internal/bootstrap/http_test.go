package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/target/onboard-admin/config"
)

// fakeServer blocks in ListenAndServe until Shutdown is called.
type fakeServer struct {
	once        sync.Once
	stopped     chan struct{}
	listenErr   error
	shutdownErr error
	deadline    time.Time
}

func newFakeServer() *fakeServer { return &fakeServer{stopped: make(chan struct{})} }

func (f *fakeServer) ListenAndServe() error {
	if f.listenErr != nil {
		return f.listenErr
	}
	<-f.stopped
	return http.ErrServerClosed
}

func (f *fakeServer) Shutdown(ctx context.Context) error {
	f.deadline, _ = ctx.Deadline()
	f.once.Do(func() { close(f.stopped) })
	return f.shutdownErr
}

func TestNewHTTPServer_Defaults(t *testing.T) {
	srv := NewHTTPServer(&HTTPServerConfig{
		Config: &config.AppConfig{HTTP: config.HTTPConfig{ReadTimeout: 5 * time.Second, WriteTimeout: 7 * time.Second}},
		Logger: discardLogger(),
	})
	require.NotNil(t, srv)
	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, 5*time.Second, srv.ReadTimeout)
	assert.Equal(t, 7*time.Second, srv.WriteTimeout)

	assert.Nil(t, NewHTTPServer(nil))
}

func TestNewHTTPServer_ServesHealthAndHidesAuthRoutesWithoutAuth(t *testing.T) {
	svcs := NewServices(context.Background(), &ServiceDeps{
		Config: testAppConfig(config.RoleSourceDirectory),
		Logger: discardLogger(),
	})
	srv := NewHTTPServer(&HTTPServerConfig{Config: testAppConfig(config.RoleSourceDirectory), Services: svcs, Logger: discardLogger()})

	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/login", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "text/html")
	srv.Handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/sso/start?redirect_uri=%2F", w.Header().Get("Location"))
}

func TestRouterServices_CarriesGatePaths(t *testing.T) {
	cfg := testAppConfig(config.RoleSourceDirectory)
	svcs := NewServices(context.Background(), &ServiceDeps{Config: cfg, Logger: discardLogger()})

	rs := routerServices(svcs, cfg, discardLogger())

	assert.Equal(t, "/sso/start", rs.SignInPath)
	assert.Equal(t, "/no-access", rs.RestrictedPath)
	assert.Nil(t, rs.Auth)
}

func TestListenAndServe_ClosedIsSuccess(t *testing.T) {
	srv := newFakeServer()
	require.NoError(t, srv.Shutdown(context.Background()))
	assert.NoError(t, ListenAndServe(srv))

	boom := errors.New("address in use")
	assert.ErrorIs(t, ListenAndServe(&fakeServer{listenErr: boom}), boom)
}

func TestShutdownHTTPServer(t *testing.T) {
	assert.NoError(t, ShutdownHTTPServer(ShutdownConfig{}))

	srv := newFakeServer()
	before := time.Now()
	require.NoError(t, ShutdownHTTPServer(ShutdownConfig{Server: srv, Timeout: 3 * time.Second, Logger: discardLogger()}))
	assert.WithinDuration(t, before.Add(3*time.Second), srv.deadline, time.Second)

	failing := newFakeServer()
	failing.shutdownErr = context.DeadlineExceeded
	assert.ErrorIs(t, ShutdownHTTPServer(ShutdownConfig{Server: failing}), context.DeadlineExceeded)
}

func TestServe_StopsOnCancel(t *testing.T) {
	srv := newFakeServer()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- serve(ctx, srv, config.HTTPConfig{Addr: ":0"}, discardLogger()) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return after cancel")
	}
}

func TestServe_ListenFailureIsReturned(t *testing.T) {
	boom := errors.New("address in use")
	srv := &fakeServer{listenErr: boom, stopped: make(chan struct{})}

	err := serve(context.Background(), srv, config.HTTPConfig{}, discardLogger())
	assert.ErrorIs(t, err, boom)
}
