package cli

import (
	"bytes"
	"context"
	"io"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startServe runs the serve command in the background and returns its address.
func startServe(t *testing.T, dbPath string) (addr string, stop func() error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())

	ready := make(chan net.Addr, 1)
	opts := &ServeOptions{
		RootOptions: &RootOptions{Format: "text"},
		Address:     "127.0.0.1:0",
		Database:    dbPath,
		OnListen:    func(a net.Addr) { ready <- a },
	}
	cmd := &cobra.Command{}
	cmd.SetContext(ctx)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(io.Discard)

	done := make(chan error, 1)
	go func() { done <- runServer(opts, cmd) }()

	select {
	case a := <-ready:
		addr = a.String()
	case err := <-done:
		cancel()
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		t.Fatal("serve did not start")
	}

	return addr, func() error {
		cancel()
		select {
		case err := <-done:
			return err
		case <-time.After(5 * time.Second):
			t.Fatal("serve did not stop")
			return nil
		}
	}
}

func execUDP(t *testing.T, addr string, bandFile string, args ...string) (string, error) {
	t.Helper()
	opts := &ExecOptions{
		RootOptions: &RootOptions{Format: "text"},
		Address:     addr,
		Timeout:     500 * time.Millisecond,
		Attempts:    4,
		BandFile:    bandFile,
	}
	return runExec(t, opts, args...)
}

func TestServe_ExecOverUDP(t *testing.T) {
	addr, stop := startServe(t, "")

	out, err := execUDP(t, addr, filepath.Join("testdata", "band.yaml"), "add")
	require.NoError(t, err)
	assert.Contains(t, out, "added with id 1")

	out, err = execUDP(t, addr, "", "filter_contains_name", "JOY")
	require.NoError(t, err)
	assert.Contains(t, out, "1 band(s) match")

	out, err = execUDP(t, addr, "", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "filter_contains_name")

	require.NoError(t, stop())
}

func TestServe_PersistsAcrossRestart(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bands.db")

	addr, stop := startServe(t, dbPath)
	_, err := execUDP(t, addr, filepath.Join("testdata", "band.yaml"), "add")
	require.NoError(t, err)
	_, err = execUDP(t, addr, filepath.Join("testdata", "band.yaml"), "add")
	require.NoError(t, err)
	_, err = execUDP(t, addr, "", "remove_by_id", "2")
	require.NoError(t, err)
	require.NoError(t, stop())

	addr, stop = startServe(t, dbPath)
	defer stop()

	out, err := execUDP(t, addr, "", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "#1 Joy Division")
	assert.NotContains(t, out, "#2 ")

	out, err = execUDP(t, addr, filepath.Join("testdata", "band.yaml"), "add")
	require.NoError(t, err)
	assert.Contains(t, out, "added with id 3", "ids are not reused after restart")
}

func TestServe_InvalidDatabasePath(t *testing.T) {
	opts := &ServeOptions{
		RootOptions: &RootOptions{Format: "text"},
		Address:     "127.0.0.1:0",
		Database:    filepath.Join(t.TempDir(), "missing", "dir", "bands.db"),
	}
	cmd := &cobra.Command{}
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := runServer(opts, cmd)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to open database")
	assert.False(t, IsReported(err), "serve failures are printed by main")
}
