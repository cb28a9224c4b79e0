package drm

import (
	"context"
	"encoding/binary"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

// serveOneLease accepts a single connection, checks the request and answers with
// status and, when sendFD is set, the read end of a pipe as the "lease".
func serveOneLease(t *testing.T, l *net.UnixListener, status byte, sendFD bool) <-chan leaseRequest {
	t.Helper()
	got := make(chan leaseRequest, 1)

	go func() {
		conn, err := l.AcceptUnix()
		if err != nil {
			return
		}
		defer conn.Close()

		var req leaseRequest
		if err := binary.Read(conn, binary.LittleEndian, &req); err != nil {
			return
		}
		got <- req

		resp := make([]byte, leaseResponseSize)
		resp[0] = status
		binary.LittleEndian.PutUint32(resp[1:5], 3)
		copy(resp[5:], "HDMI-A-1")

		var oob []byte
		if sendFD {
			r, w, err := os.Pipe()
			if err != nil {
				return
			}
			defer r.Close()
			defer w.Close()
			oob = unix.UnixRights(int(r.Fd()))
		}
		_, _, _ = conn.WriteMsgUnix(resp, oob, nil)

		// Hold the connection open until the client closes its side.
		buf := make([]byte, 1)
		_, _ = conn.Read(buf)
	}()
	return got
}

func listenLease(t *testing.T) (*net.UnixListener, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lease.sock")
	l, err := net.ListenUnix("unix", &net.UnixAddr{Name: path, Net: "unix"})
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l, path
}

func TestLeaseClientRequestLease(t *testing.T) {
	l, path := listenLease(t)
	got := serveOneLease(t, l, 0, true)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	lease, err := NewLeaseClient(path).RequestLease(ctx, 1920, 1080)
	require.NoError(t, err)
	defer lease.Close()

	req := <-got
	assert.Equal(t, leaseRequest{Cmd: leaseCmdRequest, Width: 1920, Height: 1080}, req)
	assert.Equal(t, uint32(3), lease.ScanoutID)
	assert.Equal(t, "HDMI-A-1", lease.ConnectorName)
	assert.GreaterOrEqual(t, lease.Device().Fd(), 0)
}

func TestLeaseClientRefused(t *testing.T) {
	l, path := listenLease(t)
	serveOneLease(t, l, 1, true)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := NewLeaseClient(path).RequestLease(ctx, 1920, 1080)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refused")
}

func TestLeaseClientMissingFD(t *testing.T) {
	l, path := listenLease(t)
	serveOneLease(t, l, 0, false)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := NewLeaseClient(path).RequestLease(ctx, 800, 600)
	require.ErrorIs(t, err, ErrNoLeaseFD)
}

func TestParseLeaseResponseShort(t *testing.T) {
	_, err := parseLeaseResponse(make([]byte, 10))
	require.Error(t, err)
}
