package drm

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Lease manager wire format. Requests are 12 bytes little-endian; responses are
// a status byte, a scanout id and a NUL-padded connector name, with the lease fd
// attached as SCM_RIGHTS.
const (
	leaseCmdRequest = 1
	leaseCmdRelease = 2

	leaseResponseSize = 1 + 4 + 64
)

var ErrNoLeaseFD = errors.New("no lease fd received via SCM_RIGHTS")

type leaseRequest struct {
	Cmd    uint32
	Width  uint32
	Height uint32
}

type leaseResponse struct {
	ok            bool
	scanoutID     uint32
	connectorName string
}

func parseLeaseResponse(buf []byte) (leaseResponse, error) {
	if len(buf) < leaseResponseSize {
		return leaseResponse{}, fmt.Errorf("short lease response: %d bytes", len(buf))
	}
	return leaseResponse{
		ok:            buf[0] == 0,
		scanoutID:     binary.LittleEndian.Uint32(buf[1:5]),
		connectorName: cString(buf[5:leaseResponseSize]),
	}, nil
}

// LeaseClient requests DRM leases from a lease manager listening on a unix socket.
type LeaseClient struct {
	socketPath string
}

func NewLeaseClient(socketPath string) *LeaseClient {
	return &LeaseClient{socketPath: socketPath}
}

// Lease is a granted DRM lease. The manager revokes it when the liveness
// connection closes, so Close must only be called once presentation has stopped.
type Lease struct {
	ScanoutID     uint32
	ConnectorName string

	file *os.File
	conn net.Conn
}

// Device wraps the lease fd. The device shares the fd with the lease.
func (l *Lease) Device() *Device {
	return NewDevice(l.file)
}

func (l *Lease) Close() error {
	var errs []error
	if l.file != nil {
		errs = append(errs, l.file.Close())
		l.file = nil
	}
	if l.conn != nil {
		errs = append(errs, l.conn.Close())
		l.conn = nil
	}
	return errors.Join(errs...)
}

// RequestLease asks the manager for a lease on an output of at least width x height.
func (c *LeaseClient) RequestLease(ctx context.Context, width, height uint32) (*Lease, error) {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", c.socketPath, err)
	}
	unixConn := conn.(*net.UnixConn)
	if deadline, ok := ctx.Deadline(); ok {
		_ = unixConn.SetDeadline(deadline)
	}

	req := leaseRequest{Cmd: leaseCmdRequest, Width: width, Height: height}
	if err := binary.Write(unixConn, binary.LittleEndian, req); err != nil {
		conn.Close()
		return nil, fmt.Errorf("write lease request: %w", err)
	}

	buf := make([]byte, leaseResponseSize)
	oob := make([]byte, unix.CmsgSpace(4))
	n, oobn, _, _, err := unixConn.ReadMsgUnix(buf, oob)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("read lease response: %w", err)
	}

	fd, fdErr := receiveFD(oob[:oobn])
	resp, err := parseLeaseResponse(buf[:n])
	if err != nil || !resp.ok {
		if fdErr == nil {
			unix.Close(fd)
		}
		conn.Close()
		if err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("lease request refused: %s", resp.connectorName)
	}
	if fdErr != nil {
		conn.Close()
		return nil, fdErr
	}
	_ = unixConn.SetDeadline(time.Time{})

	return &Lease{
		ScanoutID:     resp.scanoutID,
		ConnectorName: resp.connectorName,
		file:          os.NewFile(uintptr(fd), fmt.Sprintf("drm-lease-%d", resp.scanoutID)),
		conn:          conn,
	}, nil
}

// ReleaseLease tells the manager to release a scanout without holding its lease.
func (c *LeaseClient) ReleaseLease(ctx context.Context, scanoutID uint32) error {
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", c.socketPath, err)
	}
	defer conn.Close()

	// The release command carries the scanout id in the width slot.
	req := leaseRequest{Cmd: leaseCmdRelease, Width: scanoutID}
	if err := binary.Write(conn, binary.LittleEndian, req); err != nil {
		return fmt.Errorf("write release request: %w", err)
	}
	return nil
}

// receiveFD extracts the first fd carried by SCM_RIGHTS and closes any extras.
func receiveFD(oob []byte) (int, error) {
	scms, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return -1, fmt.Errorf("parse control message: %w", err)
	}
	fd := -1
	for _, scm := range scms {
		fds, err := unix.ParseUnixRights(&scm)
		if err != nil {
			continue
		}
		for _, f := range fds {
			if fd < 0 {
				fd = f
				continue
			}
			unix.Close(f)
		}
	}
	if fd < 0 {
		return -1, ErrNoLeaseFD
	}
	return fd, nil
}
