package platform

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"os/user"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

const (
	minInstancePort = 20000
	maxInstancePort = 39999
)

// InstanceLock keeps one GUI instance per user by holding a loopback port.
type InstanceLock struct {
	listener net.Listener
}

// AcquireSingleInstance binds a port derived from appName and the current user.
func AcquireSingleInstance(ctx context.Context, appName string) (*InstanceLock, error) {
	address := fmt.Sprintf("127.0.0.1:%d", instancePort(lockName(appName)))

	var listenConfig net.ListenConfig
	listener, err := listenConfig.Listen(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %v", ErrAlreadyRunning, address, err)
	}
	return &InstanceLock{listener: listener}, nil
}

// Release frees the lock. Safe on a nil lock.
func (lock *InstanceLock) Release() error {
	if lock == nil || lock.listener == nil {
		return nil
	}
	return lock.listener.Close()
}

// Address returns the bound address.
func (lock *InstanceLock) Address() string {
	if lock == nil || lock.listener == nil {
		return ""
	}
	return lock.listener.Addr().String()
}

func lockName(appName string) string {
	current, err := user.Current()
	if err != nil {
		return appName
	}
	return appName + "/" + current.Username
}

func instancePort(name string) int {
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(name))
	rangeSize := maxInstancePort - minInstancePort + 1
	return minInstancePort + int(hash.Sum32()%uint32(rangeSize))
}
