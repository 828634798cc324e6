//go:build windows

package lock

import (
	"errors"

	"golang.org/x/sys/windows"
)

// processExists checks if a process with the given PID exists.
func processExists(pid int) bool {
	handle, err := windows.OpenProcess(windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		// access denied still means a live process
		return errors.Is(err, windows.ERROR_ACCESS_DENIED)
	}
	windows.CloseHandle(handle)
	return true
}
